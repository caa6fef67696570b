package engine

import (
	"context"
	"fmt"
	"log/slog"
	"sort"

	"github.com/Veraticus/cashflow/internal/calendar"
	"github.com/Veraticus/cashflow/internal/model"
	"github.com/Veraticus/cashflow/internal/money"
	"github.com/Veraticus/cashflow/internal/registry"
)

// BalanceRoll is the running balance for a window: the opening balance,
// every realized transaction and the predicted events that follow them.
type BalanceRoll struct {
	Warnings error
	Rows     []model.BalanceRow
}

// Closing returns the final running total.
func (b *BalanceRoll) Closing() model.BalanceRow {
	return b.Rows[len(b.Rows)-1]
}

// BalanceReport builds the roll for (month, year). The opening row is dated
// the day before the window. Predictions start at the later of the window
// start and the last transaction in the window. Rows are ordered by date
// (opening, then transactions, then predictions on ties) before totals are
// accumulated.
func (e *Engine) BalanceReport(ctx context.Context, reg *registry.Registry, month, year int) (*BalanceRoll, error) {
	first, last, err := calendar.Bounds(month, year)
	if err != nil {
		return nil, err
	}

	opening, err := e.ledger.BalanceAsOf(ctx, first)
	if err != nil {
		return nil, fmt.Errorf("failed to compute opening balance: %w", err)
	}

	rows := []model.BalanceRow{{
		Date:     first.AddDate(0, 0, -1),
		Amount:   money.Cents(0).Decimal(),
		Info:     "Opening balance",
		Category: model.Uncategorized(),
		Origin:   model.OriginOpening,
	}}

	txns, err := e.ledger.ListTransactions(ctx, first, last)
	if err != nil {
		return nil, fmt.Errorf("failed to list transactions: %w", err)
	}

	cutoff := first
	for _, t := range txns {
		cat, err := reg.Lookup(ctx, t.CategoryID)
		if err != nil {
			return nil, fmt.Errorf("transaction %d: %w", t.ID, err)
		}
		rows = append(rows, model.BalanceRow{
			Date:     t.Date,
			Amount:   t.Amount.Decimal(),
			Info:     t.Info,
			Category: cat,
			Origin:   model.OriginTransaction,
		})
		if t.Date.After(cutoff) {
			cutoff = t.Date
		}
	}

	forecast, err := e.Predict(ctx, reg, month, year, cutoff)
	if err != nil {
		return nil, err
	}
	for forecast.Next() {
		p := forecast.Prediction()
		rows = append(rows, model.BalanceRow{
			Date:     p.Date,
			Amount:   p.Amount,
			Info:     string(p.Type),
			Category: p.Category,
			Origin:   model.OriginBudget,
		})
	}
	if err := forecast.Err(); err != nil {
		return nil, err
	}

	sort.SliceStable(rows, func(i, j int) bool {
		return rows[i].Date.Before(rows[j].Date)
	})

	total := opening.Decimal()
	for i := range rows {
		total = total.Add(rows[i].Amount)
		rows[i].Total = total
	}

	slog.Debug("balance roll computed",
		"month", month,
		"year", year,
		"transactions", len(txns),
		"rows", len(rows),
		"cutoff", cutoff.Format(calendar.DateLayout))

	return &BalanceRoll{Rows: rows, Warnings: forecast.Warnings()}, nil
}
