package engine

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/Veraticus/cashflow/internal/calendar"
	"github.com/Veraticus/cashflow/internal/model"
	"github.com/Veraticus/cashflow/internal/money"
	"github.com/Veraticus/cashflow/internal/registry"
)

// Reconciliation is the outcome of comparing a budget with its actual.
type Reconciliation struct {
	Budget    money.Cents // display magnitude
	Actual    money.Cents // display magnitude
	Remaining money.Cents // signed amount still expected
	Mismatch  bool        // budget and actual disagree in sign
}

// Reconcile applies the sign rules shared by the report and the Monthly
// expander:
//
//	both >= 0  income:   remaining = max(budget-actual, 0)
//	both <= 0  spending: remaining = min(budget-actual, 0), magnitudes negated
//	otherwise  mismatch: magnitudes are absolute values
func Reconcile(budget, actual money.Cents) Reconciliation {
	switch {
	case budget >= 0 && actual >= 0:
		return Reconciliation{
			Budget:    budget,
			Actual:    actual,
			Remaining: max(budget-actual, 0),
		}
	case budget <= 0 && actual <= 0:
		return Reconciliation{
			Budget:    -budget,
			Actual:    -actual,
			Remaining: min(budget-actual, 0),
		}
	default:
		return Reconciliation{
			Budget:   budget.Abs(),
			Actual:   actual.Abs(),
			Mismatch: true,
		}
	}
}

// BudgetReport compares budget and actual per category for (month, year),
// month 0 meaning the whole year. Categories with neither are omitted; the
// rest follow registry order.
func (e *Engine) BudgetReport(ctx context.Context, reg *registry.Registry, month, year int) ([]model.BudgetBar, error) {
	first, last, err := calendar.Bounds(month, year)
	if err != nil {
		return nil, err
	}

	budgets, err := e.budgetsByCategory(ctx, reg, month, year)
	if err != nil {
		return nil, err
	}

	var bars []model.BudgetBar
	for _, cat := range reg.All(true) {
		budget := budgets[cat.ID]
		actual, err := e.ledger.SumTransactions(ctx, first, last, cat.ID)
		if err != nil {
			return nil, fmt.Errorf("failed to sum %s: %w", cat.DisplayName(), err)
		}
		if budget == 0 && actual == 0 {
			continue
		}

		r := Reconcile(budget, actual)
		bar := model.BudgetBar{
			Category:    cat,
			Budget:      r.Budget.Decimal(),
			Actual:      r.Actual.Decimal(),
			Expectation: model.Expectation{Amount: r.Remaining.Decimal()},
		}
		if r.Mismatch {
			bar.Expectation = model.ExpectationError
		}
		bars = append(bars, bar)
	}

	slog.Debug("budget report computed", "month", month, "year", year, "bars", len(bars))
	return bars, nil
}

// budgetsByCategory sums record amounts per category. A record pointing at
// an unknown category aborts the report.
func (e *Engine) budgetsByCategory(ctx context.Context, reg *registry.Registry, month, year int) (map[int]money.Cents, error) {
	records, err := e.records.GetRecords(ctx, month, year)
	if err != nil {
		return nil, fmt.Errorf("failed to load budget records: %w", err)
	}

	sums := make(map[int]money.Cents)
	for _, r := range records {
		if _, err := reg.Lookup(ctx, r.CategoryID); err != nil {
			slog.Error("budget record references unknown category",
				"record_id", r.ID, "category_id", r.CategoryID)
			return nil, fmt.Errorf("budget record %d: %w", r.ID, err)
		}
		sums[r.CategoryID] += r.Amount
	}
	return sums, nil
}
