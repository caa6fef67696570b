package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/Veraticus/cashflow/internal/calendar"
	"github.com/Veraticus/cashflow/internal/model"
	"github.com/Veraticus/cashflow/internal/money"
)

// SumTransactions totals a category over [from, to], ignoring accounts
// excluded from budget.
func (s *SQLiteStorage) SumTransactions(ctx context.Context, from, to time.Time, categoryID int) (money.Cents, error) {
	if err := validateContext(ctx); err != nil {
		return 0, err
	}
	if to.Before(from) {
		return 0, fmt.Errorf("%w: %s after %s", ErrInvalidDateRange,
			from.Format(calendar.DateLayout), to.Format(calendar.DateLayout))
	}

	var total money.Cents
	err := s.db.QueryRowContext(ctx, `
		SELECT COALESCE(SUM(t.amount), 0)
		FROM transactions t
		JOIN accounts a ON a.id = t.account_id
		WHERE t.date BETWEEN ? AND ?
		  AND t.category_id = ?
		  AND a.exclude_from_budget = 0`,
		from.Format(calendar.DateLayout), to.Format(calendar.DateLayout), categoryID,
	).Scan(&total)
	if err != nil {
		return 0, fmt.Errorf("failed to sum transactions: %w", err)
	}
	return total, nil
}

// BalanceAsOf totals every transaction dated strictly before cutoff on
// accounts counted in totals.
func (s *SQLiteStorage) BalanceAsOf(ctx context.Context, cutoff time.Time) (money.Cents, error) {
	if err := validateContext(ctx); err != nil {
		return 0, err
	}

	var total money.Cents
	err := s.db.QueryRowContext(ctx, `
		SELECT COALESCE(SUM(t.amount), 0)
		FROM transactions t
		JOIN accounts a ON a.id = t.account_id
		WHERE t.date < ?
		  AND a.exclude_from_total = 0`,
		cutoff.Format(calendar.DateLayout),
	).Scan(&total)
	if err != nil {
		return 0, fmt.Errorf("failed to compute balance: %w", err)
	}
	return total, nil
}

// LastTransactionDate returns the most recent transaction date, or
// calendar.Epoch when there are no transactions.
func (s *SQLiteStorage) LastTransactionDate(ctx context.Context) (time.Time, error) {
	if err := validateContext(ctx); err != nil {
		return time.Time{}, err
	}

	var last sql.NullString
	if err := s.db.QueryRowContext(ctx, `SELECT MAX(date) FROM transactions`).Scan(&last); err != nil {
		return time.Time{}, fmt.Errorf("failed to query last transaction date: %w", err)
	}
	if !last.Valid {
		return calendar.Epoch, nil
	}
	return calendar.ParseDate(last.String)
}

// ListTransactions returns transactions within [from, to] on accounts counted
// in totals, ordered by date.
func (s *SQLiteStorage) ListTransactions(ctx context.Context, from, to time.Time) ([]model.Transaction, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	return s.queryTransactions(ctx, transactionColumns+`
		JOIN accounts a ON a.id = t.account_id
		WHERE t.date BETWEEN ? AND ?
		  AND a.exclude_from_total = 0
		ORDER BY t.date, t.id`,
		from.Format(calendar.DateLayout), to.Format(calendar.DateLayout))
}
