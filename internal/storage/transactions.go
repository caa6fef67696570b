package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strings"

	"github.com/Veraticus/cashflow/internal/calendar"
	"github.com/Veraticus/cashflow/internal/common"
	"github.com/Veraticus/cashflow/internal/model"
	"github.com/Veraticus/cashflow/internal/service"
)

const transactionColumns = `
	SELECT t.id, t.date, t.amount, t.info, t.account_id, t.category_id, COALESCE(t.hash, '')
	FROM transactions t`

func scanTransaction(row rowScanner) (model.Transaction, error) {
	var (
		txn  model.Transaction
		date string
	)
	if err := row.Scan(&txn.ID, &date, &txn.Amount, &txn.Info, &txn.AccountID, &txn.CategoryID, &txn.Hash); err != nil {
		return txn, err
	}
	parsed, err := calendar.ParseDate(date)
	if err != nil {
		return txn, err
	}
	txn.Date = parsed
	return txn, nil
}

func nullableHash(hash string) any {
	if hash == "" {
		return nil
	}
	return hash
}

// SaveTransactions inserts transactions atomically. Rows carrying a hash
// that is already stored are skipped; the count of inserted rows is returned.
func (s *SQLiteStorage) SaveTransactions(ctx context.Context, transactions []model.Transaction) (int, error) {
	if err := validateContext(ctx); err != nil {
		return 0, err
	}
	if err := validateTransactions(transactions); err != nil {
		return 0, err
	}

	inserted := 0
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		stmt, err := tx.PrepareContext(ctx, `
			INSERT INTO transactions (date, amount, info, account_id, category_id, hash)
			VALUES (?, ?, ?, ?, ?, ?)
			ON CONFLICT(hash) WHERE hash IS NOT NULL DO NOTHING`)
		if err != nil {
			return fmt.Errorf("failed to prepare statement: %w", err)
		}
		defer stmt.Close()

		for _, txn := range transactions {
			result, err := stmt.ExecContext(ctx,
				txn.Date.Format(calendar.DateLayout),
				txn.Amount,
				txn.Info,
				txn.AccountID,
				txn.CategoryID,
				nullableHash(txn.Hash),
			)
			if err != nil {
				return fmt.Errorf("failed to insert transaction dated %s: %w", txn.Date.Format(calendar.DateLayout), err)
			}
			n, err := result.RowsAffected()
			if err != nil {
				return fmt.Errorf("failed to read affected rows: %w", err)
			}
			inserted += int(n)
		}
		return nil
	})
	if err != nil {
		return 0, err
	}

	slog.Info("saved transactions", "submitted", len(transactions), "inserted", inserted)
	return inserted, nil
}

// GetTransactionByID retrieves a specific transaction.
func (s *SQLiteStorage) GetTransactionByID(ctx context.Context, id int) (*model.Transaction, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	txn, err := scanTransaction(s.db.QueryRowContext(ctx, transactionColumns+` WHERE t.id = ?`, id))
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("transaction %d: %w", id, common.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query transaction: %w", err)
	}
	return &txn, nil
}

// GetTransactions lists transactions matching filter, oldest first.
func (s *SQLiteStorage) GetTransactions(ctx context.Context, filter service.TransactionFilter) ([]model.Transaction, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	var (
		where []string
		args  []any
	)
	if filter.StartDate != nil {
		where = append(where, "t.date >= ?")
		args = append(args, filter.StartDate.Format(calendar.DateLayout))
	}
	if filter.EndDate != nil {
		where = append(where, "t.date <= ?")
		args = append(args, filter.EndDate.Format(calendar.DateLayout))
	}
	if filter.AccountID != 0 {
		where = append(where, "t.account_id = ?")
		args = append(args, filter.AccountID)
	}
	if filter.CategoryID != nil {
		where = append(where, "t.category_id = ?")
		args = append(args, *filter.CategoryID)
	}

	query := transactionColumns
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY t.date, t.id"

	return s.queryTransactions(ctx, query, args...)
}

func (s *SQLiteStorage) queryTransactions(ctx context.Context, query string, args ...any) ([]model.Transaction, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query transactions: %w", err)
	}
	defer rows.Close()

	var transactions []model.Transaction
	for rows.Next() {
		txn, err := scanTransaction(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan transaction: %w", err)
		}
		transactions = append(transactions, txn)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating transactions: %w", err)
	}
	return transactions, nil
}

// UpdateTransaction rewrites a transaction's fields.
func (s *SQLiteStorage) UpdateTransaction(ctx context.Context, txn *model.Transaction) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateTransaction(txn); err != nil {
		return err
	}

	result, err := s.db.ExecContext(ctx, `
		UPDATE transactions
		SET date = ?, amount = ?, info = ?, account_id = ?, category_id = ?
		WHERE id = ?`,
		txn.Date.Format(calendar.DateLayout), txn.Amount, txn.Info, txn.AccountID, txn.CategoryID, txn.ID)
	if err != nil {
		return fmt.Errorf("failed to update transaction: %w", err)
	}
	return requireAffected(result, fmt.Sprintf("transaction %d", txn.ID))
}

// DeleteTransaction removes a transaction.
func (s *SQLiteStorage) DeleteTransaction(ctx context.Context, id int) error {
	if err := validateContext(ctx); err != nil {
		return err
	}

	result, err := s.db.ExecContext(ctx, `DELETE FROM transactions WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete transaction: %w", err)
	}
	return requireAffected(result, fmt.Sprintf("transaction %d", id))
}
