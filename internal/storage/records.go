package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/Veraticus/cashflow/internal/calendar"
	"github.com/Veraticus/cashflow/internal/common"
	"github.com/Veraticus/cashflow/internal/model"
)

const recordColumns = `SELECT id, amount, category_id, type, day, month, year FROM records`

func scanRecord(row rowScanner) (model.BudgetRecord, error) {
	var r model.BudgetRecord
	err := row.Scan(&r.ID, &r.Amount, &r.CategoryID, &r.Type, &r.Day, &r.Month, &r.Year)
	return r, err
}

// GetRecords returns the records of (month, year) in insertion order. Month
// 0 returns the whole year ordered by month, then insertion.
func (s *SQLiteStorage) GetRecords(ctx context.Context, month, year int) ([]model.BudgetRecord, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if month < calendar.WholeYear || month > 12 {
		return nil, fmt.Errorf("%w: %d", calendar.ErrInvalidMonth, month)
	}

	var (
		rows *sql.Rows
		err  error
	)
	if month == calendar.WholeYear {
		rows, err = s.db.QueryContext(ctx, recordColumns+` WHERE year = ? ORDER BY month, id`, year)
	} else {
		rows, err = s.db.QueryContext(ctx, recordColumns+` WHERE year = ? AND month = ? ORDER BY id`, year, month)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query records: %w", err)
	}
	defer rows.Close()

	var records []model.BudgetRecord
	for rows.Next() {
		r, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan record: %w", err)
		}
		records = append(records, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating records: %w", err)
	}

	slog.Debug("retrieved budget records", "month", month, "year", year, "count", len(records))
	return records, nil
}

// GetRecord returns a record by its ID.
func (s *SQLiteStorage) GetRecord(ctx context.Context, id int) (*model.BudgetRecord, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	r, err := scanRecord(s.db.QueryRowContext(ctx, recordColumns+` WHERE id = ?`, id))
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("record %d: %w", id, common.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query record: %w", err)
	}
	return &r, nil
}

// CreateRecord stores a new record and sets its ID.
func (s *SQLiteStorage) CreateRecord(ctx context.Context, record *model.BudgetRecord) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateRecord(record); err != nil {
		return err
	}
	if err := s.requireCategory(ctx, record.CategoryID); err != nil {
		return err
	}

	result, err := s.db.ExecContext(ctx, `
		INSERT INTO records (amount, category_id, type, day, month, year)
		VALUES (?, ?, ?, ?, ?, ?)`,
		record.Amount, record.CategoryID, record.Type, record.Day, record.Month, record.Year)
	if err != nil {
		return fmt.Errorf("failed to create record: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get record ID: %w", err)
	}
	record.ID = int(id)

	slog.Info("created budget record",
		"id", id,
		"type", record.Type,
		"category_id", record.CategoryID,
		"period", calendar.YearMonth{Year: record.Year, Month: record.Month}.String())
	return nil
}

// UpdateRecord rewrites an existing record.
func (s *SQLiteStorage) UpdateRecord(ctx context.Context, record *model.BudgetRecord) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateRecord(record); err != nil {
		return err
	}
	if err := s.requireCategory(ctx, record.CategoryID); err != nil {
		return err
	}

	result, err := s.db.ExecContext(ctx, `
		UPDATE records
		SET amount = ?, category_id = ?, type = ?, day = ?, month = ?, year = ?
		WHERE id = ?`,
		record.Amount, record.CategoryID, record.Type, record.Day, record.Month, record.Year, record.ID)
	if err != nil {
		return fmt.Errorf("failed to update record: %w", err)
	}
	return requireAffected(result, fmt.Sprintf("record %d", record.ID))
}

// DeleteRecord removes a record.
func (s *SQLiteStorage) DeleteRecord(ctx context.Context, id int) error {
	if err := validateContext(ctx); err != nil {
		return err
	}

	result, err := s.db.ExecContext(ctx, `DELETE FROM records WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete record: %w", err)
	}
	return requireAffected(result, fmt.Sprintf("record %d", id))
}

// CopyRecords duplicates every record of one month into another and returns
// how many were copied. Point days past the end of the target month are
// moved to its last day.
func (s *SQLiteStorage) CopyRecords(ctx context.Context, from, to calendar.YearMonth) (int, error) {
	if err := validateContext(ctx); err != nil {
		return 0, err
	}
	for _, ym := range []calendar.YearMonth{from, to} {
		if ym.Month < 1 || ym.Month > 12 {
			return 0, fmt.Errorf("%w: %d", calendar.ErrInvalidMonth, ym.Month)
		}
	}
	if from == to {
		return 0, fmt.Errorf("%w: cannot copy %s onto itself", ErrInvalidDateRange, from)
	}

	source, err := s.GetRecords(ctx, from.Month, from.Year)
	if err != nil {
		return 0, err
	}
	if len(source) == 0 {
		return 0, nil
	}

	lastDay := calendar.DaysIn(to.Month, to.Year)
	err = s.withTx(ctx, func(tx *sql.Tx) error {
		for _, r := range source {
			day := r.Day
			if r.Type == model.RulePoint && day > lastDay {
				day = lastDay
			}
			if _, err := tx.ExecContext(ctx, `
				INSERT INTO records (amount, category_id, type, day, month, year)
				VALUES (?, ?, ?, ?, ?, ?)`,
				r.Amount, r.CategoryID, r.Type, day, to.Month, to.Year); err != nil {
				return fmt.Errorf("failed to copy record %d: %w", r.ID, err)
			}
		}
		return nil
	})
	if err != nil {
		return 0, err
	}

	slog.Info("copied budget records", "from", from.String(), "to", to.String(), "count", len(source))
	return len(source), nil
}

// requireCategory checks that id names a stored category. The reserved
// uncategorized id always passes.
func (s *SQLiteStorage) requireCategory(ctx context.Context, id int) error {
	if id == model.UncategorizedID {
		return nil
	}
	_, err := s.GetCategoryByID(ctx, id)
	return err
}
