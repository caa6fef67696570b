// Package storage provides the data persistence layer for cashflow.
package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/Veraticus/cashflow/internal/model"
)

// Validation errors.
var (
	ErrNilContext         = errors.New("context cannot be nil")
	ErrEmptyString        = errors.New("string parameter cannot be empty")
	ErrNilParameter       = errors.New("parameter cannot be nil")
	ErrEmptySlice         = errors.New("slice cannot be empty")
	ErrInvalidDateRange   = errors.New("start date must be before end date")
	ErrInvalidTransaction = errors.New("invalid transaction")
	ErrInvalidRecord      = errors.New("invalid budget record")
	ErrInvalidAccount     = errors.New("invalid account")
	ErrInvalidCategory    = errors.New("invalid category")
)

// Referential guards.
var (
	ErrCategoryInUse       = errors.New("category is referenced by transactions or budget records")
	ErrCategoryHasChildren = errors.New("category has subcategories")
	ErrAccountInUse        = errors.New("account has transactions")
)

// validateContext ensures the context is not nil.
func validateContext(ctx context.Context) error {
	if ctx == nil {
		return ErrNilContext
	}
	return nil
}

// validateString ensures a string parameter is not empty.
func validateString(s string, paramName string) error {
	if strings.TrimSpace(s) == "" {
		return fmt.Errorf("%w: %s", ErrEmptyString, paramName)
	}
	return nil
}

// validateTransactions validates a slice of transactions.
func validateTransactions(transactions []model.Transaction) error {
	if transactions == nil {
		return fmt.Errorf("%w: transactions", ErrNilParameter)
	}
	if len(transactions) == 0 {
		return fmt.Errorf("%w: transactions", ErrEmptySlice)
	}

	for i, txn := range transactions {
		if err := validateTransaction(&txn); err != nil {
			return fmt.Errorf("transaction at index %d: %w", i, err)
		}
	}
	return nil
}

// validateTransaction validates a single transaction.
func validateTransaction(txn *model.Transaction) error {
	if txn == nil {
		return fmt.Errorf("%w: transaction", ErrNilParameter)
	}
	if txn.Date.IsZero() {
		return fmt.Errorf("%w: missing date", ErrInvalidTransaction)
	}
	if txn.AccountID <= 0 {
		return fmt.Errorf("%w: missing account ID", ErrInvalidTransaction)
	}
	if txn.CategoryID < 0 {
		return fmt.Errorf("%w: negative category ID", ErrInvalidTransaction)
	}
	return nil
}

// validateRecord validates a budget record against its rule type.
func validateRecord(record *model.BudgetRecord) error {
	if record == nil {
		return fmt.Errorf("%w: record", ErrNilParameter)
	}
	if !record.Type.Valid() {
		return fmt.Errorf("%w: unknown rule type %q", ErrInvalidRecord, record.Type)
	}
	if record.Month < 1 || record.Month > 12 {
		return fmt.Errorf("%w: month %d out of range", ErrInvalidRecord, record.Month)
	}
	if record.Year < 1 {
		return fmt.Errorf("%w: year %d out of range", ErrInvalidRecord, record.Year)
	}
	if record.CategoryID < 0 {
		return fmt.Errorf("%w: negative category ID", ErrInvalidRecord)
	}

	switch record.Type {
	case model.RulePoint:
		if record.Day < 1 || record.Day > 31 {
			return fmt.Errorf("%w: day %d out of range", ErrInvalidRecord, record.Day)
		}
	case model.RuleWeekly:
		if record.Day < 1 || record.Day > 7 {
			return fmt.Errorf("%w: weekday %d out of range (1=Monday..7=Sunday)", ErrInvalidRecord, record.Day)
		}
	case model.RuleMonthly, model.RuleDaily:
		// Day unused
	}
	return nil
}

// validateAccountType rejects unknown account types.
func validateAccountType(t model.AccountType) error {
	if !t.Valid() {
		return fmt.Errorf("%w: unknown type %q", ErrInvalidAccount, t)
	}
	return nil
}
