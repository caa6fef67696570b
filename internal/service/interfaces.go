// Package service defines the interfaces for all application services.
package service

import (
	"context"
	"time"

	"github.com/Veraticus/cashflow/internal/calendar"
	"github.com/Veraticus/cashflow/internal/model"
	"github.com/Veraticus/cashflow/internal/money"
)

// TransactionFilter narrows transaction listings. Zero values match everything.
type TransactionFilter struct {
	StartDate  *time.Time
	EndDate    *time.Time
	AccountID  int
	CategoryID *int
}

// Ledger is the read-only view of realized transactions the projection
// engine depends on.
type Ledger interface {
	// SumTransactions totals transactions dated within [from, to] for a
	// category, skipping accounts excluded from budget. No rows yields 0.
	SumTransactions(ctx context.Context, from, to time.Time, categoryID int) (money.Cents, error)
	// BalanceAsOf totals transactions dated strictly before cutoff, skipping
	// accounts excluded from total.
	BalanceAsOf(ctx context.Context, cutoff time.Time) (money.Cents, error)
	// LastTransactionDate returns the latest transaction date, or the epoch
	// when the ledger is empty.
	LastTransactionDate(ctx context.Context) (time.Time, error)
	// ListTransactions returns transactions dated within [from, to] on
	// accounts not excluded from total, ordered by date.
	ListTransactions(ctx context.Context, from, to time.Time) ([]model.Transaction, error)
}

// BudgetStore persists budget records.
type BudgetStore interface {
	// GetRecords returns the records of a month in storage order. Month 0
	// returns every record of the year.
	GetRecords(ctx context.Context, month, year int) ([]model.BudgetRecord, error)
	GetRecord(ctx context.Context, id int) (*model.BudgetRecord, error)
	CreateRecord(ctx context.Context, record *model.BudgetRecord) error
	UpdateRecord(ctx context.Context, record *model.BudgetRecord) error
	DeleteRecord(ctx context.Context, id int) error
	CopyRecords(ctx context.Context, from, to calendar.YearMonth) (int, error)
}

// CategoryStore persists top-level categories and subcategories.
type CategoryStore interface {
	// GetCategories returns every category in storage order.
	GetCategories(ctx context.Context) ([]model.Category, error)
	GetCategoryByID(ctx context.Context, id int) (*model.Category, error)
	CreateCategory(ctx context.Context, name string) (*model.Category, error)
	CreateSubcategory(ctx context.Context, parentID int, name string) (*model.Category, error)
	RenameCategory(ctx context.Context, id int, name string) error
	DeleteCategory(ctx context.Context, id int) error
}

// AccountStore persists accounts.
type AccountStore interface {
	GetAccounts(ctx context.Context) ([]model.Account, error)
	GetAccountByID(ctx context.Context, id int) (*model.Account, error)
	GetAccountByName(ctx context.Context, name string) (*model.Account, error)
	CreateAccount(ctx context.Context, name string, accountType model.AccountType) (*model.Account, error)
	UpdateAccount(ctx context.Context, account *model.Account) error
	DeleteAccount(ctx context.Context, id int) error
}

// TransactionStore persists transactions.
type TransactionStore interface {
	// SaveTransactions inserts transactions in one database transaction and
	// returns how many were new. Imported rows whose hash already exists are
	// skipped.
	SaveTransactions(ctx context.Context, transactions []model.Transaction) (int, error)
	GetTransactionByID(ctx context.Context, id int) (*model.Transaction, error)
	GetTransactions(ctx context.Context, filter TransactionFilter) ([]model.Transaction, error)
	UpdateTransaction(ctx context.Context, txn *model.Transaction) error
	DeleteTransaction(ctx context.Context, id int) error
}

// Storage defines the contract for our persistence layer.
type Storage interface {
	Ledger
	BudgetStore
	CategoryStore
	AccountStore
	TransactionStore

	// Database management
	Migrate(ctx context.Context) error
	Close() error
}

// RetryOptions configures retry behavior for operations.
type RetryOptions struct {
	MaxAttempts  int
	InitialDelay time.Duration
	MaxDelay     time.Duration
	Multiplier   float64
}
