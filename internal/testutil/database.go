// Package testutil provides a migrated SQLite database seeded with test data.
package testutil

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/Veraticus/cashflow/internal/model"
	"github.com/Veraticus/cashflow/internal/money"
	"github.com/Veraticus/cashflow/internal/storage"
	"github.com/Veraticus/cashflow/internal/testutil/categories"
)

// TestDB represents a test database with associated test utilities.
type TestDB struct {
	Storage    *storage.SQLiteStorage
	t          *testing.T
	Categories categories.Tree
}

// SetupTestDB creates a migrated database in a temp dir and seeds the
// categories configured on the builder. A nil configure seeds nothing.
// Cleanup is registered on t.
//
// Example:
//
//	db := testutil.SetupTestDB(t, func(b *categories.Builder) *categories.Builder {
//		return b.WithHousehold()
//	})
func SetupTestDB(t *testing.T, configure func(*categories.Builder) *categories.Builder) *TestDB {
	t.Helper()

	store, err := storage.NewSQLiteStorage(filepath.Join(t.TempDir(), "cashflow.db"))
	if err != nil {
		t.Fatalf("failed to create test database: %v", err)
	}
	t.Cleanup(func() {
		_ = store.Close()
	})

	ctx := context.Background()
	if err := store.Migrate(ctx); err != nil {
		t.Fatalf("failed to run migrations: %v", err)
	}

	builder := categories.NewBuilder(t)
	if configure != nil {
		builder = configure(builder)
	}

	return &TestDB{
		Storage:    store,
		Categories: builder.MustBuild(ctx, store),
		t:          t,
	}
}

// Category returns the id of a seeded category by display name.
func (db *TestDB) Category(displayName string) int {
	db.t.Helper()
	return db.Categories.ID(db.t, displayName)
}

// MustAccount creates an account or fails the test.
func (db *TestDB) MustAccount(name string, accountType model.AccountType) *model.Account {
	db.t.Helper()
	acc, err := db.Storage.CreateAccount(context.Background(), name, accountType)
	if err != nil {
		db.t.Fatalf("failed to create account %q: %v", name, err)
	}
	return acc
}

// MustTransactions saves transactions or fails the test.
func (db *TestDB) MustTransactions(txns ...model.Transaction) {
	db.t.Helper()
	if _, err := db.Storage.SaveTransactions(context.Background(), txns); err != nil {
		db.t.Fatalf("failed to save transactions: %v", err)
	}
}

// MustRecord creates a budget record or fails the test.
func (db *TestDB) MustRecord(r model.BudgetRecord) model.BudgetRecord {
	db.t.Helper()
	if err := db.Storage.CreateRecord(context.Background(), &r); err != nil {
		db.t.Fatalf("failed to create record: %v", err)
	}
	return r
}

// Txn builds an unsaved transaction.
func Txn(accountID, categoryID int, date time.Time, amount money.Cents, info string) model.Transaction {
	return model.Transaction{
		Date:       date,
		Info:       info,
		AccountID:  accountID,
		CategoryID: categoryID,
		Amount:     amount,
	}
}
