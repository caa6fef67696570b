package storage

import (
	"context"
	"testing"

	"github.com/Veraticus/cashflow/internal/calendar"
	"github.com/Veraticus/cashflow/internal/common"
	"github.com/Veraticus/cashflow/internal/model"
	"github.com/Veraticus/cashflow/internal/money"
	"github.com/Veraticus/cashflow/internal/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSaveTransactions_Validation(t *testing.T) {
	store, cleanup := createTestStorage(t)
	defer cleanup()
	ctx := context.Background()

	tests := []struct {
		wantErr error
		name    string
		txns    []model.Transaction
	}{
		{name: "nil slice", txns: nil, wantErr: ErrNilParameter},
		{name: "empty slice", txns: []model.Transaction{}, wantErr: ErrEmptySlice},
		{name: "missing date", txns: []model.Transaction{{AccountID: 1}}, wantErr: ErrInvalidTransaction},
		{name: "missing account", txns: []model.Transaction{{Date: calendar.Date(2024, 1, 1)}}, wantErr: ErrInvalidTransaction},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := store.SaveTransactions(ctx, tt.txns)
			require.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestSaveTransactions_DeduplicatesImports(t *testing.T) {
	store, cleanup := createTestStorage(t)
	defer cleanup()
	ctx := context.Background()

	checking, _, rent := seedLedger(t, store)

	imported := txn(checking.ID, 0, 2024, 2, 3, -1999)
	imported.Hash = imported.GenerateHash("FIT-1")
	manual := txn(checking.ID, rent.ID, 2024, 2, 3, -1999)

	n, err := store.SaveTransactions(ctx, []model.Transaction{imported, manual})
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	// Re-importing the same file only adds manual-style rows.
	n, err = store.SaveTransactions(ctx, []model.Transaction{imported, manual})
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	all, err := store.GetTransactions(ctx, service.TransactionFilter{AccountID: checking.ID})
	require.NoError(t, err)
	assert.Len(t, all, 3)
}

func TestTransactions_CRUDAndFilter(t *testing.T) {
	store, cleanup := createTestStorage(t)
	defer cleanup()
	ctx := context.Background()

	checking, savings, rent := seedLedger(t, store)
	_, err := store.SaveTransactions(ctx, []model.Transaction{
		txn(checking.ID, rent.ID, 2024, 3, 10, -50000),
		txn(checking.ID, 0, 2024, 3, 1, 200000),
		txn(savings.ID, rent.ID, 2024, 4, 1, -50000),
	})
	require.NoError(t, err)

	byAccount, err := store.GetTransactions(ctx, service.TransactionFilter{AccountID: checking.ID})
	require.NoError(t, err)
	require.Len(t, byAccount, 2)
	assert.Equal(t, calendar.Date(2024, 3, 1), byAccount[0].Date, "ordered by date")

	from, to := calendar.Date(2024, 3, 1), calendar.Date(2024, 3, 31)
	catID := rent.ID
	filtered, err := store.GetTransactions(ctx, service.TransactionFilter{StartDate: &from, EndDate: &to, CategoryID: &catID})
	require.NoError(t, err)
	require.Len(t, filtered, 1)
	assert.Equal(t, money.Cents(-50000), filtered[0].Amount)

	got := filtered[0]
	got.Amount = -45000
	got.Info = "rent (discounted)"
	require.NoError(t, store.UpdateTransaction(ctx, &got))

	reloaded, err := store.GetTransactionByID(ctx, got.ID)
	require.NoError(t, err)
	assert.Equal(t, money.Cents(-45000), reloaded.Amount)
	assert.Equal(t, "rent (discounted)", reloaded.Info)

	require.NoError(t, store.DeleteTransaction(ctx, got.ID))
	_, err = store.GetTransactionByID(ctx, got.ID)
	require.ErrorIs(t, err, common.ErrNotFound)
	require.ErrorIs(t, store.DeleteTransaction(ctx, got.ID), common.ErrNotFound)
}
