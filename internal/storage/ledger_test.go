package storage

import (
	"context"
	"testing"

	"github.com/Veraticus/cashflow/internal/calendar"
	"github.com/Veraticus/cashflow/internal/model"
	"github.com/Veraticus/cashflow/internal/money"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLedger_EmptyDatabase(t *testing.T) {
	store, cleanup := createTestStorage(t)
	defer cleanup()
	ctx := context.Background()

	last, err := store.LastTransactionDate(ctx)
	require.NoError(t, err)
	assert.Equal(t, calendar.Epoch, last)

	sum, err := store.SumTransactions(ctx, calendar.Date(2024, 1, 1), calendar.Date(2024, 1, 31), 1)
	require.NoError(t, err)
	assert.Zero(t, sum)

	bal, err := store.BalanceAsOf(ctx, calendar.Date(2024, 1, 1))
	require.NoError(t, err)
	assert.Zero(t, bal)
}

func TestLedger_ExclusionFlags(t *testing.T) {
	store, cleanup := createTestStorage(t)
	defer cleanup()
	ctx := context.Background()

	checking, savings, rent := seedLedger(t, store)

	savings.ExcludeFromBudget = true
	savings.ExcludeFromTotal = true
	require.NoError(t, store.UpdateAccount(ctx, savings))

	_, err := store.SaveTransactions(ctx, []model.Transaction{
		txn(checking.ID, rent.ID, 2024, 1, 31, -40000),
		txn(checking.ID, rent.ID, 2024, 2, 1, -1000),
		txn(checking.ID, 0, 2024, 1, 15, 300000),
		txn(savings.ID, rent.ID, 2024, 1, 20, -99900),
		txn(checking.ID, rent.ID, 2023, 12, 31, -5),
	})
	require.NoError(t, err)

	t.Run("sum is inclusive and skips budget-excluded accounts", func(t *testing.T) {
		sum, err := store.SumTransactions(ctx, calendar.Date(2024, 1, 1), calendar.Date(2024, 1, 31), rent.ID)
		require.NoError(t, err)
		assert.Equal(t, money.Cents(-40000), sum)
	})

	t.Run("sum rejects inverted range", func(t *testing.T) {
		_, err := store.SumTransactions(ctx, calendar.Date(2024, 2, 1), calendar.Date(2024, 1, 1), rent.ID)
		require.ErrorIs(t, err, ErrInvalidDateRange)
	})

	t.Run("balance is strictly before cutoff and skips total-excluded accounts", func(t *testing.T) {
		bal, err := store.BalanceAsOf(ctx, calendar.Date(2024, 2, 1))
		require.NoError(t, err)
		assert.Equal(t, money.Cents(-40000+300000-5), bal)
	})

	t.Run("last date", func(t *testing.T) {
		last, err := store.LastTransactionDate(ctx)
		require.NoError(t, err)
		assert.Equal(t, calendar.Date(2024, 2, 1), last)
	})

	t.Run("list skips total-excluded accounts", func(t *testing.T) {
		txns, err := store.ListTransactions(ctx, calendar.Date(2024, 1, 1), calendar.Date(2024, 1, 31))
		require.NoError(t, err)
		require.Len(t, txns, 2)
		assert.Equal(t, calendar.Date(2024, 1, 15), txns[0].Date)
		assert.Equal(t, calendar.Date(2024, 1, 31), txns[1].Date)
	})
}
