package engine

import (
	"context"
	"testing"

	"github.com/Veraticus/cashflow/internal/calendar"
	"github.com/Veraticus/cashflow/internal/common"
	"github.com/Veraticus/cashflow/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBalanceReport(t *testing.T) {
	eng, ledger, records := newTestEngine()
	ledger.add(2024, 2, 20, catSalary, 5000)
	ledger.add(2024, 3, 5, catRent, -1000)
	ledger.add(2024, 3, 12, catGroceries, -200)

	records.add(model.BudgetRecord{Amount: -1000, CategoryID: catRent, Type: model.RulePoint, Day: 1, Month: 3, Year: 2024})
	records.add(model.BudgetRecord{Amount: -300, CategoryID: catGroceries, Type: model.RulePoint, Day: 25, Month: 3, Year: 2024})
	records.add(model.BudgetRecord{Amount: 100000, CategoryID: catSalary, Type: model.RuleMonthly, Month: 3, Year: 2024})

	roll, err := eng.BalanceReport(context.Background(), testRegistry(t), 3, 2024)
	require.NoError(t, err)
	require.NoError(t, roll.Warnings)

	want := []struct {
		date   string
		amount string
		total  string
		origin model.RowOrigin
	}{
		{"2024-02-29", "0", "50", model.OriginOpening},
		{"2024-03-05", "-10", "40", model.OriginTransaction},
		{"2024-03-12", "-2", "38", model.OriginTransaction},
		{"2024-03-25", "-3", "35", model.OriginBudget},
		{"2024-03-31", "1000", "1035", model.OriginBudget},
	}
	require.Len(t, roll.Rows, len(want))
	for i, w := range want {
		row := roll.Rows[i]
		assert.Equal(t, w.date, row.Date.Format(calendar.DateLayout), "row %d", i)
		assert.True(t, dec(w.amount).Equal(row.Amount), "row %d amount %s", i, row.Amount)
		assert.True(t, dec(w.total).Equal(row.Total), "row %d total %s", i, row.Total)
		assert.Equal(t, w.origin, row.Origin, "row %d", i)
	}

	assert.True(t, dec("1035").Equal(roll.Closing().Total))
	assert.Equal(t, "Home::Rent", roll.Rows[1].Category.DisplayName())
	assert.Equal(t, string(model.RuleMonthly), roll.Rows[4].Info)
}

func TestBalanceReport_TransactionsPrecedePredictionsOnTies(t *testing.T) {
	eng, ledger, records := newTestEngine()
	ledger.add(2024, 3, 12, catGroceries, -200)
	records.add(model.BudgetRecord{Amount: -100, CategoryID: catGroceries, Type: model.RulePoint, Day: 12, Month: 3, Year: 2024})

	roll, err := eng.BalanceReport(context.Background(), testRegistry(t), 3, 2024)
	require.NoError(t, err)
	require.Len(t, roll.Rows, 3)
	assert.Equal(t, model.OriginTransaction, roll.Rows[1].Origin)
	assert.Equal(t, model.OriginBudget, roll.Rows[2].Origin)
	assert.True(t, dec("-3").Equal(roll.Closing().Total))
}

func TestBalanceReport_EmptyWindowPredictsFromStart(t *testing.T) {
	eng, ledger, records := newTestEngine()
	ledger.add(2023, 12, 15, catSalary, 10000)
	records.add(model.BudgetRecord{Amount: -2500, CategoryID: catRent, Type: model.RulePoint, Day: 1, Month: 1, Year: 2024})

	roll, err := eng.BalanceReport(context.Background(), testRegistry(t), 1, 2024)
	require.NoError(t, err)
	require.Len(t, roll.Rows, 2)

	opening := roll.Rows[0]
	assert.Equal(t, calendar.Date(2023, 12, 31), opening.Date)
	assert.True(t, dec("100").Equal(opening.Total))
	assert.True(t, opening.Amount.IsZero())

	assert.Equal(t, calendar.Date(2024, 1, 1), roll.Rows[1].Date)
	assert.True(t, dec("75").Equal(roll.Closing().Total))
}

func TestBalanceReport_NothingAtAll(t *testing.T) {
	eng, _, _ := newTestEngine()

	roll, err := eng.BalanceReport(context.Background(), testRegistry(t), calendar.WholeYear, 2024)
	require.NoError(t, err)
	require.Len(t, roll.Rows, 1)
	assert.Equal(t, model.OriginOpening, roll.Closing().Origin)
	assert.True(t, roll.Closing().Total.IsZero())
}

func TestBalanceReport_CarriesWarnings(t *testing.T) {
	eng, _, records := newTestEngine()
	records.add(model.BudgetRecord{Amount: -100, CategoryID: catRent, Type: "Fortnightly", Month: 5, Year: 2024})
	records.add(model.BudgetRecord{Amount: -100, CategoryID: catRent, Type: model.RulePoint, Day: 3, Month: 5, Year: 2024})

	roll, err := eng.BalanceReport(context.Background(), testRegistry(t), 5, 2024)
	require.NoError(t, err)
	require.ErrorIs(t, roll.Warnings, ErrUnknownRuleType)
	assert.Len(t, roll.Rows, 2)
}

func TestBalanceReport_Errors(t *testing.T) {
	t.Run("invalid month", func(t *testing.T) {
		eng, _, _ := newTestEngine()
		_, err := eng.BalanceReport(context.Background(), testRegistry(t), 13, 2024)
		require.ErrorIs(t, err, calendar.ErrInvalidMonth)
	})

	t.Run("transaction in unknown category", func(t *testing.T) {
		eng, ledger, _ := newTestEngine()
		ledger.add(2024, 5, 2, 99, -100)
		_, err := eng.BalanceReport(context.Background(), testRegistry(t), 5, 2024)
		require.ErrorIs(t, err, common.ErrNotFound)
	})

	t.Run("ledger failure during prediction", func(t *testing.T) {
		eng, ledger, records := newTestEngine()
		ledger.err = errLedgerDown
		records.add(model.BudgetRecord{Amount: -100, CategoryID: catRent, Type: model.RuleMonthly, Month: 5, Year: 2024})
		_, err := eng.BalanceReport(context.Background(), testRegistry(t), 5, 2024)
		require.ErrorIs(t, err, errLedgerDown)
	})
}
