package engine

import (
	"context"
	"testing"
	"time"

	"github.com/Veraticus/cashflow/internal/calendar"
	"github.com/Veraticus/cashflow/internal/common"
	"github.com/Veraticus/cashflow/internal/model"
	"github.com/Veraticus/cashflow/internal/money"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func collect(t *testing.T, eng *Engine, month, year int, cutoff time.Time) []model.Prediction {
	t.Helper()
	f, err := eng.Predict(context.Background(), testRegistry(t), month, year, cutoff)
	require.NoError(t, err)
	preds, err := f.Collect()
	require.NoError(t, err)
	require.NoError(t, f.Warnings())
	return preds
}

func sumAmounts(preds []model.Prediction) decimal.Decimal {
	total := decimal.Zero
	for _, p := range preds {
		total = total.Add(p.Amount)
	}
	return total
}

func TestPredict_Point(t *testing.T) {
	eng, _, records := newTestEngine()
	records.add(model.BudgetRecord{Amount: -45000, CategoryID: catRent, Type: model.RulePoint, Day: 15, Month: 3, Year: 2024})

	t.Run("before the event", func(t *testing.T) {
		preds := collect(t, eng, 3, 2024, calendar.Date(2024, 3, 10))
		require.Len(t, preds, 1)
		assert.Equal(t, calendar.Date(2024, 3, 15), preds[0].Date)
		assert.True(t, dec("-450").Equal(preds[0].Amount))
		assert.Equal(t, "Home::Rent", preds[0].Category.DisplayName())
		assert.Equal(t, model.RulePoint, preds[0].Type)
	})

	t.Run("on the event day", func(t *testing.T) {
		preds := collect(t, eng, 3, 2024, calendar.Date(2024, 3, 15))
		assert.Len(t, preds, 1)
	})

	t.Run("after the event", func(t *testing.T) {
		preds := collect(t, eng, 3, 2024, calendar.Date(2024, 3, 20))
		assert.Empty(t, preds)
	})

	t.Run("day past month end is clamped", func(t *testing.T) {
		eng, _, records := newTestEngine()
		records.add(model.BudgetRecord{Amount: -100, CategoryID: catRent, Type: model.RulePoint, Day: 31, Month: 2, Year: 2023})
		preds := collect(t, eng, 2, 2023, calendar.Date(2023, 1, 1))
		require.Len(t, preds, 1)
		assert.Equal(t, calendar.Date(2023, 2, 28), preds[0].Date)
	})
}

func TestPredict_Daily(t *testing.T) {
	tests := []struct {
		name   string
		amount money.Cents
		month  int
		year   int
		days   int
	}{
		{name: "even split", amount: -3100, month: 1, year: 2024, days: 31},
		{name: "uneven split", amount: -10000, month: 4, year: 2024, days: 30},
		{name: "leap february", amount: 100001, month: 2, year: 2024, days: 29},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			eng, _, records := newTestEngine()
			records.add(model.BudgetRecord{Amount: tt.amount, CategoryID: catGroceries, Type: model.RuleDaily, Month: tt.month, Year: tt.year})

			preds := collect(t, eng, tt.month, tt.year, calendar.Date(tt.year, tt.month, 1))
			require.Len(t, preds, tt.days)
			assert.True(t, tt.amount.Decimal().Equal(sumAmounts(preds)), "shares sum to the record amount")

			for i, p := range preds {
				assert.Equal(t, calendar.Date(tt.year, tt.month, i+1), p.Date)
			}
		})
	}

	t.Run("days before cutoff are suppressed", func(t *testing.T) {
		eng, _, records := newTestEngine()
		records.add(model.BudgetRecord{Amount: -3100, CategoryID: catGroceries, Type: model.RuleDaily, Month: 1, Year: 2024})

		preds := collect(t, eng, 1, 2024, calendar.Date(2024, 1, 20))
		require.Len(t, preds, 12)
		assert.Equal(t, calendar.Date(2024, 1, 20), preds[0].Date)
		assert.True(t, dec("-1").Equal(preds[0].Amount))
	})
}

func TestPredict_Weekly(t *testing.T) {
	eng, _, records := newTestEngine()
	// March 2024 has five Fridays and four Mondays.
	records.add(model.BudgetRecord{Amount: -10000, CategoryID: catGroceries, Type: model.RuleWeekly, Day: 5, Month: 3, Year: 2024})
	records.add(model.BudgetRecord{Amount: -10000, CategoryID: catGroceries, Type: model.RuleWeekly, Day: 1, Month: 3, Year: 2024})

	preds := collect(t, eng, 3, 2024, calendar.Date(2024, 3, 1))
	require.Len(t, preds, 9)

	fridays, mondays := preds[:5], preds[5:]
	for _, p := range fridays {
		assert.Equal(t, time.Friday, p.Date.Weekday())
		assert.True(t, dec("-20").Equal(p.Amount))
	}
	assert.True(t, dec("-100").Equal(sumAmounts(mondays)))
	for _, p := range mondays {
		assert.Equal(t, time.Monday, p.Date.Weekday())
	}
}

func TestPredict_WeeklyWithoutOccurrences(t *testing.T) {
	eng, _, records := newTestEngine()
	// Legacy rows may carry a weekday outside 1..7.
	records.add(model.BudgetRecord{Amount: -10000, CategoryID: catGroceries, Type: model.RuleWeekly, Day: 9, Month: 3, Year: 2024})

	preds := collect(t, eng, 3, 2024, calendar.Date(2024, 3, 1))
	assert.Empty(t, preds)
}

func TestPredict_Monthly(t *testing.T) {
	t.Run("income over-received predicts nothing", func(t *testing.T) {
		eng, ledger, records := newTestEngine()
		records.add(model.BudgetRecord{Amount: 100000, CategoryID: catSalary, Type: model.RuleMonthly, Month: 6, Year: 2024})
		ledger.add(2024, 6, 3, catSalary, 120000)

		assert.Empty(t, collect(t, eng, 6, 2024, calendar.Date(2024, 6, 4)))
	})

	t.Run("spending remainder on last day", func(t *testing.T) {
		eng, ledger, records := newTestEngine()
		records.add(model.BudgetRecord{Amount: -50000, CategoryID: catGroceries, Type: model.RuleMonthly, Month: 6, Year: 2024})
		ledger.add(2024, 6, 3, catGroceries, -12000)

		preds := collect(t, eng, 6, 2024, calendar.Date(2024, 6, 4))
		require.Len(t, preds, 1)
		assert.Equal(t, calendar.Date(2024, 6, 30), preds[0].Date)
		assert.True(t, dec("-380").Equal(preds[0].Amount))
	})

	t.Run("sign mismatch sticks to the plan", func(t *testing.T) {
		eng, ledger, records := newTestEngine()
		records.add(model.BudgetRecord{Amount: -50000, CategoryID: catGroceries, Type: model.RuleMonthly, Month: 6, Year: 2024})
		ledger.add(2024, 6, 3, catGroceries, 2000)

		preds := collect(t, eng, 6, 2024, calendar.Date(2024, 6, 4))
		require.Len(t, preds, 1)
		assert.True(t, dec("-500").Equal(preds[0].Amount))
	})

	t.Run("records of one category share the actual", func(t *testing.T) {
		eng, ledger, records := newTestEngine()
		records.add(model.BudgetRecord{Amount: -50000, CategoryID: catGroceries, Type: model.RuleMonthly, Month: 6, Year: 2024})
		records.add(model.BudgetRecord{Amount: -25000, CategoryID: catRent, Type: model.RulePoint, Day: 20, Month: 6, Year: 2024})
		records.add(model.BudgetRecord{Amount: -50000, CategoryID: catGroceries, Type: model.RuleMonthly, Month: 6, Year: 2024})
		ledger.add(2024, 6, 3, catGroceries, -30000)

		preds := collect(t, eng, 6, 2024, calendar.Date(2024, 6, 4))
		require.Len(t, preds, 2)
		assert.Equal(t, 1, preds[0].RecordID)
		assert.True(t, dec("-700").Equal(preds[0].Amount))

		bars, err := eng.BudgetReport(context.Background(), testRegistry(t), 6, 2024)
		require.NoError(t, err)
		for _, bar := range bars {
			if bar.Category.ID == catGroceries {
				assert.True(t, dec("-700").Equal(bar.Expectation.Amount))
			}
		}
	})

	t.Run("zero budget", func(t *testing.T) {
		eng, _, records := newTestEngine()
		records.add(model.BudgetRecord{Amount: 0, CategoryID: catGroceries, Type: model.RuleMonthly, Month: 6, Year: 2024})
		assert.Empty(t, collect(t, eng, 6, 2024, calendar.Date(2024, 6, 1)))
	})

	t.Run("cutoff after last day", func(t *testing.T) {
		eng, _, records := newTestEngine()
		records.add(model.BudgetRecord{Amount: -100, CategoryID: catGroceries, Type: model.RuleMonthly, Month: 6, Year: 2024})
		assert.Empty(t, collect(t, eng, 0, 2024, calendar.Date(2024, 7, 1)))
	})
}

func TestPredict_WalkAcrossYears(t *testing.T) {
	eng, _, records := newTestEngine()
	records.add(model.BudgetRecord{Amount: -100, CategoryID: catRent, Type: model.RulePoint, Day: 1, Month: 11, Year: 2023})
	records.add(model.BudgetRecord{Amount: -200, CategoryID: catRent, Type: model.RulePoint, Day: 1, Month: 12, Year: 2023})
	records.add(model.BudgetRecord{Amount: -300, CategoryID: catRent, Type: model.RulePoint, Day: 1, Month: 2, Year: 2024})
	records.add(model.BudgetRecord{Amount: -400, CategoryID: catRent, Type: model.RulePoint, Day: 1, Month: 3, Year: 2024})

	// Cutoff before the window pulls the walk back into the previous year.
	preds := collect(t, eng, 2, 2024, calendar.Date(2023, 11, 15))
	require.Len(t, preds, 2)
	assert.Equal(t, calendar.Date(2023, 12, 1), preds[0].Date)
	assert.Equal(t, calendar.Date(2024, 2, 1), preds[1].Date)

	assert.Equal(t, []calendar.YearMonth{
		{Year: 2023, Month: 11}, {Year: 2023, Month: 12}, {Year: 2024, Month: 1}, {Year: 2024, Month: 2},
	}, records.calls)
}

func TestPredict_NeverBeforeCutoff(t *testing.T) {
	eng, ledger, records := newTestEngine()
	for m := 1; m <= 12; m++ {
		records.add(model.BudgetRecord{Amount: -3100, CategoryID: catGroceries, Type: model.RuleDaily, Month: m, Year: 2024})
		records.add(model.BudgetRecord{Amount: -2000, CategoryID: catGroceries, Type: model.RuleWeekly, Day: m%7 + 1, Month: m, Year: 2024})
		records.add(model.BudgetRecord{Amount: 5000, CategoryID: catSalary, Type: model.RuleMonthly, Month: m, Year: 2024})
		records.add(model.BudgetRecord{Amount: -700, CategoryID: catRent, Type: model.RulePoint, Day: 10, Month: m, Year: 2024})
	}
	ledger.add(2024, 5, 1, catSalary, 1000)

	for _, cutoff := range []time.Time{
		calendar.Date(2023, 6, 1),
		calendar.Date(2024, 1, 1),
		calendar.Date(2024, 5, 17),
		calendar.Date(2024, 12, 31),
		calendar.Date(2025, 1, 1),
	} {
		preds := collect(t, eng, calendar.WholeYear, 2024, cutoff)
		for _, p := range preds {
			assert.False(t, p.Date.Before(cutoff), "prediction %s before cutoff %s", p.Date, cutoff)
		}
	}
}

func TestPredict_OrderIsMonthThenRecordThenDay(t *testing.T) {
	eng, _, records := newTestEngine()
	records.add(model.BudgetRecord{Amount: -300, CategoryID: catRent, Type: model.RulePoint, Day: 20, Month: 1, Year: 2024})
	records.add(model.BudgetRecord{Amount: -300, CategoryID: catGroceries, Type: model.RulePoint, Day: 5, Month: 1, Year: 2024})
	records.add(model.BudgetRecord{Amount: -300, CategoryID: catRent, Type: model.RulePoint, Day: 1, Month: 2, Year: 2024})

	preds := collect(t, eng, calendar.WholeYear, 2024, calendar.Date(2024, 1, 1))
	require.Len(t, preds, 3)
	assert.Equal(t, 1, preds[0].RecordID, "record order, not date order, within a month")
	assert.Equal(t, 2, preds[1].RecordID)
	assert.Equal(t, 3, preds[2].RecordID)
}

func TestPredict_UnknownRuleTypeWarns(t *testing.T) {
	eng, _, records := newTestEngine()
	records.add(model.BudgetRecord{Amount: -100, CategoryID: catRent, Type: "Yearly", Month: 1, Year: 2024})
	records.add(model.BudgetRecord{Amount: -100, CategoryID: catRent, Type: "Hourly", Month: 1, Year: 2024})
	records.add(model.BudgetRecord{Amount: -100, CategoryID: catRent, Type: model.RulePoint, Day: 2, Month: 1, Year: 2024})

	f, err := eng.Predict(context.Background(), testRegistry(t), 1, 2024, calendar.Date(2024, 1, 1))
	require.NoError(t, err)
	preds, err := f.Collect()
	require.NoError(t, err)
	require.Len(t, preds, 1)

	warn := f.Warnings()
	require.ErrorIs(t, warn, ErrUnknownRuleType)
	assert.Contains(t, warn.Error(), "Yearly")
	assert.Contains(t, warn.Error(), "Hourly")
}

func TestPredict_UnknownCategoryAborts(t *testing.T) {
	eng, _, records := newTestEngine()
	records.add(model.BudgetRecord{Amount: -100, CategoryID: 404, Type: model.RulePoint, Day: 2, Month: 1, Year: 2024})

	f, err := eng.Predict(context.Background(), testRegistry(t), 1, 2024, calendar.Date(2024, 1, 1))
	require.NoError(t, err)
	assert.False(t, f.Next())
	require.ErrorIs(t, f.Err(), common.ErrNotFound)
}

func TestPredict_SinglePass(t *testing.T) {
	eng, _, records := newTestEngine()
	records.add(model.BudgetRecord{Amount: -100, CategoryID: catRent, Type: model.RulePoint, Day: 2, Month: 1, Year: 2024})

	f, err := eng.Predict(context.Background(), testRegistry(t), 1, 2024, calendar.Date(2024, 1, 1))
	require.NoError(t, err)
	assert.True(t, f.Next())
	assert.False(t, f.Next())
	assert.False(t, f.Next())
}

func TestPredict_InvalidMonth(t *testing.T) {
	eng, _, _ := newTestEngine()
	_, err := eng.Predict(context.Background(), testRegistry(t), -1, 2024, calendar.Date(2024, 1, 1))
	require.ErrorIs(t, err, calendar.ErrInvalidMonth)
}
