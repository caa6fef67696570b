package main

import (
	"context"
	"errors"
	"testing"

	"github.com/Veraticus/cashflow/internal/calendar"
	"github.com/Veraticus/cashflow/internal/engine"
	"github.com/Veraticus/cashflow/internal/model"
	"github.com/Veraticus/cashflow/internal/registry"
	"github.com/Veraticus/cashflow/internal/sheets"
	"github.com/Veraticus/cashflow/internal/testutil"
	"github.com/Veraticus/cashflow/internal/testutil/categories"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestSession(t *testing.T) *session {
	t.Helper()
	db := testutil.SetupTestDB(t, func(b *categories.Builder) *categories.Builder {
		return b.WithHousehold()
	})

	acc := db.MustAccount("Checking", model.AccountTypeBank)
	rent := db.Category("Home::Rent")
	db.MustRecord(model.BudgetRecord{Type: model.RuleMonthly, CategoryID: rent, Month: 3, Year: 2024, Amount: -120000})
	db.MustTransactions(
		testutil.Txn(acc.ID, rent, calendar.Date(2024, 3, 1), -120000, "March rent"),
		testutil.Txn(acc.ID, db.Category("Income::Salary"), calendar.Date(2024, 3, 15), 250000, "Salary"),
	)

	reg, err := registry.Load(context.Background(), db.Storage)
	require.NoError(t, err)
	return &session{store: db.Storage, reg: reg, eng: engine.New(db.Storage, db.Storage)}
}

func TestExportReport(t *testing.T) {
	s := newTestSession(t)
	writer := sheets.NewMockWriter()

	report, err := exportReport(context.Background(), s, writer, 3, 2024)
	require.NoError(t, err)

	assert.Equal(t, 1, writer.WriteCalls)
	assert.Same(t, report, writer.LastReport)
	assert.Equal(t, "March 2024", report.Period())
	require.Len(t, report.Bars, 2)
	assert.Equal(t, "Home::Rent", report.Bars[0].Category.DisplayName())
	assert.NotEmpty(t, report.Rows)
	assert.False(t, report.Generated.IsZero())
}

func TestExportReport_WriteError(t *testing.T) {
	s := newTestSession(t)
	writer := sheets.NewMockWriter()
	boom := errors.New("quota exceeded")
	writer.SetWriteError(boom)

	_, err := exportReport(context.Background(), s, writer, 3, 2024)
	require.ErrorIs(t, err, boom)
}
