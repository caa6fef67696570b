package engine

import (
	"context"
	"errors"
	"sort"
	"testing"
	"time"

	"github.com/Veraticus/cashflow/internal/calendar"
	"github.com/Veraticus/cashflow/internal/model"
	"github.com/Veraticus/cashflow/internal/money"
	"github.com/Veraticus/cashflow/internal/registry"
	"github.com/stretchr/testify/require"
)

const (
	catSalary    = 1
	catRent      = 2
	catGroceries = 3
)

type fakeTxn struct {
	model.Transaction
	excludeFromBudget bool
}

type fakeLedger struct {
	err  error
	txns []fakeTxn
}

func (l *fakeLedger) add(y, m, d int, categoryID int, amount money.Cents) {
	l.txns = append(l.txns, fakeTxn{Transaction: model.Transaction{
		ID:         len(l.txns) + 1,
		Date:       calendar.Date(y, m, d),
		Amount:     amount,
		CategoryID: categoryID,
		Info:       "txn",
	}})
}

func within(t, from, to time.Time) bool {
	return !t.Before(from) && !t.After(to)
}

func (l *fakeLedger) SumTransactions(_ context.Context, from, to time.Time, categoryID int) (money.Cents, error) {
	if l.err != nil {
		return 0, l.err
	}
	var sum money.Cents
	for _, t := range l.txns {
		if t.CategoryID == categoryID && !t.excludeFromBudget && within(t.Date, from, to) {
			sum += t.Amount
		}
	}
	return sum, nil
}

func (l *fakeLedger) BalanceAsOf(_ context.Context, cutoff time.Time) (money.Cents, error) {
	var sum money.Cents
	for _, t := range l.txns {
		if t.Date.Before(cutoff) {
			sum += t.Amount
		}
	}
	return sum, nil
}

func (l *fakeLedger) LastTransactionDate(_ context.Context) (time.Time, error) {
	last := calendar.Epoch
	for _, t := range l.txns {
		if t.Date.After(last) {
			last = t.Date
		}
	}
	return last, nil
}

func (l *fakeLedger) ListTransactions(_ context.Context, from, to time.Time) ([]model.Transaction, error) {
	var out []model.Transaction
	for _, t := range l.txns {
		if within(t.Date, from, to) {
			out = append(out, t.Transaction)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out, nil
}

type fakeRecords struct {
	records []model.BudgetRecord
	calls   []calendar.YearMonth
}

func (f *fakeRecords) add(r model.BudgetRecord) {
	r.ID = len(f.records) + 1
	f.records = append(f.records, r)
}

func (f *fakeRecords) GetRecords(_ context.Context, month, year int) ([]model.BudgetRecord, error) {
	f.calls = append(f.calls, calendar.YearMonth{Year: year, Month: month})
	var out []model.BudgetRecord
	for _, r := range f.records {
		if r.Year == year && (month == calendar.WholeYear || r.Month == month) {
			out = append(out, r)
		}
	}
	return out, nil
}

type fakeCategories []model.Category

func (f fakeCategories) GetCategories(_ context.Context) ([]model.Category, error) {
	return f, nil
}

func testRegistry(t *testing.T) *registry.Registry {
	t.Helper()
	reg, err := registry.Load(context.Background(), fakeCategories{
		{ID: catSalary, Name: "Salary", Parent: "Income", ParentID: 10},
		{ID: catRent, Name: "Rent", Parent: "Home", ParentID: 11},
		{ID: catGroceries, Name: "Groceries", Parent: "Food", ParentID: 12},
	})
	require.NoError(t, err)
	return reg
}

func newTestEngine() (*Engine, *fakeLedger, *fakeRecords) {
	ledger := &fakeLedger{}
	records := &fakeRecords{}
	return New(ledger, records), ledger, records
}

var errLedgerDown = errors.New("ledger down")
