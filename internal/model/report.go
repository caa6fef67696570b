package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Prediction is a dated event expected from a budget record.
type Prediction struct {
	Date     time.Time
	Amount   decimal.Decimal
	Category Category
	Type     RuleType
	RecordID int
}

// Expectation is the amount still expected for a category, or a marker
// that budget and actual disagree in sign.
type Expectation struct {
	Amount  decimal.Decimal
	IsError bool
}

// ExpectationError marks a sign mismatch between budget and actual.
var ExpectationError = Expectation{IsError: true}

func (e Expectation) String() string {
	if e.IsError {
		return "Error"
	}
	return e.Amount.StringFixed(2)
}

// BudgetBar compares budget and actual for one category. Actual and Budget
// are magnitudes.
type BudgetBar struct {
	Category    Category
	Actual      decimal.Decimal
	Budget      decimal.Decimal
	Expectation Expectation
}

// Progress returns actual as a fraction of budget, capped at 1. A zero
// budget reports 1 when anything was realized.
func (b BudgetBar) Progress() float64 {
	if b.Budget.IsZero() {
		if b.Actual.IsZero() {
			return 0
		}
		return 1
	}
	p, _ := b.Actual.Div(b.Budget).Float64()
	return min(p, 1)
}

// RowOrigin tells where a balance roll row came from.
type RowOrigin string

const (
	// OriginOpening is the balance carried into the window.
	OriginOpening RowOrigin = "Opening"
	// OriginTransaction is a realized transaction.
	OriginTransaction RowOrigin = "Transaction"
	// OriginBudget is a predicted event.
	OriginBudget RowOrigin = "Budget"
)

// BalanceRow is one line of the running balance forecast.
type BalanceRow struct {
	Date     time.Time
	Amount   decimal.Decimal
	Total    decimal.Decimal
	Info     string
	Category Category
	Origin   RowOrigin
}
