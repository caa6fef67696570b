package model

import "github.com/Veraticus/cashflow/internal/money"

// RuleType selects how a budget record expands into predicted events.
type RuleType string

const (
	// RuleMonthly budgets an amount for the whole month, predicted on its
	// last day as whatever has not been realized yet.
	RuleMonthly RuleType = "Monthly"
	// RulePoint is a single event on a specific day.
	RulePoint RuleType = "Point"
	// RuleDaily spreads the amount over every day of the month.
	RuleDaily RuleType = "Daily"
	// RuleWeekly spreads the amount over every occurrence of a weekday.
	RuleWeekly RuleType = "Weekly"
)

// RuleTypes lists the closed set of rule types.
var RuleTypes = []RuleType{RuleMonthly, RulePoint, RuleDaily, RuleWeekly}

// Valid reports whether t is one of RuleTypes.
func (t RuleType) Valid() bool {
	switch t {
	case RuleMonthly, RulePoint, RuleDaily, RuleWeekly:
		return true
	default:
		return false
	}
}

// BudgetRecord is one budget rule scoped to a single month.
//
// Day is ignored for Monthly and Daily rules, is a day of month for Point
// rules and a weekday (1=Monday..7=Sunday) for Weekly rules.
type BudgetRecord struct {
	Type       RuleType
	ID         int
	CategoryID int
	Day        int
	Month      int
	Year       int
	Amount     money.Cents
}
