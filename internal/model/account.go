package model

import "github.com/Veraticus/cashflow/internal/money"

// AccountType classifies where money is held.
type AccountType string

const (
	// AccountTypeBank is a checking or savings account.
	AccountTypeBank AccountType = "Bank"
	// AccountTypeCash is physical cash.
	AccountTypeCash AccountType = "Cash"
	// AccountTypeCreditCard is a credit card account.
	AccountTypeCreditCard AccountType = "Credit Card"
)

// AccountTypes lists the valid account types in display order.
var AccountTypes = []AccountType{AccountTypeBank, AccountTypeCash, AccountTypeCreditCard}

// Valid reports whether t is a known account type.
func (t AccountType) Valid() bool {
	for _, known := range AccountTypes {
		if t == known {
			return true
		}
	}
	return false
}

// Account holds transactions. Its balance is derived from them.
type Account struct {
	Name              string
	Type              AccountType
	ID                int
	Balance           money.Cents
	Closed            bool
	ExcludeFromBudget bool // transactions do not count as budget actuals
	ExcludeFromTotal  bool // balance is left out of totals and forecasts
}
