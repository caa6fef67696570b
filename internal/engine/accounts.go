package engine

import (
	"github.com/Veraticus/cashflow/internal/model"
	"github.com/Veraticus/cashflow/internal/money"
)

// AccountGroup is the open accounts of one type.
type AccountGroup struct {
	Type     model.AccountType
	Accounts []model.Account
	Subtotal money.Cents
}

// ShowSubtotal reports whether the subtotal adds anything to the listing.
func (g AccountGroup) ShowSubtotal() bool {
	return len(g.Accounts) > 1
}

// AccountSummary groups open accounts by type in AccountTypes order.
type AccountSummary struct {
	Groups []AccountGroup
	Total  money.Cents
}

// SummarizeAccounts hides closed accounts and leaves accounts excluded from
// total out of the subtotals and the grand total. They are still listed.
func SummarizeAccounts(accounts []model.Account) AccountSummary {
	byType := make(map[model.AccountType]*AccountGroup)
	for _, acc := range accounts {
		if acc.Closed {
			continue
		}
		g, ok := byType[acc.Type]
		if !ok {
			g = &AccountGroup{Type: acc.Type}
			byType[acc.Type] = g
		}
		g.Accounts = append(g.Accounts, acc)
		if !acc.ExcludeFromTotal {
			g.Subtotal += acc.Balance
		}
	}

	var s AccountSummary
	for _, t := range model.AccountTypes {
		if g, ok := byType[t]; ok {
			s.Groups = append(s.Groups, *g)
			s.Total += g.Subtotal
		}
	}
	return s
}
