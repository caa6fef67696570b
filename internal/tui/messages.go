package tui

import "github.com/Veraticus/cashflow/internal/model"

// barsLoadedMsg carries a freshly computed report.
type barsLoadedMsg struct {
	bars  []model.BudgetBar
	month int
	year  int
}

// errorMsg reports a failed load.
type errorMsg struct {
	err error
}
