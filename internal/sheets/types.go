package sheets

import (
	"context"
	"time"

	"github.com/Veraticus/cashflow/internal/calendar"
	"github.com/Veraticus/cashflow/internal/model"
)

// Tab names in the exported spreadsheet.
const (
	BudgetTab  = "Budget"
	BalanceTab = "Balance"
)

// Report is everything exported for one period.
type Report struct {
	Generated time.Time
	Bars      []model.BudgetBar
	Rows      []model.BalanceRow
	Month     int
	Year      int
}

// Period names the report window, "March 2024" or "2024".
func (r *Report) Period() string {
	return calendar.Label(r.Month, r.Year)
}

// ReportWriter publishes a report.
type ReportWriter interface {
	Write(ctx context.Context, report *Report) error
}
