package cli

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/Veraticus/cashflow/internal/calendar"
	"github.com/Veraticus/cashflow/internal/engine"
	"github.com/Veraticus/cashflow/internal/model"
	"github.com/shopspring/decimal"
)

const barWidth = 20

func newTable(w io.Writer) *tabwriter.Writer {
	return tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
}

// Bar draws a fixed-width progress bar for a fraction in [0, 1].
func Bar(fraction float64) string {
	filled := int(fraction*barWidth + 0.5)
	filled = min(max(filled, 0), barWidth)
	return "[" + strings.Repeat("#", filled) + strings.Repeat("-", barWidth-filled) + "]"
}

func amount(d decimal.Decimal) string {
	s := d.StringFixed(2)
	if d.IsNegative() {
		return ErrorStyle.Render(s)
	}
	return s
}

// RenderBudget prints one line per budget bar.
func RenderBudget(w io.Writer, period string, bars []model.BudgetBar) error {
	if _, err := fmt.Fprintln(w, FormatTitle("Budget "+period)); err != nil {
		return err
	}
	if len(bars) == 0 {
		_, err := fmt.Fprintln(w, SubtleStyle.Render("No budget or activity in this period."))
		return err
	}

	tw := newTable(w)
	_, _ = fmt.Fprintln(tw, "CATEGORY\tPROGRESS\tACTUAL\tBUDGET\tEXPECTED")
	for _, bar := range bars {
		expected := bar.Expectation.String()
		if bar.Expectation.IsError {
			expected = ErrorStyle.Render(expected)
		}
		_, _ = fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n",
			bar.Category.DisplayName(),
			Bar(bar.Progress()),
			bar.Actual.StringFixed(2),
			bar.Budget.StringFixed(2),
			expected)
	}
	return tw.Flush()
}

// RenderBalance prints the running balance roll. Predicted rows are dimmed.
func RenderBalance(w io.Writer, period string, rows []model.BalanceRow) error {
	if _, err := fmt.Fprintln(w, FormatTitle("Balance "+period)); err != nil {
		return err
	}

	tw := newTable(w)
	_, _ = fmt.Fprintln(tw, "DATE\tSOURCE\tCATEGORY\tINFO\tAMOUNT\tTOTAL")
	for _, row := range rows {
		source := string(row.Origin)
		if row.Origin == model.OriginBudget {
			source = SubtleStyle.Render(source)
		}
		_, _ = fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\n",
			row.Date.Format(calendar.DateLayout),
			source,
			row.Category.DisplayName(),
			row.Info,
			row.Amount.StringFixed(2),
			amount(row.Total))
	}
	return tw.Flush()
}

// RenderPredictions prints forecast events.
func RenderPredictions(w io.Writer, preds []model.Prediction) error {
	tw := newTable(w)
	_, _ = fmt.Fprintln(tw, "DATE\tCATEGORY\tRULE\tAMOUNT")
	for _, p := range preds {
		_, _ = fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n",
			p.Date.Format(calendar.DateLayout),
			p.Category.DisplayName(),
			p.Type,
			p.Amount.StringFixed(2))
	}
	return tw.Flush()
}

// RenderAccounts prints open accounts grouped by type.
func RenderAccounts(w io.Writer, summary engine.AccountSummary) error {
	tw := newTable(w)
	_, _ = fmt.Fprintln(tw, "ID\tACCOUNT\tBALANCE\t")
	for _, g := range summary.Groups {
		_, _ = fmt.Fprintf(tw, "\t%s\t\t\n", BoldStyle.Render(string(g.Type)))
		for _, acc := range g.Accounts {
			note := ""
			if acc.ExcludeFromTotal {
				note = SubtleStyle.Render("(excluded from total)")
			}
			_, _ = fmt.Fprintf(tw, "%d\t  %s\t%s\t%s\n", acc.ID, acc.Name, amount(acc.Balance.Decimal()), note)
		}
		if g.ShowSubtotal() {
			_, _ = fmt.Fprintf(tw, "\t  Subtotal\t%s\t\n", amount(g.Subtotal.Decimal()))
		}
	}
	_, _ = fmt.Fprintf(tw, "\t%s\t%s\t\n", BoldStyle.Render("Total"), amount(summary.Total.Decimal()))
	return tw.Flush()
}

// RenderCategories prints the category tree, subcategories indented under
// their parent.
func RenderCategories(w io.Writer, categories []model.Category) error {
	children := make(map[int][]model.Category)
	var roots []model.Category
	for _, c := range categories {
		if c.ID == model.UncategorizedID {
			continue
		}
		if c.IsSubcategory() {
			children[c.ParentID] = append(children[c.ParentID], c)
		} else {
			roots = append(roots, c)
		}
	}

	tw := newTable(w)
	_, _ = fmt.Fprintln(tw, "ID\tCATEGORY")
	for _, root := range roots {
		_, _ = fmt.Fprintf(tw, "%d\t%s\n", root.ID, BoldStyle.Render(root.Name))
		for _, sub := range children[root.ID] {
			_, _ = fmt.Fprintf(tw, "%d\t  %s\n", sub.ID, sub.Name)
		}
	}
	return tw.Flush()
}

// RenderRecords prints budget records. lookup resolves category names.
func RenderRecords(w io.Writer, records []model.BudgetRecord, lookup func(id int) string) error {
	tw := newTable(w)
	_, _ = fmt.Fprintln(tw, "ID\tMONTH\tCATEGORY\tRULE\tDAY\tAMOUNT")
	for _, r := range records {
		day := ""
		if r.Type == model.RulePoint || r.Type == model.RuleWeekly {
			day = fmt.Sprintf("%d", r.Day)
		}
		_, _ = fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\t%s\n",
			r.ID,
			calendar.YearMonth{Year: r.Year, Month: r.Month},
			lookup(r.CategoryID),
			r.Type,
			day,
			r.Amount)
	}
	return tw.Flush()
}

// RenderTransactions prints transactions. lookup resolves category names.
func RenderTransactions(w io.Writer, txns []model.Transaction, lookup func(id int) string) error {
	tw := newTable(w)
	_, _ = fmt.Fprintln(tw, "ID\tDATE\tCATEGORY\tINFO\tAMOUNT")
	for _, t := range txns {
		_, _ = fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\n",
			t.ID,
			t.Date.Format(calendar.DateLayout),
			lookup(t.CategoryID),
			t.Info,
			amount(t.Amount.Decimal()))
	}
	return tw.Flush()
}
