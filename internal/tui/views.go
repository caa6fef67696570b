package tui

import (
	"fmt"
	"strings"

	"github.com/Veraticus/cashflow/internal/calendar"
	"github.com/Veraticus/cashflow/internal/model"
	"github.com/charmbracelet/lipgloss"
)

// View renders the UI.
func (m Model) View() string {
	if m.quitting {
		return ""
	}

	var b strings.Builder
	b.WriteString(m.theme.Title.Render("Budget " + calendar.Label(m.month, m.year)))
	b.WriteString("\n")

	switch {
	case m.lastError != nil:
		b.WriteString(m.theme.ErrorText.Render("Error: " + m.lastError.Error()))
	case m.loading && len(m.bars) == 0:
		b.WriteString(m.theme.Muted.Render("Loading..."))
	case len(m.bars) == 0:
		b.WriteString(m.theme.Muted.Render("No budget or activity in this period."))
	default:
		b.WriteString(m.renderBars())
	}
	b.WriteString("\n")

	b.WriteString(m.theme.StatusBar.Render(m.help.View(m.keymap)))
	return b.String()
}

func (m Model) renderBars() string {
	nameWidth := 0
	for _, bar := range m.bars {
		nameWidth = max(nameWidth, lipgloss.Width(bar.Category.DisplayName()))
	}

	lines := make([]string, 0, len(m.bars)+1)
	for i, bar := range m.bars {
		name := fmt.Sprintf("%-*s", nameWidth, bar.Category.DisplayName())
		if i == m.cursor {
			name = m.theme.Selected.Render(name)
		} else {
			name = m.theme.Normal.Render(name)
		}
		lines = append(lines, fmt.Sprintf("%s  %s  %s", name, m.bar.ViewAs(bar.Progress()), m.renderAmounts(bar)))
	}

	if selected, ok := m.Selected(); ok {
		lines = append(lines, "", m.renderDetail(selected))
	}
	return strings.Join(lines, "\n")
}

func (m Model) renderAmounts(bar model.BudgetBar) string {
	s := fmt.Sprintf("%s / %s", bar.Actual.StringFixed(2), bar.Budget.StringFixed(2))
	if overspent(bar) {
		return m.theme.Overspent.Render(s)
	}
	return s
}

func (m Model) renderDetail(bar model.BudgetBar) string {
	expected := bar.Expectation.String()
	if bar.Expectation.IsError {
		expected = m.theme.ErrorText.Render(expected + " (budget and actual disagree in sign)")
	}
	return m.theme.Subtitle.Render(fmt.Sprintf("%s: expected %s", bar.Category.DisplayName(), expected))
}

// overspent reports whether realized activity passed a nonzero budget.
func overspent(bar model.BudgetBar) bool {
	return !bar.Budget.IsZero() && bar.Actual.GreaterThan(bar.Budget)
}
