package engine

import (
	"context"
	"fmt"
	"time"

	"github.com/Veraticus/cashflow/internal/calendar"
	"github.com/Veraticus/cashflow/internal/model"
	"github.com/Veraticus/cashflow/internal/money"
)

type event struct {
	date   time.Time
	amount money.Cents
}

// expand turns one record into its events within ym, dropping any dated
// before cutoff. Records are expanded in the month they are walked in.
func (e *Engine) expand(ctx context.Context, r model.BudgetRecord, ym calendar.YearMonth, cutoff time.Time) ([]event, error) {
	var events []event
	switch r.Type {
	case model.RuleMonthly:
		ev, ok, err := e.expandMonthly(ctx, r, ym, cutoff)
		if err != nil || !ok {
			return nil, err
		}
		events = []event{ev}
	case model.RulePoint:
		events = expandPoint(r, ym)
	case model.RuleDaily:
		events = spread(r.Amount, calendar.EveryDay(ym.Month, ym.Year))
	case model.RuleWeekly:
		events = spread(r.Amount, calendar.Weekdays(ym.Month, ym.Year, r.Day))
	default:
		return nil, fmt.Errorf("%w: record %d has type %q", ErrUnknownRuleType, r.ID, r.Type)
	}

	kept := events[:0]
	for _, ev := range events {
		if !ev.date.Before(cutoff) {
			kept = append(kept, ev)
		}
	}
	return kept, nil
}

// mergeMonthly folds every Monthly record of a category into the first one
// so the category's actual is reconciled once against its combined budget.
func mergeMonthly(records []model.BudgetRecord) []model.BudgetRecord {
	first := make(map[int]int)
	out := make([]model.BudgetRecord, 0, len(records))
	for _, r := range records {
		if r.Type != model.RuleMonthly {
			out = append(out, r)
			continue
		}
		if i, ok := first[r.CategoryID]; ok {
			out[i].Amount += r.Amount
			continue
		}
		first[r.CategoryID] = len(out)
		out = append(out, r)
	}
	return out
}

// expandMonthly predicts what is left of the month's budget on its last
// day. Sign mismatches fall back to the full budget.
func (e *Engine) expandMonthly(ctx context.Context, r model.BudgetRecord, ym calendar.YearMonth, cutoff time.Time) (event, bool, error) {
	if r.Amount == 0 {
		return event{}, false, nil
	}
	first, last, err := calendar.Bounds(ym.Month, ym.Year)
	if err != nil {
		return event{}, false, err
	}
	if last.Before(cutoff) {
		return event{}, false, nil
	}

	actual, err := e.ledger.SumTransactions(ctx, first, last, r.CategoryID)
	if err != nil {
		return event{}, false, fmt.Errorf("failed to sum actuals for record %d: %w", r.ID, err)
	}

	rec := Reconcile(r.Amount, actual)
	remaining := rec.Remaining
	if rec.Mismatch {
		remaining = r.Amount
	}
	if remaining == 0 {
		return event{}, false, nil
	}
	return event{date: last, amount: remaining}, true, nil
}

func expandPoint(r model.BudgetRecord, ym calendar.YearMonth) []event {
	day := min(max(r.Day, 1), calendar.DaysIn(ym.Month, ym.Year))
	return []event{{date: calendar.Date(ym.Year, ym.Month, day), amount: r.Amount}}
}

// spread prorates amount over dates. No dates yields no events.
func spread(amount money.Cents, dates []time.Time) []event {
	shares := amount.Split(len(dates))
	events := make([]event, len(dates))
	for i, d := range dates {
		events[i] = event{date: d, amount: shares[i]}
	}
	return events
}
