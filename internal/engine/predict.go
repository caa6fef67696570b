package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/Veraticus/cashflow/internal/calendar"
	"github.com/Veraticus/cashflow/internal/model"
	"github.com/Veraticus/cashflow/internal/registry"
)

// ErrUnknownRuleType marks a stored record whose rule type cannot be
// expanded. Such records are skipped and reported through Warnings.
var ErrUnknownRuleType = errors.New("unknown budget rule type")

// Forecast is a single-pass stream of predictions, produced one month at a
// time. Use it like bufio.Scanner:
//
//	for f.Next() {
//		p := f.Prediction()
//	}
//	if err := f.Err(); err != nil { ... }
type Forecast struct {
	ctx      context.Context
	engine   *Engine
	reg      *registry.Registry
	cutoff   time.Time
	err      error
	months   []calendar.YearMonth
	pending  []model.Prediction
	warnings []error
	current  model.Prediction
}

// Predict expands budget records into dated events for the window (month,
// year), starting from the earlier of the window start and cutoff. Events
// dated before cutoff are never produced.
func (e *Engine) Predict(ctx context.Context, reg *registry.Registry, month, year int, cutoff time.Time) (*Forecast, error) {
	windowStart, windowEnd, err := calendar.Bounds(month, year)
	if err != nil {
		return nil, err
	}

	cutoff = calendar.Truncate(cutoff)
	start := windowStart
	if cutoff.Before(start) {
		start = cutoff
	}

	months := calendar.Months(start, windowEnd)
	slog.Debug("forecast prepared",
		"start", start.Format(calendar.DateLayout),
		"end", windowEnd.Format(calendar.DateLayout),
		"cutoff", cutoff.Format(calendar.DateLayout),
		"months", len(months))

	return &Forecast{
		ctx:    ctx,
		engine: e,
		reg:    reg,
		cutoff: cutoff,
		months: months,
	}, nil
}

// Next advances to the next prediction, loading further months on demand.
// It returns false when the stream is exhausted or failed.
func (f *Forecast) Next() bool {
	for len(f.pending) == 0 {
		if f.err != nil || len(f.months) == 0 {
			return false
		}
		ym := f.months[0]
		f.months = f.months[1:]
		f.err = f.loadMonth(ym)
	}

	f.current = f.pending[0]
	f.pending = f.pending[1:]
	return true
}

// Prediction returns the event Next advanced to.
func (f *Forecast) Prediction() model.Prediction {
	return f.current
}

// Err returns the first error that stopped the stream.
func (f *Forecast) Err() error {
	return f.err
}

// Warnings joins every record skipped for an unknown rule type, or returns
// nil.
func (f *Forecast) Warnings() error {
	return errors.Join(f.warnings...)
}

// Collect drains the stream.
func (f *Forecast) Collect() ([]model.Prediction, error) {
	var out []model.Prediction
	for f.Next() {
		out = append(out, f.Prediction())
	}
	return out, f.Err()
}

func (f *Forecast) loadMonth(ym calendar.YearMonth) error {
	if err := f.ctx.Err(); err != nil {
		return err
	}

	records, err := f.engine.records.GetRecords(f.ctx, ym.Month, ym.Year)
	if err != nil {
		return fmt.Errorf("failed to load budget records for %s: %w", ym, err)
	}

	for _, record := range mergeMonthly(records) {
		cat, err := f.reg.Lookup(f.ctx, record.CategoryID)
		if err != nil {
			slog.Error("budget record references unknown category",
				"record_id", record.ID, "category_id", record.CategoryID)
			return fmt.Errorf("budget record %d: %w", record.ID, err)
		}

		events, err := f.engine.expand(f.ctx, record, ym, f.cutoff)
		if errors.Is(err, ErrUnknownRuleType) {
			slog.Warn("skipping budget record", "record_id", record.ID, "type", record.Type)
			f.warnings = append(f.warnings, err)
			continue
		}
		if err != nil {
			return err
		}

		for _, ev := range events {
			f.pending = append(f.pending, model.Prediction{
				Date:     ev.date,
				Amount:   ev.amount.Decimal(),
				Category: cat,
				Type:     record.Type,
				RecordID: record.ID,
			})
		}
	}
	return nil
}
