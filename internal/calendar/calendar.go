// Package calendar resolves reporting periods and walks months.
//
// Months follow one convention everywhere: 0 selects the whole year and
// 1..12 select a calendar month. All dates are UTC midnight.
package calendar

import (
	"errors"
	"fmt"
	"time"
)

// WholeYear selects January 1 through December 31 in Bounds.
const WholeYear = 0

// ErrInvalidMonth is returned for months outside 0..12.
var ErrInvalidMonth = errors.New("invalid month")

// Epoch is the date reported when there is no data at all.
var Epoch = Date(1970, 1, 1)

// DateLayout is the storage and display format for dates.
const DateLayout = "2006-01-02"

// YearMonth identifies a single calendar month.
type YearMonth struct {
	Year  int
	Month int
}

// Before reports whether ym precedes other by (year, month) order.
func (ym YearMonth) Before(other YearMonth) bool {
	if ym.Year != other.Year {
		return ym.Year < other.Year
	}
	return ym.Month < other.Month
}

// Next returns the following month.
func (ym YearMonth) Next() YearMonth {
	m, y := Advance(ym.Month, ym.Year)
	return YearMonth{Year: y, Month: m}
}

func (ym YearMonth) String() string {
	return fmt.Sprintf("%04d-%02d", ym.Year, ym.Month)
}

// Of returns the month containing t.
func Of(t time.Time) YearMonth {
	return YearMonth{Year: t.Year(), Month: int(t.Month())}
}

// Date builds a UTC midnight date.
func Date(year, month, day int) time.Time {
	return time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
}

// Truncate drops the clock and zone of t, keeping its calendar date.
func Truncate(t time.Time) time.Time {
	return Date(t.Year(), int(t.Month()), t.Day())
}

// DaysIn returns the length of the month, accounting for leap years.
func DaysIn(month, year int) int {
	return Date(year, month+1, 0).Day()
}

// Bounds returns the first and last day of the period.
func Bounds(month, year int) (time.Time, time.Time, error) {
	switch {
	case month == WholeYear:
		return Date(year, 1, 1), Date(year, 12, 31), nil
	case month >= 1 && month <= 12:
		return Date(year, month, 1), Date(year, month, DaysIn(month, year)), nil
	default:
		return time.Time{}, time.Time{}, fmt.Errorf("%w: %d", ErrInvalidMonth, month)
	}
}

// Advance returns the month after (month, year), rolling over December.
func Advance(month, year int) (int, int) {
	if month >= 12 {
		return 1, year + 1
	}
	return month + 1, year
}

// Retreat returns the month before (month, year), rolling back over January.
func Retreat(month, year int) (int, int) {
	if month <= 1 {
		return 12, year - 1
	}
	return month - 1, year
}

// Label names a period, "March 2024" for a month or "2024" for a whole year.
func Label(month, year int) string {
	if month == WholeYear {
		return fmt.Sprintf("%d", year)
	}
	return Date(year, month, 1).Format("January 2006")
}

// Months lists every month from the one containing from through the one
// containing to, inclusive. An inverted range yields nil.
func Months(from, to time.Time) []YearMonth {
	first, last := Of(from), Of(to)
	if last.Before(first) {
		return nil
	}

	var months []YearMonth
	for ym := first; !last.Before(ym); ym = ym.Next() {
		months = append(months, ym)
	}
	return months
}

// ParseDate parses a YYYY-MM-DD date.
func ParseDate(s string) (time.Time, error) {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q: %w", s, err)
	}
	return t, nil
}
