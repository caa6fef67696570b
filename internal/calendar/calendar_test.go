package calendar

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBounds(t *testing.T) {
	tests := []struct {
		name      string
		wantFirst time.Time
		wantLast  time.Time
		month     int
		year      int
	}{
		{name: "whole year", month: 0, year: 2024, wantFirst: Date(2024, 1, 1), wantLast: Date(2024, 12, 31)},
		{name: "january", month: 1, year: 2023, wantFirst: Date(2023, 1, 1), wantLast: Date(2023, 1, 31)},
		{name: "leap february", month: 2, year: 2024, wantFirst: Date(2024, 2, 1), wantLast: Date(2024, 2, 29)},
		{name: "plain february", month: 2, year: 2023, wantFirst: Date(2023, 2, 1), wantLast: Date(2023, 2, 28)},
		{name: "century february", month: 2, year: 1900, wantFirst: Date(1900, 2, 1), wantLast: Date(1900, 2, 28)},
		{name: "april", month: 4, year: 2024, wantFirst: Date(2024, 4, 1), wantLast: Date(2024, 4, 30)},
		{name: "december", month: 12, year: 2024, wantFirst: Date(2024, 12, 1), wantLast: Date(2024, 12, 31)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			first, last, err := Bounds(tt.month, tt.year)
			require.NoError(t, err)
			assert.Equal(t, tt.wantFirst, first)
			assert.Equal(t, tt.wantLast, last)
		})
	}

	t.Run("invalid month", func(t *testing.T) {
		_, _, err := Bounds(13, 2024)
		require.ErrorIs(t, err, ErrInvalidMonth)
		_, _, err = Bounds(-1, 2024)
		require.ErrorIs(t, err, ErrInvalidMonth)
	})
}

func TestAdvance(t *testing.T) {
	m, y := Advance(12, 2024)
	assert.Equal(t, 1, m)
	assert.Equal(t, 2025, y)

	m, y = Advance(3, 2024)
	assert.Equal(t, 4, m)
	assert.Equal(t, 2024, y)
}

func TestRetreat(t *testing.T) {
	m, y := Retreat(1, 2024)
	assert.Equal(t, 12, m)
	assert.Equal(t, 2023, y)

	m, y = Retreat(7, 2024)
	assert.Equal(t, 6, m)
	assert.Equal(t, 2024, y)
}

func TestLabel(t *testing.T) {
	assert.Equal(t, "March 2024", Label(3, 2024))
	assert.Equal(t, "2024", Label(WholeYear, 2024))
}

func TestMonths(t *testing.T) {
	t.Run("spans year boundary", func(t *testing.T) {
		got := Months(Date(2023, 11, 20), Date(2024, 2, 1))
		assert.Equal(t, []YearMonth{
			{Year: 2023, Month: 11},
			{Year: 2023, Month: 12},
			{Year: 2024, Month: 1},
			{Year: 2024, Month: 2},
		}, got)
	})

	t.Run("same month", func(t *testing.T) {
		got := Months(Date(2024, 3, 5), Date(2024, 3, 31))
		assert.Equal(t, []YearMonth{{Year: 2024, Month: 3}}, got)
	})

	t.Run("inverted range is empty", func(t *testing.T) {
		assert.Empty(t, Months(Date(2025, 1, 1), Date(2024, 12, 31)))
	})
}

func TestEveryDay(t *testing.T) {
	days := EveryDay(2, 2024)
	require.Len(t, days, 29)
	assert.Equal(t, Date(2024, 2, 1), days[0])
	assert.Equal(t, Date(2024, 2, 29), days[28])

	assert.Len(t, EveryDay(1, 2024), 31)
	assert.Nil(t, EveryDay(0, 2024))
}

func TestWeekdays(t *testing.T) {
	// March 2024 starts on a Friday.
	fridays := Weekdays(3, 2024, 5)
	assert.Equal(t, []time.Time{
		Date(2024, 3, 1), Date(2024, 3, 8), Date(2024, 3, 15), Date(2024, 3, 22), Date(2024, 3, 29),
	}, fridays)

	mondays := Weekdays(3, 2024, 1)
	require.Len(t, mondays, 4)
	for _, d := range mondays {
		assert.Equal(t, time.Monday, d.Weekday())
	}

	sundays := Weekdays(3, 2024, 7)
	require.Len(t, sundays, 5)
	assert.Equal(t, Date(2024, 3, 3), sundays[0])

	assert.Nil(t, Weekdays(3, 2024, 0))
	assert.Nil(t, Weekdays(3, 2024, 8))
}

func TestDaysIn(t *testing.T) {
	assert.Equal(t, 29, DaysIn(2, 2000))
	assert.Equal(t, 28, DaysIn(2, 2100))
	assert.Equal(t, 30, DaysIn(11, 2024))
}
