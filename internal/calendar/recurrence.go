package calendar

import (
	"time"

	"github.com/teambition/rrule-go"
)

// isoWeekdays maps 1=Monday..7=Sunday to recurrence weekdays.
var isoWeekdays = []rrule.Weekday{
	rrule.MO, rrule.TU, rrule.WE, rrule.TH, rrule.FR, rrule.SA, rrule.SU,
}

// EveryDay returns each date of the month in order.
func EveryDay(month, year int) []time.Time {
	return occurrences(rrule.ROption{Freq: rrule.DAILY}, month, year)
}

// Weekdays returns every date in the month falling on weekday, where
// 1 is Monday and 7 is Sunday. Out-of-range weekdays match nothing.
func Weekdays(month, year, weekday int) []time.Time {
	if weekday < 1 || weekday > len(isoWeekdays) {
		return nil
	}
	return occurrences(rrule.ROption{
		Freq:      rrule.WEEKLY,
		Byweekday: []rrule.Weekday{isoWeekdays[weekday-1]},
	}, month, year)
}

func occurrences(opt rrule.ROption, month, year int) []time.Time {
	if month < 1 || month > 12 {
		return nil
	}
	first, last, _ := Bounds(month, year)
	opt.Dtstart = first
	opt.Until = last

	rule, err := rrule.NewRRule(opt)
	if err != nil {
		return nil
	}

	dates := rule.All()
	for i, d := range dates {
		dates[i] = Truncate(d)
	}
	return dates
}
