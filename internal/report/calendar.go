package report

import (
	"time"

	"github.com/alexanderramin/shiftlog/internal/domain"
)

// CalendarDay flags whether a date of the month has recorded activity.
type CalendarDay struct {
	Date    time.Time
	Weekday time.Weekday
	Marked  bool
}

// MonthCalendar lays out every day of month, marking the given date keys.
func MonthCalendar(month time.Time, loc *time.Location, marked []string) []CalendarDay {
	set := make(map[string]bool, len(marked))
	for _, d := range marked {
		set[d] = true
	}
	first, last := MonthWindow(month, loc)
	days := daysIn(first, last)
	out := make([]CalendarDay, 0, len(days))
	for _, d := range days {
		out = append(out, CalendarDay{Date: d, Weekday: d.Weekday(), Marked: set[domain.DateKey(d)]})
	}
	return out
}
