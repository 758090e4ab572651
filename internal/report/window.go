// Package report derives read models from persisted sessions and travels:
// the day timeline, daily totals, monthly rollups and the work-day calendar.
// Nothing here is persisted; every result is rebuilt per read.
package report

import "time"

// DayWindow returns [00:00:00.000, 23:59:59.999] of date's calendar day in loc.
// Days with a DST change are 23 or 25 hours long, so the end is taken from
// the next midnight rather than a fixed offset.
func DayWindow(date time.Time, loc *time.Location) (time.Time, time.Time) {
	if loc == nil {
		loc = time.Local
	}
	d := date.In(loc)
	start := time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, loc)
	return start, start.AddDate(0, 0, 1).Add(-time.Millisecond)
}

// MonthWindow returns the first instant of the month's first day and the
// last instant of its last day, in loc.
func MonthWindow(month time.Time, loc *time.Location) (time.Time, time.Time) {
	if loc == nil {
		loc = time.Local
	}
	m := month.In(loc)
	first := time.Date(m.Year(), m.Month(), 1, 0, 0, 0, 0, loc)
	lastDay := first.AddDate(0, 1, -1)
	_, end := DayWindow(lastDay, loc)
	return first, end
}

// daysIn returns midnight of every calendar day in [first, last].
func daysIn(first, last time.Time) []time.Time {
	var days []time.Time
	for d := first; !d.After(last); d = d.AddDate(0, 0, 1) {
		days = append(days, d)
	}
	return days
}
