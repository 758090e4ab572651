package report

import (
	"time"

	"github.com/alexanderramin/shiftlog/internal/domain"
)

// DayHours is one calendar day's elapsed session hours.
type DayHours struct {
	Date  string
	Hours float64
}

// MonthlyStats rolls session hours up per day across a month.
type MonthlyStats struct {
	Month         string
	PerDay        []DayHours
	TotalHours    float64
	HourlyRate    float64
	TotalEarnings float64
}

// BuildMonthlyStats buckets each session's elapsed hours (end - start, or
// now for an open session) into the day containing its start. Every day of
// the month is present, zero-filled.
func BuildMonthlyStats(month time.Time, loc *time.Location, sessions []*domain.WorkSession, rate float64, now time.Time) MonthlyStats {
	first, last := MonthWindow(month, loc)
	stats := MonthlyStats{Month: first.Format("2006-01"), HourlyRate: rate}

	buckets := make(map[string]float64)
	for _, s := range sessions {
		start := s.StartTime.In(first.Location())
		if start.Before(first) || start.After(last) {
			continue
		}
		buckets[domain.DateKey(start)] += domain.SecondsToHours(s.ElapsedUntil(now))
	}

	for _, d := range daysIn(first, last) {
		key := domain.DateKey(d)
		h := buckets[key]
		stats.PerDay = append(stats.PerDay, DayHours{Date: key, Hours: h})
		stats.TotalHours += h
	}
	stats.TotalEarnings = stats.TotalHours * rate
	return stats
}
