package report

import (
	"sort"
	"time"

	"github.com/alexanderramin/shiftlog/internal/domain"
)

// DailyReport holds the totals for one calendar day, in seconds.
type DailyReport struct {
	Date            string
	TotalWorkTime   int64
	TotalBreakTime  int64
	TotalTravelTime int64
	FirstStartTime  *time.Time
	LastEndTime     *time.Time
	StillOpen       bool
	SessionCount    int
	TravelCount     int
}

// BuildDailyReport aggregates the sessions and travels whose start falls on date.
// Open sessions count up to now; open travels are not counted.
func BuildDailyReport(date string, sessions []*domain.WorkSession, travels []*domain.TravelOrder, now time.Time) DailyReport {
	r := DailyReport{Date: date, SessionCount: len(sessions)}

	sorted := make([]*domain.WorkSession, len(sessions))
	copy(sorted, sessions)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].StartTime.Before(sorted[j].StartTime)
	})

	for _, s := range sorted {
		r.TotalWorkTime += s.WorkedSeconds(now)
		r.TotalBreakTime += s.BreakDuration + s.ShortBreakDuration
	}
	if len(sorted) > 0 {
		first := sorted[0].StartTime
		r.FirstStartTime = &first
		last := sorted[len(sorted)-1]
		if last.EndTime != nil {
			end := *last.EndTime
			r.LastEndTime = &end
		} else {
			r.StillOpen = true
		}
	}

	for _, t := range travels {
		if t.EndTime == nil {
			continue
		}
		r.TravelCount++
		r.TotalTravelTime += t.ElapsedUntil(now)
	}
	return r
}
