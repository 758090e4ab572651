package domain

import "time"

// DateLayout is the calendar-date key format used by the work-day registry.
const DateLayout = "2006-01-02"

// WorkDay marks that a worker had activity on a calendar date.
type WorkDay struct {
	UserID    string
	Date      string
	CreatedAt time.Time
}

// NewWorkDay returns the marker for the calendar date of now, in now's location.
func NewWorkDay(userID string, now time.Time) *WorkDay {
	return &WorkDay{UserID: userID, Date: DateKey(now), CreatedAt: now}
}

// DateKey formats t as a calendar-date key in t's location.
func DateKey(t time.Time) string {
	return t.Format(DateLayout)
}
