package testutil

import (
	"time"

	"github.com/alexanderramin/shiftlog/internal/domain"
	"github.com/google/uuid"
)

// Day is the reference date used by fixtures: Monday 2025-06-16, UTC.
var Day = time.Date(2025, 6, 16, 0, 0, 0, 0, time.UTC)

// At returns the reference day at the given wall-clock time.
func At(h, m, s int) time.Time {
	return Day.Add(time.Duration(h)*time.Hour + time.Duration(m)*time.Minute + time.Duration(s)*time.Second)
}

// Session options
type SessionOption func(*domain.WorkSession)

func WithEndTime(t time.Time) SessionOption {
	return func(s *domain.WorkSession) {
		s.EndTime = &t
		s.UpdatedAt = t
	}
}

// WithBreak records a completed lunch break of the given seconds starting at start.
func WithBreak(start time.Time, seconds int64) SessionOption {
	return func(s *domain.WorkSession) {
		end := start.Add(time.Duration(seconds) * time.Second)
		s.BreakStartTime = &start
		s.BreakEndTime = &end
		s.BreakDuration += seconds
		s.TotalBreakTimeUsed = s.BreakDuration + s.ShortBreakDuration
	}
}

// WithShortBreak records a completed short break of the given seconds starting at start.
func WithShortBreak(start time.Time, seconds int64) SessionOption {
	return func(s *domain.WorkSession) {
		end := start.Add(time.Duration(seconds) * time.Second)
		s.ShortBreakStartTime = &start
		s.ShortBreakEndTime = &end
		s.ShortBreakDuration += seconds
		s.TotalBreakTimeUsed = s.BreakDuration + s.ShortBreakDuration
	}
}

// WithOpenBreak leaves a lunch break in progress since start.
func WithOpenBreak(start time.Time) SessionOption {
	return func(s *domain.WorkSession) {
		s.OnBreak = true
		s.BreakStartTime = &start
		s.BreakEndTime = nil
	}
}

func NewTestSession(userID string, start time.Time, opts ...SessionOption) *domain.WorkSession {
	s := domain.NewWorkSession(uuid.New().String(), userID, start)
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Travel options
type TravelOption func(*domain.TravelOrder)

func WithTravelEnd(t time.Time, end domain.Location, distanceKm float64) TravelOption {
	return func(tr *domain.TravelOrder) {
		tr.EndTime = &t
		tr.EndLocation = &end
		tr.DistanceKm = distanceKm
		tr.UpdatedAt = t
	}
}

func WithDestination(dest, purpose string) TravelOption {
	return func(tr *domain.TravelOrder) {
		tr.Destination = dest
		tr.Purpose = purpose
	}
}

func WithProject(id string) TravelOption {
	return func(tr *domain.TravelOrder) {
		tr.ProjectID = &id
	}
}

func NewTestTravel(userID string, start time.Time, from domain.Location, opts ...TravelOption) *domain.TravelOrder {
	tr := domain.NewTravelOrder(uuid.New().String(), userID, start, from)
	for _, opt := range opts {
		opt(tr)
	}
	return tr
}
