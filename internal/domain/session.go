package domain

import (
	"fmt"
	"time"
)

// Break allowances in seconds. The total is shared by both break kinds
// within a single WorkSession.
const (
	LunchBreakLength    int64 = 2100
	ShortBreakLength    int64 = 300
	TotalBreakAllowance int64 = 2700
)

// WorkSession is one contiguous attendance record. EndTime is nil while the
// session is open; at most one session per worker is open at a time.
type WorkSession struct {
	ID     string
	UserID string

	StartTime time.Time
	EndTime   *time.Time

	OnBreak             bool
	OnShortBreak        bool
	BreakStartTime      *time.Time
	BreakEndTime        *time.Time
	ShortBreakStartTime *time.Time
	ShortBreakEndTime   *time.Time

	// Accumulated seconds, never decreasing within a session.
	BreakDuration      int64
	ShortBreakDuration int64
	TotalBreakTimeUsed int64

	CreatedAt time.Time
	UpdatedAt time.Time
}

// NewWorkSession returns an open session starting at now.
func NewWorkSession(id, userID string, now time.Time) *WorkSession {
	return &WorkSession{
		ID:        id,
		UserID:    userID,
		StartTime: now,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// IsOpen reports whether the session has not been closed yet.
func (s *WorkSession) IsOpen() bool {
	return s.EndTime == nil
}

// OnAnyBreak reports whether either break kind is in progress.
func (s *WorkSession) OnAnyBreak() bool {
	return s.OnBreak || s.OnShortBreak
}

// Clone returns a deep copy so transitions can be staged without touching
// the committed record.
func (s *WorkSession) Clone() *WorkSession {
	if s == nil {
		return nil
	}
	c := *s
	c.EndTime = cloneTime(s.EndTime)
	c.BreakStartTime = cloneTime(s.BreakStartTime)
	c.BreakEndTime = cloneTime(s.BreakEndTime)
	c.ShortBreakStartTime = cloneTime(s.ShortBreakStartTime)
	c.ShortBreakEndTime = cloneTime(s.ShortBreakEndTime)
	return &c
}

// RemainingBudget returns the unused break allowance in seconds.
func (s *WorkSession) RemainingBudget() int64 {
	left := TotalBreakAllowance - s.TotalBreakTimeUsed
	if left < 0 {
		return 0
	}
	return left
}

// ActiveBreak returns the kind and start of the break in progress, if any.
func (s *WorkSession) ActiveBreak() (BreakKind, time.Time, bool) {
	switch {
	case s.OnBreak && s.BreakStartTime != nil:
		return BreakLunch, *s.BreakStartTime, true
	case s.OnShortBreak && s.ShortBreakStartTime != nil:
		return BreakShort, *s.ShortBreakStartTime, true
	default:
		return "", time.Time{}, false
	}
}

// ActiveBreakElapsed returns the credited seconds of the break in progress,
// capped at the break's fixed length. Zero when no break is active.
func (s *WorkSession) ActiveBreakElapsed(now time.Time) int64 {
	kind, start, ok := s.ActiveBreak()
	if !ok {
		return 0
	}
	return clampSeconds(ElapsedSeconds(start, now), kind.Length())
}

// StartBreak begins a break of the given kind. The remaining budget must
// cover the break's full length.
func (s *WorkSession) StartBreak(kind BreakKind, now time.Time) error {
	action := kind.StartAction()
	if !s.IsOpen() {
		return Reject(RejectNoOpenSession, action, "no open work session")
	}
	if s.OnAnyBreak() {
		return Reject(RejectBlockedByActiveSubstate, action, "a break is already in progress")
	}
	if left := s.RemainingBudget(); left < kind.Length() {
		return Reject(RejectInsufficientBreakBudget, action,
			fmt.Sprintf("insufficient break time: %ds remaining, %ds required", left, kind.Length()))
	}

	start := now
	switch kind {
	case BreakShort:
		s.OnShortBreak = true
		s.ShortBreakStartTime = &start
		s.ShortBreakEndTime = nil
	default:
		s.OnBreak = true
		s.BreakStartTime = &start
		s.BreakEndTime = nil
	}
	s.UpdatedAt = now
	return nil
}

// EndBreak closes the active break of the given kind and returns the seconds
// credited to it. Elapsed time is capped at the break's length so a late end
// never overdraws the allowance.
func (s *WorkSession) EndBreak(kind BreakKind, now time.Time) (int64, error) {
	action := kind.EndAction()
	if !s.IsOpen() {
		return 0, Reject(RejectNoOpenSession, action, "no open work session")
	}

	var start *time.Time
	switch kind {
	case BreakShort:
		if !s.OnShortBreak {
			return 0, Reject(RejectNotActive, action, "not on a short break")
		}
		start = s.ShortBreakStartTime
	default:
		if !s.OnBreak {
			return 0, Reject(RejectNotActive, action, "not on a break")
		}
		start = s.BreakStartTime
	}
	if start == nil {
		return 0, Reject(RejectNotActive, action, "break has no start time")
	}

	elapsed := clampSeconds(ElapsedSeconds(*start, now), kind.Length())
	end := start.Add(time.Duration(elapsed) * time.Second)

	switch kind {
	case BreakShort:
		s.ShortBreakDuration += elapsed
		s.OnShortBreak = false
		s.ShortBreakEndTime = &end
	default:
		s.BreakDuration += elapsed
		s.OnBreak = false
		s.BreakEndTime = &end
	}
	s.TotalBreakTimeUsed = s.BreakDuration + s.ShortBreakDuration
	s.UpdatedAt = now
	return elapsed, nil
}

// Close ends the session. Refused while a break is in progress.
func (s *WorkSession) Close(now time.Time) error {
	if !s.IsOpen() {
		return Reject(RejectNoOpenSession, "end_work", "no open work session")
	}
	if s.OnAnyBreak() {
		return Reject(RejectBlockedByActiveSubstate, "end_work", "end the current break first")
	}
	end := now
	s.EndTime = &end
	s.UpdatedAt = now
	return nil
}

// ElapsedUntil returns seconds from start to the end time, or to now while open.
func (s *WorkSession) ElapsedUntil(now time.Time) int64 {
	if s.EndTime != nil {
		return ElapsedSeconds(s.StartTime, *s.EndTime)
	}
	return ElapsedSeconds(s.StartTime, now)
}

// WorkedSeconds returns elapsed time minus accumulated breaks, never negative.
func (s *WorkSession) WorkedSeconds(now time.Time) int64 {
	worked := s.ElapsedUntil(now) - s.BreakDuration - s.ShortBreakDuration
	if worked < 0 {
		return 0
	}
	return worked
}

func cloneTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	c := *t
	return &c
}

func clampSeconds(v, limit int64) int64 {
	if v < 0 {
		return 0
	}
	if v > limit {
		return limit
	}
	return v
}
