package attendance

import (
	"time"

	"github.com/alexanderramin/shiftlog/internal/domain"
)

// Snapshot is the published view of one worker after a committed transition.
// Times left and durations are in seconds as of At.
type Snapshot struct {
	UserID         string
	Status         domain.Status
	CurrentSession *domain.WorkSession
	CurrentTravel  *domain.TravelOrder

	BreakTimeLeft      int64
	ShortBreakTimeLeft int64
	TotalBreakTimeLeft int64
	RemainingBudget    int64

	WorkDuration   int64
	TravelDuration int64

	At time.Time
}

// ActiveBreak reports the break kind in progress and its remaining seconds.
func (s Snapshot) ActiveBreak() (domain.BreakKind, int64, bool) {
	if s.CurrentSession == nil {
		return "", 0, false
	}
	switch {
	case s.CurrentSession.OnBreak:
		return domain.BreakLunch, s.BreakTimeLeft, true
	case s.CurrentSession.OnShortBreak:
		return domain.BreakShort, s.ShortBreakTimeLeft, true
	}
	return "", 0, false
}

// Idle reports whether nothing is open for the worker.
func (s Snapshot) Idle() bool {
	return s.CurrentSession == nil && s.CurrentTravel == nil
}

func buildSnapshot(userID string, st state, now time.Time) Snapshot {
	return Snapshot{
		UserID:         userID,
		Status:         domain.DeriveStatus(st.session, st.travel, st.lastClosed),
		CurrentSession: st.session.Clone(),
		CurrentTravel:  st.travel.Clone(),
	}.Advance(now)
}

// Advance recomputes the time-dependent fields as of now. Status and the
// records are left as committed.
func (s Snapshot) Advance(now time.Time) Snapshot {
	s.At = now
	s.BreakTimeLeft = domain.LunchBreakLength
	s.ShortBreakTimeLeft = domain.ShortBreakLength
	s.TotalBreakTimeLeft = domain.TotalBreakAllowance
	s.RemainingBudget = domain.TotalBreakAllowance
	s.WorkDuration = 0
	s.TravelDuration = 0

	if sess := s.CurrentSession; sess != nil {
		active := sess.ActiveBreakElapsed(now)
		if sess.OnBreak {
			s.BreakTimeLeft = domain.LunchBreakLength - active
		}
		if sess.OnShortBreak {
			s.ShortBreakTimeLeft = domain.ShortBreakLength - active
		}
		s.RemainingBudget = sess.RemainingBudget()
		s.TotalBreakTimeLeft = nonNegative(s.RemainingBudget - active)
		s.WorkDuration = nonNegative(sess.WorkedSeconds(now) - active)
	}
	if t := s.CurrentTravel; t != nil {
		s.TravelDuration = t.ElapsedUntil(now)
	}
	return s
}

func nonNegative(v int64) int64 {
	if v < 0 {
		return 0
	}
	return v
}
