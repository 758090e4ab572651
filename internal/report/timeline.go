package report

import (
	"sort"
	"time"

	"github.com/alexanderramin/shiftlog/internal/domain"
)

// BuildTimeline merges the sessions and travels of one day into a single
// sequence ordered by start time. Equal start times keep insertion order:
// sessions (work, break, short break) first, then travels.
func BuildTimeline(sessions []*domain.WorkSession, travels []*domain.TravelOrder, now time.Time) []domain.TimelineEvent {
	events := make([]domain.TimelineEvent, 0, len(sessions)*3+len(travels))

	for _, s := range sessions {
		events = append(events, domain.TimelineEvent{
			Kind:      domain.EventWork,
			StartTime: s.StartTime,
			EndTime:   s.EndTime,
			Duration:  s.WorkedSeconds(now),
			SourceID:  s.ID,
			Active:    s.IsOpen(),
		})
		if ev, ok := breakEvent(domain.EventBreak, s.ID, s.BreakStartTime, s.BreakEndTime, s.BreakDuration, s.OnBreak); ok {
			events = append(events, ev)
		}
		if ev, ok := breakEvent(domain.EventShortBreak, s.ID, s.ShortBreakStartTime, s.ShortBreakEndTime, s.ShortBreakDuration, s.OnShortBreak); ok {
			events = append(events, ev)
		}
	}

	for _, t := range travels {
		if t.EndTime == nil {
			continue
		}
		events = append(events, domain.TimelineEvent{
			Kind:      domain.EventTravel,
			StartTime: t.StartTime,
			EndTime:   t.EndTime,
			Duration:  t.ElapsedUntil(now),
			SourceID:  t.ID,
		})
	}

	sort.SliceStable(events, func(i, j int) bool {
		return events[i].StartTime.Before(events[j].StartTime)
	})
	return events
}

// breakEvent emits one event per break kind once some break time has been
// accumulated. A break still in progress ends at start + accumulated.
func breakEvent(kind domain.EventKind, sessionID string, start, end *time.Time, accumulated int64, active bool) (domain.TimelineEvent, bool) {
	if accumulated <= 0 || start == nil {
		return domain.TimelineEvent{}, false
	}
	ev := domain.TimelineEvent{
		Kind:      kind,
		StartTime: *start,
		Duration:  accumulated,
		SourceID:  sessionID,
		Active:    active,
	}
	if end != nil && !active {
		e := *end
		ev.EndTime = &e
	} else {
		e := start.Add(time.Duration(accumulated) * time.Second)
		ev.EndTime = &e
	}
	return ev, true
}
