package domain

import "time"

// TimelineEvent is a derived interval built fresh on every read. SourceID
// points at the WorkSession or TravelOrder it came from.
type TimelineEvent struct {
	Kind      EventKind
	StartTime time.Time
	EndTime   *time.Time
	Duration  int64
	SourceID  string
	Active    bool
}
