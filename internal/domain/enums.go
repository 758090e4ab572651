package domain

// Status is the display label derived from a worker's current records.
type Status string

const (
	StatusHome         Status = "home"
	StatusOnSite       Status = "on-site"
	StatusOnBreak      Status = "on lunch break"
	StatusOnShortBreak Status = "on short break"
	StatusTraveling    Status = "traveling"
	StatusDone         Status = "done"
)

// BreakKind distinguishes the two break flavors sharing one budget.
type BreakKind string

const (
	BreakLunch BreakKind = "break"
	BreakShort BreakKind = "short_break"
)

// Length returns the fixed countdown length of the break kind in seconds.
func (k BreakKind) Length() int64 {
	if k == BreakShort {
		return ShortBreakLength
	}
	return LunchBreakLength
}

// StartAction names the transition that begins this break kind.
func (k BreakKind) StartAction() string {
	if k == BreakShort {
		return "start_short_break"
	}
	return "start_break"
}

// EndAction names the transition that ends this break kind.
func (k BreakKind) EndAction() string {
	if k == BreakShort {
		return "end_short_break"
	}
	return "end_break"
}

// EventKind tags a TimelineEvent.
type EventKind string

const (
	EventWork       EventKind = "work"
	EventBreak      EventKind = "break"
	EventShortBreak EventKind = "short_break"
	EventTravel     EventKind = "travel"
)

// ValidEventKinds is the canonical set of timeline event kinds.
var ValidEventKinds = map[EventKind]bool{
	EventWork: true, EventBreak: true, EventShortBreak: true, EventTravel: true,
}

// DeriveStatus computes the display status from the worker's open session,
// open travel, and the most recently closed session (if any).
func DeriveStatus(open *WorkSession, travel *TravelOrder, lastClosed *WorkSession) Status {
	if travel != nil && travel.IsOpen() {
		return StatusTraveling
	}
	if open != nil && open.IsOpen() {
		switch {
		case open.OnBreak:
			return StatusOnBreak
		case open.OnShortBreak:
			return StatusOnShortBreak
		default:
			return StatusOnSite
		}
	}
	if lastClosed != nil {
		return StatusDone
	}
	return StatusHome
}
