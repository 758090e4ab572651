// Package attendance is the per-worker state machine over WorkSessions and
// TravelOrders. Every transition is planned against the last committed
// state, written through a Store, and only then published.
package attendance

import (
	"errors"
	"fmt"
)

// ActionKind names a transition request.
type ActionKind string

const (
	StartWork       ActionKind = "start_work"
	EndWork         ActionKind = "end_work"
	StartBreak      ActionKind = "start_break"
	EndBreak        ActionKind = "end_break"
	StartShortBreak ActionKind = "start_short_break"
	EndShortBreak   ActionKind = "end_short_break"
	StartTravel     ActionKind = "start_travel"
	EndTravel       ActionKind = "end_travel"

	// Resync is published to listeners after a worker context is rebuilt
	// from storage. It is never accepted by Apply.
	Resync ActionKind = "resync"
)

// ValidActions is the set of kinds Apply accepts.
var ValidActions = map[ActionKind]bool{
	StartWork: true, EndWork: true,
	StartBreak: true, EndBreak: true,
	StartShortBreak: true, EndShortBreak: true,
	StartTravel: true, EndTravel: true,
}

// Origin records who issued an action.
type Origin string

const (
	OriginUser      Origin = "user"
	OriginScheduler Origin = "scheduler"
	OriginRestore   Origin = "restore"
)

// Action is one transition request. Destination, Purpose and ProjectID are
// only read by the travel actions.
type Action struct {
	Kind        ActionKind
	Origin      Origin
	Destination string
	Purpose     string
	ProjectID   *string
}

// ErrUnknownAction is returned by Apply for kinds outside ValidActions.
var ErrUnknownAction = errors.New("unknown action")

// ErrNoUser is returned when an action is issued without a worker id.
var ErrNoUser = errors.New("user id is required")

// ParseActionKind validates a kind given as text.
func ParseActionKind(s string) (ActionKind, error) {
	k := ActionKind(s)
	if !ValidActions[k] {
		return "", fmt.Errorf("%w: %q", ErrUnknownAction, s)
	}
	return k, nil
}
