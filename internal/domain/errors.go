package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrGuardViolation indicates a transition that is invalid in the current state.
	ErrGuardViolation = errors.New("guard violation")

	// ErrBudgetExceeded indicates the remaining break allowance is too small.
	ErrBudgetExceeded = errors.New("insufficient break time")

	// ErrPersistence indicates the storage collaborator failed a write or read.
	ErrPersistence = errors.New("persistence failure")

	// ErrLocationUnavailable indicates no current position was available for travel.
	ErrLocationUnavailable = errors.New("location unavailable")
)

// RejectionKind names why a transition was refused.
type RejectionKind string

const (
	RejectInsufficientBreakBudget RejectionKind = "insufficient_break_budget"
	RejectNoOpenSession           RejectionKind = "no_open_session"
	RejectAlreadyOpen             RejectionKind = "already_open"
	RejectBlockedByActiveSubstate RejectionKind = "blocked_by_active_substate"
	RejectNotActive               RejectionKind = "not_active"
)

// RejectionError is returned when a guard refuses a transition. State is
// left untouched whenever one is returned.
type RejectionError struct {
	Kind   RejectionKind
	Action string
	Reason string
}

func (e *RejectionError) Error() string {
	if e.Reason == "" {
		return fmt.Sprintf("%s rejected: %s", e.Action, e.Kind)
	}
	return fmt.Sprintf("%s rejected: %s", e.Action, e.Reason)
}

// Unwrap maps the rejection onto its error category so callers can use errors.Is.
func (e *RejectionError) Unwrap() error {
	if e.Kind == RejectInsufficientBreakBudget {
		return ErrBudgetExceeded
	}
	return ErrGuardViolation
}

// Reject builds a RejectionError.
func Reject(kind RejectionKind, action, reason string) *RejectionError {
	return &RejectionError{Kind: kind, Action: action, Reason: reason}
}

// IsRejection reports whether err is a guard rejection of the given kind.
func IsRejection(err error, kind RejectionKind) bool {
	var rej *RejectionError
	if !errors.As(err, &rej) {
		return false
	}
	return rej.Kind == kind
}
