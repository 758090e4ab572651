package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDeriveStatus(t *testing.T) {
	open := NewWorkSession("s1", "u1", testNow)
	lunch := NewWorkSession("s2", "u1", testNow)
	require.NoError(t, lunch.StartBreak(BreakLunch, at(10, 0, 0)))
	short := NewWorkSession("s3", "u1", testNow)
	require.NoError(t, short.StartBreak(BreakShort, at(10, 0, 0)))
	closed := NewWorkSession("s4", "u1", testNow)
	require.NoError(t, closed.Close(at(16, 0, 0)))
	travel := NewTravelOrder("t1", "u1", testNow, Location{})

	cases := []struct {
		name       string
		open       *WorkSession
		travel     *TravelOrder
		lastClosed *WorkSession
		want       Status
	}{
		{"idle", nil, nil, nil, StatusHome},
		{"working", open, nil, nil, StatusOnSite},
		{"lunch", lunch, nil, nil, StatusOnBreak},
		{"short", short, nil, nil, StatusOnShortBreak},
		{"traveling while working", open, travel, nil, StatusTraveling},
		{"traveling from home", nil, travel, nil, StatusTraveling},
		{"done", nil, nil, closed, StatusDone},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, DeriveStatus(tc.open, tc.travel, tc.lastClosed), tc.name)
	}
}

func TestBreakKind_Length(t *testing.T) {
	assert.Equal(t, int64(2100), BreakLunch.Length())
	assert.Equal(t, int64(300), BreakShort.Length())
	assert.Equal(t, "start_short_break", BreakShort.StartAction())
	assert.Equal(t, "end_break", BreakLunch.EndAction())
}

func TestRejectionError_Categories(t *testing.T) {
	budget := Reject(RejectInsufficientBreakBudget, "start_break", "")
	assert.ErrorIs(t, budget, ErrBudgetExceeded)
	assert.NotErrorIs(t, budget, ErrGuardViolation)
	assert.Equal(t, "start_break rejected: insufficient_break_budget", budget.Error())

	guard := Reject(RejectAlreadyOpen, "start_work", "work session already open")
	assert.ErrorIs(t, guard, ErrGuardViolation)
	assert.Equal(t, "start_work rejected: work session already open", guard.Error())
}
