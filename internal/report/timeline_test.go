package report

import (
	"testing"
	"time"
	_ "time/tzdata"

	"github.com/alexanderramin/shiftlog/internal/domain"
	"github.com/alexanderramin/shiftlog/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	office = domain.Location{Lat: 46.05, Lng: 14.51}
	site   = domain.Location{Lat: 46.10, Lng: 14.60}
)

func TestBuildTimeline_OrdersAllKinds(t *testing.T) {
	s := testutil.NewTestSession("u1", testutil.At(8, 0, 0),
		testutil.WithBreak(testutil.At(10, 0, 0), 1200),
		testutil.WithShortBreak(testutil.At(12, 0, 0), 300),
		testutil.WithEndTime(testutil.At(16, 0, 0)),
	)
	closed := testutil.NewTestTravel("u1", testutil.At(9, 0, 0), office,
		testutil.WithTravelEnd(testutil.At(9, 30, 0), site, 8.9))
	open := testutil.NewTestTravel("u1", testutil.At(15, 0, 0), site)

	events := BuildTimeline([]*domain.WorkSession{s}, []*domain.TravelOrder{closed, open}, testutil.At(17, 0, 0))

	require.Len(t, events, 4)
	kinds := []domain.EventKind{events[0].Kind, events[1].Kind, events[2].Kind, events[3].Kind}
	assert.Equal(t, []domain.EventKind{domain.EventWork, domain.EventTravel, domain.EventBreak, domain.EventShortBreak}, kinds)

	assert.Equal(t, int64(27300), events[0].Duration)
	assert.Equal(t, int64(1800), events[1].Duration)
	assert.Equal(t, int64(1200), events[2].Duration)
	require.NotNil(t, events[2].EndTime)
	assert.Equal(t, testutil.At(10, 20, 0), *events[2].EndTime)
	assert.Equal(t, s.ID, events[3].SourceID)
	assert.Equal(t, closed.ID, events[1].SourceID)

	for i := 1; i < len(events); i++ {
		assert.False(t, events[i].StartTime.Before(events[i-1].StartTime), "events out of order at %d", i)
	}
}

func TestBuildTimeline_TieKeepsInsertionOrder(t *testing.T) {
	s := testutil.NewTestSession("u1", testutil.At(9, 0, 0), testutil.WithEndTime(testutil.At(10, 0, 0)))
	tr := testutil.NewTestTravel("u1", testutil.At(9, 0, 0), office,
		testutil.WithTravelEnd(testutil.At(9, 20, 0), site, 8.9))

	events := BuildTimeline([]*domain.WorkSession{s}, []*domain.TravelOrder{tr}, testutil.At(12, 0, 0))

	require.Len(t, events, 2)
	assert.Equal(t, domain.EventWork, events[0].Kind)
	assert.Equal(t, domain.EventTravel, events[1].Kind)
}

func TestBuildTimeline_OpenSessionCountsToNow(t *testing.T) {
	s := testutil.NewTestSession("u1", testutil.At(8, 0, 0))

	events := BuildTimeline([]*domain.WorkSession{s}, nil, testutil.At(9, 30, 0))

	require.Len(t, events, 1)
	assert.True(t, events[0].Active)
	assert.Nil(t, events[0].EndTime)
	assert.Equal(t, int64(5400), events[0].Duration)
}

func TestBuildTimeline_BreakWithoutAccumulatedTimeIsSkipped(t *testing.T) {
	s := testutil.NewTestSession("u1", testutil.At(8, 0, 0), testutil.WithOpenBreak(testutil.At(10, 0, 0)))

	events := BuildTimeline([]*domain.WorkSession{s}, nil, testutil.At(10, 10, 0))

	require.Len(t, events, 1)
	assert.Equal(t, domain.EventWork, events[0].Kind)
}

func TestBuildTimeline_OpenBreakEndIsSynthesized(t *testing.T) {
	s := testutil.NewTestSession("u1", testutil.At(8, 0, 0),
		testutil.WithBreak(testutil.At(9, 0, 0), 600),
		testutil.WithOpenBreak(testutil.At(11, 0, 0)),
	)

	events := BuildTimeline([]*domain.WorkSession{s}, nil, testutil.At(11, 5, 0))

	require.Len(t, events, 2)
	brk := events[1]
	assert.Equal(t, domain.EventBreak, brk.Kind)
	assert.True(t, brk.Active)
	assert.Equal(t, testutil.At(11, 0, 0), brk.StartTime)
	require.NotNil(t, brk.EndTime)
	assert.Equal(t, testutil.At(11, 10, 0), *brk.EndTime)
}

func TestBuildTimeline_EventCountPerSession(t *testing.T) {
	tests := []struct {
		name string
		opts []testutil.SessionOption
		want int
	}{
		{"work only", nil, 1},
		{"with lunch", []testutil.SessionOption{testutil.WithBreak(testutil.At(10, 0, 0), 900)}, 2},
		{"with both", []testutil.SessionOption{
			testutil.WithBreak(testutil.At(10, 0, 0), 900),
			testutil.WithShortBreak(testutil.At(11, 0, 0), 300),
		}, 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := testutil.NewTestSession("u1", testutil.At(8, 0, 0), tt.opts...)
			events := BuildTimeline([]*domain.WorkSession{s}, nil, testutil.At(12, 0, 0))
			assert.Len(t, events, tt.want)
			for _, ev := range events {
				assert.True(t, domain.ValidEventKinds[ev.Kind])
			}
		})
	}
}

func TestDayWindow(t *testing.T) {
	from, to := DayWindow(testutil.At(15, 4, 5), time.UTC)

	assert.Equal(t, testutil.Day, from)
	assert.Equal(t, testutil.Day.Add(24*time.Hour-time.Millisecond), to)
}

func TestDayWindow_DSTChangeDays(t *testing.T) {
	loc, err := time.LoadLocation("Europe/Ljubljana")
	require.NoError(t, err)

	tests := []struct {
		name string
		day  time.Time
	}{
		{"spring forward", time.Date(2026, 3, 29, 12, 0, 0, 0, loc)},
		{"fall back", time.Date(2026, 10, 25, 12, 0, 0, 0, loc)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			from, to := DayWindow(tt.day, loc)
			y, m, d := tt.day.Date()

			assert.Equal(t, time.Date(y, m, d, 0, 0, 0, 0, loc), from)
			assert.Equal(t, time.Date(y, m, d, 23, 59, 59, int(999*time.Millisecond), loc), to)

			late := time.Date(y, m, d, 23, 30, 0, 0, loc)
			assert.False(t, late.After(to), "23:30 belongs to the day")
			nextEarly := time.Date(y, m, d+1, 0, 30, 0, 0, loc)
			assert.True(t, nextEarly.After(to), "00:30 of the next day does not")
		})
	}
}

func TestMonthWindow_EndsOnLocalMidnight(t *testing.T) {
	loc, err := time.LoadLocation("Europe/Ljubljana")
	require.NoError(t, err)

	_, to := MonthWindow(time.Date(2026, 10, 10, 0, 0, 0, 0, loc), loc)
	assert.Equal(t, time.Date(2026, 10, 31, 23, 59, 59, int(999*time.Millisecond), loc), to)
}

func TestMonthWindow(t *testing.T) {
	from, to := MonthWindow(time.Date(2024, 2, 10, 12, 0, 0, 0, time.UTC), time.UTC)

	assert.Equal(t, time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC), from)
	assert.Equal(t, time.Date(2024, 2, 29, 23, 59, 59, int(999*time.Millisecond), time.UTC), to)
}
