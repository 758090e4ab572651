package attendance

import (
	"context"
	"database/sql"
	"errors"
	"sync"
	"testing"
	"time"
	_ "time/tzdata"

	"github.com/alexanderramin/shiftlog/internal/db"
	"github.com/alexanderramin/shiftlog/internal/domain"
	"github.com/alexanderramin/shiftlog/internal/geo"
	"github.com/alexanderramin/shiftlog/internal/repository"
	"github.com/alexanderramin/shiftlog/internal/testutil"
	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type harness struct {
	engine    *Engine
	clock     *clockwork.FakeClock
	positions *geo.MemoryPositionStore
	database  *sql.DB
	sessions  *repository.SQLiteSessionRepo
	travels   *repository.SQLiteTravelRepo
	days      *repository.SQLiteWorkDayRepo
}

func newHarness(t *testing.T, opts ...Option) *harness {
	t.Helper()
	database := testutil.NewTestDB(t)
	return newHarnessWithUoW(t, database, testutil.NewTestUoW(database), opts...)
}

func newHarnessWithUoW(t *testing.T, database *sql.DB, uow db.UnitOfWork, opts ...Option) *harness {
	t.Helper()
	clock := clockwork.NewFakeClockAt(testutil.At(8, 0, 0))
	positions := geo.NewMemoryPositionStore(clock, 10*time.Minute)
	base := []Option{WithClock(clock), WithPositions(positions), WithLocation(time.UTC)}
	return &harness{
		engine:    NewEngine(NewSQLStore(uow), append(base, opts...)...),
		clock:     clock,
		positions: positions,
		database:  database,
		sessions:  repository.NewSQLiteSessionRepo(database),
		travels:   repository.NewSQLiteTravelRepo(database),
		days:      repository.NewSQLiteWorkDayRepo(database),
	}
}

// advanceTo moves the fake clock forward to the reference-day wall time.
func (h *harness) advanceTo(t *testing.T, at time.Time) {
	t.Helper()
	d := at.Sub(h.clock.Now())
	require.GreaterOrEqual(t, d, time.Duration(0), "clock cannot move backwards")
	h.clock.Advance(d)
}

func (h *harness) apply(t *testing.T, user string, kind ActionKind) Snapshot {
	t.Helper()
	snap, err := h.engine.Apply(context.Background(), user, Action{Kind: kind})
	require.NoError(t, err, "applying %s", kind)
	return snap
}

func TestEngine_FullDayScenario(t *testing.T) {
	h := newHarness(t)

	snap := h.apply(t, "u1", StartWork)
	assert.Equal(t, domain.StatusOnSite, snap.Status)

	h.advanceTo(t, testutil.At(10, 0, 0))
	snap = h.apply(t, "u1", StartBreak)
	assert.Equal(t, domain.StatusOnBreak, snap.Status)
	assert.Equal(t, int64(2100), snap.BreakTimeLeft)

	h.advanceTo(t, testutil.At(10, 20, 0))
	snap = h.apply(t, "u1", EndBreak)
	assert.Equal(t, int64(1200), snap.CurrentSession.BreakDuration)
	assert.Equal(t, int64(1500), snap.RemainingBudget)

	h.advanceTo(t, testutil.At(12, 0, 0))
	snap = h.apply(t, "u1", StartShortBreak)
	assert.Equal(t, domain.StatusOnShortBreak, snap.Status)

	h.advanceTo(t, testutil.At(12, 5, 0))
	snap = h.apply(t, "u1", EndShortBreak)
	assert.Equal(t, int64(300), snap.CurrentSession.ShortBreakDuration)
	assert.Equal(t, int64(1200), snap.RemainingBudget)

	h.advanceTo(t, testutil.At(16, 0, 0))
	snap = h.apply(t, "u1", EndWork)
	assert.Equal(t, domain.StatusDone, snap.Status)
	assert.Nil(t, snap.CurrentSession)

	stored, err := h.sessions.ListByStartRange(context.Background(), "u1", testutil.At(0, 0, 0), testutil.At(23, 59, 59))
	require.NoError(t, err)
	require.Len(t, stored, 1)
	assert.Equal(t, int64(27300), stored[0].WorkedSeconds(testutil.At(20, 0, 0)))
	assert.Equal(t, int64(1500), stored[0].TotalBreakTimeUsed)

	marked, err := h.days.Exists(context.Background(), "u1", "2025-06-16")
	require.NoError(t, err)
	assert.True(t, marked)
}

func TestEngine_StartBreakWithInsufficientBudget(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	s := testutil.NewTestSession("u1", testutil.At(7, 0, 0), testutil.WithBreak(testutil.At(7, 10, 0), 2500))
	require.NoError(t, h.sessions.Create(ctx, s))

	for _, kind := range []ActionKind{StartBreak, StartShortBreak} {
		snap, err := h.engine.Apply(ctx, "u1", Action{Kind: kind})
		require.Error(t, err)
		assert.ErrorIs(t, err, domain.ErrBudgetExceeded)
		assert.True(t, domain.IsRejection(err, domain.RejectInsufficientBreakBudget))
		assert.Equal(t, domain.StatusOnSite, snap.Status)
		assert.Equal(t, int64(200), snap.RemainingBudget)
	}

	stored, err := h.sessions.GetByID(ctx, s.ID)
	require.NoError(t, err)
	assert.False(t, stored.OnBreak)
	assert.False(t, stored.OnShortBreak)
	assert.Equal(t, int64(2500), stored.TotalBreakTimeUsed)
}

func TestEngine_BudgetBoundaryAcceptsExactRemaining(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	s := testutil.NewTestSession("u1", testutil.At(7, 0, 0), testutil.WithShortBreak(testutil.At(7, 10, 0), 600))
	require.NoError(t, h.sessions.Create(ctx, s))

	snap := h.apply(t, "u1", StartBreak)
	assert.Equal(t, domain.StatusOnBreak, snap.Status)
	assert.Equal(t, int64(2100), snap.TotalBreakTimeLeft)
}

func TestEngine_StartWorkTwiceIsRejected(t *testing.T) {
	h := newHarness(t)
	first := h.apply(t, "u1", StartWork)

	h.clock.Advance(time.Minute)
	snap, err := h.engine.Apply(context.Background(), "u1", Action{Kind: StartWork})
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrGuardViolation)
	assert.True(t, domain.IsRejection(err, domain.RejectAlreadyOpen))
	assert.Equal(t, first.CurrentSession.ID, snap.CurrentSession.ID)
}

func TestEngine_EndWorkGuards(t *testing.T) {
	tests := []struct {
		name  string
		setup []ActionKind
		kind  domain.RejectionKind
	}{
		{"no session", nil, domain.RejectNoOpenSession},
		{"on break", []ActionKind{StartWork, StartBreak}, domain.RejectBlockedByActiveSubstate},
		{"on short break", []ActionKind{StartWork, StartShortBreak}, domain.RejectBlockedByActiveSubstate},
		{"travel open", []ActionKind{StartWork, StartTravel}, domain.RejectBlockedByActiveSubstate},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(t)
			require.NoError(t, h.positions.Record(context.Background(), "u1", geo.Point{Lat: 46.05, Lng: 14.51}))
			for _, k := range tt.setup {
				h.apply(t, "u1", k)
			}

			before, err := h.engine.Snapshot(context.Background(), "u1")
			require.NoError(t, err)

			snap, err := h.engine.Apply(context.Background(), "u1", Action{Kind: EndWork})
			require.Error(t, err)
			assert.ErrorIs(t, err, domain.ErrGuardViolation)
			assert.True(t, domain.IsRejection(err, tt.kind), "got %v", err)
			assert.Equal(t, before.Status, snap.Status)
		})
	}
}

func TestEngine_EndBreakWhenNotOnBreak(t *testing.T) {
	h := newHarness(t)
	h.apply(t, "u1", StartWork)

	_, err := h.engine.Apply(context.Background(), "u1", Action{Kind: EndBreak})
	assert.True(t, domain.IsRejection(err, domain.RejectNotActive))

	_, err = h.engine.Apply(context.Background(), "u1", Action{Kind: EndShortBreak})
	assert.True(t, domain.IsRejection(err, domain.RejectNotActive))
}

func TestEngine_TravelThenWork(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	project := "p-17"

	h.advanceTo(t, testutil.At(9, 0, 0))
	require.NoError(t, h.positions.Record(ctx, "u1", geo.Point{Lat: 46.05, Lng: 14.51}))
	snap, err := h.engine.Apply(ctx, "u1", Action{Kind: StartTravel, Destination: "Site B", Purpose: "inspection"})
	require.NoError(t, err)
	assert.Equal(t, domain.StatusTraveling, snap.Status)
	assert.Nil(t, snap.CurrentSession)
	require.NotNil(t, snap.CurrentTravel)
	assert.Equal(t, "46.05000, 14.51000", snap.CurrentTravel.StartLocation.Address)

	h.advanceTo(t, testutil.At(9, 30, 0))
	require.NoError(t, h.positions.Record(ctx, "u1", geo.Point{Lat: 46.10, Lng: 14.60}))
	snap, err = h.engine.Apply(ctx, "u1", Action{Kind: EndTravel, Purpose: "repair", ProjectID: &project})
	require.NoError(t, err)
	assert.Equal(t, domain.StatusOnSite, snap.Status)
	assert.Nil(t, snap.CurrentTravel)
	require.NotNil(t, snap.CurrentSession)
	assert.Equal(t, testutil.At(9, 30, 0), snap.CurrentSession.StartTime)

	travels, err := h.travels.ListByStartRange(ctx, "u1", testutil.At(0, 0, 0), testutil.At(23, 59, 59))
	require.NoError(t, err)
	require.Len(t, travels, 1)
	tr := travels[0]
	assert.InDelta(t, 8.894, tr.DistanceKm, 0.01)
	assert.Equal(t, "Site B", tr.Destination)
	assert.Equal(t, "repair", tr.Purpose)
	require.NotNil(t, tr.ProjectID)
	assert.Equal(t, project, *tr.ProjectID)
	assert.Equal(t, int64(1800), tr.ElapsedUntil(testutil.At(12, 0, 0)))

	open, err := h.sessions.GetOpen(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, snap.CurrentSession.ID, open.ID)
}

func TestEngine_TravelPolicy(t *testing.T) {
	policy := Policy{AllowTravelWhileIdle: false, AutoStartWorkAfterTravel: false}
	h := newHarness(t, WithPolicy(policy))
	ctx := context.Background()
	require.NoError(t, h.positions.Record(ctx, "u1", geo.Point{Lat: 46.05, Lng: 14.51}))

	_, err := h.engine.Apply(ctx, "u1", Action{Kind: StartTravel})
	assert.True(t, domain.IsRejection(err, domain.RejectNoOpenSession))

	h.apply(t, "u1", StartWork)
	h.apply(t, "u1", StartTravel)
	h.apply(t, "u1", EndTravel)
	h.apply(t, "u1", EndWork)

	require.NoError(t, h.positions.Record(ctx, "u1", geo.Point{Lat: 46.05, Lng: 14.51}))
	_, err = h.engine.Apply(ctx, "u1", Action{Kind: StartTravel})
	assert.True(t, domain.IsRejection(err, domain.RejectNoOpenSession))
}

func TestEngine_TravelBlockedDuringBreak(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	require.NoError(t, h.positions.Record(ctx, "u1", geo.Point{Lat: 46.05, Lng: 14.51}))
	h.apply(t, "u1", StartWork)
	h.apply(t, "u1", StartShortBreak)

	_, err := h.engine.Apply(ctx, "u1", Action{Kind: StartTravel})
	assert.True(t, domain.IsRejection(err, domain.RejectBlockedByActiveSubstate))

	h.apply(t, "u1", EndShortBreak)
	h.apply(t, "u1", StartTravel)

	_, err = h.engine.Apply(ctx, "u1", Action{Kind: StartBreak})
	assert.True(t, domain.IsRejection(err, domain.RejectBlockedByActiveSubstate))

	_, err = h.engine.Apply(ctx, "u1", Action{Kind: StartTravel})
	assert.True(t, domain.IsRejection(err, domain.RejectAlreadyOpen))
}

func TestEngine_LocationUnavailable(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	snap, err := h.engine.Apply(ctx, "u1", Action{Kind: StartTravel})
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrLocationUnavailable)
	assert.Equal(t, domain.StatusHome, snap.Status)

	h.apply(t, "u1", StartWork)
	h.apply(t, "u1", StartBreak)

	require.NoError(t, h.positions.Record(ctx, "u1", geo.Point{Lat: 46.05, Lng: 14.51}))
	h.apply(t, "u1", EndBreak)
	h.apply(t, "u1", StartTravel)

	h.clock.Advance(11 * time.Minute)
	_, err = h.engine.Apply(ctx, "u1", Action{Kind: EndTravel})
	assert.ErrorIs(t, err, domain.ErrLocationUnavailable, "stale position must not end travel")

	snap, err = h.engine.Snapshot(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, domain.StatusTraveling, snap.Status)
}

func TestEngine_PersistenceFailureLeavesStateUnchanged(t *testing.T) {
	database := testutil.NewTestDB(t)
	failing := &testutil.FailingUoW{DB: database, FailOn: 2, Err: errors.New("injected work day failure")}
	h := newHarnessWithUoW(t, database, failing)
	ctx := context.Background()

	snap, err := h.engine.Apply(ctx, "u1", Action{Kind: StartWork})
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrPersistence)
	assert.Contains(t, err.Error(), "injected work day failure")
	assert.Equal(t, domain.StatusHome, snap.Status)

	snap, err = h.engine.Snapshot(ctx, "u1")
	require.NoError(t, err)
	assert.True(t, snap.Idle())

	_, err = h.sessions.GetOpen(ctx, "u1")
	assert.ErrorIs(t, err, repository.ErrNotFound, "session insert must be rolled back")
}

func TestEngine_LoadFailureIsPersistenceError(t *testing.T) {
	database := testutil.NewTestDB(t)
	failing := &testutil.FailingUoW{DB: database, FailBegin: true, Err: errors.New("disk unavailable")}
	h := newHarnessWithUoW(t, database, failing)
	ctx := context.Background()

	_, err := h.engine.Snapshot(ctx, "u1")
	require.ErrorIs(t, err, domain.ErrPersistence)
	assert.Contains(t, err.Error(), "disk unavailable")

	_, err = h.engine.Apply(ctx, "u1", Action{Kind: StartWork})
	require.ErrorIs(t, err, domain.ErrPersistence)
	assert.Equal(t, 2, failing.Transactions(), "a failed load must be retried on the next call")

	failing.FailBegin = false
	snap, err := h.engine.Apply(ctx, "u1", Action{Kind: StartWork})
	require.NoError(t, err)
	assert.Equal(t, domain.StatusOnSite, snap.Status)
}

func TestEngine_PersistenceFailureOnTravelAutoStart(t *testing.T) {
	database := testutil.NewTestDB(t)
	ctx := context.Background()
	seed := testutil.NewTestTravel("u1", testutil.At(7, 30, 0), domain.Location{Lat: 46.05, Lng: 14.51})
	require.NoError(t, repository.NewSQLiteTravelRepo(database).Create(ctx, seed))

	// #1 session create, #2 travel update, #3 work day mark
	failing := &testutil.FailingUoW{DB: database, FailOn: 3, Err: errors.New("injected mark failure")}
	h := newHarnessWithUoW(t, database, failing)
	require.NoError(t, h.positions.Record(ctx, "u1", geo.Point{Lat: 46.10, Lng: 14.60}))

	_, err := h.engine.Apply(ctx, "u1", Action{Kind: EndTravel})
	require.ErrorIs(t, err, domain.ErrPersistence)

	snap, err := h.engine.Snapshot(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, domain.StatusTraveling, snap.Status)
	assert.Nil(t, snap.CurrentSession)

	stored, err := h.travels.GetOpen(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, seed.ID, stored.ID)
	_, err = h.sessions.GetOpen(ctx, "u1")
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestEngine_RestoreEndsExpiredBreak(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	s := testutil.NewTestSession("u1", testutil.At(8, 0, 0), testutil.WithOpenBreak(testutil.At(10, 0, 0)))
	require.NoError(t, h.sessions.Create(ctx, s))
	h.advanceTo(t, testutil.At(11, 0, 0))

	var got []Transition
	h.engine.Subscribe(ListenerFunc(func(tr Transition) { got = append(got, tr) }))

	snap, err := h.engine.Restore(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, domain.StatusOnSite, snap.Status)
	assert.Equal(t, int64(domain.LunchBreakLength), snap.CurrentSession.BreakDuration)
	require.NotNil(t, snap.CurrentSession.BreakEndTime)
	assert.Equal(t, testutil.At(10, 35, 0), *snap.CurrentSession.BreakEndTime)

	require.Len(t, got, 2)
	assert.Equal(t, EndBreak, got[0].Action.Kind)
	assert.Equal(t, OriginRestore, got[0].Action.Origin)
	assert.Equal(t, Resync, got[1].Action.Kind)

	stored, err := h.sessions.GetByID(ctx, s.ID)
	require.NoError(t, err)
	assert.False(t, stored.OnBreak)
	assert.Equal(t, int64(2100), stored.TotalBreakTimeUsed)
}

func TestEngine_RestoreKeepsRunningBreak(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	s := testutil.NewTestSession("u1", testutil.At(8, 0, 0), testutil.WithOpenBreak(testutil.At(10, 0, 0)))
	require.NoError(t, h.sessions.Create(ctx, s))
	h.advanceTo(t, testutil.At(10, 5, 0))

	snap, err := h.engine.Restore(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, domain.StatusOnBreak, snap.Status)
	assert.Equal(t, int64(1800), snap.BreakTimeLeft)
	assert.Equal(t, int64(2400), snap.TotalBreakTimeLeft)
}

func TestEngine_DoneStatusFromEarlierSession(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	closed := testutil.NewTestSession("u1", testutil.At(6, 0, 0), testutil.WithEndTime(testutil.At(7, 0, 0)))
	require.NoError(t, h.sessions.Create(ctx, closed))

	snap, err := h.engine.Snapshot(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, domain.StatusDone, snap.Status)

	other, err := h.engine.Snapshot(ctx, "u2")
	require.NoError(t, err)
	assert.Equal(t, domain.StatusHome, other.Status)
}

// The last hour of a fall-back day is still that day.
func TestEngine_DoneStatusLateOnDSTChangeDay(t *testing.T) {
	loc, err := time.LoadLocation("Europe/Ljubljana")
	require.NoError(t, err)
	h := newHarness(t, WithLocation(loc))
	ctx := context.Background()

	h.clock.Advance(time.Date(2026, 10, 25, 23, 45, 0, 0, loc).Sub(h.clock.Now()))
	closed := testutil.NewTestSession("u1", time.Date(2026, 10, 25, 23, 10, 0, 0, loc),
		testutil.WithEndTime(time.Date(2026, 10, 25, 23, 20, 0, 0, loc)))
	require.NoError(t, h.sessions.Create(ctx, closed))

	snap, err := h.engine.Snapshot(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, domain.StatusDone, snap.Status)
}

func TestEngine_ListenersOnlySeeCommittedTransitions(t *testing.T) {
	h := newHarness(t)
	var kinds []ActionKind
	h.engine.Subscribe(ListenerFunc(func(tr Transition) { kinds = append(kinds, tr.Action.Kind) }))

	h.apply(t, "u1", StartWork)
	_, err := h.engine.Apply(context.Background(), "u1", Action{Kind: StartWork})
	require.Error(t, err)
	h.apply(t, "u1", StartBreak)

	assert.Equal(t, []ActionKind{StartWork, StartBreak}, kinds)
}

func TestEngine_InvalidRequests(t *testing.T) {
	h := newHarness(t)

	_, err := h.engine.Apply(context.Background(), "", Action{Kind: StartWork})
	assert.ErrorIs(t, err, ErrNoUser)

	_, err = h.engine.Apply(context.Background(), "u1", Action{Kind: Resync})
	assert.ErrorIs(t, err, ErrUnknownAction)

	_, err = ParseActionKind("nap")
	assert.ErrorIs(t, err, ErrUnknownAction)

	k, err := ParseActionKind("start_short_break")
	require.NoError(t, err)
	assert.Equal(t, StartShortBreak, k)
}

func TestEngine_WorkersAreIsolated(t *testing.T) {
	h := newHarness(t)

	h.apply(t, "u1", StartWork)
	h.apply(t, "u1", StartBreak)
	snap := h.apply(t, "u2", StartWork)

	assert.Equal(t, domain.StatusOnSite, snap.Status)
	u1, err := h.engine.Snapshot(context.Background(), "u1")
	require.NoError(t, err)
	assert.Equal(t, domain.StatusOnBreak, u1.Status)
}

func TestEngine_ConcurrentStartWorkOpensOneSession(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		accepted int
	)
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := h.engine.Apply(ctx, "u1", Action{Kind: StartWork}); err == nil {
				mu.Lock()
				accepted++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, accepted)
	var open int
	require.NoError(t, h.database.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM work_sessions WHERE user_id = ? AND end_time IS NULL`, "u1").Scan(&open))
	assert.Equal(t, 1, open)
}

func TestSnapshot_AdvanceTracksActiveBreak(t *testing.T) {
	h := newHarness(t)
	h.apply(t, "u1", StartWork)
	h.advanceTo(t, testutil.At(9, 0, 0))
	snap := h.apply(t, "u1", StartShortBreak)

	later := snap.Advance(testutil.At(9, 2, 0))
	kind, left, ok := later.ActiveBreak()
	require.True(t, ok)
	assert.Equal(t, domain.BreakShort, kind)
	assert.Equal(t, int64(180), left)
	assert.Equal(t, int64(2580), later.TotalBreakTimeLeft)
	assert.Equal(t, int64(3600), later.WorkDuration)

	expired := snap.Advance(testutil.At(9, 30, 0))
	_, left, _ = expired.ActiveBreak()
	assert.Zero(t, left)
	assert.Equal(t, int64(5100), expired.WorkDuration)
}
