package attendance

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/alexanderramin/shiftlog/internal/domain"
	"github.com/alexanderramin/shiftlog/internal/geo"
	"github.com/alexanderramin/shiftlog/internal/report"
	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
)

// Transition is published to listeners after a committed change.
type Transition struct {
	UserID   string
	Action   Action
	Snapshot Snapshot
}

// Listener observes committed transitions. OnTransition is called while the
// worker's context is held, so it must not call back into the Engine.
type Listener interface {
	OnTransition(t Transition)
}

// ListenerFunc adapts a function to Listener.
type ListenerFunc func(Transition)

func (f ListenerFunc) OnTransition(t Transition) { f(t) }

// state is the committed view of a worker kept between actions.
type state struct {
	session    *domain.WorkSession
	travel     *domain.TravelOrder
	lastClosed *domain.WorkSession
}

// workerContext serializes all transitions of one worker.
type workerContext struct {
	mu     sync.Mutex
	loaded bool
	state  state
}

// Engine owns one context per worker id. Workers never share mutable state.
type Engine struct {
	store     Store
	clock     clockwork.Clock
	positions geo.PositionSource
	geocoder  geo.Geocoder
	policy    Policy
	loc       *time.Location
	newID     func() string

	mu        sync.Mutex
	workers   map[string]*workerContext
	listeners []Listener
}

// Option configures an Engine.
type Option func(*Engine)

func WithClock(c clockwork.Clock) Option {
	return func(e *Engine) { e.clock = c }
}

func WithPositions(p geo.PositionSource) Option {
	return func(e *Engine) { e.positions = p }
}

func WithGeocoder(g geo.Geocoder) Option {
	return func(e *Engine) { e.geocoder = g }
}

func WithPolicy(p Policy) Option {
	return func(e *Engine) { e.policy = p }
}

// WithLocation sets the zone that decides calendar dates. Defaults to time.Local.
func WithLocation(loc *time.Location) Option {
	return func(e *Engine) { e.loc = loc }
}

func NewEngine(store Store, opts ...Option) *Engine {
	e := &Engine{
		store:   store,
		clock:   clockwork.NewRealClock(),
		policy:  DefaultPolicy(),
		loc:     time.Local,
		newID:   func() string { return uuid.New().String() },
		workers: make(map[string]*workerContext),
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.clock == nil {
		e.clock = clockwork.NewRealClock()
	}
	if e.loc == nil {
		e.loc = time.Local
	}
	return e
}

// Subscribe registers a listener for every committed transition.
func (e *Engine) Subscribe(l Listener) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.listeners = append(e.listeners, l)
}

func (e *Engine) worker(userID string) *workerContext {
	e.mu.Lock()
	defer e.mu.Unlock()
	wc, ok := e.workers[userID]
	if !ok {
		wc = &workerContext{}
		e.workers[userID] = wc
	}
	return wc
}

// Apply evaluates a against the worker's committed state, persists the
// resulting delta and publishes the new snapshot. On any error the committed
// state is unchanged and the returned snapshot reflects it.
func (e *Engine) Apply(ctx context.Context, userID string, a Action) (Snapshot, error) {
	if userID == "" {
		return Snapshot{}, ErrNoUser
	}
	if !ValidActions[a.Kind] {
		return Snapshot{}, fmt.Errorf("%w: %q", ErrUnknownAction, a.Kind)
	}
	if a.Origin == "" {
		a.Origin = OriginUser
	}

	wc := e.worker(userID)
	wc.mu.Lock()
	defer wc.mu.Unlock()

	if err := e.ensureLoaded(ctx, userID, wc); err != nil {
		return Snapshot{}, err
	}
	return e.applyLocked(ctx, userID, wc, a)
}

// Snapshot returns the current view of the worker without changing it.
func (e *Engine) Snapshot(ctx context.Context, userID string) (Snapshot, error) {
	if userID == "" {
		return Snapshot{}, ErrNoUser
	}
	wc := e.worker(userID)
	wc.mu.Lock()
	defer wc.mu.Unlock()

	if err := e.ensureLoaded(ctx, userID, wc); err != nil {
		return Snapshot{}, err
	}
	return buildSnapshot(userID, wc.state, e.clock.Now()), nil
}

// Restore rebuilds the worker context from storage. A break that ran past
// its length while nothing was watching is ended at start + length.
// Listeners receive a Resync transition with the restored snapshot.
func (e *Engine) Restore(ctx context.Context, userID string) (Snapshot, error) {
	if userID == "" {
		return Snapshot{}, ErrNoUser
	}
	wc := e.worker(userID)
	wc.mu.Lock()
	defer wc.mu.Unlock()

	wc.loaded = false
	if err := e.ensureLoaded(ctx, userID, wc); err != nil {
		return Snapshot{}, err
	}

	now := e.clock.Now()
	if s := wc.state.session; s != nil {
		if kind, start, ok := s.ActiveBreak(); ok && domain.ElapsedSeconds(start, now) >= kind.Length() {
			if _, err := e.applyLocked(ctx, userID, wc, Action{Kind: EndActionFor(kind), Origin: OriginRestore}); err != nil {
				return buildSnapshot(userID, wc.state, now), err
			}
		}
	}

	snap := buildSnapshot(userID, wc.state, e.clock.Now())
	e.publish(Transition{UserID: userID, Action: Action{Kind: Resync, Origin: OriginRestore}, Snapshot: snap})
	return snap, nil
}

func (e *Engine) ensureLoaded(ctx context.Context, userID string, wc *workerContext) error {
	if wc.loaded {
		return nil
	}
	from, to := report.DayWindow(e.clock.Now(), e.loc)
	rec, err := e.store.Load(ctx, userID, from, to)
	if err != nil {
		return fmt.Errorf("%w: loading worker %s: %w", domain.ErrPersistence, userID, err)
	}
	wc.state = state{session: rec.Session, travel: rec.Travel, lastClosed: rec.LastClosed}
	wc.loaded = true
	return nil
}

func (e *Engine) applyLocked(ctx context.Context, userID string, wc *workerContext, a Action) (Snapshot, error) {
	now := e.clock.Now()

	next, delta, err := e.plan(ctx, userID, wc.state, a, now)
	if err != nil {
		return buildSnapshot(userID, wc.state, now), err
	}
	if !delta.empty() {
		if err := e.store.Commit(ctx, delta); err != nil {
			return buildSnapshot(userID, wc.state, now), fmt.Errorf("%w: %s: %w", domain.ErrPersistence, a.Kind, err)
		}
	}

	wc.state = next
	snap := buildSnapshot(userID, wc.state, now)
	e.publish(Transition{UserID: userID, Action: a, Snapshot: snap})
	return snap, nil
}

func (e *Engine) publish(t Transition) {
	e.mu.Lock()
	listeners := make([]Listener, len(e.listeners))
	copy(listeners, e.listeners)
	e.mu.Unlock()

	for _, l := range listeners {
		l.OnTransition(t)
	}
}

// EndActionFor returns the action that ends a break of the given kind.
func EndActionFor(kind domain.BreakKind) ActionKind {
	if kind == domain.BreakShort {
		return EndShortBreak
	}
	return EndBreak
}
