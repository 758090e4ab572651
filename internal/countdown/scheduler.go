// Package countdown drives the live timers of open phases. Each worker with
// an open session or travel gets one ticker; every tick recomputes the
// remaining break time and ends a break that has run out.
package countdown

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/alexanderramin/shiftlog/internal/attendance"
	"github.com/alexanderramin/shiftlog/internal/domain"
	"github.com/jonboulle/clockwork"
)

// DefaultInterval is the tick period.
const DefaultInterval = time.Second

// Engine is the part of the attendance engine the scheduler drives.
type Engine interface {
	Apply(ctx context.Context, userID string, a attendance.Action) (attendance.Snapshot, error)
	Snapshot(ctx context.Context, userID string) (attendance.Snapshot, error)
}

// Tick is one recomputation of a worker's timers, in seconds.
type Tick struct {
	UserID              string
	At                  time.Time
	Status              domain.Status
	WorkElapsed         int64
	BreakRemaining      int64
	ShortBreakRemaining int64
	TotalBreakRemaining int64
	TravelElapsed       int64
	// Expired is set on the tick that ended a break.
	Expired domain.BreakKind
}

// TickFrom projects a snapshot onto a tick.
func TickFrom(snap attendance.Snapshot) Tick {
	return Tick{
		UserID:              snap.UserID,
		At:                  snap.At,
		Status:              snap.Status,
		WorkElapsed:         snap.WorkDuration,
		BreakRemaining:      snap.BreakTimeLeft,
		ShortBreakRemaining: snap.ShortBreakTimeLeft,
		TotalBreakRemaining: snap.TotalBreakTimeLeft,
		TravelElapsed:       snap.TravelDuration,
	}
}

type timer struct {
	cancel context.CancelFunc
	snap   attendance.Snapshot
}

type subscriber struct {
	ch   chan Tick
	once sync.Once
}

// Scheduler keys timers by worker id. It implements attendance.Listener and
// must be subscribed to the engine it drives.
type Scheduler struct {
	engine   Engine
	clock    clockwork.Clock
	interval time.Duration
	logger   *slog.Logger

	mu      sync.Mutex
	timers  map[string]*timer
	subs    map[string]map[int]*subscriber
	nextSub int
	stopped bool
	wg      sync.WaitGroup
}

// Option configures a Scheduler.
type Option func(*Scheduler)

func WithClock(c clockwork.Clock) Option {
	return func(s *Scheduler) { s.clock = c }
}

func WithInterval(d time.Duration) Option {
	return func(s *Scheduler) { s.interval = d }
}

func WithLogger(l *slog.Logger) Option {
	return func(s *Scheduler) { s.logger = l }
}

func New(engine Engine, opts ...Option) *Scheduler {
	s := &Scheduler{
		engine:   engine,
		clock:    clockwork.NewRealClock(),
		interval: DefaultInterval,
		logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
		timers:   make(map[string]*timer),
		subs:     make(map[string]map[int]*subscriber),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.interval <= 0 {
		s.interval = DefaultInterval
	}
	return s
}

// OnTransition arms, refreshes or cancels the worker's timer. It never
// blocks on the timer goroutine.
func (s *Scheduler) OnTransition(tr attendance.Transition) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stopped {
		return
	}

	tm, running := s.timers[tr.UserID]
	if tr.Snapshot.Idle() {
		if running {
			tm.cancel()
			delete(s.timers, tr.UserID)
		}
		s.publishLocked(tr.UserID, TickFrom(tr.Snapshot))
		return
	}
	if running {
		tm.snap = tr.Snapshot
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	tm = &timer{cancel: cancel, snap: tr.Snapshot}
	s.timers[tr.UserID] = tm
	s.wg.Add(1)
	go s.run(ctx, tr.UserID, tm)
}

// Active reports whether a timer is running for the worker.
func (s *Scheduler) Active(userID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.timers[userID]
	return ok
}

// Cancel tears down the worker's timer. Calling it again is a no-op.
func (s *Scheduler) Cancel(userID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if tm, ok := s.timers[userID]; ok {
		tm.cancel()
		delete(s.timers, userID)
	}
}

// Subscribe streams ticks for a worker. Slow readers only see the latest
// tick. The returned cancel func closes the channel and is idempotent.
func (s *Scheduler) Subscribe(userID string) (<-chan Tick, func()) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sub := &subscriber{ch: make(chan Tick, 1)}
	if s.stopped {
		close(sub.ch)
		return sub.ch, func() {}
	}
	id := s.nextSub
	s.nextSub++
	if s.subs[userID] == nil {
		s.subs[userID] = make(map[int]*subscriber)
	}
	s.subs[userID][id] = sub

	return sub.ch, func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		if m, ok := s.subs[userID]; ok {
			delete(m, id)
			if len(m) == 0 {
				delete(s.subs, userID)
			}
		}
		sub.once.Do(func() { close(sub.ch) })
	}
}

// Settle runs one tick synchronously: a break past its length is ended
// before the tick is returned.
func (s *Scheduler) Settle(ctx context.Context, userID string) (Tick, error) {
	snap, err := s.engine.Snapshot(ctx, userID)
	if err != nil {
		return Tick{}, err
	}
	snap, expired, err := s.expire(ctx, userID, snap)
	tick := TickFrom(snap)
	tick.Expired = expired
	return tick, err
}

// Stop cancels every timer, waits for their goroutines and closes all
// subscriptions.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	if s.stopped {
		s.mu.Unlock()
		return
	}
	s.stopped = true
	for id, tm := range s.timers {
		tm.cancel()
		delete(s.timers, id)
	}
	s.mu.Unlock()

	s.wg.Wait()

	s.mu.Lock()
	defer s.mu.Unlock()
	for userID, m := range s.subs {
		for _, sub := range m {
			sub.once.Do(func() { close(sub.ch) })
		}
		delete(s.subs, userID)
	}
}

func (s *Scheduler) run(ctx context.Context, userID string, tm *timer) {
	defer s.wg.Done()

	ticker := s.clock.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.Chan():
			s.tick(ctx, userID, tm)
		}
	}
}

// tick must not hold s.mu while calling the engine: the engine publishes
// transitions back into OnTransition.
func (s *Scheduler) tick(ctx context.Context, userID string, tm *timer) {
	s.mu.Lock()
	snap := tm.snap
	s.mu.Unlock()

	snap = snap.Advance(s.clock.Now())
	next, expired, err := s.expire(ctx, userID, snap)
	if err != nil {
		if ctx.Err() == nil {
			s.logger.Error("auto-ending break failed", "user_id", userID, "error", err)
		}
		next = snap
	}

	t := TickFrom(next)
	t.Expired = expired

	s.mu.Lock()
	defer s.mu.Unlock()
	if ctx.Err() != nil {
		return
	}
	s.publishLocked(userID, t)
}

// expire ends the active break when its time is up. A rejection means the
// break was already ended by someone else and is not an error.
func (s *Scheduler) expire(ctx context.Context, userID string, snap attendance.Snapshot) (attendance.Snapshot, domain.BreakKind, error) {
	kind, left, ok := snap.ActiveBreak()
	if !ok || left > 0 {
		return snap, "", nil
	}

	next, err := s.engine.Apply(ctx, userID, attendance.Action{
		Kind:   attendance.EndActionFor(kind),
		Origin: attendance.OriginScheduler,
	})
	if err != nil {
		var rej *domain.RejectionError
		if errors.As(err, &rej) {
			s.logger.Debug("break already ended", "user_id", userID, "kind", string(kind))
			return next, "", nil
		}
		return snap, "", err
	}

	s.logger.Info("break expired", "user_id", userID, "kind", string(kind))
	return next, kind, nil
}

func (s *Scheduler) publishLocked(userID string, t Tick) {
	for _, sub := range s.subs[userID] {
		select {
		case sub.ch <- t:
		default:
			next := t
			select {
			case old := <-sub.ch:
				// A replaced expiry must still reach the reader.
				if next.Expired == "" {
					next.Expired = old.Expired
				}
			default:
			}
			select {
			case sub.ch <- next:
			default:
			}
		}
	}
}
