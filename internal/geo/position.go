package geo

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
)

// ErrNoPosition indicates no fresh position is known for the worker.
var ErrNoPosition = errors.New("no current position")

// PositionSource supplies a worker's current position. Implementations may
// return ErrNoPosition when the last sample is missing or stale.
type PositionSource interface {
	CurrentPosition(ctx context.Context, userID string) (Point, error)
}

// PositionStore is a PositionSource fed by a sampling provider.
type PositionStore interface {
	PositionSource
	Record(ctx context.Context, userID string, p Point) error
}

type sample struct {
	point      Point
	recordedAt time.Time
}

// MemoryPositionStore keeps the last sample per worker in process memory.
// Samples older than ttl are treated as unavailable; ttl <= 0 never expires.
type MemoryPositionStore struct {
	clock clockwork.Clock
	ttl   time.Duration

	mu      sync.RWMutex
	samples map[string]sample
}

func NewMemoryPositionStore(clock clockwork.Clock, ttl time.Duration) *MemoryPositionStore {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &MemoryPositionStore{clock: clock, ttl: ttl, samples: make(map[string]sample)}
}

func (m *MemoryPositionStore) Record(_ context.Context, userID string, p Point) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.samples[userID] = sample{point: p, recordedAt: m.clock.Now()}
	return nil
}

func (m *MemoryPositionStore) CurrentPosition(_ context.Context, userID string) (Point, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.samples[userID]
	if !ok {
		return Point{}, ErrNoPosition
	}
	if m.ttl > 0 && m.clock.Since(s.recordedAt) > m.ttl {
		return Point{}, ErrNoPosition
	}
	return s.point, nil
}
