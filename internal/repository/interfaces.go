package repository

import (
	"context"
	"time"

	"github.com/alexanderramin/shiftlog/internal/domain"
)

// SessionRepo stores WorkSessions. Range queries match on start_time,
// inclusive at both ends, ordered by start_time ascending.
type SessionRepo interface {
	Create(ctx context.Context, s *domain.WorkSession) error
	GetByID(ctx context.Context, id string) (*domain.WorkSession, error)
	GetOpen(ctx context.Context, userID string) (*domain.WorkSession, error)
	Update(ctx context.Context, s *domain.WorkSession) error
	ListByStartRange(ctx context.Context, userID string, from, to time.Time) ([]*domain.WorkSession, error)
}

// TravelRepo stores TravelOrders with the same range semantics as SessionRepo.
type TravelRepo interface {
	Create(ctx context.Context, t *domain.TravelOrder) error
	GetByID(ctx context.Context, id string) (*domain.TravelOrder, error)
	GetOpen(ctx context.Context, userID string) (*domain.TravelOrder, error)
	Update(ctx context.Context, t *domain.TravelOrder) error
	ListByStartRange(ctx context.Context, userID string, from, to time.Time) ([]*domain.TravelOrder, error)
}

// WorkDayRepo is the registry of dates with recorded activity.
type WorkDayRepo interface {
	// Mark records the date; marking an existing date is a no-op.
	Mark(ctx context.Context, d *domain.WorkDay) error
	Exists(ctx context.Context, userID, date string) (bool, error)
	ListBetween(ctx context.Context, userID, fromDate, toDate string) ([]*domain.WorkDay, error)
}
