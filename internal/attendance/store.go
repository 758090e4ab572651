package attendance

import (
	"context"
	"errors"
	"time"

	"github.com/alexanderramin/shiftlog/internal/db"
	"github.com/alexanderramin/shiftlog/internal/domain"
	"github.com/alexanderramin/shiftlog/internal/repository"
)

// Delta is the full set of record writes produced by one transition.
type Delta struct {
	CreateSession *domain.WorkSession
	UpdateSession *domain.WorkSession
	CreateTravel  *domain.TravelOrder
	UpdateTravel  *domain.TravelOrder
	MarkDay       *domain.WorkDay
}

func (d Delta) empty() bool {
	return d.CreateSession == nil && d.UpdateSession == nil &&
		d.CreateTravel == nil && d.UpdateTravel == nil && d.MarkDay == nil
}

// Record is the committed state of one worker as found in storage.
type Record struct {
	Session    *domain.WorkSession
	Travel     *domain.TravelOrder
	LastClosed *domain.WorkSession
}

// Store is the persistence collaborator. Commit applies a Delta atomically.
type Store interface {
	Commit(ctx context.Context, d Delta) error
	Load(ctx context.Context, userID string, dayFrom, dayTo time.Time) (Record, error)
}

// SQLStore commits deltas through a UnitOfWork with tx-scoped repositories.
type SQLStore struct {
	uow db.UnitOfWork
}

func NewSQLStore(uow db.UnitOfWork) *SQLStore {
	return &SQLStore{uow: uow}
}

// Commit writes sessions first, then travels, then the work-day marker.
func (s *SQLStore) Commit(ctx context.Context, d Delta) error {
	return s.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		sessions := repository.NewSQLiteSessionRepo(tx)
		travels := repository.NewSQLiteTravelRepo(tx)
		days := repository.NewSQLiteWorkDayRepo(tx)

		if d.UpdateSession != nil {
			if err := sessions.Update(ctx, d.UpdateSession); err != nil {
				return err
			}
		}
		if d.CreateSession != nil {
			if err := sessions.Create(ctx, d.CreateSession); err != nil {
				return err
			}
		}
		if d.UpdateTravel != nil {
			if err := travels.Update(ctx, d.UpdateTravel); err != nil {
				return err
			}
		}
		if d.CreateTravel != nil {
			if err := travels.Create(ctx, d.CreateTravel); err != nil {
				return err
			}
		}
		if d.MarkDay != nil {
			return days.Mark(ctx, d.MarkDay)
		}
		return nil
	})
}

// Load reads the open session and travel, plus the latest session closed
// within [dayFrom, dayTo].
func (s *SQLStore) Load(ctx context.Context, userID string, dayFrom, dayTo time.Time) (Record, error) {
	return db.InTx(ctx, s.uow, func(ctx context.Context, tx db.DBTX) (Record, error) {
		sessions := repository.NewSQLiteSessionRepo(tx)
		travels := repository.NewSQLiteTravelRepo(tx)

		var rec Record
		open, err := sessions.GetOpen(ctx, userID)
		if err != nil && !errors.Is(err, repository.ErrNotFound) {
			return rec, err
		}
		rec.Session = open

		travel, err := travels.GetOpen(ctx, userID)
		if err != nil && !errors.Is(err, repository.ErrNotFound) {
			return rec, err
		}
		rec.Travel = travel

		today, err := sessions.ListByStartRange(ctx, userID, dayFrom, dayTo)
		if err != nil {
			return rec, err
		}
		rec.LastClosed = latestClosed(today)
		return rec, nil
	})
}

func latestClosed(sessions []*domain.WorkSession) *domain.WorkSession {
	var last *domain.WorkSession
	for _, s := range sessions {
		if s.EndTime == nil {
			continue
		}
		if last == nil || s.EndTime.After(*last.EndTime) {
			last = s
		}
	}
	return last
}
