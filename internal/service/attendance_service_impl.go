package service

import (
	"context"
	"fmt"
	"time"

	"github.com/alexanderramin/shiftlog/internal/attendance"
	"github.com/alexanderramin/shiftlog/internal/countdown"
	"github.com/alexanderramin/shiftlog/internal/domain"
	"github.com/alexanderramin/shiftlog/internal/geo"
	"golang.org/x/sync/errgroup"
)

// restoreConcurrency bounds how many workers are reloaded at once.
const restoreConcurrency = 4

// Engine is the attendance state machine as seen by the service.
type Engine interface {
	Apply(ctx context.Context, userID string, a attendance.Action) (attendance.Snapshot, error)
	Snapshot(ctx context.Context, userID string) (attendance.Snapshot, error)
	Restore(ctx context.Context, userID string) (attendance.Snapshot, error)
}

type attendanceService struct {
	engine    Engine
	scheduler *countdown.Scheduler
	positions geo.PositionStore
	observer  UseCaseObserver
}

// NewAttendanceService wires the engine with its countdown scheduler and
// position store. scheduler and positions may be nil.
func NewAttendanceService(
	engine Engine,
	scheduler *countdown.Scheduler,
	positions geo.PositionStore,
	observers ...UseCaseObserver,
) AttendanceService {
	return &attendanceService{
		engine:    engine,
		scheduler: scheduler,
		positions: positions,
		observer:  useCaseObserverOrNoop(observers),
	}
}

func (s *attendanceService) StartWork(ctx context.Context, userID string) (attendance.Snapshot, error) {
	return s.apply(ctx, userID, attendance.Action{Kind: attendance.StartWork})
}

func (s *attendanceService) EndWork(ctx context.Context, userID string) (attendance.Snapshot, error) {
	return s.apply(ctx, userID, attendance.Action{Kind: attendance.EndWork})
}

func (s *attendanceService) StartBreak(ctx context.Context, userID string) (attendance.Snapshot, error) {
	return s.apply(ctx, userID, attendance.Action{Kind: attendance.StartBreak})
}

func (s *attendanceService) EndBreak(ctx context.Context, userID string) (attendance.Snapshot, error) {
	return s.apply(ctx, userID, attendance.Action{Kind: attendance.EndBreak})
}

func (s *attendanceService) StartShortBreak(ctx context.Context, userID string) (attendance.Snapshot, error) {
	return s.apply(ctx, userID, attendance.Action{Kind: attendance.StartShortBreak})
}

func (s *attendanceService) EndShortBreak(ctx context.Context, userID string) (attendance.Snapshot, error) {
	return s.apply(ctx, userID, attendance.Action{Kind: attendance.EndShortBreak})
}

func (s *attendanceService) StartTravel(ctx context.Context, userID string, req TravelRequest) (attendance.Snapshot, error) {
	return s.apply(ctx, userID, travelAction(attendance.StartTravel, req))
}

func (s *attendanceService) EndTravel(ctx context.Context, userID string, req TravelRequest) (attendance.Snapshot, error) {
	return s.apply(ctx, userID, travelAction(attendance.EndTravel, req))
}

func travelAction(kind attendance.ActionKind, req TravelRequest) attendance.Action {
	return attendance.Action{
		Kind:        kind,
		Destination: req.Destination,
		Purpose:     req.Purpose,
		ProjectID:   domain.StrPtrOrNil(req.ProjectID),
	}
}

func (s *attendanceService) apply(ctx context.Context, userID string, a attendance.Action) (snap attendance.Snapshot, err error) {
	startedAt := time.Now().UTC()
	defer func() {
		s.observer.ObserveUseCase(ctx, UseCaseEvent{
			Name:      string(a.Kind),
			StartedAt: startedAt,
			Duration:  time.Since(startedAt),
			Success:   err == nil,
			Err:       err,
			Fields:    map[string]any{"user_id": userID, "status": string(snap.Status)},
		})
	}()

	if s.scheduler != nil {
		tick, err := s.scheduler.Settle(ctx, userID)
		if err != nil {
			return snap, err
		}
		// The break this action would end has just run out; ending it
		// again is a no-op.
		if tick.Expired != "" && a.Kind == attendance.EndActionFor(tick.Expired) {
			return s.engine.Snapshot(ctx, userID)
		}
	}
	return s.engine.Apply(ctx, userID, a)
}

func (s *attendanceService) Status(ctx context.Context, userID string) (attendance.Snapshot, error) {
	if s.scheduler != nil {
		if _, err := s.scheduler.Settle(ctx, userID); err != nil {
			return attendance.Snapshot{}, err
		}
	}
	return s.engine.Snapshot(ctx, userID)
}

func (s *attendanceService) RecordPosition(ctx context.Context, userID string, p geo.Point) error {
	if s.positions == nil {
		return fmt.Errorf("%w: no position store configured", domain.ErrLocationUnavailable)
	}
	if err := s.positions.Record(ctx, userID, p); err != nil {
		return fmt.Errorf("recording position: %w", err)
	}
	return nil
}

// Restore rebuilds each worker's context from storage concurrently. The
// first failure cancels the remaining reloads.
func (s *attendanceService) Restore(ctx context.Context, userIDs ...string) (err error) {
	startedAt := time.Now().UTC()
	defer func() {
		s.observer.ObserveUseCase(ctx, UseCaseEvent{
			Name:      "restore",
			StartedAt: startedAt,
			Duration:  time.Since(startedAt),
			Success:   err == nil,
			Err:       err,
			Fields:    map[string]any{"workers": len(userIDs)},
		})
	}()

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(restoreConcurrency)
	for _, id := range userIDs {
		g.Go(func() error {
			if _, err := s.engine.Restore(gctx, id); err != nil {
				return fmt.Errorf("restoring %s: %w", id, err)
			}
			return nil
		})
	}
	return g.Wait()
}
