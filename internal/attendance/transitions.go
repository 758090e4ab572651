package attendance

import (
	"context"
	"fmt"
	"time"

	"github.com/alexanderramin/shiftlog/internal/domain"
	"github.com/alexanderramin/shiftlog/internal/geo"
)

// plan computes the next state and the writes that realise it. The current
// state is never modified; records are cloned before any mutation.
func (e *Engine) plan(ctx context.Context, userID string, cur state, a Action, now time.Time) (state, Delta, error) {
	switch a.Kind {
	case StartWork:
		return e.planStartWork(userID, cur, now)
	case EndWork:
		return planEndWork(cur, now)
	case StartBreak:
		return planStartBreak(cur, domain.BreakLunch, now)
	case StartShortBreak:
		return planStartBreak(cur, domain.BreakShort, now)
	case EndBreak:
		return planEndBreak(cur, domain.BreakLunch, now)
	case EndShortBreak:
		return planEndBreak(cur, domain.BreakShort, now)
	case StartTravel:
		return e.planStartTravel(ctx, userID, cur, a, now)
	case EndTravel:
		return e.planEndTravel(ctx, userID, cur, a, now)
	}
	return cur, Delta{}, fmt.Errorf("%w: %q", ErrUnknownAction, a.Kind)
}

func (e *Engine) planStartWork(userID string, cur state, now time.Time) (state, Delta, error) {
	if cur.session != nil {
		return cur, Delta{}, domain.Reject(domain.RejectAlreadyOpen, string(StartWork), "a work session is already open")
	}
	next := cur
	next.session = domain.NewWorkSession(e.newID(), userID, now)
	return next, Delta{
		CreateSession: next.session,
		MarkDay:       domain.NewWorkDay(userID, now.In(e.loc)),
	}, nil
}

func planEndWork(cur state, now time.Time) (state, Delta, error) {
	if cur.session == nil {
		return cur, Delta{}, domain.Reject(domain.RejectNoOpenSession, string(EndWork), "no open work session")
	}
	if cur.travel != nil {
		return cur, Delta{}, domain.Reject(domain.RejectBlockedByActiveSubstate, string(EndWork), "end the current travel first")
	}
	s := cur.session.Clone()
	if err := s.Close(now); err != nil {
		return cur, Delta{}, err
	}
	return state{travel: cur.travel, lastClosed: s}, Delta{UpdateSession: s}, nil
}

func planStartBreak(cur state, kind domain.BreakKind, now time.Time) (state, Delta, error) {
	action := kind.StartAction()
	if cur.session == nil {
		return cur, Delta{}, domain.Reject(domain.RejectNoOpenSession, action, "no open work session")
	}
	if cur.travel != nil {
		return cur, Delta{}, domain.Reject(domain.RejectBlockedByActiveSubstate, action, "travel is in progress")
	}
	s := cur.session.Clone()
	if err := s.StartBreak(kind, now); err != nil {
		return cur, Delta{}, err
	}
	next := cur
	next.session = s
	return next, Delta{UpdateSession: s}, nil
}

func planEndBreak(cur state, kind domain.BreakKind, now time.Time) (state, Delta, error) {
	if cur.session == nil {
		return cur, Delta{}, domain.Reject(domain.RejectNoOpenSession, kind.EndAction(), "no open work session")
	}
	s := cur.session.Clone()
	if _, err := s.EndBreak(kind, now); err != nil {
		return cur, Delta{}, err
	}
	next := cur
	next.session = s
	return next, Delta{UpdateSession: s}, nil
}

func (e *Engine) planStartTravel(ctx context.Context, userID string, cur state, a Action, now time.Time) (state, Delta, error) {
	action := string(StartTravel)
	if cur.travel != nil {
		return cur, Delta{}, domain.Reject(domain.RejectAlreadyOpen, action, "a travel order is already open")
	}
	if cur.session == nil && !e.policy.AllowTravelWhileIdle {
		return cur, Delta{}, domain.Reject(domain.RejectNoOpenSession, action, "start work before travelling")
	}
	if cur.session != nil && cur.session.OnAnyBreak() {
		return cur, Delta{}, domain.Reject(domain.RejectBlockedByActiveSubstate, action, "end the current break first")
	}

	from, err := e.locate(ctx, userID)
	if err != nil {
		return cur, Delta{}, err
	}
	t := domain.NewTravelOrder(e.newID(), userID, now, from)
	t.Describe(a.Destination, a.Purpose, a.ProjectID)

	next := cur
	next.travel = t
	return next, Delta{CreateTravel: t}, nil
}

func (e *Engine) planEndTravel(ctx context.Context, userID string, cur state, a Action, now time.Time) (state, Delta, error) {
	if cur.travel == nil {
		return cur, Delta{}, domain.Reject(domain.RejectNotActive, string(EndTravel), "no travel in progress")
	}

	to, err := e.locate(ctx, userID)
	if err != nil {
		return cur, Delta{}, err
	}
	t := cur.travel.Clone()
	t.Describe(a.Destination, a.Purpose, a.ProjectID)
	distance := geo.Distance(
		geo.Point{Lat: t.StartLocation.Lat, Lng: t.StartLocation.Lng},
		geo.Point{Lat: to.Lat, Lng: to.Lng},
	)
	if err := t.Close(now, to, distance); err != nil {
		return cur, Delta{}, err
	}

	next := cur
	next.travel = nil
	delta := Delta{UpdateTravel: t}
	if cur.session == nil && e.policy.AutoStartWorkAfterTravel {
		next.session = domain.NewWorkSession(e.newID(), userID, now)
		delta.CreateSession = next.session
		delta.MarkDay = domain.NewWorkDay(userID, now.In(e.loc))
	}
	return next, delta, nil
}

// locate samples the worker's position and resolves its address best-effort.
func (e *Engine) locate(ctx context.Context, userID string) (domain.Location, error) {
	if e.positions == nil {
		return domain.Location{}, fmt.Errorf("%w: no position source configured", domain.ErrLocationUnavailable)
	}
	p, err := e.positions.CurrentPosition(ctx, userID)
	if err != nil {
		return domain.Location{}, fmt.Errorf("%w: %w", domain.ErrLocationUnavailable, err)
	}
	return domain.Location{
		Lat:     p.Lat,
		Lng:     p.Lng,
		Address: geo.ResolveAddress(ctx, e.geocoder, p),
	}, nil
}
