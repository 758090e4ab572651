package service

import (
	"context"
	"fmt"
	"time"

	"github.com/alexanderramin/shiftlog/internal/domain"
	"github.com/alexanderramin/shiftlog/internal/report"
	"github.com/alexanderramin/shiftlog/internal/repository"
	"github.com/jonboulle/clockwork"
)

type reportService struct {
	sessions repository.SessionRepo
	travels  repository.TravelRepo
	days     repository.WorkDayRepo
	clock    clockwork.Clock
	loc      *time.Location
	observer UseCaseObserver
}

// NewReportService builds the read models. loc decides calendar days.
func NewReportService(
	sessions repository.SessionRepo,
	travels repository.TravelRepo,
	days repository.WorkDayRepo,
	clock clockwork.Clock,
	loc *time.Location,
	observers ...UseCaseObserver,
) ReportService {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	if loc == nil {
		loc = time.Local
	}
	return &reportService{
		sessions: sessions,
		travels:  travels,
		days:     days,
		clock:    clock,
		loc:      loc,
		observer: useCaseObserverOrNoop(observers),
	}
}

func (s *reportService) observe(ctx context.Context, name, userID string, startedAt time.Time, err error) {
	s.observer.ObserveUseCase(ctx, UseCaseEvent{
		Name:      name,
		StartedAt: startedAt,
		Duration:  time.Since(startedAt),
		Success:   err == nil,
		Err:       err,
		Fields:    map[string]any{"user_id": userID},
	})
}

func (s *reportService) dayRecords(ctx context.Context, userID string, date time.Time) ([]*domain.WorkSession, []*domain.TravelOrder, error) {
	from, to := report.DayWindow(date, s.loc)
	sessions, err := s.sessions.ListByStartRange(ctx, userID, from, to)
	if err != nil {
		return nil, nil, fmt.Errorf("listing sessions: %w", err)
	}
	travels, err := s.travels.ListByStartRange(ctx, userID, from, to)
	if err != nil {
		return nil, nil, fmt.Errorf("listing travels: %w", err)
	}
	return sessions, travels, nil
}

func (s *reportService) Timeline(ctx context.Context, userID string, date time.Time) (events []domain.TimelineEvent, err error) {
	startedAt := time.Now().UTC()
	defer func() { s.observe(ctx, "timeline", userID, startedAt, err) }()

	sessions, travels, err := s.dayRecords(ctx, userID, date)
	if err != nil {
		return nil, err
	}
	return report.BuildTimeline(sessions, travels, s.clock.Now()), nil
}

func (s *reportService) DailyReport(ctx context.Context, userID string, date time.Time) (r *report.DailyReport, err error) {
	startedAt := time.Now().UTC()
	defer func() { s.observe(ctx, "daily-report", userID, startedAt, err) }()

	sessions, travels, err := s.dayRecords(ctx, userID, date)
	if err != nil {
		return nil, err
	}
	daily := report.BuildDailyReport(domain.DateKey(date.In(s.loc)), sessions, travels, s.clock.Now())
	return &daily, nil
}

func (s *reportService) MonthlyStats(ctx context.Context, userID string, month time.Time, hourlyRate float64) (stats *report.MonthlyStats, err error) {
	startedAt := time.Now().UTC()
	defer func() { s.observe(ctx, "monthly-stats", userID, startedAt, err) }()

	from, to := report.MonthWindow(month, s.loc)
	sessions, err := s.sessions.ListByStartRange(ctx, userID, from, to)
	if err != nil {
		return nil, fmt.Errorf("listing sessions: %w", err)
	}
	m := report.BuildMonthlyStats(month, s.loc, sessions, hourlyRate, s.clock.Now())
	return &m, nil
}

func (s *reportService) WorkDays(ctx context.Context, userID string, month time.Time) ([]report.CalendarDay, error) {
	from, to := report.MonthWindow(month, s.loc)
	days, err := s.days.ListBetween(ctx, userID, domain.DateKey(from), domain.DateKey(to))
	if err != nil {
		return nil, fmt.Errorf("listing work days: %w", err)
	}
	marked := make([]string, 0, len(days))
	for _, d := range days {
		marked = append(marked, d.Date)
	}
	return report.MonthCalendar(month, s.loc, marked), nil
}

func (s *reportService) IsWorkDay(ctx context.Context, userID string, date time.Time) (bool, error) {
	return s.days.Exists(ctx, userID, domain.DateKey(date.In(s.loc)))
}
