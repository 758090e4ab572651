package service

import (
	"context"
	"time"

	"github.com/alexanderramin/shiftlog/internal/attendance"
	"github.com/alexanderramin/shiftlog/internal/domain"
	"github.com/alexanderramin/shiftlog/internal/geo"
	"github.com/alexanderramin/shiftlog/internal/report"
)

// TravelRequest carries the optional travel details. Empty fields leave the
// stored values untouched when ending a travel.
type TravelRequest struct {
	Destination string
	Purpose     string
	ProjectID   string
}

type AttendanceService interface {
	StartWork(ctx context.Context, userID string) (attendance.Snapshot, error)
	EndWork(ctx context.Context, userID string) (attendance.Snapshot, error)
	StartBreak(ctx context.Context, userID string) (attendance.Snapshot, error)
	EndBreak(ctx context.Context, userID string) (attendance.Snapshot, error)
	StartShortBreak(ctx context.Context, userID string) (attendance.Snapshot, error)
	EndShortBreak(ctx context.Context, userID string) (attendance.Snapshot, error)
	StartTravel(ctx context.Context, userID string, req TravelRequest) (attendance.Snapshot, error)
	EndTravel(ctx context.Context, userID string, req TravelRequest) (attendance.Snapshot, error)

	// Status settles an expired break before returning the snapshot.
	Status(ctx context.Context, userID string) (attendance.Snapshot, error)
	RecordPosition(ctx context.Context, userID string, p geo.Point) error
	Restore(ctx context.Context, userIDs ...string) error
}

type ReportService interface {
	Timeline(ctx context.Context, userID string, date time.Time) ([]domain.TimelineEvent, error)
	DailyReport(ctx context.Context, userID string, date time.Time) (*report.DailyReport, error)
	MonthlyStats(ctx context.Context, userID string, month time.Time, hourlyRate float64) (*report.MonthlyStats, error)
	WorkDays(ctx context.Context, userID string, month time.Time) ([]report.CalendarDay, error)
	IsWorkDay(ctx context.Context, userID string, date time.Time) (bool, error)
}
