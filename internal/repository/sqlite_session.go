package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/alexanderramin/shiftlog/internal/db"
	"github.com/alexanderramin/shiftlog/internal/domain"
)

const sessionColumns = `id, user_id, start_time, end_time, on_break, on_short_break,
	break_start_time, break_end_time, short_break_start_time, short_break_end_time,
	break_duration, short_break_duration, total_break_time_used, created_at, updated_at`

// SQLiteSessionRepo implements SessionRepo using a SQLite database.
type SQLiteSessionRepo struct {
	db db.DBTX
}

// NewSQLiteSessionRepo creates a new SQLiteSessionRepo. Pass a *sql.Tx to
// scope it to a transaction.
func NewSQLiteSessionRepo(db db.DBTX) *SQLiteSessionRepo {
	return &SQLiteSessionRepo{db: db}
}

func (r *SQLiteSessionRepo) Create(ctx context.Context, s *domain.WorkSession) error {
	query := `INSERT INTO work_sessions (` + sessionColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	_, err := r.db.ExecContext(ctx, query,
		s.ID,
		s.UserID,
		formatTime(s.StartTime),
		nullableTimeToString(s.EndTime),
		boolToInt(s.OnBreak),
		boolToInt(s.OnShortBreak),
		nullableTimeToString(s.BreakStartTime),
		nullableTimeToString(s.BreakEndTime),
		nullableTimeToString(s.ShortBreakStartTime),
		nullableTimeToString(s.ShortBreakEndTime),
		s.BreakDuration,
		s.ShortBreakDuration,
		s.TotalBreakTimeUsed,
		formatTime(s.CreatedAt),
		formatTime(s.UpdatedAt),
	)
	if err != nil {
		return fmt.Errorf("inserting work session: %w", err)
	}
	return nil
}

func (r *SQLiteSessionRepo) GetByID(ctx context.Context, id string) (*domain.WorkSession, error) {
	query := `SELECT ` + sessionColumns + ` FROM work_sessions WHERE id = ?`
	return r.scanSession(r.db.QueryRowContext(ctx, query, id))
}

func (r *SQLiteSessionRepo) GetOpen(ctx context.Context, userID string) (*domain.WorkSession, error) {
	query := `SELECT ` + sessionColumns + ` FROM work_sessions
		WHERE user_id = ? AND end_time IS NULL
		ORDER BY start_time DESC LIMIT 1`
	return r.scanSession(r.db.QueryRowContext(ctx, query, userID))
}

func (r *SQLiteSessionRepo) Update(ctx context.Context, s *domain.WorkSession) error {
	query := `UPDATE work_sessions SET
		end_time = ?, on_break = ?, on_short_break = ?,
		break_start_time = ?, break_end_time = ?,
		short_break_start_time = ?, short_break_end_time = ?,
		break_duration = ?, short_break_duration = ?, total_break_time_used = ?,
		updated_at = ?
		WHERE id = ?`
	res, err := r.db.ExecContext(ctx, query,
		nullableTimeToString(s.EndTime),
		boolToInt(s.OnBreak),
		boolToInt(s.OnShortBreak),
		nullableTimeToString(s.BreakStartTime),
		nullableTimeToString(s.BreakEndTime),
		nullableTimeToString(s.ShortBreakStartTime),
		nullableTimeToString(s.ShortBreakEndTime),
		s.BreakDuration,
		s.ShortBreakDuration,
		s.TotalBreakTimeUsed,
		formatTime(s.UpdatedAt),
		s.ID,
	)
	if err != nil {
		return fmt.Errorf("updating work session: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("updating work session: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("work session %s: %w", s.ID, ErrNotFound)
	}
	return nil
}

func (r *SQLiteSessionRepo) ListByStartRange(ctx context.Context, userID string, from, to time.Time) ([]*domain.WorkSession, error) {
	query := `SELECT ` + sessionColumns + ` FROM work_sessions
		WHERE user_id = ? AND start_time >= ? AND start_time <= ?
		ORDER BY start_time`
	rows, err := r.db.QueryContext(ctx, query, userID, formatTime(from), formatTime(to))
	if err != nil {
		return nil, fmt.Errorf("listing work sessions by range: %w", err)
	}
	defer rows.Close()

	var sessions []*domain.WorkSession
	for rows.Next() {
		s, err := r.scanSession(rows)
		if err != nil {
			return nil, err
		}
		sessions = append(sessions, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating work sessions: %w", err)
	}
	return sessions, nil
}

// rowScanner is satisfied by both *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func (r *SQLiteSessionRepo) scanSession(row rowScanner) (*domain.WorkSession, error) {
	var s domain.WorkSession
	var startStr, createdStr, updatedStr string
	var endStr, breakStartStr, breakEndStr, shortStartStr, shortEndStr sql.NullString
	var onBreak, onShort int

	err := row.Scan(
		&s.ID, &s.UserID, &startStr, &endStr, &onBreak, &onShort,
		&breakStartStr, &breakEndStr, &shortStartStr, &shortEndStr,
		&s.BreakDuration, &s.ShortBreakDuration, &s.TotalBreakTimeUsed,
		&createdStr, &updatedStr,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("work session: %w", ErrNotFound)
		}
		return nil, fmt.Errorf("scanning work session: %w", err)
	}
	s.OnBreak = intToBool(onBreak)
	s.OnShortBreak = intToBool(onShort)

	if s.StartTime, err = parseTime(startStr, "start_time"); err != nil {
		return nil, err
	}
	if s.CreatedAt, err = parseTime(createdStr, "created_at"); err != nil {
		return nil, err
	}
	if s.UpdatedAt, err = parseTime(updatedStr, "updated_at"); err != nil {
		return nil, err
	}
	nullable := []struct {
		src    sql.NullString
		dst    **time.Time
		column string
	}{
		{endStr, &s.EndTime, "end_time"},
		{breakStartStr, &s.BreakStartTime, "break_start_time"},
		{breakEndStr, &s.BreakEndTime, "break_end_time"},
		{shortStartStr, &s.ShortBreakStartTime, "short_break_start_time"},
		{shortEndStr, &s.ShortBreakEndTime, "short_break_end_time"},
	}
	for _, n := range nullable {
		if *n.dst, err = parseNullableTime(n.src, n.column); err != nil {
			return nil, err
		}
	}
	return &s, nil
}
