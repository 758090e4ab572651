package repository

import (
	"context"
	"fmt"

	"github.com/alexanderramin/shiftlog/internal/db"
	"github.com/alexanderramin/shiftlog/internal/domain"
)

// SQLiteWorkDayRepo implements WorkDayRepo using a SQLite database.
type SQLiteWorkDayRepo struct {
	db db.DBTX
}

func NewSQLiteWorkDayRepo(db db.DBTX) *SQLiteWorkDayRepo {
	return &SQLiteWorkDayRepo{db: db}
}

func (r *SQLiteWorkDayRepo) Mark(ctx context.Context, d *domain.WorkDay) error {
	query := `INSERT OR IGNORE INTO work_days (user_id, date, created_at) VALUES (?, ?, ?)`
	if _, err := r.db.ExecContext(ctx, query, d.UserID, d.Date, formatTime(d.CreatedAt)); err != nil {
		return fmt.Errorf("marking work day: %w", err)
	}
	return nil
}

func (r *SQLiteWorkDayRepo) Exists(ctx context.Context, userID, date string) (bool, error) {
	var n int
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM work_days WHERE user_id = ? AND date = ?`, userID, date).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("checking work day: %w", err)
	}
	return n > 0, nil
}

func (r *SQLiteWorkDayRepo) ListBetween(ctx context.Context, userID, fromDate, toDate string) ([]*domain.WorkDay, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT user_id, date, created_at FROM work_days
		WHERE user_id = ? AND date >= ? AND date <= ?
		ORDER BY date`, userID, fromDate, toDate)
	if err != nil {
		return nil, fmt.Errorf("listing work days: %w", err)
	}
	defer rows.Close()

	var days []*domain.WorkDay
	for rows.Next() {
		var d domain.WorkDay
		var createdStr string
		if err := rows.Scan(&d.UserID, &d.Date, &createdStr); err != nil {
			return nil, fmt.Errorf("scanning work day: %w", err)
		}
		if d.CreatedAt, err = parseTime(createdStr, "created_at"); err != nil {
			return nil, err
		}
		days = append(days, &d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating work days: %w", err)
	}
	return days, nil
}
