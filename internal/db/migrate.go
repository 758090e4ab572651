package db

import (
	"database/sql"
	"fmt"
	"strings"
)

// Migrate runs all schema migrations. Every statement is safe to re-run.
func Migrate(db *sql.DB) error {
	for i, stmt := range migrations {
		if _, err := db.Exec(stmt); err != nil {
			// ALTER TABLE ADD COLUMN has no IF NOT EXISTS form.
			if strings.Contains(err.Error(), "duplicate column name") {
				continue
			}
			return fmt.Errorf("migration %d: %w", i, err)
		}
	}
	return nil
}

var migrations = []string{
	`CREATE TABLE IF NOT EXISTS work_sessions (
		id                     TEXT PRIMARY KEY,
		user_id                TEXT NOT NULL,
		start_time             TEXT NOT NULL,
		end_time               TEXT,
		on_break               INTEGER NOT NULL DEFAULT 0,
		on_short_break         INTEGER NOT NULL DEFAULT 0,
		break_start_time       TEXT,
		break_end_time         TEXT,
		short_break_start_time TEXT,
		short_break_end_time   TEXT,
		break_duration         INTEGER NOT NULL DEFAULT 0 CHECK(break_duration >= 0),
		short_break_duration   INTEGER NOT NULL DEFAULT 0 CHECK(short_break_duration >= 0),
		total_break_time_used  INTEGER NOT NULL DEFAULT 0,
		created_at             TEXT NOT NULL,
		updated_at             TEXT NOT NULL,
		CHECK(NOT (on_break = 1 AND on_short_break = 1)),
		CHECK(total_break_time_used = break_duration + short_break_duration)
	)`,

	`CREATE INDEX IF NOT EXISTS idx_work_sessions_user_start ON work_sessions(user_id, start_time)`,

	// At most one open session per worker.
	`CREATE UNIQUE INDEX IF NOT EXISTS idx_work_sessions_open ON work_sessions(user_id) WHERE end_time IS NULL`,

	`CREATE TABLE IF NOT EXISTS travel_orders (
		id            TEXT PRIMARY KEY,
		user_id       TEXT NOT NULL,
		start_time    TEXT NOT NULL,
		end_time      TEXT,
		start_lat     REAL NOT NULL,
		start_lng     REAL NOT NULL,
		start_address TEXT NOT NULL DEFAULT '',
		end_lat       REAL,
		end_lng       REAL,
		end_address   TEXT,
		distance_km   REAL NOT NULL DEFAULT 0,
		destination   TEXT NOT NULL DEFAULT '',
		purpose       TEXT NOT NULL DEFAULT '',
		created_at    TEXT NOT NULL,
		updated_at    TEXT NOT NULL
	)`,

	`ALTER TABLE travel_orders ADD COLUMN project_id TEXT`,

	`CREATE INDEX IF NOT EXISTS idx_travel_orders_user_start ON travel_orders(user_id, start_time)`,

	`CREATE UNIQUE INDEX IF NOT EXISTS idx_travel_orders_open ON travel_orders(user_id) WHERE end_time IS NULL`,

	`CREATE TABLE IF NOT EXISTS work_days (
		user_id    TEXT NOT NULL,
		date       TEXT NOT NULL,
		created_at TEXT NOT NULL,
		PRIMARY KEY (user_id, date)
	)`,
}
