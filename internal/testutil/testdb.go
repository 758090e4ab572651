package testutil

import (
	"context"
	"database/sql"
	"testing"

	"github.com/alexanderramin/shiftlog/internal/db"
)

// NewTestDB opens a migrated in-memory database, closed when the test ends.
func NewTestDB(t *testing.T) *sql.DB {
	t.Helper()
	database, err := db.OpenDB(":memory:")
	if err != nil {
		t.Fatalf("opening test database: %v", err)
	}
	t.Cleanup(func() { database.Close() })
	return database
}

// NewTestUoW creates a UnitOfWork backed by the given test database.
func NewTestUoW(database *sql.DB) db.UnitOfWork {
	return db.NewSQLiteUnitOfWork(database)
}

// CountOpen returns how many rows of table (work_sessions or travel_orders)
// are still open for the worker.
func CountOpen(t *testing.T, database *sql.DB, table, userID string) int {
	t.Helper()
	var query string
	switch table {
	case "work_sessions":
		query = `SELECT COUNT(*) FROM work_sessions WHERE user_id = ? AND end_time IS NULL`
	case "travel_orders":
		query = `SELECT COUNT(*) FROM travel_orders WHERE user_id = ? AND end_time IS NULL`
	default:
		t.Fatalf("CountOpen: unknown table %q", table)
	}
	var n int
	if err := database.QueryRowContext(context.Background(), query, userID).Scan(&n); err != nil {
		t.Fatalf("counting open %s: %v", table, err)
	}
	return n
}
