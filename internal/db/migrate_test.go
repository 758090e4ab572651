package db

import (
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := OpenDB(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func TestMigrate_Idempotent(t *testing.T) {
	db := openTestDB(t)

	require.NoError(t, Migrate(db))
	require.NoError(t, Migrate(db))
}

func TestMigrate_CreatesAllTables(t *testing.T) {
	db := openTestDB(t)

	for _, table := range []string{"work_sessions", "travel_orders", "work_days"} {
		var name string
		err := db.QueryRow(`SELECT name FROM sqlite_master WHERE type='table' AND name=?`, table).Scan(&name)
		require.NoError(t, err, "table %s should exist", table)
		assert.Equal(t, table, name)
	}
}

func TestMigrate_CreatesIndexes(t *testing.T) {
	db := openTestDB(t)

	expected := []string{
		"idx_work_sessions_user_start",
		"idx_work_sessions_open",
		"idx_travel_orders_user_start",
		"idx_travel_orders_open",
	}
	for _, idx := range expected {
		var name string
		err := db.QueryRow(`SELECT name FROM sqlite_master WHERE type='index' AND name=?`, idx).Scan(&name)
		require.NoError(t, err, "index %s should exist", idx)
	}
}

func TestMigrate_OneOpenSessionPerUser(t *testing.T) {
	db := openTestDB(t)

	insert := `INSERT INTO work_sessions (id, user_id, start_time, created_at, updated_at)
		VALUES (?, 'u1', '2025-06-16T08:00:00.000Z', '2025-06-16T08:00:00.000Z', '2025-06-16T08:00:00.000Z')`
	_, err := db.Exec(insert, "a")
	require.NoError(t, err)

	_, err = db.Exec(insert, "b")
	assert.Error(t, err, "second open session for the same user must violate the unique index")
}

func TestMigrate_RejectsBothBreakFlags(t *testing.T) {
	db := openTestDB(t)

	_, err := db.Exec(`INSERT INTO work_sessions (id, user_id, start_time, on_break, on_short_break, created_at, updated_at)
		VALUES ('a', 'u1', '2025-06-16T08:00:00.000Z', 1, 1, 'x', 'x')`)
	assert.Error(t, err)
}
