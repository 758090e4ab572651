package repository

import (
	"context"
	"testing"

	"github.com/alexanderramin/shiftlog/internal/domain"
	"github.com/alexanderramin/shiftlog/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWorkDayRepo_MarkIsIdempotent(t *testing.T) {
	repo := NewSQLiteWorkDayRepo(testutil.NewTestDB(t))
	ctx := context.Background()

	day := domain.NewWorkDay("u1", testutil.At(8, 0, 0))
	require.NoError(t, repo.Mark(ctx, day))
	require.NoError(t, repo.Mark(ctx, domain.NewWorkDay("u1", testutil.At(13, 0, 0))))

	ok, err := repo.Exists(ctx, "u1", "2025-06-16")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = repo.Exists(ctx, "u2", "2025-06-16")
	require.NoError(t, err)
	assert.False(t, ok)

	days, err := repo.ListBetween(ctx, "u1", "2025-06-01", "2025-06-30")
	require.NoError(t, err)
	assert.Len(t, days, 1)
}

func TestWorkDayRepo_ListBetween(t *testing.T) {
	repo := NewSQLiteWorkDayRepo(testutil.NewTestDB(t))
	ctx := context.Background()

	for _, d := range []string{"2025-05-31", "2025-06-02", "2025-06-30", "2025-07-01", "2025-06-10"} {
		require.NoError(t, repo.Mark(ctx, &domain.WorkDay{UserID: "u1", Date: d, CreatedAt: testutil.Day}))
	}

	days, err := repo.ListBetween(ctx, "u1", "2025-06-01", "2025-06-30")
	require.NoError(t, err)
	var dates []string
	for _, d := range days {
		dates = append(dates, d.Date)
	}
	assert.Equal(t, []string{"2025-06-02", "2025-06-10", "2025-06-30"}, dates)
}
