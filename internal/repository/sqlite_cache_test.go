package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/alexanderramin/parada/internal/domain"
	"github.com/alexanderramin/parada/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCacheEntryRepo_PutGetExpire(t *testing.T) {
	repo := NewSQLiteCacheEntryRepo(testutil.NewTestDB(t))
	ctx := context.Background()
	now := time.Date(2025, 8, 17, 12, 0, 0, 0, time.UTC)

	sched := testutil.NewTestSchedule(domain.FormatPFUS3, testutil.WithTitle("Parada 2025"))
	require.NoError(t, repo.Put(ctx, "h1", sched, now.Add(5*time.Minute)))

	got, err := repo.Get(ctx, "h1", now)
	require.NoError(t, err)
	assert.Equal(t, "Parada 2025", got.Metadata.Title)
	assert.Len(t, got.Phases, 4)

	_, err = repo.Get(ctx, "h1", now.Add(5*time.Minute))
	assert.ErrorIs(t, err, ErrNotFound, "entry expires at its deadline")

	n, err := repo.DeleteExpired(ctx, now.Add(time.Hour))
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestCacheEntryRepo_PutReplaces(t *testing.T) {
	repo := NewSQLiteCacheEntryRepo(testutil.NewTestDB(t))
	ctx := context.Background()
	now := time.Date(2025, 8, 17, 12, 0, 0, 0, time.UTC)

	require.NoError(t, repo.Put(ctx, "h1", testutil.NewTestSchedule(domain.FormatPFUS3, testutil.WithTitle("v1")), now.Add(time.Minute)))
	require.NoError(t, repo.Put(ctx, "h1", testutil.NewTestSchedule(domain.FormatPFUS3, testutil.WithTitle("v2")), now.Add(time.Hour)))

	got, err := repo.Get(ctx, "h1", now.Add(30*time.Minute))
	require.NoError(t, err)
	assert.Equal(t, "v2", got.Metadata.Title)
}

func TestCacheEntryRepo_DriverError(t *testing.T) {
	conn, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer conn.Close()

	boom := errors.New("database is locked")
	mock.ExpectQuery("SELECT payload FROM cache_entries").WillReturnError(boom)

	_, err = NewSQLiteCacheEntryRepo(conn).Get(context.Background(), "h", time.Now())
	assert.ErrorIs(t, err, boom)
	assert.NotErrorIs(t, err, ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}
