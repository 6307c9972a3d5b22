package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/alexanderramin/parada/internal/domain"
	"github.com/alexanderramin/parada/internal/testutil"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newSnapshot(format domain.SourceFormat, created time.Time, opts ...testutil.ScheduleOption) *domain.Snapshot {
	s := domain.NewSnapshot("file:test.csv", testutil.NewTestSchedule(format, opts...))
	s.ID = uuid.New().String()
	s.CreatedAt = created
	return s
}

func TestSnapshotRepo_CreateAndGetByID(t *testing.T) {
	repo := NewSQLiteSnapshotRepo(testutil.NewTestDB(t))
	ctx := context.Background()

	snap := newSnapshot(domain.FormatPFUS3, time.Date(2025, 8, 17, 9, 30, 0, 0, time.UTC),
		testutil.WithTitle("Cronograma Operacional PFUS3"),
		testutil.WithPhaseCounts(domain.PhaseShutdown, 4, 1),
		testutil.WithAsset(domain.PhaseShutdown, domain.Asset{ID: "5", Name: "Forno", Type: domain.AssetKiln, Progress: 40}),
	)
	require.NoError(t, repo.Create(ctx, snap))

	got, err := repo.GetByID(ctx, snap.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.FormatPFUS3, got.Format)
	assert.Equal(t, "Cronograma Operacional PFUS3", got.Title)
	assert.Equal(t, 4, got.Records)
	assert.True(t, snap.CreatedAt.Equal(got.CreatedAt))
	require.NotNil(t, got.Schedule)
	shutdown := got.Schedule.Phase(domain.PhaseShutdown)
	require.NotNil(t, shutdown)
	assert.Equal(t, 1, shutdown.Completed)
	require.Len(t, shutdown.Assets, 1)
	assert.Equal(t, domain.AssetKiln, shutdown.Assets[0].Type)
}

func TestSnapshotRepo_GetByID_NotFound(t *testing.T) {
	repo := NewSQLiteSnapshotRepo(testutil.NewTestDB(t))

	_, err := repo.GetByID(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSnapshotRepo_CreateRequiresSchedule(t *testing.T) {
	repo := NewSQLiteSnapshotRepo(testutil.NewTestDB(t))

	err := repo.Create(context.Background(), &domain.Snapshot{ID: "x", Format: domain.FormatPFUS3})
	assert.ErrorContains(t, err, "schedule is required")
}

func TestSnapshotRepo_LatestPerFormat(t *testing.T) {
	repo := NewSQLiteSnapshotRepo(testutil.NewTestDB(t))
	ctx := context.Background()
	base := time.Date(2025, 8, 17, 0, 0, 0, 0, time.UTC)

	older := newSnapshot(domain.FormatPFUS3, base)
	newer := newSnapshot(domain.FormatPFUS3, base.Add(time.Hour))
	prep := newSnapshot(domain.FormatPreparation, base.Add(2*time.Hour))
	for _, s := range []*domain.Snapshot{older, newer, prep} {
		require.NoError(t, repo.Create(ctx, s))
	}

	got, err := repo.Latest(ctx, domain.FormatPFUS3)
	require.NoError(t, err)
	assert.Equal(t, newer.ID, got.ID)

	got, err = repo.Latest(ctx, domain.FormatPreparation)
	require.NoError(t, err)
	assert.Equal(t, prep.ID, got.ID)
}

func TestSnapshotRepo_LatestEmpty(t *testing.T) {
	repo := NewSQLiteSnapshotRepo(testutil.NewTestDB(t))

	_, err := repo.Latest(context.Background(), domain.FormatPreparation)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSnapshotRepo_ListAndPrune(t *testing.T) {
	repo := NewSQLiteSnapshotRepo(testutil.NewTestDB(t))
	ctx := context.Background()
	base := time.Date(2025, 8, 17, 0, 0, 0, 0, time.UTC)

	var ids []string
	for i := 0; i < 4; i++ {
		s := newSnapshot(domain.FormatPFUS3, base.Add(time.Duration(i)*time.Minute))
		require.NoError(t, repo.Create(ctx, s))
		ids = append(ids, s.ID)
	}
	require.NoError(t, repo.Create(ctx, newSnapshot(domain.FormatPreparation, base)))

	all, err := repo.List(ctx, SnapshotFilter{})
	require.NoError(t, err)
	assert.Len(t, all, 5)

	pfus3, err := repo.List(ctx, SnapshotFilter{Format: domain.FormatPFUS3, Limit: 2})
	require.NoError(t, err)
	require.Len(t, pfus3, 2)
	assert.Equal(t, ids[3], pfus3[0].ID)
	assert.Equal(t, ids[2], pfus3[1].ID)
	assert.Nil(t, pfus3[0].Schedule)

	removed, err := repo.Prune(ctx, domain.FormatPFUS3, 1)
	require.NoError(t, err)
	assert.Equal(t, 3, removed)

	remaining, err := repo.List(ctx, SnapshotFilter{Format: domain.FormatPFUS3})
	require.NoError(t, err)
	require.Len(t, remaining, 1)
	assert.Equal(t, ids[3], remaining[0].ID)

	prep, err := repo.List(ctx, SnapshotFilter{Format: domain.FormatPreparation})
	require.NoError(t, err)
	assert.Len(t, prep, 1, "prune is scoped to one format")
}

func TestSnapshotRepo_Delete(t *testing.T) {
	repo := NewSQLiteSnapshotRepo(testutil.NewTestDB(t))
	ctx := context.Background()

	s := newSnapshot(domain.FormatPFUS3, time.Now())
	require.NoError(t, repo.Create(ctx, s))
	require.NoError(t, repo.Delete(ctx, s.ID))

	assert.ErrorIs(t, repo.Delete(ctx, s.ID), ErrNotFound)
}

func TestSnapshotRepo_DriverErrors(t *testing.T) {
	conn, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer conn.Close()

	repo := NewSQLiteSnapshotRepo(conn)
	ctx := context.Background()
	boom := errors.New("disk I/O error")

	mock.ExpectExec("INSERT INTO snapshots").WillReturnError(boom)
	err = repo.Create(ctx, newSnapshot(domain.FormatPFUS3, time.Now()))
	assert.ErrorIs(t, err, boom)
	assert.ErrorContains(t, err, "inserting snapshot")

	mock.ExpectQuery("SELECT id, format").WillReturnError(boom)
	_, err = repo.List(ctx, SnapshotFilter{})
	assert.ErrorContains(t, err, "listing snapshots")

	mock.ExpectExec("DELETE FROM snapshots WHERE format").WillReturnError(boom)
	_, err = repo.Prune(ctx, domain.FormatPFUS3, 3)
	assert.ErrorContains(t, err, "pruning snapshots")

	mock.ExpectQuery("SELECT id, format").
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "format", "source", "content_hash", "title", "records", "warnings",
			"unclassified", "overall_progress", "payload", "created_at",
		}).AddRow("s1", "pfus3", "", "h", "", 0, 0, 0, 0, "{not json", "2025-08-17T00:00:00.000000Z"))
	_, err = repo.GetByID(ctx, "s1")
	assert.ErrorContains(t, err, "decoding schedule")

	assert.NoError(t, mock.ExpectationsWereMet())
}
