package service

import (
	"context"
	"database/sql"
	"sync"
	"testing"
	"time"

	"github.com/alexanderramin/parada/internal/app"
	"github.com/alexanderramin/parada/internal/db"
	"github.com/alexanderramin/parada/internal/domain"
	"github.com/alexanderramin/parada/internal/repository"
	"github.com/alexanderramin/parada/internal/testutil"
	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2025, 8, 17, 12, 0, 0, 0, time.UTC)

// tickingClock advances one second per call so snapshots get distinct times.
func tickingClock() func() time.Time {
	var mu sync.Mutex
	t := testNow
	return func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		t = t.Add(time.Second)
		return t
	}
}

type env struct {
	db        *sql.DB
	snapshots *repository.SQLiteSnapshotRepo
	uow       db.UnitOfWork
}

func newEnv(t *testing.T) *env {
	t.Helper()
	database := testutil.NewTestDB(t)
	return &env{
		db:        database,
		snapshots: repository.NewSQLiteSnapshotRepo(database),
		uow:       testutil.NewTestUoW(database),
	}
}

func (e *env) ingestService(t *testing.T, opts IngestOptions, observers ...UseCaseObserver) IngestService {
	t.Helper()
	if opts.Clock == nil {
		opts.Clock = tickingClock()
	}
	svc, err := NewIngestService(e.snapshots, e.uow, nil, opts, observers...)
	require.NoError(t, err)
	return svc
}

func (e *env) ingest(t *testing.T, format domain.SourceFormat, text string) *app.IngestResult {
	t.Helper()
	res, err := e.ingestService(t, IngestOptions{}).Ingest(context.Background(), app.IngestRequest{
		Format: format,
		Name:   string(format) + ".csv",
		Data:   []byte(text),
	})
	require.NoError(t, err)
	return res
}

type recordingObserver struct {
	mu     sync.Mutex
	events []UseCaseEvent
}

func (o *recordingObserver) ObserveUseCase(_ context.Context, e UseCaseEvent) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.events = append(o.events, e)
}
