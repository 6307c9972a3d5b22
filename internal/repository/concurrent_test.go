package repository

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/alexanderramin/parada/internal/domain"
	"github.com/alexanderramin/parada/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// The API server and the file watcher write snapshots while readers poll the
// latest one.
func TestConcurrentAccess_ReadDuringWrite(t *testing.T) {
	repo := NewSQLiteSnapshotRepo(testutil.NewFileDB(t))
	ctx := context.Background()
	base := time.Date(2025, 8, 17, 0, 0, 0, 0, time.UTC)

	require.NoError(t, repo.Create(ctx, newSnapshot(domain.FormatPFUS3, base)))

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := 1; i <= 20; i++ {
			if err := repo.Create(ctx, newSnapshot(domain.FormatPFUS3, base.Add(time.Duration(i)*time.Minute))); err != nil {
				t.Errorf("writer: create snapshot %d: %v", i, err)
				return
			}
		}
	}()

	for r := 0; r < 5; r++ {
		wg.Add(1)
		go func(reader int) {
			defer wg.Done()
			for i := 0; i < 10; i++ {
				latest, err := repo.Latest(ctx, domain.FormatPFUS3)
				if err != nil {
					t.Errorf("reader %d: latest: %v", reader, err)
					return
				}
				if latest.Schedule == nil || latest.ID == "" {
					t.Errorf("reader %d: got a half-read snapshot", reader)
				}
			}
		}(r)
	}

	wg.Wait()

	all, err := repo.List(ctx, SnapshotFilter{Format: domain.FormatPFUS3})
	require.NoError(t, err)
	assert.Len(t, all, 21)

	latest, err := repo.Latest(ctx, domain.FormatPFUS3)
	require.NoError(t, err)
	assert.True(t, latest.CreatedAt.Equal(base.Add(20*time.Minute)))
}

func TestConcurrentAccess_WritersPerFormat(t *testing.T) {
	repo := NewSQLiteSnapshotRepo(testutil.NewFileDB(t))
	ctx := context.Background()
	base := time.Date(2025, 8, 17, 0, 0, 0, 0, time.UTC)

	var wg sync.WaitGroup
	for _, f := range []domain.SourceFormat{domain.FormatPreparation, domain.FormatPFUS3} {
		wg.Add(1)
		go func(format domain.SourceFormat) {
			defer wg.Done()
			for i := 0; i < 10; i++ {
				if err := repo.Create(ctx, newSnapshot(format, base.Add(time.Duration(i)*time.Minute))); err != nil {
					t.Errorf("%s: create %d: %v", format, i, err)
					return
				}
				if _, err := repo.Prune(ctx, format, 3); err != nil {
					t.Errorf("%s: prune %d: %v", format, i, err)
					return
				}
			}
		}(f)
	}
	wg.Wait()

	for _, f := range []domain.SourceFormat{domain.FormatPreparation, domain.FormatPFUS3} {
		snaps, err := repo.List(ctx, SnapshotFilter{Format: f})
		require.NoError(t, err)
		assert.Len(t, snaps, 3, "format %s", f)
	}
}
