package cache

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/alexanderramin/parada/internal/domain"
	"github.com/alexanderramin/parada/internal/repository"
	"github.com/alexanderramin/parada/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func TestMemory_ExpiresAfterTTL(t *testing.T) {
	clock := &fakeClock{now: time.Date(2025, 8, 17, 12, 0, 0, 0, time.UTC)}
	m := NewMemory(WithClock(clock.Now))
	ctx := context.Background()
	s := testutil.NewTestSchedule(domain.FormatPFUS3)

	m.Set(ctx, "h", s)
	got, ok := m.Get(ctx, "h")
	require.True(t, ok)
	assert.Same(t, s, got)

	clock.Advance(DefaultTTL - time.Second)
	_, ok = m.Get(ctx, "h")
	assert.True(t, ok)

	clock.Advance(time.Second)
	_, ok = m.Get(ctx, "h")
	assert.False(t, ok)
}

func TestMemory_EvictsOldest(t *testing.T) {
	clock := &fakeClock{now: time.Date(2025, 8, 17, 12, 0, 0, 0, time.UTC)}
	m := NewMemory(WithClock(clock.Now), WithMaxSize(2))
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		m.Set(ctx, fmt.Sprintf("h%d", i), testutil.NewTestSchedule(domain.FormatPFUS3))
		clock.Advance(time.Second)
	}
	assert.Equal(t, 2, m.Len())
	_, ok := m.Get(ctx, "h0")
	assert.False(t, ok)
	_, ok = m.Get(ctx, "h2")
	assert.True(t, ok)

	m.Invalidate()
	assert.Zero(t, m.Len())
}

func TestMemory_ConcurrentAccess(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()
	s := testutil.NewTestSchedule(domain.FormatPFUS3)

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			key := fmt.Sprintf("h%d", i%4)
			m.Set(ctx, key, s)
			m.Get(ctx, key)
		}(i)
	}
	wg.Wait()
	assert.Equal(t, 4, m.Len())
}

func TestStore_RoundTrip(t *testing.T) {
	repo := repository.NewSQLiteCacheEntryRepo(testutil.NewTestDB(t))
	store := NewStore(repo, time.Minute, nil)
	ctx := context.Background()

	_, ok := store.Get(ctx, "h")
	assert.False(t, ok)

	store.Set(ctx, "h", testutil.NewTestSchedule(domain.FormatPreparation, testutil.WithTitle("Preparação")))
	got, ok := store.Get(ctx, "h")
	require.True(t, ok)
	assert.Equal(t, "Preparação", got.Metadata.Title)

	store.now = func() time.Time { return time.Now().Add(time.Hour) }
	_, ok = store.Get(ctx, "h")
	assert.False(t, ok)
	n, err := store.Sweep(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestTiered_BackfillsFasterTier(t *testing.T) {
	fast := NewMemory()
	slow := NewMemory()
	tiers := Tiered{fast, slow}
	ctx := context.Background()
	s := testutil.NewTestSchedule(domain.FormatPFUS3)

	slow.Set(ctx, "h", s)
	got, ok := tiers.Get(ctx, "h")
	require.True(t, ok)
	assert.Same(t, s, got)
	assert.Equal(t, 1, fast.Len())

	tiers.Set(ctx, "k", s)
	assert.Equal(t, 2, fast.Len())
	assert.Equal(t, 2, slow.Len())

	_, ok = tiers.Get(ctx, "missing")
	assert.False(t, ok)
}
