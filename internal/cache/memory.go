// Package cache provides the schedule caches the ingestion pipeline consults
// before re-parsing an export it has already seen.
package cache

import (
	"context"
	"sync"
	"time"

	"github.com/alexanderramin/parada/internal/domain"
	"github.com/alexanderramin/parada/internal/importer"
)

const (
	DefaultTTL     = 5 * time.Minute
	DefaultMaxSize = 64
)

type entry struct {
	schedule  *domain.Schedule
	createdAt time.Time
	expiresAt time.Time
}

// Memory is an in-process TTL cache keyed by content hash. When full, the
// oldest entry is evicted.
type Memory struct {
	mu      sync.RWMutex
	entries map[string]*entry
	maxSize int
	ttl     time.Duration
	now     func() time.Time
}

var _ importer.Cache = (*Memory)(nil)

type MemoryOption func(*Memory)

func WithTTL(ttl time.Duration) MemoryOption {
	return func(m *Memory) {
		if ttl > 0 {
			m.ttl = ttl
		}
	}
}

func WithMaxSize(n int) MemoryOption {
	return func(m *Memory) {
		if n > 0 {
			m.maxSize = n
		}
	}
}

// WithClock replaces time.Now, for tests.
func WithClock(now func() time.Time) MemoryOption {
	return func(m *Memory) { m.now = now }
}

func NewMemory(opts ...MemoryOption) *Memory {
	m := &Memory{
		entries: make(map[string]*entry),
		maxSize: DefaultMaxSize,
		ttl:     DefaultTTL,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

func (m *Memory) Get(_ context.Context, key string) (*domain.Schedule, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	e, ok := m.entries[key]
	if !ok || !m.now().Before(e.expiresAt) {
		return nil, false
	}
	return e.schedule, true
}

func (m *Memory) Set(_ context.Context, key string, s *domain.Schedule) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.entries[key]; !exists && len(m.entries) >= m.maxSize {
		m.evictOldest()
	}
	now := m.now()
	m.entries[key] = &entry{schedule: s, createdAt: now, expiresAt: now.Add(m.ttl)}
}

// Invalidate drops every entry.
func (m *Memory) Invalidate() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries = make(map[string]*entry)
}

func (m *Memory) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.entries)
}

func (m *Memory) evictOldest() {
	var oldestKey string
	var oldest time.Time
	for key, e := range m.entries {
		if oldestKey == "" || e.createdAt.Before(oldest) {
			oldestKey, oldest = key, e.createdAt
		}
	}
	if oldestKey != "" {
		delete(m.entries, oldestKey)
	}
}
