package cache

import (
	"context"
	"errors"
	"time"

	"github.com/alexanderramin/parada/internal/domain"
	"github.com/alexanderramin/parada/internal/importer"
	"github.com/alexanderramin/parada/internal/repository"
	"go.uber.org/zap"
)

// Store persists cache entries through a CacheEntryRepo so repeated runs of
// the CLI skip unchanged exports. Storage errors are logged and treated as
// misses.
type Store struct {
	repo   repository.CacheEntryRepo
	ttl    time.Duration
	now    func() time.Time
	logger *zap.Logger
}

var _ importer.Cache = (*Store)(nil)

func NewStore(repo repository.CacheEntryRepo, ttl time.Duration, logger *zap.Logger) *Store {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Store{repo: repo, ttl: ttl, now: time.Now, logger: logger}
}

func (s *Store) Get(ctx context.Context, key string) (*domain.Schedule, bool) {
	sched, err := s.repo.Get(ctx, key, s.now())
	if err != nil {
		if !errors.Is(err, repository.ErrNotFound) {
			s.logger.Warn("reading schedule cache", zap.Error(err))
		}
		return nil, false
	}
	return sched, true
}

func (s *Store) Set(ctx context.Context, key string, sched *domain.Schedule) {
	if err := s.repo.Put(ctx, key, sched, s.now().Add(s.ttl)); err != nil {
		s.logger.Warn("writing schedule cache", zap.Error(err))
	}
}

// Sweep removes expired entries and returns how many were dropped.
func (s *Store) Sweep(ctx context.Context) (int, error) {
	return s.repo.DeleteExpired(ctx, s.now())
}

// Tiered checks each cache in order and back-fills the faster tiers on a hit
// from a slower one. Writes go to every tier.
type Tiered []importer.Cache

func (t Tiered) Get(ctx context.Context, key string) (*domain.Schedule, bool) {
	for i, c := range t {
		if s, ok := c.Get(ctx, key); ok {
			for _, faster := range t[:i] {
				faster.Set(ctx, key, s)
			}
			return s, true
		}
	}
	return nil, false
}

func (t Tiered) Set(ctx context.Context, key string, s *domain.Schedule) {
	for _, c := range t {
		c.Set(ctx, key, s)
	}
}
