package repository

import (
	"context"
	"time"

	"github.com/alexanderramin/parada/internal/domain"
)

// SnapshotFilter narrows a snapshot listing. Zero values match everything.
type SnapshotFilter struct {
	Format domain.SourceFormat
	Limit  int
}

type SnapshotRepo interface {
	Create(ctx context.Context, s *domain.Snapshot) error
	GetByID(ctx context.Context, id string) (*domain.Snapshot, error)
	Latest(ctx context.Context, format domain.SourceFormat) (*domain.Snapshot, error)
	List(ctx context.Context, f SnapshotFilter) ([]*domain.Snapshot, error)
	Prune(ctx context.Context, format domain.SourceFormat, keep int) (int, error)
	Delete(ctx context.Context, id string) error
}

type CacheEntryRepo interface {
	Get(ctx context.Context, hash string, now time.Time) (*domain.Schedule, error)
	Put(ctx context.Context, hash string, s *domain.Schedule, expiresAt time.Time) error
	DeleteExpired(ctx context.Context, now time.Time) (int, error)
}
