package app

import (
	"context"

	"github.com/alexanderramin/parada/internal/domain"
)

type IngestUseCase interface {
	Ingest(ctx context.Context, req IngestRequest) (*IngestResult, error)
}

type StatusUseCase interface {
	GetStatus(ctx context.Context, req StatusRequest) (*StatusResponse, error)
}

type SnapshotUseCase interface {
	List(ctx context.Context, req SnapshotListRequest) ([]*domain.Snapshot, error)
	Get(ctx context.Context, id string) (*domain.Snapshot, error)
	Latest(ctx context.Context, format domain.SourceFormat) (*domain.Snapshot, error)
	Prune(ctx context.Context, format domain.SourceFormat, keep int) (int, error)
	Export(ctx context.Context, req ExportRequest) (*ExportResult, error)
}

type CriticalPathUseCase interface {
	CriticalPath(ctx context.Context, req CriticalPathRequest) (*CriticalPathResponse, error)
}
