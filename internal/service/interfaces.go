package service

import (
	"context"

	"github.com/alexanderramin/parada/internal/contract"
	"github.com/alexanderramin/parada/internal/domain"
	"github.com/alexanderramin/parada/internal/source"
)

type IngestService interface {
	Ingest(ctx context.Context, req contract.IngestRequest) (*contract.IngestResult, error)
}

type StatusService interface {
	GetStatus(ctx context.Context, req contract.StatusRequest) (*contract.StatusResponse, error)
}

type SnapshotService interface {
	List(ctx context.Context, req contract.SnapshotListRequest) ([]*domain.Snapshot, error)
	Get(ctx context.Context, id string) (*domain.Snapshot, error)
	Latest(ctx context.Context, format domain.SourceFormat) (*domain.Snapshot, error)
	Prune(ctx context.Context, format domain.SourceFormat, keep int) (int, error)
	Export(ctx context.Context, req contract.ExportRequest) (*contract.ExportResult, error)
}

type CriticalPathService interface {
	CriticalPath(ctx context.Context, req contract.CriticalPathRequest) (*contract.CriticalPathResponse, error)
}

// DocumentLoader fetches an export by location.
type DocumentLoader interface {
	Load(ctx context.Context, location string) (*source.Document, error)
}

// Publisher writes an exported document to a remote location.
type Publisher interface {
	Publish(ctx context.Context, location, contentType string, body []byte) error
}
