package service

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/alexanderramin/parada/internal/app"
	"github.com/alexanderramin/parada/internal/db"
	"github.com/alexanderramin/parada/internal/domain"
	"github.com/alexanderramin/parada/internal/repository"
)

type snapshotService struct {
	snapshots repository.SnapshotRepo
	uow       db.UnitOfWork
	publisher Publisher
	observer  UseCaseObserver
}

func NewSnapshotService(snapshots repository.SnapshotRepo, uow db.UnitOfWork, publisher Publisher, observers ...UseCaseObserver) SnapshotService {
	return &snapshotService{
		snapshots: snapshots,
		uow:       uow,
		publisher: publisher,
		observer:  useCaseObserverOrNoop(observers),
	}
}

func (s *snapshotService) List(ctx context.Context, req app.SnapshotListRequest) ([]*domain.Snapshot, error) {
	if req.Format != "" {
		if _, err := app.ParseFormat(string(req.Format)); err != nil {
			return nil, err
		}
	}
	return s.snapshots.List(ctx, repository.SnapshotFilter{Format: req.Format, Limit: req.Limit})
}

func (s *snapshotService) Get(ctx context.Context, id string) (*domain.Snapshot, error) {
	return s.snapshots.GetByID(ctx, id)
}

func (s *snapshotService) Latest(ctx context.Context, format domain.SourceFormat) (*domain.Snapshot, error) {
	if _, err := app.ParseFormat(string(format)); err != nil {
		return nil, err
	}
	snap, err := latestOrNil(ctx, s.snapshots, format)
	if err != nil {
		return nil, err
	}
	if snap == nil {
		return nil, noData(format)
	}
	return snap, nil
}

// Prune keeps the newest keep snapshots of format.
func (s *snapshotService) Prune(ctx context.Context, format domain.SourceFormat, keep int) (removed int, err error) {
	fields := map[string]any{"format": string(format), "keep": keep}
	defer observe(ctx, s.observer, "prune-snapshots", fields, &err)()

	if _, err = app.ParseFormat(string(format)); err != nil {
		return 0, err
	}
	if keep < 0 {
		return 0, &app.Error{Code: app.ErrInvalidInput, Message: fmt.Sprintf("keep must be >= 0, got %d", keep)}
	}
	err = s.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		n, err := repository.NewSQLiteSnapshotRepo(tx).Prune(ctx, format, keep)
		removed = n
		return err
	})
	fields["removed"] = removed
	return removed, err
}

// Export writes a snapshot with its full hierarchy as JSON. s3:// destinations
// go through the publisher; anything else is a local path.
func (s *snapshotService) Export(ctx context.Context, req app.ExportRequest) (res *app.ExportResult, err error) {
	fields := map[string]any{"destination": req.Destination}
	defer observe(ctx, s.observer, "export-snapshot", fields, &err)()

	if req.Destination == "" {
		return nil, &app.Error{Code: app.ErrInvalidInput, Message: "export destination is required"}
	}

	var snap *domain.Snapshot
	if req.SnapshotID != "" {
		snap, err = s.snapshots.GetByID(ctx, req.SnapshotID)
	} else {
		snap, err = s.Latest(ctx, req.Format)
	}
	if err != nil {
		return nil, err
	}
	fields["snapshot"] = snap.ID

	body, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encoding snapshot %s: %w", snap.ID, err)
	}

	if strings.HasPrefix(req.Destination, "s3://") {
		if s.publisher == nil {
			return nil, &app.Error{Code: app.ErrInvalidInput, Message: "no object store configured for " + req.Destination}
		}
		if err = s.publisher.Publish(ctx, req.Destination, "application/json", body); err != nil {
			return nil, err
		}
	} else {
		if dir := filepath.Dir(req.Destination); dir != "." {
			if err = os.MkdirAll(dir, 0o755); err != nil {
				return nil, fmt.Errorf("creating export directory: %w", err)
			}
		}
		if err = os.WriteFile(req.Destination, body, 0o644); err != nil {
			return nil, fmt.Errorf("writing export: %w", err)
		}
	}

	return &app.ExportResult{SnapshotID: snap.ID, Destination: req.Destination, Bytes: len(body)}, nil
}
