package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/alexanderramin/parada/internal/app"
	"github.com/alexanderramin/parada/internal/domain"
	"github.com/alexanderramin/parada/internal/repository"
)

// latestOrNil returns the newest snapshot of format, or nil when none exists.
func latestOrNil(ctx context.Context, snapshots repository.SnapshotRepo, format domain.SourceFormat) (*domain.Snapshot, error) {
	snap, err := snapshots.Latest(ctx, format)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("loading latest %s snapshot: %w", format, err)
	}
	return snap, nil
}

func noData(format domain.SourceFormat) error {
	if format == "" {
		return &app.Error{Code: app.ErrNoData, Message: "no schedule has been ingested yet"}
	}
	return &app.Error{Code: app.ErrNoData, Message: fmt.Sprintf("no %s schedule has been ingested yet", format)}
}

func nowOr(now *time.Time, clock func() time.Time) time.Time {
	if now != nil {
		return *now
	}
	return clock().UTC()
}

func formatValidationErrors(what string, errs []error) error {
	msg := fmt.Sprintf("%s failed (%d errors):", what, len(errs))
	for _, e := range errs {
		msg += "\n  - " + e.Error()
	}
	return fmt.Errorf("%s", msg)
}
