package service

import (
	"context"
	"fmt"
	"time"

	"github.com/alexanderramin/parada/internal/app"
	"github.com/alexanderramin/parada/internal/db"
	"github.com/alexanderramin/parada/internal/domain"
	"github.com/alexanderramin/parada/internal/importer"
	"github.com/alexanderramin/parada/internal/repository"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

// IngestOptions tunes the pipelines an ingest service builds. Zero values
// fall back to the importer defaults.
type IngestOptions struct {
	Rules            *importer.RuleSet
	Cache            importer.Cache
	ColumnTolerance  float64
	CriticalDuration float64
	// SnapshotKeep bounds stored snapshots per format; zero keeps all.
	SnapshotKeep int
	Clock        func() time.Time
	Logger       *zap.Logger
}

type ingestService struct {
	snapshots repository.SnapshotRepo
	uow       db.UnitOfWork
	loader    DocumentLoader
	pipelines map[domain.SourceFormat]*importer.Pipeline
	keep      int
	now       func() time.Time
	group     singleflight.Group
	logger    *zap.Logger
	observer  UseCaseObserver
}

func NewIngestService(
	snapshots repository.SnapshotRepo,
	uow db.UnitOfWork,
	loader DocumentLoader,
	opts IngestOptions,
	observers ...UseCaseObserver,
) (IngestService, error) {
	rules := importer.DefaultRules()
	if opts.Rules != nil {
		rules = *opts.Rules
	}
	if errs := rules.Validate(); len(errs) > 0 {
		return nil, formatValidationErrors("rules validation", errs)
	}
	if opts.Clock == nil {
		opts.Clock = time.Now
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}

	pipeOpts := []importer.Option{
		importer.WithRules(rules),
		importer.WithClock(opts.Clock),
		importer.WithLogger(opts.Logger.Named("importer")),
	}
	if opts.Cache != nil {
		pipeOpts = append(pipeOpts, importer.WithCache(opts.Cache))
	}
	if opts.ColumnTolerance > 0 {
		pipeOpts = append(pipeOpts, importer.WithColumnTolerance(opts.ColumnTolerance))
	}
	if opts.CriticalDuration > 0 {
		pipeOpts = append(pipeOpts, importer.WithCriticalDuration(opts.CriticalDuration))
	}

	pipelines := make(map[domain.SourceFormat]*importer.Pipeline, 2)
	for _, f := range []domain.SourceFormat{domain.FormatPreparation, domain.FormatPFUS3} {
		p, err := importer.NewPipeline(f, pipeOpts...)
		if err != nil {
			return nil, fmt.Errorf("building %s pipeline: %w", f, err)
		}
		pipelines[f] = p
	}

	return &ingestService{
		snapshots: snapshots,
		uow:       uow,
		loader:    loader,
		pipelines: pipelines,
		keep:      opts.SnapshotKeep,
		now:       opts.Clock,
		logger:    opts.Logger,
		observer:  useCaseObserverOrNoop(observers),
	}, nil
}

func (s *ingestService) Ingest(ctx context.Context, req app.IngestRequest) (result *app.IngestResult, err error) {
	fields := map[string]any{"location": req.Location}
	defer observe(ctx, s.observer, "ingest", fields, &err)()

	data, name := req.Data, req.Name
	if len(data) == 0 && req.Location != "" {
		if s.loader == nil {
			return nil, &app.Error{Code: app.ErrInvalidInput, Message: "no loader configured for " + req.Location}
		}
		doc, loadErr := s.loader.Load(ctx, req.Location)
		if loadErr != nil {
			return nil, loadErr
		}
		data = doc.Data
		if name == "" {
			name = doc.Name
		}
	}
	if len(data) == 0 {
		return nil, &app.Error{Code: app.ErrEmptyInput, Message: "schedule export is empty"}
	}

	format := req.Format
	if format == "" {
		format, err = importer.DetectFormat(importer.DecodeText(data), name)
		if err != nil {
			return nil, err
		}
	} else if _, err = app.ParseFormat(string(format)); err != nil {
		return nil, err
	}
	fields["format"] = string(format)

	src := domain.CoalesceStr(req.Location, name, "stdin")
	key := fmt.Sprintf("%s:%t:%s", format, req.DryRun, importer.ContentHash(format, string(data)))
	// The shared run outlives any single caller; a caller that gives up
	// returns its own ctx error and leaves the others waiting.
	shared := context.WithoutCancel(ctx)
	ch := s.group.DoChan(key, func() (any, error) {
		return s.ingest(shared, format, src, data, req.DryRun)
	})
	var r singleflight.Result
	select {
	case r = <-ch:
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	if r.Err != nil {
		return nil, r.Err
	}

	res := *r.Val.(*app.IngestResult)
	res.Deduplicated = r.Shared
	fields["records"] = res.Snapshot.Records
	fields["cached"] = res.Cached
	fields["unchanged"] = res.Unchanged
	return &res, nil
}

func (s *ingestService) ingest(ctx context.Context, format domain.SourceFormat, src string, data []byte, dryRun bool) (*app.IngestResult, error) {
	pipeline := s.pipelines[format]
	out, err := pipeline.Process(ctx, data)
	if err != nil {
		return nil, fmt.Errorf("ingesting %s export: %w", format, err)
	}

	snap := domain.NewSnapshot(src, out.Schedule)
	result := &app.IngestResult{Snapshot: snap, Report: out.Report, Cached: out.Cached}
	if dryRun {
		return result, nil
	}

	latest, err := latestOrNil(ctx, s.snapshots, format)
	if err != nil {
		return nil, err
	}
	if latest != nil && latest.ContentHash == snap.ContentHash {
		result.Snapshot = latest
		result.Unchanged = true
		return result, nil
	}

	snap.ID = uuid.New().String()
	snap.CreatedAt = s.now().UTC()
	err = s.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		txSnapshots := repository.NewSQLiteSnapshotRepo(tx)
		if err := txSnapshots.Create(ctx, snap); err != nil {
			return err
		}
		if s.keep <= 0 {
			return nil
		}
		pruned, err := txSnapshots.Prune(ctx, format, s.keep)
		if err != nil {
			return err
		}
		result.Pruned = pruned
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("storing %s snapshot: %w", format, err)
	}

	s.logger.Info("ingested schedule",
		zap.String("format", string(format)),
		zap.String("snapshot", snap.ID),
		zap.Int("records", snap.Records),
		zap.Int("warnings", snap.Warnings),
		zap.Bool("cached", out.Cached))
	return result, nil
}
