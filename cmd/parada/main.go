package main

import (
	"context"
	"fmt"
	"os"

	"github.com/alexanderramin/parada/internal/cache"
	"github.com/alexanderramin/parada/internal/cli"
	"github.com/alexanderramin/parada/internal/config"
	"github.com/alexanderramin/parada/internal/db"
	"github.com/alexanderramin/parada/internal/importer"
	"github.com/alexanderramin/parada/internal/logging"
	"github.com/alexanderramin/parada/internal/repository"
	"github.com/alexanderramin/parada/internal/service"
	"github.com/alexanderramin/parada/internal/source"
	"github.com/mattn/go-isatty"
	"go.uber.org/zap"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load(os.Getenv("PARADA_CONFIG"))
	if err != nil {
		return err
	}

	logger, err := logging.New(cfg.LogLevel, os.Getenv("PARADA_VERBOSE") != "")
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	// Open database
	database, err := db.OpenDB(cfg.DBPath)
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer database.Close()

	// Wire repositories
	snapshotRepo := repository.NewSQLiteSnapshotRepo(database)
	cacheRepo := repository.NewSQLiteCacheEntryRepo(database)
	uow := db.NewSQLiteUnitOfWork(database)

	ctx := context.Background()

	store := cache.NewStore(cacheRepo, cfg.CacheTTL, logger)
	if n, err := store.Sweep(ctx); err != nil {
		logger.Warn("sweeping schedule cache", zap.Error(err))
	} else if n > 0 {
		logger.Debug("swept schedule cache", zap.Int("removed", n))
	}
	schedules := cache.Tiered{cache.NewMemory(cache.WithTTL(cfg.CacheTTL)), store}

	rules := importer.DefaultRules()
	if cfg.RulesFile != "" {
		if rules, err = importer.LoadRulesFile(cfg.RulesFile); err != nil {
			return err
		}
	}

	// Object storage is only needed for s3:// locations.
	var objects source.ObjectStore
	if cfg.S3Region != "" {
		s3, err := source.NewS3Store(ctx, cfg.S3Region)
		if err != nil {
			return err
		}
		objects = s3
	}
	loader := source.NewLoader(cfg.FetchTimeout, objects)

	// Wire services
	observer := service.NewLogUseCaseObserver(logger)
	ingestSvc, err := service.NewIngestService(snapshotRepo, uow, loader, service.IngestOptions{
		Rules:            &rules,
		Cache:            schedules,
		ColumnTolerance:  cfg.ColumnTolerance,
		CriticalDuration: cfg.CriticalDuration,
		SnapshotKeep:     cfg.SnapshotKeep,
		Logger:           logger,
	}, observer)
	if err != nil {
		return err
	}
	statusSvc := service.NewStatusService(snapshotRepo, service.StatusOptions{
		Rules:            &rules,
		CriticalDuration: cfg.CriticalDuration,
	}, observer)

	app := &cli.App{
		Ingest:       ingestSvc,
		Status:       statusSvc,
		Snapshots:    service.NewSnapshotService(snapshotRepo, uow, loader, observer),
		CriticalPath: service.NewCriticalPathService(snapshotRepo, observer),

		Rules:  rules,
		Config: cfg,
		DB:     database,
		Logger: logger,

		Interactive: isatty.IsTerminal(os.Stdin.Fd()) || isatty.IsCygwinTerminal(os.Stdin.Fd()),
	}

	return cli.NewRootCmd(app).ExecuteContext(ctx)
}
