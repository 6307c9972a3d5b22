package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/alexanderramin/parada/internal/contract"
	"github.com/alexanderramin/parada/internal/domain"
	"github.com/alexanderramin/parada/internal/httpserver"
	"github.com/alexanderramin/parada/internal/watch"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

func newServeCmd(app *App) *cobra.Command {
	var addr string
	var withWatch bool

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the dashboard API over HTTP",
		RunE: func(cmd *cobra.Command, args []string) error {
			if !cmd.Flags().Changed("addr") && app.Config.HTTPAddr != "" {
				addr = app.Config.HTTPAddr
			}

			var w *watch.Watcher
			if withWatch {
				var err error
				if w, err = app.newWatcher(nil); err != nil {
					return err
				}
			}

			ctx, stop := signal.NotifyContext(cmdContext(cmd), os.Interrupt, syscall.SIGTERM)
			defer stop()

			g, ctx := errgroup.WithContext(ctx)
			srv := httpserver.New(app.services(), app.DB, app.logger())
			g.Go(func() error {
				return srv.Run(ctx, addr)
			})
			if w != nil {
				g.Go(func() error {
					return w.Run(ctx)
				})
			}

			fmt.Fprintf(cmd.ErrOrStderr(), "Serving on %s\n", addr)
			return g.Wait()
		},
	}

	cmd.Flags().StringVar(&addr, "addr", ":8080", "Listen address (default from config)")
	cmd.Flags().BoolVar(&withWatch, "watch", false, "Also re-ingest configured local sources when they change")

	return cmd
}

func newWatchCmd(app *App) *cobra.Command {
	var formatStr string
	var initial bool

	cmd := &cobra.Command{
		Use:   "watch [file...]",
		Short: "Re-ingest local exports whenever they change",
		Long: `Watch follows local export files and ingests each one again once writes
to it have settled. Without arguments the configured local sources are
watched; remote sources are skipped.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			format, err := parseFormatFlag(formatStr)
			if err != nil {
				return err
			}
			var targets []ingestTarget
			for _, a := range args {
				targets = append(targets, ingestTarget{location: a, format: format})
			}

			w, err := app.newWatcher(targets)
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmdContext(cmd), os.Interrupt, syscall.SIGTERM)
			defer stop()

			if initial {
				for _, t := range app.localTargets(targets) {
					if err := app.ingestWatched(ctx, t); err != nil {
						app.logger().Error("initial ingest failed", zap.String("path", t.location), zap.Error(err))
					}
				}
			}
			fmt.Fprintln(cmd.ErrOrStderr(), "Watching for changes, press Ctrl+C to stop")
			return w.Run(ctx)
		},
	}

	cmd.Flags().StringVar(&formatStr, "format", "auto", "Export format of the given files: preparation, pfus3 or auto")
	cmd.Flags().BoolVar(&initial, "initial", true, "Ingest every file once before watching")

	return cmd
}

// localTargets drops remote locations. With no explicit targets the
// configured sources are used.
func (a *App) localTargets(targets []ingestTarget) []ingestTarget {
	if len(targets) == 0 {
		targets = a.configuredTargets()
	}
	out := make([]ingestTarget, 0, len(targets))
	for _, t := range targets {
		if t.location == "-" || strings.Contains(t.location, "://") {
			continue
		}
		out = append(out, t)
	}
	return out
}

func (a *App) ingestWatched(ctx context.Context, t ingestTarget) error {
	res, err := a.Ingest.Ingest(ctx, contract.IngestRequest{Location: t.location, Format: t.format})
	if err != nil {
		return err
	}
	a.logger().Info("ingested",
		zap.String("path", t.location),
		zap.String("format", string(res.Snapshot.Format)),
		zap.Bool("unchanged", res.Unchanged),
		zap.Int("records", res.Snapshot.Records))
	return nil
}

func (a *App) newWatcher(targets []ingestTarget) (*watch.Watcher, error) {
	local := a.localTargets(targets)
	if len(local) == 0 {
		return nil, errors.New("nothing to watch: no local sources given or configured")
	}

	formats := make(map[string]domain.SourceFormat, len(local))
	paths := make([]string, 0, len(local))
	for _, t := range local {
		abs, err := filepath.Abs(t.location)
		if err != nil {
			return nil, fmt.Errorf("resolving %s: %w", t.location, err)
		}
		formats[abs] = t.format
		paths = append(paths, abs)
	}

	handle := func(ctx context.Context, path string) error {
		return a.ingestWatched(ctx, ingestTarget{location: path, format: formats[path]})
	}
	return watch.New(paths, a.Config.WatchDebounce, handle, a.logger())
}
