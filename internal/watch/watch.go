// Package watch re-ingests local schedule exports when they change on disk.
package watch

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// Handler is called once per settled change of a watched file.
type Handler func(ctx context.Context, path string) error

// Watcher follows a fixed set of files. It watches their parent directories
// so editors and exporters that replace files by rename are still seen.
type Watcher struct {
	files    map[string]bool
	debounce time.Duration
	handle   Handler
	logger   *zap.Logger

	ready     chan struct{}
	readyOnce sync.Once
}

func New(paths []string, debounce time.Duration, handle Handler, logger *zap.Logger) (*Watcher, error) {
	if len(paths) == 0 {
		return nil, errors.New("watch: no files to watch")
	}
	if handle == nil {
		return nil, errors.New("watch: nil handler")
	}
	if debounce <= 0 {
		debounce = 500 * time.Millisecond
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	files := make(map[string]bool, len(paths))
	for _, p := range paths {
		abs, err := filepath.Abs(p)
		if err != nil {
			return nil, fmt.Errorf("watch: resolving %s: %w", p, err)
		}
		files[abs] = true
	}
	return &Watcher{
		files:    files,
		debounce: debounce,
		handle:   handle,
		logger:   logger.Named("watch"),
		ready:    make(chan struct{}),
	}, nil
}

// Ready is closed once every directory is being watched.
func (w *Watcher) Ready() <-chan struct{} {
	return w.ready
}

// Run blocks until ctx is cancelled. Handler failures are logged and do not
// stop the loop.
func (w *Watcher) Run(ctx context.Context) error {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("watch: %w", err)
	}
	defer fw.Close()

	dirs := make(map[string]bool)
	for f := range w.files {
		dir := filepath.Dir(f)
		if dirs[dir] {
			continue
		}
		if err := fw.Add(dir); err != nil {
			return fmt.Errorf("watch: adding %s: %w", dir, err)
		}
		dirs[dir] = true
		w.logger.Info("watching directory", zap.String("dir", dir))
	}
	w.readyOnce.Do(func() { close(w.ready) })

	tick := w.debounce / 4
	if tick < 10*time.Millisecond {
		tick = 10 * time.Millisecond
	}
	ticker := time.NewTicker(tick)
	defer ticker.Stop()

	pending := make(map[string]time.Time)
	for {
		select {
		case <-ctx.Done():
			return nil

		case ev, ok := <-fw.Events:
			if !ok {
				return nil
			}
			name := filepath.Clean(ev.Name)
			if !w.files[name] {
				continue
			}
			if ev.Has(fsnotify.Write) || ev.Has(fsnotify.Create) {
				pending[name] = time.Now()
			}

		case err, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn("watcher error", zap.Error(err))

		case now := <-ticker.C:
			for name, at := range pending {
				if now.Sub(at) < w.debounce {
					continue
				}
				delete(pending, name)
				w.fire(ctx, name)
			}
		}
	}
}

func (w *Watcher) fire(ctx context.Context, path string) {
	start := time.Now()
	if err := w.handle(ctx, path); err != nil {
		w.logger.Error("re-ingest failed", zap.String("path", path), zap.Error(err))
		return
	}
	w.logger.Info("re-ingested", zap.String("path", path), zap.Duration("elapsed", time.Since(start)))
}
