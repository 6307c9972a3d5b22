package watch

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func startWatcher(t *testing.T, w *Watcher) (cancel func()) {
	t.Helper()
	ctx, stop := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()

	select {
	case <-w.Ready():
	case err := <-done:
		stop()
		t.Fatalf("watcher exited early: %v", err)
	case <-time.After(5 * time.Second):
		stop()
		t.Fatal("watcher never became ready")
	}
	return func() {
		stop()
		require.NoError(t, <-done)
	}
}

func TestWatcher_DebouncesBurstOfWrites(t *testing.T) {
	defer goleak.VerifyNone(t)

	dir := t.TempDir()
	path := filepath.Join(dir, "pfus3.csv")
	require.NoError(t, os.WriteFile(path, []byte("v0"), 0o644))

	var calls atomic.Int32
	var seen atomic.Value
	w, err := New([]string{path}, 100*time.Millisecond, func(_ context.Context, p string) error {
		calls.Add(1)
		seen.Store(p)
		return nil
	}, nil)
	require.NoError(t, err)
	stop := startWatcher(t, w)

	for _, v := range []string{"v1", "v2", "v3"} {
		require.NoError(t, os.WriteFile(path, []byte(v), 0o644))
	}

	require.Eventually(t, func() bool { return calls.Load() >= 1 }, 5*time.Second, 20*time.Millisecond)
	time.Sleep(300 * time.Millisecond)
	stop()

	assert.Equal(t, int32(1), calls.Load())
	abs, _ := filepath.Abs(path)
	assert.Equal(t, abs, seen.Load())
}

func TestWatcher_IgnoresOtherFiles(t *testing.T) {
	defer goleak.VerifyNone(t)

	dir := t.TempDir()
	path := filepath.Join(dir, "preparacao.csv")
	require.NoError(t, os.WriteFile(path, []byte("v0"), 0o644))

	var calls atomic.Int32
	w, err := New([]string{path}, 20*time.Millisecond, func(context.Context, string) error {
		calls.Add(1)
		return nil
	}, nil)
	require.NoError(t, err)
	stop := startWatcher(t, w)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0o644))
	time.Sleep(200 * time.Millisecond)
	stop()

	assert.Zero(t, calls.Load())
}

func TestWatcher_HandlerErrorKeepsWatching(t *testing.T) {
	defer goleak.VerifyNone(t)

	dir := t.TempDir()
	path := filepath.Join(dir, "pfus3.csv")
	require.NoError(t, os.WriteFile(path, []byte("v0"), 0o644))

	var calls atomic.Int32
	w, err := New([]string{path}, 20*time.Millisecond, func(context.Context, string) error {
		calls.Add(1)
		return errors.New("bad export")
	}, nil)
	require.NoError(t, err)
	stop := startWatcher(t, w)

	require.NoError(t, os.WriteFile(path, []byte("v1"), 0o644))
	require.Eventually(t, func() bool { return calls.Load() == 1 }, 5*time.Second, 10*time.Millisecond)
	require.NoError(t, os.WriteFile(path, []byte("v2"), 0o644))
	require.Eventually(t, func() bool { return calls.Load() == 2 }, 5*time.Second, 10*time.Millisecond)
	stop()
}

func TestNew_RejectsBadArguments(t *testing.T) {
	_, err := New(nil, time.Second, func(context.Context, string) error { return nil }, nil)
	assert.Error(t, err)
	_, err = New([]string{"a.csv"}, time.Second, nil, nil)
	assert.Error(t, err)
}
