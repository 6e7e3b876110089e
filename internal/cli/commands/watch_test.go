package commands

import (
	"context"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	clitestutil "github.com/customfm/fmlint/internal/cli/testutil"
	"github.com/customfm/fmlint/internal/testutil"
)

func TestWatchLoop(t *testing.T) {
	dir := t.TempDir()
	watcher, err := fsnotify.NewWatcher()
	require.NoError(t, err)
	defer func() { _ = watcher.Close() }()
	require.NoError(t, watchPath(watcher, dir))

	ctx, cancel := context.WithCancel(context.Background())
	var relints atomic.Int32
	done := make(chan error, 1)
	go func() {
		done <- watchLoop(ctx, watcher, testutil.NewTestLogger(t), func() { relints.Add(1) })
	}()

	// Non-SQL files never trigger a relint.
	writeFile(t, filepath.Join(dir, "notes.txt"), "hello")
	time.Sleep(3 * watchDebounce)
	assert.Equal(t, int32(0), relints.Load())

	// A burst of SQL writes collapses into one relint.
	for range 3 {
		writeFile(t, filepath.Join(dir, "q.sql"), clitestutil.BlankLineSQL)
	}
	assert.Eventually(t, func() bool { return relints.Load() == 1 }, 2*time.Second, 10*time.Millisecond)
	time.Sleep(3 * watchDebounce)
	assert.Equal(t, int32(1), relints.Load())

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("watchLoop did not stop after cancel")
	}
}

func TestLintCommand_WatchRejectsStdin(t *testing.T) {
	_, _, err := cmdRun{}.execute(t, NewLintCommand(), "--watch", "-")
	assert.ErrorContains(t, err, "--watch cannot read stdin")
}

func TestWatchPath_Missing(t *testing.T) {
	watcher, err := fsnotify.NewWatcher()
	require.NoError(t, err)
	defer func() { _ = watcher.Close() }()

	assert.ErrorContains(t, watchPath(watcher, filepath.Join(t.TempDir(), "nope")), "watch ")
}
