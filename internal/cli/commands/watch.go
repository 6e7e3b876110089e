package commands

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"
)

// watchDebounce is how long the watcher waits for a burst of changes to
// settle before re-linting.
const watchDebounce = 100 * time.Millisecond

func runWatch(cmd *cobra.Command, opts *LintOptions) error {
	for _, p := range opts.Paths {
		if p == StdinPath {
			return errors.New("--watch cannot read stdin")
		}
	}
	cmdCtx := NewCommandContext(cmd, opts.Format)
	runner, err := NewRunner(cmd.Context(), cmdCtx.Cfg, nil, cmdCtx.Logger)
	if err != nil {
		return err
	}
	defer func() { _ = runner.Close() }()

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	defer func() { _ = watcher.Close() }()

	roots := opts.Paths
	if len(roots) == 0 {
		roots = []string{"."}
	}
	for _, root := range roots {
		if err := watchPath(watcher, root); err != nil {
			return err
		}
	}

	ctx := cmd.Context()
	lintOnce := func() {
		out, err := lintPaths(ctx, runner, opts.Paths)
		if err != nil {
			cmdCtx.Renderer.Error(err.Error())
			return
		}
		if err := cmdCtx.Renderer.RenderLint(out); err != nil {
			cmdCtx.Logger.Error("render failed", "error", err)
		}
	}

	lintOnce()
	cmdCtx.Logger.Info("watching for changes", "paths", roots)
	return watchLoop(ctx, watcher, cmdCtx.Logger, func() {
		cmdCtx.Renderer.Println("")
		lintOnce()
	})
}

// watchPath adds a file, or a directory and its subdirectories, to the
// watcher. Hidden directories are skipped.
func watchPath(watcher *fsnotify.Watcher, root string) error {
	info, err := os.Stat(root)
	if err != nil {
		return fmt.Errorf("watch %s: %w", root, err)
	}
	if !info.IsDir() {
		return watcher.Add(root)
	}
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if path != root && strings.HasPrefix(d.Name(), ".") {
			return filepath.SkipDir
		}
		return watcher.Add(path)
	})
}

// watchLoop calls relint after each burst of .sql changes until ctx is done.
func watchLoop(ctx context.Context, watcher *fsnotify.Watcher, logger *slog.Logger, relint func()) error {
	var timer *time.Timer
	fire := make(chan struct{}, 1)
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) == 0 {
				continue
			}
			if event.Op&fsnotify.Create != 0 {
				if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
					_ = watchPath(watcher, event.Name)
					continue
				}
			}
			if !strings.EqualFold(filepath.Ext(event.Name), ".sql") {
				continue
			}
			if timer != nil {
				timer.Stop()
			}
			timer = time.AfterFunc(watchDebounce, func() {
				select {
				case fire <- struct{}{}:
				default:
				}
			})
		case <-fire:
			relint()
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Warn("watcher error", "error", err)
		}
	}
}
