package commands

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"runtime"
	"strings"
	"sync/atomic"

	"golang.org/x/sync/errgroup"

	"github.com/customfm/fmlint/internal/cache"
	"github.com/customfm/fmlint/internal/cli/config"
	"github.com/customfm/fmlint/internal/discover"
	"github.com/customfm/fmlint/pkg/dialect"
	"github.com/customfm/fmlint/pkg/lint"
)

// FileResult holds the diagnostics of one linted file.
type FileResult struct {
	Path        string
	Source      string
	Diagnostics []lint.Diagnostic
	Cached      bool
}

// Runner lints files with the configured rules, in parallel and through the
// result cache when one is enabled.
type Runner struct {
	analyzer    *lint.Analyzer
	store       *cache.Store
	fingerprint string
	processes   int
	ignore      []string
	stdin       io.Reader
	logger      *slog.Logger
}

// NewRunner builds a runner from the CLI config. A cache that cannot be
// opened is logged and skipped.
func NewRunner(ctx context.Context, cfg *config.Config, stdin io.Reader, logger *slog.Logger) (*Runner, error) {
	lc, err := cfg.LintConfig()
	if err != nil {
		return nil, err
	}
	d, err := dialect.Lookup(cfg.Dialect)
	if err != nil {
		return nil, err
	}
	ignore, err := readIgnoreFile(cfg.IgnoreFile)
	if err != nil {
		return nil, err
	}

	processes := cfg.Processes
	if processes <= 0 {
		processes = runtime.NumCPU()
	}
	r := &Runner{
		analyzer:    lint.NewAnalyzer(lc, d, lint.WithLogger(logger)),
		fingerprint: runFingerprint(ctx, lc, d),
		processes:   processes,
		ignore:      ignore,
		stdin:       stdin,
		logger:      logger,
	}
	if cfg.Cache.Enabled {
		r.store = openCache(ctx, cfg.Cache.Path, logger)
	}
	return r, nil
}

// runFingerprint keys cached results by rule config, plugin versions,
// dialect and binary build.
func runFingerprint(ctx context.Context, lc *lint.Config, d *dialect.Dialect) string {
	info := GetBuildInfo(ctx)
	return strings.Join([]string{lc.Fingerprint(), d.GetName(), info.Version, info.GitCommit}, ":")
}

func openCache(ctx context.Context, path string, logger *slog.Logger) *cache.Store {
	if path == "" {
		p, err := cache.DefaultPath()
		if err != nil {
			logger.Warn("cache disabled", "error", err)
			return nil
		}
		path = p
	}
	store, err := cache.Open(ctx, path)
	if err != nil {
		logger.Warn("cache disabled", "path", path, "error", err)
		return nil
	}
	logger.Debug("using cache", "path", path)
	return store
}

// Analyzer returns the runner's analyzer.
func (r *Runner) Analyzer() *lint.Analyzer { return r.analyzer }

// Close releases the cache.
func (r *Runner) Close() error {
	if r.store == nil {
		return nil
	}
	return r.store.Close()
}

// Discover expands paths into the files to lint. No paths means the
// working directory.
func (r *Runner) Discover(paths []string) ([]string, error) {
	if len(paths) == 0 {
		paths = []string{"."}
	}
	return discover.Files(paths, discover.Options{
		IgnorePatterns: r.ignore,
		Logger:         r.logger,
	})
}

// Read returns the content of path; StdinPath reads the runner's stdin.
func (r *Runner) Read(path string) (string, error) {
	return readSource(r.stdin, path)
}

// Lint analyzes files and returns one result per file, in input order.
func (r *Runner) Lint(ctx context.Context, files []string) ([]FileResult, error) {
	var run *cache.Run
	if r.store != nil {
		var err error
		if run, err = r.store.StartRun(ctx, r.fingerprint); err != nil {
			r.logger.Warn("cache run not recorded", "error", err)
		}
	}

	results := make([]FileResult, len(files))
	var hits atomic.Int64

	eg, egctx := errgroup.WithContext(ctx)
	eg.SetLimit(r.processes)
	for i, path := range files {
		eg.Go(func() error {
			res, err := r.lintFile(egctx, path)
			if err != nil {
				return err
			}
			if res.Cached {
				hits.Add(1)
			}
			results[i] = res
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}

	if r.store != nil {
		r.finishRun(ctx, run, results, int(hits.Load()))
	}
	return results, nil
}

func (r *Runner) lintFile(ctx context.Context, path string) (FileResult, error) {
	src, err := r.Read(path)
	if err != nil {
		return FileResult{}, err
	}
	res := FileResult{Path: path, Source: src}

	var key cache.Key
	useCache := r.store != nil && path != StdinPath
	if useCache {
		key = cache.NewKey(path, src, r.fingerprint)
		diags, ok, err := r.store.Get(ctx, key)
		switch {
		case err != nil:
			r.logger.Warn("cache read failed", "path", path, "error", err)
		case ok:
			res.Diagnostics = diags
			res.Cached = true
			return res, nil
		}
	}

	diags, err := r.analyzer.AnalyzeSource(ctx, path, src)
	if err != nil {
		return FileResult{}, fmt.Errorf("%s: %w", path, err)
	}
	res.Diagnostics = diags
	r.logger.Debug("linted file", "path", path, "violations", len(diags))

	if useCache {
		if err := r.store.Put(ctx, key, diags); err != nil {
			r.logger.Warn("cache write failed", "path", path, "error", err)
		}
	}
	return res, nil
}

func (r *Runner) finishRun(ctx context.Context, run *cache.Run, results []FileResult, hits int) {
	if run != nil {
		run.Files = len(results)
		run.CacheHits = hits
		for _, res := range results {
			run.Violations += len(res.Diagnostics)
		}
		if err := r.store.CompleteRun(ctx, run); err != nil {
			r.logger.Warn("cache run not recorded", "error", err)
		}
	}
	pruned, err := r.store.Prune(ctx, r.fingerprint)
	if err != nil {
		r.logger.Warn("cache prune failed", "error", err)
		return
	}
	if pruned > 0 {
		r.logger.Debug("pruned stale cache entries", "count", pruned)
	}
}
