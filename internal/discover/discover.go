// Package discover finds the SQL files to lint.
//
// Directories are walked recursively. An ignore file (.sqlfluffignore or
// .fmlintignore) holds gitignore-style patterns relative to the directory
// it lives in, and applies to everything below that directory.
package discover

import (
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	ignore "github.com/sabhiram/go-gitignore"
)

// IgnoreFileNames are read in every walked directory.
var IgnoreFileNames = []string{".sqlfluffignore", ".fmlintignore"}

// DefaultExtensions are the file extensions linted when none are configured.
var DefaultExtensions = []string{".sql"}

// Options controls discovery.
type Options struct {
	// Extensions to collect, with the leading dot; DefaultExtensions when empty.
	Extensions []string
	// IgnorePatterns apply relative to each root, after ignore files.
	IgnorePatterns []string
	Logger         *slog.Logger
}

type matcher struct {
	dir string
	gi  *ignore.GitIgnore
}

func (m matcher) matches(path string, isDir bool) bool {
	rel, err := filepath.Rel(m.dir, path)
	if err != nil || strings.HasPrefix(rel, "..") {
		return false
	}
	rel = filepath.ToSlash(rel)
	if isDir {
		rel += "/"
	}
	return m.gi.MatchesPath(rel)
}

// Files returns the files to lint under paths, sorted and without
// duplicates. A path naming a file is returned as is, whatever its
// extension or ignore status. "-" stands for stdin and is passed through.
func Files(paths []string, opts Options) ([]string, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	exts := opts.Extensions
	if len(exts) == 0 {
		exts = DefaultExtensions
	}

	seen := make(map[string]bool)
	var out []string
	add := func(p string) {
		if !seen[p] {
			seen[p] = true
			out = append(out, p)
		}
	}

	for _, root := range paths {
		if root == "-" {
			add(root)
			continue
		}
		info, err := os.Stat(root)
		if err != nil {
			return nil, fmt.Errorf("discover %s: %w", root, err)
		}
		if !info.IsDir() {
			add(filepath.Clean(root))
			continue
		}
		files, err := walk(root, exts, opts.IgnorePatterns, logger)
		if err != nil {
			return nil, err
		}
		for _, f := range files {
			add(f)
		}
	}
	sort.Strings(out)
	return out, nil
}

func walk(root string, exts, patterns []string, logger *slog.Logger) ([]string, error) {
	root = filepath.Clean(root)
	var matchers []matcher
	if len(patterns) > 0 {
		matchers = append(matchers, matcher{dir: root, gi: ignore.CompileIgnoreLines(patterns...)})
	}

	var files []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if path != root && (d.Name() == ".git" || ignored(matchers, path, true)) {
				logger.Debug("skipping ignored directory", "path", path)
				return filepath.SkipDir
			}
			found, err := loadIgnoreFiles(path)
			if err != nil {
				return err
			}
			matchers = append(matchers, found...)
			return nil
		}
		if !hasExt(path, exts) {
			return nil
		}
		if ignored(matchers, path, false) {
			logger.Debug("skipping ignored file", "path", path)
			return nil
		}
		files = append(files, path)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("discover %s: %w", root, err)
	}
	return files, nil
}

func loadIgnoreFiles(dir string) ([]matcher, error) {
	var out []matcher
	for _, name := range IgnoreFileNames {
		path := filepath.Join(dir, name)
		if _, err := os.Stat(path); err != nil {
			continue
		}
		gi, err := ignore.CompileIgnoreFile(path)
		if err != nil {
			return nil, fmt.Errorf("read ignore file %s: %w", path, err)
		}
		out = append(out, matcher{dir: dir, gi: gi})
	}
	return out, nil
}

func ignored(matchers []matcher, path string, isDir bool) bool {
	for _, m := range matchers {
		if m.matches(path, isDir) {
			return true
		}
	}
	return false
}

func hasExt(path string, exts []string) bool {
	ext := filepath.Ext(path)
	for _, e := range exts {
		if strings.EqualFold(ext, e) {
			return true
		}
	}
	return false
}
