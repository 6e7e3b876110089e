// Package config provides configuration management for the fmlint CLI.
//
// Settings are layered with koanf. Later sources override earlier ones:
// defaults, .sqlfluff, pyproject.toml [tool.sqlfluff], .fmlint.yaml,
// FMLINT_* environment variables, then command-line flags.
package config

import (
	"runtime"

	"github.com/customfm/fmlint/pkg/lint"
)

// CacheConfig controls the lint result cache.
type CacheConfig struct {
	Enabled bool   `koanf:"enabled"`
	Path    string `koanf:"path"` // empty means the per-user cache directory
}

// Config holds all CLI configuration options.
type Config struct {
	Dialect      string                    `koanf:"dialect"`
	Templater    string                    `koanf:"templater"`
	Rules        []string                  `koanf:"rules"`
	ExcludeRules []string                  `koanf:"exclude_rules"`
	Severity     map[string]string         `koanf:"severity"`
	RuleOptions  map[string]map[string]any `koanf:"rule_options"`
	IgnoreFile   string                    `koanf:"ignore_file"`
	Processes    int                       `koanf:"processes"`
	RunawayLimit int                       `koanf:"runaway_limit"`
	OutputFormat string                    `koanf:"output"`
	Verbose      bool                      `koanf:"verbose"`
	Plugins      []string                  `koanf:"plugins"`
	Cache        CacheConfig               `koanf:"cache"`

	// ProjectRoot is the directory config files were searched in. Relative
	// plugin and cache paths resolve against it.
	ProjectRoot string `koanf:"-"`
}

// Default configuration values.
const (
	DefaultDialect    = "ansi"
	DefaultTemplater  = "raw"
	DefaultOutput     = "auto" // Auto-detect: TTY=text, non-TTY=markdown
	DefaultConfigFile = ".fmlint.yaml"
	SQLFluffFile      = ".sqlfluff"
	PyprojectFile     = "pyproject.toml"
)

// Default returns the configuration used when nothing is configured.
func Default() *Config {
	return &Config{
		Dialect:      DefaultDialect,
		Templater:    DefaultTemplater,
		Rules:        []string{"all"},
		Processes:    runtime.NumCPU(),
		RunawayLimit: lint.DefaultRunawayLimit,
		OutputFormat: DefaultOutput,
	}
}
