package config

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/spf13/pflag"
	"gopkg.in/ini.v1"

	"github.com/customfm/fmlint/pkg/lint"
)

// loggerKey is used to store logger in context.
// This key is shared with root.go via both using the same type.
type loggerKey struct{}

// configKey is used to store the loaded config in context.
type configKey struct{}

// maxUpwardSearchLevels limits how far up the directory tree to search for config files.
const maxUpwardSearchLevels = 10

// Package-level koanf instance and config file tracking
var (
	k               = koanf.New(".")
	configFilesUsed []string
)

// projectMarkers are the files whose presence marks a project root.
var projectMarkers = []string{DefaultConfigFile, ".fmlint.yml", SQLFluffFile, PyprojectFile}

// configExistsIn checks if a config file exists in the directory.
func configExistsIn(dir string) bool {
	for _, name := range projectMarkers {
		if _, err := os.Stat(filepath.Join(dir, name)); err == nil {
			return true
		}
	}
	return false
}

// findProjectRootUpward searches upward from startDir for a config file.
// Returns empty string if not found within maxUpwardSearchLevels.
func findProjectRootUpward(startDir string) string {
	dir := startDir
	for i := 0; i < maxUpwardSearchLevels; i++ {
		if configExistsIn(dir) {
			return dir
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			// Reached filesystem root
			break
		}
		dir = parent
	}
	return ""
}

// inferProjectRoot picks the directory config files are read from:
// the explicit config file's directory, else the nearest ancestor of the
// working directory holding a config file, else the working directory.
func inferProjectRoot(cfgFile string) string {
	if cfgFile != "" {
		if abs, err := filepath.Abs(cfgFile); err == nil {
			return filepath.Dir(abs)
		}
		return filepath.Dir(cfgFile)
	}
	cwd, err := os.Getwd()
	if err != nil || cwd == "" {
		return "."
	}
	if root := findProjectRootUpward(cwd); root != "" {
		return root
	}
	return cwd
}

// resolvePathRelativeTo resolves a path relative to baseDir if it's not absolute.
// Returns the path unchanged if it's empty or already absolute.
func resolvePathRelativeTo(path, baseDir string) string {
	if path == "" || filepath.IsAbs(path) || path == ":memory:" {
		return path
	}
	return filepath.Join(baseDir, path)
}

// ResetConfig resets the koanf instance. Used for testing.
func ResetConfig() {
	k = koanf.New(".")
	configFilesUsed = nil
}

// LoadConfig loads configuration from config files, environment variables
// and flags.
// Precedence (highest to lowest): flags > env vars > .fmlint.yaml >
// pyproject.toml > .sqlfluff > defaults
//
// An explicit cfgFile replaces the project file of its kind: .toml files are
// read as pyproject.toml, .yaml/.yml as .fmlint.yaml, anything else as INI.
func LoadConfig(cfgFile string, flags *pflag.FlagSet) (*Config, error) {
	// Reset koanf for fresh load
	k = koanf.New(".")
	configFilesUsed = nil

	projectRoot := inferProjectRoot(cfgFile)

	// 1. Load defaults
	if err := k.Load(confmap.Provider(map[string]interface{}{
		"dialect":       DefaultDialect,
		"templater":     DefaultTemplater,
		"rules":         []string{"all"},
		"processes":     runtime.NumCPU(),
		"runaway_limit": lint.DefaultRunawayLimit,
		"output":        DefaultOutput,
		"verbose":       false,
		"cache.enabled": false,
	}, "."), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	sqlfluffPath := filepath.Join(projectRoot, SQLFluffFile)
	pyprojectPath := filepath.Join(projectRoot, PyprojectFile)
	yamlPath := findYAMLConfig(projectRoot)
	switch ext := strings.ToLower(filepath.Ext(cfgFile)); {
	case cfgFile == "":
	case ext == ".toml":
		pyprojectPath = cfgFile
	case ext == ".yaml" || ext == ".yml":
		yamlPath = cfgFile
	default:
		sqlfluffPath = cfgFile
	}

	// 2. .sqlfluff (INI)
	if err := loadSQLFluffFile(sqlfluffPath, sqlfluffPath == cfgFile); err != nil {
		return nil, err
	}

	// 3. pyproject.toml [tool.sqlfluff]
	if err := loadPyprojectFile(pyprojectPath, pyprojectPath == cfgFile); err != nil {
		return nil, err
	}

	// 4. .fmlint.yaml
	if yamlPath != "" {
		if _, err := os.Stat(yamlPath); err == nil || yamlPath == cfgFile {
			if err := k.Load(file.Provider(yamlPath), yaml.Parser()); err != nil {
				return nil, fmt.Errorf("error reading config file %s: %w", yamlPath, err)
			}
			configFilesUsed = append(configFilesUsed, yamlPath)
		}
	}

	// 5. Load environment variables (FMLINT_ prefix)
	// Transform: FMLINT_EXCLUDE_RULES -> exclude_rules, FMLINT_CACHE_PATH -> cache.path
	if err := k.Load(env.Provider("FMLINT_", ".", envKey), nil); err != nil {
		return nil, fmt.Errorf("failed to load env vars: %w", err)
	}

	// 6. Load flags (highest priority - overrides env vars and config files)
	if flags != nil {
		if err := k.Load(posflag.ProviderWithFlag(flags, ".", k, func(f *pflag.Flag) (string, interface{}) {
			// Only load flags that were explicitly set
			if !f.Changed {
				return "", nil
			}
			key := flagKey(f.Name)
			if key == "" {
				return "", nil
			}
			return key, posflag.FlagVal(flags, f)
		}), nil); err != nil {
			return nil, fmt.Errorf("failed to load flags: %w", err)
		}
	}

	// 7. Unmarshal into Config struct
	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}
	cfg.Rules = splitList(cfg.Rules)
	cfg.ExcludeRules = splitList(cfg.ExcludeRules)
	cfg.Plugins = splitList(cfg.Plugins)

	// 8. Resolve relative paths against the project root
	cfg.ProjectRoot = projectRoot
	for i, p := range cfg.Plugins {
		cfg.Plugins[i] = resolvePathRelativeTo(p, projectRoot)
	}
	cfg.IgnoreFile = resolvePathRelativeTo(cfg.IgnoreFile, projectRoot)
	cfg.Cache.Path = resolvePathRelativeTo(cfg.Cache.Path, projectRoot)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func findYAMLConfig(dir string) string {
	for _, name := range []string{DefaultConfigFile, ".fmlint.yml"} {
		candidate := filepath.Join(dir, name)
		if _, err := os.Stat(candidate); err == nil {
			return candidate
		}
	}
	return ""
}

// envKey maps FMLINT_* variables to config keys.
func envKey(s string) string {
	key := strings.ToLower(strings.TrimPrefix(s, "FMLINT_"))
	if rest, ok := strings.CutPrefix(key, "cache_"); ok {
		return "cache." + rest
	}
	return key
}

// flagKey maps a flag name to its config key. Flags without a config key
// map to "".
func flagKey(name string) string {
	switch name {
	case "config":
		return ""
	case "plugin":
		return "plugins"
	case "cache":
		return "cache.enabled"
	case "cache-path":
		return "cache.path"
	}
	// Transform kebab-case to snake_case for config keys
	return strings.ReplaceAll(name, "-", "_")
}

// splitList flattens comma-separated entries, dropping empty ones.
func splitList(in []string) []string {
	if in == nil {
		return nil
	}
	out := make([]string, 0, len(in))
	for _, item := range in {
		for _, part := range strings.Split(item, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}

// loadSQLFluffFile reads an INI file in .sqlfluff layout: core settings in
// [sqlfluff], per-rule settings in [sqlfluff:rules:<ID>].
func loadSQLFluffFile(path string, required bool) error {
	if _, err := os.Stat(path); err != nil {
		if required {
			return fmt.Errorf("error reading config file %s: %w", path, err)
		}
		return nil
	}
	f, err := ini.Load(path)
	if err != nil {
		return fmt.Errorf("error reading config file %s: %w", path, err)
	}

	core := make(map[string]any)
	rules := make(map[string]any)
	for _, sec := range f.Sections() {
		name := sec.Name()
		switch {
		case name == "sqlfluff":
			for _, key := range sec.Keys() {
				core[key.Name()] = key.String()
			}
		case strings.HasPrefix(name, "sqlfluff:rules:"):
			opts := make(map[string]any)
			for _, key := range sec.Keys() {
				opts[key.Name()] = key.String()
			}
			rules[strings.TrimPrefix(name, "sqlfluff:rules:")] = opts
		}
	}
	if err := k.Load(confmap.Provider(sqlfluffSettings(core, rules), ""), nil); err != nil {
		return fmt.Errorf("error loading config file %s: %w", path, err)
	}
	configFilesUsed = append(configFilesUsed, path)
	return nil
}

// loadPyprojectFile reads [tool.sqlfluff.core] and [tool.sqlfluff.rules.<ID>]
// from a pyproject.toml. Files without a [tool.sqlfluff] table are skipped.
func loadPyprojectFile(path string, required bool) error {
	if _, err := os.Stat(path); err != nil {
		if required {
			return fmt.Errorf("error reading config file %s: %w", path, err)
		}
		return nil
	}
	pk := koanf.New(".")
	if err := pk.Load(file.Provider(path), toml.Parser()); err != nil {
		return fmt.Errorf("error reading config file %s: %w", path, err)
	}
	if !pk.Exists("tool.sqlfluff") {
		return nil
	}
	tool := pk.Cut("tool.sqlfluff")
	core := tool.Cut("core").Raw()
	rules := tool.Cut("rules").Raw()
	if err := k.Load(confmap.Provider(sqlfluffSettings(core, rules), ""), nil); err != nil {
		return fmt.Errorf("error loading config file %s: %w", path, err)
	}
	configFilesUsed = append(configFilesUsed, path)
	return nil
}

// sqlfluffSettings maps sqlfluff core and per-rule sections onto config
// keys. A rule section's severity key becomes severity.<ID>; its other keys
// become rule_options.<ID>.
func sqlfluffSettings(core map[string]any, rules map[string]any) map[string]any {
	out := make(map[string]any, len(core)+2)
	for key, v := range core {
		out[strings.ToLower(key)] = v
	}
	severity := make(map[string]any)
	options := make(map[string]any)
	for id, raw := range rules {
		section, ok := raw.(map[string]any)
		if !ok {
			continue
		}
		opts := make(map[string]any)
		for key, v := range section {
			if strings.EqualFold(key, "severity") {
				severity[id] = fmt.Sprint(v)
				continue
			}
			opts[key] = v
		}
		if len(opts) > 0 {
			options[id] = opts
		}
	}
	if len(severity) > 0 {
		out["severity"] = severity
	}
	if len(options) > 0 {
		out["rule_options"] = options
	}
	return out
}

// GetConfigFilesUsed returns the config files read by the last load, in
// load order.
func GetConfigFilesUsed() []string {
	return configFilesUsed
}

// LoggerKey returns the context key used for storing the logger.
// This allows the commands package to retrieve the logger from context
// without creating an import cycle with the cli package.
func LoggerKey() interface{} {
	return loggerKey{}
}

// GetLogger retrieves the logger from the command context.
func GetLogger(ctx context.Context) *slog.Logger {
	if l, ok := ctx.Value(loggerKey{}).(*slog.Logger); ok {
		return l
	}
	// Return discard logger as safe fallback
	return slog.New(slog.DiscardHandler)
}

// WithConfig returns a context carrying cfg.
func WithConfig(ctx context.Context, cfg *Config) context.Context {
	return context.WithValue(ctx, configKey{}, cfg)
}

// GetConfig retrieves the config from the command context, or the defaults
// when none was loaded.
func GetConfig(ctx context.Context) *Config {
	if c, ok := ctx.Value(configKey{}).(*Config); ok {
		return c
	}
	return Default()
}
