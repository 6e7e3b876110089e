package starlark

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"go.starlark.net/starlark"
	"go.starlark.net/syntax"

	"github.com/customfm/fmlint/pkg/lint"
)

// PluginPrefix starts the name of every plugin loaded from a rule file.
const PluginPrefix = "starlark:"

var ruleIDPattern = regexp.MustCompile(`^[A-Za-z][A-Za-z0-9_]*$`)

// Plugin is the set of rules defined by one Starlark file.
type Plugin struct {
	name    string
	path    string
	version string
	rules   []*Rule
}

var (
	_ lint.VersionedPlugin = (*Plugin)(nil)
	_ lint.ExternalPlugin  = (*Plugin)(nil)
)

// Name returns "starlark:" followed by the file's base name.
func (p *Plugin) Name() string { return p.name }

// Path returns the file the plugin was loaded from.
func (p *Plugin) Path() string { return p.path }

// Version returns a hash of the rule file's source.
func (p *Plugin) Version() string { return p.version }

// External reports true; rule files have no pages in the fmlint docs.
func (p *Plugin) External() bool { return true }

// Rules returns the plugin's rules in definition order.
func (p *Plugin) Rules() []lint.SegmentRule {
	out := make([]lint.SegmentRule, len(p.rules))
	for i, r := range p.rules {
		out[i] = r
	}
	return out
}

// DefaultConfig returns the options each rule declared.
func (p *Plugin) DefaultConfig() map[string]map[string]any {
	out := make(map[string]map[string]any)
	for _, r := range p.rules {
		if len(r.options) > 0 {
			out[r.id] = r.options
		}
	}
	return out
}

// ConfigInfo documents every declared option.
func (p *Plugin) ConfigInfo() map[string]lint.ConfigKeyInfo {
	out := make(map[string]lint.ConfigKeyInfo)
	for _, r := range p.rules {
		for _, k := range r.ConfigKeys() {
			out[k] = lint.ConfigKeyInfo{Definition: fmt.Sprintf("Option of %s (default %v).", r.id, r.options[k])}
		}
	}
	return out
}

// Loader executes rule files.
type Loader struct {
	pool   *ThreadPool
	logger *slog.Logger
}

// NewLoader creates a loader. Rules it loads share one thread pool.
func NewLoader(logger *slog.Logger) *Loader {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Loader{pool: NewThreadPool(0, logger), logger: logger}
}

// LoadFile executes a rule file and returns its plugin.
func (l *Loader) LoadFile(path string) (*Plugin, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read rule file: %w", err)
	}
	return l.Load(path, src)
}

// Load executes rule source. path names the file in errors.
func (l *Loader) Load(path string, src []byte) (*Plugin, error) {
	sum := sha256.Sum256(src)
	p := &Plugin{
		name:    PluginPrefix + strings.TrimSuffix(filepath.Base(path), filepath.Ext(path)),
		path:    path,
		version: hex.EncodeToString(sum[:]),
	}

	predeclared := Builtins()
	predeclared["rule"] = starlark.NewBuiltin("rule", func(_ *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
		r, err := l.defineRule(path, b, args, kwargs)
		if err != nil {
			return nil, err
		}
		for _, existing := range p.rules {
			if strings.EqualFold(existing.id, r.id) {
				return nil, fmt.Errorf("rule %s defined twice", r.id)
			}
		}
		p.rules = append(p.rules, r)
		return starlark.None, nil
	})

	thread := l.pool.Get(path)
	defer l.pool.Put(thread)

	if _, err := starlark.ExecFileOptions(&syntax.FileOptions{}, thread, path, src, predeclared); err != nil {
		msg := err.Error()
		if ee, ok := err.(*starlark.EvalError); ok {
			msg = ee.Backtrace()
		}
		return nil, &EvalError{File: path, Message: msg}
	}
	if len(p.rules) == 0 {
		return nil, &EvalError{File: path, Message: "no rules defined"}
	}
	for _, r := range p.rules {
		r.eval.Freeze()
	}
	l.logger.Debug("loaded starlark rules", "file", path, "rules", len(p.rules))
	return p, nil
}

// LoadAndRegister loads every file and registers its plugin.
func (l *Loader) LoadAndRegister(paths ...string) ([]*Plugin, error) {
	plugins := make([]*Plugin, 0, len(paths))
	for _, path := range paths {
		p, err := l.LoadFile(path)
		if err != nil {
			return plugins, err
		}
		if err := lint.RegisterPlugin(p); err != nil {
			return plugins, fmt.Errorf("register %s: %w", path, err)
		}
		plugins = append(plugins, p)
	}
	return plugins, nil
}

func (l *Loader) defineRule(path string, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (*Rule, error) {
	var (
		id, name, description, severity, group  string
		rationale, badExample, goodExample, fix string
		crawl                                   *starlark.List
		aliases, dialects                       *starlark.List
		options                                 *starlark.Dict
		eval                                    starlark.Callable
	)
	group = DefaultGroup
	if err := starlark.UnpackArgs(b.Name(), args, kwargs,
		"id", &id,
		"crawl", &crawl,
		"eval", &eval,
		"name?", &name,
		"description?", &description,
		"severity?", &severity,
		"group?", &group,
		"aliases?", &aliases,
		"dialects?", &dialects,
		"options?", &options,
		"rationale?", &rationale,
		"bad_example?", &badExample,
		"good_example?", &goodExample,
		"fix?", &fix,
	); err != nil {
		return nil, err
	}

	if !ruleIDPattern.MatchString(id) {
		return nil, fmt.Errorf("rule: invalid id %q", id)
	}
	r := &Rule{
		id:          id,
		name:        name,
		group:       group,
		description: description,
		severity:    lint.SeverityWarning,
		rationale:   rationale,
		badExample:  badExample,
		goodExample: goodExample,
		fix:         fix,
		file:        path,
		eval:        eval,
		pool:        l.pool,
	}
	if r.name == "" {
		r.name = DefaultGroup + "." + strings.ToLower(id)
	}
	if severity != "" {
		sev, ok := lint.ParseSeverity(severity)
		if !ok {
			return nil, fmt.Errorf("rule %s: invalid severity %q", id, severity)
		}
		r.severity = sev
	}

	var err error
	if r.crawl, err = stringList(crawl); err != nil {
		return nil, fmt.Errorf("rule %s: crawl: %w", id, err)
	}
	if len(r.crawl) == 0 {
		return nil, fmt.Errorf("rule %s: crawl must name at least one segment type", id)
	}
	if r.aliases, err = stringList(aliases); err != nil {
		return nil, fmt.Errorf("rule %s: aliases: %w", id, err)
	}
	if r.dialects, err = stringList(dialects); err != nil {
		return nil, fmt.Errorf("rule %s: dialects: %w", id, err)
	}
	if options != nil {
		v, err := ToGo(options)
		if err != nil {
			return nil, fmt.Errorf("rule %s: options: %w", id, err)
		}
		r.options = v.(map[string]any)
	}
	return r, nil
}

func stringList(l *starlark.List) ([]string, error) {
	if l == nil {
		return nil, nil
	}
	out := make([]string, 0, l.Len())
	for i := 0; i < l.Len(); i++ {
		s, ok := starlark.AsString(l.Index(i))
		if !ok {
			return nil, fmt.Errorf("index %d: want string, got %s", i, l.Index(i).Type())
		}
		out = append(out, s)
	}
	return out, nil
}

func sortedStrings(s []string) []string {
	sort.Strings(s)
	return s
}
