// Package fixture loads YAML rule fixtures and evaluates them against the
// registered rules.
//
// A fixture file names one rule and holds named cases:
//
//	rule: CustomFM_L001
//
//	blank_line_missing:
//	  fail_str: |
//	    select *
//	    from foo
//	  fix_str: |
//	    select *
//
//	    from foo
//
// A case holds exactly one of pass_str and fail_str. fix_str is only valid
// with fail_str. configs may set the dialect (configs.core.dialect) and
// rule options (configs.rules.<rule>.<option>).
package fixture

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// Expectation is the verdict a case expects.
type Expectation int

const (
	// ExpectPass cases must produce no violation.
	ExpectPass Expectation = iota
	// ExpectFail cases must produce at least one violation.
	ExpectFail
)

func (e Expectation) String() string {
	if e == ExpectFail {
		return "fail"
	}
	return "pass"
}

// Configs are the per-case configuration overrides.
type Configs struct {
	Core struct {
		Dialect string `yaml:"dialect"`
	} `yaml:"core"`
	Rules map[string]map[string]any `yaml:"rules"`
}

// Case is one named test case.
type Case struct {
	Name    string
	Rule    string
	SQL     string
	Expect  Expectation
	FixStr  *string
	Configs Configs

	File string
	Line int
}

// Location returns file:line of the case.
func (c Case) Location() string {
	return fmt.Sprintf("%s:%d", c.File, c.Line)
}

// Corpus is the content of one fixture file, cases in file order.
type Corpus struct {
	Path  string
	Rule  string
	Cases []Case
}

// Error reports an invalid fixture file.
type Error struct {
	Path string
	Line int
	Case string
	Msg  string
}

func (e *Error) Error() string {
	if e.Case != "" {
		return fmt.Sprintf("%s:%d: case %q: %s", e.Path, e.Line, e.Case, e.Msg)
	}
	return fmt.Sprintf("%s:%d: %s", e.Path, e.Line, e.Msg)
}

var caseKeys = map[string]bool{
	"pass_str": true,
	"fail_str": true,
	"fix_str":  true,
	"configs":  true,
}

type rawCase struct {
	PassStr *string `yaml:"pass_str"`
	FailStr *string `yaml:"fail_str"`
	FixStr  *string `yaml:"fix_str"`
	Configs Configs `yaml:"configs"`
}

// LoadFile reads one fixture file.
func LoadFile(path string) (*Corpus, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read fixture: %w", err)
	}
	return Parse(path, data)
}

// LoadDir reads every *.yml and *.yaml file of dir, sorted by name.
func LoadDir(dir string) ([]*Corpus, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read fixture dir: %w", err)
	}
	var names []string
	for _, e := range entries {
		ext := strings.ToLower(filepath.Ext(e.Name()))
		if !e.IsDir() && (ext == ".yml" || ext == ".yaml") {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)

	corpora := make([]*Corpus, 0, len(names))
	for _, name := range names {
		c, err := LoadFile(filepath.Join(dir, name))
		if err != nil {
			return nil, err
		}
		corpora = append(corpora, c)
	}
	return corpora, nil
}

// Load reads a fixture file, or every fixture file when path is a directory.
func Load(path string) ([]*Corpus, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("stat fixtures: %w", err)
	}
	if info.IsDir() {
		return LoadDir(path)
	}
	c, err := LoadFile(path)
	if err != nil {
		return nil, err
	}
	return []*Corpus{c}, nil
}

// Parse decodes fixture YAML. path is used in errors and case locations.
func Parse(path string, data []byte) (*Corpus, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse fixture %s: %w", path, err)
	}
	if len(doc.Content) == 0 {
		return nil, &Error{Path: path, Line: 1, Msg: "empty fixture file"}
	}
	root := doc.Content[0]
	if root.Kind != yaml.MappingNode {
		return nil, &Error{Path: path, Line: root.Line, Msg: "fixture file must be a mapping"}
	}

	corpus := &Corpus{Path: path}
	seen := make(map[string]bool)
	for i := 0; i+1 < len(root.Content); i += 2 {
		key, value := root.Content[i], root.Content[i+1]
		if key.Value == "rule" {
			if err := value.Decode(&corpus.Rule); err != nil || corpus.Rule == "" {
				return nil, &Error{Path: path, Line: key.Line, Msg: "rule must be a non-empty string"}
			}
			continue
		}
		if seen[key.Value] {
			return nil, &Error{Path: path, Line: key.Line, Case: key.Value, Msg: "duplicate case name"}
		}
		seen[key.Value] = true

		c, err := parseCase(path, key, value)
		if err != nil {
			return nil, err
		}
		corpus.Cases = append(corpus.Cases, c)
	}

	if corpus.Rule == "" {
		return nil, &Error{Path: path, Line: root.Line, Msg: "missing rule"}
	}
	for i := range corpus.Cases {
		corpus.Cases[i].Rule = corpus.Rule
	}
	return corpus, nil
}

func parseCase(path string, key, value *yaml.Node) (Case, error) {
	fail := func(line int, msg string) (Case, error) {
		return Case{}, &Error{Path: path, Line: line, Case: key.Value, Msg: msg}
	}
	if value.Kind != yaml.MappingNode {
		return fail(key.Line, "case must be a mapping")
	}
	for i := 0; i < len(value.Content); i += 2 {
		if k := value.Content[i]; !caseKeys[k.Value] {
			return fail(k.Line, fmt.Sprintf("unknown key %q", k.Value))
		}
	}

	var raw rawCase
	if err := value.Decode(&raw); err != nil {
		return fail(key.Line, err.Error())
	}

	c := Case{Name: key.Value, Configs: raw.Configs, File: path, Line: key.Line}
	switch {
	case raw.PassStr != nil && raw.FailStr != nil:
		return fail(key.Line, "pass_str and fail_str are exclusive")
	case raw.PassStr != nil:
		if raw.FixStr != nil {
			return fail(key.Line, "fix_str requires fail_str")
		}
		c.SQL, c.Expect = *raw.PassStr, ExpectPass
	case raw.FailStr != nil:
		c.SQL, c.Expect, c.FixStr = *raw.FailStr, ExpectFail, raw.FixStr
	default:
		return fail(key.Line, "one of pass_str or fail_str is required")
	}
	return c, nil
}
