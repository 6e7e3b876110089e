// Package testutil provides test utilities for CLI testing.
package testutil

import (
	"bytes"
	"regexp"
	"strings"
	"testing"

	"github.com/customfm/fmlint/internal/cli/output"
	roottestutil "github.com/customfm/fmlint/internal/testutil"
)

// Project SQL used by SetupTestProject.
const (
	// CleanSQL passes every customfm rule.
	CleanSQL = "select *\n\nfrom orders\n"
	// BlankLineSQL breaks CustomFM_L001 once; the fix inserts a blank line.
	BlankLineSQL = "select *\nfrom orders\n"
	// WildcardSQL breaks CustomFM_L006, which has no fix.
	WildcardSQL = "with o as (\n    select id\n\n    from orders\n)\n\nselect id\n\nfrom o\n"
)

// SetupTestProject creates a temporary project with SQL models and returns
// its root. models/staging/stg_orders.sql is clean, models/marts/orders.sql
// needs a blank line and models/marts/ids.sql ends in a named column list.
// Files under target/ are ignored through .sqlfluffignore.
func SetupTestProject(t *testing.T) string {
	t.Helper()

	dir := t.TempDir()
	roottestutil.WriteFiles(t, dir, map[string]string{
		"models/staging/stg_orders.sql": CleanSQL,
		"models/marts/orders.sql":       BlankLineSQL,
		"models/marts/ids.sql":          WildcardSQL,
		"target/compiled.sql":           BlankLineSQL,
		".sqlfluffignore":               "target/\n",
	})
	return dir
}

// TestRenderer wraps a Renderer for testing with captured output buffers.
type TestRenderer struct {
	*output.Renderer
	Out    *bytes.Buffer
	ErrOut *bytes.Buffer
}

// NewTestRenderer creates a new test renderer with the specified mode and TTY state.
// Output is captured in buffers for inspection.
func NewTestRenderer(mode output.Mode, isTTY bool) *TestRenderer {
	out := &bytes.Buffer{}
	errOut := &bytes.Buffer{}
	return &TestRenderer{
		Renderer: output.NewRendererWithTTY(out, errOut, isTTY, mode),
		Out:      out,
		ErrOut:   errOut,
	}
}

// NewTestRendererText creates a new test renderer in text mode (simulated TTY).
func NewTestRendererText() *TestRenderer {
	return NewTestRenderer(output.ModeText, true)
}

// NewTestRendererMarkdown creates a new test renderer in markdown mode.
func NewTestRendererMarkdown() *TestRenderer {
	return NewTestRenderer(output.ModeMarkdown, false)
}

// Output returns the stdout output as a string.
func (tr *TestRenderer) Output() string {
	return tr.Out.String()
}

// ErrorOutput returns the stderr output as a string.
func (tr *TestRenderer) ErrorOutput() string {
	return tr.ErrOut.String()
}

// ansiPattern matches ANSI escape codes.
var ansiPattern = regexp.MustCompile(`\x1b\[[0-9;]*[a-zA-Z]`)

// AssertNoANSI checks that a string contains no ANSI escape codes.
func AssertNoANSI(t *testing.T, s string) {
	t.Helper()
	if ansiPattern.MatchString(s) {
		t.Errorf("string contains ANSI escape codes: %q", s)
	}
}

// AssertValidMarkdown performs basic markdown validation.
// It checks for unclosed code fences and basic structure.
func AssertValidMarkdown(t *testing.T, md string) {
	t.Helper()

	// Check for balanced code fences
	fenceCount := strings.Count(md, "```")
	if fenceCount%2 != 0 {
		t.Errorf("unbalanced code fences in markdown: found %d occurrences", fenceCount)
	}

	// Check that headers have content
	lines := strings.Split(md, "\n")
	for i, line := range lines {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "#") && strings.TrimLeft(trimmed, "# ") == "" {
			t.Errorf("empty header at line %d: %q", i+1, line)
		}
	}
}
