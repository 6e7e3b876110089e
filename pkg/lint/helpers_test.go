package lint_test

import (
	"github.com/customfm/fmlint/pkg/lint"
	"github.com/customfm/fmlint/pkg/segment"
	"github.com/customfm/fmlint/pkg/token"
)

// newlineBeforeFrom flags a FROM clause on the same line as SELECT and
// inserts a newline before it.
var newlineBeforeFrom = lint.RuleDef{
	ID:          "TST01",
	Name:        "test.newline_before_from",
	Group:       "test",
	Groups:      []string{"all"},
	Aliases:     []string{"TST00"},
	Description: "FROM starts a new line",
	Severity:    lint.SeverityWarning,
	CrawlTypes:  []string{segment.TypeFromClause},
	ConfigKeys:  []string{"enabled"},
	Eval: func(ctx *lint.RuleContext) []lint.Diagnostic {
		if !lint.GetBoolOption(ctx.Options, "enabled", true) {
			return nil
		}
		siblings := segment.Of(ctx.Parent().Children...)
		gap := siblings.Reversed().Select(nil, ctx.Segment, segment.IsWhitespace())
		if len(gap.Filter(segment.IsNewline())) > 0 {
			return nil
		}
		return []lint.Diagnostic{lint.NewDiagnostic(ctx.Segment, "FROM on the select line",
			lint.ReplaceRun(gap, ctx.Segment.Start(), "\n"))}
	},
}

// selectReport reports every select clause without a fix.
var selectReport = lint.RuleDef{
	ID:         "TST02",
	Name:       "test.select_report",
	Group:      "structure",
	Severity:   lint.SeverityInfo,
	CrawlTypes: []string{segment.TypeSelectClause},
	Dialects:   []string{"duckdb"},
	Eval: func(ctx *lint.RuleContext) []lint.Diagnostic {
		return []lint.Diagnostic{lint.NewDiagnostic(ctx.Segment, "select")}
	},
}

// panics fails on every statement.
var panics = lint.RuleDef{
	ID:         "TST03",
	Name:       "test.panics",
	Group:      "test",
	Severity:   lint.SeverityError,
	CrawlTypes: []string{segment.TypeSelectStatement},
	Eval: func(*lint.RuleContext) []lint.Diagnostic {
		panic("boom")
	},
}

// flipFlop toggles the space after SELECT forever.
var flipFlop = lint.RuleDef{
	ID:         "TST04",
	Name:       "test.flip_flop",
	Group:      "test",
	Severity:   lint.SeverityWarning,
	CrawlTypes: []string{segment.TypeSelectClause},
	Eval: func(ctx *lint.RuleContext) []lint.Diagnostic {
		ws := ctx.Children().First(segment.IsType(segment.TypeWhitespace))
		if len(ws) == 0 {
			return nil
		}
		next := " "
		if ws[0].Raw == " " {
			next = "  "
		}
		return []lint.Diagnostic{lint.NewDiagnostic(ctx.Segment, "flip",
			lint.ReplaceRun(ws, ws[0].Start(), next))}
	},
}

// testPlugin bundles the test rules.
type testPlugin struct {
	name  string
	rules []lint.SegmentRule
}

func (p testPlugin) Name() string { return p.name }
func (p testPlugin) Rules() []lint.SegmentRule { return p.rules }
func (p testPlugin) DefaultConfig() map[string]map[string]any {
	return map[string]map[string]any{"TST00": {"enabled": true, "depth": 2}}
}
func (p testPlugin) ConfigInfo() map[string]lint.ConfigKeyInfo {
	return map[string]lint.ConfigKeyInfo{"enabled": {Definition: "Turns the check on"}}
}

func at(offset int) token.Position {
	return token.Position{Line: 1, Column: offset + 1, Offset: offset}
}

// unbalanced inserts a closing bracket before FROM, which never parses.
var unbalanced = lint.RuleDef{
	ID:         "TST05",
	Name:       "test.unbalanced",
	Group:      "test",
	Severity:   lint.SeverityWarning,
	CrawlTypes: []string{segment.TypeFromClause},
	Eval: func(ctx *lint.RuleContext) []lint.Diagnostic {
		return []lint.Diagnostic{lint.NewDiagnostic(ctx.Segment, "unbalanced",
			lint.ReplaceRun(nil, ctx.Segment.Start(), ")"))}
	},
}

// versionedPlugin is a testPlugin with a content version.
type versionedPlugin struct {
	testPlugin
	version string
}

func (p versionedPlugin) Version() string { return p.version }

// externalPlugin is a testPlugin loaded at run time.
type externalPlugin struct{ testPlugin }

func (externalPlugin) External() bool { return true }
