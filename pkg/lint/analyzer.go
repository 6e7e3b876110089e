package lint

import (
	"context"
	"errors"
	"log/slog"
	"sort"

	"github.com/customfm/fmlint/pkg/dialect"
	"github.com/customfm/fmlint/pkg/parser"
	"github.com/customfm/fmlint/pkg/segment"
	"github.com/customfm/fmlint/pkg/token"
)

// ParseRuleID is the rule ID of diagnostics reporting unparsable SQL.
const ParseRuleID = "PRS"

// Analyzer runs lint rules against parsed SQL.
type Analyzer struct {
	config  *Config
	dialect *dialect.Dialect
	rules   []SegmentRule
	byType  map[string][]SegmentRule
	docURLs map[string]string
	logger  *slog.Logger
}

// AnalyzerOption configures an Analyzer.
type AnalyzerOption func(*Analyzer)

// WithLogger sets the analyzer's logger.
func WithLogger(l *slog.Logger) AnalyzerOption {
	return func(a *Analyzer) { a.logger = l }
}

// WithRules evaluates the given rules instead of the registry's.
func WithRules(rules ...SegmentRule) AnalyzerOption {
	return func(a *Analyzer) { a.rules = rules }
}

// NewAnalyzer creates an analyzer for one dialect. Rules come from the
// registry, filtered by config and dialect.
func NewAnalyzer(config *Config, d *dialect.Dialect, opts ...AnalyzerOption) *Analyzer {
	if config == nil {
		config = NewConfig()
	}
	a := &Analyzer{
		config:  config,
		dialect: d,
		logger:  slog.New(slog.DiscardHandler),
	}
	a.rules = AllRules()
	for _, opt := range opts {
		opt(a)
	}

	a.byType = make(map[string][]SegmentRule)
	a.docURLs = make(map[string]string)
	var enabled []SegmentRule
	for _, rule := range a.rules {
		if !config.IsEnabled(rule) {
			continue
		}
		if d != nil && len(rule.Dialects()) > 0 && !containsFold(rule.Dialects(), d.Name) {
			continue
		}
		enabled = append(enabled, rule)
		a.docURLs[rule.ID()] = docURL(rule.ID())
		for _, t := range rule.CrawlTypes() {
			a.byType[t] = append(a.byType[t], rule)
		}
	}
	a.rules = enabled
	return a
}

// Rules returns the rules the analyzer evaluates.
func (a *Analyzer) Rules() []SegmentRule {
	return a.rules
}

// Config returns the analyzer's configuration.
func (a *Analyzer) Config() *Config {
	return a.config
}

// Dialect returns the analyzer's dialect.
func (a *Analyzer) Dialect() *dialect.Dialect {
	return a.dialect
}

// AnalyzeSource parses sql and lints it. Unparsable SQL yields a single
// ParseRuleID diagnostic.
func (a *Analyzer) AnalyzeSource(ctx context.Context, path, sql string) ([]Diagnostic, error) {
	tree, err := parser.Parse(sql, a.dialect)
	if err != nil {
		a.logger.Debug("parse failed", "path", path, "error", err)
		return []Diagnostic{ParseErrorDiagnostic(err)}, nil
	}
	return a.AnalyzeTree(ctx, tree)
}

// AnalyzeTree walks tree and evaluates each enabled rule on the segments it
// crawls. Diagnostics are sorted by line, column and rule ID.
func (a *Analyzer) AnalyzeTree(ctx context.Context, tree *segment.Segment) ([]Diagnostic, error) {
	var diagnostics []Diagnostic
	var walkErr error
	segment.Walk(tree, func(seg *segment.Segment, parents []*segment.Segment) bool {
		if walkErr != nil {
			return false
		}
		rules := a.byType[seg.Type]
		if len(rules) == 0 {
			return true
		}
		if err := ctx.Err(); err != nil {
			walkErr = err
			return false
		}
		for _, rule := range rules {
			diags, err := a.evalRule(rule, seg, parents)
			if err != nil {
				walkErr = err
				return false
			}
			diagnostics = append(diagnostics, diags...)
		}
		return true
	})
	if walkErr != nil {
		return nil, walkErr
	}
	SortDiagnostics(diagnostics)
	return diagnostics, nil
}

func (a *Analyzer) evalRule(rule SegmentRule, seg *segment.Segment, parents []*segment.Segment) (diags []Diagnostic, err error) {
	defer func() {
		if r := recover(); r != nil {
			a.logger.Error("rule panicked", "rule", rule.ID(), "segment", seg.Type, "panic", r)
			diags, err = nil, &RuleError{RuleID: rule.ID(), Segment: seg, Cause: r}
		}
	}()

	ctx := &RuleContext{
		Segment:     seg,
		ParentStack: append([]*segment.Segment(nil), parents...),
		Dialect:     a.dialect,
		Options:     a.config.GetRuleOptions(rule),
	}
	diags = rule.Eval(ctx)
	for i := range diags {
		diags[i].RuleID = rule.ID()
		diags[i].Severity = a.config.GetSeverity(rule)
		diags[i].DocumentationURL = a.docURLs[rule.ID()]
		diags[i].ImpactScore = impactFor(rule)
		diags[i].AutoFixable = len(diags[i].Fixes) > 0
	}
	return diags, nil
}

// ParseErrorDiagnostic converts a lex or parse error into a diagnostic.
func ParseErrorDiagnostic(err error) Diagnostic {
	d := Diagnostic{
		RuleID:      ParseRuleID,
		Severity:    SeverityError,
		Message:     err.Error(),
		ImpactScore: ImpactHigh.Int(),
	}
	var pe *parser.ParseError
	var le *parser.LexError
	switch {
	case errors.As(err, &pe):
		d.Message, d.Pos = pe.Message, pe.Pos
	case errors.As(err, &le):
		d.Message, d.Pos = le.Message, le.Pos
	default:
		d.Pos = token.Position{Line: 1, Column: 1}
	}
	d.EndPos = d.Pos
	return d
}

// SortDiagnostics orders diagnostics by line, column and rule ID.
func SortDiagnostics(diags []Diagnostic) {
	sort.SliceStable(diags, func(i, j int) bool {
		a, b := diags[i], diags[j]
		if a.Pos.Line != b.Pos.Line {
			return a.Pos.Line < b.Pos.Line
		}
		if a.Pos.Column != b.Pos.Column {
			return a.Pos.Column < b.Pos.Column
		}
		return a.RuleID < b.RuleID
	})
}

// CountBySeverity tallies diagnostics per severity.
func CountBySeverity(diags []Diagnostic) map[Severity]int {
	counts := make(map[Severity]int)
	for _, d := range diags {
		counts[d.Severity]++
	}
	return counts
}
