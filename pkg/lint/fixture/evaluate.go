package fixture

import (
	"context"
	"fmt"
	"strings"

	"github.com/customfm/fmlint/pkg/dialect"
	_ "github.com/customfm/fmlint/pkg/dialects" // configs.core.dialect may name any bundled dialect
	"github.com/customfm/fmlint/pkg/lint"
)

// Result is the outcome of one case.
type Result struct {
	Case       Case
	Violations []lint.Diagnostic
	Fixed      string
	Passed     bool
	Reason     string
}

// Evaluate lints the case's SQL with its rule alone and checks the verdict.
// A mismatch is a failed Result; an error means the case could not be
// evaluated at all (unknown rule or dialect, rule panic).
func Evaluate(ctx context.Context, c Case) (*Result, error) {
	rule, ok := lint.GetRule(c.Rule)
	if !ok {
		return nil, fmt.Errorf("%s: %w: %s", c.Location(), lint.ErrUnknownRule, c.Rule)
	}
	d, err := dialect.Lookup(c.Configs.Core.Dialect)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", c.Location(), err)
	}

	cfg := lint.NewConfig()
	cfg.Rules = []string{rule.ID()}
	for id, opts := range c.Configs.Rules {
		for k, v := range opts {
			cfg.SetRuleOption(id, k, v)
		}
	}
	analyzer := lint.NewAnalyzer(cfg, d, lint.WithRules(rule))

	diags, err := analyzer.AnalyzeSource(ctx, c.Location(), c.SQL)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", c.Location(), err)
	}

	res := &Result{Case: c}
	if len(diags) == 1 && diags[0].RuleID == lint.ParseRuleID {
		res.Reason = fmt.Sprintf("parse error at line %d, column %d: %s",
			diags[0].Pos.Line, diags[0].Pos.Column, diags[0].Message)
		return res, nil
	}
	res.Violations = diags

	switch c.Expect {
	case ExpectPass:
		if len(diags) > 0 {
			res.Reason = fmt.Sprintf("expected no violations, found %d: %s", len(diags), describe(diags))
			return res, nil
		}
	case ExpectFail:
		if len(diags) == 0 {
			res.Reason = "expected at least one violation, found none"
			return res, nil
		}
		if c.FixStr != nil {
			fixed, err := lint.NewFixer(analyzer).Fix(ctx, c.Location(), c.SQL)
			if err != nil {
				return nil, fmt.Errorf("%s: %w", c.Location(), err)
			}
			res.Fixed = fixed.Fixed
			if res.Fixed != *c.FixStr {
				res.Reason = "fixed output does not match fix_str"
				return res, nil
			}
		}
	}
	res.Passed = true
	return res, nil
}

// EvaluateAll evaluates every case of the corpora in order.
func EvaluateAll(ctx context.Context, corpora []*Corpus) ([]*Result, error) {
	var results []*Result
	for _, corpus := range corpora {
		for _, c := range corpus.Cases {
			if err := ctx.Err(); err != nil {
				return results, err
			}
			res, err := Evaluate(ctx, c)
			if err != nil {
				return results, err
			}
			results = append(results, res)
		}
	}
	return results, nil
}

func describe(diags []lint.Diagnostic) string {
	parts := make([]string, 0, len(diags))
	for _, d := range diags {
		parts = append(parts, fmt.Sprintf("%d:%d %s", d.Pos.Line, d.Pos.Column, d.Message))
	}
	return strings.Join(parts, "; ")
}
