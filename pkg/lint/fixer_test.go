package lint_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/customfm/fmlint/pkg/dialects/ansi"
	"github.com/customfm/fmlint/pkg/lint"
)

func TestFixer_Fix(t *testing.T) {
	analyzer := lint.NewAnalyzer(nil, ansi.ANSI,
		lint.WithRules(lint.WrapRuleDef(newlineBeforeFrom), lint.WrapRuleDef(selectReport)))
	fixer := lint.NewFixer(analyzer)

	res, err := fixer.Fix(context.Background(), "q.sql", "select a from b; select c  from d")
	require.NoError(t, err)
	assert.Equal(t, "select a\nfrom b; select c\nfrom d", res.Fixed)
	assert.True(t, res.Changed())
	assert.Equal(t, 1, res.Passes)
	assert.Equal(t, 2, res.Applied)
	assert.Empty(t, res.Remaining)
}

func TestFixer_NothingToFix(t *testing.T) {
	fixer := lint.NewFixer(lint.NewAnalyzer(nil, ansi.ANSI, lint.WithRules(lint.WrapRuleDef(newlineBeforeFrom))))

	res, err := fixer.Fix(context.Background(), "q.sql", "select a\nfrom b")
	require.NoError(t, err)
	assert.False(t, res.Changed())
	assert.Zero(t, res.Passes)
}

func TestFixer_RunawayLimit(t *testing.T) {
	cfg := lint.NewConfig()
	cfg.RunawayLimit = 3
	fixer := lint.NewFixer(lint.NewAnalyzer(cfg, ansi.ANSI, lint.WithRules(lint.WrapRuleDef(flipFlop))))

	res, err := fixer.Fix(context.Background(), "q.sql", "select a")
	require.NoError(t, err)
	assert.Equal(t, 3, res.Passes)
	assert.Equal(t, "select  a", res.Fixed)
	require.Len(t, res.Remaining, 1)
	assert.Equal(t, "TST04", res.Remaining[0].RuleID)
}

func TestFixer_KeepsSQLParsable(t *testing.T) {
	tests := []struct {
		name        string
		rules       []lint.SegmentRule
		sql         string
		wantFixed   string
		wantApplied int
		wantRules   []string
	}{
		{
			name:      "only breaking fix",
			rules:     []lint.SegmentRule{lint.WrapRuleDef(unbalanced)},
			sql:       "select a\nfrom b",
			wantFixed: "select a\nfrom b",
			wantRules: []string{"TST05"},
		},
		{
			name:        "breaking fix dropped, others kept",
			rules:       []lint.SegmentRule{lint.WrapRuleDef(newlineBeforeFrom), lint.WrapRuleDef(unbalanced)},
			sql:         "select a from b",
			wantFixed:   "select a\nfrom b",
			wantApplied: 1,
			wantRules:   []string{"TST05"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fixer := lint.NewFixer(lint.NewAnalyzer(nil, ansi.ANSI, lint.WithRules(tt.rules...)))

			res, err := fixer.Fix(context.Background(), "q.sql", tt.sql)
			require.NoError(t, err)
			assert.Equal(t, tt.wantFixed, res.Fixed)
			assert.Equal(t, tt.wantApplied, res.Applied)

			var got []string
			for _, d := range res.Remaining {
				got = append(got, d.RuleID)
			}
			assert.Equal(t, tt.wantRules, got, "remaining diagnostics come from parsable SQL")
		})
	}
}

func TestFixer_UnparsableSource(t *testing.T) {
	fixer := lint.NewFixer(lint.NewAnalyzer(nil, ansi.ANSI, lint.WithRules(lint.WrapRuleDef(newlineBeforeFrom))))

	res, err := fixer.Fix(context.Background(), "q.sql", "select * from (")
	require.NoError(t, err)
	assert.False(t, res.Changed())
	require.Len(t, res.Remaining, 1)
	assert.Equal(t, lint.ParseRuleID, res.Remaining[0].RuleID)
}

func TestFixer_RulePanic(t *testing.T) {
	fixer := lint.NewFixer(lint.NewAnalyzer(nil, ansi.ANSI, lint.WithRules(lint.WrapRuleDef(panics))))
	_, err := fixer.Fix(context.Background(), "q.sql", "select 1")
	var ruleErr *lint.RuleError
	assert.ErrorAs(t, err, &ruleErr)
}
