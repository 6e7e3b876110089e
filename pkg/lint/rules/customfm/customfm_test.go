package customfm_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/customfm/fmlint/pkg/dialect"
	_ "github.com/customfm/fmlint/pkg/dialects" // register every dialect
	"github.com/customfm/fmlint/pkg/dialects/ansi"
	"github.com/customfm/fmlint/pkg/lint"
	"github.com/customfm/fmlint/pkg/lint/fixture"
	"github.com/customfm/fmlint/pkg/lint/rules/customfm"
)

func TestFixtures(t *testing.T) {
	fixture.RunDir(t, "testdata")
}

func analyze(t *testing.T, ruleID, sql string) []lint.Diagnostic {
	t.Helper()
	cfg := lint.NewConfig()
	cfg.Rules = []string{ruleID}
	analyzer := lint.NewAnalyzer(cfg, ansi.ANSI)
	diags, err := analyzer.AnalyzeSource(context.Background(), "test.sql", sql)
	require.NoError(t, err)
	return diags
}

func TestPlugin_Registered(t *testing.T) {
	ids := []string{"CustomFM_L001", "CustomFM_L002", "CustomFM_L003", "CustomFM_L004", "CustomFM_L006"}
	for _, id := range ids {
		rule, ok := lint.GetRule(id)
		require.True(t, ok, "rule %s not registered", id)
		assert.Equal(t, customfm.PluginName, lint.GetRuleInfo(rule).Plugin)
	}

	rule, ok := lint.GetRule("customfm_l005")
	require.True(t, ok)
	assert.Equal(t, "CustomFM_L006", rule.ID())

	var names []string
	for _, p := range lint.Plugins() {
		names = append(names, p.Name())
	}
	assert.Contains(t, names, customfm.PluginName)
}

func TestPlugin_DuplicateRegistrationFails(t *testing.T) {
	err := lint.RegisterPlugin(customfm.Plugin{})
	require.Error(t, err)
	assert.ErrorIs(t, err, lint.ErrDuplicatePlugin)
}

func TestPlugin_DefaultConfig(t *testing.T) {
	opts := lint.DefaultRuleOptions("CustomFM_L001")
	got := lint.GetStringSliceOption(opts, "keywords_to_check", nil)
	assert.Equal(t, customfm.DefaultKeywordsToCheck, got)

	docs := lint.ConfigKeyDocs()
	require.Contains(t, docs, "keywords_to_check")
	assert.Equal(t, "A list of keywords to check blank lines for", docs["keywords_to_check"].Definition)
}

func TestLoadDefaultConfig_Invalid(t *testing.T) {
	_, err := customfm.LoadDefaultConfig([]byte("CustomFM_L001: [unclosed"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "decode customfm defaults")
}

func TestL006_Messages(t *testing.T) {
	tests := []struct {
		name    string
		sql     string
		message string
	}{
		{
			name:    "multiple elements",
			sql:     "with a as (select av from b) select av, 1 from a",
			message: customfm.MsgMultipleSelectElements,
		},
		{
			name:    "single column",
			sql:     "with a as (select av from b) select av from a",
			message: customfm.MsgOnlyWildcard,
		},
		{
			name:    "single expression",
			sql:     "with a as (select av from b) select count(*) as n from a",
			message: customfm.MsgOnlyWildcard,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			diags := analyze(t, "CustomFM_L006", tt.sql)
			require.Len(t, diags, 1)
			assert.Equal(t, tt.message, diags[0].Message)
			assert.False(t, diags[0].AutoFixable)
			assert.Empty(t, diags[0].Fixes)
		})
	}
}

func TestL002_AnchorsOnJoinCondition(t *testing.T) {
	sql := "select a\nfrom tbl\nleft join cd on cd.a = tbl.a and cd.b = tbl.b\n"
	diags := analyze(t, "CustomFM_L002", sql)

	require.Len(t, diags, 1)
	assert.Equal(t, 3, diags[0].Pos.Line)
	assert.Equal(t, 14, diags[0].Pos.Column)
	require.Len(t, diags[0].Fixes, 1)
	assert.Len(t, diags[0].Fixes[0].TextEdits, 2, "one edit before ON, one before AND")
}

func TestL003_OneDiagnosticPerElement(t *testing.T) {
	sql := "select\n    case when a then 1 end as x,\n    case when b then 2 end as y\nfrom foo\n"
	diags := analyze(t, "CustomFM_L003", sql)

	require.Len(t, diags, 2)
	assert.Equal(t, 2, diags[0].Pos.Line)
	assert.Equal(t, 3, diags[1].Pos.Line)
}

func TestL001_SeverityOverride(t *testing.T) {
	cfg := lint.NewConfig().SetSeverity("CustomFM_L001", lint.SeverityError)
	cfg.Rules = []string{"CustomFM_L001"}
	analyzer := lint.NewAnalyzer(cfg, ansi.ANSI)

	diags, err := analyzer.AnalyzeSource(context.Background(), "test.sql", "select *\nfrom foo\n")
	require.NoError(t, err)
	require.Len(t, diags, 1)
	assert.Equal(t, lint.SeverityError, diags[0].Severity)
	assert.Equal(t, "Expected a blank line before FROM, found 1 line break(s).", diags[0].Message)
	assert.Equal(t, lint.BuildDocURL("CustomFM_L001"), diags[0].DocumentationURL)
}

func TestRules_Deterministic(t *testing.T) {
	corpora, err := fixture.LoadDir("testdata")
	require.NoError(t, err)

	for _, corpus := range corpora {
		for _, c := range corpus.Cases {
			first, err := fixture.Evaluate(context.Background(), c)
			require.NoError(t, err)
			second, err := fixture.Evaluate(context.Background(), c)
			require.NoError(t, err)
			assert.Equal(t, first, second, c.Location())
		}
	}
}

func TestFix_Idempotent(t *testing.T) {
	corpora, err := fixture.LoadDir("testdata")
	require.NoError(t, err)

	for _, corpus := range corpora {
		rule, ok := lint.GetRule(corpus.Rule)
		require.True(t, ok)
		for _, c := range corpus.Cases {
			if c.FixStr == nil {
				continue
			}
			t.Run(c.Name, func(t *testing.T) {
				d, err := dialect.Lookup(c.Configs.Core.Dialect)
				require.NoError(t, err)
				cfg := lint.NewConfig()
				cfg.Rules = []string{rule.ID()}
				for id, opts := range c.Configs.Rules {
					for k, v := range opts {
						cfg.SetRuleOption(id, k, v)
					}
				}
				fixer := lint.NewFixer(lint.NewAnalyzer(cfg, d))

				once, err := fixer.Fix(context.Background(), c.Name, c.SQL)
				require.NoError(t, err)
				twice, err := fixer.Fix(context.Background(), c.Name, once.Fixed)
				require.NoError(t, err)
				assert.Equal(t, once.Fixed, twice.Fixed)
				assert.False(t, twice.Changed())
			})
		}
	}
}

func TestRuleExamples(t *testing.T) {
	for _, p := range lint.Plugins() {
		if p.Name() != customfm.PluginName {
			continue
		}
		for _, rule := range p.Rules() {
			info := lint.GetRuleInfo(rule)
			t.Run(info.ID, func(t *testing.T) {
				assert.NotEmpty(t, analyze(t, info.ID, info.BadExample), "bad example")
				assert.Empty(t, analyze(t, info.ID, info.GoodExample), "good example")
			})
		}
	}
}
