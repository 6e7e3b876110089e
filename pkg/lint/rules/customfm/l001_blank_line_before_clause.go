package customfm

import (
	"fmt"
	"strings"

	"github.com/customfm/fmlint/pkg/lint"
	"github.com/customfm/fmlint/pkg/segment"
)

// clauseKeywords maps the keywords accepted by keywords_to_check to the
// clause they start.
var clauseKeywords = map[string]string{
	"from":    segment.TypeFromClause,
	"where":   segment.TypeWhereClause,
	"group":   segment.TypeGroupByClause,
	"having":  segment.TypeHavingClause,
	"qualify": segment.TypeQualifyClause,
	"order":   segment.TypeOrderByClause,
	"limit":   segment.TypeLimitClause,
}

// DefaultKeywordsToCheck are the clauses checked when keywords_to_check is unset.
var DefaultKeywordsToCheck = []string{"from", "where", "group", "order"}

// BlankLineBeforeClause requires one blank line before FROM, WHERE, GROUP BY
// and ORDER BY.
var BlankLineBeforeClause = lint.RuleDef{
	ID:          "CustomFM_L001",
	Name:        "layout.blank_line_before_clause",
	Group:       "layout",
	Groups:      []string{"all", "core"},
	Description: "There should be a blank line before SQL keywords (from, where etc.)",
	Severity:    lint.SeverityWarning,
	CrawlTypes: []string{
		segment.TypeFromClause, segment.TypeWhereClause, segment.TypeGroupByClause,
		segment.TypeHavingClause, segment.TypeQualifyClause, segment.TypeOrderByClause,
		segment.TypeLimitClause,
	},
	Eval:       evalBlankLineBeforeClause,
	ConfigKeys: []string{"keywords_to_check"},

	Rationale: `A blank line before each top-level clause splits a query into
blocks that can be scanned at a glance.`,
	BadExample: `SELECT *
FROM foo`,
	GoodExample: `SELECT *

FROM foo`,
	Fix: "Replace the line break before the clause with exactly one blank line.",
}

func evalBlankLineBeforeClause(ctx *lint.RuleContext) []lint.Diagnostic {
	seg, parent := ctx.Segment, ctx.Parent()
	// Only clauses of a query; ORDER BY in a window or an aggregate is exempt.
	if parent == nil || !parent.IsType(segment.TypeSelectStatement, segment.TypeSetExpression) {
		return nil
	}
	if !keywordChecked(seg.Type, lint.GetStringSliceOption(ctx.Options, "keywords_to_check", DefaultKeywordsToCheck)) {
		return nil
	}

	siblings := segment.Of(parent.Children...)
	edits := requireNewlinesBefore(siblings, seg, 2)
	if edits == nil {
		return nil
	}
	keyword := strings.ToUpper(seg.Leaves()[0].Raw)
	found := countNewlines(gapBefore(siblings, seg))
	return []lint.Diagnostic{lint.NewDiagnostic(seg,
		fmt.Sprintf("Expected a blank line before %s, found %d line break(s).", keyword, found), edits...)}
}

func keywordChecked(clauseType string, keywords []string) bool {
	for _, kw := range keywords {
		if clauseKeywords[strings.ToLower(strings.TrimSpace(kw))] == clauseType {
			return true
		}
	}
	return false
}
