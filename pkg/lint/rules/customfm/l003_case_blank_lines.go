package customfm

import (
	"github.com/customfm/fmlint/pkg/lint"
	"github.com/customfm/fmlint/pkg/segment"
)

// CaseBlankLines surrounds CASE select elements with blank lines and puts
// each WHEN, THEN, ELSE and END on its own line.
var CaseBlankLines = lint.RuleDef{
	ID:          "CustomFM_L003",
	Name:        "layout.case_blank_lines",
	Group:       "layout",
	Groups:      []string{"all"},
	Description: "Case when expressions should have blank line before and after, keywords start in new line",
	Severity:    lint.SeverityWarning,
	CrawlTypes:  []string{segment.TypeSelectClause},
	Eval:        evalCaseBlankLines,

	Rationale: `CASE expressions are the longest items of a select list. Blank
lines around them, and one branch keyword per line, keep them readable.`,
	BadExample: `SELECT
    a,
    case when true then 1 end,
    b
FROM foo`,
	GoodExample: `SELECT
    a,

    case
    when true
    then 1
    end,

    b
FROM foo`,
}

func evalCaseBlankLines(ctx *lint.RuleContext) []lint.Diagnostic {
	children := ctx.Children()
	elements := children.Filter(segment.IsType(segment.TypeSelectClauseElement))

	var diagnostics []lint.Diagnostic
	for i, element := range elements {
		caseExpr := segment.Of(element).
			Children(segment.IsType(segment.TypeExpression)).
			Children(segment.IsType(segment.TypeCaseExpression))
		if len(caseExpr) == 0 {
			continue
		}

		edits := requireNewlinesBefore(children, element, 2)
		if i < len(elements)-1 {
			// A comment before the comma ends the gap; the comma is then out of reach.
			if after := gapAfter(children, element); after.Any(segment.IsType(segment.TypeComma)) {
				edits = append(edits, requireNewlinesAfter(after, element, 2, ",")...)
			}
		}

		caseChildren := caseExpr.Children()
		branches := caseChildren.Filter(segment.Or(
			segment.IsType(segment.TypeWhenClause, segment.TypeElseClause),
			segment.IsKeyword("end"),
		))
		for _, branch := range branches {
			edits = append(edits, requireNewlinesBefore(caseChildren, branch, 1)...)
			if !branch.IsType(segment.TypeWhenClause) {
				continue
			}
			whenChildren := segment.Of(branch).Children()
			if then := whenChildren.First(segment.IsKeyword("then")); len(then) > 0 {
				edits = append(edits, requireNewlinesBefore(whenChildren, then[0], 1)...)
			}
		}

		if len(edits) > 0 {
			diagnostics = append(diagnostics, lint.NewDiagnostic(element,
				"CASE expression should be surrounded by blank lines with WHEN, THEN, ELSE and END on new lines.", edits...))
		}
	}
	return diagnostics
}
