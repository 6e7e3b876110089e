package customfm

import (
	"github.com/customfm/fmlint/pkg/lint"
	"github.com/customfm/fmlint/pkg/segment"
)

// JoinConditionNewline requires ON, and each AND/OR of the join condition,
// to start a new line.
var JoinConditionNewline = lint.RuleDef{
	ID:          "CustomFM_L002",
	Name:        "layout.join_condition_newline",
	Group:       "layout",
	Groups:      []string{"all"},
	Description: "Join clause keywords (ON, AND) should start from new line",
	Severity:    lint.SeverityWarning,
	CrawlTypes:  []string{segment.TypeJoinClause},
	Eval:        evalJoinConditionNewline,

	Rationale: `Join conditions grow over time. With ON and every AND on its own
line, conditions can be added, removed and reviewed one per line.`,
	BadExample: `SELECT * FROM foo
LEFT JOIN b ON b.id = foo.id AND b.x = foo.x`,
	GoodExample: `SELECT * FROM foo
LEFT JOIN b
    ON b.id = foo.id
    AND b.x = foo.x`,
	Fix: "Break the line before ON and before each AND/OR of the condition.",
}

func evalJoinConditionNewline(ctx *lint.RuleContext) []lint.Diagnostic {
	children := ctx.Children()
	cond := children.First(segment.IsType(segment.TypeJoinOnCondition))
	if len(cond) == 0 {
		return nil
	}

	edits := requireNewlinesBefore(children, cond[0], 1)

	expr := cond.Children(segment.IsType(segment.TypeExpression)).First()
	exprChildren := expr.Children()
	operators := exprChildren.Filter(segment.IsType(segment.TypeBinaryOperator), segment.IsKeyword("and", "or"))
	for _, op := range operators {
		edits = append(edits, requireNewlinesBefore(exprChildren, op, 1)...)
	}

	if len(edits) == 0 {
		return nil
	}
	return []lint.Diagnostic{lint.NewDiagnostic(cond[0],
		"Join condition keywords (ON, AND, OR) should start on a new line.", edits...)}
}
