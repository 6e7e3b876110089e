package customfm

import (
	"github.com/customfm/fmlint/pkg/lint"
	"github.com/customfm/fmlint/pkg/segment"
)

// WindowKeywordsNewline puts a window specification on its own lines inside
// the OVER brackets, with ORDER BY on a new line.
var WindowKeywordsNewline = lint.RuleDef{
	ID:          "CustomFM_L004",
	Name:        "layout.window_keywords_newline",
	Group:       "layout",
	Groups:      []string{"all"},
	Description: "Keywords in separate lines inside window functions",
	Severity:    lint.SeverityWarning,
	CrawlTypes:  []string{segment.TypeWindowSpecification},
	Eval:        evalWindowKeywordsNewline,

	BadExample: `SELECT
    a,
    row_number() over (partition by a order by b desc) as rn,
    b
FROM foo`,
	GoodExample: `SELECT
    a,
    row_number() over (
        partition by a
        order by b desc
    ) as rn,
    b
FROM foo`,
	Fix: "Break the line after '(', before ')' and before ORDER BY.",
}

func evalWindowKeywordsNewline(ctx *lint.RuleContext) []lint.Diagnostic {
	spec, parent := ctx.Segment, ctx.Parent()
	if parent == nil || !parent.IsType(segment.TypeBracketed) {
		return nil
	}

	siblings := segment.Of(parent.Children...)
	edits := requireNewlinesBefore(siblings, spec, 1)
	after := siblings.Select(nil, spec, segment.IsWhitespace())
	edits = append(edits, requireNewlinesAfter(after, spec, 1, "")...)

	// An ORDER BY opening the specification is covered by the check above.
	children := ctx.Children()
	if orderby := children.First(segment.IsType(segment.TypeOrderByClause)); len(orderby) > 0 &&
		children.Index(orderby[0]) > 0 {
		edits = append(edits, requireNewlinesBefore(children, orderby[0], 1)...)
	}

	if len(edits) == 0 {
		return nil
	}
	return []lint.Diagnostic{lint.NewDiagnostic(spec,
		"Window specification keywords should start on separate lines.", edits...)}
}
