package customfm

import (
	"github.com/customfm/fmlint/pkg/lint"
	"github.com/customfm/fmlint/pkg/segment"
)

// Messages reported by FinalSelectWildcard.
const (
	MsgMultipleSelectElements = "Multiple select elements found"
	MsgOnlyWildcard           = "Only element should be wildcard"
)

// FinalSelectWildcard requires the query after the CTEs of a WITH statement
// to be a plain SELECT *.
var FinalSelectWildcard = lint.RuleDef{
	ID:          "CustomFM_L006",
	Name:        "structure.final_select_wildcard",
	Group:       "structure",
	Groups:      []string{"all"},
	Aliases:     []string{"CustomFM_L005"},
	Description: "Last line should always include a select * from",
	Severity:    lint.SeverityWarning,
	CrawlTypes:  []string{segment.TypeWithCompoundStatement},
	Eval:        evalFinalSelectWildcard,

	Rationale: `All shaping of the output belongs in named CTEs. The final query
then reads "select * from <last cte>", and the output columns are defined in
exactly one place.`,
	BadExample: `with a as (select av from b)
select av, 1 from a`,
	GoodExample: `with rename as (select av from b)
select * from rename`,
	Fix: "Move the final column list into a CTE and select * from it.",
}

func evalFinalSelectWildcard(ctx *lint.RuleContext) []lint.Diagnostic {
	body := ctx.Children().Last(segment.IsType(segment.TypeSelectStatement, segment.TypeSetExpression))
	if len(body) == 0 {
		return nil
	}

	var diagnostics []lint.Diagnostic
	for _, stmt := range finalSelects(body[0]) {
		clause := segment.Of(stmt).Children(segment.IsType(segment.TypeSelectClause))
		if len(clause) == 0 {
			continue
		}
		elements := clause.Children(segment.IsType(segment.TypeSelectClauseElement))
		switch {
		case len(elements) > 1:
			diagnostics = append(diagnostics, lint.NewDiagnostic(clause[0], MsgMultipleSelectElements))
		case len(elements.Children(segment.IsType(segment.TypeWildcardExpression))) != 1:
			diagnostics = append(diagnostics, lint.NewDiagnostic(clause[0], MsgOnlyWildcard))
		}
	}
	return diagnostics
}

// finalSelects returns the SELECT statements making up a query body: the
// statement itself, or every branch of a set expression.
func finalSelects(body *segment.Segment) []*segment.Segment {
	switch body.Type {
	case segment.TypeSelectStatement:
		return []*segment.Segment{body}
	case segment.TypeSetExpression, segment.TypeBracketed:
		var out []*segment.Segment
		for _, c := range body.Children {
			out = append(out, finalSelects(c)...)
		}
		return out
	}
	return nil
}
