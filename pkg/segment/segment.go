// Package segment defines the concrete syntax tree produced by the parser.
//
// A tree is lossless: concatenating the raw text of every leaf, in order,
// reproduces the parsed source byte for byte. Node types use the same names
// sqlfluff gives its segments (select_clause, join_on_condition, ...), so
// layout rules can be described in those terms.
package segment

import (
	"strings"

	"github.com/customfm/fmlint/pkg/token"
)

// Leaf segment types.
const (
	TypeWhitespace         = "whitespace"
	TypeNewline            = "newline"
	TypeComment            = "comment"
	TypeTemplateTag        = "template_tag"
	TypePlaceholder        = "placeholder"
	TypeKeyword            = "keyword"
	TypeIdentifier         = "identifier"
	TypeQuotedIdentifier   = "quoted_identifier"
	TypeNumericLiteral     = "numeric_literal"
	TypeQuotedLiteral      = "quoted_literal"
	TypeComma              = "comma"
	TypeDot                = "dot"
	TypeSemicolon          = "statement_terminator"
	TypeStartBracket       = "start_bracket"
	TypeEndBracket         = "end_bracket"
	TypeStar               = "star"
	TypeBinaryOperator     = "binary_operator"
	TypeComparisonOperator = "comparison_operator"
	TypeCastingOperator    = "casting_operator"
	TypeSignOperator       = "sign_indicator"
)

// Branch segment types.
const (
	TypeFile                  = "file"
	TypeStatement             = "statement"
	TypeWithCompoundStatement = "with_compound_statement"
	TypeCommonTableExpression = "common_table_expression"
	TypeCTEColumnList         = "cte_column_list"
	TypeSetExpression         = "set_expression"
	TypeSetOperator           = "set_operator"
	TypeSelectStatement       = "select_statement"
	TypeSelectClause          = "select_clause"
	TypeSelectModifier        = "select_clause_modifier"
	TypeSelectClauseElement   = "select_clause_element"
	TypeWildcardExpression    = "wildcard_expression"
	TypeWildcardIdentifier    = "wildcard_identifier"
	TypeAliasExpression       = "alias_expression"
	TypeFromClause            = "from_clause"
	TypeFromExpression        = "from_expression"
	TypeFromExpressionElement = "from_expression_element"
	TypeTableExpression       = "table_expression"
	TypeTableReference        = "table_reference"
	TypeJoinClause            = "join_clause"
	TypeJoinOnCondition       = "join_on_condition"
	TypeUsingClause           = "using_clause"
	TypeWhereClause           = "where_clause"
	TypeGroupByClause         = "groupby_clause"
	TypeHavingClause          = "having_clause"
	TypeQualifyClause         = "qualify_clause"
	TypeOrderByClause         = "orderby_clause"
	TypeLimitClause           = "limit_clause"
	TypeExpression            = "expression"
	TypeBracketed             = "bracketed"
	TypeColumnReference       = "column_reference"
	TypeFunction              = "function"
	TypeFunctionName          = "function_name"
	TypeOverClause            = "over_clause"
	TypeFilterClause          = "filter_clause"
	TypeWindowSpecification   = "window_specification"
	TypePartitionByClause     = "partitionby_clause"
	TypeFrameClause           = "frame_clause"
	TypeCaseExpression        = "case_expression"
	TypeWhenClause            = "when_clause"
	TypeElseClause            = "else_clause"
	TypeCastExpression        = "cast_expression"
	TypeDataType              = "data_type"
	TypeLiteral               = "literal"
	TypeNullLiteral           = "null_literal"
	TypeBooleanLiteral        = "boolean_literal"
)

// Segment is a node of the concrete syntax tree.
//
// Leaves carry Raw and Tok; branches carry Children. Segments are never
// mutated after parsing.
type Segment struct {
	Type     string
	Raw      string          // leaf text; empty for branches
	Tok      token.TokenType // leaf token type
	Children []*Segment
	Span     token.Span
}

// NewLeaf creates a leaf segment from a token.
func NewLeaf(typ string, tok token.Token) *Segment {
	return &Segment{
		Type: typ,
		Raw:  tok.Literal,
		Tok:  tok.Type,
		Span: token.Span{Start: tok.Pos, End: tok.End()},
	}
}

// IsLeaf reports whether the segment has no children.
func (s *Segment) IsLeaf() bool {
	return len(s.Children) == 0
}

// IsType reports whether the segment is any of the given types.
func (s *Segment) IsType(types ...string) bool {
	for _, t := range types {
		if s.Type == t {
			return true
		}
	}
	return false
}

// IsWhitespace reports whether the segment is whitespace or a newline.
func (s *Segment) IsWhitespace() bool {
	return s.Type == TypeWhitespace || s.Type == TypeNewline
}

// IsCode reports whether the segment contributes to the SQL itself. Trivia
// (whitespace, newlines, comments and template tags) is not code.
func (s *Segment) IsCode() bool {
	if s.IsLeaf() {
		return !token.IsTrivia(s.Tok)
	}
	for _, c := range s.Children {
		if c.IsCode() {
			return true
		}
	}
	return false
}

// IsKeyword reports whether the segment is a keyword leaf matching one of
// the words, compared case-insensitively. Keywords used as names do not
// count.
func (s *Segment) IsKeyword(words ...string) bool {
	if !s.IsLeaf() || !token.IsKeyword(s.Tok) || s.Type == TypeIdentifier {
		return false
	}
	for _, w := range words {
		if strings.EqualFold(s.Raw, w) {
			return true
		}
	}
	return false
}

// Text returns the source text covered by the segment.
func (s *Segment) Text() string {
	if s.IsLeaf() {
		return s.Raw
	}
	var b strings.Builder
	s.render(&b)
	return b.String()
}

func (s *Segment) render(b *strings.Builder) {
	if s.IsLeaf() {
		b.WriteString(s.Raw)
		return
	}
	for _, c := range s.Children {
		c.render(b)
	}
}

// Start returns the position of the first byte of the segment.
func (s *Segment) Start() token.Position {
	return s.Span.Start
}

// End returns the position just past the last byte of the segment.
func (s *Segment) End() token.Position {
	return s.Span.End
}

// Leaves returns every leaf under s in source order.
func (s *Segment) Leaves() []*Segment {
	var out []*Segment
	var collect func(*Segment)
	collect = func(n *Segment) {
		if n.IsLeaf() {
			out = append(out, n)
			return
		}
		for _, c := range n.Children {
			collect(c)
		}
	}
	collect(s)
	return out
}

// Render reproduces the source text of a tree.
func Render(root *Segment) string {
	if root == nil {
		return ""
	}
	return root.Text()
}
