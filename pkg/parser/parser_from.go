package parser

import (
	"fmt"

	"github.com/customfm/fmlint/pkg/segment"
	"github.com/customfm/fmlint/pkg/token"
)

// FROM clause parsing: table references, subqueries, and JOINs.
//
// Grammar:
//
//	from_clause             → FROM from_expression ("," from_expression)*
//	from_expression         → from_expression_element join_clause*
//	from_expression_element → table_expression [alias_expression]
//	table_expression        → table_reference | function | "(" query ")" | placeholder
//	join_clause             → [NATURAL] [INNER | CROSS | (LEFT|RIGHT|FULL) [OUTER]] JOIN
//	                          from_expression_element [join_on_condition | using_clause]
//	join_on_condition       → ON expression
//	using_clause            → USING "(" name ("," name)* ")"

func (p *Parser) parseFromClause() {
	p.open(segment.TypeFromClause)
	defer p.close()

	p.expect(token.FROM, "")
	for p.err == nil {
		p.parseFromExpression()
		if !p.match(token.COMMA, "") {
			break
		}
	}
}

func (p *Parser) parseFromExpression() {
	p.open(segment.TypeFromExpression)
	defer p.close()

	p.parseFromExpressionElement()
	for p.err == nil && p.isJoinStart() {
		p.parseJoinClause()
	}
}

func (p *Parser) parseFromExpressionElement() {
	if p.err != nil {
		return
	}
	p.open(segment.TypeFromExpressionElement)
	defer p.close()

	p.open(segment.TypeTableExpression)
	switch tok := p.cur(); {
	case tok.Type == token.LPAREN:
		p.parseBracketedQuery()
	case tok.Type == token.PLACEHOLDER:
		p.advance("")
	case tok.Type == token.LATERAL:
		p.advance("")
		p.parseBracketedQuery()
	case isName(tok) && p.checkPeek(token.LPAREN):
		p.parseFunction()
	case isName(tok):
		p.open(segment.TypeTableReference)
		p.parseDottedName()
		p.close()
	default:
		p.fail(tok.Pos, fmt.Sprintf(ErrExpectedTableOrSubqry, describe(tok)))
	}
	p.close()

	if p.err == nil && (p.check(token.AS) || p.isAlias(p.cur())) {
		p.parseOptionalAlias()
		if p.check(token.LPAREN) {
			// t AS x(a, b)
			p.parseBracketedNames()
		}
	}
}

// isJoinStart reports whether the next tokens begin a join clause.
func (p *Parser) isJoinStart() bool {
	switch p.cur().Type {
	case token.JOIN, token.NATURAL, token.INNER, token.CROSS, token.FULL:
		return true
	case token.LEFT, token.RIGHT:
		return !p.checkPeek(token.LPAREN)
	}
	return false
}

func (p *Parser) parseJoinClause() {
	p.open(segment.TypeJoinClause)
	defer p.close()

	p.match(token.NATURAL, "")
	switch {
	case p.match(token.INNER, ""), p.match(token.CROSS, ""):
	case p.match(token.LEFT, ""), p.match(token.RIGHT, ""), p.match(token.FULL, ""):
		p.match(token.OUTER, "")
	}
	p.expect(token.JOIN, "")
	p.parseFromExpressionElement()
	if p.err != nil {
		return
	}

	switch {
	case p.check(token.ON):
		p.open(segment.TypeJoinOnCondition)
		p.advance("")
		p.parseExpression()
		p.close()
	case p.check(token.USING):
		p.open(segment.TypeUsingClause)
		p.advance("")
		p.parseBracketedNames()
		p.close()
	}
}
