package parser

import (
	"github.com/customfm/fmlint/pkg/segment"
	"github.com/customfm/fmlint/pkg/token"
)

// Window specification parsing: OVER clauses, PARTITION BY, ORDER BY, frames.
//
// Grammar:
//
//	over_clause          → OVER (name | "(" [window_specification] ")")
//	window_specification → [name] [partitionby_clause] [orderby_clause] [frame_clause]
//	partitionby_clause   → PARTITION BY expression ("," expression)*
//	frame_clause         → (ROWS|RANGE|GROUPS) (BETWEEN frame_bound AND frame_bound | frame_bound)
//	frame_bound          → UNBOUNDED (PRECEDING|FOLLOWING) | CURRENT ROW | expression (PRECEDING|FOLLOWING)

func (p *Parser) parseOverClause() {
	p.open(segment.TypeOverClause)
	defer p.close()

	p.expect(token.OVER, "")
	if !p.check(token.LPAREN) {
		p.parseName()
		return
	}
	p.open(segment.TypeBracketed)
	defer p.close()
	p.advance("")
	if !p.check(token.RPAREN) {
		p.parseWindowSpecification()
	}
	p.expect(token.RPAREN, "")
}

func (p *Parser) parseWindowSpecification() {
	p.open(segment.TypeWindowSpecification)
	defer p.close()

	// Named base window
	if p.check(token.IDENT) {
		p.advance(segment.TypeIdentifier)
	}
	if p.check(token.PARTITION) {
		p.open(segment.TypePartitionByClause)
		p.advance("")
		p.expect(token.BY, "")
		p.parseExpressionList()
		p.close()
	}
	if p.err == nil && p.check(token.ORDER) {
		p.parseOrderBy()
	}
	if p.err == nil && p.checkAny(token.ROWS, token.RANGE, token.GROUPS) {
		p.parseFrameClause()
	}
}

func (p *Parser) parseFrameClause() {
	p.open(segment.TypeFrameClause)
	defer p.close()

	p.advance("")
	if p.match(token.BETWEEN, "") {
		p.parseFrameBound()
		p.expect(token.AND, segment.TypeKeyword)
		p.parseFrameBound()
		return
	}
	p.parseFrameBound()
}

func (p *Parser) parseFrameBound() {
	if p.err != nil {
		return
	}
	switch {
	case p.match(token.UNBOUNDED, ""):
	case p.match(token.CURRENT, ""):
		p.expect(token.ROW, "")
		return
	default:
		p.parseExpression()
	}
	if !p.match(token.PRECEDING, "") {
		p.expect(token.FOLLOWING, "")
	}
}
