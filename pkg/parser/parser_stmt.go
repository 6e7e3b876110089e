package parser

import (
	"fmt"

	"github.com/customfm/fmlint/pkg/segment"
	"github.com/customfm/fmlint/pkg/token"
)

// Statement parsing: file, WITH, set operations, SELECT and its clauses.
//
// Grammar:
//
//	file                    → [statement] (";" [statement])*
//	query                   → with_compound_statement | set_or_select
//	with_compound_statement → WITH [RECURSIVE] cte ("," cte)* set_or_select
//	cte                     → name [cte_column_list] AS "(" query ")"
//	set_or_select           → select_like (set_operator select_like)* [ORDER BY ...] [LIMIT ...]
//	select_like             → select_statement | "(" query ")"
//	select_statement        → select_clause [from_clause] [where_clause] [groupby_clause]
//	                          [having_clause] [qualify_clause] [orderby_clause] [limit_clause]

func (p *Parser) parseFile() *segment.Segment {
	root := p.open(segment.TypeFile)
	for p.err == nil && !p.check(token.EOF) {
		if p.match(token.SEMI, "") {
			continue
		}
		p.parseStatement()
		if p.err != nil {
			break
		}
		if !p.check(token.SEMI) && !p.check(token.EOF) {
			p.unexpected(`";" or end of input`)
		}
	}
	// Trailing trivia belongs to the file.
	p.collectTrivia()
	p.flush()
	p.close()
	return root
}

func (p *Parser) parseStatement() {
	if !p.checkAny(token.SELECT, token.WITH, token.LPAREN) {
		p.fail(p.cur().Pos, fmt.Sprintf(ErrExpectedStatement, describe(p.cur())))
		return
	}
	p.open(segment.TypeStatement)
	p.parseQuery()
	p.close()
}

// parseQuery parses a full query: WITH, set expression or SELECT.
func (p *Parser) parseQuery() {
	if p.err != nil {
		return
	}
	if p.check(token.WITH) {
		p.parseWith()
		return
	}
	p.parseSetOrSelect()
}

func (p *Parser) parseWith() {
	p.open(segment.TypeWithCompoundStatement)
	defer p.close()

	p.expect(token.WITH, "")
	p.match(token.RECURSIVE, "")
	for p.err == nil {
		p.parseCTE()
		if !p.match(token.COMMA, "") {
			break
		}
	}
	if p.err != nil {
		return
	}
	p.parseSetOrSelect()
}

func (p *Parser) parseCTE() {
	p.open(segment.TypeCommonTableExpression)
	defer p.close()

	if !p.parseName() {
		return
	}
	if p.check(token.LPAREN) {
		p.open(segment.TypeCTEColumnList)
		p.parseBracketedNames()
		p.close()
	}
	p.expect(token.AS, "")
	p.parseBracketedQuery()
}

// parseSetOrSelect parses one SELECT, or a chain of them joined by set
// operators.
func (p *Parser) parseSetOrSelect() {
	p.parseSelectLike(false)
	if p.err != nil || !isSetOperator(p.cur().Type) {
		return
	}
	p.wrapLast(segment.TypeSetExpression)
	defer p.close()

	for p.err == nil && isSetOperator(p.cur().Type) {
		p.open(segment.TypeSetOperator)
		p.advance("")
		if !p.match(token.ALL, "") {
			p.match(token.DISTINCT, "")
		}
		p.close()
		p.parseSelectLike(true)
	}
	if p.check(token.ORDER) {
		p.parseOrderBy()
	}
	if p.check(token.LIMIT) {
		p.parseLimit()
	}
}

func isSetOperator(t token.TokenType) bool {
	return t == token.UNION || t == token.INTERSECT || t == token.EXCEPT
}

// parseSelectLike parses a SELECT or a bracketed query. A set branch leaves
// ORDER BY and LIMIT to the enclosing set_expression.
func (p *Parser) parseSelectLike(setBranch bool) {
	if p.err != nil {
		return
	}
	if p.check(token.LPAREN) {
		p.parseBracketedQuery()
		return
	}
	p.parseSelectStatement(setBranch)
}

// parseBracketedQuery parses "(" query ")".
func (p *Parser) parseBracketedQuery() {
	p.open(segment.TypeBracketed)
	defer p.close()
	if !p.expect(token.LPAREN, "") {
		return
	}
	if !p.checkAny(token.SELECT, token.WITH, token.LPAREN) {
		p.fail(p.cur().Pos, fmt.Sprintf(ErrExpectedStatement, describe(p.cur())))
		return
	}
	p.parseQuery()
	p.expect(token.RPAREN, "")
}

func (p *Parser) parseSelectStatement(setBranch bool) {
	if !p.check(token.SELECT) {
		p.fail(p.cur().Pos, fmt.Sprintf(ErrExpectedStatement, describe(p.cur())))
		return
	}
	p.open(segment.TypeSelectStatement)
	defer p.close()

	p.parseSelectClause()
	if p.check(token.FROM) {
		p.parseFromClause()
	}
	if p.check(token.WHERE) {
		p.parseKeywordClause(segment.TypeWhereClause)
	}
	if p.check(token.GROUP) {
		p.parseGroupBy()
	}
	if p.check(token.HAVING) {
		p.parseKeywordClause(segment.TypeHavingClause)
	}
	if typ, ok := p.isClauseStart(p.cur()); ok {
		p.parseKeywordClause(typ)
	}
	if setBranch {
		return
	}
	if p.check(token.ORDER) {
		p.parseOrderBy()
	}
	if p.check(token.LIMIT) {
		p.parseLimit()
	}
}

// ---------- SELECT list ----------

func (p *Parser) parseSelectClause() {
	p.open(segment.TypeSelectClause)
	defer p.close()

	p.expect(token.SELECT, "")
	if p.checkAny(token.DISTINCT, token.ALL) {
		p.open(segment.TypeSelectModifier)
		p.advance("")
		p.close()
	}
	for p.err == nil {
		p.parseSelectElement()
		if !p.match(token.COMMA, "") {
			break
		}
	}
}

func (p *Parser) parseSelectElement() {
	p.open(segment.TypeSelectClauseElement)
	defer p.close()

	if p.isWildcard() {
		p.open(segment.TypeWildcardExpression)
		p.open(segment.TypeWildcardIdentifier)
		for p.err == nil && !p.check(token.STAR) {
			p.parseNamePart()
			p.expect(token.DOT, "")
		}
		p.expect(token.STAR, "")
		p.close()
		p.close()
		return
	}
	p.parseExpression()
	p.parseOptionalAlias()
}

// isWildcard reports whether the next tokens are *, or name.* / a.b.*.
func (p *Parser) isWildcard() bool {
	i := 0
	for isName(p.peekAt(i)) && p.peekAt(i+1).Type == token.DOT {
		i += 2
	}
	return p.peekAt(i).Type == token.STAR
}

func (p *Parser) parseOptionalAlias() {
	if p.err != nil {
		return
	}
	if p.check(token.AS) {
		p.open(segment.TypeAliasExpression)
		p.advance("")
		p.parseName()
		p.close()
		return
	}
	if p.isAlias(p.cur()) {
		p.open(segment.TypeAliasExpression)
		p.parseName()
		p.close()
	}
}

// ---------- Simple clauses ----------

// parseKeywordClause parses KEYWORD expression (WHERE, HAVING, QUALIFY).
func (p *Parser) parseKeywordClause(typ string) {
	p.open(typ)
	defer p.close()
	p.advance("")
	p.parseExpression()
}

func (p *Parser) parseGroupBy() {
	p.open(segment.TypeGroupByClause)
	defer p.close()
	p.expect(token.GROUP, "")
	p.expect(token.BY, "")
	p.parseExpressionList()
}

// parseOrderBy parses ORDER BY expr [ASC|DESC] [NULLS FIRST|LAST], ...
func (p *Parser) parseOrderBy() {
	p.open(segment.TypeOrderByClause)
	defer p.close()
	p.expect(token.ORDER, "")
	p.expect(token.BY, "")
	for p.err == nil {
		p.parseExpression()
		if !p.match(token.ASC, "") {
			p.match(token.DESC, "")
		}
		if p.match(token.NULLS, "") {
			if !p.match(token.FIRST, "") {
				p.expect(token.LAST, "")
			}
		}
		if !p.match(token.COMMA, "") {
			break
		}
	}
}

func (p *Parser) parseLimit() {
	p.open(segment.TypeLimitClause)
	defer p.close()
	p.expect(token.LIMIT, "")
	p.parseExpression()
	if p.match(token.OFFSET, "") {
		p.parseExpression()
	}
}

// ---------- Names ----------

// parseName consumes a single identifier.
func (p *Parser) parseName() bool {
	if p.err != nil {
		return false
	}
	if !isName(p.cur()) {
		p.unexpected("identifier")
		return false
	}
	p.parseNamePart()
	return true
}

func (p *Parser) parseNamePart() {
	if p.check(token.QUOTED) {
		p.advance(segment.TypeQuotedIdentifier)
		return
	}
	if !isName(p.cur()) {
		p.unexpected("identifier")
		return
	}
	p.advance(segment.TypeIdentifier)
}

// parseDottedName consumes name ("." name)*.
func (p *Parser) parseDottedName() {
	p.parseName()
	for p.err == nil && p.check(token.DOT) && isName(p.peekAt(1)) {
		p.advance("")
		p.parseNamePart()
	}
}

// parseBracketedNames parses "(" name ("," name)* ")".
func (p *Parser) parseBracketedNames() {
	p.open(segment.TypeBracketed)
	defer p.close()
	p.expect(token.LPAREN, "")
	for p.err == nil {
		p.parseName()
		if !p.match(token.COMMA, "") {
			break
		}
	}
	p.expect(token.RPAREN, "")
}
