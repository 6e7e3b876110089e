package parser

import (
	"fmt"

	"github.com/customfm/fmlint/pkg/dialect"
	"github.com/customfm/fmlint/pkg/segment"
	"github.com/customfm/fmlint/pkg/token"
)

// Expression parsing. Expressions are flat: operands and operators are
// siblings, with no precedence tree.
//
// Grammar:
//
//	expression → operand (operator operand | postfix)*
//	operator   → AND | OR | + | - | * | / | % | || | = | <> | != | < | > | <= | >=
//	postfix    → IS [NOT] (NULL | TRUE | FALSE | DISTINCT FROM operand)
//	           | [NOT] IN "(" ... ")" | [NOT] (LIKE | ILIKE) operand
//	           | [NOT] BETWEEN operand AND operand | :: data_type
//	operand    → [NOT | - | +] (column_reference | literal | function | case_expression
//	           | cast_expression | EXISTS "(" query ")" | "(" query | expression_list ")")

// unwrapped lists the single operands that are not wrapped in an
// expression node.
var unwrapped = map[string]bool{
	segment.TypeColumnReference: true,
	segment.TypeFunction:        true,
	segment.TypeNumericLiteral:  true,
	segment.TypeQuotedLiteral:   true,
	segment.TypeNullLiteral:     true,
	segment.TypeBooleanLiteral:  true,
	segment.TypePlaceholder:     true,
	segment.TypeStar:            true,
}

func (p *Parser) parseExpression() {
	if p.err != nil {
		return
	}
	node := p.open(segment.TypeExpression)
	p.parseOperand()
	for p.err == nil && p.parseOperatorTail() {
	}
	p.close()
	if len(node.Children) == 1 && unwrapped[node.Children[0].Type] {
		p.unwrap(node)
	}
}

func (p *Parser) parseExpressionList() {
	for p.err == nil {
		p.parseExpression()
		if !p.match(token.COMMA, "") {
			break
		}
	}
}

// parseOperatorTail consumes one operator with its right operand, or one
// postfix predicate. It returns false when the expression ends.
func (p *Parser) parseOperatorTail() bool {
	tok := p.cur()
	switch {
	case isBinaryOperator(tok.Type):
		p.advance(segment.TypeBinaryOperator)
		p.parseOperand()
	case isComparisonOperator(tok.Type):
		p.advance(segment.TypeComparisonOperator)
		p.parseOperand()
	case tok.Type == token.IS:
		p.advance("")
		p.match(token.NOT, "")
		switch {
		case p.checkAny(token.NULL, token.TRUE, token.FALSE):
			p.advance("")
		case p.check(token.DISTINCT):
			p.advance("")
			p.expect(token.FROM, "")
			p.parseOperand()
		default:
			p.unexpected("NULL, TRUE, FALSE or DISTINCT FROM")
		}
	case tok.Type == token.NOT && p.isNegatablePredicate(p.peekAt(1).Type):
		p.advance("")
		return p.parseOperatorTail()
	case tok.Type == token.IN:
		p.advance("")
		p.parseBracketedExpression()
	case tok.Type == token.LIKE || tok.Type == dialect.TokenIlike:
		p.advance("")
		p.parseOperand()
	case tok.Type == token.BETWEEN:
		p.advance("")
		p.parseOperand()
		p.expect(token.AND, segment.TypeKeyword)
		p.parseOperand()
	case tok.Type == token.DCOLON:
		p.advance("")
		p.parseDataType()
	case tok.Type == token.LBRACKET:
		p.advance("")
		p.parseExpression()
		p.expect(token.RBRACKET, "")
	default:
		return false
	}
	return true
}

func (p *Parser) isNegatablePredicate(t token.TokenType) bool {
	return t == token.IN || t == token.LIKE || t == token.BETWEEN || t == dialect.TokenIlike
}

func isBinaryOperator(t token.TokenType) bool {
	switch t {
	case token.AND, token.OR, token.PLUS, token.MINUS, token.STAR,
		token.SLASH, token.PERCENT, token.DPIPE:
		return true
	}
	return false
}

func isComparisonOperator(t token.TokenType) bool {
	switch t {
	case token.EQ, token.NE, token.LT, token.GT, token.LE, token.GE:
		return true
	}
	return false
}

func (p *Parser) parseOperand() {
	if p.err != nil {
		return
	}
	p.depth++
	defer func() { p.depth-- }()
	if p.depth > maxDepth {
		p.fail(p.cur().Pos, "expression nested too deeply")
		return
	}

	tok := p.cur()
	switch {
	case tok.Type == token.NOT:
		p.advance("")
		p.parseOperand()
	case tok.Type == token.MINUS || tok.Type == token.PLUS:
		p.advance(segment.TypeSignOperator)
		p.parseOperand()
	case tok.Type == token.LPAREN:
		p.parseBracketedExpression()
	case tok.Type == token.CASE:
		p.parseCase()
	case tok.Type == token.CAST:
		p.parseCast()
	case tok.Type == token.EXISTS:
		p.advance("")
		p.parseBracketedQuery()
	case tok.Type == token.NUMBER, tok.Type == token.STRING, tok.Type == token.NULL,
		tok.Type == token.TRUE, tok.Type == token.FALSE, tok.Type == token.PLACEHOLDER,
		tok.Type == token.STAR:
		p.advance("")
	case (tok.Type == token.LEFT || tok.Type == token.RIGHT) && p.checkPeek(token.LPAREN):
		p.parseFunction()
	case isName(tok) && p.checkPeek(token.LPAREN):
		p.parseFunction()
	case tok.Type == token.IDENT && p.checkPeek(token.STRING):
		// Typed literal: date '2024-01-01', interval '1 day'
		p.advance(segment.TypeKeyword)
		p.advance("")
	case isName(tok):
		p.open(segment.TypeColumnReference)
		p.parseDottedName()
		p.close()
	default:
		p.fail(tok.Pos, fmt.Sprintf(ErrExpectedExpression, describe(tok)))
	}
}

// parseBracketedExpression parses "(" [query | expression ("," expression)*] ")".
func (p *Parser) parseBracketedExpression() {
	p.open(segment.TypeBracketed)
	defer p.close()

	if !p.expect(token.LPAREN, "") {
		return
	}
	switch {
	case p.checkAny(token.SELECT, token.WITH):
		p.parseQuery()
	case p.check(token.RPAREN):
	default:
		p.parseExpressionList()
	}
	p.expect(token.RPAREN, "")
}

// ---------- CASE ----------

// parseCase parses CASE [expr] (WHEN expr THEN expr)+ [ELSE expr] END.
func (p *Parser) parseCase() {
	p.open(segment.TypeCaseExpression)
	defer p.close()

	p.expect(token.CASE, "")
	if !p.check(token.WHEN) {
		p.parseExpression()
	}
	if p.err == nil && !p.check(token.WHEN) {
		p.unexpected("WHEN")
		return
	}
	for p.err == nil && p.check(token.WHEN) {
		p.open(segment.TypeWhenClause)
		p.advance("")
		p.parseExpression()
		p.expect(token.THEN, "")
		p.parseExpression()
		p.close()
	}
	if p.err == nil && p.check(token.ELSE) {
		p.open(segment.TypeElseClause)
		p.advance("")
		p.parseExpression()
		p.close()
	}
	p.expect(token.END, "")
}

// ---------- Functions ----------

// parseCast parses CAST "(" expression AS data_type ")".
func (p *Parser) parseCast() {
	p.open(segment.TypeFunction)
	defer p.close()

	p.open(segment.TypeFunctionName)
	p.advance(segment.TypeKeyword)
	p.close()

	p.open(segment.TypeBracketed)
	defer p.close()
	p.expect(token.LPAREN, "")
	p.parseExpression()
	p.expect(token.AS, "")
	p.parseDataType()
	p.expect(token.RPAREN, "")
}

// parseDataType parses name ["(" number ("," number)* ")"] ["[" "]"].
func (p *Parser) parseDataType() {
	if p.err != nil {
		return
	}
	p.open(segment.TypeDataType)
	defer p.close()

	p.parseName()
	if p.check(token.LPAREN) {
		p.parseBracketedExpression()
	}
	if p.check(token.LBRACKET) && p.checkPeek(token.RBRACKET) {
		p.advance("")
		p.advance("")
	}
}

// parseFunction parses name "(" [DISTINCT] [args] [ORDER BY ...] ")"
// followed by optional WITHIN GROUP, FILTER and OVER clauses.
func (p *Parser) parseFunction() {
	p.open(segment.TypeFunction)
	defer p.close()

	p.open(segment.TypeFunctionName)
	p.advance(segment.TypeIdentifier)
	for p.err == nil && p.check(token.DOT) && isName(p.peekAt(1)) {
		p.advance("")
		p.parseNamePart()
	}
	p.close()

	p.parseFunctionArgs()

	if p.check(token.WITHIN) && p.checkPeek(token.GROUP) {
		p.advance("")
		p.advance("")
		p.open(segment.TypeBracketed)
		p.expect(token.LPAREN, "")
		p.parseOrderBy()
		p.expect(token.RPAREN, "")
		p.close()
	}
	if p.err == nil && p.check(token.FILTER) && p.checkPeek(token.LPAREN) {
		p.open(segment.TypeFilterClause)
		p.advance("")
		p.open(segment.TypeBracketed)
		p.expect(token.LPAREN, "")
		if p.check(token.WHERE) {
			p.parseKeywordClause(segment.TypeWhereClause)
		} else {
			p.unexpected("WHERE")
		}
		p.expect(token.RPAREN, "")
		p.close()
		p.close()
	}
	if p.err == nil && p.check(token.OVER) {
		p.parseOverClause()
	}
}

func (p *Parser) parseFunctionArgs() {
	p.open(segment.TypeBracketed)
	defer p.close()

	if !p.expect(token.LPAREN, "") {
		return
	}
	if p.match(token.RPAREN, "") {
		return
	}
	p.match(token.DISTINCT, "")
	if p.checkAny(token.SELECT, token.WITH) {
		p.parseQuery()
		p.expect(token.RPAREN, "")
		return
	}
	for p.err == nil {
		p.parseExpression()
		// extract(year FROM d), substring(s FROM 2)
		if p.match(token.FROM, "") {
			p.parseExpression()
		}
		if !p.match(token.COMMA, "") {
			break
		}
	}
	if p.err == nil && p.check(token.ORDER) {
		p.parseOrderBy()
	}
	p.expect(token.RPAREN, "")
}
