// Package parser builds a lossless concrete syntax tree from SQL.
//
// # Usage
//
//	d, _ := dialect.Lookup("duckdb")
//	tree, err := parser.Parse("SELECT a FROM t", d)
//	if err != nil {
//	    // *LexError or *ParseError
//	}
//
// The tree keeps every byte of input. Whitespace, newlines, comments and
// template tags are leaves placed in the deepest node that contains the code
// on both sides of them, so a clause never starts or ends with trivia.
//
// # Grammar Overview
//
// The parser covers the query grammar that layout rules inspect:
//
//	file       → statement (";" statement)* [";"]
//	statement  → with_compound_statement | set_expression | select_statement
//	select     → select_clause [from] [where] [group by] [having]
//	             [qualify] [order by] [limit]
//
// Expressions are flat, as in sqlfluff: operands and operators are siblings
// inside one expression node. See each file for the rules of that section.
package parser

import (
	"fmt"
	"strings"

	"github.com/customfm/fmlint/pkg/dialect"
	"github.com/customfm/fmlint/pkg/segment"
	"github.com/customfm/fmlint/pkg/token"
)

const maxDepth = 500

// Parser builds a CST from a token stream.
type Parser struct {
	toks    []token.Token
	pos     int // index of the next unconsumed token, trivia included
	dialect *dialect.Dialect

	stack   []*segment.Segment // open nodes, root first
	pending []*segment.Segment // trivia not yet owned by a node
	depth   int
	err     error
}

// Parse parses sql into a tree rooted at a "file" segment. d may be nil, in
// which case no dialect keywords or symbols are recognised.
func Parse(sql string, d *dialect.Dialect) (*segment.Segment, error) {
	toks, err := Tokenize(sql, d)
	if err != nil {
		return nil, err
	}
	p := &Parser{toks: toks, dialect: d}
	root := p.parseFile()
	if p.err != nil {
		return nil, p.err
	}
	return root, nil
}

// ---------- Token Helpers ----------

// peekAt returns the n-th code token ahead, skipping trivia.
func (p *Parser) peekAt(n int) token.Token {
	for i := p.pos; i < len(p.toks); i++ {
		if token.IsTrivia(p.toks[i].Type) {
			continue
		}
		if n == 0 {
			return p.toks[i]
		}
		n--
	}
	return p.toks[len(p.toks)-1]
}

// cur returns the next code token.
func (p *Parser) cur() token.Token {
	return p.peekAt(0)
}

// check returns true if the next code token is of the given type.
func (p *Parser) check(t token.TokenType) bool {
	return p.cur().Type == t
}

// checkAny returns true if the next code token is any of the types.
func (p *Parser) checkAny(types ...token.TokenType) bool {
	ct := p.cur().Type
	for _, t := range types {
		if ct == t {
			return true
		}
	}
	return false
}

// checkPeek returns true if the code token after the next is of the given type.
func (p *Parser) checkPeek(t token.TokenType) bool {
	return p.peekAt(1).Type == t
}

// advance consumes the next code token as a leaf of the given segment type.
// An empty type derives it from the token.
func (p *Parser) advance(typ string) *segment.Segment {
	p.collectTrivia()
	tok := p.toks[p.pos]
	if tok.Type == token.EOF {
		p.fail(tok.Pos, fmt.Sprintf(ErrUnexpectedInput, "end of input"))
		return nil
	}
	p.pos++
	if typ == "" {
		typ = leafType(tok.Type)
	}
	leaf := segment.NewLeaf(typ, tok)
	p.flush()
	p.top().Children = append(p.top().Children, leaf)
	return leaf
}

// match consumes the next token as a leaf if it has type t.
func (p *Parser) match(t token.TokenType, typ string) bool {
	if p.err == nil && p.check(t) {
		p.advance(typ)
		return true
	}
	return false
}

// expect consumes a token of type t or records an error.
func (p *Parser) expect(t token.TokenType, typ string) bool {
	if p.match(t, typ) {
		return true
	}
	p.unexpected(t.String())
	return false
}

func (p *Parser) unexpected(want string) {
	got := p.cur()
	p.fail(got.Pos, fmt.Sprintf(ErrUnexpectedToken, describe(got), want))
}

// fail records the first error. Parsing unwinds once an error is set.
func (p *Parser) fail(pos token.Position, msg string) {
	if p.err == nil {
		p.err = &ParseError{Pos: pos, Message: msg}
	}
}

func describe(tok token.Token) string {
	if tok.Type == token.EOF {
		return "end of input"
	}
	return fmt.Sprintf("%q", tok.Literal)
}

// ---------- Tree Helpers ----------

func (p *Parser) top() *segment.Segment {
	return p.stack[len(p.stack)-1]
}

// collectTrivia moves the trivia before the next code token to pending.
func (p *Parser) collectTrivia() {
	for p.pos < len(p.toks) && token.IsTrivia(p.toks[p.pos].Type) {
		tok := p.toks[p.pos]
		p.pending = append(p.pending, segment.NewLeaf(leafType(tok.Type), tok))
		p.pos++
	}
}

// flush hands pending trivia to the innermost open node.
func (p *Parser) flush() {
	if len(p.pending) == 0 || len(p.stack) == 0 {
		return
	}
	p.top().Children = append(p.top().Children, p.pending...)
	p.pending = nil
}

// open starts a child node of the innermost open node.
func (p *Parser) open(typ string) *segment.Segment {
	p.collectTrivia()
	p.flush()
	node := &segment.Segment{Type: typ}
	if len(p.stack) > 0 {
		p.top().Children = append(p.top().Children, node)
	}
	p.stack = append(p.stack, node)
	return node
}

// close ends the innermost open node. Trailing trivia stays pending.
func (p *Parser) close() *segment.Segment {
	node := p.top()
	p.stack = p.stack[:len(p.stack)-1]
	setSpan(node, p.cur().Pos)
	return node
}

// wrapLast moves the last child of the innermost node into a new open node
// of type typ.
func (p *Parser) wrapLast(typ string) *segment.Segment {
	parent := p.top()
	last := parent.Children[len(parent.Children)-1]
	node := &segment.Segment{Type: typ, Children: []*segment.Segment{last}}
	parent.Children[len(parent.Children)-1] = node
	p.stack = append(p.stack, node)
	return node
}

// unwrap replaces node in its parent by its only child.
func (p *Parser) unwrap(node *segment.Segment) {
	parent := p.top()
	for i, c := range parent.Children {
		if c == node {
			parent.Children[i] = node.Children[0]
			return
		}
	}
}

func setSpan(node *segment.Segment, fallback token.Position) {
	if len(node.Children) == 0 {
		node.Span = token.Span{Start: fallback, End: fallback}
		return
	}
	node.Span = token.Span{
		Start: node.Children[0].Span.Start,
		End:   node.Children[len(node.Children)-1].Span.End,
	}
}

// ---------- Keyword Helpers ----------

// softKeywords may be used as identifiers where a name is expected.
var softKeywords = map[token.TokenType]bool{
	token.ASC: true, token.DESC: true, token.CURRENT: true, token.FILTER: true,
	token.FIRST: true, token.FOLLOWING: true, token.GROUPS: true, token.LAST: true,
	token.NULLS: true, token.PARTITION: true, token.PRECEDING: true, token.RANGE: true,
	token.RECURSIVE: true, token.ROW: true, token.ROWS: true, token.UNBOUNDED: true,
	token.WITHIN: true,
}

// isName reports whether tok can name a column, table or function.
func isName(tok token.Token) bool {
	return tok.Type == token.IDENT || tok.Type == token.QUOTED || softKeywords[tok.Type]
}

// isAlias reports whether tok is an implicit alias (no AS).
func (p *Parser) isAlias(tok token.Token) bool {
	switch tok.Type {
	case token.QUOTED:
		return true
	case token.IDENT:
		return p.dialect == nil || !p.dialect.IsReservedWord(strings.ToLower(tok.Literal))
	}
	return false
}

// isClauseStart reports whether tok begins a dialect clause such as QUALIFY.
func (p *Parser) isClauseStart(tok token.Token) (string, bool) {
	if p.dialect == nil {
		return "", false
	}
	return p.dialect.IsClauseToken(tok.Type)
}

func leafType(t token.TokenType) string {
	switch t {
	case token.WHITESPACE:
		return segment.TypeWhitespace
	case token.NEWLINE:
		return segment.TypeNewline
	case token.COMMENT:
		return segment.TypeComment
	case token.TEMPLATE_TAG:
		return segment.TypeTemplateTag
	case token.PLACEHOLDER:
		return segment.TypePlaceholder
	case token.IDENT:
		return segment.TypeIdentifier
	case token.QUOTED:
		return segment.TypeQuotedIdentifier
	case token.NUMBER:
		return segment.TypeNumericLiteral
	case token.STRING:
		return segment.TypeQuotedLiteral
	case token.COMMA:
		return segment.TypeComma
	case token.DOT:
		return segment.TypeDot
	case token.SEMI:
		return segment.TypeSemicolon
	case token.LPAREN, token.LBRACKET:
		return segment.TypeStartBracket
	case token.RPAREN, token.RBRACKET:
		return segment.TypeEndBracket
	case token.STAR:
		return segment.TypeStar
	case token.DCOLON:
		return segment.TypeCastingOperator
	case token.NULL:
		return segment.TypeNullLiteral
	case token.TRUE, token.FALSE:
		return segment.TypeBooleanLiteral
	}
	if token.IsKeyword(t) {
		return segment.TypeKeyword
	}
	return "symbol"
}
