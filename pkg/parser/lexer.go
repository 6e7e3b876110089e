package parser

import (
	"fmt"
	"strings"

	"github.com/customfm/fmlint/pkg/dialect"
	"github.com/customfm/fmlint/pkg/token"
)

// Lexer tokenizes SQL input without dropping anything: whitespace, newlines,
// comments and template tags are returned as tokens, so the literals of all
// tokens concatenate back to the input.
type Lexer struct {
	input   string
	cur     token.Position
	dialect *dialect.Dialect
	symbols []string
}

// NewLexer creates a lexer for input. d may be nil for plain ANSI lexing.
func NewLexer(input string, d *dialect.Dialect) *Lexer {
	l := &Lexer{
		input:   input,
		cur:     token.Position{Line: 1, Column: 1},
		dialect: d,
	}
	if d != nil {
		l.symbols = d.Symbols()
	}
	return l
}

// Tokenize lexes the whole input. The last token is always EOF.
func Tokenize(input string, d *dialect.Dialect) ([]token.Token, error) {
	l := NewLexer(input, d)
	var toks []token.Token
	for {
		tok, err := l.NextToken()
		if err != nil {
			return nil, err
		}
		toks = append(toks, tok)
		if tok.Type == token.EOF {
			return toks, nil
		}
	}
}

func (l *Lexer) at(i int) byte {
	if off := l.cur.Offset + i; off < len(l.input) {
		return l.input[off]
	}
	return 0
}

func (l *Lexer) rest() string {
	return l.input[l.cur.Offset:]
}

// emit produces a token for the next n bytes and advances past them.
func (l *Lexer) emit(t token.TokenType, n int) token.Token {
	lit := l.input[l.cur.Offset : l.cur.Offset+n]
	tok := token.Token{Type: t, Literal: lit, Pos: l.cur}
	l.cur = l.cur.Advance(lit)
	return tok
}

func (l *Lexer) errorf(format string, args ...any) error {
	return &LexError{Pos: l.cur, Message: fmt.Sprintf(format, args...)}
}

// NextToken returns the next token, or a LexError for unterminated strings,
// comments and template tags.
func (l *Lexer) NextToken() (token.Token, error) {
	if l.cur.Offset >= len(l.input) {
		return token.Token{Type: token.EOF, Pos: l.cur}, nil
	}

	ch := l.at(0)
	switch {
	case ch == '\n':
		return l.emit(token.NEWLINE, 1), nil
	case isSpace(ch):
		n := 1
		for isSpace(l.at(n)) {
			n++
		}
		return l.emit(token.WHITESPACE, n), nil
	case ch == '-' && l.at(1) == '-':
		n := strings.IndexByte(l.rest(), '\n')
		if n < 0 {
			n = len(l.rest())
		}
		return l.emit(token.COMMENT, n), nil
	case ch == '/' && l.at(1) == '*':
		end := strings.Index(l.rest()[2:], "*/")
		if end < 0 {
			return token.Token{}, l.errorf(ErrUnterminatedComment)
		}
		return l.emit(token.COMMENT, end+4), nil
	case ch == '{' && (l.at(1) == '{' || l.at(1) == '%' || l.at(1) == '#'):
		return l.readTemplate()
	case ch == '\'':
		n, ok := scanQuoted(l.rest(), '\'')
		if !ok {
			return token.Token{}, l.errorf(ErrUnterminatedString)
		}
		return l.emit(token.STRING, n), nil
	case l.dialect != nil && ch == l.dialect.IdentifierQuote, l.dialect == nil && ch == '"':
		n, ok := scanQuoted(l.rest(), ch)
		if !ok {
			return token.Token{}, l.errorf(ErrUnterminatedQuoted)
		}
		return l.emit(token.QUOTED, n), nil
	case isDigit(ch) || (ch == '.' && isDigit(l.at(1))):
		return l.emit(token.NUMBER, scanNumber(l.rest())), nil
	case isLetter(ch) || ch == '_':
		n := 1
		for c := l.at(n); isLetter(c) || isDigit(c) || c == '_' || c == '$'; c = l.at(n) {
			n++
		}
		word := strings.ToLower(l.input[l.cur.Offset : l.cur.Offset+n])
		return l.emit(l.lookupWord(word), n), nil
	}

	// Dialect symbols first, longest match.
	for _, sym := range l.symbols {
		if strings.HasPrefix(l.rest(), sym) {
			t, _ := l.dialect.SymbolToken(sym)
			return l.emit(t, len(sym)), nil
		}
	}

	if t, n := lookupOperator(ch, l.at(1)); n > 0 {
		return l.emit(t, n), nil
	}
	return token.Token{}, l.errorf(ErrUnexpectedCharacter, string(ch))
}

func (l *Lexer) lookupWord(word string) token.TokenType {
	if t := token.LookupIdent(word); t != token.IDENT {
		return t
	}
	if l.dialect != nil {
		if t, ok := l.dialect.LookupKeyword(word); ok {
			return t
		}
	}
	return token.IDENT
}

// readTemplate lexes {{ expr }} as a code placeholder and {% tag %} or
// {# comment #} as trivia.
func (l *Lexer) readTemplate() (token.Token, error) {
	open := l.rest()[:2]
	closer := map[byte]string{'{': "}}", '%': "%}", '#': "#}"}[open[1]]
	end := strings.Index(l.rest()[2:], closer)
	if end < 0 {
		return token.Token{}, l.errorf(ErrUnterminatedTemplate, open)
	}
	t := token.TEMPLATE_TAG
	if open == "{{" {
		t = token.PLACEHOLDER
	}
	return l.emit(t, end+4), nil
}

// scanQuoted returns the length of a quoted literal at the start of s,
// treating a doubled quote as an escape.
func scanQuoted(s string, quote byte) (int, bool) {
	for i := 1; i < len(s); i++ {
		if s[i] != quote {
			continue
		}
		if i+1 < len(s) && s[i+1] == quote {
			i++
			continue
		}
		return i + 1, true
	}
	return 0, false
}

func scanNumber(s string) int {
	i := 0
	for i < len(s) && isDigit(s[i]) {
		i++
	}
	if i < len(s) && s[i] == '.' {
		i++
		for i < len(s) && isDigit(s[i]) {
			i++
		}
	}
	if i < len(s) && (s[i] == 'e' || s[i] == 'E') {
		j := i + 1
		if j < len(s) && (s[j] == '+' || s[j] == '-') {
			j++
		}
		if j < len(s) && isDigit(s[j]) {
			for j < len(s) && isDigit(s[j]) {
				j++
			}
			i = j
		}
	}
	return i
}

func lookupOperator(ch, next byte) (token.TokenType, int) {
	switch ch {
	case '<':
		switch next {
		case '=':
			return token.LE, 2
		case '>':
			return token.NE, 2
		}
		return token.LT, 1
	case '>':
		if next == '=' {
			return token.GE, 2
		}
		return token.GT, 1
	case '!':
		if next == '=' {
			return token.NE, 2
		}
	case '|':
		if next == '|' {
			return token.DPIPE, 2
		}
	case '+':
		return token.PLUS, 1
	case '-':
		return token.MINUS, 1
	case '*':
		return token.STAR, 1
	case '/':
		return token.SLASH, 1
	case '%':
		return token.PERCENT, 1
	case '=':
		return token.EQ, 1
	case '.':
		return token.DOT, 1
	case ',':
		return token.COMMA, 1
	case ';':
		return token.SEMI, 1
	case '(':
		return token.LPAREN, 1
	case ')':
		return token.RPAREN, 1
	case '[':
		return token.LBRACKET, 1
	case ']':
		return token.RBRACKET, 1
	}
	return token.ILLEGAL, 0
}

func isSpace(ch byte) bool {
	return ch == ' ' || ch == '\t' || ch == '\r' || ch == '\f' || ch == '\v'
}

func isLetter(ch byte) bool {
	return ('a' <= ch && ch <= 'z') || ('A' <= ch && ch <= 'Z') || ch >= 0x80
}

func isDigit(ch byte) bool {
	return '0' <= ch && ch <= '9'
}
