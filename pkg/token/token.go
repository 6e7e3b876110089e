// Package token defines the token types produced by the lossless SQL lexer.
//
// Unlike a compiler lexer, every byte of input ends up in a token: whitespace,
// newlines and comments are first-class tokens so that layout rules can reason
// about them and fixes can be rendered back to text.
//
// ANSI core tokens are constants (IDs 0-999). Dialect-specific keywords are
// registered dynamically via Register().
package token

import "fmt"

// TokenType represents the type of a lexical token.
//
//nolint:revive // token.TokenType mirrors the parser's vocabulary
type TokenType int32

const (
	// Special tokens
	EOF TokenType = iota
	ILLEGAL

	// Trivia (non-code)
	WHITESPACE   // spaces, tabs, carriage returns
	NEWLINE      // \n
	COMMENT      // -- line or /* block */
	TEMPLATE_TAG //nolint:revive // {% ... %} or {# ... #}

	// Literals
	IDENT       // identifier
	QUOTED      // "quoted identifier"
	NUMBER      // 123, 45.67, 1e10
	STRING      // 'hello'
	PLACEHOLDER // {{ ... }} template expression

	// Operators
	PLUS     // +
	MINUS    // -
	STAR     // *
	SLASH    // /
	PERCENT  // %
	DPIPE    // ||
	EQ       // =
	NE       // != or <>
	LT       // <
	GT       // >
	LE       // <=
	GE       // >=
	DOT      // .
	COMMA    // ,
	SEMI     // ;
	LPAREN   // (
	RPAREN   // )
	LBRACKET // [
	RBRACKET // ]
	DCOLON   // :: (dialect symbol, registered by dialects that support it)

	// ANSI keywords (alphabetical)
	ALL
	AND
	AS
	ASC
	BETWEEN
	BY
	CASE
	CAST
	CROSS
	CURRENT
	DESC
	DISTINCT
	ELSE
	END
	EXCEPT
	EXISTS
	FALSE
	FILTER
	FIRST
	FOLLOWING
	FROM
	FULL
	GROUP
	GROUPS
	HAVING
	IN
	INNER
	INTERSECT
	IS
	JOIN
	LAST
	LATERAL
	LEFT
	LIKE
	LIMIT
	NATURAL
	NOT
	NULL
	NULLS
	OFFSET
	ON
	OR
	ORDER
	OUTER
	OVER
	PARTITION
	PRECEDING
	RANGE
	RECURSIVE
	RIGHT
	ROW
	ROWS
	SELECT
	THEN
	TRUE
	UNBOUNDED
	UNION
	USING
	WHEN
	WHERE
	WINDOW
	WITH
	WITHIN

	maxBuiltin TokenType = 999
)

// String returns a human-readable representation of the token type.
func (t TokenType) String() string {
	if name, ok := getDynamicName(t); ok {
		return name
	}
	if name, ok := tokenNames[t]; ok {
		return name
	}
	return fmt.Sprintf("TOKEN(%d)", t)
}

var tokenNames = map[TokenType]string{
	EOF:          "EOF",
	ILLEGAL:      "ILLEGAL",
	WHITESPACE:   "WHITESPACE",
	NEWLINE:      "NEWLINE",
	COMMENT:      "COMMENT",
	TEMPLATE_TAG: "TEMPLATE_TAG",

	IDENT:       "IDENT",
	QUOTED:      "QUOTED",
	NUMBER:      "NUMBER",
	STRING:      "STRING",
	PLACEHOLDER: "PLACEHOLDER",

	PLUS:     "+",
	MINUS:    "-",
	STAR:     "*",
	SLASH:    "/",
	PERCENT:  "%",
	DPIPE:    "||",
	EQ:       "=",
	NE:       "!=",
	LT:       "<",
	GT:       ">",
	LE:       "<=",
	GE:       ">=",
	DOT:      ".",
	COMMA:    ",",
	SEMI:     ";",
	LPAREN:   "(",
	RPAREN:   ")",
	LBRACKET: "[",
	RBRACKET: "]",
	DCOLON:   "::",
}

// keywords maps lowercase keyword strings to their token types.
var keywords = map[string]TokenType{
	"all":       ALL,
	"and":       AND,
	"as":        AS,
	"asc":       ASC,
	"between":   BETWEEN,
	"by":        BY,
	"case":      CASE,
	"cast":      CAST,
	"cross":     CROSS,
	"current":   CURRENT,
	"desc":      DESC,
	"distinct":  DISTINCT,
	"else":      ELSE,
	"end":       END,
	"except":    EXCEPT,
	"exists":    EXISTS,
	"false":     FALSE,
	"filter":    FILTER,
	"first":     FIRST,
	"following": FOLLOWING,
	"from":      FROM,
	"full":      FULL,
	"group":     GROUP,
	"groups":    GROUPS,
	"having":    HAVING,
	"in":        IN,
	"inner":     INNER,
	"intersect": INTERSECT,
	"is":        IS,
	"join":      JOIN,
	"last":      LAST,
	"lateral":   LATERAL,
	"left":      LEFT,
	"like":      LIKE,
	"limit":     LIMIT,
	"natural":   NATURAL,
	"not":       NOT,
	"null":      NULL,
	"nulls":     NULLS,
	"offset":    OFFSET,
	"on":        ON,
	"or":        OR,
	"order":     ORDER,
	"outer":     OUTER,
	"over":      OVER,
	"partition": PARTITION,
	"preceding": PRECEDING,
	"range":     RANGE,
	"recursive": RECURSIVE,
	"right":     RIGHT,
	"row":       ROW,
	"rows":      ROWS,
	"select":    SELECT,
	"then":      THEN,
	"true":      TRUE,
	"unbounded": UNBOUNDED,
	"union":     UNION,
	"using":     USING,
	"when":      WHEN,
	"where":     WHERE,
	"window":    WINDOW,
	"with":      WITH,
	"within":    WITHIN,
}

func init() {
	for name, t := range keywords {
		tokenNames[t] = upper(name)
	}
}

func upper(s string) string {
	b := []byte(s)
	for i, c := range b {
		if c >= 'a' && c <= 'z' {
			b[i] = c - 'a' + 'A'
		}
	}
	return string(b)
}

// LookupIdent returns the keyword token type for a lowercase identifier,
// or IDENT. Only builtin keywords are checked.
func LookupIdent(ident string) TokenType {
	if tok, ok := keywords[ident]; ok {
		return tok
	}
	return IDENT
}

// IsKeyword returns true if the token type is a builtin or dynamic keyword.
func IsKeyword(t TokenType) bool {
	return (t >= ALL && t <= WITHIN) || IsDynamic(t)
}

// IsOperator returns true if the token type is an operator or punctuation.
func IsOperator(t TokenType) bool {
	return t >= PLUS && t <= DCOLON
}

// IsTrivia returns true for tokens that carry no code: whitespace, newlines,
// comments and template control tags.
func IsTrivia(t TokenType) bool {
	return t >= WHITESPACE && t <= TEMPLATE_TAG
}

// Token represents a lexical token with position information.
// Literal always holds the exact source text of the token.
type Token struct {
	Type    TokenType
	Literal string
	Pos     Position
}

// End returns the position just past the token.
func (t Token) End() Position {
	return t.Pos.Advance(t.Literal)
}
