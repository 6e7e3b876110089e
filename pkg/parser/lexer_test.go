package parser_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/customfm/fmlint/pkg/dialect"
	"github.com/customfm/fmlint/pkg/dialects/ansi"
	"github.com/customfm/fmlint/pkg/dialects/duckdb"
	"github.com/customfm/fmlint/pkg/dialects/postgres"
	"github.com/customfm/fmlint/pkg/parser"
	"github.com/customfm/fmlint/pkg/token"
)

func types(toks []token.Token) []token.TokenType {
	out := make([]token.TokenType, 0, len(toks))
	for _, t := range toks {
		out = append(out, t.Type)
	}
	return out
}

func TestTokenize_Trivia(t *testing.T) {
	toks, err := parser.Tokenize("select  a\n\n-- c\n/* b */x", ansi.ANSI)
	require.NoError(t, err)

	assert.Equal(t, []token.TokenType{
		token.SELECT, token.WHITESPACE, token.IDENT,
		token.NEWLINE, token.NEWLINE,
		token.COMMENT, token.NEWLINE,
		token.COMMENT, token.IDENT,
		token.EOF,
	}, types(toks))
	assert.Equal(t, "  ", toks[1].Literal)
	assert.Equal(t, "-- c", toks[5].Literal)
	assert.Equal(t, "/* b */", toks[7].Literal)
}

func TestTokenize_Lossless(t *testing.T) {
	inputs := []string{
		"select a, b\r\n  from t -- trailing",
		"SELECT 'it''s', \"Quoted Col\" FROM {{ ref('x') }}",
		"{% if x %}select 1{% endif %}",
		"select 1.5e3, .5, a::int from t where a <> b and c != d",
	}
	for _, in := range inputs {
		toks, err := parser.Tokenize(in, postgres.Postgres)
		require.NoError(t, err, in)
		var b strings.Builder
		for _, tok := range toks {
			b.WriteString(tok.Literal)
		}
		assert.Equal(t, in, b.String())
	}
}

func TestTokenize_Positions(t *testing.T) {
	toks, err := parser.Tokenize("select\n  a", ansi.ANSI)
	require.NoError(t, err)
	require.Len(t, toks, 5)

	a := toks[3]
	assert.Equal(t, token.IDENT, a.Type)
	assert.Equal(t, 2, a.Pos.Line)
	assert.Equal(t, 3, a.Pos.Column)
	assert.Equal(t, 9, a.Pos.Offset)
}

func TestTokenize_Templates(t *testing.T) {
	toks, err := parser.Tokenize("{{ x }}{% y %}{# z #}", ansi.ANSI)
	require.NoError(t, err)
	assert.Equal(t, []token.TokenType{
		token.PLACEHOLDER, token.TEMPLATE_TAG, token.TEMPLATE_TAG, token.EOF,
	}, types(toks))
}

func TestTokenize_DialectKeywords(t *testing.T) {
	tests := []struct {
		name    string
		sql     string
		dialect string
		want    bool
	}{
		{name: "qualify in duckdb", sql: "qualify", dialect: "duckdb", want: true},
		{name: "qualify in ansi", sql: "qualify", dialect: "ansi", want: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := ansi.ANSI
			if tt.dialect == "duckdb" {
				d = duckdb.DuckDB
			}
			toks, err := parser.Tokenize(tt.sql, d)
			require.NoError(t, err)
			assert.Equal(t, tt.want, toks[0].Type != token.IDENT)
		})
	}
}

func TestTokenize_CastOperator(t *testing.T) {
	for _, d := range []*dialect.Dialect{ansi.ANSI, postgres.Postgres, duckdb.DuckDB} {
		t.Run(d.Name, func(t *testing.T) {
			toks, err := parser.Tokenize("a::int", d)
			require.NoError(t, err)
			assert.Equal(t, []token.TokenType{token.IDENT, token.DCOLON, token.IDENT, token.EOF}, types(toks))
		})
	}
}

func TestTokenize_Errors(t *testing.T) {
	tests := []struct {
		name    string
		sql     string
		message string
	}{
		{name: "unterminated string", sql: "select 'abc", message: parser.ErrUnterminatedString},
		{name: "unterminated quoted identifier", sql: `select "abc`, message: parser.ErrUnterminatedQuoted},
		{name: "unterminated block comment", sql: "select /* abc", message: parser.ErrUnterminatedComment},
		{name: "unexpected character", sql: "select a ` b", message: "unexpected character"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := parser.Tokenize(tt.sql, ansi.ANSI)
			require.Error(t, err)
			var lexErr *parser.LexError
			require.ErrorAs(t, err, &lexErr)
			assert.Contains(t, lexErr.Message, tt.message)
			assert.Equal(t, 1, lexErr.Pos.Line)
		})
	}
}
