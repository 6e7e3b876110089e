// Package dialect describes the lexical and clause-level differences between
// SQL dialects that matter to the layout linter.
//
// Concrete dialects are registered from pkg/dialects/*/ packages in init().
package dialect

import (
	"sort"
	"strings"

	"github.com/customfm/fmlint/pkg/token"
)

// Dialect-specific tokens, registered once and shared by every dialect that
// enables the matching feature.
var (
	TokenQualify = token.Register("qualify")
	TokenIlike   = token.Register("ilike")
)

// Config holds the feature flags a dialect is built from.
type Config struct {
	Name                 string
	SupportsQualify      bool // QUALIFY clause after WINDOW/HAVING
	SupportsIlike        bool // ILIKE comparison keyword
	SupportsCastOperator bool // expr::type postfix cast
	IdentifierQuote      byte // opening/closing quote for identifiers, '"' by default
}

// Dialect is an immutable, built dialect definition.
type Dialect struct {
	Name            string
	IdentifierQuote byte

	symbols       map[string]token.TokenType
	keywords      map[string]token.TokenType
	clauseTokens  map[token.TokenType]string
	reservedWords map[string]struct{}
}

// GetName returns the dialect name.
func (d *Dialect) GetName() string {
	return d.Name
}

// LookupKeyword returns the dialect-specific token for a lowercase word.
func (d *Dialect) LookupKeyword(name string) (token.TokenType, bool) {
	t, ok := d.keywords[name]
	return t, ok
}

// Symbols returns the multi-character operators of the dialect, longest first.
func (d *Dialect) Symbols() []string {
	out := make([]string, 0, len(d.symbols))
	for s := range d.symbols {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool {
		if len(out[i]) != len(out[j]) {
			return len(out[i]) > len(out[j])
		}
		return out[i] < out[j]
	})
	return out
}

// SymbolToken returns the token type for a dialect symbol.
func (d *Dialect) SymbolToken(sym string) (token.TokenType, bool) {
	t, ok := d.symbols[sym]
	return t, ok
}

// IsClauseToken returns true if t starts a dialect-specific clause, and the
// clause's segment type.
func (d *Dialect) IsClauseToken(t token.TokenType) (string, bool) {
	name, ok := d.clauseTokens[t]
	return name, ok
}

// IsReservedWord reports whether word cannot be used as a bare alias.
func (d *Dialect) IsReservedWord(word string) bool {
	_, ok := d.reservedWords[strings.ToLower(word)]
	return ok
}

// NormalizeName lowercases unquoted identifiers, as every registered dialect
// folds to lower case.
func (d *Dialect) NormalizeName(name string) string {
	return strings.ToLower(name)
}

// Builder provides a fluent API for constructing dialects.
type Builder struct {
	cfg     Config
	dialect *Dialect
}

// New creates a dialect builder from a Config.
func New(cfg Config) *Builder {
	quote := cfg.IdentifierQuote
	if quote == 0 {
		quote = '"'
	}
	return &Builder{
		cfg: cfg,
		dialect: &Dialect{
			Name:            cfg.Name,
			IdentifierQuote: quote,
			symbols:         make(map[string]token.TokenType),
			keywords:        make(map[string]token.TokenType),
			clauseTokens:    make(map[token.TokenType]string),
			reservedWords:   make(map[string]struct{}),
		},
	}
}

// WithReservedWords adds words that can't be used as implicit aliases.
func (b *Builder) WithReservedWords(words ...string) *Builder {
	for _, w := range words {
		b.dialect.reservedWords[strings.ToLower(w)] = struct{}{}
	}
	return b
}

// AddOperator registers a multi-character symbol.
func (b *Builder) AddOperator(symbol string, t token.TokenType) *Builder {
	b.dialect.symbols[symbol] = t
	return b
}

// AddKeyword registers a dialect keyword.
func (b *Builder) AddKeyword(name string, t token.TokenType) *Builder {
	b.dialect.keywords[strings.ToLower(name)] = t
	return b
}

// Build returns the constructed dialect, wiring features from the config flags.
func (b *Builder) Build() *Dialect {
	if b.cfg.SupportsQualify {
		b.AddKeyword("qualify", TokenQualify)
		b.dialect.clauseTokens[TokenQualify] = "qualify_clause"
		b.WithReservedWords("qualify")
	}
	if b.cfg.SupportsIlike {
		b.AddKeyword("ilike", TokenIlike)
		b.WithReservedWords("ilike")
	}
	if b.cfg.SupportsCastOperator {
		b.AddOperator("::", token.DCOLON)
	}
	return b.dialect
}
