// Package ansi provides the ANSI SQL dialect, the default for linting.
package ansi

import "github.com/customfm/fmlint/pkg/dialect"

func init() {
	dialect.Register(ANSI)
}

// ReservedWords are the ANSI words that can't be used as bare aliases.
// Other dialects extend this list.
var ReservedWords = []string{
	"all", "and", "as", "between", "by", "case", "cross", "distinct",
	"else", "end", "except", "from", "full", "group", "having", "in",
	"inner", "intersect", "is", "join", "left", "like", "limit", "natural",
	"not", "null", "offset", "on", "or", "order", "outer", "right",
	"select", "then", "union", "using", "when", "where", "window", "with",
}

// ANSI is the ANSI SQL dialect. Like sqlfluff's ansi dialect it accepts
// :: casts.
var ANSI = dialect.New(dialect.Config{
	Name:                 "ansi",
	SupportsCastOperator: true,
}).
	WithReservedWords(ReservedWords...).
	Build()
