// Package duckdb provides the DuckDB dialect definition.
package duckdb

import (
	"github.com/customfm/fmlint/pkg/dialect"
	"github.com/customfm/fmlint/pkg/dialects/ansi"
)

func init() {
	dialect.Register(DuckDB)
}

// DuckDB supports QUALIFY, ILIKE and :: casts.
var DuckDB = dialect.New(dialect.Config{
	Name:                 "duckdb",
	SupportsQualify:      true,
	SupportsIlike:        true,
	SupportsCastOperator: true,
}).
	WithReservedWords(ansi.ReservedWords...).
	WithReservedWords("pivot", "unpivot", "semi", "anti", "asof").
	Build()
