// Package postgres provides the PostgreSQL dialect definition.
package postgres

import (
	"github.com/customfm/fmlint/pkg/dialect"
	"github.com/customfm/fmlint/pkg/dialects/ansi"
)

func init() {
	dialect.Register(Postgres)
}

// Postgres adds ILIKE to ANSI.
var Postgres = dialect.New(dialect.Config{
	Name:                 "postgres",
	SupportsIlike:        true,
	SupportsCastOperator: true,
}).
	WithReservedWords(ansi.ReservedWords...).
	WithReservedWords("returning", "only", "similar", "lateral").
	Build()
