// Package dialects registers every bundled SQL dialect when imported.
package dialects

import (
	_ "github.com/customfm/fmlint/pkg/dialects/ansi"     // register ansi
	_ "github.com/customfm/fmlint/pkg/dialects/duckdb"   // register duckdb
	_ "github.com/customfm/fmlint/pkg/dialects/postgres" // register postgres
)
