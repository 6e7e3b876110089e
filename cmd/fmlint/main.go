// Package main provides the fmlint command.
package main

import (
	"os"

	"github.com/customfm/fmlint/internal/cli"
)

func main() {
	os.Exit(cli.Execute())
}
