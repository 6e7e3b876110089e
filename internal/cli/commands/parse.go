package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/customfm/fmlint/pkg/dialect"
	"github.com/customfm/fmlint/pkg/parser"
	"github.com/customfm/fmlint/pkg/segment"
)

// ParseOptions holds options for the parse command.
type ParseOptions struct {
	CodeOnly bool
}

// NewParseCommand creates the parse command.
func NewParseCommand() *cobra.Command {
	opts := &ParseOptions{}
	cmd := &cobra.Command{
		Use:   "parse <path|->",
		Short: "Print the parse tree of a SQL file",
		Long: `Parse a SQL file and print its segment tree, one segment per line with
its position, depth and type. Leaf segments show their raw text.

This is the tree lint rules walk. Use it to see which segment types a rule
should crawl.`,
		Example: `  # Show the tree of a file
  fmlint parse models/orders.sql

  # Hide whitespace and newlines
  echo "select * from foo" | fmlint parse --code-only -`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runParse(cmd, args[0], opts)
		},
	}

	cmd.Flags().BoolVar(&opts.CodeOnly, "code-only", false, "Omit whitespace and newline segments")

	return cmd
}

func runParse(cmd *cobra.Command, path string, opts *ParseOptions) error {
	cmdCtx := NewCommandContext(cmd, "")
	d, err := dialect.Lookup(cmdCtx.Cfg.Dialect)
	if err != nil {
		return err
	}
	src, err := readSource(cmd.InOrStdin(), path)
	if err != nil {
		return err
	}
	tree, err := parser.Parse(src, d)
	if err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	return segment.Format(cmd.OutOrStdout(), tree, segment.FormatOptions{CodeOnly: opts.CodeOnly})
}
