package commands

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/customfm/fmlint/internal/cli/output"
	_ "github.com/customfm/fmlint/pkg/dialects"            // register bundled dialects
	_ "github.com/customfm/fmlint/pkg/lint/rules/customfm" // register customfm rules
)

// LintOptions holds options for the lint command.
type LintOptions struct {
	Paths  []string // Files or directories; "-" reads stdin
	Format string   // Output format override
	Watch  bool     // Re-lint on file changes
}

// NewLintCommand creates the lint command.
func NewLintCommand() *cobra.Command {
	opts := &LintOptions{}
	cmd := &cobra.Command{
		Use:   "lint [paths...]",
		Short: "Lint SQL files",
		Long: `Lint SQL files against the enabled rules.

Directories are searched for .sql files, honouring .sqlfluffignore and
.fmlintignore files. Pass "-" to lint SQL read from stdin.

Output adapts to environment:
  - Terminal: Styled output with colors
  - Piped/Scripted: Markdown format
  - JSON: Machine-readable format
  - GitHub: Workflow annotations

Exits with status 1 when violations are found.`,
		Example: `  # Lint the current directory
  fmlint lint

  # Lint specific files
  fmlint lint models/orders.sql models/customers.sql

  # Lint stdin
  cat query.sql | fmlint lint -

  # Run only some rules
  fmlint lint --rules CustomFM_L001,CustomFM_L006

  # Annotate a GitHub pull request
  fmlint lint --format github

  # Re-lint whenever a file changes
  fmlint lint --watch models/`,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.Paths = args
			if opts.Watch {
				return runWatch(cmd, opts)
			}
			return runLint(cmd, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.Format, "format", "f", "", "Output format: text, markdown, json, github")
	cmd.Flags().BoolVarP(&opts.Watch, "watch", "w", false, "Re-lint when files change")

	return cmd
}

func runLint(cmd *cobra.Command, opts *LintOptions) error {
	cmdCtx := NewCommandContext(cmd, opts.Format)
	runner, err := NewRunner(cmd.Context(), cmdCtx.Cfg, cmd.InOrStdin(), cmdCtx.Logger)
	if err != nil {
		return err
	}
	defer func() { _ = runner.Close() }()

	out, err := lintPaths(cmd.Context(), runner, opts.Paths)
	if err != nil {
		return err
	}
	if err := cmdCtx.Renderer.RenderLint(out); err != nil {
		return err
	}
	if out.Summary.TotalIssues > 0 {
		return findings("%d lint issues found", out.Summary.TotalIssues)
	}
	return nil
}

func lintPaths(ctx context.Context, runner *Runner, paths []string) (*output.LintOutput, error) {
	files, err := runner.Discover(paths)
	if err != nil {
		return nil, err
	}
	results, err := runner.Lint(ctx, files)
	if err != nil {
		return nil, err
	}
	out := &output.LintOutput{}
	for _, res := range results {
		out.AddFile(res.Path, res.Diagnostics, res.Cached)
	}
	return out, nil
}
