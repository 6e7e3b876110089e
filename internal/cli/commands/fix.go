package commands

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/customfm/fmlint/internal/cli/output"
	"github.com/customfm/fmlint/pkg/lint"
)

// FixOptions holds options for the fix command.
type FixOptions struct {
	Paths  []string
	Format string
	Diff   bool // Print a unified diff instead of writing files
	Check  bool // Write nothing; fail if any file would change
}

// NewFixCommand creates the fix command.
func NewFixCommand() *cobra.Command {
	opts := &FixOptions{}
	cmd := &cobra.Command{
		Use:   "fix [paths...]",
		Short: "Apply automatic fixes to SQL files",
		Long: `Apply the fixes of the enabled rules, re-linting until the files stop
changing or the runaway limit is reached.

Files are rewritten in place. SQL read from stdin ("-") is written to stdout.
With --diff the changes are printed instead of written. With --check nothing
is written and the command fails if any file would change.

Exits with status 1 when unfixable violations remain, or with --check when a
fix is pending.`,
		Example: `  # Fix all SQL files under models/
  fmlint fix models/

  # Preview the changes
  fmlint fix --diff models/

  # Fail CI if formatting is off
  fmlint fix --check

  # Fix stdin
  cat query.sql | fmlint fix -`,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.Paths = args
			return runFix(cmd, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.Format, "format", "f", "", "Output format: text, markdown, json")
	cmd.Flags().BoolVar(&opts.Diff, "diff", false, "Print a unified diff instead of writing files")
	cmd.Flags().BoolVar(&opts.Check, "check", false, "Write nothing; exit 1 if any file would change")

	return cmd
}

func runFix(cmd *cobra.Command, opts *FixOptions) error {
	cmdCtx := NewCommandContext(cmd, opts.Format)
	runner, err := NewRunner(cmd.Context(), cmdCtx.Cfg, cmd.InOrStdin(), cmdCtx.Logger)
	if err != nil {
		return err
	}
	defer func() { _ = runner.Close() }()

	files, err := runner.Discover(opts.Paths)
	if err != nil {
		return err
	}

	fixer := lint.NewFixer(runner.Analyzer())
	out := &output.FixOutput{Check: opts.Check}
	for _, path := range files {
		src, err := runner.Read(path)
		if err != nil {
			return err
		}
		res, err := fixer.Fix(cmd.Context(), path, src)
		if err != nil {
			return fmt.Errorf("%s: %w", path, err)
		}
		cmdCtx.Logger.Debug("fixed file", "path", path, "passes", res.Passes, "edits", res.Applied)

		fr := output.FixFileResult{
			Path:      path,
			Changed:   res.Changed(),
			Applied:   res.Applied,
			Passes:    res.Passes,
			Remaining: len(res.Remaining),
		}
		switch {
		case opts.Diff:
			fr.Diff = output.UnifiedDiff(path, res.Source, res.Fixed)
		case opts.Check:
		case path == StdinPath:
			// The fixed SQL is the output; the summary goes to stderr.
			if _, err := io.WriteString(cmd.OutOrStdout(), res.Fixed); err != nil {
				return err
			}
		case res.Changed():
			if err := writeFixed(path, res.Fixed); err != nil {
				return err
			}
		}
		out.AddFile(fr)
	}

	r := cmdCtx.Renderer
	if len(files) == 1 && files[0] == StdinPath && !opts.Diff && !opts.Check {
		r = output.NewRenderer(cmd.ErrOrStderr(), cmd.ErrOrStderr(), r.Mode())
	}
	if err := r.RenderFix(out); err != nil {
		return err
	}

	if opts.Check && out.Summary.FilesChanged > 0 {
		return findings("%d files would be changed", out.Summary.FilesChanged)
	}
	if out.Summary.Remaining > 0 {
		return findings("%d unfixable lint issues remain", out.Summary.Remaining)
	}
	return nil
}

// writeFixed replaces path's content, keeping its permissions.
func writeFixed(path, content string) error {
	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("failed to stat %s: %w", path, err)
	}
	if err := os.WriteFile(path, []byte(content), info.Mode().Perm()); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}
