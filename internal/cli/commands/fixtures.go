package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/customfm/fmlint/internal/cli/output"
	"github.com/customfm/fmlint/pkg/lint/fixture"
)

// FixturesOptions holds options for the fixtures command.
type FixturesOptions struct {
	Format string
	Failed bool // Only report failing cases
}

// FixtureCaseResult is one evaluated fixture case as rendered.
type FixtureCaseResult struct {
	Location string `json:"location"`
	Rule     string `json:"rule"`
	Name     string `json:"name"`
	Passed   bool   `json:"passed"`
	Reason   string `json:"reason,omitempty"`
}

// FixturesJSONOutput is the JSON output structure of a fixture run.
type FixturesJSONOutput struct {
	Cases  []FixtureCaseResult `json:"cases"`
	Passed int                 `json:"passed"`
	Failed int                 `json:"failed"`
}

// NewFixturesCommand creates the fixtures command.
func NewFixturesCommand() *cobra.Command {
	opts := &FixturesOptions{}
	cmd := &cobra.Command{
		Use:   "fixtures <dir|file>...",
		Short: "Run YAML rule fixtures",
		Long: `Evaluate YAML rule fixture files.

Each case lints its SQL with its rule alone. A pass case must produce no
violation. A fail case must produce at least one, and when it has a fix_str
the fixed SQL must equal it.

Exits with status 1 when any case fails.`,
		Example: `  # Run every fixture in a directory
  fmlint fixtures test/fixtures/rules

  # Run one file, showing failures only
  fmlint fixtures --failed CustomFM_L001.yml`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runFixtures(cmd, args, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.Format, "format", "f", "", "Output format: text, markdown, json")
	cmd.Flags().BoolVar(&opts.Failed, "failed", false, "Only report failing cases")

	return cmd
}

func runFixtures(cmd *cobra.Command, paths []string, opts *FixturesOptions) error {
	cmdCtx := NewCommandContext(cmd, opts.Format)
	r := cmdCtx.Renderer

	var corpora []*fixture.Corpus
	for _, path := range paths {
		loaded, err := fixture.Load(path)
		if err != nil {
			return err
		}
		corpora = append(corpora, loaded...)
	}

	results, err := fixture.EvaluateAll(cmd.Context(), corpora)
	if err != nil {
		return err
	}

	out := FixturesJSONOutput{Cases: []FixtureCaseResult{}}
	for _, res := range results {
		if res.Passed {
			out.Passed++
		} else {
			out.Failed++
		}
		if opts.Failed && res.Passed {
			continue
		}
		out.Cases = append(out.Cases, FixtureCaseResult{
			Location: res.Case.Location(),
			Rule:     res.Case.Rule,
			Name:     res.Case.Name,
			Passed:   res.Passed,
			Reason:   res.Reason,
		})
	}
	cmdCtx.Logger.Debug("evaluated fixtures", "files", len(corpora), "cases", len(results))

	switch r.EffectiveMode() {
	case output.ModeJSON:
		if err := r.JSON(out); err != nil {
			return err
		}
	case output.ModeMarkdown:
		renderFixturesMarkdown(r, out)
	default:
		renderFixturesText(r, out)
	}

	if out.Failed > 0 {
		return findings("%d of %d fixture cases failed", out.Failed, out.Passed+out.Failed)
	}
	return nil
}

func renderFixturesText(r *output.Renderer, out FixturesJSONOutput) {
	styles := r.Styles()
	for _, c := range out.Cases {
		status := styles.StatusSuccess
		if !c.Passed {
			status = styles.StatusFailed
		}
		r.Printf("%s %s %s %s\n", status.String(), styles.RuleID.Render(c.Rule), c.Name, styles.Muted.Render(c.Location))
		if c.Reason != "" {
			r.Printf("    %s\n", styles.Error.Render(c.Reason))
		}
	}
	if len(out.Cases) > 0 {
		r.Println("")
	}
	summary := fmt.Sprintf("%d passed, %d failed", out.Passed, out.Failed)
	if out.Failed == 0 {
		r.Success(summary)
		return
	}
	r.Println(styles.Error.Render(summary))
}

func renderFixturesMarkdown(r *output.Renderer, out FixturesJSONOutput) {
	r.Println("# Fixture Results")
	r.Println("")
	if len(out.Cases) > 0 {
		r.Println("| Status | Rule | Case | Location | Reason |")
		r.Println("|---|---|---|---|---|")
		for _, c := range out.Cases {
			status := "pass"
			if !c.Passed {
				status = "FAIL"
			}
			r.Printf("| %s | `%s` | %s | %s | %s |\n", status, c.Rule, output.EscapeTableCell(c.Name), c.Location, output.EscapeTableCell(c.Reason))
		}
		r.Println("")
	}
	r.Printf("**%d passed, %d failed**\n", out.Passed, out.Failed)
}
