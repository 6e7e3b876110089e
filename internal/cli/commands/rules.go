package commands

import (
	"fmt"
	"sort"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/customfm/fmlint/internal/cli/output"
	"github.com/customfm/fmlint/pkg/lint"
)

// RulesOptions holds options for the rules command.
type RulesOptions struct {
	Group   string // Filter by group
	Plugin  string // Filter by plugin
	Verbose bool   // Show full documentation
	Format  string // Output format
}

// NewRulesCommand creates the rules command.
func NewRulesCommand() *cobra.Command {
	opts := &RulesOptions{}
	cmd := &cobra.Command{
		Use:   "rules [rule-id]",
		Short: "List available lint rules",
		Long: `List all available lint rules with their documentation.

Rules are organized by group (e.g., layout, structure). Rules loaded from
Starlark plugins are listed alongside the built-in ones. A rule can be
looked up by its ID or by any of its aliases.

Output adapts to environment:
  - Terminal: Styled output with colors
  - Piped/Scripted: Markdown format
  - JSON: Machine-readable format`,
		Example: `  # List all rules
  fmlint rules

  # Show details for a specific rule
  fmlint rules CustomFM_L001

  # Aliases resolve to their rule
  fmlint rules CustomFM_L005

  # List rules in the layout group
  fmlint rules --group layout

  # Output as JSON
  fmlint rules --format json`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) > 0 {
				return showRule(cmd, args[0], opts)
			}
			return listRules(cmd, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.Group, "group", "g", "", "Filter by group")
	cmd.Flags().StringVar(&opts.Plugin, "plugin", "", "Filter by plugin")
	cmd.Flags().BoolVarP(&opts.Verbose, "verbose", "V", false, "Show full documentation")
	cmd.Flags().StringVarP(&opts.Format, "format", "f", "", "Output format: text, json, markdown")

	return cmd
}

func listRules(cmd *cobra.Command, opts *RulesOptions) error {
	r := NewCommandContext(cmd, opts.Format).Renderer

	rules := filterRulesByOptions(lint.AllRuleInfo(), opts)

	// Sort by group, then ID
	sort.Slice(rules, func(i, j int) bool {
		if rules[i].Group != rules[j].Group {
			return rules[i].Group < rules[j].Group
		}
		return rules[i].ID < rules[j].ID
	})

	switch r.EffectiveMode() {
	case output.ModeJSON:
		return listRulesJSON(r, rules)
	case output.ModeMarkdown:
		return listRulesMarkdown(r, rules, opts.Verbose)
	default:
		return listRulesText(r, rules, opts.Verbose)
	}
}

func filterRulesByOptions(rules []lint.RuleInfo, opts *RulesOptions) []lint.RuleInfo {
	if opts.Group == "" && opts.Plugin == "" {
		return rules
	}

	var filtered []lint.RuleInfo
	for _, r := range rules {
		if opts.Group != "" && !inGroup(r, opts.Group) {
			continue
		}
		if opts.Plugin != "" && !strings.EqualFold(r.Plugin, opts.Plugin) {
			continue
		}
		filtered = append(filtered, r)
	}
	return filtered
}

func inGroup(r lint.RuleInfo, group string) bool {
	if strings.EqualFold(r.Group, group) {
		return true
	}
	for _, g := range r.Groups {
		if strings.EqualFold(g, group) {
			return true
		}
	}
	return false
}

func showRule(cmd *cobra.Command, ruleID string, opts *RulesOptions) error {
	r := NewCommandContext(cmd, opts.Format).Renderer

	rule, ok := lint.GetRule(ruleID)
	if !ok {
		return fmt.Errorf("rule %q not found", ruleID)
	}
	info := lint.GetRuleInfo(rule)

	switch r.EffectiveMode() {
	case output.ModeJSON:
		return r.JSON(info)
	case output.ModeMarkdown:
		r.Printf("%s", ruleMarkdown(info))
		return nil
	default:
		return r.Markdown(ruleMarkdown(info))
	}
}

// listRulesText outputs rules as a table per group.
func listRulesText(r *output.Renderer, rules []lint.RuleInfo, verbose bool) error {
	styles := r.Styles()
	title := cases.Title(language.English)

	r.Println("")
	r.Println(styles.Header1.Render(fmt.Sprintf("Lint Rules (%d)", len(rules))))
	r.Println("")

	for _, group := range groupRules(rules) {
		r.Println(styles.Header2.Render(title.String(group.name)))

		t := table.NewWriter()
		t.SetOutputMirror(r.Writer())
		t.SetStyle(table.StyleLight)
		header := table.Row{"ID", "Name", "Severity", "Aliases"}
		if verbose {
			header = append(header, "Description")
		}
		t.AppendHeader(header)
		for _, rule := range group.rules {
			row := table.Row{
				rule.ID,
				rule.Name,
				output.SeverityStyle(styles, rule.DefaultSeverity.String()).Render(rule.DefaultSeverity.String()),
				strings.Join(rule.Aliases, ", "),
			}
			if verbose {
				row = append(row, truncateOneLine(rule.Description, 60))
			}
			t.AppendRow(row)
		}
		t.Render()
		r.Println("")
	}

	r.Println(styles.Muted.Render("Use 'fmlint rules <rule-id>' for detailed documentation"))
	r.Println("")

	return nil
}

// listRulesMarkdown outputs rules in markdown format.
func listRulesMarkdown(r *output.Renderer, rules []lint.RuleInfo, verbose bool) error {
	title := cases.Title(language.English)

	r.Println("# Lint Rules")
	r.Println("")

	for _, group := range groupRules(rules) {
		r.Println("## " + title.String(group.name))
		r.Println("")
		for _, rule := range group.rules {
			r.Printf("- **%s** - %s (`%s`)", rule.ID, rule.Name, rule.DefaultSeverity.String())
			if len(rule.Aliases) > 0 {
				r.Printf(", alias `%s`", strings.Join(rule.Aliases, "`, `"))
			}
			r.Println("")
			if verbose {
				r.Println("  " + truncateOneLine(rule.Description, 120))
				if rule.Rationale != "" {
					r.Println("  > " + truncateOneLine(rule.Rationale, 120))
				}
			}
		}
		r.Println("")
	}
	return nil
}

// RulesJSONOutput is the JSON output structure for rules listing.
type RulesJSONOutput struct {
	Rules []lint.RuleInfo `json:"rules"`
	Count struct {
		ByGroup map[string]int `json:"by_group"`
		Total   int            `json:"total"`
	} `json:"count"`
}

// listRulesJSON outputs rules in JSON format.
func listRulesJSON(r *output.Renderer, rules []lint.RuleInfo) error {
	jsonOutput := RulesJSONOutput{Rules: rules}
	if jsonOutput.Rules == nil {
		jsonOutput.Rules = []lint.RuleInfo{}
	}
	jsonOutput.Count.ByGroup = make(map[string]int)
	for _, rule := range rules {
		jsonOutput.Count.ByGroup[rule.Group]++
	}
	jsonOutput.Count.Total = len(rules)
	return r.JSON(jsonOutput)
}

// ruleMarkdown renders the documentation of one rule.
func ruleMarkdown(rule lint.RuleInfo) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# %s - %s\n\n", rule.ID, rule.Name)
	fmt.Fprintf(&b, "**Group:** %s | **Severity:** `%s`", rule.Group, rule.DefaultSeverity.String())
	if rule.Plugin != "" {
		fmt.Fprintf(&b, " | **Plugin:** %s", rule.Plugin)
	}
	b.WriteString("\n\n")
	if len(rule.Aliases) > 0 {
		fmt.Fprintf(&b, "**Aliases:** `%s`\n\n", strings.Join(rule.Aliases, "`, `"))
	}
	b.WriteString(rule.Description + "\n\n")

	if rule.Rationale != "" {
		b.WriteString("## Why This Matters\n\n" + rule.Rationale + "\n\n")
	}
	if rule.BadExample != "" {
		b.WriteString("## Bad Example\n\n```sql\n" + strings.TrimRight(rule.BadExample, "\n") + "\n```\n\n")
	}
	if rule.GoodExample != "" {
		b.WriteString("## Good Example\n\n```sql\n" + strings.TrimRight(rule.GoodExample, "\n") + "\n```\n\n")
	}
	if rule.Fix != "" {
		b.WriteString("## How to Fix\n\n" + rule.Fix + "\n\n")
	}

	if len(rule.ConfigKeys) > 0 {
		docs := lint.ConfigKeyDocs()
		defaults := lint.DefaultRuleOptions(rule.ID)
		b.WriteString("## Configuration\n\n")
		for _, key := range rule.ConfigKeys {
			fmt.Fprintf(&b, "- `%s`", key)
			if doc, ok := docs[key]; ok {
				b.WriteString(": " + doc.Definition)
				if len(doc.Validation) > 0 {
					fmt.Fprintf(&b, " Values: `%s`.", strings.Join(doc.Validation, "`, `"))
				}
			}
			if v, ok := defaults[key]; ok {
				fmt.Fprintf(&b, " Default `%v`.", v)
			}
			b.WriteString("\n")
		}
		b.WriteString("\n")
	}
	return b.String()
}

type ruleGroup struct {
	name  string
	rules []lint.RuleInfo
}

// groupRules splits rules sorted by group into consecutive runs.
func groupRules(rules []lint.RuleInfo) []ruleGroup {
	var groups []ruleGroup
	for _, rule := range rules {
		if len(groups) == 0 || groups[len(groups)-1].name != rule.Group {
			groups = append(groups, ruleGroup{name: rule.Group})
		}
		g := &groups[len(groups)-1]
		g.rules = append(g.rules, rule)
	}
	return groups
}

func truncateOneLine(s string, maxLen int) string {
	s = strings.Join(strings.Fields(s), " ")
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen-3] + "..."
}
