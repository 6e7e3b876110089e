package output

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/customfm/fmlint/pkg/lint"
)

// LintDiagnostic is one finding as rendered.
type LintDiagnostic struct {
	RuleID           string `json:"rule_id"`
	Severity         string `json:"severity"`
	Message          string `json:"message"`
	Line             int    `json:"line"`
	Column           int    `json:"column"`
	EndLine          int    `json:"end_line"`
	EndColumn        int    `json:"end_column"`
	Fixable          bool   `json:"fixable"`
	DocumentationURL string `json:"documentation_url,omitempty"`
}

// NewLintDiagnostic converts a lint diagnostic.
func NewLintDiagnostic(d lint.Diagnostic) LintDiagnostic {
	return LintDiagnostic{
		RuleID:           d.RuleID,
		Severity:         d.Severity.String(),
		Message:          d.Message,
		Line:             d.Pos.Line,
		Column:           d.Pos.Column,
		EndLine:          d.EndPos.Line,
		EndColumn:        d.EndPos.Column,
		Fixable:          d.AutoFixable,
		DocumentationURL: d.DocumentationURL,
	}
}

// LintFileResult holds the findings of one file.
type LintFileResult struct {
	Path        string           `json:"path"`
	Diagnostics []LintDiagnostic `json:"diagnostics"`
	Cached      bool             `json:"cached,omitempty"`
}

// LintSummary tallies a lint run.
type LintSummary struct {
	FilesAnalyzed   int `json:"files_analyzed"`
	FilesWithIssues int `json:"files_with_issues"`
	TotalIssues     int `json:"total_issues"`
	Errors          int `json:"errors"`
	Warnings        int `json:"warnings"`
	Info            int `json:"info"`
	Hints           int `json:"hints"`
	Fixable         int `json:"fixable"`
	CacheHits       int `json:"cache_hits,omitempty"`
}

// LintOutput is the result of a lint run.
type LintOutput struct {
	Summary LintSummary      `json:"summary"`
	Files   []LintFileResult `json:"files"`
}

// AddFile records the diagnostics of one analyzed file.
func (o *LintOutput) AddFile(path string, diags []lint.Diagnostic, cached bool) {
	o.Summary.FilesAnalyzed++
	if cached {
		o.Summary.CacheHits++
	}
	if len(diags) == 0 {
		return
	}
	res := LintFileResult{Path: path, Cached: cached}
	for _, d := range diags {
		res.Diagnostics = append(res.Diagnostics, NewLintDiagnostic(d))
		o.Summary.TotalIssues++
		if d.AutoFixable {
			o.Summary.Fixable++
		}
		switch d.Severity {
		case lint.SeverityError:
			o.Summary.Errors++
		case lint.SeverityWarning:
			o.Summary.Warnings++
		case lint.SeverityInfo:
			o.Summary.Info++
		case lint.SeverityHint:
			o.Summary.Hints++
		}
	}
	o.Summary.FilesWithIssues++
	o.Files = append(o.Files, res)
}

// RenderLint writes a lint result in the renderer's mode.
func (r *Renderer) RenderLint(out *LintOutput) error {
	switch r.EffectiveMode() {
	case ModeJSON:
		if out.Files == nil {
			out.Files = []LintFileResult{}
		}
		return r.JSON(out)
	case ModeGitHub:
		r.lintGitHub(out)
	case ModeMarkdown:
		r.lintMarkdown(out)
	default:
		r.lintText(out)
	}
	return nil
}

func (r *Renderer) lintText(out *LintOutput) {
	if out.Summary.TotalIssues == 0 {
		r.Success(fmt.Sprintf("No lint issues found in %d files", out.Summary.FilesAnalyzed))
		return
	}
	styles := r.Styles()
	for _, res := range out.Files {
		r.Println(styles.Path.Render(res.Path))
		for _, d := range res.Diagnostics {
			r.Printf("  %s  %s  %s  %s\n",
				styles.Muted.Render(fmt.Sprintf("%-7s", location(d))),
				r.severityLabel(d.Severity),
				styles.RuleID.Render(d.RuleID),
				d.Message,
			)
		}
		r.Println("")
	}
	r.Println(summaryLine(out.Summary))
}

func (r *Renderer) lintMarkdown(out *LintOutput) {
	r.Println("# Lint Results")
	r.Println("")
	if out.Summary.TotalIssues == 0 {
		r.Printf("No lint issues found in %d files.\n", out.Summary.FilesAnalyzed)
		return
	}
	for _, res := range out.Files {
		r.Printf("## %s\n\n", res.Path)
		r.Println("| Location | Severity | Rule | Message |")
		r.Println("|---|---|---|---|")
		for _, d := range res.Diagnostics {
			r.Printf("| %s | %s | `%s` | %s |\n", location(d), d.Severity, d.RuleID, EscapeTableCell(d.Message))
		}
		r.Println("")
	}
	r.Printf("**%s**\n", summaryLine(out.Summary))
}

// lintGitHub writes one workflow command per diagnostic, which GitHub
// Actions turns into file annotations.
func (r *Renderer) lintGitHub(out *LintOutput) {
	for _, res := range out.Files {
		for _, d := range res.Diagnostics {
			r.Printf("::%s file=%s,line=%d,col=%d,endLine=%d,endColumn=%d,title=%s::%s\n",
				githubLevel(d.Severity),
				escapeProperty(res.Path),
				d.Line, d.Column, d.EndLine, d.EndColumn,
				escapeProperty(d.RuleID),
				escapeData(d.Message),
			)
		}
	}
}

func (r *Renderer) severityLabel(sev string) string {
	return SeverityStyle(r.Styles(), sev).Render(fmt.Sprintf("%-7s", sev))
}

// SeverityStyle returns the style a severity name is shown in.
func SeverityStyle(styles *Styles, sev string) lipgloss.Style {
	switch sev {
	case lint.SeverityError.String():
		return styles.Error
	case lint.SeverityWarning.String():
		return styles.Warning
	case lint.SeverityInfo.String():
		return styles.Info
	default:
		return styles.Muted
	}
}

func location(d LintDiagnostic) string {
	if d.Line == 0 {
		return "-"
	}
	return fmt.Sprintf("%d:%d", d.Line, d.Column)
}

func summaryLine(s LintSummary) string {
	parts := []string{fmt.Sprintf("%d issues", s.TotalIssues)}
	if s.Errors > 0 {
		parts = append(parts, fmt.Sprintf("%d errors", s.Errors))
	}
	if s.Warnings > 0 {
		parts = append(parts, fmt.Sprintf("%d warnings", s.Warnings))
	}
	if s.Info > 0 {
		parts = append(parts, fmt.Sprintf("%d info", s.Info))
	}
	if s.Hints > 0 {
		parts = append(parts, fmt.Sprintf("%d hints", s.Hints))
	}
	line := fmt.Sprintf("Summary: %s in %d of %d files", strings.Join(parts, ", "), s.FilesWithIssues, s.FilesAnalyzed)
	if s.Fixable > 0 {
		line += fmt.Sprintf(" (%d fixable with 'fmlint fix')", s.Fixable)
	}
	return line
}

func githubLevel(sev string) string {
	switch sev {
	case lint.SeverityError.String():
		return "error"
	case lint.SeverityWarning.String():
		return "warning"
	default:
		return "notice"
	}
}

var (
	dataEscaper     = strings.NewReplacer("%", "%25", "\r", "%0D", "\n", "%0A")
	propertyEscaper = strings.NewReplacer("%", "%25", "\r", "%0D", "\n", "%0A", ":", "%3A", ",", "%2C")
	cellEscaper     = strings.NewReplacer("|", `\|`, "\n", " ")
)

func escapeData(s string) string     { return dataEscaper.Replace(s) }
func escapeProperty(s string) string { return propertyEscaper.Replace(s) }

// EscapeTableCell makes s safe inside a markdown table cell.
func EscapeTableCell(s string) string { return cellEscaper.Replace(s) }
