package output

import (
	"fmt"
	"strings"

	dmp "github.com/sergi/go-diff/diffmatchpatch"
)

// diffContext is the number of unchanged lines shown around a change.
const diffContext = 3

// FixFileResult describes the fixes applied to one file.
type FixFileResult struct {
	Path      string `json:"path"`
	Changed   bool   `json:"changed"`
	Applied   int    `json:"applied"`
	Passes    int    `json:"passes"`
	Remaining int    `json:"remaining"`
	Diff      string `json:"diff,omitempty"`
}

// FixSummary tallies a fix run.
type FixSummary struct {
	FilesChecked int `json:"files_checked"`
	FilesChanged int `json:"files_changed"`
	EditsApplied int `json:"edits_applied"`
	Remaining    int `json:"remaining"`
}

// FixOutput is the result of a fix run. In check mode nothing is written
// and Changed means a fix is pending.
type FixOutput struct {
	Check   bool            `json:"check"`
	Summary FixSummary      `json:"summary"`
	Files   []FixFileResult `json:"files"`
}

// AddFile records the outcome of one file.
func (o *FixOutput) AddFile(res FixFileResult) {
	o.Summary.FilesChecked++
	o.Summary.Remaining += res.Remaining
	if res.Changed {
		o.Summary.FilesChanged++
		o.Summary.EditsApplied += res.Applied
	}
	o.Files = append(o.Files, res)
}

// RenderFix writes a fix result in the renderer's mode.
func (r *Renderer) RenderFix(out *FixOutput) error {
	if r.EffectiveMode() == ModeJSON {
		if out.Files == nil {
			out.Files = []FixFileResult{}
		}
		return r.JSON(out)
	}

	styles := r.Styles()
	verb := "fixed"
	if out.Check {
		verb = "would fix"
	}
	for _, res := range out.Files {
		if !res.Changed {
			continue
		}
		if res.Diff != "" {
			r.writeDiff(res.Diff)
			continue
		}
		r.Printf("%s %s (%d edits)\n", verb, styles.Path.Render(res.Path), res.Applied)
	}

	summary := fmt.Sprintf("%d of %d files %s, %d edits, %d unfixable issues remain",
		out.Summary.FilesChanged, out.Summary.FilesChecked, verb, out.Summary.EditsApplied, out.Summary.Remaining)
	if r.EffectiveMode() == ModeMarkdown {
		r.Printf("\n**%s**\n", summary)
		return nil
	}
	if out.Summary.FilesChanged == 0 && out.Summary.Remaining == 0 {
		r.Success("Nothing to fix")
		return nil
	}
	r.Println(summary)
	return nil
}

func (r *Renderer) writeDiff(diff string) {
	if r.EffectiveMode() == ModeMarkdown {
		r.Printf("```diff\n%s```\n", diff)
		return
	}
	styles := r.Styles()
	for _, line := range strings.SplitAfter(diff, "\n") {
		if line == "" {
			continue
		}
		switch {
		case strings.HasPrefix(line, "+++"), strings.HasPrefix(line, "---"):
			r.Printf("%s", styles.Bold.Render(line))
		case strings.HasPrefix(line, "@@"):
			r.Printf("%s", styles.Info.Render(line))
		case strings.HasPrefix(line, "+"):
			r.Printf("%s", styles.Success.Render(line))
		case strings.HasPrefix(line, "-"):
			r.Printf("%s", styles.Error.Render(line))
		default:
			r.Printf("%s", line)
		}
	}
}

type diffLine struct {
	op   dmp.Operation
	text string
}

// UnifiedDiff returns a line-based unified diff from before to after, or ""
// when they are equal.
func UnifiedDiff(path, before, after string) string {
	if before == after {
		return ""
	}
	d := dmp.New()
	a, b, lines := d.DiffLinesToChars(before, after)
	diffs := d.DiffCharsToLines(d.DiffMain(a, b, false), lines)

	var all []diffLine
	for _, df := range diffs {
		for _, l := range splitLines(df.Text) {
			all = append(all, diffLine{op: df.Type, text: l})
		}
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "--- a/%s\n+++ b/%s\n", path, path)
	for start := 0; start < len(all); {
		first := nextChange(all, start)
		if first < 0 {
			break
		}
		// Extend the hunk while changes are close enough to share context.
		last := first
		for {
			next := nextChange(all, last+1)
			if next < 0 || next-last > 2*diffContext {
				break
			}
			last = next
		}
		lo := max(first-diffContext, 0)
		hi := min(last+diffContext+1, len(all))
		writeHunk(&sb, all, lo, hi)
		start = hi
	}
	return sb.String()
}

func writeHunk(sb *strings.Builder, all []diffLine, lo, hi int) {
	oldStart, newStart := 1, 1
	for _, l := range all[:lo] {
		if l.op != dmp.DiffInsert {
			oldStart++
		}
		if l.op != dmp.DiffDelete {
			newStart++
		}
	}
	var oldLen, newLen int
	for _, l := range all[lo:hi] {
		if l.op != dmp.DiffInsert {
			oldLen++
		}
		if l.op != dmp.DiffDelete {
			newLen++
		}
	}
	fmt.Fprintf(sb, "@@ -%d,%d +%d,%d @@\n", oldStart, oldLen, newStart, newLen)
	for _, l := range all[lo:hi] {
		switch l.op {
		case dmp.DiffInsert:
			sb.WriteString("+")
		case dmp.DiffDelete:
			sb.WriteString("-")
		default:
			sb.WriteString(" ")
		}
		sb.WriteString(l.text)
		sb.WriteString("\n")
	}
}

func nextChange(all []diffLine, from int) int {
	for i := from; i < len(all); i++ {
		if all[i].op != dmp.DiffEqual {
			return i
		}
	}
	return -1
}

func splitLines(s string) []string {
	if s == "" {
		return nil
	}
	return strings.Split(strings.TrimSuffix(s, "\n"), "\n")
}
