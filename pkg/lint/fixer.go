package lint

import (
	"context"
	"log/slog"

	"github.com/customfm/fmlint/pkg/parser"
	"github.com/customfm/fmlint/pkg/segment"
)

// FixResult is the outcome of fixing one source.
type FixResult struct {
	Path      string
	Source    string
	Fixed     string
	Passes    int          // lint passes that applied at least one edit
	Applied   int          // edits applied over all passes
	Remaining []Diagnostic // diagnostics left in Fixed
}

// Changed reports whether fixing altered the source.
func (r *FixResult) Changed() bool {
	return r.Fixed != r.Source
}

// Fixer applies rule fixes until the source stops changing.
type Fixer struct {
	analyzer *Analyzer
	limit    int
	logger   *slog.Logger
}

// NewFixer creates a fixer over an analyzer. The pass limit comes from the
// analyzer's config RunawayLimit.
func NewFixer(a *Analyzer) *Fixer {
	limit := a.config.RunawayLimit
	if limit <= 0 {
		limit = DefaultRunawayLimit
	}
	return &Fixer{analyzer: a, limit: limit, logger: a.logger}
}

// Fix lints sql, applies every non-overlapping fix, and repeats on the
// result until no fixable diagnostic is left, nothing changes, or the
// runaway limit is reached. Fixes that would leave the SQL unparsable are
// never kept.
func (f *Fixer) Fix(ctx context.Context, path, sql string) (*FixResult, error) {
	res := &FixResult{Path: path, Source: sql, Fixed: sql}
	tree, err := parser.Parse(sql, f.analyzer.dialect)
	if err != nil {
		res.Remaining = []Diagnostic{ParseErrorDiagnostic(err)}
		return res, nil
	}

	for pass := 0; pass < f.limit; pass++ {
		diags, err := f.analyzer.AnalyzeTree(ctx, tree)
		if err != nil {
			return nil, err
		}
		next, nextTree, applied := f.apply(path, res.Fixed, diags)
		if applied == 0 || next == res.Fixed {
			res.Remaining = diags
			return res, nil
		}
		res.Fixed, tree = next, nextTree
		res.Applied += applied
		res.Passes++
		f.logger.Debug("fix pass applied", "path", path, "pass", pass+1, "edits", applied)
	}

	f.logger.Warn("runaway fix limit reached", "path", path, "limit", f.limit)
	diags, err := f.analyzer.AnalyzeTree(ctx, tree)
	if err != nil {
		return nil, err
	}
	res.Remaining = diags
	return res, nil
}

// apply applies the fixes of diags to src. When the combined result does
// not parse, fixes are retried one diagnostic at a time and only those that
// keep src parsable are applied.
func (f *Fixer) apply(path, src string, diags []Diagnostic) (string, *segment.Segment, int) {
	edits := collectEdits(diags)
	if len(edits) == 0 {
		return src, nil, 0
	}
	next, applied := ApplyEdits(src, edits)
	tree, err := parser.Parse(next, f.analyzer.dialect)
	if err == nil {
		return next, tree, applied
	}

	var kept []TextEdit
	out, outTree, total := src, (*segment.Segment)(nil), 0
	for _, d := range diags {
		own := collectEdits([]Diagnostic{d})
		if len(own) == 0 {
			continue
		}
		candidate := append(append([]TextEdit(nil), kept...), own...)
		next, applied := ApplyEdits(src, candidate)
		tree, err := parser.Parse(next, f.analyzer.dialect)
		if err != nil {
			f.logger.Debug("fix dropped, result does not parse", "path", path, "rule", d.RuleID, "error", err)
			continue
		}
		kept = candidate
		out, outTree, total = next, tree, applied
	}
	return out, outTree, total
}

func collectEdits(diags []Diagnostic) []TextEdit {
	var edits []TextEdit
	for _, d := range diags {
		if !d.AutoFixable {
			continue
		}
		for _, fix := range d.Fixes {
			edits = append(edits, fix.TextEdits...)
		}
	}
	return edits
}
