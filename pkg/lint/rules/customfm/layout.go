package customfm

import (
	"strings"

	"github.com/customfm/fmlint/pkg/lint"
	"github.com/customfm/fmlint/pkg/segment"
)

// gapBefore returns the whitespace and newlines directly before anchor among
// its siblings, nearest first. Comments end the gap.
func gapBefore(siblings segment.Segments, anchor *segment.Segment) segment.Segments {
	return siblings.Reversed().Select(nil, anchor, segment.IsWhitespace())
}

// gapAfter returns the whitespace, newlines and commas directly after anchor.
func gapAfter(siblings segment.Segments, anchor *segment.Segment) segment.Segments {
	return siblings.Select(nil, anchor, segment.Or(segment.IsWhitespace(), segment.IsType(segment.TypeComma)))
}

func countNewlines(run segment.Segments) int {
	return len(run.Filter(segment.IsNewline()))
}

// requireNewlinesBefore returns an edit making the gap before anchor exactly
// n newlines, or nil when it already is.
func requireNewlinesBefore(siblings segment.Segments, anchor *segment.Segment, n int) []lint.TextEdit {
	run := gapBefore(siblings, anchor)
	if countNewlines(run) == n {
		return nil
	}
	return []lint.TextEdit{lint.ReplaceRun(run, anchor.Start(), strings.Repeat("\n", n))}
}

// requireNewlinesAfter is requireNewlinesBefore for the gap after anchor.
// prefix is written before the newlines, e.g. the comma a gap replaces.
func requireNewlinesAfter(run segment.Segments, anchor *segment.Segment, n int, prefix string) []lint.TextEdit {
	if countNewlines(run) == n {
		return nil
	}
	return []lint.TextEdit{lint.ReplaceRun(run, anchor.End(), prefix+strings.Repeat("\n", n))}
}
