package lint

import (
	"sort"
	"strings"

	"github.com/customfm/fmlint/pkg/segment"
	"github.com/customfm/fmlint/pkg/token"
)

// Delete returns an edit removing seg.
func Delete(seg *segment.Segment) TextEdit {
	return TextEdit{Pos: seg.Start(), EndPos: seg.End()}
}

// CreateBefore returns an edit inserting text just before anchor.
func CreateBefore(anchor *segment.Segment, text string) TextEdit {
	return TextEdit{Pos: anchor.Start(), EndPos: anchor.Start(), NewText: text}
}

// CreateAfter returns an edit inserting text just after anchor.
func CreateAfter(anchor *segment.Segment, text string) TextEdit {
	return TextEdit{Pos: anchor.End(), EndPos: anchor.End(), NewText: text}
}

// ReplaceRun returns an edit replacing a contiguous run of sibling segments
// with text. An empty run becomes an insertion at the fallback position.
func ReplaceRun(run segment.Segments, fallback token.Position, text string) TextEdit {
	if len(run) == 0 {
		return TextEdit{Pos: fallback, EndPos: fallback, NewText: text}
	}
	first, last := run[0], run[len(run)-1]
	if last.Start().Before(first.Start()) {
		first, last = last, first
	}
	return TextEdit{Pos: first.Start(), EndPos: last.End(), NewText: text}
}

// ApplyEdits applies edits to src. Edits are ordered by position; an edit
// overlapping one already accepted is dropped, and so is a second insertion
// at the same offset. It returns the new text and the number of edits
// applied.
func ApplyEdits(src string, edits []TextEdit) (string, int) {
	sorted := append([]TextEdit(nil), edits...)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].Pos.Offset != sorted[j].Pos.Offset {
			return sorted[i].Pos.Offset < sorted[j].Pos.Offset
		}
		return sorted[i].EndPos.Offset < sorted[j].EndPos.Offset
	})

	accepted := make([]TextEdit, 0, len(sorted))
	lastEnd, lastInsert := -1, -1
	for _, e := range sorted {
		start, end := e.Pos.Offset, e.EndPos.Offset
		if start < 0 || end < start || end > len(src) {
			continue
		}
		if start < lastEnd {
			continue
		}
		if start == end && start == lastInsert {
			continue
		}
		if start == end {
			lastInsert = start
		} else if start == lastInsert {
			// An insertion and a replacement at the same offset conflict.
			continue
		}
		accepted = append(accepted, e)
		lastEnd = end
	}

	var b strings.Builder
	b.Grow(len(src))
	prev := 0
	for _, e := range accepted {
		b.WriteString(src[prev:e.Pos.Offset])
		b.WriteString(e.NewText)
		prev = e.EndPos.Offset
	}
	b.WriteString(src[prev:])
	return b.String(), len(accepted)
}
