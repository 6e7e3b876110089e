package segment

import "strings"

// Predicate tests a single segment.
type Predicate func(*Segment) bool

// Segments is an ordered selection of sibling segments with a small
// functional API for rules.
type Segments []*Segment

// Of wraps segments into a selection.
func Of(segs ...*Segment) Segments {
	return Segments(segs)
}

// IsType matches segments of any of the given types.
func IsType(types ...string) Predicate {
	return func(s *Segment) bool { return s.IsType(types...) }
}

// IsKeyword matches keyword leaves with one of the given words.
func IsKeyword(words ...string) Predicate {
	return func(s *Segment) bool { return s.IsKeyword(words...) }
}

// IsWhitespace matches whitespace and newline leaves.
func IsWhitespace() Predicate {
	return func(s *Segment) bool { return s.IsWhitespace() }
}

// IsNewline matches newline leaves.
func IsNewline() Predicate {
	return IsType(TypeNewline)
}

// IsCode matches segments that are not trivia.
func IsCode() Predicate {
	return func(s *Segment) bool { return s.IsCode() }
}

// Or matches when any predicate matches.
func Or(preds ...Predicate) Predicate {
	return func(s *Segment) bool {
		for _, p := range preds {
			if p(s) {
				return true
			}
		}
		return false
	}
}

// Not negates a predicate.
func Not(pred Predicate) Predicate {
	return func(s *Segment) bool { return !pred(s) }
}

func matchAll(s *Segment, preds []Predicate) bool {
	for _, p := range preds {
		if !p(s) {
			return false
		}
	}
	return true
}

// Filter returns the segments matching every predicate.
func (ss Segments) Filter(preds ...Predicate) Segments {
	var out Segments
	for _, s := range ss {
		if matchAll(s, preds) {
			out = append(out, s)
		}
	}
	return out
}

// Children returns the children of every segment in the selection, filtered
// by the predicates.
func (ss Segments) Children(preds ...Predicate) Segments {
	var out Segments
	for _, s := range ss {
		for _, c := range s.Children {
			if matchAll(c, preds) {
				out = append(out, c)
			}
		}
	}
	return out
}

// First returns a selection holding the first matching segment, or an empty
// selection.
func (ss Segments) First(preds ...Predicate) Segments {
	for _, s := range ss {
		if matchAll(s, preds) {
			return Segments{s}
		}
	}
	return nil
}

// Last returns a selection holding the last matching segment, or an empty
// selection.
func (ss Segments) Last(preds ...Predicate) Segments {
	for i := len(ss) - 1; i >= 0; i-- {
		if matchAll(ss[i], preds) {
			return Segments{ss[i]}
		}
	}
	return nil
}

// Reversed returns a copy of the selection in reverse order.
func (ss Segments) Reversed() Segments {
	out := make(Segments, len(ss))
	for i, s := range ss {
		out[len(ss)-1-i] = s
	}
	return out
}

// Index returns the position of seg in the selection, or -1.
func (ss Segments) Index(seg *Segment) int {
	for i, s := range ss {
		if s == seg {
			return i
		}
	}
	return -1
}

// Any reports whether at least one segment matches.
func (ss Segments) Any(preds ...Predicate) bool {
	return len(ss.First(preds...)) > 0
}

// Get returns the segment at i, or nil when out of range.
func (ss Segments) Get(i int) *Segment {
	if i < 0 || i >= len(ss) {
		return nil
	}
	return ss[i]
}

// Select scans the segments after start (the whole selection when start is
// nil), stops at the first segment failing loopWhile, and returns the
// scanned segments matching selectIf. A nil predicate matches everything.
// When start is not part of the selection the result is empty.
func (ss Segments) Select(selectIf Predicate, start *Segment, loopWhile Predicate) Segments {
	from := 0
	if start != nil {
		idx := ss.Index(start)
		if idx < 0 {
			return nil
		}
		from = idx + 1
	}
	var out Segments
	for _, s := range ss[from:] {
		if loopWhile != nil && !loopWhile(s) {
			break
		}
		if selectIf == nil || selectIf(s) {
			out = append(out, s)
		}
	}
	return out
}

// Text renders the selection back to source text.
func (ss Segments) Text() string {
	var b strings.Builder
	for _, s := range ss {
		s.render(&b)
	}
	return b.String()
}
