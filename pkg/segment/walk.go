package segment

// VisitFunc is called for every segment of a tree. parents holds the chain
// of ancestors, outermost first; it is only valid for the duration of the
// call. Returning false skips the segment's children.
type VisitFunc func(seg *Segment, parents []*Segment) bool

// Walk visits root and its descendants depth-first, in source order.
func Walk(root *Segment, fn VisitFunc) {
	if root == nil {
		return
	}
	walk(root, make([]*Segment, 0, 16), fn)
}

func walk(seg *Segment, parents []*Segment, fn VisitFunc) {
	if !fn(seg, parents) {
		return
	}
	if seg.IsLeaf() {
		return
	}
	parents = append(parents, seg)
	for _, c := range seg.Children {
		walk(c, parents, fn)
	}
}

// FindAll returns every segment of the given types, in source order.
func FindAll(root *Segment, types ...string) []*Segment {
	var out []*Segment
	Walk(root, func(seg *Segment, _ []*Segment) bool {
		if seg.IsType(types...) {
			out = append(out, seg)
		}
		return true
	})
	return out
}

// ParentOf returns the direct parent of target under root, or nil.
func ParentOf(root, target *Segment) *Segment {
	var parent *Segment
	Walk(root, func(seg *Segment, parents []*Segment) bool {
		if parent != nil {
			return false
		}
		if seg == target && len(parents) > 0 {
			parent = parents[len(parents)-1]
			return false
		}
		return true
	})
	return parent
}
