package segment

import (
	"fmt"
	"io"
	"strconv"
	"strings"
)

// FormatOptions controls Format output.
type FormatOptions struct {
	// CodeOnly hides whitespace and newline leaves.
	CodeOnly bool
}

// Format writes an indented dump of the tree, one segment per line, in the
// layout of `sqlfluff parse`:
//
//	[L:  1, P:  1]      |select_statement:
//	[L:  1, P:  1]      |    select_clause:
//	[L:  1, P:  1]      |        keyword:                          "select"
func Format(w io.Writer, root *Segment, opts FormatOptions) error {
	var err error
	var emit func(seg *Segment, depth int)
	emit = func(seg *Segment, depth int) {
		if err != nil {
			return
		}
		if opts.CodeOnly && seg.IsLeaf() && seg.IsWhitespace() {
			return
		}
		prefix := fmt.Sprintf("[L:%3d, P:%3d]      |%s", seg.Start().Line, seg.Start().Column, strings.Repeat("    ", depth))
		if seg.IsLeaf() {
			label := seg.Type + ":"
			_, err = fmt.Fprintf(w, "%s%-*s %s\n", prefix, max(34-4*depth, len(label)), label, strconv.Quote(seg.Raw))
			return
		}
		if _, err = fmt.Fprintf(w, "%s%s:\n", prefix, seg.Type); err != nil {
			return
		}
		for _, c := range seg.Children {
			emit(c, depth+1)
		}
	}
	emit(root, 0)
	return err
}
