package segment_test

import (
	"bytes"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/customfm/fmlint/pkg/dialects/ansi"
	"github.com/customfm/fmlint/pkg/parser"
	"github.com/customfm/fmlint/pkg/segment"
)

func TestWalk_ParentStack(t *testing.T) {
	tree, err := parser.Parse("select a from b", ansi.ANSI)
	require.NoError(t, err)

	var chain []string
	segment.Walk(tree, func(seg *segment.Segment, parents []*segment.Segment) bool {
		if seg.Type == segment.TypeTableReference {
			for _, p := range parents {
				chain = append(chain, p.Type)
			}
		}
		return true
	})
	want := []string{
		segment.TypeFile, segment.TypeStatement, segment.TypeSelectStatement,
		segment.TypeFromClause, segment.TypeFromExpression,
		segment.TypeFromExpressionElement, segment.TypeTableExpression,
	}
	if diff := cmp.Diff(want, chain); diff != "" {
		t.Errorf("parent stack mismatch (-want +got):\n%s", diff)
	}
}

func TestWalk_SkipChildren(t *testing.T) {
	tree, err := parser.Parse("select a from b", ansi.ANSI)
	require.NoError(t, err)

	var visited []string
	segment.Walk(tree, func(seg *segment.Segment, _ []*segment.Segment) bool {
		visited = append(visited, seg.Type)
		return seg.Type != segment.TypeSelectStatement
	})
	assert.NotContains(t, visited, segment.TypeSelectClause)
	assert.Contains(t, visited, segment.TypeSelectStatement)
}

func TestFindAllAndParentOf(t *testing.T) {
	tree, err := parser.Parse("select a, b from c", ansi.ANSI)
	require.NoError(t, err)

	elems := segment.FindAll(tree, segment.TypeSelectClauseElement)
	require.Len(t, elems, 2)
	assert.Equal(t, "a", elems[0].Text())
	assert.Equal(t, "b", elems[1].Text())
	assert.Equal(t, segment.TypeSelectClause, segment.ParentOf(tree, elems[1]).Type)
	assert.Nil(t, segment.ParentOf(tree, tree))
}

func TestSegment_SpanAndText(t *testing.T) {
	sql := "select a\nfrom  b"
	tree, err := parser.Parse(sql, ansi.ANSI)
	require.NoError(t, err)

	from := segment.FindAll(tree, segment.TypeFromClause)[0]
	assert.Equal(t, "from  b", from.Text())
	assert.Equal(t, 2, from.Start().Line)
	assert.Equal(t, 1, from.Start().Column)
	assert.Equal(t, len(sql), from.End().Offset)
	assert.Equal(t, sql, segment.Render(tree))
	assert.Equal(t, "", segment.Render(nil))

	var raw []string
	for _, leaf := range from.Leaves() {
		raw = append(raw, leaf.Raw)
	}
	assert.Equal(t, []string{"from", "  ", "b"}, raw)
	assert.True(t, from.IsCode())
}

func TestFormat(t *testing.T) {
	tree, err := parser.Parse("select a", ansi.ANSI)
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, segment.Format(&buf, tree, segment.FormatOptions{CodeOnly: true}))

	want := []string{
		`[L:  1, P:  1]      |file:`,
		`[L:  1, P:  1]      |    statement:`,
		`[L:  1, P:  1]      |        select_statement:`,
		`[L:  1, P:  1]      |            select_clause:`,
		`[L:  1, P:  1]      |                keyword:           "select"`,
		`[L:  1, P:  8]      |                select_clause_element:`,
		`[L:  1, P:  8]      |                    column_reference:`,
		`[L:  1, P:  8]      |                        identifier: "a"`,
	}
	got := strings.Split(strings.TrimSuffix(buf.String(), "\n"), "\n")
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("format mismatch (-want +got):\n%s", diff)
	}
}

func TestFormat_ShowsTrivia(t *testing.T) {
	tree, err := parser.Parse("select\n a", ansi.ANSI)
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, segment.Format(&buf, tree, segment.FormatOptions{}))
	assert.Contains(t, buf.String(), `newline:`)
	assert.Contains(t, buf.String(), `"\n"`)
}
