package customfm

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/customfm/fmlint/pkg/dialects/ansi"
	"github.com/customfm/fmlint/pkg/parser"
	"github.com/customfm/fmlint/pkg/segment"
)

func TestGapBefore(t *testing.T) {
	tree, err := parser.Parse("select *\n  \n  from foo -- x\n", ansi.ANSI)
	require.NoError(t, err)

	from := segment.FindAll(tree, segment.TypeFromClause)
	require.Len(t, from, 1)
	parent := segment.ParentOf(tree, from[0])
	require.NotNil(t, parent)

	gap := gapBefore(segment.Of(parent.Children...), from[0])
	assert.Equal(t, 2, countNewlines(gap))
	assert.Equal(t, "\n  \n  ", gap.Reversed().Text())
}

func TestGapBefore_CommentStopsScan(t *testing.T) {
	tree, err := parser.Parse("select *\n\n-- note\nfrom foo\n", ansi.ANSI)
	require.NoError(t, err)

	from := segment.FindAll(tree, segment.TypeFromClause)
	require.Len(t, from, 1)
	parent := segment.ParentOf(tree, from[0])

	gap := gapBefore(segment.Of(parent.Children...), from[0])
	assert.Equal(t, 1, countNewlines(gap))
}

func TestKeywordChecked(t *testing.T) {
	tests := []struct {
		clause   string
		keywords []string
		want     bool
	}{
		{segment.TypeFromClause, DefaultKeywordsToCheck, true},
		{segment.TypeHavingClause, DefaultKeywordsToCheck, false},
		{segment.TypeHavingClause, []string{"Having"}, true},
		{segment.TypeQualifyClause, []string{" qualify "}, true},
		{segment.TypeGroupByClause, []string{"groupby"}, false},
		{segment.TypeLimitClause, nil, false},
	}
	for _, tt := range tests {
		t.Run(tt.clause, func(t *testing.T) {
			assert.Equal(t, tt.want, keywordChecked(tt.clause, tt.keywords))
		})
	}
}

func TestRequireNewlinesBefore_EmptyGapInserts(t *testing.T) {
	tree, err := parser.Parse("select count(*) over (order by a) from foo", ansi.ANSI)
	require.NoError(t, err)

	spec := segment.FindAll(tree, segment.TypeWindowSpecification)
	require.Len(t, spec, 1)
	parent := segment.ParentOf(tree, spec[0])

	edits := requireNewlinesBefore(segment.Of(parent.Children...), spec[0], 1)
	require.Len(t, edits, 1)
	assert.Equal(t, edits[0].Pos, edits[0].EndPos)
	assert.Equal(t, spec[0].Start(), edits[0].Pos)
	assert.Equal(t, "\n", edits[0].NewText)
}
