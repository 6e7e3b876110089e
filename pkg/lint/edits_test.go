package lint_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/customfm/fmlint/pkg/lint"
)

func TestApplyEdits(t *testing.T) {
	const src = "select a from b"

	tests := []struct {
		name    string
		edits   []lint.TextEdit
		want    string
		applied int
	}{
		{
			name: "no edits",
			want: src,
		},
		{
			name:    "replace",
			edits:   []lint.TextEdit{{Pos: at(8), EndPos: at(9), NewText: "\n"}},
			want:    "select a\nfrom b",
			applied: 1,
		},
		{
			name: "applied in offset order",
			edits: []lint.TextEdit{
				{Pos: at(13), EndPos: at(14), NewText: "\n\n"},
				{Pos: at(6), EndPos: at(7), NewText: "\n"},
			},
			want:    "select\na from\n\nb",
			applied: 2,
		},
		{
			name: "overlap dropped",
			edits: []lint.TextEdit{
				{Pos: at(6), EndPos: at(9), NewText: "_"},
				{Pos: at(8), EndPos: at(9), NewText: "X"},
			},
			want:    "select_from b",
			applied: 1,
		},
		{
			name: "second insertion at same offset dropped",
			edits: []lint.TextEdit{
				{Pos: at(0), EndPos: at(0), NewText: "-- x\n"},
				{Pos: at(0), EndPos: at(0), NewText: "-- y\n"},
			},
			want:    "-- x\nselect a from b",
			applied: 1,
		},
		{
			name: "insertion then replacement at same offset",
			edits: []lint.TextEdit{
				{Pos: at(9), EndPos: at(13), NewText: "FROM"},
				{Pos: at(9), EndPos: at(9), NewText: "\n"},
			},
			want:    "select a \nfrom b",
			applied: 1,
		},
		{
			name:  "out of range ignored",
			edits: []lint.TextEdit{{Pos: at(10), EndPos: at(99), NewText: "x"}},
			want:  src,
		},
		{
			name: "adjacent edits both applied",
			edits: []lint.TextEdit{
				{Pos: at(6), EndPos: at(7), NewText: "\n"},
				{Pos: at(7), EndPos: at(7), NewText: "  "},
			},
			want:    "select\n  a from b",
			applied: 2,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, n := lint.ApplyEdits(src, tt.edits)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.applied, n)
		})
	}
}

func TestReplaceRun_EmptyRunInserts(t *testing.T) {
	e := lint.ReplaceRun(nil, at(4), "\n")
	assert.Equal(t, at(4), e.Pos)
	assert.Equal(t, at(4), e.EndPos)
	assert.Equal(t, "\n", e.NewText)
}
