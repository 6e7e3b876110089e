package starlark

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.starlark.net/starlark"
	"go.starlark.net/syntax"

	"github.com/customfm/fmlint/pkg/dialect"
	_ "github.com/customfm/fmlint/pkg/dialects"
	"github.com/customfm/fmlint/pkg/lint"
	"github.com/customfm/fmlint/pkg/parser"
	"github.com/customfm/fmlint/pkg/segment"
)

func TestGoToStarlark(t *testing.T) {
	tests := []struct {
		name    string
		input   any
		wantStr string
		wantErr bool
	}{
		{name: "string", input: "hello", wantStr: `"hello"`},
		{name: "int", input: 42, wantStr: "42"},
		{name: "int64", input: int64(123456789), wantStr: "123456789"},
		{name: "float64", input: 3.14, wantStr: "3.14"},
		{name: "bool", input: true, wantStr: "True"},
		{name: "nil", input: nil, wantStr: "None"},
		{name: "string slice", input: []string{"from", "where"}, wantStr: `["from", "where"]`},
		{name: "any slice", input: []any{"x", 1, true}, wantStr: `["x", 1, True]`},
		{name: "map keys sorted", input: map[string]any{"b": 1, "a": "x"}, wantStr: `{"a": "x", "b": 1}`},
		{name: "unsupported", input: struct{}{}, wantErr: true},
		{name: "unsupported nested", input: map[string]any{"k": []any{uint8(1)}}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := GoToStarlark(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantStr, got.String())
		})
	}
}

func TestToGo(t *testing.T) {
	dict := starlark.NewDict(1)
	require.NoError(t, dict.SetKey(starlark.String("keywords"), starlark.NewList([]starlark.Value{starlark.String("from")})))
	badDict := starlark.NewDict(1)
	require.NoError(t, badDict.SetKey(starlark.MakeInt(1), starlark.None))

	tests := []struct {
		name    string
		input   starlark.Value
		want    any
		wantErr bool
	}{
		{name: "string", input: starlark.String("hello"), want: "hello"},
		{name: "int", input: starlark.MakeInt(42), want: int64(42)},
		{name: "float", input: starlark.Float(3.14), want: 3.14},
		{name: "bool", input: starlark.Bool(false), want: false},
		{name: "none", input: starlark.None, want: nil},
		{name: "tuple", input: starlark.Tuple{starlark.String("a"), starlark.MakeInt(1)}, want: []any{"a", int64(1)}},
		{name: "dict", input: dict, want: map[string]any{"keywords": []any{"from"}}},
		{name: "non-string key", input: badDict, wantErr: true},
		{name: "function", input: starlark.NewBuiltin("f", nil), wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ToGo(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func parseTree(t *testing.T, sql string) *segment.Segment {
	t.Helper()
	d, err := dialect.Lookup("")
	require.NoError(t, err)
	tree, err := parser.Parse(sql, d)
	require.NoError(t, err)
	return tree
}

func TestSegment_Attrs(t *testing.T) {
	tree := parseTree(t, "select a\nfrom b")
	from := segment.FindAll(tree, segment.TypeFromClause)
	require.Len(t, from, 1)
	v := NewSegment(from[0])

	get := func(name string) starlark.Value {
		t.Helper()
		val, err := v.Attr(name)
		require.NoError(t, err)
		require.NotNil(t, val, name)
		return val
	}

	assert.Equal(t, starlark.String("from_clause"), get("type"))
	assert.Equal(t, starlark.String("from b"), get("text"))
	assert.Equal(t, starlark.String(""), get("raw"))
	assert.Equal(t, starlark.MakeInt(2), get("line"))
	assert.Equal(t, starlark.MakeInt(1), get("column"))
	assert.Equal(t, starlark.Bool(true), get("is_code"))
	assert.Equal(t, starlark.Bool(false), get("is_leaf"))

	children, ok := get("children").(starlark.Tuple)
	require.True(t, ok)
	require.NotEmpty(t, children)
	kw := children[0].(*Segment)
	assert.True(t, kw.Unwrap().IsKeyword("from"))

	missing, err := v.Attr("nope")
	require.NoError(t, err)
	assert.Nil(t, missing)
	assert.Equal(t, segmentAttrs, v.AttrNames())
}

func TestSegment_Methods(t *testing.T) {
	tree := parseTree(t, "select a from b")
	from := segment.FindAll(tree, segment.TypeFromClause)[0]
	thread := &starlark.Thread{Name: "test"}

	res, err := starlark.Eval(thread, "t", `s.is_type("where_clause", "from_clause")`, starlark.StringDict{"s": NewSegment(from)}) //nolint:staticcheck // SA1019
	require.NoError(t, err)
	assert.Equal(t, starlark.True, res)

	res, err = starlark.Eval(thread, "t", `s.children[0].is_keyword("FROM")`, starlark.StringDict{"s": NewSegment(from)}) //nolint:staticcheck // SA1019
	require.NoError(t, err)
	assert.Equal(t, starlark.True, res)

	_, err = starlark.Eval(thread, "t", `s.is_type(1)`, starlark.StringDict{"s": NewSegment(from)}) //nolint:staticcheck // SA1019
	assert.ErrorContains(t, err, "must be a string")
}

func TestSegment_Equality(t *testing.T) {
	tree := parseTree(t, "select a from b")
	from := segment.FindAll(tree, segment.TypeFromClause)[0]

	eq, err := starlark.Compare(syntax.EQL, NewSegment(from), NewSegment(from))
	require.NoError(t, err)
	assert.True(t, eq)

	neq, err := starlark.Compare(syntax.EQL, NewSegment(from), NewSegment(tree))
	require.NoError(t, err)
	assert.False(t, neq)

	_, err = starlark.Compare(syntax.LT, NewSegment(from), NewSegment(tree))
	assert.Error(t, err)

	_, err = NewSegment(from).Hash()
	assert.Error(t, err)
}

func TestContextValue(t *testing.T) {
	tree := parseTree(t, "select a from b")
	from := segment.FindAll(tree, segment.TypeFromClause)[0]
	stmt := segment.ParentOf(tree, from)
	d, err := dialect.Lookup("duckdb")
	require.NoError(t, err)

	v, err := contextValue(&lint.RuleContext{
		Segment:     from,
		ParentStack: []*segment.Segment{tree, stmt},
		Dialect:     d,
		Options:     map[string]any{"limit": 3},
	})
	require.NoError(t, err)

	thread := &starlark.Thread{Name: "test"}
	res, err := starlark.Eval(thread, "t", `(ctx.segment.type, ctx.parent.type, len(ctx.parents), ctx.dialect, ctx.options["limit"])`, starlark.StringDict{"ctx": v}) //nolint:staticcheck // SA1019
	require.NoError(t, err)
	got, err := ToGo(res)
	require.NoError(t, err)
	assert.Equal(t, []any{"from_clause", stmt.Type, int64(2), "duckdb", int64(3)}, got)

	_, err = contextValue(&lint.RuleContext{Segment: from, Options: map[string]any{"bad": struct{}{}}})
	assert.Error(t, err)
}
