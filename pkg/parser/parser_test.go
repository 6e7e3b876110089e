package parser_test

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/customfm/fmlint/pkg/dialects/ansi"
	"github.com/customfm/fmlint/pkg/dialects/duckdb"
	"github.com/customfm/fmlint/pkg/parser"
	"github.com/customfm/fmlint/pkg/segment"
)

// outline lists the code segments of a tree, indented by depth.
func outline(root *segment.Segment) []string {
	var out []string
	segment.Walk(root, func(seg *segment.Segment, parents []*segment.Segment) bool {
		if seg.IsLeaf() && !seg.IsCode() {
			return true
		}
		line := strings.Repeat("  ", len(parents)) + seg.Type
		if seg.IsLeaf() {
			line += " " + seg.Raw
		}
		out = append(out, line)
		return true
	})
	return out
}

func TestParse_RoundTrip(t *testing.T) {
	inputs := []string{
		"",
		"select 1",
		"select a, b from t\n",
		"  select *\n\n  from t -- trailing\n",
		"select a from t; select b from u;",
		"with a as (select * from b), c (x) as (select 1) select * from a union all select * from c",
		"select case when a = 1 then 'x' when a = 2 then 'y' else null end as c from t",
		"select count(distinct a) filter (where b > 0) over (partition by c order by d rows between unbounded preceding and current row) from t",
		"select cast(a as varchar(10)), b::int, c[1] from t",
		"select * from a left join b on a.id = b.id and a.x = b.x inner join c using (id) cross join d",
		"select a from t where a in (1, 2) and b not between 1 and 2 and c is not null and d like '%x' and e not in (select f from g)",
		"select a from t group by a having count(*) > 1 order by a desc nulls last limit 10 offset 5",
		"select {{ col }} from {{ ref('model') }}\n{% if x %}where a = 1{% endif %}",
		"select string_agg(a, ',' order by a) from t",
		"select * from (select 1) as s(x), lateral (select 2) l",
		"select -a, +b, not c, 'a' || 'b' from t",
		"/* lead */ select\r\n\ta\r\n from t",
	}
	for _, in := range inputs {
		t.Run(in, func(t *testing.T) {
			tree, err := parser.Parse(in, ansi.ANSI)
			require.NoError(t, err)
			assert.Equal(t, in, segment.Render(tree))
		})
	}
}

func TestParse_Outline(t *testing.T) {
	tree, err := parser.Parse("select a from b", ansi.ANSI)
	require.NoError(t, err)

	want := []string{
		"file",
		"  statement",
		"    select_statement",
		"      select_clause",
		"        keyword select",
		"        select_clause_element",
		"          column_reference",
		"            identifier a",
		"      from_clause",
		"        keyword from",
		"        from_expression",
		"          from_expression_element",
		"            table_expression",
		"              table_reference",
		"                identifier b",
	}
	if diff := cmp.Diff(want, outline(tree)); diff != "" {
		t.Errorf("outline mismatch (-want +got):\n%s", diff)
	}
}

func TestParse_JoinCondition(t *testing.T) {
	tree, err := parser.Parse("select a from t left join u on t.id = u.id and t.x = 1", ansi.ANSI)
	require.NoError(t, err)

	conds := segment.FindAll(tree, segment.TypeJoinOnCondition)
	require.Len(t, conds, 1)

	want := []string{
		"join_on_condition",
		"  keyword on",
		"  expression",
		"    column_reference",
		"      identifier t",
		"      dot .",
		"      identifier id",
		"    comparison_operator =",
		"    column_reference",
		"      identifier u",
		"      dot .",
		"      identifier id",
		"    binary_operator and",
		"    column_reference",
		"      identifier t",
		"      dot .",
		"      identifier x",
		"    comparison_operator =",
		"    numeric_literal 1",
	}
	if diff := cmp.Diff(want, outline(conds[0])); diff != "" {
		t.Errorf("outline mismatch (-want +got):\n%s", diff)
	}
}

func TestParse_WhitespaceOwnership(t *testing.T) {
	tree, err := parser.Parse("select a\nfrom t\nleft join u\n    on t.id = u.id", ansi.ANSI)
	require.NoError(t, err)

	for _, typ := range []string{segment.TypeFromClause, segment.TypeJoinClause, segment.TypeJoinOnCondition} {
		nodes := segment.FindAll(tree, typ)
		require.NotEmpty(t, nodes, typ)
		for _, n := range nodes {
			assert.True(t, n.Children[0].IsCode(), "%s starts with trivia", typ)
			assert.True(t, n.Children[len(n.Children)-1].IsCode(), "%s ends with trivia", typ)
		}
	}

	join := segment.FindAll(tree, segment.TypeJoinClause)[0]
	cond := segment.FindAll(tree, segment.TypeJoinOnCondition)[0]
	assert.Equal(t, join, segment.ParentOf(tree, cond))
	idx := segment.Of(join.Children...).Index(cond)
	require.GreaterOrEqual(t, idx, 2)
	assert.Equal(t, segment.TypeWhitespace, join.Children[idx-1].Type)
	assert.Equal(t, segment.TypeNewline, join.Children[idx-2].Type)
}

func TestParse_Structure(t *testing.T) {
	tests := []struct {
		name   string
		sql    string
		typ    string
		parent string
		count  int
	}{
		{name: "cte", sql: "with a as (select 1) select * from a", typ: segment.TypeCommonTableExpression, parent: segment.TypeWithCompoundStatement, count: 1},
		{name: "wildcard", sql: "select t.* from t", typ: segment.TypeWildcardExpression, parent: segment.TypeSelectClauseElement, count: 1},
		{name: "set expression order by", sql: "select a from t union select b from u order by 1", typ: segment.TypeOrderByClause, parent: segment.TypeSetExpression, count: 1},
		{name: "window order by", sql: "select row_number() over (order by a) from t", typ: segment.TypeOrderByClause, parent: segment.TypeWindowSpecification, count: 1},
		{name: "aggregate order by", sql: "select string_agg(a, ',' order by a) from t", typ: segment.TypeOrderByClause, parent: segment.TypeBracketed, count: 1},
		{name: "case", sql: "select case when a then 1 else 2 end from t", typ: segment.TypeWhenClause, parent: segment.TypeCaseExpression, count: 1},
		{name: "case in expression", sql: "select case when a then 1 end as x from t", typ: segment.TypeCaseExpression, parent: segment.TypeExpression, count: 1},
		{name: "two joins", sql: "select * from a join b on a.x = b.x join c on c.y = b.y", typ: segment.TypeJoinClause, parent: segment.TypeFromExpression, count: 2},
		{name: "empty over", sql: "select count(*) over () from t", typ: segment.TypeWindowSpecification, count: 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tree, err := parser.Parse(tt.sql, ansi.ANSI)
			require.NoError(t, err)
			nodes := segment.FindAll(tree, tt.typ)
			require.Len(t, nodes, tt.count)
			for _, n := range nodes {
				assert.Equal(t, tt.parent, segment.ParentOf(tree, n).Type)
			}
		})
	}
}

func TestParse_BetweenAndIsKeyword(t *testing.T) {
	sql := "select a from t where a between 1 and 2 and b = 1"
	tree, err := parser.Parse(sql, ansi.ANSI)
	require.NoError(t, err)

	ops := segment.FindAll(tree, segment.TypeBinaryOperator)
	require.Len(t, ops, 1, "only the second AND combines conditions")
	assert.Equal(t, strings.Index(sql, "and b")+1, ops[0].Start().Column)
}

func TestParse_Qualify(t *testing.T) {
	tree, err := parser.Parse("select a from t qualify row_number() over (partition by a) = 1", duckdb.DuckDB)
	require.NoError(t, err)
	assert.Len(t, segment.FindAll(tree, segment.TypeQualifyClause), 1)
}

func TestParse_Errors(t *testing.T) {
	tests := []struct {
		name    string
		sql     string
		message string
	}{
		{name: "not a query", sql: "update t set a = 1", message: "expected SELECT or WITH"},
		{name: "missing table", sql: "select a from", message: "expected table name or subquery"},
		{name: "missing expression", sql: "select", message: "end of input"},
		{name: "unclosed bracket", sql: "select (a from t", message: "expected"},
		{name: "trailing garbage", sql: "select a from t t2 t3", message: "unexpected token"},
		{name: "case without when", sql: "select case end", message: "expected expression"},
		{name: "lex error", sql: "select 'abc", message: parser.ErrUnterminatedString},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tree, err := parser.Parse(tt.sql, ansi.ANSI)
			require.Error(t, err)
			assert.Nil(t, tree)
			assert.Contains(t, err.Error(), tt.message)
		})
	}
}

func TestParse_ErrorPosition(t *testing.T) {
	_, err := parser.Parse("select a\nfrom", ansi.ANSI)
	var pe *parser.ParseError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, 2, pe.Pos.Line)
	assert.Equal(t, "parse error at line 2, column 5: "+pe.Message, pe.Error())
}

func TestParse_DeepNestingFails(t *testing.T) {
	sql := "select " + strings.Repeat("(", 2000) + "1" + strings.Repeat(")", 2000)
	assert.NotPanics(t, func() {
		_, err := parser.Parse(sql, ansi.ANSI)
		assert.Error(t, err)
	})
}

func TestParse_Deterministic(t *testing.T) {
	sql := "with a as (select x from b) select * from a left join c on a.x = c.x"
	first, err := parser.Parse(sql, ansi.ANSI)
	require.NoError(t, err)
	second, err := parser.Parse(sql, ansi.ANSI)
	require.NoError(t, err)
	assert.Empty(t, cmp.Diff(outline(first), outline(second)))
}
