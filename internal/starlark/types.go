// Package starlark loads user lint rules written in Starlark.
//
// A rule file calls the predeclared rule() builtin once per rule. Each rule
// names the segment types it crawls and an eval function taking a context
// struct and returning violations:
//
//	def no_limit(ctx):
//	    return [violation(ctx.segment, "LIMIT is not allowed.", fixes = [delete(ctx.segment)])]
//
//	rule(id = "USR_L001", crawl = ["limit_clause"], eval = no_limit)
//
// Rules loaded from a file form one lint.Plugin.
package starlark

import (
	"fmt"
	"sort"
	"strings"

	"go.starlark.net/starlark"
	"go.starlark.net/starlarkstruct"
	"go.starlark.net/syntax"

	"github.com/customfm/fmlint/pkg/lint"
	"github.com/customfm/fmlint/pkg/segment"
)

// GoToStarlark converts a Go value to a Starlark value.
// Supported types: string, int, int64, float64, bool, []string, []any, map[string]any
func GoToStarlark(v any) (starlark.Value, error) {
	if v == nil {
		return starlark.None, nil
	}

	switch val := v.(type) {
	case string:
		return starlark.String(val), nil
	case int:
		return starlark.MakeInt(val), nil
	case int64:
		return starlark.MakeInt64(val), nil
	case float64:
		return starlark.Float(val), nil
	case bool:
		return starlark.Bool(val), nil
	case []string:
		list := make([]starlark.Value, len(val))
		for i, s := range val {
			list[i] = starlark.String(s)
		}
		return starlark.NewList(list), nil
	case []any:
		list := make([]starlark.Value, len(val))
		for i, item := range val {
			sv, err := GoToStarlark(item)
			if err != nil {
				return nil, fmt.Errorf("list index %d: %w", i, err)
			}
			list[i] = sv
		}
		return starlark.NewList(list), nil
	case map[string]any:
		keys := make([]string, 0, len(val))
		for k := range val {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		dict := starlark.NewDict(len(val))
		for _, k := range keys {
			sv, err := GoToStarlark(val[k])
			if err != nil {
				return nil, fmt.Errorf("dict key %q: %w", k, err)
			}
			if err := dict.SetKey(starlark.String(k), sv); err != nil {
				return nil, fmt.Errorf("dict setkey %q: %w", k, err)
			}
		}
		return dict, nil
	default:
		return nil, fmt.Errorf("unsupported type: %T", v)
	}
}

// ToGo converts a Starlark value back to a Go value.
// Returns: string, int64, float64, bool, []any, map[string]any, or nil
func ToGo(v starlark.Value) (any, error) {
	switch val := v.(type) {
	case starlark.NoneType:
		return nil, nil
	case starlark.String:
		return string(val), nil
	case starlark.Int:
		i64, ok := val.Int64()
		if !ok {
			return val.String(), nil
		}
		return i64, nil
	case starlark.Float:
		return float64(val), nil
	case starlark.Bool:
		return bool(val), nil
	case starlark.Indexable: // list, tuple
		result := make([]any, val.Len())
		for i := 0; i < val.Len(); i++ {
			gv, err := ToGo(val.Index(i))
			if err != nil {
				return nil, fmt.Errorf("index %d: %w", i, err)
			}
			result[i] = gv
		}
		return result, nil
	case *starlark.Dict:
		result := make(map[string]any)
		for _, item := range val.Items() {
			key, ok := item[0].(starlark.String)
			if !ok {
				return nil, fmt.Errorf("dict key must be string, got %s", item[0].Type())
			}
			gv, err := ToGo(item[1])
			if err != nil {
				return nil, fmt.Errorf("dict key %q: %w", key, err)
			}
			result[string(key)] = gv
		}
		return result, nil
	default:
		return nil, fmt.Errorf("unsupported starlark type: %s", v.Type())
	}
}

// Segment exposes a syntax tree node to Starlark. Two values wrapping the
// same node compare equal.
type Segment struct {
	seg *segment.Segment
}

var (
	_ starlark.HasAttrs   = (*Segment)(nil)
	_ starlark.Comparable = (*Segment)(nil)
)

// NewSegment wraps seg.
func NewSegment(seg *segment.Segment) *Segment {
	return &Segment{seg: seg}
}

// Unwrap returns the wrapped node.
func (s *Segment) Unwrap() *segment.Segment { return s.seg }

func (s *Segment) String() string {
	return fmt.Sprintf("<segment %s %d:%d>", s.seg.Type, s.seg.Start().Line, s.seg.Start().Column)
}

func (s *Segment) Type() string          { return "segment" }
func (s *Segment) Freeze()               {}
func (s *Segment) Truth() starlark.Bool  { return starlark.True }
func (s *Segment) Hash() (uint32, error) { return 0, fmt.Errorf("unhashable type: segment") }

// CompareSameType implements identity equality.
func (s *Segment) CompareSameType(op syntax.Token, y starlark.Value, _ int) (bool, error) {
	other := y.(*Segment)
	switch op {
	case syntax.EQL:
		return s.seg == other.seg, nil
	case syntax.NEQ:
		return s.seg != other.seg, nil
	default:
		return false, fmt.Errorf("%s %s %s not implemented", s.Type(), op, y.Type())
	}
}

var segmentAttrs = []string{
	"children", "column", "end_column", "end_line", "is_code", "is_keyword",
	"is_leaf", "is_type", "is_whitespace", "line", "raw", "text", "type",
}

// AttrNames lists the attributes of a segment.
func (s *Segment) AttrNames() []string { return segmentAttrs }

// Attr returns one attribute of a segment.
func (s *Segment) Attr(name string) (starlark.Value, error) {
	seg := s.seg
	switch name {
	case "type":
		return starlark.String(seg.Type), nil
	case "raw":
		return starlark.String(seg.Raw), nil
	case "text":
		return starlark.String(seg.Text()), nil
	case "line":
		return starlark.MakeInt(seg.Start().Line), nil
	case "column":
		return starlark.MakeInt(seg.Start().Column), nil
	case "end_line":
		return starlark.MakeInt(seg.End().Line), nil
	case "end_column":
		return starlark.MakeInt(seg.End().Column), nil
	case "is_code":
		return starlark.Bool(seg.IsCode()), nil
	case "is_leaf":
		return starlark.Bool(seg.IsLeaf()), nil
	case "is_whitespace":
		return starlark.Bool(seg.IsWhitespace()), nil
	case "children":
		return segmentTuple(seg.Children), nil
	case "is_type":
		return starlark.NewBuiltin("is_type", s.isType), nil
	case "is_keyword":
		return starlark.NewBuiltin("is_keyword", s.isKeyword), nil
	}
	return nil, nil
}

func (s *Segment) isType(_ *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
	names, err := stringArgs(b, args, kwargs)
	if err != nil {
		return nil, err
	}
	return starlark.Bool(s.seg.IsType(names...)), nil
}

func (s *Segment) isKeyword(_ *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
	words, err := stringArgs(b, args, kwargs)
	if err != nil {
		return nil, err
	}
	return starlark.Bool(s.seg.IsKeyword(words...)), nil
}

func stringArgs(b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) ([]string, error) {
	if len(kwargs) > 0 {
		return nil, fmt.Errorf("%s: unexpected keyword arguments", b.Name())
	}
	out := make([]string, len(args))
	for i, a := range args {
		str, ok := starlark.AsString(a)
		if !ok {
			return nil, fmt.Errorf("%s: argument %d must be a string, got %s", b.Name(), i+1, a.Type())
		}
		out[i] = str
	}
	return out, nil
}

func segmentTuple(segs []*segment.Segment) starlark.Tuple {
	out := make(starlark.Tuple, len(segs))
	for i, c := range segs {
		out[i] = NewSegment(c)
	}
	return out
}

// contextValue builds the ctx argument passed to a rule's eval function.
func contextValue(ctx *lint.RuleContext) (starlark.Value, error) {
	opts, err := GoToStarlark(ctx.Options)
	if err != nil {
		return nil, fmt.Errorf("rule options: %w", err)
	}
	var parent starlark.Value = starlark.None
	if p := ctx.Parent(); p != nil {
		parent = NewSegment(p)
	}
	dialect := ""
	if ctx.Dialect != nil {
		dialect = ctx.Dialect.Name
	}
	return starlarkstruct.FromStringDict(starlark.String("context"), starlark.StringDict{
		"segment": NewSegment(ctx.Segment),
		"parent":  parent,
		"parents": segmentTuple(ctx.ParentStack),
		"dialect": starlark.String(strings.ToLower(dialect)),
		"options": opts,
	}), nil
}
