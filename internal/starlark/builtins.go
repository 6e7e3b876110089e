package starlark

import (
	"fmt"

	"go.starlark.net/starlark"

	"github.com/customfm/fmlint/pkg/lint"
	"github.com/customfm/fmlint/pkg/segment"
)

// Violation is the value returned by the violation() builtin.
type Violation struct {
	Diagnostic lint.Diagnostic
}

func (v *Violation) String() string {
	return fmt.Sprintf("<violation %d:%d %q>", v.Diagnostic.Pos.Line, v.Diagnostic.Pos.Column, v.Diagnostic.Message)
}
func (v *Violation) Type() string          { return "violation" }
func (v *Violation) Freeze()               {}
func (v *Violation) Truth() starlark.Bool  { return starlark.True }
func (v *Violation) Hash() (uint32, error) { return 0, fmt.Errorf("unhashable type: violation") }

// Edit is the value returned by the fix builtins.
type Edit struct {
	TextEdit lint.TextEdit
}

func (e *Edit) String() string {
	return fmt.Sprintf("<edit %d-%d %q>", e.TextEdit.Pos.Offset, e.TextEdit.EndPos.Offset, e.TextEdit.NewText)
}
func (e *Edit) Type() string          { return "edit" }
func (e *Edit) Freeze()               {}
func (e *Edit) Truth() starlark.Bool  { return starlark.True }
func (e *Edit) Hash() (uint32, error) { return 0, fmt.Errorf("unhashable type: edit") }

// Builtins returns the predeclared functions available to rule files,
// except rule() which the loader binds per file.
//
//	violation(segment, message, fixes=[])
//	replace(segment, text)
//	insert_before(segment, text)
//	insert_after(segment, text)
//	delete(segment)
func Builtins() starlark.StringDict {
	return starlark.StringDict{
		"violation":     starlark.NewBuiltin("violation", violationBuiltin),
		"replace":       starlark.NewBuiltin("replace", editBuiltin(replaceEdit)),
		"insert_before": starlark.NewBuiltin("insert_before", editBuiltin(lint.CreateBefore)),
		"insert_after":  starlark.NewBuiltin("insert_after", editBuiltin(lint.CreateAfter)),
		"delete":        starlark.NewBuiltin("delete", deleteBuiltin),
	}
}

func replaceEdit(seg *segment.Segment, text string) lint.TextEdit {
	return lint.ReplaceRun(segment.Of(seg), seg.Start(), text)
}

func violationBuiltin(_ *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
	var (
		seg     *Segment
		message string
		fixes   starlark.Iterable
	)
	if err := starlark.UnpackArgs(b.Name(), args, kwargs, "segment", &seg, "message", &message, "fixes?", &fixes); err != nil {
		return nil, err
	}
	var edits []lint.TextEdit
	if fixes != nil {
		iter := fixes.Iterate()
		defer iter.Done()
		var x starlark.Value
		for iter.Next(&x) {
			e, ok := x.(*Edit)
			if !ok {
				return nil, fmt.Errorf("%s: fixes must hold edits, got %s", b.Name(), x.Type())
			}
			edits = append(edits, e.TextEdit)
		}
	}
	return &Violation{Diagnostic: lint.NewDiagnostic(seg.Unwrap(), message, edits...)}, nil
}

func editBuiltin(fn func(*segment.Segment, string) lint.TextEdit) func(*starlark.Thread, *starlark.Builtin, starlark.Tuple, []starlark.Tuple) (starlark.Value, error) {
	return func(_ *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
		var (
			seg  *Segment
			text string
		)
		if err := starlark.UnpackArgs(b.Name(), args, kwargs, "segment", &seg, "text", &text); err != nil {
			return nil, err
		}
		return &Edit{TextEdit: fn(seg.Unwrap(), text)}, nil
	}
}

func deleteBuiltin(_ *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
	var seg *Segment
	if err := starlark.UnpackArgs(b.Name(), args, kwargs, "segment", &seg); err != nil {
		return nil, err
	}
	return &Edit{TextEdit: lint.Delete(seg.Unwrap())}, nil
}

// violations converts an eval function's return value. It accepts None, a
// single violation, or a list or tuple of them.
func violations(v starlark.Value) ([]lint.Diagnostic, error) {
	switch val := v.(type) {
	case starlark.NoneType:
		return nil, nil
	case *Violation:
		return []lint.Diagnostic{val.Diagnostic}, nil
	case starlark.Indexable:
		out := make([]lint.Diagnostic, 0, val.Len())
		for i := 0; i < val.Len(); i++ {
			item, ok := val.Index(i).(*Violation)
			if !ok {
				return nil, fmt.Errorf("result index %d: want violation, got %s", i, val.Index(i).Type())
			}
			out = append(out, item.Diagnostic)
		}
		return out, nil
	default:
		return nil, fmt.Errorf("eval must return None, a violation or a list of violations, got %s", v.Type())
	}
}
