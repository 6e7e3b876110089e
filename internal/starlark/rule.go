package starlark

import (
	"fmt"

	"go.starlark.net/starlark"

	"github.com/customfm/fmlint/pkg/lint"
)

// DefaultGroup is the group of rules that do not name one.
const DefaultGroup = "custom"

// Rule is a lint rule whose eval function is written in Starlark.
type Rule struct {
	id          string
	name        string
	group       string
	description string
	severity    lint.Severity
	aliases     []string
	crawl       []string
	dialects    []string
	options     map[string]any
	rationale   string
	badExample  string
	goodExample string
	fix         string

	file string
	eval starlark.Callable
	pool *ThreadPool
}

var _ lint.SegmentRule = (*Rule)(nil)

func (r *Rule) ID() string                     { return r.id }
func (r *Rule) Name() string                   { return r.name }
func (r *Rule) Group() string                  { return r.group }
func (r *Rule) Groups() []string               { return []string{"all", r.group} }
func (r *Rule) Aliases() []string              { return r.aliases }
func (r *Rule) Description() string            { return r.description }
func (r *Rule) DefaultSeverity() lint.Severity { return r.severity }
func (r *Rule) CrawlTypes() []string           { return r.crawl }
func (r *Rule) Dialects() []string             { return r.dialects }
func (r *Rule) Rationale() string              { return r.rationale }
func (r *Rule) BadExample() string             { return r.badExample }
func (r *Rule) GoodExample() string            { return r.goodExample }
func (r *Rule) Fix() string                    { return r.fix }

// ConfigKeys returns the option names declared by the rule.
func (r *Rule) ConfigKeys() []string {
	keys := make([]string, 0, len(r.options))
	for k := range r.options {
		keys = append(keys, k)
	}
	return sortedStrings(keys)
}

// File returns the path the rule was loaded from.
func (r *Rule) File() string { return r.file }

// Eval calls the rule's Starlark function. A Starlark error panics with an
// *EvalError, which the analyzer reports as a rule failure.
func (r *Rule) Eval(ctx *lint.RuleContext) []lint.Diagnostic {
	diags, err := r.call(ctx)
	if err != nil {
		panic(err)
	}
	return diags
}

func (r *Rule) call(ctx *lint.RuleContext) ([]lint.Diagnostic, error) {
	arg, err := contextValue(ctx)
	if err != nil {
		return nil, r.evalError(err)
	}
	thread := r.pool.Get(r.id)
	defer r.pool.Put(thread)

	result, err := starlark.Call(thread, r.eval, starlark.Tuple{arg}, nil)
	if err != nil {
		return nil, r.evalError(err)
	}
	diags, err := violations(result)
	if err != nil {
		return nil, r.evalError(err)
	}
	return diags, nil
}

func (r *Rule) evalError(err error) *EvalError {
	msg := err.Error()
	if ee, ok := err.(*starlark.EvalError); ok {
		msg = ee.Backtrace()
	}
	return &EvalError{File: r.file, RuleID: r.id, Message: msg}
}

// EvalError reports a failure inside a Starlark rule file.
type EvalError struct {
	File    string
	RuleID  string
	Message string
}

func (e *EvalError) Error() string {
	if e.RuleID != "" {
		return fmt.Sprintf("%s: rule %s: %s", e.File, e.RuleID, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.File, e.Message)
}
