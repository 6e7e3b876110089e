// Package lint provides the rule framework for layout linting over the
// concrete syntax tree built by pkg/parser.
//
// # Architecture
//
// The package holds the shared contracts and the engine:
//
//  1. Rule contracts: Rule, SegmentRule and the data-driven RuleDef
//  2. Registry: a single process-wide registry of rules, keyed by ID and alias
//  3. Plugins: bundles of rules with default options, registered with RegisterPlugin
//  4. Analyzer: walks a tree and evaluates every enabled rule on the segments it crawls
//  5. Fixer: applies rule fixes and re-lints until the source is stable
//
// # Rule Registration
//
// Rules are registered via init() functions when their plugin packages are
// imported:
//
//	import _ "github.com/customfm/fmlint/pkg/lint/rules/customfm"
//
// # Usage
//
//	cfg := lint.NewConfig()
//	a := lint.NewAnalyzer(cfg, d)
//	diags, err := a.AnalyzeSource(ctx, "query.sql", sql)
//
// A parse error is reported as a single diagnostic with rule ID "PRS"; err is
// only set for rule failures (*RuleError) and cancelled contexts.
package lint
