package lint

// Rule is the base interface all lint rules implement.
type Rule interface {
	// ID returns the unique identifier, e.g., "CustomFM_L001"
	ID() string

	// Name returns the human-readable name, e.g., "layout.blank_line_before_clause"
	Name() string

	// Group returns the display category, e.g., "layout" or "structure"
	Group() string

	// Groups returns the selectors that enable the rule besides its ID,
	// e.g., "all" and "core".
	Groups() []string

	// Aliases returns former or alternative IDs that select this rule.
	Aliases() []string

	// Description returns a human-readable description
	Description() string

	// DefaultSeverity returns the default severity for this rule
	DefaultSeverity() Severity

	// ConfigKeys returns configuration keys this rule accepts
	ConfigKeys() []string

	// Documentation methods for richer rule documentation
	Rationale() string   // Why this rule exists, what problems it prevents
	BadExample() string  // Code showing the anti-pattern
	GoodExample() string // Code showing the correct pattern
	Fix() string         // How to fix violations (when not obvious)
}

// SegmentRule is evaluated on every segment whose type it crawls.
type SegmentRule interface {
	Rule

	// CrawlTypes returns the segment types the rule is evaluated on.
	CrawlTypes() []string

	// Eval inspects ctx.Segment and returns diagnostics. It must not mutate
	// the tree or keep state between calls.
	Eval(ctx *RuleContext) []Diagnostic

	// Dialects returns dialect restrictions; nil/empty means all dialects.
	Dialects() []string
}

// RuleInfo provides metadata about a rule for documentation/tooling.
type RuleInfo struct {
	ID              string   `json:"id"`
	Name            string   `json:"name"`
	Group           string   `json:"group"`
	Groups          []string `json:"groups,omitempty"`
	Aliases         []string `json:"aliases,omitempty"`
	Description     string   `json:"description"`
	DefaultSeverity Severity `json:"default_severity"`
	ConfigKeys      []string `json:"config_keys,omitempty"`
	CrawlTypes      []string `json:"crawl_types,omitempty"`
	Dialects        []string `json:"dialects,omitempty"`
	Plugin          string   `json:"plugin,omitempty"`

	// Documentation fields
	Rationale   string `json:"rationale,omitempty"`
	BadExample  string `json:"bad_example,omitempty"`
	GoodExample string `json:"good_example,omitempty"`
	Fix         string `json:"fix,omitempty"`
}

// GetRuleInfo extracts metadata from a Rule for documentation/tooling.
func GetRuleInfo(r Rule) RuleInfo {
	info := RuleInfo{
		ID:              r.ID(),
		Name:            r.Name(),
		Group:           r.Group(),
		Groups:          r.Groups(),
		Aliases:         r.Aliases(),
		Description:     r.Description(),
		DefaultSeverity: r.DefaultSeverity(),
		ConfigKeys:      r.ConfigKeys(),
		Rationale:       r.Rationale(),
		BadExample:      r.BadExample(),
		GoodExample:     r.GoodExample(),
		Fix:             r.Fix(),
	}
	if sr, ok := r.(SegmentRule); ok {
		info.CrawlTypes = sr.CrawlTypes()
		info.Dialects = sr.Dialects()
	}
	if name, ok := pluginOf(r.ID()); ok {
		info.Plugin = name
	}
	return info
}

// =============================================================================
// Rule Definitions
// =============================================================================

// RuleDef is a data-driven rule definition. Rules are stateless; all context
// comes via the RuleContext passed to Eval.
type RuleDef struct {
	ID          string   // Unique identifier, e.g., "CustomFM_L002"
	Name        string   // Human-readable name, e.g., "layout.join_condition_newline"
	Group       string   // Category, e.g., "layout", "structure"
	Groups      []string // Extra selectors, e.g., "all", "core"
	Aliases     []string // Alternative IDs
	Description string   // Human-readable description
	Severity    Severity // Default severity
	CrawlTypes  []string // Segment types the rule is evaluated on
	Eval        EvalFunc // The check function
	ConfigKeys  []string // Configuration keys this rule accepts (for rule-specific options)
	Dialects    []string // Restrict to specific dialects; nil/empty means all dialects

	// Documentation fields for richer rule documentation
	Rationale   string // Why this rule exists, what problems it prevents
	BadExample  string // Code showing the anti-pattern
	GoodExample string // Code showing the correct pattern
	Fix         string // How to fix violations (when not obvious)
}

// EvalFunc inspects the crawled segment and returns diagnostics.
type EvalFunc func(ctx *RuleContext) []Diagnostic

// wrappedRuleDef wraps a RuleDef to implement SegmentRule.
type wrappedRuleDef struct {
	def RuleDef
}

// WrapRuleDef wraps a RuleDef to implement the SegmentRule interface.
func WrapRuleDef(def RuleDef) SegmentRule {
	return &wrappedRuleDef{def: def}
}

func (w *wrappedRuleDef) ID() string                { return w.def.ID }
func (w *wrappedRuleDef) Name() string              { return w.def.Name }
func (w *wrappedRuleDef) Group() string             { return w.def.Group }
func (w *wrappedRuleDef) Groups() []string          { return w.def.Groups }
func (w *wrappedRuleDef) Aliases() []string         { return w.def.Aliases }
func (w *wrappedRuleDef) Description() string       { return w.def.Description }
func (w *wrappedRuleDef) DefaultSeverity() Severity { return w.def.Severity }
func (w *wrappedRuleDef) ConfigKeys() []string      { return w.def.ConfigKeys }
func (w *wrappedRuleDef) CrawlTypes() []string      { return w.def.CrawlTypes }
func (w *wrappedRuleDef) Dialects() []string        { return w.def.Dialects }

// Documentation methods
func (w *wrappedRuleDef) Rationale() string   { return w.def.Rationale }
func (w *wrappedRuleDef) BadExample() string  { return w.def.BadExample }
func (w *wrappedRuleDef) GoodExample() string { return w.def.GoodExample }
func (w *wrappedRuleDef) Fix() string         { return w.def.Fix }

func (w *wrappedRuleDef) Eval(ctx *RuleContext) []Diagnostic {
	return w.def.Eval(ctx)
}

// Unwrap returns the underlying RuleDef.
func (w *wrappedRuleDef) Unwrap() RuleDef {
	return w.def
}
