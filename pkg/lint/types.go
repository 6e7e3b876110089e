package lint

import (
	"github.com/customfm/fmlint/pkg/dialect"
	"github.com/customfm/fmlint/pkg/segment"
	"github.com/customfm/fmlint/pkg/token"
)

// =============================================================================
// Diagnostics
// =============================================================================

// Diagnostic represents a lint finding.
type Diagnostic struct {
	RuleID   string         `json:"rule_id"`
	Severity Severity       `json:"severity"`
	Message  string         `json:"message"`
	Pos      token.Position `json:"pos"`
	EndPos   token.Position `json:"end_pos"` // end of the anchor segment
	Fixes    []Fix          `json:"fixes,omitempty"`

	// Remediation metadata
	DocumentationURL string `json:"documentation_url,omitempty"`
	ImpactScore      int    `json:"impact_score,omitempty"`
	AutoFixable      bool   `json:"auto_fixable"`
}

// Fix represents a suggested code fix.
type Fix struct {
	Description string     `json:"description"`
	TextEdits   []TextEdit `json:"text_edits"`
}

// TextEdit replaces the source between Pos and EndPos with NewText. An edit
// with Pos == EndPos is an insertion.
type TextEdit struct {
	Pos     token.Position `json:"pos"`
	EndPos  token.Position `json:"end_pos"`
	NewText string         `json:"new_text"`
}

// =============================================================================
// Rule Context
// =============================================================================

// RuleContext is what a rule sees when it is evaluated on one segment.
type RuleContext struct {
	// Segment is the crawled segment, one of the rule's crawl types.
	Segment *segment.Segment
	// ParentStack holds the ancestors of Segment, outermost first.
	ParentStack []*segment.Segment
	// Dialect is the dialect the source was parsed with.
	Dialect *dialect.Dialect
	// Options are the rule's options: plugin defaults merged with config.
	Options map[string]any
}

// Parent returns the direct parent of the crawled segment, or nil at the root.
func (c *RuleContext) Parent() *segment.Segment {
	if len(c.ParentStack) == 0 {
		return nil
	}
	return c.ParentStack[len(c.ParentStack)-1]
}

// Children returns the children of the crawled segment as a selection.
func (c *RuleContext) Children(preds ...segment.Predicate) segment.Segments {
	return segment.Of(c.Segment).Children(preds...)
}

// NewDiagnostic creates a diagnostic anchored on seg. The analyzer fills in
// the rule ID, severity and documentation URL.
func NewDiagnostic(seg *segment.Segment, message string, edits ...TextEdit) Diagnostic {
	d := Diagnostic{
		Message: message,
		Pos:     seg.Start(),
		EndPos:  seg.End(),
	}
	if len(edits) > 0 {
		d.Fixes = []Fix{{Description: message, TextEdits: edits}}
	}
	return d
}
