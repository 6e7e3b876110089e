package lint

import (
	"errors"
	"fmt"

	"github.com/customfm/fmlint/pkg/segment"
)

// Sentinel errors returned by the registry and config.
var (
	ErrDuplicateRule   = errors.New("duplicate rule")
	ErrUnknownRule     = errors.New("unknown rule")
	ErrDuplicatePlugin = errors.New("plugin already registered")
)

// RuleError reports a rule that panicked while being evaluated. It is a
// defect in the rule, never a lint finding.
type RuleError struct {
	RuleID  string
	Segment *segment.Segment
	Cause   any
}

func (e *RuleError) Error() string {
	if e.Segment != nil {
		pos := e.Segment.Start()
		return fmt.Sprintf("rule %s failed on %s at line %d, column %d: %v",
			e.RuleID, e.Segment.Type, pos.Line, pos.Column, e.Cause)
	}
	return fmt.Sprintf("rule %s failed: %v", e.RuleID, e.Cause)
}

// Unwrap returns the panic value when it was an error.
func (e *RuleError) Unwrap() error {
	if err, ok := e.Cause.(error); ok {
		return err
	}
	return nil
}
