package loadplan

import (
	"fmt"
)

// MalformedPlanError reports a load plan document that fails compilation.
type MalformedPlanError struct {
	Column string // offending column, when one can be named
	Reason string
}

// Error implements the error interface.
func (e *MalformedPlanError) Error() string {
	if e.Column != "" {
		return fmt.Sprintf("malformed load plan: column %s: %s", e.Column, e.Reason)
	}
	return fmt.Sprintf("malformed load plan: %s", e.Reason)
}

// PlanApplicationError reports a record value that a compiled plan cannot
// coerce, or a file column the plan does not cover.
type PlanApplicationError struct {
	Column string
	Value  string
	Type   ValueType
	Line   int
	Reason string
}

// Error implements the error interface.
func (e *PlanApplicationError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("load plan: column %s at line %d: %s", e.Column, e.Line, e.Reason)
	}
	return fmt.Sprintf("load plan: column %s: %s", e.Column, e.Reason)
}
