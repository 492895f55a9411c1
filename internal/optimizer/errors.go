package optimizer

import (
	"fmt"

	"github.com/cockroachdb/errors"
)

// RuleError wraps a failure from one rule application.
//
// A failed rule leaves its plan in whatever valid state it reached; the
// driver stops applying further rules and propagates the error.
type RuleError struct {
	// Rule is the failing rule's name.
	Rule string

	// Err is the underlying failure.
	Err error
}

// Error implements the error interface.
func (e *RuleError) Error() string {
	return fmt.Sprintf("optimizer rule %s: %v", e.Rule, e.Err)
}

// Unwrap exposes the underlying failure to errors.Is/As.
func (e *RuleError) Unwrap() error {
	return e.Err
}

// IsRuleError reports whether err is (or wraps) a rule failure.
func IsRuleError(err error) bool {
	var re *RuleError
	return errors.As(err, &re)
}
