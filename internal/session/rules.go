// internal/session/rules.go
//
// Widget rule checks.
//
// Context
//   Two combinations are rejected before any interactive element registers
//   or renders:
//
//   •  a callback declared on an element inside a form (only the form's
//      submit control may carry one), and
//   •  an element whose key the application already seeded through session
//      state, when that element does not accept writes from session state.
//
//   Violations return *RuleError, whose message is shown to the app author.
//
//------------------------------------------------------------------------------

package session

import (
	"context"
	"errors"
	"fmt"

	"github.com/yanizio/adept-charts/internal/form"
)

// RuleError is a user-facing rule violation.
type RuleError struct{ Msg string }

func (e *RuleError) Error() string { return e.Msg }

// IsRuleError reports whether err is (or wraps) a RuleError.
func IsRuleError(err error) bool {
	var re *RuleError
	return errors.As(err, &re)
}

// Rules checks element declarations against one session's state.
type Rules struct{ State *State }

// CheckCallbackRules rejects a callback declared inside a form.
func (r Rules) CheckCallbackRules(ctx context.Context, hasCallback bool) error {
	if hasCallback && form.Inside(ctx) {
		return &RuleError{Msg: "Within a form, callbacks can only be defined on the form submit button.  " +
			"Defining callbacks on other widgets inside a form is not allowed."}
	}
	return nil
}

// CheckSessionStateRules rejects an element whose key was seeded through
// session state when the element does not accept such writes.
func (r Rules) CheckSessionStateRules(element, key string, writesAllowed bool) error {
	if key == "" || r.State == nil || writesAllowed {
		return nil
	}
	if r.State.Seeded(key) {
		return &RuleError{Msg: fmt.Sprintf("Values for %s (key %q) cannot be set using session state.", element, key)}
	}
	return nil
}
