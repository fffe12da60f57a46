package harness

import (
	"fmt"
	"maps"
	"sort"
	"strings"
)

// ExpectationError is returned when a turn does not match its expect clause.
// It includes detailed context to help debug the failure.
type ExpectationError struct {
	Turn     int            // 1-based turn number
	Field    string         // Expect field that failed
	Expected string         // Human-readable expected outcome
	Actual   string         // Human-readable actual outcome
	Got      TranscriptTurn // Full turn for debugging context
}

// Error implements the error interface.
func (e *ExpectationError) Error() string {
	var buf strings.Builder

	fmt.Fprintf(&buf, "turn %d: %s mismatch\n", e.Turn, e.Field)
	fmt.Fprintf(&buf, "  Expected: %s\n", e.Expected)
	fmt.Fprintf(&buf, "  Actual: %s\n", e.Actual)
	fmt.Fprintf(&buf, "  Turn: %s %s -> %s", e.Got.Intent, e.Got.Transition, e.Got.Action)
	if e.Got.Message != "" {
		fmt.Fprintf(&buf, ": %q", e.Got.Message)
	}
	return buf.String()
}

// CheckExpect compares a recorded turn against its expect clause.
// Returns one error per mismatching field. A nil clause matches anything.
func CheckExpect(got TranscriptTurn, exp *Expect) []error {
	if exp == nil {
		return nil
	}

	var errs []error
	fail := func(field, expected, actual string) {
		errs = append(errs, &ExpectationError{
			Turn: got.Turn, Field: field, Expected: expected, Actual: actual, Got: got,
		})
	}

	if exp.Action != "" && exp.Action != got.Action {
		fail("action", exp.Action, got.Action)
	}
	if exp.Message != nil && *exp.Message != got.Message {
		fail("message", fmt.Sprintf("%q", *exp.Message), fmt.Sprintf("%q", got.Message))
	}
	if exp.SlotToElicit != "" && exp.SlotToElicit != got.SlotToElicit {
		fail("slot_to_elicit", exp.SlotToElicit, got.SlotToElicit)
	}
	if exp.FulfillmentState != "" && exp.FulfillmentState != got.FulfillmentState {
		fail("fulfillment_state", exp.FulfillmentState, got.FulfillmentState)
	}
	if exp.Attributes != nil && !maps.Equal(exp.Attributes, got.Attributes) {
		fail("attributes", formatAttributes(exp.Attributes), formatAttributes(got.Attributes))
	}
	if exp.CheckoutCalls != nil && *exp.CheckoutCalls != len(got.Checkout) {
		fail("checkout_calls", fmt.Sprint(*exp.CheckoutCalls), fmt.Sprint(len(got.Checkout)))
	}
	return errs
}

// formatAttributes renders an attribute bag with sorted keys.
func formatAttributes(attrs map[string]string) string {
	keys := make([]string, 0, len(attrs))
	for k := range attrs {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = fmt.Sprintf("%s=%q", k, attrs[k])
	}
	return "{" + strings.Join(parts, ", ") + "}"
}
