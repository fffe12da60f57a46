package harness

import (
	"bytes"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/roach88/craftbeerbot/internal/checkout"
	"github.com/roach88/craftbeerbot/internal/dialog"
	"github.com/roach88/craftbeerbot/internal/notify"
)

// Scenario defines a multi-turn conversation test.
// Session attributes returned by one turn are fed into the next, the way the
// dialog platform round-trips them.
type Scenario struct {
	// Name uniquely identifies this scenario and names its golden file.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// Channel is the notification channel, "sms" (default) or "push".
	Channel string `yaml:"channel,omitempty"`

	// Codes are the confirmation codes issued, in order.
	Codes []int `yaml:"codes,omitempty"`

	// CheckoutFails names the checkout step that fails (LOGIN, ADD_TO_CART,
	// CHECKOUT). Empty means checkout succeeds.
	CheckoutFails string `yaml:"checkout_fails,omitempty"`

	// NotifyFails makes every confirmation-code send fail.
	NotifyFails bool `yaml:"notify_fails,omitempty"`

	// Turns is the conversation, in order.
	Turns []Turn `yaml:"turns"`
}

// Turn is one user event and its expected outcome.
type Turn struct {
	// Intent is the recognised intent name.
	Intent string `yaml:"intent"`

	// Source is DialogCodeHook (default) or FulfillmentCodeHook.
	Source string `yaml:"source,omitempty"`

	// Confirmation is None (default), Confirmed or Denied.
	Confirmation string `yaml:"confirmation,omitempty"`

	// Slots maps slot names to values; null is an unfilled slot.
	Slots map[string]*string `yaml:"slots,omitempty"`

	// Attributes, if set, replaces the attributes threaded from the previous
	// turn. Use it to start from, or inject, a specific session state.
	Attributes map[string]string `yaml:"attributes,omitempty"`

	// Expect is checked against the turn's response. If nil, nothing is checked.
	Expect *Expect `yaml:"expect,omitempty"`
}

// Expect specifies the expected response for a turn.
// Every field is optional; only the fields given are checked.
type Expect struct {
	// Action is the dialog action type (Delegate, ElicitSlot, ConfirmIntent, Close).
	Action string `yaml:"action,omitempty"`

	// Message is the exact outbound message.
	Message *string `yaml:"message,omitempty"`

	// SlotToElicit is checked for ElicitSlot actions.
	SlotToElicit string `yaml:"slot_to_elicit,omitempty"`

	// FulfillmentState is checked for Close actions.
	FulfillmentState string `yaml:"fulfillment_state,omitempty"`

	// Attributes is the exact outbound attribute bag. {} means empty.
	Attributes map[string]string `yaml:"attributes,omitempty"`

	// CheckoutCalls is the number of checkout calls made during this turn.
	CheckoutCalls *int `yaml:"checkout_calls,omitempty"`
}

// LoadScenario reads and parses a scenario YAML file.
// Returns an error if the file doesn't exist, is malformed,
// contains unknown fields (typos), or is missing required fields.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}
	return ParseScenario(data)
}

// ParseScenario parses scenario YAML.
func ParseScenario(data []byte) (*Scenario, error) {
	// Strict field validation catches typos like "expects:" vs "expect:"
	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}
	return &scenario, nil
}

// validateScenario checks that required fields are present and valid.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}

	if s.Description == "" {
		return fmt.Errorf("description is required")
	}

	if s.Channel != "" {
		if _, err := notify.ParseChannel(s.Channel); err != nil {
			return fmt.Errorf("channel: %w", err)
		}
	}

	switch checkout.Step(s.CheckoutFails) {
	case "", checkout.StepLogin, checkout.StepAddToCart, checkout.StepCheckout:
	default:
		return fmt.Errorf("checkout_fails: unknown step %q", s.CheckoutFails)
	}

	for i, code := range s.Codes {
		if code < 1000 || code > 9999 {
			return fmt.Errorf("codes[%d]: %d is not a 4 digit code", i, code)
		}
	}

	if len(s.Turns) == 0 {
		return fmt.Errorf("turns list is required and must be non-empty")
	}

	for i, turn := range s.Turns {
		if err := validateTurn(i, &turn); err != nil {
			return err
		}
	}
	return nil
}

// validateTurn validates a single turn.
func validateTurn(index int, t *Turn) error {
	if t.Intent == "" {
		return fmt.Errorf("turns[%d]: intent is required", index)
	}

	switch dialog.InvocationSource(t.Source) {
	case "", dialog.DialogCodeHook, dialog.FulfillmentCodeHook:
	default:
		return fmt.Errorf("turns[%d]: unknown source %q", index, t.Source)
	}

	switch dialog.ConfirmationStatus(t.Confirmation) {
	case "", dialog.ConfirmationNone, dialog.ConfirmationConfirmed, dialog.ConfirmationDenied:
	default:
		return fmt.Errorf("turns[%d]: unknown confirmation %q", index, t.Confirmation)
	}

	if t.Expect == nil {
		return nil
	}
	switch dialog.ActionType(t.Expect.Action) {
	case "", dialog.ActionDelegate, dialog.ActionElicitSlot, dialog.ActionConfirmIntent, dialog.ActionClose:
	default:
		return fmt.Errorf("turns[%d].expect: unknown action %q", index, t.Expect.Action)
	}
	if t.Expect.CheckoutCalls != nil && *t.Expect.CheckoutCalls < 0 {
		return fmt.Errorf("turns[%d].expect: checkout_calls must be non-negative", index)
	}
	return nil
}
