package dialog

import (
	"strings"

	"github.com/roach88/craftbeerbot/internal/catalog"
)

// Intent names recognised by the bot.
const (
	IntentOrderCraftBeer = "OrderCraftBeer"
	IntentAddCraftBeer   = "AddCraftBeer"
)

// Slot names.
const (
	SlotCraftBeer = "CraftBeer"
	SlotOTP       = "OTP"
)

// InvocationSource is the point in the platform's turn lifecycle that
// triggered the call.
type InvocationSource string

const (
	DialogCodeHook      InvocationSource = "DialogCodeHook"
	FulfillmentCodeHook InvocationSource = "FulfillmentCodeHook"
)

// ConfirmationStatus is the user's answer to a ConfirmIntent prompt.
type ConfirmationStatus string

const (
	ConfirmationNone      ConfirmationStatus = "None"
	ConfirmationConfirmed ConfirmationStatus = "Confirmed"
	ConfirmationDenied    ConfirmationStatus = "Denied"
)

// Slots maps slot names to values. A nil value is an unfilled slot.
type Slots map[string]*string

// Value returns the slot's value if it is filled with non-blank text.
func (s Slots) Value(name string) (string, bool) {
	v, ok := s[name]
	if !ok || v == nil || strings.TrimSpace(*v) == "" {
		return "", false
	}
	return *v, true
}

// Clone returns a shallow copy. Slot value pointers are copied, not shared.
func (s Slots) Clone() Slots {
	if s == nil {
		return Slots{}
	}
	out := make(Slots, len(s))
	for k, v := range s {
		if v == nil {
			out[k] = nil
			continue
		}
		val := *v
		out[k] = &val
	}
	return out
}

// Cleared returns a copy with the named slot present but unfilled.
func (s Slots) Cleared(name string) Slots {
	out := s.Clone()
	out[name] = nil
	return out
}

// StringPtr is a convenience for building slot values.
func StringPtr(s string) *string {
	return &s
}

// Order is the cart for a session.
type Order struct {
	Beers []catalog.Entry
}

// Session is the per-session state round-tripped by the platform.
type Session struct {
	// Order is nil when no order is in progress.
	Order *Order

	// OTP is the pending one-time confirmation code, or "" if none was issued.
	OTP string

	// Extra holds attributes this bot does not own. They are carried through
	// unchanged until the session is cleared.
	Extra map[string]string
}

// HasOrder reports whether an order has been started.
func (s Session) HasOrder() bool {
	return s.Order != nil
}

// HasOTP reports whether a confirmation code is pending.
func (s Session) HasOTP() bool {
	return s.OTP != ""
}

// Beers returns a copy of the order contents, or nil with no order.
func (s Session) Beers() []catalog.Entry {
	if s.Order == nil {
		return nil
	}
	out := make([]catalog.Entry, len(s.Order.Beers))
	copy(out, s.Order.Beers)
	return out
}

// Clone returns a deep copy.
func (s Session) Clone() Session {
	out := Session{OTP: s.OTP}
	if s.Order != nil {
		out.Order = &Order{Beers: s.Beers()}
	}
	if s.Extra != nil {
		out.Extra = make(map[string]string, len(s.Extra))
		for k, v := range s.Extra {
			out.Extra[k] = v
		}
	}
	return out
}

// WithOrderStarted returns a copy with an empty order if none is in progress.
func (s Session) WithOrderStarted() Session {
	out := s.Clone()
	if out.Order == nil {
		out.Order = &Order{Beers: []catalog.Entry{}}
	}
	return out
}

// WithBeer returns a copy with e appended to the order, starting one if needed.
func (s Session) WithBeer(e catalog.Entry) Session {
	out := s.WithOrderStarted()
	out.Order.Beers = append(out.Order.Beers, e)
	return out
}

// WithOTP returns a copy with the pending code replaced.
func (s Session) WithOTP(code string) Session {
	out := s.Clone()
	out.OTP = code
	return out
}

// Event is one intent-recognition event from the platform.
type Event struct {
	IntentName   string
	Source       InvocationSource
	Slots        Slots
	Confirmation ConfirmationStatus
	Session      Session

	// UserID and InputTranscript are informational; the reducer only logs them.
	UserID          string
	InputTranscript string
}

// ActionType is the kind of dialog action returned to the platform.
type ActionType string

const (
	ActionDelegate      ActionType = "Delegate"
	ActionElicitSlot    ActionType = "ElicitSlot"
	ActionConfirmIntent ActionType = "ConfirmIntent"
	ActionClose         ActionType = "Close"
)

// FulfillmentState accompanies a Close action.
type FulfillmentState string

const (
	Fulfilled FulfillmentState = "Fulfilled"
	Failed    FulfillmentState = "Failed"
)

// Action is the single outbound dialog action of a turn.
type Action struct {
	Type             ActionType
	IntentName       string
	Slots            Slots
	SlotToElicit     string
	FulfillmentState FulfillmentState
	Message          string
}

// Delegate lets the platform choose the next prompt.
func Delegate(slots Slots) Action {
	return Action{Type: ActionDelegate, Slots: slots.Clone()}
}

// ElicitSlot asks the user for a value for slot.
func ElicitSlot(intentName string, slots Slots, slot, message string) Action {
	return Action{
		Type:         ActionElicitSlot,
		IntentName:   intentName,
		Slots:        slots.Clone(),
		SlotToElicit: slot,
		Message:      message,
	}
}

// ConfirmIntent asks the user a yes/no question about intentName.
func ConfirmIntent(intentName string, slots Slots, message string) Action {
	return Action{
		Type:       ActionConfirmIntent,
		IntentName: intentName,
		Slots:      slots.Clone(),
		Message:    message,
	}
}

// Close ends the turn.
func Close(state FulfillmentState, message string) Action {
	return Action{Type: ActionClose, FulfillmentState: state, Message: message}
}

// String renders the action for logs and CLI text output.
func (a Action) String() string {
	var b strings.Builder
	b.WriteString(string(a.Type))
	switch a.Type {
	case ActionElicitSlot:
		b.WriteString("(" + a.SlotToElicit + ")")
	case ActionConfirmIntent:
		b.WriteString("(" + a.IntentName + ")")
	case ActionClose:
		b.WriteString("(" + string(a.FulfillmentState) + ")")
	}
	if a.Message != "" {
		b.WriteString(": " + a.Message)
	}
	return b.String()
}

// Response is the reducer's output for one turn.
type Response struct {
	Session Session
	Action  Action
}
