package engine

import (
	"github.com/roach88/craftbeerbot/internal/dialog"
)

// Transition is the branch of the reducer selected for an event.
type Transition string

const (
	// StartOrder opens an empty order and delegates to the platform.
	StartOrder Transition = "start_order"

	// AddBeer looks up the requested beer and appends it to the order.
	AddBeer Transition = "add_beer"

	// ElicitBeer delegates an AddCraftBeer turn that has no beer yet.
	ElicitBeer Transition = "elicit_beer"

	// FulfillOrder runs the confirmation-code gate and, if satisfied, checkout.
	FulfillOrder Transition = "fulfill_order"

	// CancelOrder ends the session after the user declined.
	CancelOrder Transition = "cancel_order"

	// NoOrder rejects an AddCraftBeer turn with no order in progress.
	NoOrder Transition = "no_order"

	// Unsupported closes turns for intents this bot does not handle.
	Unsupported Transition = "unsupported"
)

// Transitions lists every Transition in dispatch order.
var Transitions = []Transition{
	StartOrder, AddBeer, ElicitBeer, FulfillOrder, CancelOrder, NoOrder, Unsupported,
}

// Classify selects the transition for ev.
//
// For OrderCraftBeer the checks apply in order:
//   - Denied                          → CancelOrder
//   - Confirmed, or a code is pending → FulfillOrder
//   - FulfillmentCodeHook             → FulfillOrder
//   - beer slot filled                → AddBeer
//   - otherwise                       → StartOrder
//
// For AddCraftBeer:
//   - no order in progress → NoOrder
//   - beer slot empty      → ElicitBeer
//   - otherwise            → AddBeer
func Classify(ev dialog.Event) Transition {
	_, hasBeer := ev.Slots.Value(dialog.SlotCraftBeer)

	switch ev.IntentName {
	case dialog.IntentOrderCraftBeer:
		switch {
		case ev.Confirmation == dialog.ConfirmationDenied:
			return CancelOrder
		case ev.Confirmation == dialog.ConfirmationConfirmed, ev.Session.HasOTP():
			return FulfillOrder
		case ev.Source == dialog.FulfillmentCodeHook:
			return FulfillOrder
		case hasBeer:
			return AddBeer
		default:
			return StartOrder
		}

	case dialog.IntentAddCraftBeer:
		switch {
		case !ev.Session.HasOrder():
			return NoOrder
		case !hasBeer:
			return ElicitBeer
		default:
			return AddBeer
		}
	}
	return Unsupported
}
