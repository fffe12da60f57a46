package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/roach88/craftbeerbot/internal/catalog"
	"github.com/roach88/craftbeerbot/internal/checkout"
	"github.com/roach88/craftbeerbot/internal/dialog"
	"github.com/roach88/craftbeerbot/internal/notify"
)

// ErrMissingCollaborator is returned by New when a required dependency is nil.
var ErrMissingCollaborator = errors.New("missing collaborator")

// Config wires an Engine.
type Config struct {
	// Catalog, Checkout and Notifier are required.
	Catalog  *catalog.Catalog
	Checkout checkout.Client
	Notifier notify.Notifier

	Credentials checkout.Credentials
	Payment     checkout.Payment

	// Codes defaults to RandomCodes.
	Codes CodeGenerator

	// TurnIDs defaults to UUIDv7Generator.
	TurnIDs TurnIDGenerator

	// Logger defaults to slog.Default().
	Logger *slog.Logger
}

// Engine is the dialog reducer. It holds collaborators only, no session state,
// and is safe for concurrent use across sessions.
type Engine struct {
	catalog  *catalog.Catalog
	checkout checkout.Client
	notifier notify.Notifier
	creds    checkout.Credentials
	payment  checkout.Payment
	codes    CodeGenerator
	turnIDs  TurnIDGenerator
	logger   *slog.Logger
}

// Turn is the full outcome of one HandleTurn call.
type Turn struct {
	ID         string
	Transition Transition
	Response   dialog.Response
}

// New creates an engine from cfg.
func New(cfg Config) (*Engine, error) {
	switch {
	case cfg.Catalog == nil:
		return nil, fmt.Errorf("%w: catalog", ErrMissingCollaborator)
	case cfg.Checkout == nil:
		return nil, fmt.Errorf("%w: checkout client", ErrMissingCollaborator)
	case cfg.Notifier == nil:
		return nil, fmt.Errorf("%w: notifier", ErrMissingCollaborator)
	}

	e := &Engine{
		catalog:  cfg.Catalog,
		checkout: cfg.Checkout,
		notifier: cfg.Notifier,
		creds:    cfg.Credentials,
		payment:  cfg.Payment,
		codes:    cfg.Codes,
		turnIDs:  cfg.TurnIDs,
		logger:   cfg.Logger,
	}
	if e.codes == nil {
		e.codes = RandomCodes{}
	}
	if e.turnIDs == nil {
		e.turnIDs = UUIDv7Generator{}
	}
	if e.logger == nil {
		e.logger = slog.Default()
	}
	return e, nil
}

// Catalog returns the catalog the engine looks beers up in.
func (e *Engine) Catalog() *catalog.Catalog {
	return e.catalog
}

// Handle processes one event and returns the response for the platform.
func (e *Engine) Handle(ctx context.Context, ev dialog.Event) dialog.Response {
	return e.HandleTurn(ctx, ev).Response
}

// HandleTurn processes one event and reports the selected transition with
// the response. It always returns a valid response.
func (e *Engine) HandleTurn(ctx context.Context, ev dialog.Event) Turn {
	turn := Turn{ID: e.turnIDs.Generate(), Transition: Classify(ev)}
	log := e.logger.With("turn_id", turn.ID)

	switch turn.Transition {
	case StartOrder:
		turn.Response = dialog.Response{
			Session: ev.Session.WithOrderStarted(),
			Action:  dialog.Delegate(ev.Slots),
		}
	case AddBeer:
		turn.Response = e.addBeer(ev)
	case ElicitBeer:
		turn.Response = dialog.Response{
			Session: ev.Session.Clone(),
			Action:  dialog.Delegate(ev.Slots),
		}
	case FulfillOrder:
		turn.Response = e.fulfillOrder(ctx, ev, log)
	case CancelOrder:
		turn.Response = dialog.Response{
			Session: dialog.Session{},
			Action:  dialog.Close(dialog.Fulfilled, MsgGoodbye),
		}
	case NoOrder:
		turn.Response = dialog.Response{
			Session: ev.Session.Clone(),
			Action:  dialog.Close(dialog.Fulfilled, MsgNoOrder),
		}
	default:
		turn.Response = dialog.Response{
			Session: ev.Session.Clone(),
			Action:  dialog.Close(dialog.Failed, MsgUnsupported),
		}
	}

	log.Info("turn handled",
		"intent", ev.IntentName,
		"source", string(ev.Source),
		"confirmation", string(ev.Confirmation),
		"transition", string(turn.Transition),
		"action", string(turn.Response.Action.Type),
		"beers", len(turn.Response.Session.Beers()),
	)
	return turn
}

// addBeer appends the requested beer to the order, starting one if needed.
func (e *Engine) addBeer(ev dialog.Event) dialog.Response {
	name, _ := ev.Slots.Value(dialog.SlotCraftBeer)

	entry, ok := e.catalog.FindByName(name)
	if !ok {
		return dialog.Response{
			Session: ev.Session.Clone(),
			Action:  dialog.Close(dialog.Fulfilled, MsgNotAvailable),
		}
	}

	next := ev.Session.WithBeer(entry)
	return dialog.Response{
		Session: next,
		Action: dialog.ConfirmIntent(
			dialog.IntentOrderCraftBeer,
			ev.Slots.Cleared(dialog.SlotCraftBeer),
			ConfirmationMessage(next.Beers()),
		),
	}
}

// fulfillOrder gates checkout behind a one-time code.
//
// Without a supplied code, or with nothing pending to compare it to, a fresh
// code is issued. A wrong code re-prompts without issuing a new one.
func (e *Engine) fulfillOrder(ctx context.Context, ev dialog.Event, log *slog.Logger) dialog.Response {
	supplied, ok := ev.Slots.Value(dialog.SlotOTP)
	if !ok || !ev.Session.HasOTP() {
		return e.issueCode(ctx, ev, log)
	}

	if strings.TrimSpace(supplied) != ev.Session.OTP {
		return dialog.Response{
			Session: ev.Session.Clone(),
			Action: dialog.ElicitSlot(
				dialog.IntentOrderCraftBeer,
				ev.Slots.Cleared(dialog.SlotOTP),
				dialog.SlotOTP,
				MsgCodeIncorrect,
			),
		}
	}

	return e.submitOrder(ctx, ev, log)
}

// issueCode stores a fresh code in the session and sends it to the user.
// A failed send leaves the new code in place.
func (e *Engine) issueCode(ctx context.Context, ev dialog.Event, log *slog.Logger) dialog.Response {
	channel := e.notifier.Channel()

	code, err := e.codes.Generate()
	if err != nil {
		log.Error("generate confirmation code", "error", err)
		return dialog.Response{
			Session: ev.Session.Clone(),
			Action:  dialog.Close(dialog.Fulfilled, SendFailedMessage(channel)),
		}
	}

	next := ev.Session.WithOTP(strconv.Itoa(code))
	if err := e.notifier.SendCode(ctx, next.OTP); err != nil {
		log.Error("send confirmation code", "channel", string(channel), "error", err)
		return dialog.Response{
			Session: next,
			Action:  dialog.Close(dialog.Fulfilled, SendFailedMessage(channel)),
		}
	}

	return dialog.Response{
		Session: next,
		Action: dialog.ElicitSlot(
			dialog.IntentOrderCraftBeer,
			ev.Slots.Cleared(dialog.SlotOTP),
			dialog.SlotOTP,
			CodePrompt(channel),
		),
	}
}

// submitOrder places the order. Only the first beer is submitted.
// On failure the session is returned unchanged.
func (e *Engine) submitOrder(ctx context.Context, ev dialog.Event, log *slog.Logger) dialog.Response {
	failed := dialog.Response{
		Session: ev.Session.Clone(),
		Action:  dialog.Close(dialog.Fulfilled, MsgOrderFailed),
	}

	beers := ev.Session.Beers()
	if len(beers) == 0 {
		log.Error("submit order", "error", "order has no beers")
		return failed
	}
	if len(beers) > 1 {
		log.Warn("only the first beer is submitted", "beers", len(beers), "product_id", beers[0].ID)
	}

	if err := checkout.Submit(ctx, e.checkout, e.creds, e.payment, beers[0].ID); err != nil {
		var se *checkout.StepError
		step := ""
		if errors.As(err, &se) {
			step = string(se.Step)
		}
		log.Error("submit order", "step", step, "product_id", beers[0].ID, "error", err)
		return failed
	}

	log.Info("order placed", "product_id", beers[0].ID, "card", e.payment.Card)
	return dialog.Response{
		Session: dialog.Session{},
		Action:  dialog.Close(dialog.Fulfilled, MsgOrderPlaced),
	}
}
