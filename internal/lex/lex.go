// Package lex adapts Lex V1 code-hook events to the dialog reducer.
//
// Session state crosses the boundary as flat string attributes; this package
// is the only place that knows about the wire shape.
package lex

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/aws/aws-lambda-go/events"

	"github.com/roach88/craftbeerbot/internal/catalog"
	"github.com/roach88/craftbeerbot/internal/dialog"
	"github.com/roach88/craftbeerbot/internal/engine"
)

// ContentTypePlainText is the only message content type the bot emits.
const ContentTypePlainText = "PlainText"

// Reducer is the part of *engine.Engine the handler needs.
type Reducer interface {
	HandleTurn(ctx context.Context, ev dialog.Event) engine.Turn
}

// FromEvent converts a Lex event into a dialog event.
//
// A malformed beers attribute is reported as an error alongside a usable
// event whose order is empty, so callers can log and continue.
func FromEvent(in events.LexEvent, cat *catalog.Catalog) (dialog.Event, error) {
	ev := dialog.Event{
		Source:          dialog.InvocationSource(in.InvocationSource),
		Confirmation:    dialog.ConfirmationNone,
		Slots:           dialog.Slots{},
		UserID:          in.UserID,
		InputTranscript: in.InputTranscript,
	}
	if in.CurrentIntent != nil {
		ev.IntentName = in.CurrentIntent.Name
		if in.CurrentIntent.ConfirmationStatus != "" {
			ev.Confirmation = dialog.ConfirmationStatus(in.CurrentIntent.ConfirmationStatus)
		}
		ev.Slots = dialog.Slots(in.CurrentIntent.Slots).Clone()
	}

	session, err := dialog.DecodeSession(in.SessionAttributes, cat)
	ev.Session = session
	if err != nil {
		return ev, fmt.Errorf("decode session attributes: %w", err)
	}
	return ev, nil
}

// ToResponse converts a reducer response into the Lex wire shape.
func ToResponse(resp dialog.Response) (events.LexResponse, error) {
	attrs, err := dialog.EncodeSession(resp.Session)
	if err != nil {
		return events.LexResponse{}, err
	}

	a := resp.Action
	out := events.LexResponse{
		SessionAttributes: events.SessionAttributes(attrs),
		DialogAction: events.LexDialogAction{
			Type: string(a.Type),
		},
	}
	if a.Message != "" {
		out.DialogAction.Message = map[string]string{
			"contentType": ContentTypePlainText,
			"content":     a.Message,
		}
	}

	switch a.Type {
	case dialog.ActionDelegate:
		out.DialogAction.Slots = events.Slots(a.Slots.Clone())
	case dialog.ActionElicitSlot:
		out.DialogAction.IntentName = a.IntentName
		out.DialogAction.Slots = events.Slots(a.Slots.Clone())
		out.DialogAction.SlotToElicit = a.SlotToElicit
	case dialog.ActionConfirmIntent:
		out.DialogAction.IntentName = a.IntentName
		out.DialogAction.Slots = events.Slots(a.Slots.Clone())
	case dialog.ActionClose:
		out.DialogAction.FulfillmentState = string(a.FulfillmentState)
	default:
		return events.LexResponse{}, fmt.Errorf("unknown dialog action %q", a.Type)
	}
	return out, nil
}

// Handler returns a Lambda handler that runs one turn per event.
//
// The handler never returns an error for a turn the reducer answered; only
// an unencodable response is reported to the runtime.
func Handler(r Reducer, cat *catalog.Catalog, logger *slog.Logger) func(context.Context, events.LexEvent) (events.LexResponse, error) {
	if logger == nil {
		logger = slog.Default()
	}
	return func(ctx context.Context, in events.LexEvent) (events.LexResponse, error) {
		ev, err := FromEvent(in, cat)
		if err != nil {
			logger.Warn("session attributes ignored", "user_id", in.UserID, "error", err)
		}

		turn := r.HandleTurn(ctx, ev)
		out, err := ToResponse(turn.Response)
		if err != nil {
			logger.Error("encode response", "turn_id", turn.ID, "error", err)
			return events.LexResponse{}, fmt.Errorf("turn %s: %w", turn.ID, err)
		}
		return out, nil
	}
}
