package harness

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/aws/aws-lambda-go/events"

	"github.com/roach88/craftbeerbot/internal/catalog"
	"github.com/roach88/craftbeerbot/internal/checkout"
	"github.com/roach88/craftbeerbot/internal/dialog"
	"github.com/roach88/craftbeerbot/internal/engine"
	"github.com/roach88/craftbeerbot/internal/lex"
	"github.com/roach88/craftbeerbot/internal/notify"
	"github.com/roach88/craftbeerbot/internal/testutil"
)

// Harness runs scenarios against a real engine with recording collaborators.
type Harness struct {
	catalog  *catalog.Catalog
	engine   *engine.Engine
	checkout *testutil.FakeCheckout
	notifier *testutil.RecordingNotifier
	logger   *slog.Logger
}

// Option configures a harness run.
type Option func(*options)

type options struct {
	logger  *slog.Logger
	catalog *catalog.Catalog
}

// WithLogger sends engine logs to l instead of discarding them.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) { o.logger = l }
}

// WithCatalog runs against cat instead of the embedded catalog.
func WithCatalog(cat *catalog.Catalog) Option {
	return func(o *options) { o.catalog = cat }
}

// New builds a harness configured by the scenario's collaborator settings.
//
// Deterministic helpers ensure reproducible transcripts: codes come from
// the scenario and turn ids are sequential.
func New(scenario *Scenario, opts ...Option) (*Harness, error) {
	o := options{logger: slog.New(slog.NewTextHandler(io.Discard, nil))}
	for _, opt := range opts {
		opt(&o)
	}

	cat := o.catalog
	if cat == nil {
		var err error
		if cat, err = catalog.Default(); err != nil {
			return nil, fmt.Errorf("load catalog: %w", err)
		}
	}

	channel := notify.ChannelSMS
	if scenario.Channel != "" {
		var err error
		if channel, err = notify.ParseChannel(scenario.Channel); err != nil {
			return nil, err
		}
	}

	h := &Harness{
		catalog:  cat,
		checkout: testutil.NewFakeCheckout(),
		notifier: testutil.NewRecordingNotifier(channel),
		logger:   o.logger,
	}
	h.checkout.FailAt = checkout.Step(scenario.CheckoutFails)
	if scenario.NotifyFails {
		h.notifier.Err = errors.New("simulated notification failure")
	}

	eng, err := engine.New(engine.Config{
		Catalog:     cat,
		Checkout:    h.checkout,
		Notifier:    h.notifier,
		Credentials: checkout.Credentials{Username: "harness", Password: "harness"},
		Payment:     checkout.Payment{AddressID: "harness-address"},
		Codes:       testutil.NewFixedCodes(scenario.Codes...),
		TurnIDs:     testutil.NewSequentialTurnIDs(""),
		Logger:      o.logger,
	})
	if err != nil {
		return nil, err
	}
	h.engine = eng
	return h, nil
}

// Run executes a scenario and returns the result.
//
// Each scenario runs against fresh collaborators for isolation.
//
// Execution flow:
// 1. Build the engine with recording checkout and notifier fakes
// 2. For each turn, encode a Lex event from the threaded attributes
// 3. Run the turn through the Lex adapter and the engine
// 4. Record the transcript and check the expect clause
func Run(scenario *Scenario, opts ...Option) (*Result, error) {
	h, err := New(scenario, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to build harness: %w", err)
	}
	return h.Run(context.Background(), scenario)
}

// Run executes the scenario's turns in order.
func (h *Harness) Run(ctx context.Context, scenario *Scenario) (*Result, error) {
	result := NewResult()
	attrs := map[string]string{}

	for i, turn := range scenario.Turns {
		if turn.Attributes != nil {
			attrs = turn.Attributes
		}

		recorded, next, err := h.runTurn(ctx, i+1, turn, attrs)
		if err != nil {
			return nil, fmt.Errorf("turns[%d]: %w", i, err)
		}
		result.AddTurn(recorded)
		for _, e := range CheckExpect(recorded, turn.Expect) {
			result.AddError(e.Error())
		}
		attrs = next
	}
	return result, nil
}

// runTurn runs one turn and returns its transcript entry and outbound attributes.
func (h *Harness) runTurn(ctx context.Context, n int, turn Turn, attrs map[string]string) (TranscriptTurn, map[string]string, error) {
	source := turn.Source
	if source == "" {
		source = string(dialog.DialogCodeHook)
	}
	confirmation := turn.Confirmation
	if confirmation == "" {
		confirmation = string(dialog.ConfirmationNone)
	}

	in := events.LexEvent{
		MessageVersion:    "1.0",
		InvocationSource:  source,
		UserID:            "harness-user",
		SessionAttributes: events.SessionAttributes(copyAttributes(attrs)),
		CurrentIntent: &events.LexCurrentIntent{
			Name:               turn.Intent,
			Slots:              events.Slots(dialog.Slots(turn.Slots).Clone()),
			ConfirmationStatus: confirmation,
		},
	}

	callsBefore := len(h.checkout.Calls())
	sentBefore := len(h.notifier.Sent())

	ev, err := lex.FromEvent(in, h.catalog)
	if err != nil {
		h.logger.Warn("session attributes ignored", "turn", n, "error", err)
	}
	t := h.engine.HandleTurn(ctx, ev)
	out, err := lex.ToResponse(t.Response)
	if err != nil {
		return TranscriptTurn{}, nil, err
	}

	recorded := TranscriptTurn{
		Turn:             n,
		Intent:           turn.Intent,
		Transition:       string(t.Transition),
		Action:           out.DialogAction.Type,
		Message:          out.DialogAction.Message["content"],
		SlotToElicit:     out.DialogAction.SlotToElicit,
		FulfillmentState: out.DialogAction.FulfillmentState,
		Attributes:       copyAttributes(out.SessionAttributes),
		CodesSent:        h.notifier.Sent()[sentBefore:],
	}
	for _, c := range h.checkout.Calls()[callsBefore:] {
		recorded.Checkout = append(recorded.Checkout, string(c.Step))
	}
	if len(recorded.CodesSent) == 0 {
		recorded.CodesSent = nil
	}
	return recorded, recorded.Attributes, nil
}

func copyAttributes(attrs map[string]string) map[string]string {
	out := make(map[string]string, len(attrs))
	for k, v := range attrs {
		out[k] = v
	}
	return out
}
