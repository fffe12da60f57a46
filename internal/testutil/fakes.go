package testutil

import (
	"context"
	"fmt"
	"sync"

	"github.com/roach88/craftbeerbot/internal/checkout"
	"github.com/roach88/craftbeerbot/internal/notify"
)

// CheckoutCall is one call observed by FakeCheckout.
type CheckoutCall struct {
	Step      checkout.Step
	Token     string
	ProductID int
	Payment   checkout.Payment
}

// FakeCheckout is an in-memory checkout.Client that records calls.
// Set FailAt to make that step return Err (or a default error).
//
// Thread-safety: FakeCheckout is safe for concurrent use via internal mutex.
type FakeCheckout struct {
	mu     sync.Mutex
	FailAt checkout.Step
	Err    error
	Token  string
	calls  []CheckoutCall
}

// NewFakeCheckout creates a fake that succeeds at every step.
func NewFakeCheckout() *FakeCheckout {
	return &FakeCheckout{Token: "fake-session"}
}

// NewFailingCheckout creates a fake that fails at step.
func NewFailingCheckout(step checkout.Step) *FakeCheckout {
	return &FakeCheckout{Token: "fake-session", FailAt: step}
}

func (f *FakeCheckout) record(call CheckoutCall) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, call)
	if f.FailAt == call.Step {
		if f.Err != nil {
			return f.Err
		}
		return fmt.Errorf("fake %s failure", call.Step)
	}
	return nil
}

// Login implements checkout.Client.
func (f *FakeCheckout) Login(ctx context.Context, username, password string) (string, error) {
	if err := f.record(CheckoutCall{Step: checkout.StepLogin}); err != nil {
		return "", err
	}
	return f.Token, nil
}

// AddToCart implements checkout.Client.
func (f *FakeCheckout) AddToCart(ctx context.Context, token string, productID int) error {
	return f.record(CheckoutCall{Step: checkout.StepAddToCart, Token: token, ProductID: productID})
}

// Checkout implements checkout.Client.
func (f *FakeCheckout) Checkout(ctx context.Context, token string, payment checkout.Payment) error {
	return f.record(CheckoutCall{Step: checkout.StepCheckout, Token: token, Payment: payment})
}

// Calls returns a copy of the recorded calls.
func (f *FakeCheckout) Calls() []CheckoutCall {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]CheckoutCall, len(f.calls))
	copy(out, f.calls)
	return out
}

// Submitted returns the product ids passed to AddToCart.
func (f *FakeCheckout) Submitted() []int {
	var ids []int
	for _, c := range f.Calls() {
		if c.Step == checkout.StepAddToCart {
			ids = append(ids, c.ProductID)
		}
	}
	return ids
}

// RecordingNotifier is a notify.Notifier that records codes instead of
// sending them. Set Err to make every send fail.
//
// Thread-safety: RecordingNotifier is safe for concurrent use via internal mutex.
type RecordingNotifier struct {
	mu      sync.Mutex
	channel notify.Channel
	Err     error
	sent    []string
}

// NewRecordingNotifier creates a notifier for ch.
func NewRecordingNotifier(ch notify.Channel) *RecordingNotifier {
	return &RecordingNotifier{channel: ch}
}

// Channel implements notify.Notifier.
func (n *RecordingNotifier) Channel() notify.Channel {
	return n.channel
}

// SendCode implements notify.Notifier.
func (n *RecordingNotifier) SendCode(ctx context.Context, code string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.Err != nil {
		return n.Err
	}
	n.sent = append(n.sent, code)
	return nil
}

// Sent returns a copy of the codes delivered so far.
func (n *RecordingNotifier) Sent() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	out := make([]string, len(n.sent))
	copy(out, n.sent)
	return out
}
