// Package checkout talks to the third-party ordering service.
//
// Submit runs the three-step pipeline login → add-to-cart → checkout. Each
// step depends on the previous step's result, so the steps run strictly in
// sequence and the first failure short-circuits the rest. There is a single
// attempt; retrying is the caller's concern.
package checkout

import (
	"context"
	"log/slog"
)

// Client is the ordering service API.
type Client interface {
	// Login authenticates and returns a session token for the other calls.
	Login(ctx context.Context, username, password string) (string, error)

	// AddToCart adds one case of productID to the remote cart.
	AddToCart(ctx context.Context, token string, productID int) error

	// Checkout pays for the remote cart and ships it to payment.AddressID.
	Checkout(ctx context.Context, token string, payment Payment) error
}

// Credentials log in to the ordering service.
type Credentials struct {
	Username string
	Password string
}

// LogValue keeps the password out of logs.
func (c Credentials) LogValue() slog.Value {
	return slog.GroupValue(slog.String("username", c.Username))
}

// Card is a payment card.
type Card struct {
	Name        string `json:"name"`
	Type        string `json:"type"`
	Number      string `json:"number"`
	ExpiryMonth string `json:"expiry_month"`
	ExpiryYear  string `json:"expiry_year"`
	CCV         string `json:"ccv"`
}

// LogValue renders only the card type and last four digits.
func (c Card) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("type", c.Type),
		slog.String("number", maskNumber(c.Number)),
	)
}

// Payment holds the shipping and payment details sent with a checkout.
type Payment struct {
	AddressID string `json:"address_id"`
	Card      Card   `json:"card"`
}

func maskNumber(n string) string {
	if len(n) <= 4 {
		return "****"
	}
	return "****" + n[len(n)-4:]
}

// Submit places an order for productID.
// Any failure is returned as a *StepError naming the step that failed.
func Submit(ctx context.Context, c Client, creds Credentials, payment Payment, productID int) error {
	token, err := c.Login(ctx, creds.Username, creds.Password)
	if err != nil {
		return &StepError{Step: StepLogin, Err: err}
	}
	if err := c.AddToCart(ctx, token, productID); err != nil {
		return &StepError{Step: StepAddToCart, Err: err}
	}
	if err := c.Checkout(ctx, token, payment); err != nil {
		return &StepError{Step: StepCheckout, Err: err}
	}
	return nil
}
