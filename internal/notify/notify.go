// Package notify delivers one-time confirmation codes to the user.
//
// Delivery goes through Amazon SNS: SMS publishes to a phone number, push
// publishes to a platform endpoint ARN. Which one is used is deployment
// configuration; the reducer only sees the Notifier interface and its
// Channel, which selects the wording of the prompt.
package notify

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"golang.org/x/time/rate"
)

// Channel is the delivery mechanism for codes.
type Channel string

const (
	ChannelSMS  Channel = "sms"
	ChannelPush Channel = "push"
)

// ParseChannel accepts "sms" or "push", case-insensitively.
func ParseChannel(s string) (Channel, error) {
	switch Channel(strings.ToLower(strings.TrimSpace(s))) {
	case ChannelSMS:
		return ChannelSMS, nil
	case ChannelPush:
		return ChannelPush, nil
	}
	return "", fmt.Errorf("unknown notification channel %q: must be sms or push", s)
}

var (
	// ErrRateLimited is returned when too many codes were sent recently.
	ErrRateLimited = errors.New("notification rate limit exceeded")

	// ErrNoTarget is returned when a notifier is built without a destination.
	ErrNoTarget = errors.New("notification target is required")
)

// Notifier sends a confirmation code to the user.
type Notifier interface {
	Channel() Channel
	SendCode(ctx context.Context, code string) error
}

// CodeMessage is the text delivered to the user.
func CodeMessage(code string) string {
	return fmt.Sprintf("Your craft beer order confirmation code is %s", code)
}

// Limited wraps a Notifier with a token-bucket limit on sends.
type Limited struct {
	next    Notifier
	limiter *rate.Limiter
}

// WithLimit allows at most perMinute sends per minute, with a burst of the
// same size. A non-positive perMinute disables the limit and returns n.
func WithLimit(n Notifier, perMinute int) Notifier {
	if perMinute <= 0 {
		return n
	}
	return &Limited{
		next:    n,
		limiter: rate.NewLimiter(rate.Every(time.Minute/time.Duration(perMinute)), perMinute),
	}
}

// Channel implements Notifier.
func (l *Limited) Channel() Channel {
	return l.next.Channel()
}

// SendCode implements Notifier. It never waits for a token.
func (l *Limited) SendCode(ctx context.Context, code string) error {
	if !l.limiter.Allow() {
		return ErrRateLimited
	}
	return l.next.SendCode(ctx, code)
}
