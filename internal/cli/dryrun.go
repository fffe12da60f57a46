package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sns"

	"github.com/roach88/craftbeerbot/internal/checkout"
)

// Placeholder destinations used by --dry-run when none are configured.
const (
	dryRunPhoneNumber = "+15555550100"
	dryRunTargetARN   = "arn:aws:sns:us-east-1:000000000000:endpoint/APNS/beerbot/dry-run"
)

// printingPublisher is a notify.Publisher that prints instead of publishing.
type printingPublisher struct {
	w io.Writer
}

func (p printingPublisher) Publish(ctx context.Context, in *sns.PublishInput, _ ...func(*sns.Options)) (*sns.PublishOutput, error) {
	target := aws.ToString(in.PhoneNumber)
	if target == "" {
		target = aws.ToString(in.TargetArn)
	}
	fmt.Fprintf(p.w, "dry run: publish to %s: %q\n", target, aws.ToString(in.Message))
	return &sns.PublishOutput{MessageId: aws.String("dry-run")}, nil
}

// printingCheckout is a checkout.Client that prints each step and succeeds.
type printingCheckout struct {
	w io.Writer
}

func (c printingCheckout) Login(ctx context.Context, username, password string) (string, error) {
	fmt.Fprintf(c.w, "dry run: login as %q\n", username)
	return "dry-run", nil
}

func (c printingCheckout) AddToCart(ctx context.Context, token string, productID int) error {
	fmt.Fprintf(c.w, "dry run: add product %d to cart\n", productID)
	return nil
}

func (c printingCheckout) Checkout(ctx context.Context, token string, payment checkout.Payment) error {
	fmt.Fprintf(c.w, "dry run: checkout to address %q with card %s\n", payment.AddressID, payment.Card.LogValue())
	return nil
}
