package notify

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/aws/aws-sdk-go-v2/service/sns/types"
)

// Publisher is the subset of *sns.Client used by SNSNotifier.
type Publisher interface {
	Publish(ctx context.Context, params *sns.PublishInput, optFns ...func(*sns.Options)) (*sns.PublishOutput, error)
}

// NewSNSClient builds an SNS client from the default AWS credential chain.
func NewSNSClient(ctx context.Context) (*sns.Client, error) {
	cfg, err := awsconfig.LoadDefaultConfig(ctx)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}
	return sns.NewFromConfig(cfg), nil
}

// SNSNotifier publishes codes through SNS.
type SNSNotifier struct {
	pub     Publisher
	channel Channel
	target  string
}

// NewSMS sends codes as transactional SMS to phoneNumber (E.164).
func NewSMS(pub Publisher, phoneNumber string) (*SNSNotifier, error) {
	if phoneNumber == "" {
		return nil, fmt.Errorf("sms: %w", ErrNoTarget)
	}
	return &SNSNotifier{pub: pub, channel: ChannelSMS, target: phoneNumber}, nil
}

// NewPush sends codes as mobile push to the endpoint or topic targetARN.
func NewPush(pub Publisher, targetARN string) (*SNSNotifier, error) {
	if targetARN == "" {
		return nil, fmt.Errorf("push: %w", ErrNoTarget)
	}
	return &SNSNotifier{pub: pub, channel: ChannelPush, target: targetARN}, nil
}

// Channel implements Notifier.
func (n *SNSNotifier) Channel() Channel {
	return n.channel
}

// SendCode implements Notifier.
func (n *SNSNotifier) SendCode(ctx context.Context, code string) error {
	input := &sns.PublishInput{
		Message: aws.String(CodeMessage(code)),
	}

	switch n.channel {
	case ChannelSMS:
		input.PhoneNumber = aws.String(n.target)
		input.MessageAttributes = map[string]types.MessageAttributeValue{
			"AWS.SNS.SMS.SMSType": {
				DataType:    aws.String("String"),
				StringValue: aws.String("Transactional"),
			},
		}
	case ChannelPush:
		input.TargetArn = aws.String(n.target)
	default:
		return fmt.Errorf("unsupported channel %q", n.channel)
	}

	if _, err := n.pub.Publish(ctx, input); err != nil {
		return fmt.Errorf("publish %s: %w", n.channel, err)
	}
	return nil
}
