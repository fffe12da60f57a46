// Package config reads bot configuration from the environment.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"

	"github.com/roach88/craftbeerbot/internal/checkout"
	"github.com/roach88/craftbeerbot/internal/notify"
)

// EnvDevelopment is the default environment; it loads a .env file.
const EnvDevelopment = "development"

// ErrInvalid is returned by Validate.
var ErrInvalid = errors.New("invalid configuration")

// Config is the full runtime configuration.
type Config struct {
	Env string `env:"BEERBOT_ENV" envDefault:"development"`

	CheckoutBaseURL   string        `env:"CHECKOUT_BASE_URL"`
	CheckoutUsername  string        `env:"CHECKOUT_USERNAME"`
	CheckoutPassword  string        `env:"CHECKOUT_PASSWORD"`
	CheckoutAddressID string        `env:"CHECKOUT_ADDRESS_ID"`
	CheckoutTimeout   time.Duration `env:"CHECKOUT_TIMEOUT" envDefault:"10s"`

	CardName        string `env:"CARD_NAME"`
	CardType        string `env:"CARD_TYPE"`
	CardNumber      string `env:"CARD_NUMBER"`
	CardExpiryMonth string `env:"CARD_EXPIRY_MONTH"`
	CardExpiryYear  string `env:"CARD_EXPIRY_YEAR"`
	CardCCV         string `env:"CARD_CCV"`

	NotifyChannel      string `env:"NOTIFY_CHANNEL" envDefault:"sms"`
	NotifyPhoneNumber  string `env:"NOTIFY_PHONE_NUMBER"`
	NotifyTargetARN    string `env:"NOTIFY_TARGET_ARN"`
	NotifyMaxPerMinute int    `env:"NOTIFY_MAX_PER_MINUTE" envDefault:"3"`
}

// ParseEnv loads configuration from environment variables.
func ParseEnv(target any) error {
	if err := env.Parse(target); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}

// Load reads the environment into a Config.
//
// Outside production (BEERBOT_ENV empty or "development") the given dotenv
// files, or ".env" when none are given, are loaded first. Missing files are
// skipped; variables already set in the process win.
func Load(dotenv ...string) (Config, error) {
	if isDevelopment(os.Getenv("BEERBOT_ENV")) {
		if len(dotenv) == 0 {
			dotenv = []string{".env"}
		}
		for _, path := range dotenv {
			if err := godotenv.Load(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
				return Config{}, fmt.Errorf("load %s: %w", path, err)
			}
		}
	}

	var cfg Config
	if err := ParseEnv(&cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func isDevelopment(v string) bool {
	return v == "" || strings.EqualFold(v, EnvDevelopment)
}

// IsDevelopment reports whether the bot runs outside production.
func (c Config) IsDevelopment() bool {
	return isDevelopment(c.Env)
}

// Channel returns the notification channel.
func (c Config) Channel() (notify.Channel, error) {
	return notify.ParseChannel(c.NotifyChannel)
}

// Validate reports every missing or inconsistent setting at once.
func (c Config) Validate() error {
	var missing []string
	required := []struct {
		name, value string
	}{
		{"CHECKOUT_BASE_URL", c.CheckoutBaseURL},
		{"CHECKOUT_USERNAME", c.CheckoutUsername},
		{"CHECKOUT_PASSWORD", c.CheckoutPassword},
		{"CHECKOUT_ADDRESS_ID", c.CheckoutAddressID},
		{"CARD_NAME", c.CardName},
		{"CARD_TYPE", c.CardType},
		{"CARD_NUMBER", c.CardNumber},
		{"CARD_EXPIRY_MONTH", c.CardExpiryMonth},
		{"CARD_EXPIRY_YEAR", c.CardExpiryYear},
		{"CARD_CCV", c.CardCCV},
	}
	for _, r := range required {
		if strings.TrimSpace(r.value) == "" {
			missing = append(missing, r.name)
		}
	}

	ch, err := c.Channel()
	if err != nil {
		return fmt.Errorf("%w: NOTIFY_CHANNEL: %v", ErrInvalid, err)
	}
	switch {
	case ch == notify.ChannelSMS && c.NotifyPhoneNumber == "":
		missing = append(missing, "NOTIFY_PHONE_NUMBER")
	case ch == notify.ChannelPush && c.NotifyTargetARN == "":
		missing = append(missing, "NOTIFY_TARGET_ARN")
	}

	if len(missing) > 0 {
		return fmt.Errorf("%w: missing %s", ErrInvalid, strings.Join(missing, ", "))
	}
	if c.CheckoutTimeout < 0 {
		return fmt.Errorf("%w: CHECKOUT_TIMEOUT must not be negative", ErrInvalid)
	}
	return nil
}

// Credentials returns the ordering-service login.
func (c Config) Credentials() checkout.Credentials {
	return checkout.Credentials{Username: c.CheckoutUsername, Password: c.CheckoutPassword}
}

// Payment returns the shipping and card details sent at checkout.
func (c Config) Payment() checkout.Payment {
	return checkout.Payment{
		AddressID: c.CheckoutAddressID,
		Card: checkout.Card{
			Name:        c.CardName,
			Type:        c.CardType,
			Number:      c.CardNumber,
			ExpiryMonth: c.CardExpiryMonth,
			ExpiryYear:  c.CardExpiryYear,
			CCV:         c.CardCCV,
		},
	}
}

// NotifyTarget returns the destination for the configured channel.
func (c Config) NotifyTarget() string {
	if ch, _ := c.Channel(); ch == notify.ChannelPush {
		return c.NotifyTargetARN
	}
	return c.NotifyPhoneNumber
}

// Notifier builds the configured channel's notifier on pub, rate limited by
// NotifyMaxPerMinute.
func (c Config) Notifier(pub notify.Publisher) (notify.Notifier, error) {
	ch, err := c.Channel()
	if err != nil {
		return nil, err
	}

	var n notify.Notifier
	switch ch {
	case notify.ChannelPush:
		n, err = notify.NewPush(pub, c.NotifyTargetARN)
	default:
		n, err = notify.NewSMS(pub, c.NotifyPhoneNumber)
	}
	if err != nil {
		return nil, err
	}
	return notify.WithLimit(n, c.NotifyMaxPerMinute), nil
}

// CheckoutClient builds the HTTP ordering-service client.
func (c Config) CheckoutClient() *checkout.HTTPClient {
	return checkout.NewHTTPClient(c.CheckoutBaseURL, c.CheckoutTimeout)
}
