// Command beerbot-lambda is the Lex code hook deployed to AWS Lambda.
package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/aws/aws-lambda-go/lambda"

	"github.com/roach88/craftbeerbot/internal/catalog"
	"github.com/roach88/craftbeerbot/internal/config"
	"github.com/roach88/craftbeerbot/internal/engine"
	"github.com/roach88/craftbeerbot/internal/lex"
	"github.com/roach88/craftbeerbot/internal/notify"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	eng, cat, err := setup(context.Background(), logger)
	if err != nil {
		logger.Error("startup failed", "error", err)
		os.Exit(1)
	}

	lambda.Start(lex.Handler(eng, cat, logger))
}

func setup(ctx context.Context, logger *slog.Logger) (*engine.Engine, *catalog.Catalog, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, nil, err
	}

	cat, err := catalog.Default()
	if err != nil {
		return nil, nil, err
	}

	client, err := notify.NewSNSClient(ctx)
	if err != nil {
		return nil, nil, err
	}
	notifier, err := cfg.Notifier(client)
	if err != nil {
		return nil, nil, err
	}

	eng, err := engine.New(engine.Config{
		Catalog:     cat,
		Checkout:    cfg.CheckoutClient(),
		Notifier:    notifier,
		Credentials: cfg.Credentials(),
		Payment:     cfg.Payment(),
		Logger:      logger,
	})
	if err != nil {
		return nil, nil, err
	}

	logger.Info("beerbot ready", "env", cfg.Env, "channel", cfg.NotifyChannel, "beers", cat.Len())
	return eng, cat, nil
}
