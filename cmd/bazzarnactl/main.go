package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/bazzarna/storefront/internal/bootstrap"
	"github.com/bazzarna/storefront/internal/cli"
	"github.com/bazzarna/storefront/internal/platform/auth"
	"github.com/bazzarna/storefront/internal/platform/config"
	"github.com/bazzarna/storefront/internal/platform/observability"
	"github.com/bazzarna/storefront/internal/services"
)

// version is injected with -ldflags "-X main.version=...".
var version = "dev"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	baseLogger, err := observability.NewLoggerWithLevel(os.Getenv("LOG_LEVEL"))
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialise logger: %v\n", err)
		os.Exit(1)
	}
	logger := baseLogger.Named("bazzarnactl")

	cli.SetVersion(version)
	cli.SetStoreAdminOpener(func(ctx context.Context) (services.StoreAdminService, func(), error) {
		return openStoreAdmin(ctx, logger)
	})

	err = cli.Execute(ctx)
	_ = baseLogger.Sync()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func openStoreAdmin(ctx context.Context, logger *zap.Logger) (services.StoreAdminService, func(), error) {
	env, err := bootstrap.LoadEnvironment(ctx, logger, false)
	if err != nil {
		var missing *config.MissingSecretsError
		if errors.As(err, &missing) {
			return nil, nil, fmt.Errorf("missing required secrets %v", missing.RedactedNames())
		}
		return nil, nil, err
	}
	cfg := env.Config

	var releasers []func()
	release := func() {
		for i := len(releasers) - 1; i >= 0; i-- {
			releasers[i]()
		}
	}
	releasers = append(releasers, func() { _ = env.Close() })

	backends, err := bootstrap.OpenBackends(ctx, cfg, logger.Named("backends"))
	if err != nil {
		release()
		return nil, nil, err
	}
	releasers = append(releasers, backends.Close)

	verifier, err := auth.NewFirebaseVerifier(ctx, cfg.Firebase)
	if err != nil {
		release()
		return nil, nil, err
	}

	events, err := bootstrap.OpenStoreEvents(ctx, cfg.Events, logger.Named("events"))
	if err != nil {
		release()
		return nil, nil, err
	}
	releasers = append(releasers, events.Close)

	svc, err := bootstrap.NewStoreAdmin(backends, verifier, events, logger)
	if err != nil {
		release()
		return nil, nil, err
	}
	return svc, release, nil
}
