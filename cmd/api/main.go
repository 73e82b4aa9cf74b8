package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/bazzarna/storefront/internal/bootstrap"
	"github.com/bazzarna/storefront/internal/handlers"
	"github.com/bazzarna/storefront/internal/platform/auth"
	"github.com/bazzarna/storefront/internal/platform/config"
	"github.com/bazzarna/storefront/internal/platform/i18n"
	"github.com/bazzarna/storefront/internal/platform/observability"
	"github.com/bazzarna/storefront/internal/platform/pagination"
	"github.com/bazzarna/storefront/internal/platform/profile"
)

func main() {
	ctx := context.Background()
	startedAt := time.Now().UTC()

	baseLogger, err := observability.NewLogger()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialise logger: %v\n", err)
		os.Exit(1)
	}
	defer func() {
		_ = baseLogger.Sync()
	}()

	logger := baseLogger.Named("api")
	ctx = observability.WithLogger(ctx, logger)

	env, err := bootstrap.LoadEnvironment(ctx, logger, true)
	if err != nil {
		var missing *config.MissingSecretsError
		if errors.As(err, &missing) {
			logger.Fatal("missing required secrets", zap.Strings("secrets", missing.RedactedNames()))
		}
		logger.Fatal("failed to load configuration", zap.Error(err))
	}
	defer func() {
		if err := env.Close(); err != nil {
			logger.Warn("secret fetcher close error", zap.Error(err))
		}
	}()
	cfg := env.Config

	buildInfo := bootstrap.BuildInfo(env.Values, cfg, startedAt)

	backends, err := bootstrap.OpenBackends(ctx, cfg, logger.Named("backends"))
	if err != nil {
		logger.Fatal("failed to open backends", zap.Error(err))
	}
	defer backends.Close()

	storefront, err := bootstrap.NewStorefront(backends, cfg, logger)
	if err != nil {
		logger.Fatal("failed to initialise storefront services", zap.Error(err))
	}

	systemService, err := bootstrap.NewSystemService(backends, buildInfo, bootstrap.SecretsProbe(env.Secrets))
	if err != nil {
		logger.Warn("health: system service init failed", zap.Error(err))
	}

	firebaseVerifier, err := auth.NewFirebaseVerifier(ctx, cfg.Firebase)
	if err != nil {
		logger.Fatal("failed to initialise firebase verifier", zap.Error(err))
	}
	authenticator := auth.NewAuthenticator(firebaseVerifier)

	storeEvents, err := bootstrap.OpenStoreEvents(ctx, cfg.Events, logger.Named("events"))
	if err != nil {
		logger.Fatal("failed to initialise store events", zap.Error(err))
	}
	defer storeEvents.Close()

	storeAdmin, err := bootstrap.NewStoreAdmin(backends, firebaseVerifier, storeEvents, logger)
	if err != nil {
		logger.Fatal("failed to initialise store admin service", zap.Error(err))
	}

	profiles, err := profile.NewManager(profile.Config{
		CookieName: cfg.Profile.CookieName,
		HashKey:    []byte(cfg.Profile.HashKey),
		BlockKey:   []byte(cfg.Profile.BlockKey),
		MaxAge:     cfg.Profile.MaxAge,
		Secure:     cfg.Profile.Secure,
	})
	if err != nil {
		logger.Fatal("failed to initialise profile cookies", zap.Error(err))
	}

	messages, err := i18n.Embedded(cfg.Locale.Default, cfg.Locale.Supported)
	if err != nil {
		logger.Fatal("failed to load message catalogue", zap.Error(err))
	}

	publicHandlers := handlers.NewPublicHandlers(
		handlers.WithPublicCatalogService(storefront.Catalog),
		handlers.WithPublicRecentlyViewed(storefront.RecentlyViewed),
		handlers.WithPublicSimilarTracker(storefront.Similar),
		handlers.WithPublicMessages(messages),
		handlers.WithPublicPageSize(cfg.Catalog.DefaultPageSize, pagination.DefaultMaxPageSize),
	)
	recentlyViewedHandlers := handlers.NewRecentlyViewedHandlers(
		handlers.WithRecentlyViewedService(storefront.RecentlyViewed),
		handlers.WithRecentlyViewedMessages(messages),
	)
	adminStoreHandlers := handlers.NewAdminStoreHandlers(
		handlers.WithAdminStoreService(storeAdmin),
		handlers.WithAdminStoreMessages(messages),
	)

	projectID := traceProjectID(cfg)
	middlewares := []func(http.Handler) http.Handler{
		observability.InjectLoggerMiddleware(logger.Named("http")),
		observability.TraceMiddleware(projectID),
		observability.RecoveryMiddleware(logger.Named("http")),
		observability.RequestLoggerMiddleware(projectID),
		messages.Middleware(),
	}

	healthOpts := []handlers.HealthOption{handlers.WithHealthBuildInfo(buildInfo)}
	if systemService != nil {
		healthOpts = append(healthOpts, handlers.WithHealthSystemService(systemService))
	}
	healthHandlers := handlers.NewHealthHandlers(healthOpts...)

	var opts []handlers.Option
	opts = append(opts, handlers.WithMiddlewares(middlewares...))
	opts = append(opts, handlers.WithHealthHandlers(healthHandlers))
	opts = append(opts, handlers.WithPublicRoutes(publicHandlers.Routes, recentlyViewedHandlers.Routes))
	opts = append(opts, handlers.WithPublicMiddlewares(profiles.Middleware()))
	opts = append(opts, handlers.WithAdminRoutes(adminStoreHandlers.Routes))
	opts = append(opts, handlers.WithAdminMiddlewares(authenticator.RequireFirebaseAuth(auth.RoleAdmin)))

	router := handlers.NewRouter(opts...)
	server := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, syscall.SIGINT, syscall.SIGTERM)

	serverLogger := logger.Named("http").With(zap.String("addr", server.Addr))
	go func() {
		serverLogger.Info("bazzarna storefront api listening",
			zap.String("catalogBackend", cfg.Catalog.Backend),
			zap.String("recentlyViewedBackend", cfg.RecentlyViewed.Backend),
			zap.String("version", buildInfo.Version),
		)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverLogger.Fatal("http server error", zap.Error(err))
		}
	}()

	<-shutdown
	logger.Info("shutdown signal received; draining requests")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed", zap.Error(err))
	}
}

func traceProjectID(cfg config.Config) string {
	if id := strings.TrimSpace(cfg.Firebase.ProjectID); id != "" {
		return id
	}
	return strings.TrimSpace(cfg.Firestore.ProjectID)
}
