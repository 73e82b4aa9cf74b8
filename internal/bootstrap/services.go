package bootstrap

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/bazzarna/storefront/internal/platform/auth"
	"github.com/bazzarna/storefront/internal/platform/config"
	"github.com/bazzarna/storefront/internal/platform/jobs"
	"github.com/bazzarna/storefront/internal/platform/observability"
	"github.com/bazzarna/storefront/internal/platform/pagination"
	"github.com/bazzarna/storefront/internal/repositories"
	"github.com/bazzarna/storefront/internal/services"
)

// Storefront bundles the services behind the public API.
type Storefront struct {
	Catalog        services.CatalogService
	RecentlyViewed services.RecentlyViewedService
	Similar        *services.SimilarTracker
}

// NewStorefront builds the catalogue, recently viewed and similar products services over b.
func NewStorefront(b *Backends, cfg config.Config, logger *zap.Logger) (Storefront, error) {
	if b == nil {
		return Storefront{}, errors.New("bootstrap: backends are required")
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	catalog, err := services.NewCatalogService(services.CatalogServiceDeps{
		Products:        b.Products,
		Categories:      b.Categories,
		DefaultPageSize: cfg.Catalog.DefaultPageSize,
		MaxPageSize:     pagination.DefaultMaxPageSize,
		Logger:          observability.NewEventLogger(logger.Named("catalog"), "catalog event"),
	})
	if err != nil {
		return Storefront{}, err
	}

	recent, err := services.NewRecentlyViewedService(services.RecentlyViewedServiceDeps{
		Store:       b.RecentlyViewed,
		Products:    b.Products,
		MaxItems:    cfg.RecentlyViewed.MaxItems,
		FetchLimit:  cfg.RecentlyViewed.FetchLimit,
		SessionTTL:  cfg.RecentlyViewed.SessionTTL,
		MaxSessions: cfg.RecentlyViewed.MaxSessions,
		Logger:      observability.NewEventLogger(logger.Named("recently_viewed"), "recently viewed event"),
	})
	if err != nil {
		return Storefront{}, err
	}

	resolver, err := services.NewSimilarResolver(b.Products, observability.NewEventLogger(logger.Named("similar"), "similar products event"))
	if err != nil {
		return Storefront{}, err
	}

	return Storefront{
		Catalog:        catalog,
		RecentlyViewed: recent,
		Similar:        services.NewSimilarTracker(resolver),
	}, nil
}

// NewSystemService reports readiness from the backend probes plus any extra probes.
func NewSystemService(b *Backends, build services.BuildInfo, extra ...repositories.Probe) (services.SystemService, error) {
	var probes []repositories.Probe
	if b != nil {
		probes = append(probes, b.Probes...)
	}
	probes = append(probes, extra...)
	if len(probes) == 0 {
		return nil, errors.New("health: no dependency checks configured")
	}
	repo, err := repositories.NewProbeHealthRepository(probes)
	if err != nil {
		return nil, err
	}
	return services.NewSystemService(services.SystemServiceDeps{
		HealthRepository: repo,
		Build:            build,
	})
}

// StoreEvents is an open Pub/Sub publisher for store lifecycle events.
type StoreEvents struct {
	Publisher services.StoreEventPublisher
	close     func()
}

// Close stops the topic and the client. It is safe on a disabled StoreEvents.
func (e *StoreEvents) Close() {
	if e == nil || e.close == nil {
		return
	}
	e.close()
	e.close = nil
}

// OpenStoreEvents dials the store event topic when events are enabled. A disabled
// configuration yields a StoreEvents with a nil Publisher.
func OpenStoreEvents(ctx context.Context, cfg config.EventsConfig, logger *zap.Logger) (*StoreEvents, error) {
	if !cfg.Enabled {
		return &StoreEvents{}, nil
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	client, topic, err := jobs.DialStoreEvents(ctx, cfg)
	if err != nil {
		return nil, err
	}
	publisher, err := jobs.NewPubSubStoreEventPublisher(topic)
	if err != nil {
		topic.Stop()
		_ = client.Close()
		return nil, err
	}
	return &StoreEvents{
		Publisher: publisher,
		close: func() {
			topic.Stop()
			if err := client.Close(); err != nil {
				logger.Warn("pubsub close error", zap.Error(err))
			}
		},
	}, nil
}

// NewStoreAdmin builds the store deletion service. A nil verifier skips the auth user step.
func NewStoreAdmin(b *Backends, verifier *auth.FirebaseVerifier, events *StoreEvents, logger *zap.Logger) (services.StoreAdminService, error) {
	if b == nil || b.Stores == nil {
		return nil, fmt.Errorf("bootstrap: store repository is required")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	deps := services.StoreAdminServiceDeps{
		Stores: b.Stores,
		Logger: observability.NewEventLogger(logger.Named("store_admin"), "store admin event"),
	}
	if verifier != nil {
		deps.Auth = verifier
	}
	if events != nil && events.Publisher != nil {
		deps.Publisher = events.Publisher
	}
	return services.NewStoreAdminService(deps)
}
