// Package bootstrap opens the storage and messaging backends selected by configuration and
// assembles the services shared by the API server and the operator CLI.
package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
	"google.golang.org/api/option"

	"github.com/bazzarna/storefront/internal/platform/config"
	pfirestore "github.com/bazzarna/storefront/internal/platform/firestore"
	"github.com/bazzarna/storefront/internal/platform/kvstore"
	ppostgres "github.com/bazzarna/storefront/internal/platform/postgres"
	"github.com/bazzarna/storefront/internal/repositories"
	"github.com/bazzarna/storefront/internal/repositories/memory"
	pgrepo "github.com/bazzarna/storefront/internal/repositories/postgres"
)

const probeTimeout = 1500 * time.Millisecond

// Backends holds the repositories and stores chosen by configuration together with the
// readiness probes that exercise them.
type Backends struct {
	Products       repositories.ProductRepository
	Categories     *repositories.CachedCategoryRepository
	Stores         repositories.StoreRepository
	RecentlyViewed kvstore.Store
	Probes         []repositories.Probe

	logger  *zap.Logger
	closers []namedCloser
}

type namedCloser struct {
	name  string
	close func() error
}

// OpenBackends dials the catalogue backend and the recently viewed store. Anything opened
// before a failure is closed again.
func OpenBackends(ctx context.Context, cfg config.Config, logger *zap.Logger) (*Backends, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	b := &Backends{logger: logger}
	if err := b.openCatalog(ctx, cfg); err != nil {
		b.Close()
		return nil, err
	}
	if err := b.openRecentlyViewed(ctx, cfg); err != nil {
		b.Close()
		return nil, err
	}
	return b, nil
}

func (b *Backends) openCatalog(ctx context.Context, cfg config.Config) error {
	var categories repositories.CategoryRepository
	switch cfg.Catalog.Backend {
	case config.CatalogBackendPostgres:
		pool, err := ppostgres.Open(ctx, cfg.Postgres)
		if err != nil {
			return err
		}
		b.onClose("postgres", func() error {
			pool.Close()
			return nil
		})
		repo, err := b.bindPostgres(pool)
		if err != nil {
			return err
		}
		categories = repo
		b.addProbe("postgres", pool.Ping)
	case config.CatalogBackendMemory:
		catalog := memory.NewCatalog(nil, nil, nil)
		if path := strings.TrimSpace(cfg.Catalog.SeedFile); path != "" {
			seeded, err := memory.LoadSeedFile(path)
			if err != nil {
				return fmt.Errorf("bootstrap: load catalogue seed: %w", err)
			}
			catalog = seeded
		}
		b.Products = catalog
		b.Stores = catalog
		categories = catalog
		b.logger.Info("serving in-memory catalogue", zap.String("seed", cfg.Catalog.SeedFile), zap.Int("stores", len(catalog.Stores())))
	default:
		return fmt.Errorf("bootstrap: unsupported catalogue backend %q", cfg.Catalog.Backend)
	}
	b.Categories = repositories.NewCachedCategoryRepository(categories, cfg.Catalog.CategoryCacheTTL)
	return nil
}

func (b *Backends) bindPostgres(pool *pgxpool.Pool) (repositories.CategoryRepository, error) {
	products, err := pgrepo.NewProductRepository(pool)
	if err != nil {
		return nil, err
	}
	categories, err := pgrepo.NewCategoryRepository(pool)
	if err != nil {
		return nil, err
	}
	stores, err := pgrepo.NewStoreRepository(pool)
	if err != nil {
		return nil, err
	}
	b.Products = products
	b.Stores = stores
	return categories, nil
}

func (b *Backends) openRecentlyViewed(ctx context.Context, cfg config.Config) error {
	switch cfg.RecentlyViewed.Backend {
	case config.KVBackendMemory:
		b.RecentlyViewed = kvstore.NewMemory()
	case config.KVBackendRedis:
		client, err := kvstore.DialRedis(ctx, cfg.Redis.URL)
		if err != nil {
			return err
		}
		b.onClose("redis", client.Close)
		b.RecentlyViewed = kvstore.NewRedis(client)
	case config.KVBackendFirestore:
		var clientOpts []option.ClientOption
		if creds := strings.TrimSpace(cfg.Firebase.CredentialsFile); creds != "" {
			clientOpts = append(clientOpts, option.WithCredentialsFile(creds))
		}
		provider := pfirestore.NewProvider(cfg.Firestore, clientOpts...)
		b.onClose("firestore", provider.Close)
		b.RecentlyViewed = kvstore.NewFirestore(provider, cfg.RecentlyViewed.Collection)
	case config.KVBackendSQLite:
		store, err := kvstore.OpenSQLite(ctx, cfg.SQLite.Path)
		if err != nil {
			return err
		}
		b.onClose("sqlite", store.Close)
		b.RecentlyViewed = store
	default:
		return fmt.Errorf("bootstrap: unsupported recently viewed backend %q", cfg.RecentlyViewed.Backend)
	}
	if pinger, ok := b.RecentlyViewed.(kvstore.Pinger); ok {
		b.addProbe("recentlyViewed", pinger.Ping)
	}
	return nil
}

func (b *Backends) addProbe(name string, check func(context.Context) error) {
	b.Probes = append(b.Probes, repositories.Probe{Name: name, Timeout: probeTimeout, Check: check})
}

func (b *Backends) onClose(name string, fn func() error) {
	b.closers = append(b.closers, namedCloser{name: name, close: fn})
}

// Close releases every backend in reverse opening order.
func (b *Backends) Close() {
	if b == nil {
		return
	}
	for i := len(b.closers) - 1; i >= 0; i-- {
		c := b.closers[i]
		if err := c.close(); err != nil && !errors.Is(err, context.Canceled) {
			b.logger.Warn("backend close error", zap.String("backend", c.name), zap.Error(err))
		}
	}
	b.closers = nil
}
