package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
	"google.golang.org/api/option"

	"github.com/bazzarna/storefront/internal/platform/config"
	"github.com/bazzarna/storefront/internal/platform/secrets"
	"github.com/bazzarna/storefront/internal/repositories"
	"github.com/bazzarna/storefront/internal/services"
)

const secretHealthReference = "secret://system/healthz?version=latest"

// Environment is the loaded configuration plus the secret fetcher that resolved it.
type Environment struct {
	Config  config.Config
	Values  map[string]string
	Secrets *secrets.Fetcher
}

// Close releases the secret fetcher.
func (e *Environment) Close() error {
	if e == nil || e.Secrets == nil {
		return nil
	}
	return e.Secrets.Close()
}

// LoadEnvironment reads API_* values, builds the secret fetcher from them and loads the
// configuration with secret:// references resolved. requireProfileKeys marks the profile
// cookie keys as mandatory. opts are forwarded to the config loader.
func LoadEnvironment(ctx context.Context, logger *zap.Logger, requireProfileKeys bool, opts ...config.Option) (*Environment, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	values, err := config.EnvironmentValues(opts...)
	if err != nil {
		return nil, fmt.Errorf("read environment values: %w", err)
	}

	fetcher, err := newSecretFetcher(ctx, logger, values)
	if err != nil {
		return nil, fmt.Errorf("initialise secret fetcher: %w", err)
	}

	loadOpts := append([]config.Option{}, opts...)
	loadOpts = append(loadOpts,
		config.WithSecretResolver(config.SecretResolverFunc(fetcher.Resolve)),
		config.WithRequiredSecrets(requiredSecretNames(values, requireProfileKeys)...),
	)
	cfg, err := config.Load(ctx, loadOpts...)
	if err != nil {
		_ = fetcher.Close()
		return nil, err
	}
	return &Environment{Config: cfg, Values: values, Secrets: fetcher}, nil
}

func newSecretFetcher(ctx context.Context, logger *zap.Logger, env map[string]string) (*secrets.Fetcher, error) {
	lookup := func(key string) string {
		return strings.TrimSpace(env[key])
	}

	project := lookup("API_SECRET_PROJECT_ID")
	if project == "" {
		project = lookup("API_FIREBASE_PROJECT_ID")
	}
	fallbackPath := lookup("API_SECRET_FALLBACK_FILE")
	if fallbackPath == "" {
		fallbackPath = ".secrets.local"
	}

	opts := []secrets.Option{
		secrets.WithLogger(logger.Named("secrets")),
		secrets.WithFallbackFile(fallbackPath),
		secrets.WithProject(project),
	}
	if credentialsFile := lookup("API_FIREBASE_CREDENTIALS_FILE"); credentialsFile != "" {
		opts = append(opts, secrets.WithClientOptions(option.WithCredentialsFile(credentialsFile)))
	}
	return secrets.NewFetcher(ctx, opts...)
}

func requiredSecretNames(env map[string]string, requireProfileKeys bool) []string {
	var required []string
	if requireProfileKeys {
		required = append(required, "Profile.HashKey")
	}
	backend := strings.ToLower(strings.TrimSpace(env["API_CATALOG_BACKEND"]))
	if backend == "" || backend == config.CatalogBackendPostgres {
		required = append(required, "Postgres.DSN")
	}
	if strings.ToLower(strings.TrimSpace(env["API_RECENTLY_VIEWED_BACKEND"])) == config.KVBackendRedis {
		required = append(required, "Redis.URL")
	}
	return required
}

// BuildInfo reads the build metadata injected by the deployment pipeline.
func BuildInfo(env map[string]string, cfg config.Config, started time.Time) services.BuildInfo {
	version := strings.TrimSpace(env["API_BUILD_VERSION"])
	if version == "" {
		version = "dev"
	}
	commit := strings.TrimSpace(env["API_BUILD_COMMIT_SHA"])
	if commit == "" {
		commit = "unknown"
	}
	environment := strings.TrimSpace(cfg.Security.Environment)
	if environment == "" {
		environment = "local"
	}
	return services.BuildInfo{
		Version:     version,
		CommitSHA:   commit,
		Environment: environment,
		StartedAt:   started,
	}
}

// SecretsProbe checks that the secret fetcher can reach its sources. A missing health
// secret counts as reachable.
func SecretsProbe(fetcher *secrets.Fetcher) repositories.Probe {
	return repositories.Probe{
		Name:    "secretManager",
		Timeout: time.Second,
		Check: func(ctx context.Context) error {
			if fetcher == nil {
				return errors.New("secret fetcher not configured")
			}
			fetcher.Invalidate(secretHealthReference)
			_, err := fetcher.Resolve(ctx, secretHealthReference)
			if err == nil || errors.Is(err, secrets.ErrNotFound) {
				return nil
			}
			return err
		},
	}
}
