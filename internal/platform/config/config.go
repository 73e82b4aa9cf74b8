package config

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	defaultEnvFile             = ".env"
	defaultPort                = "8080"
	defaultReadTimeout         = 15 * time.Second
	defaultWriteTimeout        = 30 * time.Second
	defaultIdleTimeout         = 120 * time.Second
	defaultSecurityEnvironment = "local"
	defaultPostgresMaxConns    = 10
	defaultRedisURL            = "redis://localhost:6379"
	defaultSQLitePath          = "bazzarna-kv.db"
	defaultCatalogBackend      = CatalogBackendPostgres
	defaultCategoryCacheTTL    = 10 * time.Minute
	defaultCatalogPageSize     = 12
	defaultRecentBackend       = KVBackendMemory
	defaultRecentMaxItems      = 12
	defaultRecentFetchLimit    = 8
	defaultRecentSessionTTL    = 30 * time.Minute
	defaultRecentMaxSessions   = 10000
	defaultRecentCollection    = "recentlyViewed"
	defaultProfileCookie       = "bz_profile"
	defaultProfileMaxAge       = 365 * 24 * time.Hour
	defaultLocale              = "ar"
	defaultStoreEventsTopic    = "store-events"
)

// Catalog backends.
const (
	CatalogBackendPostgres = "postgres"
	CatalogBackendMemory   = "memory"
)

// Key-value backends used by the recently-viewed store.
const (
	KVBackendMemory    = "memory"
	KVBackendRedis     = "redis"
	KVBackendFirestore = "firestore"
	KVBackendSQLite    = "sqlite"
)

// Config captures all runtime configuration organised by concern.
type Config struct {
	Server         ServerConfig
	Firebase       FirebaseConfig
	Firestore      FirestoreConfig
	Postgres       PostgresConfig
	Redis          RedisConfig
	SQLite         SQLiteConfig
	Catalog        CatalogConfig
	RecentlyViewed RecentlyViewedConfig
	Profile        ProfileConfig
	Locale         LocaleConfig
	Events         EventsConfig
	Security       SecurityConfig
}

// ServerConfig configures HTTP server parameters.
type ServerConfig struct {
	Port         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
}

// FirebaseConfig stores Firebase project settings used for admin auth and identity deletion.
type FirebaseConfig struct {
	ProjectID       string
	CredentialsFile string
}

// FirestoreConfig stores database parameters for the Firestore key-value backend.
type FirestoreConfig struct {
	ProjectID    string
	EmulatorHost string
}

// PostgresConfig points at the catalog database.
type PostgresConfig struct {
	DSN      string
	MaxConns int
}

// RedisConfig points at the Redis key-value backend.
type RedisConfig struct {
	URL string
}

// SQLiteConfig points at the embedded key-value database file.
type SQLiteConfig struct {
	Path string
}

// CatalogConfig selects the catalog backend and listing defaults.
type CatalogConfig struct {
	Backend          string
	SeedFile         string
	CategoryCacheTTL time.Duration
	DefaultPageSize  int
}

// RecentlyViewedConfig controls the recently-viewed store.
type RecentlyViewedConfig struct {
	Backend    string
	Collection string
	MaxItems   int
	FetchLimit int
	// SessionTTL is how long an idle profile's list stays in memory.
	SessionTTL  time.Duration
	MaxSessions int
}

// ProfileConfig controls the anonymous browser profile cookie.
type ProfileConfig struct {
	CookieName string
	HashKey    string
	BlockKey   string
	MaxAge     time.Duration
	Secure     bool
}

// LocaleConfig lists the negotiated locales.
type LocaleConfig struct {
	Default   string
	Supported []string
}

// EventsConfig configures optional Pub/Sub domain events.
type EventsConfig struct {
	ProjectID       string
	StoreEventTopic string
	Enabled         bool
}

// SecurityConfig groups deployment-level security settings.
type SecurityConfig struct {
	Environment string
}

// SecretResolver resolves references to external secrets (e.g. Secret Manager URIs).
type SecretResolver interface {
	ResolveSecret(ctx context.Context, ref string) (string, error)
}

// SecretResolverFunc adapts ordinary functions to SecretResolver.
type SecretResolverFunc func(context.Context, string) (string, error)

// ResolveSecret resolves the secret using the wrapped function.
func (f SecretResolverFunc) ResolveSecret(ctx context.Context, ref string) (string, error) {
	return f(ctx, ref)
}

// ValidationError is returned when required configuration fields are missing or invalid.
type ValidationError struct {
	fields []string
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	return fmt.Sprintf("config validation failed: missing or invalid fields [%s]", strings.Join(e.fields, ", "))
}

// Fields returns a copy of the missing/invalid field list.
func (e *ValidationError) Fields() []string {
	out := make([]string, len(e.fields))
	copy(out, e.fields)
	return out
}

// SecretError describes failures while resolving a secret reference.
type SecretError struct {
	Ref string
	Err error
}

// Error implements the error interface.
func (e *SecretError) Error() string {
	return fmt.Sprintf("secret resolution failed for ref %q: %v", e.Ref, e.Err)
}

// Unwrap exposes the underlying error.
func (e *SecretError) Unwrap() error { return e.Err }

// MissingSecretsError indicates that one or more required secrets resolved to empty values.
// Names are redacted to short hashes so the error can be logged.
type MissingSecretsError struct {
	names []string
}

// Error implements the error interface.
func (e *MissingSecretsError) Error() string {
	return fmt.Sprintf("missing required secrets [%s]", strings.Join(e.RedactedNames(), ", "))
}

// RedactedNames returns the hashed secret identifiers.
func (e *MissingSecretsError) RedactedNames() []string {
	if e == nil {
		return nil
	}
	out := make([]string, 0, len(e.names))
	for _, name := range e.names {
		sum := sha256.Sum256([]byte(name))
		out = append(out, hex.EncodeToString(sum[:8]))
	}
	sort.Strings(out)
	return out
}

// Names returns the plain secret identifiers.
func (e *MissingSecretsError) Names() []string {
	if e == nil {
		return nil
	}
	out := append([]string(nil), e.names...)
	sort.Strings(out)
	return out
}

var errSecretResolverNotConfigured = errors.New("secret resolver not configured")

// Option customises Load behaviour.
type Option func(*loaderOptions)

type loaderOptions struct {
	envFile         string
	envMap          map[string]string
	useSystemEnv    bool
	secret          SecretResolver
	requiredSecrets []string
}

// WithEnvFile overrides the .env file path used for local overrides.
func WithEnvFile(path string) Option {
	return func(o *loaderOptions) {
		o.envFile = path
	}
}

// WithEnvMap injects an explicit key/value map. Values in the map take precedence over everything else.
func WithEnvMap(values map[string]string) Option {
	return func(o *loaderOptions) {
		o.envMap = values
	}
}

// WithoutSystemEnv disables reading from the process environment.
func WithoutSystemEnv() Option {
	return func(o *loaderOptions) {
		o.useSystemEnv = false
	}
}

// WithSecretResolver sets the resolver used for secret:// and sm:// references.
func WithSecretResolver(resolver SecretResolver) Option {
	return func(o *loaderOptions) {
		o.secret = resolver
	}
}

// WithRequiredSecrets marks config fields (e.g. "Profile.HashKey") as mandatory secrets.
func WithRequiredSecrets(names ...string) Option {
	return func(o *loaderOptions) {
		o.requiredSecrets = append(o.requiredSecrets, names...)
	}
}

func newLoaderOptions(opts []Option) loaderOptions {
	options := loaderOptions{
		envFile:      defaultEnvFile,
		useSystemEnv: true,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(&options)
		}
	}
	return options
}

// EnvironmentValues returns the merged environment (dotenv < OS env < explicit map) so callers
// can construct dependencies such as the secret fetcher before invoking Load.
func EnvironmentValues(opts ...Option) (map[string]string, error) {
	options := newLoaderOptions(opts)
	values, err := readDotEnv(options.envFile)
	if err != nil {
		return nil, err
	}
	if values == nil {
		values = make(map[string]string)
	}
	if options.useSystemEnv {
		for _, entry := range os.Environ() {
			key, value, ok := strings.Cut(entry, "=")
			if !ok || strings.TrimSpace(key) == "" {
				continue
			}
			values[strings.TrimSpace(key)] = value
		}
	}
	for key, value := range options.envMap {
		values[key] = value
	}
	return values, nil
}

// Load assembles the application configuration by combining defaults, .env overrides,
// environment variables, and optional secret manager lookups.
func Load(ctx context.Context, opts ...Option) (Config, error) {
	options := newLoaderOptions(opts)
	values, err := EnvironmentValues(opts...)
	if err != nil {
		return Config{}, err
	}
	lookup := func(key string) (string, bool) {
		value, ok := values[key]
		return value, ok
	}

	cfg := Config{
		Server: ServerConfig{
			Port:         stringWithDefault(lookup, "API_SERVER_PORT", defaultPort),
			ReadTimeout:  durationWithDefault(lookup, "API_SERVER_READ_TIMEOUT", defaultReadTimeout),
			WriteTimeout: durationWithDefault(lookup, "API_SERVER_WRITE_TIMEOUT", defaultWriteTimeout),
			IdleTimeout:  durationWithDefault(lookup, "API_SERVER_IDLE_TIMEOUT", defaultIdleTimeout),
		},
		Firebase: FirebaseConfig{
			ProjectID:       stringWithDefault(lookup, "API_FIREBASE_PROJECT_ID", ""),
			CredentialsFile: stringWithDefault(lookup, "API_FIREBASE_CREDENTIALS_FILE", ""),
		},
		Firestore: FirestoreConfig{
			ProjectID:    stringWithDefault(lookup, "API_FIRESTORE_PROJECT_ID", ""),
			EmulatorHost: stringWithDefault(lookup, "API_FIRESTORE_EMULATOR_HOST", ""),
		},
		Postgres: PostgresConfig{
			DSN:      stringWithDefault(lookup, "API_POSTGRES_DSN", ""),
			MaxConns: intWithDefault(lookup, "API_POSTGRES_MAX_CONNS", defaultPostgresMaxConns),
		},
		Redis: RedisConfig{
			URL: stringWithDefault(lookup, "API_REDIS_URL", defaultRedisURL),
		},
		SQLite: SQLiteConfig{
			Path: stringWithDefault(lookup, "API_SQLITE_PATH", defaultSQLitePath),
		},
		Catalog: CatalogConfig{
			Backend:          strings.ToLower(stringWithDefault(lookup, "API_CATALOG_BACKEND", defaultCatalogBackend)),
			SeedFile:         stringWithDefault(lookup, "API_CATALOG_SEED_FILE", ""),
			CategoryCacheTTL: durationWithDefault(lookup, "API_CATALOG_CATEGORY_CACHE_TTL", defaultCategoryCacheTTL),
			DefaultPageSize:  intWithDefault(lookup, "API_CATALOG_PAGE_SIZE", defaultCatalogPageSize),
		},
		RecentlyViewed: RecentlyViewedConfig{
			Backend:     strings.ToLower(stringWithDefault(lookup, "API_RECENTLY_VIEWED_BACKEND", defaultRecentBackend)),
			Collection:  stringWithDefault(lookup, "API_RECENTLY_VIEWED_COLLECTION", defaultRecentCollection),
			MaxItems:    intWithDefault(lookup, "API_RECENTLY_VIEWED_MAX_ITEMS", defaultRecentMaxItems),
			FetchLimit:  intWithDefault(lookup, "API_RECENTLY_VIEWED_FETCH_LIMIT", defaultRecentFetchLimit),
			SessionTTL:  durationWithDefault(lookup, "API_RECENTLY_VIEWED_SESSION_TTL", defaultRecentSessionTTL),
			MaxSessions: intWithDefault(lookup, "API_RECENTLY_VIEWED_MAX_SESSIONS", defaultRecentMaxSessions),
		},
		Profile: ProfileConfig{
			CookieName: stringWithDefault(lookup, "API_PROFILE_COOKIE_NAME", defaultProfileCookie),
			HashKey:    stringWithDefault(lookup, "API_PROFILE_HASH_KEY", ""),
			BlockKey:   stringWithDefault(lookup, "API_PROFILE_BLOCK_KEY", ""),
			MaxAge:     durationWithDefault(lookup, "API_PROFILE_MAX_AGE", defaultProfileMaxAge),
			Secure:     boolWithDefault(lookup, "API_PROFILE_COOKIE_SECURE", true),
		},
		Locale: LocaleConfig{
			Default:   strings.ToLower(stringWithDefault(lookup, "API_LOCALE_DEFAULT", defaultLocale)),
			Supported: csvWithDefault(lookup, "API_LOCALE_SUPPORTED", []string{"ar", "en"}),
		},
		Events: EventsConfig{
			ProjectID:       stringWithDefault(lookup, "API_EVENTS_PROJECT_ID", ""),
			StoreEventTopic: stringWithDefault(lookup, "API_EVENTS_STORE_TOPIC", defaultStoreEventsTopic),
			Enabled:         boolWithDefault(lookup, "API_EVENTS_ENABLED", false),
		},
		Security: SecurityConfig{
			Environment: strings.ToLower(stringWithDefault(lookup, "API_SECURITY_ENVIRONMENT", defaultSecurityEnvironment)),
		},
	}

	if cfg.Firestore.ProjectID == "" {
		cfg.Firestore.ProjectID = cfg.Firebase.ProjectID
	}
	if cfg.Events.ProjectID == "" {
		cfg.Events.ProjectID = cfg.Firebase.ProjectID
	}

	resolver := options.secret
	if resolver == nil {
		resolver = SecretResolverFunc(func(_ context.Context, ref string) (string, error) {
			return "", errSecretResolverNotConfigured
		})
	}
	resolved := make(map[string]string)
	secretFields := []struct {
		name  string
		field *string
	}{
		{"Postgres.DSN", &cfg.Postgres.DSN},
		{"Redis.URL", &cfg.Redis.URL},
		{"Profile.HashKey", &cfg.Profile.HashKey},
		{"Profile.BlockKey", &cfg.Profile.BlockKey},
	}
	for _, target := range secretFields {
		value, err := resolveSecret(ctx, *target.field, resolver)
		if err != nil {
			return Config{}, err
		}
		*target.field = value
		resolved[target.name] = strings.TrimSpace(value)
	}

	if err := validateConfig(cfg); err != nil {
		return Config{}, err
	}

	var missing []string
	seen := make(map[string]struct{})
	for _, name := range options.requiredSecrets {
		name = strings.TrimSpace(name)
		if _, dup := seen[name]; name == "" || dup {
			continue
		}
		seen[name] = struct{}{}
		if resolved[name] == "" {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		return Config{}, &MissingSecretsError{names: missing}
	}

	return cfg, nil
}

func resolveSecret(ctx context.Context, value string, resolver SecretResolver) (string, error) {
	trimmed := strings.TrimSpace(value)
	if !isSecretReference(trimmed) {
		return value, nil
	}
	ref := trimmed
	if strings.HasPrefix(ref, "sm://") {
		ref = "secret://" + strings.TrimPrefix(ref, "sm://")
	}
	secret, err := resolver.ResolveSecret(ctx, ref)
	if err != nil {
		return "", &SecretError{Ref: ref, Err: err}
	}
	return secret, nil
}

func validateConfig(cfg Config) error {
	var invalid []string

	if cfg.Server.Port == "" {
		invalid = append(invalid, "Server.Port")
	}
	switch cfg.Catalog.Backend {
	case CatalogBackendPostgres:
		if strings.TrimSpace(cfg.Postgres.DSN) == "" {
			invalid = append(invalid, "Postgres.DSN")
		}
	case CatalogBackendMemory:
	default:
		invalid = append(invalid, "Catalog.Backend")
	}
	if cfg.Catalog.DefaultPageSize <= 0 {
		invalid = append(invalid, "Catalog.DefaultPageSize")
	}
	switch cfg.RecentlyViewed.Backend {
	case KVBackendMemory:
	case KVBackendRedis:
		if strings.TrimSpace(cfg.Redis.URL) == "" {
			invalid = append(invalid, "Redis.URL")
		}
	case KVBackendFirestore:
		if cfg.Firestore.ProjectID == "" {
			invalid = append(invalid, "Firestore.ProjectID")
		}
	case KVBackendSQLite:
		if strings.TrimSpace(cfg.SQLite.Path) == "" {
			invalid = append(invalid, "SQLite.Path")
		}
	default:
		invalid = append(invalid, "RecentlyViewed.Backend")
	}
	if cfg.RecentlyViewed.MaxItems <= 0 {
		invalid = append(invalid, "RecentlyViewed.MaxItems")
	}
	if cfg.RecentlyViewed.FetchLimit <= 0 {
		invalid = append(invalid, "RecentlyViewed.FetchLimit")
	}
	if cfg.RecentlyViewed.SessionTTL <= 0 {
		invalid = append(invalid, "RecentlyViewed.SessionTTL")
	}
	if cfg.RecentlyViewed.MaxSessions <= 0 {
		invalid = append(invalid, "RecentlyViewed.MaxSessions")
	}
	if cfg.Firebase.ProjectID == "" {
		invalid = append(invalid, "Firebase.ProjectID")
	}
	if len(cfg.Locale.Supported) == 0 {
		invalid = append(invalid, "Locale.Supported")
	}
	if cfg.Events.Enabled && cfg.Events.ProjectID == "" {
		invalid = append(invalid, "Events.ProjectID")
	}

	if len(invalid) > 0 {
		return &ValidationError{fields: invalid}
	}
	return nil
}

func isSecretReference(value string) bool {
	return strings.HasPrefix(value, "secret://") || strings.HasPrefix(value, "sm://")
}

func readDotEnv(path string) (map[string]string, error) {
	if path == "" {
		return nil, nil
	}
	values, err := godotenv.Read(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("config: unable to read %s: %w", path, err)
	}
	return values, nil
}

func stringWithDefault(lookup func(string) (string, bool), key, fallback string) string {
	if value, ok := lookup(key); ok && strings.TrimSpace(value) != "" {
		return strings.TrimSpace(value)
	}
	return fallback
}

func durationWithDefault(lookup func(string) (string, bool), key string, fallback time.Duration) time.Duration {
	if value, ok := lookup(key); ok && value != "" {
		if d, err := time.ParseDuration(strings.TrimSpace(value)); err == nil {
			return d
		}
	}
	return fallback
}

func intWithDefault(lookup func(string) (string, bool), key string, fallback int) int {
	if value, ok := lookup(key); ok && value != "" {
		if parsed, err := strconv.Atoi(strings.TrimSpace(value)); err == nil {
			return parsed
		}
	}
	return fallback
}

func boolWithDefault(lookup func(string) (string, bool), key string, fallback bool) bool {
	if value, ok := lookup(key); ok && value != "" {
		switch strings.ToLower(strings.TrimSpace(value)) {
		case "true", "1", "yes", "on":
			return true
		case "false", "0", "no", "off":
			return false
		}
	}
	return fallback
}

func csvWithDefault(lookup func(string) (string, bool), key string, fallback []string) []string {
	raw, ok := lookup(key)
	if !ok || strings.TrimSpace(raw) == "" {
		return append([]string(nil), fallback...)
	}
	out := make([]string, 0, 4)
	for _, part := range strings.Split(raw, ",") {
		if trimmed := strings.ToLower(strings.TrimSpace(part)); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
