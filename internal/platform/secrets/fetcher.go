package secrets

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"net/url"
	"os"
	"strings"
	"sync"
	"time"

	secretmanager "cloud.google.com/go/secretmanager/apiv1"
	"cloud.google.com/go/secretmanager/apiv1/secretmanagerpb"
	"github.com/googleapis/gax-go/v2"
	"github.com/joho/godotenv"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"
	"google.golang.org/api/option"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

const (
	defaultFallbackPath = ".secrets.local"
	metricNamespace     = "github.com/bazzarna/storefront/internal/platform/secrets"
)

var secretManagerClientFactory = func(ctx context.Context, opts ...option.ClientOption) (secretManagerClient, error) {
	return secretmanager.NewClient(ctx, opts...)
}

// ErrNotFound is returned when neither Secret Manager nor the fallback file knows a reference.
var ErrNotFound = errors.New("secrets: secret not found")

type secretManagerClient interface {
	AccessSecretVersion(ctx context.Context, req *secretmanagerpb.AccessSecretVersionRequest, opts ...gax.CallOption) (*secretmanagerpb.AccessSecretVersionResponse, error)
	Close() error
}

// Fetcher resolves secret:// references (profile cookie keys, database DSNs) against
// Secret Manager, caching values in memory and falling back to a local dotenv file.
// Path separators in a reference map to underscores, so secret://profile/hash is stored
// as the Secret Manager secret "profile_hash" and read from the fallback key profile_hash
// (or profile_hash.<version> for a pinned version).
type Fetcher struct {
	client     secretManagerClient
	ownsClient bool
	logger     *zap.Logger
	projectID  string

	fallbackPath string
	fallbackOnce sync.Once
	fallbackVals map[string]string
	fallbackErr  error

	mu    sync.RWMutex
	cache map[string]string

	latency   metric.Float64Histogram
	cacheHits metric.Int64Counter
}

type fetcherConfig struct {
	logger       *zap.Logger
	projectID    string
	fallbackPath string
	meter        metric.Meter
	client       secretManagerClient
	clientOpts   []option.ClientOption
}

// Option customises Fetcher construction.
type Option func(*fetcherConfig)

// WithLogger sets the logger used for diagnostic output.
func WithLogger(logger *zap.Logger) Option {
	return func(cfg *fetcherConfig) {
		cfg.logger = logger
	}
}

// WithProject sets the project that owns secrets without an explicit ?project= override.
func WithProject(projectID string) Option {
	return func(cfg *fetcherConfig) {
		cfg.projectID = strings.TrimSpace(projectID)
	}
}

// WithFallbackFile overrides the local fallback secrets file.
func WithFallbackFile(path string) Option {
	return func(cfg *fetcherConfig) {
		cfg.fallbackPath = strings.TrimSpace(path)
	}
}

// WithMeter injects a custom OpenTelemetry meter.
func WithMeter(m metric.Meter) Option {
	return func(cfg *fetcherConfig) {
		cfg.meter = m
	}
}

// WithClientOptions forwards options to the Secret Manager client constructor.
func WithClientOptions(opts ...option.ClientOption) Option {
	return func(cfg *fetcherConfig) {
		cfg.clientOpts = append(cfg.clientOpts, opts...)
	}
}

func withClient(client secretManagerClient) Option {
	return func(cfg *fetcherConfig) {
		cfg.client = client
	}
}

// NewFetcher builds a Fetcher. A Secret Manager client that cannot be created leaves the
// fetcher in fallback-only mode rather than failing startup.
func NewFetcher(ctx context.Context, opts ...Option) (*Fetcher, error) {
	cfg := fetcherConfig{
		logger:       zap.NewNop(),
		fallbackPath: defaultFallbackPath,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}
	if cfg.logger == nil {
		cfg.logger = zap.NewNop()
	}
	meter := cfg.meter
	if meter == nil {
		meter = otel.GetMeterProvider().Meter(metricNamespace)
	}

	f := &Fetcher{
		logger:       cfg.logger,
		projectID:    cfg.projectID,
		fallbackPath: cfg.fallbackPath,
		cache:        make(map[string]string),
	}

	var err error
	f.latency, err = meter.Float64Histogram(
		"secrets.fetch.latency",
		metric.WithUnit("ms"),
		metric.WithDescription("Latency in milliseconds for secret fetch attempts"),
	)
	if err != nil {
		cfg.logger.Warn("secrets: unable to register latency metric", zap.Error(err))
	}
	f.cacheHits, err = meter.Int64Counter(
		"secrets.fetch.cache_hits",
		metric.WithDescription("Count of cache hits when resolving secrets"),
	)
	if err != nil {
		cfg.logger.Warn("secrets: unable to register cache hit metric", zap.Error(err))
	}

	switch {
	case cfg.client != nil:
		f.client = cfg.client
	case cfg.projectID != "":
		client, err := secretManagerClientFactory(ctx, cfg.clientOpts...)
		if err != nil {
			cfg.logger.Warn("secrets: secret manager client unavailable; operating in fallback mode", zap.Error(err))
		} else {
			f.client = client
			f.ownsClient = true
		}
	}

	return f, nil
}

// Close releases the Secret Manager client when the fetcher created it.
func (f *Fetcher) Close() error {
	if f.ownsClient && f.client != nil {
		return f.client.Close()
	}
	return nil
}

// ResolveSecret satisfies config.SecretResolver.
func (f *Fetcher) ResolveSecret(ctx context.Context, ref string) (string, error) {
	return f.Resolve(ctx, ref)
}

// Resolve returns the value for ref, consulting the cache, then Secret Manager, then the fallback file.
func (f *Fetcher) Resolve(ctx context.Context, ref string) (string, error) {
	start := time.Now()
	parsed, err := parseReference(ref)
	if err != nil {
		return "", err
	}

	key := parsed.Canonical + "#" + parsed.Version
	f.mu.RLock()
	value, ok := f.cache[key]
	f.mu.RUnlock()
	if ok {
		if f.cacheHits != nil {
			f.cacheHits.Add(ctx, 1, metric.WithAttributes(attribute.String("secret", maskReference(parsed.Canonical))))
		}
		f.recordLatency(ctx, start, "cache")
		return value, nil
	}

	project := parsed.Project
	if project == "" {
		project = f.projectID
	}
	if f.client != nil && project != "" {
		value, err := f.fetchRemote(ctx, project, parsed)
		if err == nil {
			f.store(key, value)
			f.recordLatency(ctx, start, "remote")
			return value, nil
		}
		if !isFallbackError(err) {
			f.recordLatency(ctx, start, "error")
			return "", fmt.Errorf("secrets: fetch failed for %s: %w", parsed.Canonical, err)
		}
		f.logger.Debug("secrets: falling back to local secrets", zap.String("ref", maskReference(parsed.Canonical)), zap.Error(err))
	}

	value, ok = f.lookupFallback(parsed)
	if !ok {
		f.recordLatency(ctx, start, "error")
		return "", fmt.Errorf("%w: %s", ErrNotFound, parsed.Canonical)
	}
	f.store(key, value)
	f.recordLatency(ctx, start, "fallback")
	return value, nil
}

// Invalidate drops every cached version of ref.
func (f *Fetcher) Invalidate(ref string) {
	parsed, err := parseReference(ref)
	if err != nil {
		return
	}
	prefix := parsed.Canonical + "#"
	f.mu.Lock()
	for key := range f.cache {
		if strings.HasPrefix(key, prefix) {
			delete(f.cache, key)
		}
	}
	f.mu.Unlock()
}

func (f *Fetcher) store(key, value string) {
	f.mu.Lock()
	f.cache[key] = value
	f.mu.Unlock()
}

func (f *Fetcher) fetchRemote(ctx context.Context, project string, ref parsedReference) (string, error) {
	name := fmt.Sprintf("projects/%s/secrets/%s/versions/%s", project, ref.Secret, ref.Version)
	resp, err := f.client.AccessSecretVersion(ctx, &secretmanagerpb.AccessSecretVersionRequest{Name: name})
	if err != nil {
		return "", err
	}
	if resp.GetPayload() == nil {
		return "", fmt.Errorf("secret manager returned empty payload for %s", name)
	}
	return string(resp.GetPayload().GetData()), nil
}

func (f *Fetcher) lookupFallback(ref parsedReference) (string, bool) {
	f.fallbackOnce.Do(func() {
		f.fallbackVals = map[string]string{}
		if f.fallbackPath == "" {
			return
		}
		raw, err := godotenv.Read(f.fallbackPath)
		if err != nil {
			if !errors.Is(err, os.ErrNotExist) {
				f.fallbackErr = fmt.Errorf("secrets: unable to read fallback file %s: %w", f.fallbackPath, err)
			}
			return
		}
		for key, value := range raw {
			f.fallbackVals[strings.TrimSpace(key)] = value
		}
	})
	if f.fallbackErr != nil {
		f.logger.Debug("secrets: fallback load error", zap.Error(f.fallbackErr))
		return "", false
	}
	if value, ok := f.fallbackVals[ref.Secret+"."+ref.Version]; ok {
		return value, true
	}
	value, ok := f.fallbackVals[ref.Secret]
	return value, ok
}

func (f *Fetcher) recordLatency(ctx context.Context, start time.Time, source string) {
	if f.latency == nil {
		return
	}
	elapsed := float64(time.Since(start)) / float64(time.Millisecond)
	f.latency.Record(ctx, elapsed, metric.WithAttributes(attribute.String("source", source)))
}

type parsedReference struct {
	Canonical string
	Secret    string
	Version   string
	Project   string
}

func parseReference(ref string) (parsedReference, error) {
	if strings.TrimSpace(ref) == "" {
		return parsedReference{}, errors.New("secrets: empty reference")
	}
	u, err := url.Parse(strings.TrimSpace(ref))
	if err != nil {
		return parsedReference{}, fmt.Errorf("secrets: invalid reference %q: %w", ref, err)
	}
	if u.Scheme != "secret" {
		return parsedReference{}, fmt.Errorf("secrets: unsupported scheme %q", u.Scheme)
	}
	secret := strings.Trim(u.Host+u.Path, "/")
	if secret == "" {
		return parsedReference{}, fmt.Errorf("secrets: missing secret name in %q", ref)
	}
	query := u.Query()
	version := strings.TrimSpace(query.Get("version"))
	if version == "" {
		version = "latest"
	}
	return parsedReference{
		Canonical: "secret://" + secret,
		Secret:    strings.ReplaceAll(secret, "/", "_"),
		Version:   version,
		Project:   strings.TrimSpace(query.Get("project")),
	}, nil
}

func maskReference(ref string) string {
	h := sha256.Sum256([]byte(ref))
	return hex.EncodeToString(h[:8])
}

func isFallbackError(err error) bool {
	switch status.Code(err) {
	case codes.PermissionDenied, codes.Unauthenticated, codes.Unavailable, codes.DeadlineExceeded, codes.NotFound:
		return true
	default:
		return false
	}
}
