package firestore

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/option"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"

	"github.com/bazzarna/storefront/internal/platform/config"
)

const (
	dialTimeout        = 10 * time.Second
	envEmulatorHost    = "FIRESTORE_EMULATOR_HOST"
	envGoogleProjectID = "GOOGLE_CLOUD_PROJECT"
	healthCollection   = "_health"
)

// ErrProviderClosed is returned by Client after Close.
var ErrProviderClosed = errors.New("firestore: provider is closed")

// Provider hands out one Firestore client, dialled on first use. Dial failures are
// returned to the caller and retried on the next call.
type Provider struct {
	projectID  string
	emulator   string
	clientOpts []option.ClientOption

	mu     sync.Mutex
	client *firestore.Client
	closed bool
}

// NewProvider resolves the project and emulator host from cfg, falling back to
// GOOGLE_CLOUD_PROJECT and FIRESTORE_EMULATOR_HOST. clientOpts are applied when dialling.
func NewProvider(cfg config.FirestoreConfig, clientOpts ...option.ClientOption) *Provider {
	return &Provider{
		projectID:  firstSet(cfg.ProjectID, os.Getenv(envGoogleProjectID)),
		emulator:   firstSet(cfg.EmulatorHost, os.Getenv(envEmulatorHost)),
		clientOpts: clientOpts,
	}
}

// Client returns the shared client, dialling it if needed.
func (p *Provider) Client(ctx context.Context) (*firestore.Client, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	switch {
	case p.closed:
		return nil, ErrProviderClosed
	case p.client != nil:
		return p.client, nil
	}
	client, err := p.dial(ctx)
	if err != nil {
		return nil, err
	}
	p.client = client
	return client, nil
}

// Ping reads a document from the health collection. A missing document still proves the
// backend answered.
func (p *Provider) Ping(ctx context.Context) error {
	client, err := p.Client(ctx)
	if err != nil {
		return err
	}
	_, err = client.Collection(healthCollection).Doc("ping").Get(ctx)
	if err = WrapError("ping", err); IsNotFound(err) {
		return nil
	}
	return err
}

// Close releases the client. The provider cannot be reused afterwards.
func (p *Provider) Close() error {
	if p == nil {
		return nil
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return nil
	}
	p.closed = true
	client := p.client
	p.client = nil
	if client == nil {
		return nil
	}
	return client.Close()
}

func (p *Provider) dial(ctx context.Context) (*firestore.Client, error) {
	if p.projectID == "" {
		return nil, errors.New("firestore: project id is required")
	}
	opts := append([]option.ClientOption(nil), p.clientOpts...)
	if p.emulator != "" {
		// The SDK only honours the emulator through the environment.
		if os.Getenv(envEmulatorHost) == "" {
			_ = os.Setenv(envEmulatorHost, p.emulator)
		}
		opts = append(opts,
			option.WithoutAuthentication(),
			option.WithEndpoint(p.emulator),
			option.WithGRPCDialOption(grpc.WithTransportCredentials(insecure.NewCredentials())),
		)
	}

	dialCtx, cancel := context.WithTimeout(ctx, dialTimeout)
	defer cancel()
	client, err := firestore.NewClient(dialCtx, p.projectID, opts...)
	if err != nil {
		return nil, fmt.Errorf("firestore: create client: %w", err)
	}
	return client, nil
}

func firstSet(values ...string) string {
	for _, v := range values {
		if trimmed := strings.TrimSpace(v); trimmed != "" {
			return trimmed
		}
	}
	return ""
}
