package services

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/oklog/ulid/v2"

	"github.com/bazzarna/storefront/internal/repositories"
)

// DefaultSimilarLimit is the number of similar products returned when the caller gives none.
const DefaultSimilarLimit = 4

// ErrSimilarSuperseded is returned when a newer request for the same scope started before
// this one finished. Its result has been discarded.
var ErrSimilarSuperseded = errors.New("similar products: request superseded")

// SimilarRequest identifies the product whose neighbours are wanted.
type SimilarRequest struct {
	ProductID  string
	CategoryID string
	Brand      string
	Limit      int
}

// SimilarResolver ranks related products with a tiered fallback:
// brand and category, then category, then brand, then newest catalogue-wide.
type SimilarResolver struct {
	products repositories.ProductRepository
	logger   Logger
}

// NewSimilarResolver constructs a resolver over the product repository.
func NewSimilarResolver(products repositories.ProductRepository, logger func(ctx context.Context, event string, fields map[string]any)) (*SimilarResolver, error) {
	if products == nil {
		return nil, errors.New("similar resolver: product repository is required")
	}
	if logger == nil {
		logger = nopLogger
	}
	return &SimilarResolver{products: products, logger: logger}, nil
}

// Resolve returns up to Limit products excluding ProductID. Each tier issues its own query.
// The category tier and the brand tier stop on any non-empty result even below Limit.
// A query error aborts resolution and yields an empty slice.
func (r *SimilarResolver) Resolve(ctx context.Context, req SimilarRequest) []Product {
	limit := req.Limit
	if limit <= 0 {
		limit = DefaultSimilarLimit
	}
	category := strings.TrimSpace(req.CategoryID)
	brand := strings.TrimSpace(req.Brand)
	base := repositories.NewProductQuery().Not(repositories.FieldID, req.ProductID).WithLimit(limit)

	if brand != "" && category != "" {
		found, err := r.query(ctx, "brand_category", base.Where(repositories.FieldBrand, brand).Where(repositories.FieldCategoryID, category))
		if err != nil {
			return []Product{}
		}
		if len(found) >= limit {
			return found[:limit]
		}
	}
	if category != "" {
		found, err := r.query(ctx, "category", base.Where(repositories.FieldCategoryID, category))
		if err != nil {
			return []Product{}
		}
		if len(found) > 0 {
			return truncate(found, limit)
		}
	}
	if brand != "" {
		found, err := r.query(ctx, "brand", base.Where(repositories.FieldBrand, brand))
		if err != nil {
			return []Product{}
		}
		if len(found) > 0 {
			return truncate(found, limit)
		}
	}
	found, err := r.query(ctx, "newest", base.NewestFirst())
	if err != nil {
		return []Product{}
	}
	return truncate(found, limit)
}

func (r *SimilarResolver) query(ctx context.Context, tier string, q repositories.ProductQuery) ([]Product, error) {
	found, err := r.products.Query(ctx, q)
	if err != nil {
		r.logger(ctx, "similar.query_failed", map[string]any{"tier": tier, "query": q.String(), "error": err})
		return nil, err
	}
	return found, nil
}

func truncate(products []Product, limit int) []Product {
	if len(products) > limit {
		return products[:limit]
	}
	return products
}

// SimilarResult is a resolved, still-current similar products response.
type SimilarResult struct {
	Products   []Product
	RequestID  string
	Generation uint64
}

// SimilarTracker tags every request with a generation per scope. Starting a request cancels the
// scope's in-flight one; a finished request whose generation is no longer current is discarded.
type SimilarTracker struct {
	resolver *SimilarResolver
	logger   Logger

	mu      sync.Mutex
	counter uint64
	scopes  map[string]*similarFlight
}

type similarFlight struct {
	generation uint64
	requestID  string
	cancel     context.CancelFunc
}

// NewSimilarTracker wraps resolver.
func NewSimilarTracker(resolver *SimilarResolver) *SimilarTracker {
	return &SimilarTracker{
		resolver: resolver,
		logger:   resolver.logger,
		scopes:   make(map[string]*similarFlight),
	}
}

// Resolve runs req for scope. It returns ErrSimilarSuperseded when another Resolve for the same
// scope started meanwhile.
func (t *SimilarTracker) Resolve(ctx context.Context, scope string, req SimilarRequest) (SimilarResult, error) {
	flightCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	t.mu.Lock()
	if prev, ok := t.scopes[scope]; ok {
		prev.cancel()
	}
	t.counter++
	flight := &similarFlight{
		generation: t.counter,
		requestID:  ulid.Make().String(),
		cancel:     cancel,
	}
	t.scopes[scope] = flight
	t.mu.Unlock()

	products := t.resolver.Resolve(flightCtx, req)

	t.mu.Lock()
	current, ok := t.scopes[scope]
	if !ok || current.generation != flight.generation {
		t.mu.Unlock()
		t.logger(ctx, "similar.superseded", map[string]any{
			"requestId":  flight.requestID,
			"generation": flight.generation,
			"productId":  req.ProductID,
		})
		return SimilarResult{}, ErrSimilarSuperseded
	}
	delete(t.scopes, scope)
	t.mu.Unlock()

	return SimilarResult{
		Products:   products,
		RequestID:  flight.requestID,
		Generation: flight.generation,
	}, nil
}

// InFlight reports the number of scopes with a running request.
func (t *SimilarTracker) InFlight() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.scopes)
}
