package services

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	domain "github.com/bazzarna/storefront/internal/domain"
	"github.com/bazzarna/storefront/internal/repositories"
	"github.com/bazzarna/storefront/internal/repositories/memory"
)

type logEntry struct {
	event  string
	fields map[string]any
}

type captureLogger struct {
	mu      sync.Mutex
	entries []logEntry
}

func (c *captureLogger) log(_ context.Context, event string, fields map[string]any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = append(c.entries, logEntry{event: event, fields: fields})
}

func (c *captureLogger) has(event string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, e := range c.entries {
		if e.event == event {
			return true
		}
	}
	return false
}

func product(id, category, brand string, day int) domain.Product {
	return domain.Product{
		ID:         id,
		Name:       "Product " + id,
		CategoryID: category,
		Brand:      brand,
		Price:      decimal.NewFromInt(int64(100 * day)),
		CreatedAt:  time.Date(2025, time.January, day, 0, 0, 0, 0, time.UTC),
	}
}

// recordingProducts wraps the in-memory catalogue and records every typed query.
type recordingProducts struct {
	*memory.Catalog

	mu      sync.Mutex
	queries []repositories.ProductQuery
	failOn  int
	err     error
}

func newRecordingProducts(products ...domain.Product) *recordingProducts {
	return &recordingProducts{Catalog: memory.NewCatalog(products, nil, nil)}
}

func (r *recordingProducts) Query(ctx context.Context, q repositories.ProductQuery) ([]domain.Product, error) {
	r.mu.Lock()
	r.queries = append(r.queries, q)
	n := len(r.queries)
	r.mu.Unlock()
	if r.err != nil && n >= r.failOn {
		return nil, r.err
	}
	return r.Catalog.Query(ctx, q)
}

func (r *recordingProducts) queryCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.queries)
}

func productIDs(products []domain.Product) []string {
	out := make([]string, len(products))
	for i, p := range products {
		out[i] = p.ID
	}
	return out
}

func equalStrings(t *testing.T, got, want []string) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("expected %v, got %v", want, got)
		}
	}
}
