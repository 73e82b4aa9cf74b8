package repositories

import (
	"context"
	"errors"
	"testing"
	"time"

	domain "github.com/bazzarna/storefront/internal/domain"
)

type countingCategoryRepo struct {
	calls int
	items []domain.Category
	err   error
}

func (r *countingCategoryRepo) ListAll(context.Context) ([]domain.Category, error) {
	r.calls++
	if r.err != nil {
		return nil, r.err
	}
	return r.items, nil
}

func TestCachedCategoryRepositoryServesWithinTTL(t *testing.T) {
	inner := &countingCategoryRepo{items: []domain.Category{{ID: "c1", Name: "Shoes"}}}
	cache := NewCachedCategoryRepository(inner, time.Minute)
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	cache.now = func() time.Time { return now }

	for i := 0; i < 3; i++ {
		items, err := cache.ListAll(context.Background())
		if err != nil {
			t.Fatalf("ListAll: %v", err)
		}
		if len(items) != 1 || items[0].ID != "c1" {
			t.Fatalf("unexpected items %#v", items)
		}
		items[0].ID = "mutated"
	}
	if inner.calls != 1 {
		t.Fatalf("expected 1 load, got %d", inner.calls)
	}

	now = now.Add(2 * time.Minute)
	if _, err := cache.ListAll(context.Background()); err != nil {
		t.Fatalf("ListAll: %v", err)
	}
	if inner.calls != 2 {
		t.Fatalf("expected reload after expiry, got %d loads", inner.calls)
	}

	cache.Invalidate()
	items, _ := cache.ListAll(context.Background())
	if inner.calls != 3 || items[0].ID != "c1" {
		t.Fatalf("expected reload after invalidate, got %d loads and %#v", inner.calls, items)
	}
}

func TestCachedCategoryRepositoryDoesNotCacheErrors(t *testing.T) {
	inner := &countingCategoryRepo{err: errors.New("down")}
	cache := NewCachedCategoryRepository(inner, 0)

	if _, err := cache.ListAll(context.Background()); err == nil {
		t.Fatalf("expected error")
	}
	inner.err = nil
	inner.items = []domain.Category{{ID: "c1"}}
	items, err := cache.ListAll(context.Background())
	if err != nil || len(items) != 1 {
		t.Fatalf("expected recovery, got %v %#v", err, items)
	}
}
