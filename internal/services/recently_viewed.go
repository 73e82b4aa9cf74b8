package services

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/bazzarna/storefront/internal/platform/kvstore"
)

const (
	// RecentlyViewedKey is the storage key of the persisted list inside a profile scope.
	RecentlyViewedKey = "bazar_recently_viewed"
	// MaxRecentlyViewed bounds the list length.
	MaxRecentlyViewed = 12
)

// RecentlyViewed is a bounded, deduplicated, most-recent-first list of product ids persisted
// through a KV store. Storage failures are logged and never surface to callers; the in-memory
// list stays authoritative for the lifetime of the value.
type RecentlyViewed struct {
	store  kvstore.Store
	key    string
	max    int
	logger Logger

	mu    sync.Mutex
	items []string
}

// RecentlyViewedOptions customises LoadRecentlyViewed. Zero values select the defaults.
type RecentlyViewedOptions struct {
	Key      string
	MaxItems int
	Logger   Logger
}

// LoadRecentlyViewed reads the persisted list once. Absent, unreadable or corrupt data yields
// an empty list.
func LoadRecentlyViewed(ctx context.Context, store kvstore.Store, opts RecentlyViewedOptions) *RecentlyViewed {
	r := &RecentlyViewed{
		store:  store,
		key:    opts.Key,
		max:    opts.MaxItems,
		logger: opts.Logger,
	}
	if r.key == "" {
		r.key = RecentlyViewedKey
	}
	if r.max <= 0 {
		r.max = MaxRecentlyViewed
	}
	if r.logger == nil {
		r.logger = nopLogger
	}
	r.items = r.load(ctx)
	return r
}

func (r *RecentlyViewed) load(ctx context.Context) []string {
	if r.store == nil {
		return []string{}
	}
	raw, ok, err := r.store.Get(ctx, r.key)
	if err != nil {
		r.logger(ctx, "recently_viewed.load_failed", map[string]any{"error": err})
		return []string{}
	}
	if !ok || raw == "" {
		return []string{}
	}
	var stored []string
	if err := json.Unmarshal([]byte(raw), &stored); err != nil {
		r.logger(ctx, "recently_viewed.corrupt_error", map[string]any{"error": err})
		return []string{}
	}
	return normalise(stored, r.max)
}

// RecordView moves id to the front, truncates to the bound and persists. Blank ids are ignored.
// It returns the resulting list.
func (r *RecentlyViewed) RecordView(ctx context.Context, id string) []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	if id == "" {
		return append([]string(nil), r.items...)
	}

	updated := make([]string, 0, len(r.items)+1)
	updated = append(updated, id)
	for _, existing := range r.items {
		if existing != id {
			updated = append(updated, existing)
		}
	}
	if len(updated) > r.max {
		updated = updated[:r.max]
	}
	r.items = updated
	r.persist(ctx)
	return append([]string(nil), r.items...)
}

// Clear empties the list and removes the persisted entry.
func (r *RecentlyViewed) Clear(ctx context.Context) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.items = []string{}
	if r.store == nil {
		return
	}
	if err := r.store.Remove(ctx, r.key); err != nil {
		r.logger(ctx, "recently_viewed.remove_failed", map[string]any{"error": err})
	}
}

// Current returns a copy of the list, most recent first.
func (r *RecentlyViewed) Current() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string{}, r.items...)
}

// persist must be called with mu held.
func (r *RecentlyViewed) persist(ctx context.Context) {
	if r.store == nil {
		return
	}
	payload, err := json.Marshal(r.items)
	if err != nil {
		r.logger(ctx, "recently_viewed.encode_failed", map[string]any{"error": err})
		return
	}
	if err := r.store.Set(ctx, r.key, string(payload)); err != nil {
		r.logger(ctx, "recently_viewed.save_failed", map[string]any{"error": err})
	}
}

// normalise drops blanks and duplicates keeping first occurrence, then truncates.
func normalise(ids []string, max int) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if id == "" {
			continue
		}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
		if len(out) == max {
			break
		}
	}
	return out
}
