package repositories

import (
	"context"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	domain "github.com/bazzarna/storefront/internal/domain"
)

// DefaultCategoryCacheTTL is how long a category forest is served from memory.
const DefaultCategoryCacheTTL = 10 * time.Minute

// CachedCategoryRepository memoises ListAll for a fixed TTL. Concurrent misses share one load.
type CachedCategoryRepository struct {
	next CategoryRepository
	ttl  time.Duration
	now  func() time.Time

	group singleflight.Group

	mu      sync.RWMutex
	items   []domain.Category
	expires time.Time
}

var _ CategoryRepository = (*CachedCategoryRepository)(nil)

// NewCachedCategoryRepository wraps next. A non-positive ttl uses DefaultCategoryCacheTTL.
func NewCachedCategoryRepository(next CategoryRepository, ttl time.Duration) *CachedCategoryRepository {
	if ttl <= 0 {
		ttl = DefaultCategoryCacheTTL
	}
	return &CachedCategoryRepository{next: next, ttl: ttl, now: time.Now}
}

// ListAll returns a copy of the cached forest, loading it when absent or expired.
// Errors are not cached.
func (c *CachedCategoryRepository) ListAll(ctx context.Context) ([]domain.Category, error) {
	c.mu.RLock()
	if c.items != nil && c.now().Before(c.expires) {
		out := cloneCategories(c.items)
		c.mu.RUnlock()
		return out, nil
	}
	c.mu.RUnlock()

	v, err, _ := c.group.Do("categories", func() (any, error) {
		items, err := c.next.ListAll(ctx)
		if err != nil {
			return nil, err
		}
		if items == nil {
			items = []domain.Category{}
		}
		c.mu.Lock()
		c.items = items
		c.expires = c.now().Add(c.ttl)
		c.mu.Unlock()
		return items, nil
	})
	if err != nil {
		return nil, err
	}
	return cloneCategories(v.([]domain.Category)), nil
}

// Invalidate drops the cached forest.
func (c *CachedCategoryRepository) Invalidate() {
	c.mu.Lock()
	c.items = nil
	c.expires = time.Time{}
	c.mu.Unlock()
}

func cloneCategories(in []domain.Category) []domain.Category {
	out := make([]domain.Category, len(in))
	copy(out, in)
	return out
}
