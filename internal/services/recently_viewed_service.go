package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"

	"github.com/bazzarna/storefront/internal/platform/kvstore"
	"github.com/bazzarna/storefront/internal/repositories"
)

const (
	// DefaultRecentlyViewedFetchLimit is how many ids Products resolves.
	DefaultRecentlyViewedFetchLimit = 8
	// DefaultRecentlyViewedSessionTTL is how long an idle profile's list stays in memory.
	DefaultRecentlyViewedSessionTTL = 30 * time.Minute
	// DefaultRecentlyViewedMaxSessions bounds the number of profiles held in memory.
	DefaultRecentlyViewedMaxSessions = 10000
)

// ErrProfileRequired is returned when a per-profile operation has no profile id.
var ErrProfileRequired = errors.New("recently viewed service: profile id is required")

// RecentlyViewedServiceDeps wires the recently viewed service.
type RecentlyViewedServiceDeps struct {
	Store      kvstore.Store
	Products   repositories.ProductRepository
	MaxItems   int
	FetchLimit int
	// SessionTTL and MaxSessions bound the in-memory lists. An evicted profile is read from
	// Store again on its next request.
	SessionTTL  time.Duration
	MaxSessions int
	Logger      func(ctx context.Context, event string, fields map[string]any)
}

type recentlyViewedService struct {
	store      kvstore.Store
	products   repositories.ProductRepository
	maxItems   int
	fetchLimit int
	logger     Logger
	locks      *keyedMutex
	sessions   *expirable.LRU[string, *RecentlyViewed]
}

var _ RecentlyViewedService = (*recentlyViewedService)(nil)

// NewRecentlyViewedService constructs the service. Every profile gets its own key scope in Store.
func NewRecentlyViewedService(deps RecentlyViewedServiceDeps) (RecentlyViewedService, error) {
	if deps.Store == nil {
		return nil, errors.New("recently viewed service: store is required")
	}
	if deps.Products == nil {
		return nil, errors.New("recently viewed service: product repository is required")
	}
	maxItems := deps.MaxItems
	if maxItems <= 0 {
		maxItems = MaxRecentlyViewed
	}
	fetchLimit := deps.FetchLimit
	if fetchLimit <= 0 {
		fetchLimit = DefaultRecentlyViewedFetchLimit
	}
	ttl := deps.SessionTTL
	if ttl <= 0 {
		ttl = DefaultRecentlyViewedSessionTTL
	}
	maxSessions := deps.MaxSessions
	if maxSessions <= 0 {
		maxSessions = DefaultRecentlyViewedMaxSessions
	}
	logger := Logger(deps.Logger)
	if logger == nil {
		logger = nopLogger
	}
	return &recentlyViewedService{
		store:      deps.Store,
		products:   deps.Products,
		maxItems:   maxItems,
		fetchLimit: fetchLimit,
		logger:     logger,
		locks:      newKeyedMutex(),
		sessions:   expirable.NewLRU[string, *RecentlyViewed](maxSessions, nil, ttl),
	}, nil
}

// Open returns the profile's list, reading it from storage only the first time the profile
// is seen (or after its session expired). Later calls share the same in-memory list.
func (s *recentlyViewedService) Open(ctx context.Context, profileID string) (*RecentlyViewed, error) {
	profileID = strings.TrimSpace(profileID)
	if profileID == "" {
		return nil, ErrProfileRequired
	}
	unlock := s.locks.Lock(profileID)
	defer unlock()
	return s.session(ctx, profileID), nil
}

// session must be called with the profile lock held.
func (s *recentlyViewedService) session(ctx context.Context, profileID string) *RecentlyViewed {
	if list, ok := s.sessions.Get(profileID); ok {
		return list
	}
	list := LoadRecentlyViewed(ctx, kvstore.Scoped(s.store, profileID), RecentlyViewedOptions{
		MaxItems: s.maxItems,
		Logger:   s.logger,
	})
	s.sessions.Add(profileID, list)
	return list
}

func (s *recentlyViewedService) Record(ctx context.Context, profileID, productID string) ([]string, error) {
	productID = strings.TrimSpace(productID)
	if productID == "" {
		return nil, errors.New("recently viewed service: product id is required")
	}
	var out []string
	err := s.withList(ctx, profileID, func(list *RecentlyViewed) {
		out = list.RecordView(ctx, productID)
	})
	return out, err
}

func (s *recentlyViewedService) Clear(ctx context.Context, profileID string) error {
	return s.withList(ctx, profileID, func(list *RecentlyViewed) {
		list.Clear(ctx)
	})
}

func (s *recentlyViewedService) List(ctx context.Context, profileID string) ([]string, error) {
	var out []string
	err := s.withList(ctx, profileID, func(list *RecentlyViewed) {
		out = list.Current()
	})
	return out, err
}

// Products resolves the first FetchLimit ids, keeps recency order and drops ids the catalogue
// no longer has. A catalogue failure is logged and yields an empty list.
func (s *recentlyViewedService) Products(ctx context.Context, profileID string) ([]Product, error) {
	ids, err := s.List(ctx, profileID)
	if err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return []Product{}, nil
	}
	if len(ids) > s.fetchLimit {
		ids = ids[:s.fetchLimit]
	}

	found, err := s.products.FindByIDs(ctx, ids)
	if err != nil {
		s.logger(ctx, "recently_viewed.fetch_failed", map[string]any{"error": err, "count": len(ids)})
		return []Product{}, nil
	}
	byID := make(map[string]Product, len(found))
	for _, p := range found {
		byID[p.ID] = p
	}
	ordered := make([]Product, 0, len(ids))
	for _, id := range ids {
		if p, ok := byID[id]; ok {
			ordered = append(ordered, p)
		}
	}
	return ordered, nil
}

func (s *recentlyViewedService) withList(ctx context.Context, profileID string, fn func(*RecentlyViewed)) error {
	profileID = strings.TrimSpace(profileID)
	if profileID == "" {
		return ErrProfileRequired
	}
	unlock := s.locks.Lock(profileID)
	defer unlock()
	fn(s.session(ctx, profileID))
	return nil
}
