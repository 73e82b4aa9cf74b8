package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/bazzarna/storefront/internal/platform/kvstore"
	"github.com/bazzarna/storefront/internal/platform/requestctx"
	"github.com/bazzarna/storefront/internal/repositories/memory"
	"github.com/bazzarna/storefront/internal/services"
)

type storefrontFixture struct {
	catalog *memory.Catalog
	svc     services.CatalogService
	recent  services.RecentlyViewedService
	similar *services.SimilarTracker
	kv      *kvstore.Memory
}

func newStorefrontFixture(t *testing.T) *storefrontFixture {
	t.Helper()
	catalog, err := memory.LoadSeedFile(filepath.Join("..", "repositories", "memory", "testdata", "catalog.json"))
	if err != nil {
		t.Fatalf("load seed: %v", err)
	}
	svc, err := services.NewCatalogService(services.CatalogServiceDeps{
		Products:   catalog,
		Categories: catalog,
	})
	if err != nil {
		t.Fatalf("catalog service: %v", err)
	}
	kv := kvstore.NewMemory()
	recent, err := services.NewRecentlyViewedService(services.RecentlyViewedServiceDeps{
		Store:    kv,
		Products: catalog,
	})
	if err != nil {
		t.Fatalf("recently viewed service: %v", err)
	}
	resolver, err := services.NewSimilarResolver(catalog, nil)
	if err != nil {
		t.Fatalf("similar resolver: %v", err)
	}
	return &storefrontFixture{
		catalog: catalog,
		svc:     svc,
		recent:  recent,
		similar: services.NewSimilarTracker(resolver),
		kv:      kv,
	}
}

func (f *storefrontFixture) publicRouter() http.Handler {
	public := NewPublicHandlers(
		WithPublicCatalogService(f.svc),
		WithPublicRecentlyViewed(f.recent),
		WithPublicSimilarTracker(f.similar),
	)
	recent := NewRecentlyViewedHandlers(WithRecentlyViewedService(f.recent))
	return NewRouter(WithPublicRoutes(func(r chi.Router) {
		public.Routes(r)
		recent.Routes(r)
	}))
}

func withProfile(req *http.Request, profileID string) *http.Request {
	return req.WithContext(requestctx.WithProfileID(req.Context(), profileID))
}

func withLocale(req *http.Request, locale string) *http.Request {
	return req.WithContext(requestctx.WithLocale(req.Context(), locale))
}

func withURLParam(req *http.Request, key, value string) *http.Request {
	routeCtx := chi.NewRouteContext()
	routeCtx.URLParams.Add(key, value)
	return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, routeCtx))
}

func decodeJSON(t *testing.T, rr *httptest.ResponseRecorder, dst any) {
	t.Helper()
	if err := json.Unmarshal(rr.Body.Bytes(), dst); err != nil {
		t.Fatalf("failed to decode response %q: %v", rr.Body.String(), err)
	}
}

type errorBody struct {
	Error     string `json:"error"`
	Message   string `json:"message"`
	Status    int    `json:"status"`
	Reason    string `json:"reason"`
	RequestID string `json:"request_id"`
}
