package handlers

import (
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/bazzarna/storefront/internal/platform/httpx"
)

// RouteRegistrar registers a set of routes against the provided router.
type RouteRegistrar func(r chi.Router)

// routeGroup is one mounted sub-tree under the API prefix.
type routeGroup struct {
	registrars  []RouteRegistrar
	middlewares []func(http.Handler) http.Handler
}

type routerConfig struct {
	basePath    string
	middlewares []func(http.Handler) http.Handler
	health      *HealthHandlers
	public      routeGroup
	admin       routeGroup
}

// Option customises the router configuration before construction.
type Option func(*routerConfig)

const (
	defaultAPIPrefix  = "/api/v1"
	defaultTimeout    = 60 * time.Second
	errorNotFoundCode = "route_not_found"
)

// NewRouter builds the storefront router: health probes at the root, then /public (browser
// profile scoped) and /admin (operator scoped) under the API prefix. A group without
// registrars answers 501.
func NewRouter(opts ...Option) chi.Router {
	cfg := routerConfig{
		basePath: defaultAPIPrefix,
		middlewares: []func(http.Handler) http.Handler{
			middleware.RequestID,
			middleware.RealIP,
			middleware.CleanPath,
			middleware.Timeout(defaultTimeout),
		},
	}
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}
	if cfg.health == nil {
		cfg.health = NewHealthHandlers()
	}

	r := chi.NewRouter()
	for _, mw := range cfg.middlewares {
		if mw != nil {
			r.Use(mw)
		}
	}
	r.NotFound(func(w http.ResponseWriter, req *http.Request) {
		httpx.WriteError(req.Context(), w, httpx.NewError(errorNotFoundCode, fmt.Sprintf("no route for %s", req.URL.Path), http.StatusNotFound))
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, req *http.Request) {
		httpx.WriteError(req.Context(), w, httpx.NewError("method_not_allowed", fmt.Sprintf("method %s not allowed on %s", req.Method, req.URL.Path), http.StatusMethodNotAllowed))
	})

	r.Get("/healthz", cfg.health.Healthz)
	r.Get("/readyz", cfg.health.Readyz)

	r.Route(cfg.basePath, func(api chi.Router) {
		api.Route("/public", cfg.public.mount("public"))
		api.Route("/admin", cfg.admin.mount("admin"))
	})
	return r
}

func (g routeGroup) mount(name string) func(chi.Router) {
	return func(r chi.Router) {
		for _, mw := range g.middlewares {
			if mw != nil {
				r.Use(mw)
			}
		}
		registered := 0
		for _, reg := range g.registrars {
			if reg != nil {
				reg(r)
				registered++
			}
		}
		if registered == 0 {
			registerNotImplemented(r, name)
		}
	}
}

// WithBasePath overrides the /api/v1 prefix.
func WithBasePath(path string) Option {
	return func(cfg *routerConfig) {
		if path != "" {
			cfg.basePath = path
		}
	}
}

// WithMiddlewares appends global middleware after RequestID, RealIP, CleanPath and Timeout.
func WithMiddlewares(mw ...func(http.Handler) http.Handler) Option {
	return func(cfg *routerConfig) {
		cfg.middlewares = append(cfg.middlewares, mw...)
	}
}

// WithHealthHandlers overrides the handlers used for /healthz and /readyz endpoints.
func WithHealthHandlers(h *HealthHandlers) Option {
	return func(cfg *routerConfig) {
		cfg.health = h
	}
}

// WithPublicRoutes adds storefront registrars to the /public group.
func WithPublicRoutes(regs ...RouteRegistrar) Option {
	return func(cfg *routerConfig) {
		cfg.public.registrars = append(cfg.public.registrars, regs...)
	}
}

// WithPublicMiddlewares adds middleware to the /public group, typically the profile cookie.
func WithPublicMiddlewares(mw ...func(http.Handler) http.Handler) Option {
	return func(cfg *routerConfig) {
		cfg.public.middlewares = append(cfg.public.middlewares, mw...)
	}
}

// WithAdminRoutes adds registrars to the /admin group.
func WithAdminRoutes(regs ...RouteRegistrar) Option {
	return func(cfg *routerConfig) {
		cfg.admin.registrars = append(cfg.admin.registrars, regs...)
	}
}

// WithAdminMiddlewares adds middleware to the /admin group, typically RequireFirebaseAuth.
func WithAdminMiddlewares(mw ...func(http.Handler) http.Handler) Option {
	return func(cfg *routerConfig) {
		cfg.admin.middlewares = append(cfg.admin.middlewares, mw...)
	}
}

func registerNotImplemented(r chi.Router, name string) {
	handler := func(w http.ResponseWriter, req *http.Request) {
		httpx.WriteError(req.Context(), w, httpx.NewError("not_implemented", fmt.Sprintf("%s routes not implemented", name), http.StatusNotImplemented))
	}
	r.HandleFunc("/*", handler)
	r.HandleFunc("/", handler)
}
