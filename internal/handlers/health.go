package handlers

import (
	"net/http"
	"sort"
	"strings"
	"time"

	domain "github.com/bazzarna/storefront/internal/domain"
	"github.com/bazzarna/storefront/internal/platform/httpx"
	"github.com/bazzarna/storefront/internal/services"
)

// HealthHandlers serves liveness and readiness probes.
type HealthHandlers struct {
	system services.SystemService
	build  services.BuildInfo
	clock  func() time.Time
}

// HealthOption customises HealthHandlers.
type HealthOption func(*HealthHandlers)

// WithHealthSystemService injects the dependency-aware health report source used by /readyz.
func WithHealthSystemService(svc services.SystemService) HealthOption {
	return func(h *HealthHandlers) {
		h.system = svc
	}
}

// WithHealthBuildInfo sets the build metadata reported by /healthz.
func WithHealthBuildInfo(info services.BuildInfo) HealthOption {
	return func(h *HealthHandlers) {
		h.build = info
	}
}

// WithHealthClock overrides the clock, mainly for tests.
func WithHealthClock(clock func() time.Time) HealthOption {
	return func(h *HealthHandlers) {
		if clock != nil {
			h.clock = clock
		}
	}
}

// NewHealthHandlers constructs the health endpoints.
func NewHealthHandlers(opts ...HealthOption) *HealthHandlers {
	h := &HealthHandlers{clock: time.Now}
	for _, opt := range opts {
		if opt != nil {
			opt(h)
		}
	}
	if h.build.StartedAt.IsZero() {
		h.build.StartedAt = h.clock()
	}
	return h
}

type healthzResponse struct {
	Status      string `json:"status"`
	Version     string `json:"version,omitempty"`
	CommitSHA   string `json:"commitSha,omitempty"`
	Environment string `json:"environment,omitempty"`
	Uptime      string `json:"uptime"`
	Timestamp   string `json:"timestamp"`
}

type readyzCheck struct {
	Status    string `json:"status"`
	Detail    string `json:"detail,omitempty"`
	Error     string `json:"error,omitempty"`
	LatencyMS int64  `json:"latencyMs"`
	CheckedAt string `json:"checkedAt,omitempty"`
}

type readyzResponse struct {
	Status      string                 `json:"status"`
	Version     string                 `json:"version,omitempty"`
	CommitSHA   string                 `json:"commitSha,omitempty"`
	Environment string                 `json:"environment,omitempty"`
	Uptime      string                 `json:"uptime,omitempty"`
	GeneratedAt string                 `json:"generatedAt"`
	Checks      map[string]readyzCheck `json:"checks"`
	Details     []string               `json:"details,omitempty"`
}

// Healthz reports process liveness. It never touches dependencies.
func (h *HealthHandlers) Healthz(w http.ResponseWriter, r *http.Request) {
	now := h.clock().UTC()
	writeJSON(w, http.StatusOK, healthzResponse{
		Status:      domain.HealthStatusOK,
		Version:     h.build.Version,
		CommitSHA:   h.build.CommitSHA,
		Environment: h.build.Environment,
		Uptime:      now.Sub(h.build.StartedAt).Round(time.Second).String(),
		Timestamp:   now.Format(time.RFC3339),
	})
}

// Readyz runs the dependency probes. Anything other than ok answers 503.
func (h *HealthHandlers) Readyz(w http.ResponseWriter, r *http.Request) {
	if h.system == nil {
		h.Healthz(w, r)
		return
	}

	report, err := h.system.HealthReport(r.Context())
	if err != nil {
		httpx.WriteError(r.Context(), w, httpx.NewError("health_unavailable", err.Error(), http.StatusServiceUnavailable))
		return
	}

	generated := report.GeneratedAt
	if generated.IsZero() {
		generated = h.clock()
	}
	resp := readyzResponse{
		Status:      report.Status,
		Version:     report.Version,
		CommitSHA:   report.CommitSHA,
		Environment: report.Environment,
		GeneratedAt: generated.UTC().Format(time.RFC3339),
		Checks:      make(map[string]readyzCheck, len(report.Checks)),
	}
	if report.Uptime > 0 {
		resp.Uptime = report.Uptime.Round(time.Second).String()
	}

	names := make([]string, 0, len(report.Checks))
	for name := range report.Checks {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		check := report.Checks[name]
		item := readyzCheck{
			Status:    check.Status,
			Detail:    check.Detail,
			Error:     check.Error,
			LatencyMS: check.Latency.Milliseconds(),
		}
		if !check.CheckedAt.IsZero() {
			item.CheckedAt = check.CheckedAt.UTC().Format(time.RFC3339)
		}
		resp.Checks[name] = item
		if check.Status != domain.HealthStatusOK {
			reason := strings.TrimSpace(check.Error)
			if reason == "" {
				reason = strings.TrimSpace(check.Detail)
			}
			if reason == "" {
				reason = check.Status
			}
			resp.Details = append(resp.Details, name+": "+reason)
		}
	}

	status := http.StatusOK
	if report.Status != domain.HealthStatusOK {
		status = http.StatusServiceUnavailable
	}
	w.Header().Set("Cache-Control", "no-store")
	writeJSON(w, status, resp)
}
