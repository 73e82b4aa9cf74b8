package repositories

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	domain "github.com/bazzarna/storefront/internal/domain"
)

const defaultProbeTimeout = 1500 * time.Millisecond

// Probe is a named readiness check.
type Probe struct {
	Name    string
	Timeout time.Duration
	Check   func(context.Context) error
}

// ProbeOption customises the probe-backed health repository.
type ProbeOption func(*probeHealthRepository)

// WithProbeTimeout sets the timeout used by probes that do not carry their own.
func WithProbeTimeout(timeout time.Duration) ProbeOption {
	return func(repo *probeHealthRepository) {
		if timeout > 0 {
			repo.defaultTimeout = timeout
		}
	}
}

// WithProbeClock injects a clock for tests.
func WithProbeClock(clock func() time.Time) ProbeOption {
	return func(repo *probeHealthRepository) {
		if clock != nil {
			repo.now = clock
		}
	}
}

type probeHealthRepository struct {
	probes         []Probe
	defaultTimeout time.Duration
	now            func() time.Time
}

var _ HealthRepository = (*probeHealthRepository)(nil)

// NewProbeHealthRepository validates probes up front and returns a HealthRepository running them in parallel.
func NewProbeHealthRepository(probes []Probe, opts ...ProbeOption) (HealthRepository, error) {
	if len(probes) == 0 {
		return nil, errors.New("health repository: at least one probe is required")
	}
	seen := make(map[string]struct{}, len(probes))
	for i, p := range probes {
		name := strings.TrimSpace(p.Name)
		if name == "" {
			return nil, fmt.Errorf("health repository: probe %d has no name", i)
		}
		if p.Check == nil {
			return nil, fmt.Errorf("health repository: probe %s has no check", name)
		}
		if _, dup := seen[name]; dup {
			return nil, fmt.Errorf("health repository: duplicate probe %s", name)
		}
		seen[name] = struct{}{}
	}

	repo := &probeHealthRepository{
		probes:         append([]Probe(nil), probes...),
		defaultTimeout: defaultProbeTimeout,
		now:            time.Now,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(repo)
		}
	}
	return repo, nil
}

func (r *probeHealthRepository) Collect(ctx context.Context) (domain.SystemHealthReport, error) {
	if ctx == nil {
		return domain.SystemHealthReport{}, errors.New("health repository: context is required")
	}

	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		results = make(map[string]domain.SystemHealthCheck, len(r.probes))
	)
	for _, probe := range r.probes {
		wg.Add(1)
		go func(p Probe) {
			defer wg.Done()
			result := r.run(ctx, p)
			mu.Lock()
			results[p.Name] = result
			mu.Unlock()
		}(probe)
	}
	wg.Wait()

	return domain.SystemHealthReport{
		Status:      overallStatus(results),
		Checks:      results,
		GeneratedAt: r.now(),
	}, nil
}

func (r *probeHealthRepository) run(ctx context.Context, p Probe) domain.SystemHealthCheck {
	timeout := p.Timeout
	if timeout <= 0 {
		timeout = r.defaultTimeout
	}
	probeCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	start := r.now()
	err := p.Check(probeCtx)
	end := r.now()
	if err == nil {
		err = probeCtx.Err()
	}

	check := domain.SystemHealthCheck{
		Status:    domain.HealthStatusOK,
		Detail:    "ok",
		Latency:   end.Sub(start),
		CheckedAt: end,
	}
	switch {
	case err == nil:
	case errors.Is(err, context.DeadlineExceeded):
		check.Status, check.Detail, check.Error = domain.HealthStatusError, "timeout", err.Error()
	case errors.Is(err, context.Canceled):
		check.Status, check.Detail, check.Error = domain.HealthStatusError, "cancelled", err.Error()
	default:
		check.Status, check.Detail, check.Error = domain.HealthStatusDegraded, "unavailable", err.Error()
	}
	return check
}

func overallStatus(results map[string]domain.SystemHealthCheck) string {
	status := domain.HealthStatusOK
	for _, r := range results {
		switch r.Status {
		case domain.HealthStatusError:
			return domain.HealthStatusError
		case domain.HealthStatusDegraded:
			status = domain.HealthStatusDegraded
		}
	}
	return status
}
