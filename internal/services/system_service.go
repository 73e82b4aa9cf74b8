package services

import (
	"context"
	"errors"
	"strings"
	"time"

	domain "github.com/bazzarna/storefront/internal/domain"
	"github.com/bazzarna/storefront/internal/repositories"
)

// BuildInfo is the deployment metadata reported by /readyz.
type BuildInfo struct {
	Version     string
	CommitSHA   string
	Environment string
	StartedAt   time.Time
}

// SystemServiceDeps bundles collaborators required to construct a system service.
type SystemServiceDeps struct {
	HealthRepository repositories.HealthRepository
	Clock            func() time.Time
	Build            BuildInfo
}

type systemService struct {
	probes repositories.HealthRepository
	now    func() time.Time
	build  BuildInfo
}

var _ SystemService = (*systemService)(nil)

// statusRank orders health states so the report takes the worst check.
var statusRank = map[string]int{
	domain.HealthStatusOK:       0,
	domain.HealthStatusDegraded: 1,
	domain.HealthStatusError:    2,
}

// NewSystemService returns a service that runs the dependency probes and stamps the
// result with build metadata and uptime.
func NewSystemService(deps SystemServiceDeps) (SystemService, error) {
	if deps.HealthRepository == nil {
		return nil, errors.New("system service: health repository is required")
	}
	clock := deps.Clock
	if clock == nil {
		clock = time.Now
	}
	svc := &systemService{
		probes: deps.HealthRepository,
		now:    func() time.Time { return clock().UTC() },
		build:  deps.Build,
	}
	if svc.build.StartedAt.IsZero() {
		svc.build.StartedAt = svc.now()
	}
	return svc, nil
}

func (s *systemService) HealthReport(ctx context.Context) (SystemHealthReport, error) {
	report, err := s.probes.Collect(ctx)
	if err != nil {
		return SystemHealthReport{}, err
	}

	now := s.now()
	if report.GeneratedAt.IsZero() {
		report.GeneratedAt = now
	} else {
		report.GeneratedAt = report.GeneratedAt.UTC()
	}
	if report.Uptime <= 0 {
		report.Uptime = now.Sub(s.build.StartedAt)
	}
	fillBlank(&report.Version, s.build.Version)
	fillBlank(&report.CommitSHA, s.build.CommitSHA)
	fillBlank(&report.Environment, s.build.Environment)

	if report.Checks == nil {
		report.Checks = map[string]domain.SystemHealthCheck{}
	}
	if strings.TrimSpace(report.Status) == "" {
		report.Status = worstStatus(report.Checks)
	}
	return report, nil
}

func worstStatus(checks map[string]domain.SystemHealthCheck) string {
	worst := domain.HealthStatusOK
	for _, check := range checks {
		if statusRank[check.Status] > statusRank[worst] {
			worst = check.Status
		}
	}
	return worst
}

func fillBlank(dst *string, fallback string) {
	if strings.TrimSpace(*dst) == "" {
		*dst = fallback
	}
}
