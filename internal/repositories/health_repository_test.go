package repositories

import (
	"context"
	"errors"
	"testing"
	"time"

	domain "github.com/bazzarna/storefront/internal/domain"
)

func TestProbeHealthRepositoryAllHealthy(t *testing.T) {
	now := time.Date(2025, time.March, 1, 12, 0, 0, 0, time.UTC)
	repo, err := NewProbeHealthRepository([]Probe{
		{Name: "postgres", Check: func(context.Context) error { return nil }},
		{Name: "kv", Check: func(context.Context) error { return nil }},
	}, WithProbeClock(func() time.Time { return now }))
	if err != nil {
		t.Fatalf("NewProbeHealthRepository: %v", err)
	}

	report, err := repo.Collect(context.Background())
	if err != nil {
		t.Fatalf("Collect: %v", err)
	}
	if report.Status != domain.HealthStatusOK {
		t.Fatalf("expected ok, got %s", report.Status)
	}
	if len(report.Checks) != 2 || report.Checks["kv"].CheckedAt != now {
		t.Fatalf("unexpected checks %#v", report.Checks)
	}
	if report.GeneratedAt != now {
		t.Fatalf("expected generatedAt %s, got %s", now, report.GeneratedAt)
	}
}

func TestProbeHealthRepositoryDegradedAndTimeout(t *testing.T) {
	repo, err := NewProbeHealthRepository([]Probe{
		{Name: "kv", Check: func(context.Context) error { return errors.New("connection refused") }},
		{Name: "postgres", Check: func(context.Context) error { return nil }},
	})
	if err != nil {
		t.Fatalf("NewProbeHealthRepository: %v", err)
	}
	report, _ := repo.Collect(context.Background())
	if report.Status != domain.HealthStatusDegraded {
		t.Fatalf("expected degraded, got %s", report.Status)
	}
	if report.Checks["kv"].Error != "connection refused" {
		t.Fatalf("expected error detail, got %#v", report.Checks["kv"])
	}

	repo, err = NewProbeHealthRepository([]Probe{
		{Name: "firestore", Timeout: 5 * time.Millisecond, Check: func(ctx context.Context) error {
			<-ctx.Done()
			return ctx.Err()
		}},
	})
	if err != nil {
		t.Fatalf("NewProbeHealthRepository: %v", err)
	}
	report, _ = repo.Collect(context.Background())
	if report.Status != domain.HealthStatusError || report.Checks["firestore"].Detail != "timeout" {
		t.Fatalf("expected timeout error, got %#v", report)
	}
}

func TestNewProbeHealthRepositoryRejectsInvalidProbes(t *testing.T) {
	ok := func(context.Context) error { return nil }
	cases := map[string][]Probe{
		"empty":     nil,
		"no name":   {{Check: ok}},
		"no check":  {{Name: "kv"}},
		"duplicate": {{Name: "kv", Check: ok}, {Name: "kv", Check: ok}},
	}
	for name, probes := range cases {
		if _, err := NewProbeHealthRepository(probes); err == nil {
			t.Fatalf("%s: expected error", name)
		}
	}
}
