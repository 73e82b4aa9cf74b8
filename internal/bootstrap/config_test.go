package bootstrap

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"testing"
	"time"

	"github.com/bazzarna/storefront/internal/platform/config"
	"github.com/bazzarna/storefront/internal/platform/secrets"
)

func TestLoadEnvironment(t *testing.T) {
	dir := t.TempDir()
	env, err := LoadEnvironment(context.Background(), nil, true,
		config.WithEnvFile(filepath.Join(dir, "missing.env")),
		config.WithoutSystemEnv(),
		config.WithEnvMap(map[string]string{
			"API_FIREBASE_PROJECT_ID":  "bazzarna-test",
			"API_CATALOG_BACKEND":      "memory",
			"API_PROFILE_HASH_KEY":     "hash-key",
			"API_SECRET_FALLBACK_FILE": filepath.Join(dir, "secrets.local"),
		}),
	)
	if err != nil {
		t.Fatalf("load environment: %v", err)
	}
	defer env.Close()

	if env.Config.Catalog.Backend != config.CatalogBackendMemory {
		t.Fatalf("expected memory backend, got %s", env.Config.Catalog.Backend)
	}
	if env.Config.Profile.HashKey != "hash-key" {
		t.Fatalf("expected profile hash key to load")
	}
	if env.Values["API_FIREBASE_PROJECT_ID"] != "bazzarna-test" {
		t.Fatalf("expected raw values to be kept")
	}
}

func TestLoadEnvironmentMissingProfileKey(t *testing.T) {
	dir := t.TempDir()
	_, err := LoadEnvironment(context.Background(), nil, true,
		config.WithEnvFile(filepath.Join(dir, "missing.env")),
		config.WithoutSystemEnv(),
		config.WithEnvMap(map[string]string{
			"API_FIREBASE_PROJECT_ID":  "bazzarna-test",
			"API_CATALOG_BACKEND":      "memory",
			"API_SECRET_FALLBACK_FILE": filepath.Join(dir, "secrets.local"),
		}),
	)
	var missing *config.MissingSecretsError
	if !errors.As(err, &missing) {
		t.Fatalf("expected missing secrets error, got %v", err)
	}
}

func TestRequiredSecretNames(t *testing.T) {
	cases := []struct {
		name    string
		env     map[string]string
		profile bool
		want    []string
	}{
		{name: "defaults", env: map[string]string{}, profile: true, want: []string{"Profile.HashKey", "Postgres.DSN"}},
		{name: "memory without profile", env: map[string]string{"API_CATALOG_BACKEND": "memory"}, want: nil},
		{name: "redis", env: map[string]string{"API_CATALOG_BACKEND": "memory", "API_RECENTLY_VIEWED_BACKEND": "Redis"}, want: []string{"Redis.URL"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := requiredSecretNames(tc.env, tc.profile)
			if !reflect.DeepEqual(got, tc.want) {
				t.Fatalf("expected %v, got %v", tc.want, got)
			}
		})
	}
}

func TestBuildInfoDefaults(t *testing.T) {
	started := time.Date(2025, 5, 1, 0, 0, 0, 0, time.UTC)
	info := BuildInfo(map[string]string{"API_BUILD_VERSION": " 2.0.1 "}, config.Config{}, started)

	if info.Version != "2.0.1" || info.CommitSHA != "unknown" || info.Environment != "local" || !info.StartedAt.Equal(started) {
		t.Fatalf("unexpected build info: %+v", info)
	}
}

func TestSecretsProbe(t *testing.T) {
	dir := t.TempDir()
	fallback := filepath.Join(dir, "secrets.local")
	if err := os.WriteFile(fallback, []byte("system_healthz=ok\n"), 0o600); err != nil {
		t.Fatalf("write fallback: %v", err)
	}
	fetcher, err := secrets.NewFetcher(context.Background(), secrets.WithFallbackFile(fallback))
	if err != nil {
		t.Fatalf("fetcher: %v", err)
	}
	defer fetcher.Close()

	probe := SecretsProbe(fetcher)
	if probe.Name != "secretManager" {
		t.Fatalf("unexpected probe name %s", probe.Name)
	}
	if err := probe.Check(context.Background()); err != nil {
		t.Fatalf("expected healthy probe, got %v", err)
	}

	empty, err := secrets.NewFetcher(context.Background(), secrets.WithFallbackFile(filepath.Join(dir, "none")))
	if err != nil {
		t.Fatalf("fetcher: %v", err)
	}
	defer empty.Close()
	if err := SecretsProbe(empty).Check(context.Background()); err != nil {
		t.Fatalf("expected missing health secret to count as reachable, got %v", err)
	}

	if err := SecretsProbe(nil).Check(context.Background()); err == nil {
		t.Fatalf("expected error without fetcher")
	}
}
