package config

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadWithDefaults(t *testing.T) {
	env := map[string]string{
		"API_FIREBASE_PROJECT_ID": "bz-dev",
		"API_CATALOG_BACKEND":     "memory",
	}

	cfg, err := Load(context.Background(), WithEnvMap(env), WithoutSystemEnv(), WithEnvFile(""))
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}

	if cfg.Server.Port != "8080" {
		t.Errorf("expected default port 8080, got %s", cfg.Server.Port)
	}
	if cfg.Server.ReadTimeout != 15*time.Second {
		t.Errorf("unexpected read timeout: %s", cfg.Server.ReadTimeout)
	}
	if cfg.Firestore.ProjectID != "bz-dev" {
		t.Errorf("expected firestore project to default to firebase project, got %s", cfg.Firestore.ProjectID)
	}
	if cfg.Catalog.CategoryCacheTTL != 10*time.Minute {
		t.Errorf("unexpected category cache ttl: %s", cfg.Catalog.CategoryCacheTTL)
	}
	if cfg.Catalog.DefaultPageSize != 12 {
		t.Errorf("unexpected page size: %d", cfg.Catalog.DefaultPageSize)
	}
	if cfg.RecentlyViewed.Backend != KVBackendMemory {
		t.Errorf("expected memory recently viewed backend, got %s", cfg.RecentlyViewed.Backend)
	}
	if cfg.RecentlyViewed.MaxItems != 12 || cfg.RecentlyViewed.FetchLimit != 8 {
		t.Errorf("unexpected recently viewed limits: %+v", cfg.RecentlyViewed)
	}
	if cfg.RecentlyViewed.SessionTTL != 30*time.Minute || cfg.RecentlyViewed.MaxSessions != 10000 {
		t.Errorf("unexpected recently viewed session bounds: %+v", cfg.RecentlyViewed)
	}
	if cfg.Profile.CookieName != "bz_profile" {
		t.Errorf("unexpected profile cookie %s", cfg.Profile.CookieName)
	}
	if cfg.Locale.Default != "ar" || len(cfg.Locale.Supported) != 2 {
		t.Errorf("unexpected locale config %+v", cfg.Locale)
	}
	if cfg.Events.Enabled {
		t.Errorf("expected events disabled by default")
	}
	if cfg.Security.Environment != "local" {
		t.Errorf("expected default security environment local, got %s", cfg.Security.Environment)
	}
}

func TestLoadWithOverridesAndSecrets(t *testing.T) {
	env := map[string]string{
		"API_SERVER_PORT":                "9090",
		"API_SERVER_IDLE_TIMEOUT":        "2m",
		"API_FIREBASE_PROJECT_ID":        "bz-prod",
		"API_CATALOG_BACKEND":            "postgres",
		"API_POSTGRES_DSN":               "secret://catalog/dsn",
		"API_POSTGRES_MAX_CONNS":         "25",
		"API_CATALOG_CATEGORY_CACHE_TTL": "1m",
		"API_RECENTLY_VIEWED_BACKEND":    "redis",
		"API_REDIS_URL":                  "sm://cache/url",
		"API_RECENTLY_VIEWED_MAX_ITEMS":  "20",
		"API_PROFILE_HASH_KEY":           "secret://profile/hash",
		"API_PROFILE_COOKIE_SECURE":      "false",
		"API_LOCALE_SUPPORTED":           "ar, EN, fr",
		"API_EVENTS_ENABLED":             "true",
		"API_EVENTS_STORE_TOPIC":         "stores",
		"API_SECURITY_ENVIRONMENT":       "prod",
	}

	secrets := map[string]string{
		"secret://catalog/dsn":  "postgres://catalog",
		"secret://cache/url":    "redis://cache:6379/1",
		"secret://profile/hash": "hash-key",
	}

	resolver := SecretResolverFunc(func(_ context.Context, ref string) (string, error) {
		if v, ok := secrets[ref]; ok {
			return v, nil
		}
		return "", &SecretError{Ref: ref, Err: errSecretResolverNotConfigured}
	})

	cfg, err := Load(context.Background(), WithEnvMap(env), WithoutSystemEnv(), WithEnvFile(""), WithSecretResolver(resolver))
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}

	if cfg.Server.Port != "9090" {
		t.Errorf("expected port 9090, got %s", cfg.Server.Port)
	}
	if cfg.Server.IdleTimeout != 2*time.Minute {
		t.Errorf("unexpected idle timeout: %s", cfg.Server.IdleTimeout)
	}
	if cfg.Postgres.DSN != "postgres://catalog" {
		t.Errorf("expected resolved dsn, got %s", cfg.Postgres.DSN)
	}
	if cfg.Postgres.MaxConns != 25 {
		t.Errorf("unexpected max conns %d", cfg.Postgres.MaxConns)
	}
	if cfg.Redis.URL != "redis://cache:6379/1" {
		t.Errorf("expected legacy sm:// ref to resolve, got %s", cfg.Redis.URL)
	}
	if cfg.Catalog.CategoryCacheTTL != time.Minute {
		t.Errorf("unexpected cache ttl %s", cfg.Catalog.CategoryCacheTTL)
	}
	if cfg.RecentlyViewed.MaxItems != 20 {
		t.Errorf("unexpected max items %d", cfg.RecentlyViewed.MaxItems)
	}
	if cfg.Profile.HashKey != "hash-key" {
		t.Errorf("expected resolved hash key, got %s", cfg.Profile.HashKey)
	}
	if cfg.Profile.Secure {
		t.Errorf("expected insecure cookie override")
	}
	if got := cfg.Locale.Supported; len(got) != 3 || got[1] != "en" {
		t.Errorf("unexpected supported locales %v", got)
	}
	if !cfg.Events.Enabled || cfg.Events.StoreEventTopic != "stores" || cfg.Events.ProjectID != "bz-prod" {
		t.Errorf("unexpected events config %+v", cfg.Events)
	}
}

func TestLoadDotEnvFallback(t *testing.T) {
	dir := t.TempDir()
	envPath := filepath.Join(dir, ".env.test")
	content := "API_SERVER_PORT=7070\nAPI_FIREBASE_PROJECT_ID=bz-dot\nAPI_CATALOG_BACKEND=memory\n"
	if err := os.WriteFile(envPath, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write dotenv file: %v", err)
	}

	cfg, err := Load(context.Background(), WithEnvFile(envPath), WithoutSystemEnv())
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}

	if cfg.Server.Port != "7070" {
		t.Errorf("expected port from dotenv 7070, got %s", cfg.Server.Port)
	}
	if cfg.Firebase.ProjectID != "bz-dot" {
		t.Errorf("expected firebase project from dotenv, got %s", cfg.Firebase.ProjectID)
	}
}

func TestLoadMissingDotEnvIsIgnored(t *testing.T) {
	env := map[string]string{
		"API_FIREBASE_PROJECT_ID": "bz-dev",
		"API_CATALOG_BACKEND":     "memory",
	}
	_, err := Load(context.Background(), WithEnvMap(env), WithoutSystemEnv(), WithEnvFile(filepath.Join(t.TempDir(), "missing.env")))
	if err != nil {
		t.Fatalf("expected missing dotenv to be ignored, got %v", err)
	}
}

func TestLoadMissingRequired(t *testing.T) {
	_, err := Load(context.Background(), WithEnvMap(map[string]string{}), WithoutSystemEnv(), WithEnvFile(""))
	if err == nil {
		t.Fatal("expected validation error, got nil")
	}
	var validation *ValidationError
	if !errors.As(err, &validation) {
		t.Fatalf("expected ValidationError, got %T", err)
	}
	fields := validation.Fields()
	want := map[string]bool{"Postgres.DSN": false, "Firebase.ProjectID": false}
	for _, f := range fields {
		if _, ok := want[f]; ok {
			want[f] = true
		}
	}
	for name, seen := range want {
		if !seen {
			t.Errorf("expected %s in invalid fields %v", name, fields)
		}
	}
}

func TestLoadRejectsUnknownBackend(t *testing.T) {
	env := map[string]string{
		"API_FIREBASE_PROJECT_ID":     "bz-dev",
		"API_CATALOG_BACKEND":         "memory",
		"API_RECENTLY_VIEWED_BACKEND": "localstorage",
	}
	_, err := Load(context.Background(), WithEnvMap(env), WithoutSystemEnv(), WithEnvFile(""))
	var validation *ValidationError
	if !errors.As(err, &validation) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if got := validation.Fields(); len(got) != 1 || got[0] != "RecentlyViewed.Backend" {
		t.Fatalf("unexpected invalid fields %v", got)
	}
}

func TestLoadSecretResolverError(t *testing.T) {
	env := map[string]string{
		"API_FIREBASE_PROJECT_ID": "bz-dev",
		"API_POSTGRES_DSN":        "secret://missing",
	}

	_, err := Load(context.Background(), WithEnvMap(env), WithoutSystemEnv(), WithEnvFile(""))
	if err == nil {
		t.Fatal("expected secret resolution error, got nil")
	}
	var secretErr *SecretError
	if !errors.As(err, &secretErr) {
		t.Fatalf("expected SecretError, got %T", err)
	}
	if secretErr.Ref != "secret://missing" {
		t.Errorf("unexpected secret ref %s", secretErr.Ref)
	}
}

func TestEnvironmentValuesMergesSources(t *testing.T) {
	dir := t.TempDir()
	envPath := filepath.Join(dir, ".env.test")
	content := "API_FIREBASE_PROJECT_ID=dot-project\nAPI_SECRET_FALLBACK_FILE=.dot.local\n"
	if err := os.WriteFile(envPath, []byte(content), 0o600); err != nil {
		t.Fatalf("failed writing env file: %v", err)
	}

	t.Setenv("API_FIREBASE_PROJECT_ID", "os-project")
	t.Setenv("API_SECRET_PROJECT_IDS", "prod=project-prod")

	overrides := map[string]string{
		"API_FIREBASE_PROJECT_ID": "override-project",
	}

	values, err := EnvironmentValues(WithEnvFile(envPath), WithEnvMap(overrides))
	if err != nil {
		t.Fatalf("EnvironmentValues returned error: %v", err)
	}

	if got := values["API_FIREBASE_PROJECT_ID"]; got != "override-project" {
		t.Fatalf("expected override project, got %s", got)
	}
	if got := values["API_SECRET_FALLBACK_FILE"]; got != ".dot.local" {
		t.Fatalf("expected dotenv fallback file, got %s", got)
	}
	if got := values["API_SECRET_PROJECT_IDS"]; got != "prod=project-prod" {
		t.Fatalf("expected system env project map, got %s", got)
	}
}

func TestLoadMissingRequiredSecrets(t *testing.T) {
	env := map[string]string{
		"API_FIREBASE_PROJECT_ID": "bz-dev",
		"API_CATALOG_BACKEND":     "memory",
	}

	_, err := Load(context.Background(),
		WithEnvMap(env),
		WithoutSystemEnv(),
		WithEnvFile(""),
		WithRequiredSecrets("Profile.HashKey"),
	)
	var missing *MissingSecretsError
	if !errors.As(err, &missing) {
		t.Fatalf("expected MissingSecretsError, got %v", err)
	}
	if got := missing.Names(); len(got) != 1 || got[0] != "Profile.HashKey" {
		t.Fatalf("unexpected missing names %v", got)
	}
	if got := missing.RedactedNames(); len(got) != 1 || got[0] == "Profile.HashKey" || len(got[0]) != 16 {
		t.Fatalf("unexpected redacted names %v", got)
	}
}
