package firestore

import (
	"context"
	"errors"
	"testing"

	"github.com/bazzarna/storefront/internal/platform/config"
)

func TestProviderRequiresProject(t *testing.T) {
	t.Setenv(envGoogleProjectID, "")
	t.Setenv(envEmulatorHost, "")

	p := NewProvider(config.FirestoreConfig{})
	if _, err := p.Client(context.Background()); err == nil {
		t.Fatal("expected error without project id")
	}
}

func TestProviderResolvesFromEnvironment(t *testing.T) {
	t.Setenv(envGoogleProjectID, " env-project ")
	t.Setenv(envEmulatorHost, "localhost:8080")

	p := NewProvider(config.FirestoreConfig{})
	if p.projectID != "env-project" || p.emulator != "localhost:8080" {
		t.Fatalf("unexpected resolution project=%q emulator=%q", p.projectID, p.emulator)
	}

	explicit := NewProvider(config.FirestoreConfig{ProjectID: "cfg-project"})
	if explicit.projectID != "cfg-project" {
		t.Fatalf("expected config project to win, got %q", explicit.projectID)
	}
}

func TestProviderClosed(t *testing.T) {
	p := NewProvider(config.FirestoreConfig{ProjectID: "bazzarna-test"})
	if err := p.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	if err := p.Close(); err != nil {
		t.Fatalf("second close: %v", err)
	}
	if _, err := p.Client(context.Background()); !errors.Is(err, ErrProviderClosed) {
		t.Fatalf("expected ErrProviderClosed, got %v", err)
	}
	var nilProvider *Provider
	if err := nilProvider.Close(); err != nil {
		t.Fatalf("nil close: %v", err)
	}
}
