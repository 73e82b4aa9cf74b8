package profile

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/bazzarna/storefront/internal/platform/requestctx"
)

const testProfileID = "6f1f3c7e-8f7a-4d7c-9d59-0a8f5b2c1e11"

func newTestManager(t *testing.T) *Manager {
	t.Helper()
	mgr, err := NewManager(Config{
		CookieName: "test_profile",
		HashKey:    []byte("12345678901234567890123456789012"),
		BlockKey:   []byte("abcdefghijklmnopqrstuv0123456789"),
		MaxAge:     time.Hour,
		Now:        func() time.Time { return time.Now() },
		NewID:      func() string { return testProfileID },
	})
	if err != nil {
		t.Fatalf("NewManager error: %v", err)
	}
	return mgr
}

func findCookie(cookies []*http.Cookie, name string) *http.Cookie {
	for _, c := range cookies {
		if c.Name == name {
			return c
		}
	}
	return nil
}

func TestMiddlewareIssuesCookieOnFirstVisit(t *testing.T) {
	mgr := newTestManager(t)

	var seen string
	handler := mgr.Middleware()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = requestctx.ProfileID(r.Context())
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/public/products", nil))

	if seen != testProfileID {
		t.Fatalf("expected profile id %s in context, got %q", testProfileID, seen)
	}
	cookie := findCookie(rec.Result().Cookies(), "test_profile")
	if cookie == nil {
		t.Fatalf("expected profile cookie to be issued")
	}
	if !cookie.HttpOnly || cookie.SameSite != http.SameSiteLaxMode || cookie.MaxAge != 3600 {
		t.Fatalf("unexpected cookie attributes %+v", cookie)
	}
}

func TestMiddlewareReusesExistingProfile(t *testing.T) {
	mgr := newTestManager(t)

	first := httptest.NewRecorder()
	if _, err := mgr.Issue(first); err != nil {
		t.Fatalf("Issue error: %v", err)
	}
	cookie := findCookie(first.Result().Cookies(), "test_profile")

	mgr.cfg.NewID = func() string { t.Fatalf("unexpected new profile"); return "" }

	var seen string
	handler := mgr.Middleware()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = requestctx.ProfileID(r.Context())
	}))
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(cookie)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if seen != testProfileID {
		t.Fatalf("expected existing profile id, got %q", seen)
	}
	if findCookie(rec.Result().Cookies(), "test_profile") != nil {
		t.Fatalf("expected no new cookie for returning visitor")
	}
}

func TestLoadRejectsTamperedCookie(t *testing.T) {
	mgr := newTestManager(t)
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: "test_profile", Value: "forged"})
	if _, ok := mgr.Load(req); ok {
		t.Fatalf("expected tampered cookie to be rejected")
	}
}

func TestNewManagerValidatesKeys(t *testing.T) {
	if _, err := NewManager(Config{}); !errors.Is(err, ErrInvalidConfig) {
		t.Fatalf("expected ErrInvalidConfig for missing hash key, got %v", err)
	}
	if _, err := NewManager(Config{HashKey: []byte("k"), BlockKey: []byte("short")}); !errors.Is(err, ErrInvalidConfig) {
		t.Fatalf("expected ErrInvalidConfig for bad block key, got %v", err)
	}
}
