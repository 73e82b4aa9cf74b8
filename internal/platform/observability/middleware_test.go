package observability

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/bazzarna/storefront/internal/platform/requestctx"
)

func TestRequestLoggerMiddlewareLogsCompletion(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	logger := zap.New(core)

	handler := InjectLoggerMiddleware(logger)(RequestLoggerMiddleware("bazzarna-test")(
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNotFound)
			_, _ = w.Write([]byte("{}"))
		}),
	))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/public/products/p9", nil)
	req = req.WithContext(requestctx.WithProfileID(req.Context(), "profile-1"))
	handler.ServeHTTP(httptest.NewRecorder(), req)

	completed := logs.FilterMessage("request completed").All()
	if len(completed) != 1 {
		t.Fatalf("expected one completion line, got %d", len(completed))
	}
	entry := completed[0]
	if entry.Level != zapcore.WarnLevel {
		t.Fatalf("expected warn for 4xx, got %s", entry.Level)
	}
	fields := entry.ContextMap()
	if fields["status"] != int64(http.StatusNotFound) || fields["bytes"] != int64(2) {
		t.Fatalf("unexpected completion fields: %v", fields)
	}
	if fields["profile_id"] != "profile-1" {
		t.Fatalf("expected profile id on request logger, got %v", fields["profile_id"])
	}
}

func TestRecoveryMiddlewareWritesJSONError(t *testing.T) {
	core, logs := observer.New(zapcore.ErrorLevel)
	handler := RecoveryMiddleware(zap.New(core))(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	}))

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", nil))

	if rr.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rr.Code)
	}
	if !strings.Contains(rr.Body.String(), "internal_server_error") {
		t.Fatalf("expected JSON error envelope, got %s", rr.Body.String())
	}
	if logs.FilterMessage("panic recovered").Len() != 1 {
		t.Fatalf("expected panic to be logged")
	}
}

func TestNewEventLoggerLevels(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	log := NewEventLogger(zap.New(core), "catalog event")

	log(context.Background(), "catalog.list_products", map[string]any{"page": 2})
	log(context.Background(), "catalog.query_failed", map[string]any{"error": errors.New("timeout")})

	entries := logs.All()
	if len(entries) != 2 {
		t.Fatalf("expected two entries, got %d", len(entries))
	}
	if entries[0].Level != zapcore.DebugLevel || entries[1].Level != zapcore.WarnLevel {
		t.Fatalf("unexpected levels %s, %s", entries[0].Level, entries[1].Level)
	}
	if entries[1].ContextMap()["error"] != "timeout" {
		t.Fatalf("expected error field, got %v", entries[1].ContextMap())
	}
}

func TestSanitizers(t *testing.T) {
	if got := SanitizeRoute(""); got != "/" {
		t.Fatalf("expected /, got %q", got)
	}
	if got := SanitizeMethod("get\n"); got != "GET" {
		t.Fatalf("expected GET, got %q", got)
	}
	long := strings.Repeat("ب", 100)
	if got := SanitizeID(long); len([]rune(got)) != maxIDLen {
		t.Fatalf("expected id clipped to %d runes, got %d", maxIDLen, len([]rune(got)))
	}
	if got := SanitizeID("a\tb"); got != "ab" {
		t.Fatalf("expected control characters dropped, got %q", got)
	}
}

func TestNewLoggerWithLevelFallsBackToInfo(t *testing.T) {
	for _, raw := range []string{"", "verbose"} {
		logger, err := NewLoggerWithLevel(raw)
		if err != nil {
			t.Fatalf("%q: %v", raw, err)
		}
		if logger.Core().Enabled(zapcore.DebugLevel) || !logger.Core().Enabled(zapcore.InfoLevel) {
			t.Fatalf("%q: expected info level", raw)
		}
	}
	logger, err := NewLoggerWithLevel(" DEBUG ")
	if err != nil {
		t.Fatalf("debug: %v", err)
	}
	if !logger.Core().Enabled(zapcore.DebugLevel) {
		t.Fatal("expected debug to be enabled")
	}
	if cloudSeverity[zapcore.WarnLevel] != "WARNING" {
		t.Fatalf("unexpected warn severity %s", cloudSeverity[zapcore.WarnLevel])
	}
}
