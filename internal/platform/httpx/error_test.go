package httpx

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/bazzarna/storefront/internal/platform/requestctx"
)

func TestWriteErrorIncludesTraceAndDetails(t *testing.T) {
	ctx := requestctx.WithTrace(context.Background(), requestctx.TraceInfo{TraceID: "abc123"})
	ctx = requestctx.WithLocale(ctx, "ar")
	rr := httptest.NewRecorder()

	WriteError(ctx, rr, NewError("store_not_found", "line one\nline two", http.StatusNotFound).
		WithDetails(map[string]any{"owner_id": "u-1"}))

	if rr.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rr.Code)
	}
	if got := rr.Header().Get("Content-Language"); got != "ar" {
		t.Fatalf("expected content language ar, got %q", got)
	}
	var body map[string]any
	if err := json.Unmarshal(rr.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body["error"] != "store_not_found" {
		t.Fatalf("unexpected code %v", body["error"])
	}
	if body["message"] != "line one line two" {
		t.Fatalf("expected sanitised message, got %v", body["message"])
	}
	if body["trace_id"] != "abc123" {
		t.Fatalf("expected trace id, got %v", body["trace_id"])
	}
	if body["owner_id"] != "u-1" {
		t.Fatalf("expected detail to be merged, got %v", body["owner_id"])
	}
	if _, ok := body["request_id"]; ok {
		t.Fatalf("request id should be omitted when absent")
	}
}

func TestNewErrorDefaultsStatus(t *testing.T) {
	err := NewError("boom", "", 0)
	if err.Status != http.StatusInternalServerError {
		t.Fatalf("expected 500 default, got %d", err.Status)
	}
	if err.Error() != "boom" {
		t.Fatalf("unexpected error string %q", err.Error())
	}
}

func TestWithDetailsDoesNotMutateOriginal(t *testing.T) {
	base := NewError("invalid", "bad", http.StatusBadRequest).WithDetails(map[string]any{"field": "page"})
	extended := base.WithDetails(map[string]any{"field": "size", "max": 100})

	if base.Details["field"] != "page" || len(base.Details) != 1 {
		t.Fatalf("expected original details untouched, got %v", base.Details)
	}
	if extended.Details["field"] != "size" || extended.Details["max"] != 100 {
		t.Fatalf("unexpected merged details %v", extended.Details)
	}

	rr := httptest.NewRecorder()
	WriteError(context.Background(), rr, NewError("invalid", "bad", http.StatusBadRequest).
		WithDetails(map[string]any{"error": "spoofed"}))
	var body map[string]any
	if err := json.Unmarshal(rr.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body["error"] != "invalid" {
		t.Fatalf("details must not override the code, got %v", body["error"])
	}
}
