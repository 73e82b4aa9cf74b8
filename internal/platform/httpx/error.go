package httpx

import (
	"context"
	"encoding/json"
	"maps"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5/middleware"

	"github.com/bazzarna/storefront/internal/platform/requestctx"
)

const (
	codeLimit    = 80
	messageLimit = 512
	idLimit      = 80
	traceLimit   = 64
)

var flatten = strings.NewReplacer("\r\n", " ", "\n", " ", "\r", " ")

// Error is an API failure rendered as {"error","message","status",...}. Details are
// merged into the top level of the body. Error values travel as plain errors until a
// handler writes them.
type Error struct {
	Code      string
	Message   string
	Status    int
	RequestID string
	TraceID   string
	Details   map[string]any
}

// NewError builds an Error with single-line, length-capped code and message. A zero
// status becomes 500.
func NewError(code, message string, status int) Error {
	return Error{
		Code:    oneLine(code, codeLimit),
		Message: oneLine(message, messageLimit),
		Status:  orInternal(status),
	}
}

func (e Error) Error() string {
	if e.Message == "" {
		return e.Code
	}
	return e.Code + ": " + e.Message
}

// WithDetails returns a copy of e with details added. Later keys win.
func (e Error) WithDetails(details map[string]any) Error {
	if len(details) == 0 {
		return e
	}
	merged := maps.Clone(e.Details)
	if merged == nil {
		merged = make(map[string]any, len(details))
	}
	maps.Copy(merged, details)
	e.Details = merged
	return e
}

// body renders the envelope. Ids missing on e are taken from chi's request id and the
// request trace; empty ids are left out.
func (e Error) body(ctx context.Context) map[string]any {
	status := orInternal(e.Status)
	out := make(map[string]any, len(e.Details)+5)
	maps.Copy(out, e.Details)
	out["error"] = e.Code
	out["message"] = e.Message
	out["status"] = status

	if id := oneLine(orElse(e.RequestID, middleware.GetReqID(ctx)), idLimit); id != "" {
		out["request_id"] = id
	}
	if id := oneLine(orElse(e.TraceID, requestctx.TraceID(ctx)), traceLimit); id != "" {
		out["trace_id"] = id
	}
	return out
}

// WriteError writes err as JSON and echoes the request locale in Content-Language.
func WriteError(ctx context.Context, w http.ResponseWriter, err Error) {
	if locale := requestctx.Locale(ctx); locale != "" {
		w.Header().Set("Content-Language", locale)
	}
	WriteJSON(w, orInternal(err.Status), err.body(ctx))
}

// WriteJSON encodes payload with the given status.
func WriteJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func oneLine(value string, limit int) string {
	value = strings.TrimSpace(flatten.Replace(value))
	if len(value) > limit {
		value = value[:limit]
	}
	return value
}

func orInternal(status int) int {
	if status == 0 {
		return http.StatusInternalServerError
	}
	return status
}

func orElse(value, fallback string) string {
	if value != "" {
		return value
	}
	return fallback
}
