package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/bazzarna/storefront/internal/platform/httpx"
	"github.com/bazzarna/storefront/internal/platform/i18n"
	"github.com/bazzarna/storefront/internal/services"
)

const maxJSONRequestBody = 16 << 10

var errEmptyBody = errors.New("request body is empty")

// messages localises the user-facing message of every error envelope.
type messages struct {
	bundle *i18n.Bundle
}

func newMessages(bundle *i18n.Bundle) messages {
	if bundle == nil {
		bundle = i18n.Default()
	}
	return messages{bundle: bundle}
}

func (m messages) text(r *http.Request, key string) string {
	return m.bundle.T(i18n.FromContext(r), key)
}

func (m messages) write(w http.ResponseWriter, r *http.Request, code, key string, status int) {
	httpx.WriteError(r.Context(), w, httpx.NewError(code, m.text(r, key), status))
}

func (m messages) writeWithReason(w http.ResponseWriter, r *http.Request, code, key string, status int, reason error) {
	apiErr := httpx.NewError(code, m.text(r, key), status)
	if reason != nil {
		apiErr = apiErr.WithDetails(map[string]any{"reason": reason.Error()})
	}
	httpx.WriteError(r.Context(), w, apiErr)
}

// catalogError maps catalog service failures. fetchKey names the message used for the
// generic failure of the resource being read.
func (m messages) catalogError(w http.ResponseWriter, r *http.Request, err error, fetchKey, notFoundKey string) {
	switch {
	case err == nil:
		return
	case errors.Is(err, context.DeadlineExceeded):
		m.write(w, r, "request_timeout", "network.timeout", http.StatusGatewayTimeout)
	case errors.Is(err, context.Canceled):
		m.write(w, r, "request_cancelled", "general.try_again", http.StatusServiceUnavailable)
	case errors.Is(err, services.ErrCatalogInvalidInput):
		m.writeWithReason(w, r, "invalid_request", "validation.required_fields", http.StatusBadRequest, err)
	case errors.Is(err, services.ErrCatalogNotFound):
		m.write(w, r, "not_found", notFoundKey, http.StatusNotFound)
	case errors.Is(err, services.ErrCatalogUnavailable):
		m.write(w, r, "catalog_unavailable", "network.server_error", http.StatusServiceUnavailable)
	default:
		m.write(w, r, "catalog_error", fetchKey, http.StatusInternalServerError)
	}
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	httpx.WriteJSON(w, status, payload)
}

// decodeJSONBody reads a single JSON object, rejecting unknown fields and trailing data.
func decodeJSONBody(w http.ResponseWriter, r *http.Request, dst any) error {
	if r.Body == nil {
		return errEmptyBody
	}
	reader := http.MaxBytesReader(w, r.Body, maxJSONRequestBody)
	defer reader.Close()

	decoder := json.NewDecoder(reader)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return errEmptyBody
		}
		return fmt.Errorf("invalid request body: %w", err)
	}
	if decoder.More() {
		return errors.New("invalid request body: extraneous data")
	}
	return nil
}

func formatTimestamp(ts time.Time) string {
	if ts.IsZero() {
		return ""
	}
	return ts.UTC().Format(time.RFC3339)
}

func copyStringSlice(in []string) []string {
	out := make([]string, len(in))
	copy(out, in)
	return out
}

func firstNonBlank(values ...string) string {
	for _, v := range values {
		if trimmed := strings.TrimSpace(v); trimmed != "" {
			return trimmed
		}
	}
	return ""
}
