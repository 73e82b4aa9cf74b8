package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/bazzarna/storefront/internal/platform/i18n"
	"github.com/bazzarna/storefront/internal/platform/requestctx"
	"github.com/bazzarna/storefront/internal/services"
)

// RecentlyViewedHandlers exposes the visitor's recently viewed history, scoped by the browser
// profile cookie.
type RecentlyViewedHandlers struct {
	recent   services.RecentlyViewedService
	messages messages
}

// RecentlyViewedOption customises RecentlyViewedHandlers.
type RecentlyViewedOption func(*RecentlyViewedHandlers)

// WithRecentlyViewedService injects the history service.
func WithRecentlyViewedService(svc services.RecentlyViewedService) RecentlyViewedOption {
	return func(h *RecentlyViewedHandlers) {
		h.recent = svc
	}
}

// WithRecentlyViewedMessages sets the bundle used for error messages.
func WithRecentlyViewedMessages(bundle *i18n.Bundle) RecentlyViewedOption {
	return func(h *RecentlyViewedHandlers) {
		h.messages = newMessages(bundle)
	}
}

// NewRecentlyViewedHandlers constructs the history endpoints.
func NewRecentlyViewedHandlers(opts ...RecentlyViewedOption) *RecentlyViewedHandlers {
	h := &RecentlyViewedHandlers{}
	for _, opt := range opts {
		if opt != nil {
			opt(h)
		}
	}
	if h.messages.bundle == nil {
		h.messages = newMessages(nil)
	}
	return h
}

// Routes registers the history endpoints.
func (h *RecentlyViewedHandlers) Routes(r chi.Router) {
	if r == nil {
		return
	}
	r.Get("/recently-viewed", h.listProducts)
	r.Get("/recently-viewed/ids", h.listIDs)
	r.Post("/recently-viewed", h.record)
	r.Delete("/recently-viewed", h.clear)
}

type recordViewRequest struct {
	ProductID string `json:"product_id"`
}

type recentlyViewedIDsResponse struct {
	ProductIDs []string `json:"product_ids"`
}

type recentlyViewedProductsResponse struct {
	Items []productPayload `json:"items"`
}

func (h *RecentlyViewedHandlers) listProducts(w http.ResponseWriter, r *http.Request) {
	profileID, ok := h.profile(w, r)
	if !ok {
		return
	}
	products, err := h.recent.Products(r.Context(), profileID)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	locale := i18n.FromContext(r)
	items := make([]productPayload, 0, len(products))
	for _, p := range products {
		items = append(items, buildProductPayload(p, locale))
	}
	w.Header().Set("Cache-Control", "private, no-store")
	writeJSON(w, http.StatusOK, recentlyViewedProductsResponse{Items: items})
}

func (h *RecentlyViewedHandlers) listIDs(w http.ResponseWriter, r *http.Request) {
	profileID, ok := h.profile(w, r)
	if !ok {
		return
	}
	ids, err := h.recent.List(r.Context(), profileID)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	w.Header().Set("Cache-Control", "private, no-store")
	writeJSON(w, http.StatusOK, recentlyViewedIDsResponse{ProductIDs: nonNilStrings(ids)})
}

func (h *RecentlyViewedHandlers) record(w http.ResponseWriter, r *http.Request) {
	profileID, ok := h.profile(w, r)
	if !ok {
		return
	}
	var payload recordViewRequest
	if err := decodeJSONBody(w, r, &payload); err != nil {
		h.messages.writeWithReason(w, r, "invalid_request", "validation.invalid_body", http.StatusBadRequest, err)
		return
	}
	productID := strings.TrimSpace(payload.ProductID)
	if productID == "" {
		h.messages.write(w, r, "invalid_request", "validation.required_fields", http.StatusBadRequest)
		return
	}
	ids, err := h.recent.Record(r.Context(), profileID, productID)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, recentlyViewedIDsResponse{ProductIDs: nonNilStrings(ids)})
}

func (h *RecentlyViewedHandlers) clear(w http.ResponseWriter, r *http.Request) {
	profileID, ok := h.profile(w, r)
	if !ok {
		return
	}
	if err := h.recent.Clear(r.Context(), profileID); err != nil {
		h.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *RecentlyViewedHandlers) profile(w http.ResponseWriter, r *http.Request) (string, bool) {
	if h.recent == nil {
		h.messages.write(w, r, "recently_viewed_unavailable", "network.server_error", http.StatusServiceUnavailable)
		return "", false
	}
	profileID := strings.TrimSpace(requestctx.ProfileID(r.Context()))
	if profileID == "" {
		h.messages.write(w, r, "profile_required", "validation.profile_required", http.StatusBadRequest)
		return "", false
	}
	return profileID, true
}

func (h *RecentlyViewedHandlers) writeError(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, services.ErrProfileRequired) {
		h.messages.write(w, r, "profile_required", "validation.profile_required", http.StatusBadRequest)
		return
	}
	h.messages.write(w, r, "recently_viewed_error", "general.unknown", http.StatusInternalServerError)
}

func nonNilStrings(in []string) []string {
	if in == nil {
		return []string{}
	}
	return in
}
