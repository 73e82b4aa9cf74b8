package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/bazzarna/storefront/internal/platform/auth"
	"github.com/bazzarna/storefront/internal/platform/httpx"
	"github.com/bazzarna/storefront/internal/platform/i18n"
	"github.com/bazzarna/storefront/internal/platform/requestctx"
	"github.com/bazzarna/storefront/internal/services"
)

// AdminStoreHandlers exposes the administrative store deletion.
type AdminStoreHandlers struct {
	stores   services.StoreAdminService
	messages messages
}

// AdminStoreOption customises AdminStoreHandlers.
type AdminStoreOption func(*AdminStoreHandlers)

// WithAdminStoreService injects the store admin service.
func WithAdminStoreService(svc services.StoreAdminService) AdminStoreOption {
	return func(h *AdminStoreHandlers) {
		h.stores = svc
	}
}

// WithAdminStoreMessages sets the bundle used for response messages.
func WithAdminStoreMessages(bundle *i18n.Bundle) AdminStoreOption {
	return func(h *AdminStoreHandlers) {
		h.messages = newMessages(bundle)
	}
}

// NewAdminStoreHandlers constructs the admin store endpoints.
func NewAdminStoreHandlers(opts ...AdminStoreOption) *AdminStoreHandlers {
	h := &AdminStoreHandlers{}
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

// Routes registers the admin store endpoints.
func (h *AdminStoreHandlers) Routes(r chi.Router) {
	if r == nil {
		return
	}
	r.Post("/stores:delete", h.deleteStoreFromBody)
	r.Delete("/stores/{ownerID}", h.deleteStoreByPath)
}

type deleteStoreRequest struct {
	OwnerID string `json:"owner_id"`
}

type deleteStoreResponse struct {
	Success     bool                    `json:"success"`
	Message     string                  `json:"message"`
	OperationID string                  `json:"operation_id"`
	OwnerID     string                  `json:"owner_id"`
	StoreID     string                  `json:"store_id,omitempty"`
	Steps       []services.DeletionStep `json:"steps"`
}

func (h *AdminStoreHandlers) deleteStoreFromBody(w http.ResponseWriter, r *http.Request) {
	var payload deleteStoreRequest
	if err := decodeJSONBody(w, r, &payload); err != nil {
		h.messages.writeWithReason(w, r, "invalid_request", "validation.invalid_body", http.StatusBadRequest, err)
		return
	}
	h.deleteStore(w, r, payload.OwnerID)
}

func (h *AdminStoreHandlers) deleteStoreByPath(w http.ResponseWriter, r *http.Request) {
	h.deleteStore(w, r, chi.URLParam(r, "ownerID"))
}

func (h *AdminStoreHandlers) deleteStore(w http.ResponseWriter, r *http.Request, ownerID string) {
	ctx := r.Context()
	if h.stores == nil {
		h.messages.write(w, r, "store_admin_unavailable", "network.server_error", http.StatusServiceUnavailable)
		return
	}

	ownerID = strings.TrimSpace(ownerID)
	if ownerID == "" {
		h.writeOwnerRequired(w, r)
		return
	}

	logger := requestctx.Logger(ctx)
	if identity, ok := auth.IdentityFromContext(ctx); ok && identity != nil {
		logger = logger.With(zap.String("actorUid", identity.UID))
	}

	result, err := h.stores.DeleteStore(ctx, ownerID)
	if errors.Is(err, services.ErrStoreOwnerRequired) {
		h.writeOwnerRequired(w, r)
		return
	}
	var deletionErr *services.StoreDeletionError
	if errors.As(err, &deletionErr) {
		logger.Error("store deletion failed",
			zap.String("ownerId", ownerID),
			zap.String("operationId", deletionErr.Result.OperationID),
			zap.Error(deletionErr.Err),
		)
		steps := deletionErr.Result.Steps
		if steps == nil {
			steps = []services.DeletionStep{}
		}
		apiErr := httpx.NewError("store_delete_failed", h.messages.text(r, "stores.delete_failed"), http.StatusBadRequest).
			WithDetails(map[string]any{
				"success":      false,
				"error":        "Database Error: " + deletionErr.Err.Error(),
				"operation_id": deletionErr.Result.OperationID,
				"steps":        steps,
			})
		httpx.WriteError(ctx, w, apiErr)
		return
	}
	if err != nil {
		logger.Error("store deletion failed", zap.String("ownerId", ownerID), zap.Error(err))
		h.messages.write(w, r, "store_delete_failed", "general.unknown", http.StatusInternalServerError)
		return
	}

	logger.Info("store deleted",
		zap.String("ownerId", ownerID),
		zap.String("storeId", result.StoreID),
		zap.String("operationId", result.OperationID),
	)
	writeJSON(w, http.StatusOK, deleteStoreResponse{
		Success:     true,
		Message:     h.messages.text(r, "stores.deleted"),
		OperationID: result.OperationID,
		OwnerID:     result.OwnerID,
		StoreID:     result.StoreID,
		Steps:       result.Steps,
	})
}

func (h *AdminStoreHandlers) writeOwnerRequired(w http.ResponseWriter, r *http.Request) {
	apiErr := httpx.NewError("owner_required", h.messages.text(r, "stores.owner_required"), http.StatusBadRequest).
		WithDetails(map[string]any{"success": false})
	httpx.WriteError(r.Context(), w, apiErr)
}
