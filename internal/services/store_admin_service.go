package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/bazzarna/storefront/internal/repositories"
)

// ErrStoreOwnerRequired is returned when DeleteStore is called without an owner id.
var ErrStoreOwnerRequired = errors.New("store admin service: owner id is required")

// Step names reported in DeleteStoreResult.
const (
	StepFindStore       = "find_store"
	StepDeleteAuthUser  = "delete_auth_user"
	StepDeleteStoreRow  = "delete_store"
	StepPublishDeletion = "publish_event"
)

// DeletionStep records the outcome of one step of the store deletion.
type DeletionStep struct {
	Name     string `json:"name"`
	OK       bool   `json:"ok"`
	Affected int64  `json:"affected,omitempty"`
	Error    string `json:"error,omitempty"`
}

// DeleteStoreResult summarises a completed deletion.
type DeleteStoreResult struct {
	OperationID string         `json:"operation_id"`
	OwnerID     string         `json:"owner_id"`
	StoreID     string         `json:"store_id,omitempty"`
	Steps       []DeletionStep `json:"steps"`
}

// StoreDeletionError reports the critical failure to remove the store row. Result carries the
// steps that ran before it.
type StoreDeletionError struct {
	Result DeleteStoreResult
	Err    error
}

func (e *StoreDeletionError) Error() string {
	if e == nil || e.Err == nil {
		return "store deletion failed"
	}
	return e.Err.Error()
}

func (e *StoreDeletionError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// StoreAdminServiceDeps wires the store admin service.
type StoreAdminServiceDeps struct {
	Stores    repositories.StoreRepository
	Auth      AuthUserDeleter
	Publisher StoreEventPublisher
	Clock     func() time.Time
	NewID     func() string
	Logger    func(ctx context.Context, event string, fields map[string]any)
}

type storeAdminService struct {
	stores    repositories.StoreRepository
	auth      AuthUserDeleter
	publisher StoreEventPublisher
	clock     func() time.Time
	newID     func() string
	logger    Logger
}

var _ StoreAdminService = (*storeAdminService)(nil)

// NewStoreAdminService constructs the store deletion service. Auth and Publisher are optional.
func NewStoreAdminService(deps StoreAdminServiceDeps) (StoreAdminService, error) {
	if deps.Stores == nil {
		return nil, errors.New("store admin service: store repository is required")
	}
	clock := deps.Clock
	if clock == nil {
		clock = time.Now
	}
	newID := deps.NewID
	if newID == nil {
		newID = func() string { return ulid.Make().String() }
	}
	logger := Logger(deps.Logger)
	if logger == nil {
		logger = nopLogger
	}
	return &storeAdminService{
		stores:    deps.Stores,
		auth:      deps.Auth,
		publisher: deps.Publisher,
		clock:     clock,
		newID:     newID,
		logger:    logger,
	}, nil
}

// DeleteStore cleans the owner's store dependents, deletes the auth identity and removes the
// store row. Only the last step is critical; earlier failures are logged and recorded.
// Nothing is retried.
func (s *storeAdminService) DeleteStore(ctx context.Context, ownerID string) (DeleteStoreResult, error) {
	ownerID = strings.TrimSpace(ownerID)
	if ownerID == "" {
		return DeleteStoreResult{}, ErrStoreOwnerRequired
	}

	result := DeleteStoreResult{OperationID: s.newID(), OwnerID: ownerID, Steps: []DeletionStep{}}
	fields := func(extra map[string]any) map[string]any {
		out := map[string]any{"operationId": result.OperationID, "ownerId": ownerID}
		for k, v := range extra {
			out[k] = v
		}
		return out
	}
	s.logger(ctx, "store_admin.delete_started", fields(nil))

	store, err := s.stores.FindByOwner(ctx, ownerID)
	var repoErr repositories.RepositoryError
	switch {
	case errors.As(err, &repoErr) && repoErr.IsNotFound():
		s.logger(ctx, "store_admin.store_missing", fields(nil))
		result.Steps = append(result.Steps, DeletionStep{Name: StepFindStore, OK: true})
	case err != nil:
		s.logger(ctx, "store_admin.find_store_failed", fields(map[string]any{"error": err}))
		result.Steps = append(result.Steps, DeletionStep{Name: StepFindStore, Error: err.Error()})
	default:
		result.StoreID = store.ID
		result.Steps = append(result.Steps, DeletionStep{Name: StepFindStore, OK: true})
	}

	if result.StoreID != "" {
		for _, table := range repositories.StoreDependentTables {
			n, err := s.stores.DeleteByStoreID(ctx, table, result.StoreID)
			step := DeletionStep{Name: "delete_" + table, OK: err == nil, Affected: n}
			if err != nil {
				step.Error = err.Error()
				s.logger(ctx, "store_admin.cleanup_failed", fields(map[string]any{"table": table, "error": err}))
			}
			result.Steps = append(result.Steps, step)
		}
	}

	if s.auth != nil {
		step := DeletionStep{Name: StepDeleteAuthUser, OK: true}
		if err := s.auth.DeleteUser(ctx, ownerID); err != nil {
			step.OK = false
			step.Error = err.Error()
			s.logger(ctx, "store_admin.auth_delete_failed", fields(map[string]any{"error": err}))
		}
		result.Steps = append(result.Steps, step)
	}

	n, err := s.stores.DeleteByOwner(ctx, ownerID)
	if err != nil {
		result.Steps = append(result.Steps, DeletionStep{Name: StepDeleteStoreRow, Error: err.Error()})
		s.logger(ctx, "store_admin.delete_store_failed", fields(map[string]any{"error": err}))
		return result, &StoreDeletionError{Result: result, Err: fmt.Errorf("delete store: %w", err)}
	}
	result.Steps = append(result.Steps, DeletionStep{Name: StepDeleteStoreRow, OK: true, Affected: n})

	if s.publisher != nil {
		step := DeletionStep{Name: StepPublishDeletion, OK: true}
		_, err := s.publisher.PublishStoreDeleted(ctx, StoreDeletedEvent{
			OperationID: result.OperationID,
			OwnerID:     ownerID,
			StoreID:     result.StoreID,
			DeletedAt:   s.clock().UTC(),
		})
		if err != nil {
			step.OK = false
			step.Error = err.Error()
			s.logger(ctx, "store_admin.publish_failed", fields(map[string]any{"error": err}))
		}
		result.Steps = append(result.Steps, step)
	}

	s.logger(ctx, "store_admin.delete_completed", fields(map[string]any{"storeId": result.StoreID}))
	return result, nil
}
