package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	domain "github.com/bazzarna/storefront/internal/domain"
	pgplatform "github.com/bazzarna/storefront/internal/platform/postgres"
	"github.com/bazzarna/storefront/internal/repositories"
)

// StoreRepository deletes stores and their dependent rows.
type StoreRepository struct {
	db Querier
}

var _ repositories.StoreRepository = (*StoreRepository)(nil)

// NewStoreRepository constructs a pgx-backed store repository.
func NewStoreRepository(db Querier) (*StoreRepository, error) {
	if db == nil {
		return nil, errors.New("store repository requires a postgres querier")
	}
	return &StoreRepository{db: db}, nil
}

func (r *StoreRepository) FindByOwner(ctx context.Context, ownerID string) (domain.Store, error) {
	var s domain.Store
	err := r.db.QueryRow(ctx,
		"SELECT id::text, owner_id::text, COALESCE(name, '') FROM stores WHERE owner_id::text = $1 LIMIT 1",
		strings.TrimSpace(ownerID),
	).Scan(&s.ID, &s.OwnerID, &s.Name)
	if err != nil {
		return domain.Store{}, pgplatform.WrapError("stores.find_by_owner", err)
	}
	return s, nil
}

// DeleteByStoreID only accepts tables listed in repositories.StoreDependentTables.
func (r *StoreRepository) DeleteByStoreID(ctx context.Context, table string, storeID string) (int64, error) {
	if !repositories.IsStoreDependentTable(table) {
		return 0, fmt.Errorf("store repository: table %q is not a store dependent", table)
	}
	tag, err := r.db.Exec(ctx, "DELETE FROM "+table+" WHERE store_id::text = $1", storeID)
	if err != nil {
		return 0, pgplatform.WrapError(table+".delete", err)
	}
	return tag.RowsAffected(), nil
}

func (r *StoreRepository) DeleteByOwner(ctx context.Context, ownerID string) (int64, error) {
	tag, err := r.db.Exec(ctx, "DELETE FROM stores WHERE owner_id::text = $1", ownerID)
	if err != nil {
		return 0, pgplatform.WrapError("stores.delete", err)
	}
	return tag.RowsAffected(), nil
}
