package repositories

import (
	"context"

	"github.com/shopspring/decimal"

	domain "github.com/bazzarna/storefront/internal/domain"
)

// RepositoryError wraps low-level persistence failures with categorisation used by services.
type RepositoryError interface {
	error
	IsNotFound() bool
	IsConflict() bool
	IsUnavailable() bool
}

// ProductRepository reads the product catalogue.
type ProductRepository interface {
	// Query executes a typed query. Results follow the query's ordering and limit.
	Query(ctx context.Context, query ProductQuery) ([]domain.Product, error)
	FindByID(ctx context.Context, productID string) (domain.Product, error)
	// FindByIDs returns the products that exist among ids in unspecified order.
	FindByIDs(ctx context.Context, ids []string) ([]domain.Product, error)
	List(ctx context.Context, filter ProductListFilter) (domain.ProductPage, error)
	PriceBounds(ctx context.Context) (domain.PriceBounds, error)
	// Brands counts products per non-blank brand in unspecified order.
	Brands(ctx context.Context) ([]domain.BrandSummary, error)
}

// CategoryRepository reads the two-level category forest.
type CategoryRepository interface {
	// ListAll returns main categories and subcategories ordered by name.
	ListAll(ctx context.Context) ([]domain.Category, error)
}

// StoreRepository exposes the store administration primitives used by the delete flow.
type StoreRepository interface {
	FindByOwner(ctx context.Context, ownerID string) (domain.Store, error)
	// DeleteByStoreID removes rows keyed by store_id from one of StoreDependentTables.
	DeleteByStoreID(ctx context.Context, table string, storeID string) (int64, error)
	DeleteByOwner(ctx context.Context, ownerID string) (int64, error)
}

// HealthRepository aggregates dependency probes for readiness endpoints.
type HealthRepository interface {
	Collect(ctx context.Context) (domain.SystemHealthReport, error)
}

// StoreDependentTables lists the tables cleaned before a store row is removed, in deletion order.
var StoreDependentTables = []string{
	"products",
	"subscription_logs",
	"notifications",
	"store_delivery_settings",
	"store_delivery_overrides",
	"store_category_relations",
}

// IsStoreDependentTable reports whether table may be passed to DeleteByStoreID.
func IsStoreDependentTable(table string) bool {
	for _, t := range StoreDependentTables {
		if t == table {
			return true
		}
	}
	return false
}

// Filter DTOs shared across repositories ------------------------------------

// ProductListFilter narrows the numbered product listing. Zero values mean "no constraint"
// and every set field must hold. Brand matches case-insensitively; OnSale keeps products
// with a positive discount.
type ProductListFilter struct {
	Page          int
	PageSize      int
	CategoryIDs   []string
	SubcategoryID string
	StoreID       string
	Search        string
	MinPrice      *decimal.Decimal
	MaxPrice      *decimal.Decimal
	MinRating     *float64
	Colors        []string
	Sizes         []string
	Brand         string

	FreeDelivery    bool
	HomeDelivery    bool
	DesktopDelivery bool
	InStockOnly     bool
	OnSale          bool

	Sort  domain.ProductSort
	Order domain.SortOrder
}
