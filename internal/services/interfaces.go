package services

import (
	"context"
	"time"

	domain "github.com/bazzarna/storefront/internal/domain"
	"github.com/bazzarna/storefront/internal/repositories"
)

// Type aliases expose domain models to the services package without reversing dependency direction.
type (
	Product            = domain.Product
	Category           = domain.Category
	ProductPage        = domain.ProductPage
	PriceBounds        = domain.PriceBounds
	BrandSummary       = domain.BrandSummary
	SystemHealthReport = domain.SystemHealthReport
	ProductListFilter  = repositories.ProductListFilter
)

// Logger is the func-typed structured logger services accept.
type Logger func(ctx context.Context, event string, fields map[string]any)

func nopLogger(context.Context, string, map[string]any) {}

// CatalogService serves product listings, product detail and the category forest.
type CatalogService interface {
	ListProducts(ctx context.Context, filter ProductListFilter) (ProductPage, error)
	GetProduct(ctx context.Context, productID string) (Product, error)
	PriceBounds(ctx context.Context) (PriceBounds, error)
	Categories(ctx context.Context) ([]Category, error)
	MainCategories(ctx context.Context) ([]Category, error)
	SubCategories(ctx context.Context, parentID string) ([]Category, error)
	Brands(ctx context.Context, search string) ([]BrandSummary, error)
	// BrandProducts lists the products of the brand named by a directory slug.
	BrandProducts(ctx context.Context, slug string, filter ProductListFilter) (BrandProductPage, error)
	SaleProducts(ctx context.Context, filter ProductListFilter) (SalePage, error)
}

// RecentlyViewedService manages the per-profile recently viewed list.
type RecentlyViewedService interface {
	Open(ctx context.Context, profileID string) (*RecentlyViewed, error)
	Record(ctx context.Context, profileID, productID string) ([]string, error)
	Clear(ctx context.Context, profileID string) error
	List(ctx context.Context, profileID string) ([]string, error)
	Products(ctx context.Context, profileID string) ([]Product, error)
}

// StoreAdminService runs the administrative store deletion.
type StoreAdminService interface {
	DeleteStore(ctx context.Context, ownerID string) (DeleteStoreResult, error)
}

// SystemService exposes health information for readiness endpoints.
type SystemService interface {
	HealthReport(ctx context.Context) (SystemHealthReport, error)
}

// AuthUserDeleter removes an identity from the authentication provider.
type AuthUserDeleter interface {
	DeleteUser(ctx context.Context, uid string) error
}

// StoreDeletedEvent is published after a store has been removed.
type StoreDeletedEvent struct {
	OperationID string    `json:"operationId"`
	OwnerID     string    `json:"ownerId"`
	StoreID     string    `json:"storeId,omitempty"`
	DeletedAt   time.Time `json:"deletedAt"`
}

// StoreEventPublisher delivers store lifecycle events.
type StoreEventPublisher interface {
	PublishStoreDeleted(ctx context.Context, event StoreDeletedEvent) (string, error)
}
