package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// ProductID is the opaque identifier assigned to a product by the catalog.
type ProductID = string

// SortOrder indicates ascending or descending ordering for list queries.
type SortOrder string

const (
	// SortAsc sorts results in ascending order.
	SortAsc SortOrder = "asc"
	// SortDesc sorts results in descending order.
	SortDesc SortOrder = "desc"
)

// ProductSort indicates the field used to order product listings.
type ProductSort string

const (
	ProductSortCreatedAt     ProductSort = "created_at"
	ProductSortPrice         ProductSort = "price"
	ProductSortName          ProductSort = "name"
	ProductSortViewCount     ProductSort = "view_count"
	ProductSortAverageRating ProductSort = "average_rating"
	ProductSortDiscount      ProductSort = "discount_percentage"
)

// Product is a read-only catalog entry. Prices are stored in Algerian dinars.
type Product struct {
	ID            ProductID
	Name          string
	NameAR        string
	Description   string
	DescriptionAR string
	Price         decimal.Decimal
	ImageURL      string
	CategoryID    string
	SubcategoryID string
	StoreID       string
	OwnerID       string
	SupplierName  string
	Brand         string
	Colors        []string
	Sizes         []string

	HomeDeliveryAvailable    bool
	DesktopDeliveryAvailable bool
	FreeDelivery             bool
	SoldOut                  bool

	ViewCount     int64
	AverageRating float64
	// DiscountPercentage is zero for products that are not on sale.
	DiscountPercentage float64
	CreatedAt          time.Time
}

var hundred = decimal.NewFromInt(100)

// OnSale reports whether the product carries a positive discount.
func (p Product) OnSale() bool {
	return p.DiscountPercentage > 0
}

// SalePrice is the price after the discount, rounded to the dinar cent.
func (p Product) SalePrice() decimal.Decimal {
	if !p.OnSale() {
		return p.Price
	}
	off := p.Price.Mul(decimal.NewFromFloat(p.DiscountPercentage)).Div(hundred)
	return p.Price.Sub(off).Round(2)
}

// Savings is the amount taken off the price by the discount.
func (p Product) Savings() decimal.Decimal {
	return p.Price.Sub(p.SalePrice())
}

// Category is a node of the two-level category forest. ParentID is nil for main categories.
type Category struct {
	ID        string
	Name      string
	NameAR    string
	Slug      string
	ImageURL  string
	ParentID  *string
	CreatedAt time.Time
}

// IsMain reports whether the category sits at the top of the forest.
func (c Category) IsMain() bool {
	return c.ParentID == nil
}

// Store is the seller storefront owned by a single auth identity.
type Store struct {
	ID      string
	OwnerID string
	Name    string
}

// ProductPage is a numbered page of listing results.
type ProductPage struct {
	Items       []Product
	TotalCount  int
	TotalPages  int
	CurrentPage int
	PageSize    int
}

// BrandSummary is one entry of the brand directory.
type BrandSummary struct {
	Name  string
	Slug  string
	Count int
}

// PriceBounds describes the catalog-wide price domain used by range filters.
type PriceBounds struct {
	Min float64
	Max float64
}

const (
	// HealthStatusOK indicates all dependencies are healthy.
	HealthStatusOK = "ok"
	// HealthStatusDegraded indicates at least one dependency is degraded but service remains running.
	HealthStatusDegraded = "degraded"
	// HealthStatusError indicates the service or a critical dependency is unavailable.
	HealthStatusError = "error"
)

// SystemHealthCheck describes the outcome of an individual dependency probe.
type SystemHealthCheck struct {
	Status    string
	Detail    string
	Error     string
	Latency   time.Duration
	CheckedAt time.Time
}

// SystemHealthReport aggregates dependency status for health endpoints.
type SystemHealthReport struct {
	Status      string
	Checks      map[string]SystemHealthCheck
	Version     string
	CommitSHA   string
	Environment string
	Uptime      time.Duration
	GeneratedAt time.Time
}
