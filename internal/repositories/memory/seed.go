package memory

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	domain "github.com/bazzarna/storefront/internal/domain"
)

// ErrSeedInvalid is returned when a seed file cannot be decoded.
var ErrSeedInvalid = errors.New("memory catalog: invalid seed")

type seedFile struct {
	Products   []seedProduct  `json:"products"`
	Categories []seedCategory `json:"categories"`
	Stores     []seedStore    `json:"stores"`
}

type seedProduct struct {
	ID            string          `json:"id"`
	Name          string          `json:"name"`
	NameAR        string          `json:"name_ar"`
	Description   string          `json:"description"`
	DescriptionAR string          `json:"description_ar"`
	Price         decimal.Decimal `json:"price"`
	ImageURL      string          `json:"image_url"`
	CategoryID    string          `json:"category_id"`
	SubcategoryID string          `json:"subcategory_id"`
	StoreID       string          `json:"store_id"`
	OwnerID       string          `json:"owner_id"`
	SupplierName  string          `json:"supplier_name"`
	Brand         string          `json:"brand"`
	Colors        []string        `json:"colors"`
	Sizes         []string        `json:"sizes"`
	HomeDelivery  bool            `json:"is_delivery_home_available"`
	DeskDelivery  bool            `json:"is_delivery_desktop_available"`
	FreeDelivery  bool            `json:"is_free_delivery"`
	SoldOut       bool            `json:"is_sold_out"`
	ViewCount     int64           `json:"view_count"`
	AverageRating float64         `json:"average_rating"`
	Discount      float64         `json:"discount_percentage"`
	CreatedAt     time.Time       `json:"created_at"`
}

type seedCategory struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	NameAR    string    `json:"name_ar"`
	Slug      string    `json:"slug"`
	ImageURL  string    `json:"image_url"`
	ParentID  *string   `json:"parent_id"`
	CreatedAt time.Time `json:"created_at"`
}

type seedStore struct {
	ID      string `json:"id"`
	OwnerID string `json:"owner_id"`
	Name    string `json:"name"`
}

// LoadSeedFile reads a JSON catalogue seed from path. An empty path yields an empty catalogue.
func LoadSeedFile(path string) (*Catalog, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return NewCatalog(nil, nil, nil), nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("memory catalog: open seed: %w", err)
	}
	defer f.Close()
	return LoadSeed(f)
}

// LoadSeed decodes a JSON catalogue seed with top-level products, categories and stores arrays.
func LoadSeed(r io.Reader) (*Catalog, error) {
	var seed seedFile
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&seed); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSeedInvalid, err)
	}

	products := make([]domain.Product, 0, len(seed.Products))
	for i, p := range seed.Products {
		if strings.TrimSpace(p.ID) == "" {
			return nil, fmt.Errorf("%w: product %d has no id", ErrSeedInvalid, i)
		}
		nameAR := p.NameAR
		if nameAR == "" {
			nameAR = p.Name
		}
		products = append(products, domain.Product{
			ID: p.ID, Name: p.Name, NameAR: nameAR,
			Description: p.Description, DescriptionAR: p.DescriptionAR,
			Price: p.Price, ImageURL: p.ImageURL,
			CategoryID: p.CategoryID, SubcategoryID: p.SubcategoryID,
			StoreID: p.StoreID, OwnerID: p.OwnerID, SupplierName: p.SupplierName, Brand: p.Brand,
			Colors: p.Colors, Sizes: p.Sizes,
			HomeDeliveryAvailable: p.HomeDelivery, DesktopDeliveryAvailable: p.DeskDelivery,
			FreeDelivery: p.FreeDelivery, SoldOut: p.SoldOut,
			ViewCount: p.ViewCount, AverageRating: p.AverageRating, DiscountPercentage: p.Discount,
			CreatedAt: p.CreatedAt,
		})
	}

	categories := make([]domain.Category, 0, len(seed.Categories))
	for _, c := range seed.Categories {
		nameAR := c.NameAR
		if nameAR == "" {
			nameAR = c.Name
		}
		categories = append(categories, domain.Category{
			ID: c.ID, Name: c.Name, NameAR: nameAR, Slug: c.Slug,
			ImageURL: c.ImageURL, ParentID: c.ParentID, CreatedAt: c.CreatedAt,
		})
	}

	stores := make([]domain.Store, 0, len(seed.Stores))
	for _, s := range seed.Stores {
		stores = append(stores, domain.Store{ID: s.ID, OwnerID: s.OwnerID, Name: s.Name})
	}
	return NewCatalog(products, categories, stores), nil
}
