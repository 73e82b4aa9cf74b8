package services

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/shopspring/decimal"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	domain "github.com/bazzarna/storefront/internal/domain"
	"github.com/bazzarna/storefront/internal/platform/pagination"
	"github.com/bazzarna/storefront/internal/repositories"
)

var (
	// ErrCatalogInvalidInput indicates a malformed listing or lookup request.
	ErrCatalogInvalidInput = errors.New("catalog service: invalid input")
	// ErrCatalogNotFound indicates a missing product.
	ErrCatalogNotFound = errors.New("catalog service: not found")
	// ErrCatalogUnavailable indicates the catalogue backend could not be reached.
	ErrCatalogUnavailable = errors.New("catalog service: unavailable")
)

var validProductSorts = map[domain.ProductSort]struct{}{
	domain.ProductSortCreatedAt:     {},
	domain.ProductSortPrice:         {},
	domain.ProductSortName:          {},
	domain.ProductSortViewCount:     {},
	domain.ProductSortAverageRating: {},
	domain.ProductSortDiscount:      {},
}

// BrandProductPage is a listing narrowed to one brand. Brand is the display name.
type BrandProductPage struct {
	Brand string
	Page  ProductPage
}

// SalePage is a listing of discounted products. Savings totals the discount of the page items.
type SalePage struct {
	Page    ProductPage
	Savings decimal.Decimal
}

// CatalogServiceDeps wires the catalog service.
type CatalogServiceDeps struct {
	Products        repositories.ProductRepository
	Categories      repositories.CategoryRepository
	DefaultPageSize int
	MaxPageSize     int
	Logger          func(ctx context.Context, event string, fields map[string]any)
}

type catalogService struct {
	products        repositories.ProductRepository
	categories      repositories.CategoryRepository
	defaultPageSize int
	maxPageSize     int
	logger          Logger
}

var _ CatalogService = (*catalogService)(nil)

// NewCatalogService constructs the storefront catalog service.
func NewCatalogService(deps CatalogServiceDeps) (CatalogService, error) {
	if deps.Products == nil {
		return nil, errors.New("catalog service: product repository is required")
	}
	if deps.Categories == nil {
		return nil, errors.New("catalog service: category repository is required")
	}
	size := deps.DefaultPageSize
	if size <= 0 {
		size = pagination.DefaultPageSize
	}
	maxSize := deps.MaxPageSize
	if maxSize <= 0 {
		maxSize = pagination.DefaultMaxPageSize
	}
	logger := Logger(deps.Logger)
	if logger == nil {
		logger = nopLogger
	}
	return &catalogService{
		products:        deps.Products,
		categories:      deps.Categories,
		defaultPageSize: size,
		maxPageSize:     maxSize,
		logger:          logger,
	}, nil
}

func (s *catalogService) ListProducts(ctx context.Context, filter ProductListFilter) (ProductPage, error) {
	if filter.Page == 0 {
		filter.Page = 1
	}
	if filter.Page < 0 {
		return ProductPage{}, fmt.Errorf("%w: page must be positive", ErrCatalogInvalidInput)
	}
	switch {
	case filter.PageSize == 0:
		filter.PageSize = s.defaultPageSize
	case filter.PageSize < 0:
		return ProductPage{}, fmt.Errorf("%w: page size must be positive", ErrCatalogInvalidInput)
	case filter.PageSize > s.maxPageSize:
		filter.PageSize = s.maxPageSize
	}
	if filter.Sort == "" {
		filter.Sort = domain.ProductSortCreatedAt
	}
	if _, ok := validProductSorts[filter.Sort]; !ok {
		return ProductPage{}, fmt.Errorf("%w: unsupported sort %q", ErrCatalogInvalidInput, filter.Sort)
	}
	switch filter.Order {
	case "":
		filter.Order = domain.SortDesc
	case domain.SortAsc, domain.SortDesc:
	default:
		return ProductPage{}, fmt.Errorf("%w: unsupported order %q", ErrCatalogInvalidInput, filter.Order)
	}
	if filter.MinPrice != nil && filter.MaxPrice != nil && filter.MinPrice.GreaterThan(*filter.MaxPrice) {
		return ProductPage{}, fmt.Errorf("%w: min price exceeds max price", ErrCatalogInvalidInput)
	}
	filter.Search = strings.TrimSpace(filter.Search)

	page, err := s.products.List(ctx, filter)
	if err != nil {
		s.logger(ctx, "catalog.list_failed", map[string]any{"error": err})
		return ProductPage{}, s.mapError(err)
	}
	totalPages := pagination.TotalPages(page.TotalCount, filter.PageSize)
	if totalPages > 0 && filter.Page > totalPages {
		s.logger(ctx, "catalog.page_clamped", map[string]any{"requested": filter.Page, "totalPages": totalPages})
		filter.Page = totalPages
		page, err = s.products.List(ctx, filter)
		if err != nil {
			s.logger(ctx, "catalog.list_failed", map[string]any{"error": err})
			return ProductPage{}, s.mapError(err)
		}
		totalPages = pagination.TotalPages(page.TotalCount, filter.PageSize)
	}
	if page.Items == nil {
		page.Items = []Product{}
	}
	page.PageSize = filter.PageSize
	page.CurrentPage = filter.Page
	page.TotalPages = totalPages
	return page, nil
}

// Brands returns the brand directory in Arabic collation order. A non-blank search keeps
// brands whose name contains it, ignoring case.
func (s *catalogService) Brands(ctx context.Context, search string) ([]BrandSummary, error) {
	brands, err := s.products.Brands(ctx)
	if err != nil {
		s.logger(ctx, "catalog.brands_failed", map[string]any{"error": err})
		return nil, s.mapError(err)
	}
	needle := strings.ToLower(strings.TrimSpace(search))
	out := make([]BrandSummary, 0, len(brands))
	for _, b := range brands {
		b.Name = strings.TrimSpace(b.Name)
		if b.Name == "" {
			continue
		}
		if needle != "" && !strings.Contains(strings.ToLower(b.Name), needle) {
			continue
		}
		b.Slug = domain.BrandSlug(b.Name)
		out = append(out, b)
	}
	// Collators keep per-call buffers and must not be shared across goroutines.
	c := collate.New(language.Arabic, collate.IgnoreCase)
	sort.SliceStable(out, func(i, j int) bool {
		return c.CompareString(out[i].Name, out[j].Name) < 0
	})
	return out, nil
}

func (s *catalogService) BrandProducts(ctx context.Context, slug string, filter ProductListFilter) (BrandProductPage, error) {
	name := domain.BrandFromSlug(slug)
	if name == "" {
		return BrandProductPage{}, fmt.Errorf("%w: brand is required", ErrCatalogInvalidInput)
	}
	filter.Brand = name
	page, err := s.ListProducts(ctx, filter)
	if err != nil {
		return BrandProductPage{}, err
	}
	if len(page.Items) > 0 && strings.TrimSpace(page.Items[0].Brand) != "" {
		name = page.Items[0].Brand
	}
	return BrandProductPage{Brand: name, Page: page}, nil
}

// SaleProducts lists discounted products, largest discount first unless a sort is given.
func (s *catalogService) SaleProducts(ctx context.Context, filter ProductListFilter) (SalePage, error) {
	filter.OnSale = true
	if filter.Sort == "" {
		filter.Sort = domain.ProductSortDiscount
		filter.Order = domain.SortDesc
	}
	page, err := s.ListProducts(ctx, filter)
	if err != nil {
		return SalePage{}, err
	}
	savings := decimal.Zero
	for _, p := range page.Items {
		savings = savings.Add(p.Savings())
	}
	return SalePage{Page: page, Savings: savings}, nil
}

func (s *catalogService) GetProduct(ctx context.Context, productID string) (Product, error) {
	productID = strings.TrimSpace(productID)
	if productID == "" {
		return Product{}, fmt.Errorf("%w: product id is required", ErrCatalogInvalidInput)
	}
	product, err := s.products.FindByID(ctx, productID)
	if err != nil {
		return Product{}, s.mapError(err)
	}
	return product, nil
}

func (s *catalogService) PriceBounds(ctx context.Context) (PriceBounds, error) {
	bounds, err := s.products.PriceBounds(ctx)
	if err != nil {
		s.logger(ctx, "catalog.price_bounds_failed", map[string]any{"error": err})
		return PriceBounds{}, s.mapError(err)
	}
	return bounds, nil
}

func (s *catalogService) Categories(ctx context.Context) ([]Category, error) {
	all, err := s.categories.ListAll(ctx)
	if err != nil {
		s.logger(ctx, "catalog.categories_failed", map[string]any{"error": err})
		return nil, s.mapError(err)
	}
	if all == nil {
		all = []Category{}
	}
	return all, nil
}

func (s *catalogService) MainCategories(ctx context.Context) ([]Category, error) {
	all, err := s.Categories(ctx)
	if err != nil {
		return nil, err
	}
	return SelectableCategories(all), nil
}

func (s *catalogService) SubCategories(ctx context.Context, parentID string) ([]Category, error) {
	all, err := s.Categories(ctx)
	if err != nil {
		return nil, err
	}
	return ChildCategories(all, strings.TrimSpace(parentID)), nil
}

func (s *catalogService) mapError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	if errors.Is(err, repositories.ErrInvalidQuery) {
		return fmt.Errorf("%w: %v", ErrCatalogInvalidInput, err)
	}
	var repoErr repositories.RepositoryError
	if errors.As(err, &repoErr) {
		switch {
		case repoErr.IsNotFound():
			return fmt.Errorf("%w: %v", ErrCatalogNotFound, err)
		case repoErr.IsUnavailable():
			return fmt.Errorf("%w: %v", ErrCatalogUnavailable, err)
		}
	}
	return fmt.Errorf("catalog service: %w", err)
}
