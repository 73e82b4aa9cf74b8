package handlers

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/microcosm-cc/bluemonday"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	domain "github.com/bazzarna/storefront/internal/domain"
	"github.com/bazzarna/storefront/internal/platform/i18n"
	"github.com/bazzarna/storefront/internal/platform/pagination"
	"github.com/bazzarna/storefront/internal/platform/requestctx"
	"github.com/bazzarna/storefront/internal/services"
)

const (
	productCacheControl  = "public, max-age=60"
	categoryCacheControl = "public, max-age=300"
	maxSimilarLimit      = 24
)

var descriptionPolicy = newDescriptionPolicy()

// PublicHandlers exposes the unauthenticated storefront catalogue.
type PublicHandlers struct {
	catalog  services.CatalogService
	recent   services.RecentlyViewedService
	similar  *services.SimilarTracker
	messages messages

	defaultPageSize int
	maxPageSize     int
}

// PublicOption customises construction of PublicHandlers.
type PublicOption func(*PublicHandlers)

// WithPublicCatalogService injects the catalog service dependency.
func WithPublicCatalogService(svc services.CatalogService) PublicOption {
	return func(h *PublicHandlers) {
		h.catalog = svc
	}
}

// WithPublicRecentlyViewed records product detail views into the visitor's history.
func WithPublicRecentlyViewed(svc services.RecentlyViewedService) PublicOption {
	return func(h *PublicHandlers) {
		h.recent = svc
	}
}

// WithPublicSimilarTracker injects the tracker behind the similar products endpoint.
func WithPublicSimilarTracker(tracker *services.SimilarTracker) PublicOption {
	return func(h *PublicHandlers) {
		h.similar = tracker
	}
}

// WithPublicMessages sets the bundle used for error messages.
func WithPublicMessages(bundle *i18n.Bundle) PublicOption {
	return func(h *PublicHandlers) {
		h.messages = newMessages(bundle)
	}
}

// WithPublicPageSize overrides the listing page size defaults.
func WithPublicPageSize(defaultSize, maxSize int) PublicOption {
	return func(h *PublicHandlers) {
		if defaultSize > 0 {
			h.defaultPageSize = defaultSize
		}
		if maxSize > 0 {
			h.maxPageSize = maxSize
		}
	}
}

// NewPublicHandlers constructs handlers for public catalog endpoints.
func NewPublicHandlers(opts ...PublicOption) *PublicHandlers {
	h := &PublicHandlers{
		defaultPageSize: pagination.DefaultPageSize,
		maxPageSize:     pagination.DefaultMaxPageSize,
	}
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

// Routes registers public catalog endpoints against the provided router.
func (h *PublicHandlers) Routes(r chi.Router) {
	if r == nil {
		return
	}
	r.Get("/categories", h.listCategories)
	r.Get("/categories/main", h.listMainCategories)
	r.Get("/categories/{categoryID}/children", h.listChildCategories)
	r.Get("/products", h.listProducts)
	r.Get("/products/{productID}", h.getProduct)
	r.Get("/products/{productID}/similar", h.similarProducts)
	r.Get("/brands", h.listBrands)
	r.Get("/brands/{brandSlug}/products", h.listBrandProducts)
	r.Get("/sale", h.listSale)
}

func (h *PublicHandlers) listCategories(w http.ResponseWriter, r *http.Request) {
	h.writeCategories(w, r, func(ctx context.Context) ([]services.Category, error) {
		return h.catalog.Categories(ctx)
	})
}

func (h *PublicHandlers) listMainCategories(w http.ResponseWriter, r *http.Request) {
	h.writeCategories(w, r, func(ctx context.Context) ([]services.Category, error) {
		return h.catalog.MainCategories(ctx)
	})
}

func (h *PublicHandlers) listChildCategories(w http.ResponseWriter, r *http.Request) {
	parentID := strings.TrimSpace(chi.URLParam(r, "categoryID"))
	if parentID == "" {
		h.messages.write(w, r, "invalid_category_id", "validation.required_fields", http.StatusBadRequest)
		return
	}
	h.writeCategories(w, r, func(ctx context.Context) ([]services.Category, error) {
		return h.catalog.SubCategories(ctx, parentID)
	})
}

func (h *PublicHandlers) writeCategories(w http.ResponseWriter, r *http.Request, load func(context.Context) ([]services.Category, error)) {
	if h.catalog == nil {
		h.messages.write(w, r, "catalog_unavailable", "network.server_error", http.StatusServiceUnavailable)
		return
	}
	categories, err := load(r.Context())
	if err != nil {
		h.messages.catalogError(w, r, err, "categories.fetch_failed", "categories.not_found")
		return
	}

	locale := i18n.FromContext(r)
	items := make([]categoryPayload, 0, len(categories))
	for _, c := range categories {
		items = append(items, buildCategoryPayload(c, locale))
	}
	w.Header().Set("Cache-Control", categoryCacheControl)
	writeJSON(w, http.StatusOK, categoryListResponse{Categories: items})
}

func (h *PublicHandlers) listProducts(w http.ResponseWriter, r *http.Request) {
	if h.catalog == nil {
		h.messages.write(w, r, "catalog_unavailable", "network.server_error", http.StatusServiceUnavailable)
		return
	}
	filter, priceRange, ok := h.parseListing(w, r, domain.ProductSortCreatedAt)
	if !ok {
		return
	}

	page, err := h.catalog.ListProducts(r.Context(), filter)
	if err != nil {
		h.messages.catalogError(w, r, err, "products.fetch_failed", "products.not_found")
		return
	}

	w.Header().Set("Cache-Control", productCacheControl)
	writeJSON(w, http.StatusOK, buildProductListResponse(page, filter, priceRange, i18n.FromContext(r)))
}

func (h *PublicHandlers) listBrands(w http.ResponseWriter, r *http.Request) {
	if h.catalog == nil {
		h.messages.write(w, r, "catalog_unavailable", "network.server_error", http.StatusServiceUnavailable)
		return
	}
	brands, err := h.catalog.Brands(r.Context(), r.URL.Query().Get("q"))
	if err != nil {
		h.messages.catalogError(w, r, err, "brands.fetch_failed", "brands.not_found")
		return
	}
	items := make([]brandPayload, 0, len(brands))
	for _, b := range brands {
		items = append(items, brandPayload{Name: b.Name, Slug: b.Slug, Count: b.Count})
	}
	w.Header().Set("Cache-Control", categoryCacheControl)
	writeJSON(w, http.StatusOK, brandListResponse{Brands: items})
}

func (h *PublicHandlers) listBrandProducts(w http.ResponseWriter, r *http.Request) {
	if h.catalog == nil {
		h.messages.write(w, r, "catalog_unavailable", "network.server_error", http.StatusServiceUnavailable)
		return
	}
	slug := strings.TrimSpace(chi.URLParam(r, "brandSlug"))
	if slug == "" {
		h.messages.write(w, r, "invalid_brand", "validation.required_fields", http.StatusBadRequest)
		return
	}
	filter, priceRange, ok := h.parseListing(w, r, domain.ProductSortCreatedAt)
	if !ok {
		return
	}

	listing, err := h.catalog.BrandProducts(r.Context(), slug, filter)
	if err != nil {
		h.messages.catalogError(w, r, err, "products.fetch_failed", "products.not_found")
		return
	}

	w.Header().Set("Cache-Control", productCacheControl)
	writeJSON(w, http.StatusOK, brandProductsResponse{
		Brand:               listing.Brand,
		Slug:                slug,
		productListResponse: buildProductListResponse(listing.Page, filter, priceRange, i18n.FromContext(r)),
	})
}

func (h *PublicHandlers) listSale(w http.ResponseWriter, r *http.Request) {
	if h.catalog == nil {
		h.messages.write(w, r, "catalog_unavailable", "network.server_error", http.StatusServiceUnavailable)
		return
	}
	filter, priceRange, ok := h.parseListing(w, r, domain.ProductSortDiscount)
	if !ok {
		return
	}

	sale, err := h.catalog.SaleProducts(r.Context(), filter)
	if err != nil {
		h.messages.catalogError(w, r, err, "products.fetch_failed", "products.not_found")
		return
	}

	w.Header().Set("Cache-Control", productCacheControl)
	writeJSON(w, http.StatusOK, saleResponse{
		TotalSavings:        sale.Savings.StringFixed(2),
		productListResponse: buildProductListResponse(sale.Page, filter, priceRange, i18n.FromContext(r)),
	})
}

// parseListing reads paging, filters, category selection and the price range shared by the
// listing endpoints. It writes the error response itself and reports false on failure.
func (h *PublicHandlers) parseListing(w http.ResponseWriter, r *http.Request, defaultSort domain.ProductSort) (services.ProductListFilter, *priceRangePayload, bool) {
	values := r.URL.Query()
	params, err := pagination.Parse(values, pagination.Options{
		DefaultPageSize: h.defaultPageSize,
		MaxPageSize:     h.maxPageSize,
		DefaultSort:     string(defaultSort),
		DefaultDesc:     true,
		AllowedSorts:    productSortFields,
	})
	if err != nil {
		h.writePaginationError(w, r, err)
		return services.ProductListFilter{}, nil, false
	}

	filter, err := parseProductListFilter(values)
	if err != nil {
		h.messages.writeWithReason(w, r, "invalid_filter", "validation.invalid_filter", http.StatusBadRequest, err)
		return services.ProductListFilter{}, nil, false
	}
	filter.Page = params.Page
	filter.PageSize = params.PageSize
	filter.Sort = domain.ProductSort(params.Sort)
	filter.Order = domain.SortAsc
	if params.Desc {
		filter.Order = domain.SortDesc
	}

	selection := services.NewCategorySelection(values["category"]...)
	if toggle := strings.TrimSpace(values.Get("toggle")); toggle != "" {
		selection.Toggle(toggle)
	}
	filter.CategoryIDs = selection.Selected()

	priceRange, err := h.applyPriceRange(r, values, &filter)
	if err != nil {
		var priceErr *priceParamError
		if errors.As(err, &priceErr) {
			h.messages.writeWithReason(w, r, "invalid_price", "validation.price_invalid", http.StatusBadRequest, err)
			return services.ProductListFilter{}, nil, false
		}
		h.messages.catalogError(w, r, err, "products.fetch_failed", "products.not_found")
		return services.ProductListFilter{}, nil, false
	}
	return filter, priceRange, true
}

func buildProductListResponse(page services.ProductPage, filter services.ProductListFilter, priceRange *priceRangePayload, locale string) productListResponse {
	items := make([]productPayload, 0, len(page.Items))
	for _, p := range page.Items {
		items = append(items, buildProductPayload(p, locale))
	}
	return productListResponse{
		Items:       items,
		TotalCount:  page.TotalCount,
		TotalPages:  page.TotalPages,
		CurrentPage: page.CurrentPage,
		PageSize:    page.PageSize,
		Pagination: paginationPayload{
			Sequence:   pagination.ComputePageSequence(page.CurrentPage, page.TotalPages),
			Navigation: pagination.Navigation(page.CurrentPage, page.TotalPages),
		},
		SelectedCategories: filter.CategoryIDs,
		PriceRange:         priceRange,
	}
}

type priceParamError struct {
	param string
	raw   string
}

func (e *priceParamError) Error() string {
	return e.param + " must be a number, got " + strconv.Quote(e.raw)
}

// applyPriceRange runs minPrice and maxPrice through a PriceRange seeded with the catalogue
// bounds. Rejected bounds are reported back instead of being applied. A bounds lookup failure
// only matters when the client asked for a price filter.
func (h *PublicHandlers) applyPriceRange(r *http.Request, values url.Values, filter *services.ProductListFilter) (*priceRangePayload, error) {
	minRaw := strings.TrimSpace(values.Get("minPrice"))
	maxRaw := strings.TrimSpace(values.Get("maxPrice"))
	var minPrice, maxPrice *decimal.Decimal
	if minRaw != "" {
		parsed, err := decimal.NewFromString(minRaw)
		if err != nil {
			return nil, &priceParamError{param: "minPrice", raw: minRaw}
		}
		minPrice = &parsed
	}
	if maxRaw != "" {
		parsed, err := decimal.NewFromString(maxRaw)
		if err != nil {
			return nil, &priceParamError{param: "maxPrice", raw: maxRaw}
		}
		maxPrice = &parsed
	}

	bounds, err := h.catalog.PriceBounds(r.Context())
	if err != nil {
		if minPrice == nil && maxPrice == nil {
			requestctx.Logger(r.Context()).Warn("price bounds unavailable", zap.Error(err))
			return nil, nil
		}
		return nil, err
	}

	payload := &priceRangePayload{Domain: priceDomainPayload{Min: bounds.Min, Max: bounds.Max}}
	model := services.NewPriceRange(bounds.Min, bounds.Max, nil)
	if minPrice != nil {
		if model.SetMin(minPrice.InexactFloat64()) {
			filter.MinPrice = minPrice
		} else {
			payload.Rejected = append(payload.Rejected, "minPrice")
		}
	}
	if maxPrice != nil {
		if model.SetMax(maxPrice.InexactFloat64()) {
			filter.MaxPrice = maxPrice
		} else {
			payload.Rejected = append(payload.Rejected, "maxPrice")
		}
	}
	payload.Min, payload.Max = model.Bounds()
	if bounds.Max != bounds.Min {
		minPct := services.PercentagePosition(payload.Min, bounds.Min, bounds.Max)
		maxPct := services.PercentagePosition(payload.Max, bounds.Min, bounds.Max)
		payload.MinPercent = &minPct
		payload.MaxPercent = &maxPct
	}
	return payload, nil
}

func (h *PublicHandlers) writePaginationError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, pagination.ErrInvalidPage):
		h.messages.writeWithReason(w, r, "invalid_page", "validation.invalid_page", http.StatusBadRequest, err)
	case errors.Is(err, pagination.ErrInvalidPageSize):
		h.messages.writeWithReason(w, r, "invalid_page_size", "validation.invalid_page_size", http.StatusBadRequest, err)
	case errors.Is(err, pagination.ErrInvalidSort):
		h.messages.writeWithReason(w, r, "invalid_sort", "validation.invalid_sort", http.StatusBadRequest, err)
	default:
		h.messages.writeWithReason(w, r, "invalid_request", "validation.invalid_filter", http.StatusBadRequest, err)
	}
}

func (h *PublicHandlers) getProduct(w http.ResponseWriter, r *http.Request) {
	if h.catalog == nil {
		h.messages.write(w, r, "catalog_unavailable", "network.server_error", http.StatusServiceUnavailable)
		return
	}

	productID := strings.TrimSpace(chi.URLParam(r, "productID"))
	if productID == "" {
		h.messages.write(w, r, "invalid_product_id", "validation.required_fields", http.StatusBadRequest)
		return
	}

	product, err := h.catalog.GetProduct(r.Context(), productID)
	if err != nil {
		h.messages.catalogError(w, r, err, "products.fetch_failed", "products.not_found")
		return
	}

	if h.recent != nil {
		if profileID := requestctx.ProfileID(r.Context()); profileID != "" {
			if _, err := h.recent.Record(r.Context(), profileID, product.ID); err != nil {
				requestctx.Logger(r.Context()).Warn("recently viewed record failed",
					zap.String("productId", product.ID),
					zap.Error(err),
				)
			}
		}
	}

	w.Header().Set("Cache-Control", "private, no-store")
	writeJSON(w, http.StatusOK, buildProductDetailPayload(product, i18n.FromContext(r)))
}

func (h *PublicHandlers) similarProducts(w http.ResponseWriter, r *http.Request) {
	if h.catalog == nil || h.similar == nil {
		h.messages.write(w, r, "catalog_unavailable", "network.server_error", http.StatusServiceUnavailable)
		return
	}

	productID := strings.TrimSpace(chi.URLParam(r, "productID"))
	if productID == "" {
		h.messages.write(w, r, "invalid_product_id", "validation.required_fields", http.StatusBadRequest)
		return
	}
	limit := services.DefaultSimilarLimit
	if raw := strings.TrimSpace(r.URL.Query().Get("limit")); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 || parsed > maxSimilarLimit {
			h.messages.writeWithReason(w, r, "invalid_limit", "validation.invalid_filter", http.StatusBadRequest,
				errors.New("limit must be between 1 and "+strconv.Itoa(maxSimilarLimit)))
			return
		}
		limit = parsed
	}

	product, err := h.catalog.GetProduct(r.Context(), productID)
	if err != nil {
		h.messages.catalogError(w, r, err, "products.fetch_failed", "products.not_found")
		return
	}

	scope := requestctx.ProfileID(r.Context())
	if scope == "" {
		scope = "request:" + firstNonBlank(middleware.GetReqID(r.Context()), productID)
	}
	result, err := h.similar.Resolve(r.Context(), scope, services.SimilarRequest{
		ProductID:  product.ID,
		CategoryID: product.CategoryID,
		Brand:      product.Brand,
		Limit:      limit,
	})
	if errors.Is(err, services.ErrSimilarSuperseded) {
		h.messages.write(w, r, "request_superseded", "similar.superseded", http.StatusConflict)
		return
	}
	if err != nil {
		h.messages.catalogError(w, r, err, "products.fetch_failed", "products.not_found")
		return
	}

	locale := i18n.FromContext(r)
	items := make([]productPayload, 0, len(result.Products))
	for _, p := range result.Products {
		items = append(items, buildProductPayload(p, locale))
	}
	writeJSON(w, http.StatusOK, similarProductsResponse{
		Items:      items,
		RequestID:  result.RequestID,
		Generation: result.Generation,
	})
}

var productSortFields = []string{
	string(domain.ProductSortCreatedAt),
	string(domain.ProductSortPrice),
	string(domain.ProductSortName),
	string(domain.ProductSortViewCount),
	string(domain.ProductSortAverageRating),
	string(domain.ProductSortDiscount),
}

// parseProductListFilter reads the non-paging listing filters.
func parseProductListFilter(values url.Values) (services.ProductListFilter, error) {
	filter := services.ProductListFilter{
		SubcategoryID: strings.TrimSpace(values.Get("subcategory")),
		StoreID:       strings.TrimSpace(values.Get("store")),
		Brand:         strings.TrimSpace(values.Get("brand")),
		Search:        strings.TrimSpace(values.Get("q")),
		Colors:        parseListParameter(values, "color"),
		Sizes:         parseListParameter(values, "size"),
	}

	if raw := strings.TrimSpace(values.Get("minRating")); raw != "" {
		rating, err := strconv.ParseFloat(raw, 64)
		if err != nil || rating < 0 || rating > 5 {
			return services.ProductListFilter{}, errors.New("minRating must be between 0 and 5")
		}
		filter.MinRating = &rating
	}

	flags := []struct {
		name string
		dst  *bool
	}{
		{"freeDelivery", &filter.FreeDelivery},
		{"homeDelivery", &filter.HomeDelivery},
		{"desktopDelivery", &filter.DesktopDelivery},
		{"inStock", &filter.InStockOnly},
	}
	for _, flag := range flags {
		raw := strings.TrimSpace(values.Get(flag.name))
		if raw == "" {
			continue
		}
		parsed, err := strconv.ParseBool(raw)
		if err != nil {
			return services.ProductListFilter{}, errors.New(flag.name + " must be a boolean")
		}
		*flag.dst = parsed
	}
	return filter, nil
}

// parseListParameter accepts both repeated parameters and comma separated values.
func parseListParameter(values url.Values, name string) []string {
	var out []string
	seen := make(map[string]struct{})
	for _, raw := range values[name] {
		for _, part := range strings.Split(raw, ",") {
			part = strings.TrimSpace(part)
			if part == "" {
				continue
			}
			if _, ok := seen[part]; ok {
				continue
			}
			seen[part] = struct{}{}
			out = append(out, part)
		}
	}
	return out
}

func newDescriptionPolicy() *bluemonday.Policy {
	policy := bluemonday.UGCPolicy()
	policy.AllowAttrs("dir").OnElements("p", "span", "div")
	policy.RequireNoFollowOnLinks(true)
	return policy
}

type categoryListResponse struct {
	Categories []categoryPayload `json:"categories"`
}

type categoryPayload struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	NameAR      string  `json:"name_ar,omitempty"`
	DisplayName string  `json:"display_name"`
	Slug        string  `json:"slug,omitempty"`
	ImageURL    string  `json:"image_url,omitempty"`
	ParentID    *string `json:"parent_id"`
}

type productPayload struct {
	ID              string   `json:"id"`
	Name            string   `json:"name"`
	NameAR          string   `json:"name_ar,omitempty"`
	DisplayName     string   `json:"display_name"`
	Price           string   `json:"price"`
	ImageURL        string   `json:"image_url,omitempty"`
	CategoryID      string   `json:"category_id,omitempty"`
	SubcategoryID   string   `json:"subcategory_id,omitempty"`
	StoreID         string   `json:"store_id,omitempty"`
	SupplierName    string   `json:"supplier_name,omitempty"`
	Brand           string   `json:"brand,omitempty"`
	Colors          []string `json:"colors"`
	Sizes           []string `json:"sizes"`
	HomeDelivery    bool     `json:"home_delivery_available"`
	DesktopDelivery bool     `json:"desktop_delivery_available"`
	FreeDelivery    bool     `json:"free_delivery"`
	SoldOut         bool     `json:"is_sold_out"`
	ViewCount       int64    `json:"view_count"`
	AverageRating   float64  `json:"average_rating"`
	Discount        float64  `json:"discount_percentage,omitempty"`
	SalePrice       string   `json:"sale_price,omitempty"`
	CreatedAt       string   `json:"created_at,omitempty"`
}

type productDetailPayload struct {
	productPayload
	Description   string `json:"description"`
	DescriptionAR string `json:"description_ar,omitempty"`
}

type paginationPayload struct {
	Sequence   []pagination.PageItem      `json:"sequence"`
	Navigation pagination.NavigationState `json:"navigation"`
}

type priceDomainPayload struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

type priceRangePayload struct {
	Min        float64            `json:"min"`
	Max        float64            `json:"max"`
	Domain     priceDomainPayload `json:"domain"`
	MinPercent *float64           `json:"minPercent,omitempty"`
	MaxPercent *float64           `json:"maxPercent,omitempty"`
	Rejected   []string           `json:"rejected,omitempty"`
}

type productListResponse struct {
	Items              []productPayload   `json:"items"`
	TotalCount         int                `json:"totalCount"`
	TotalPages         int                `json:"totalPages"`
	CurrentPage        int                `json:"currentPage"`
	PageSize           int                `json:"pageSize"`
	Pagination         paginationPayload  `json:"pagination"`
	SelectedCategories []string           `json:"selectedCategories"`
	PriceRange         *priceRangePayload `json:"priceRange,omitempty"`
}

type brandPayload struct {
	Name  string `json:"name"`
	Slug  string `json:"slug"`
	Count int    `json:"count"`
}

type brandListResponse struct {
	Brands []brandPayload `json:"brands"`
}

type brandProductsResponse struct {
	Brand string `json:"brand"`
	Slug  string `json:"slug"`
	productListResponse
}

type saleResponse struct {
	TotalSavings string `json:"totalSavings"`
	productListResponse
}

type similarProductsResponse struct {
	Items      []productPayload `json:"items"`
	RequestID  string           `json:"requestId"`
	Generation uint64           `json:"generation"`
}

func localizedName(name, nameAR, locale string) string {
	if locale == "ar" {
		return firstNonBlank(nameAR, name)
	}
	return firstNonBlank(name, nameAR)
}

func buildCategoryPayload(c services.Category, locale string) categoryPayload {
	payload := categoryPayload{
		ID:          c.ID,
		Name:        c.Name,
		NameAR:      c.NameAR,
		DisplayName: localizedName(c.Name, c.NameAR, locale),
		Slug:        c.Slug,
		ImageURL:    c.ImageURL,
	}
	if c.ParentID != nil {
		parent := *c.ParentID
		payload.ParentID = &parent
	}
	return payload
}

func buildProductPayload(p services.Product, locale string) productPayload {
	payload := productPayload{
		ID:              p.ID,
		Name:            p.Name,
		NameAR:          p.NameAR,
		DisplayName:     localizedName(p.Name, p.NameAR, locale),
		Price:           p.Price.StringFixed(2),
		ImageURL:        p.ImageURL,
		CategoryID:      p.CategoryID,
		SubcategoryID:   p.SubcategoryID,
		StoreID:         p.StoreID,
		SupplierName:    p.SupplierName,
		Brand:           p.Brand,
		Colors:          copyStringSlice(p.Colors),
		Sizes:           copyStringSlice(p.Sizes),
		HomeDelivery:    p.HomeDeliveryAvailable,
		DesktopDelivery: p.DesktopDeliveryAvailable,
		FreeDelivery:    p.FreeDelivery,
		SoldOut:         p.SoldOut,
		ViewCount:       p.ViewCount,
		AverageRating:   p.AverageRating,
		CreatedAt:       formatTimestamp(p.CreatedAt),
	}
	if p.OnSale() {
		payload.Discount = p.DiscountPercentage
		payload.SalePrice = p.SalePrice().StringFixed(2)
	}
	return payload
}

func buildProductDetailPayload(p services.Product, locale string) productDetailPayload {
	return productDetailPayload{
		productPayload: buildProductPayload(p, locale),
		Description:    descriptionPolicy.Sanitize(p.Description),
		DescriptionAR:  descriptionPolicy.Sanitize(p.DescriptionAR),
	}
}
