// Package memory provides in-process repositories used for local runs and tests.
package memory

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	domain "github.com/bazzarna/storefront/internal/domain"
	"github.com/bazzarna/storefront/internal/platform/pagination"
	"github.com/bazzarna/storefront/internal/repositories"
)

// Catalog holds products, categories and stores in memory and implements the product,
// category and store repositories.
type Catalog struct {
	mu         sync.RWMutex
	products   []domain.Product
	categories []domain.Category
	stores     []domain.Store
	// dependents counts rows per dependent table and store id.
	dependents map[string]map[string]int

	// FailWith, when set, is returned by every call.
	FailWith error
	// FailTables makes DeleteByStoreID fail for the named tables.
	FailTables map[string]error
}

var (
	_ repositories.ProductRepository  = (*Catalog)(nil)
	_ repositories.CategoryRepository = (*Catalog)(nil)
	_ repositories.StoreRepository    = (*Catalog)(nil)
)

// NewCatalog constructs a catalogue from the given records.
func NewCatalog(products []domain.Product, categories []domain.Category, stores []domain.Store) *Catalog {
	return &Catalog{
		products:   append([]domain.Product(nil), products...),
		categories: append([]domain.Category(nil), categories...),
		stores:     append([]domain.Store(nil), stores...),
		dependents: make(map[string]map[string]int),
	}
}

// SetDependents records n rows in table for storeID.
func (c *Catalog) SetDependents(table, storeID string, n int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.dependents[table] == nil {
		c.dependents[table] = make(map[string]int)
	}
	c.dependents[table][storeID] = n
}

// Dependents returns the number of rows left in table for storeID.
func (c *Catalog) Dependents(table, storeID string) int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.dependents[table][storeID]
}

// Stores returns a copy of the current store rows.
func (c *Catalog) Stores() []domain.Store {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return append([]domain.Store(nil), c.stores...)
}

func (c *Catalog) Query(_ context.Context, q repositories.ProductQuery) ([]domain.Product, error) {
	if c.FailWith != nil {
		return nil, c.FailWith
	}
	if err := q.Validate(); err != nil {
		return nil, err
	}
	c.mu.RLock()
	matched := []domain.Product{}
	for _, p := range c.products {
		if q.Matches(p) {
			matched = append(matched, p)
		}
	}
	c.mu.RUnlock()

	if q.OrderBy != nil {
		desc := q.OrderBy.Desc
		sort.SliceStable(matched, func(i, j int) bool {
			if desc {
				return matched[i].CreatedAt.After(matched[j].CreatedAt)
			}
			return matched[i].CreatedAt.Before(matched[j].CreatedAt)
		})
	}
	if q.Limit > 0 && len(matched) > q.Limit {
		matched = matched[:q.Limit]
	}
	return matched, nil
}

func (c *Catalog) FindByID(_ context.Context, productID string) (domain.Product, error) {
	if c.FailWith != nil {
		return domain.Product{}, c.FailWith
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	for _, p := range c.products {
		if p.ID == productID {
			return p, nil
		}
	}
	return domain.Product{}, notFound("products.find", productID)
}

func (c *Catalog) FindByIDs(_ context.Context, ids []string) ([]domain.Product, error) {
	if c.FailWith != nil {
		return nil, c.FailWith
	}
	want := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		want[id] = struct{}{}
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := []domain.Product{}
	for _, p := range c.products {
		if _, ok := want[p.ID]; ok {
			out = append(out, p)
		}
	}
	return out, nil
}

func (c *Catalog) List(_ context.Context, filter repositories.ProductListFilter) (domain.ProductPage, error) {
	if c.FailWith != nil {
		return domain.ProductPage{}, c.FailWith
	}
	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size < 1 {
		size = pagination.DefaultPageSize
	}

	c.mu.RLock()
	matched := []domain.Product{}
	for _, p := range c.products {
		if matchesList(p, filter) {
			matched = append(matched, p)
		}
	}
	c.mu.RUnlock()

	sortProducts(matched, filter.Sort, filter.Order)

	total := len(matched)
	start := pagination.Offset(page, size)
	if start > total {
		start = total
	}
	end := start + size
	if end > total {
		end = total
	}
	return domain.ProductPage{
		Items:       matched[start:end],
		TotalCount:  total,
		TotalPages:  pagination.TotalPages(total, size),
		CurrentPage: page,
		PageSize:    size,
	}, nil
}

func (c *Catalog) PriceBounds(context.Context) (domain.PriceBounds, error) {
	if c.FailWith != nil {
		return domain.PriceBounds{}, c.FailWith
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	var bounds domain.PriceBounds
	for i, p := range c.products {
		v := p.Price.InexactFloat64()
		if i == 0 || v < bounds.Min {
			bounds.Min = v
		}
		if i == 0 || v > bounds.Max {
			bounds.Max = v
		}
	}
	return bounds, nil
}

func (c *Catalog) Brands(context.Context) ([]domain.BrandSummary, error) {
	if c.FailWith != nil {
		return nil, c.FailWith
	}
	c.mu.RLock()
	counts := map[string]int{}
	order := []string{}
	for _, p := range c.products {
		if strings.TrimSpace(p.Brand) == "" {
			continue
		}
		if _, ok := counts[p.Brand]; !ok {
			order = append(order, p.Brand)
		}
		counts[p.Brand]++
	}
	c.mu.RUnlock()
	out := make([]domain.BrandSummary, 0, len(order))
	for _, name := range order {
		out = append(out, domain.BrandSummary{Name: name, Count: counts[name]})
	}
	return out, nil
}

// ListAll returns main categories by name, then subcategories by name.
func (c *Catalog) ListAll(context.Context) ([]domain.Category, error) {
	if c.FailWith != nil {
		return nil, c.FailWith
	}
	c.mu.RLock()
	var mains, subs []domain.Category
	for _, cat := range c.categories {
		if cat.IsMain() {
			mains = append(mains, cat)
		} else {
			subs = append(subs, cat)
		}
	}
	c.mu.RUnlock()
	byName := func(list []domain.Category) {
		sort.SliceStable(list, func(i, j int) bool { return list[i].Name < list[j].Name })
	}
	byName(mains)
	byName(subs)
	return append(append([]domain.Category{}, mains...), subs...), nil
}

func (c *Catalog) FindByOwner(_ context.Context, ownerID string) (domain.Store, error) {
	if c.FailWith != nil {
		return domain.Store{}, c.FailWith
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	for _, s := range c.stores {
		if s.OwnerID == ownerID {
			return s, nil
		}
	}
	return domain.Store{}, notFound("stores.find_by_owner", ownerID)
}

func (c *Catalog) DeleteByStoreID(_ context.Context, table string, storeID string) (int64, error) {
	if c.FailWith != nil {
		return 0, c.FailWith
	}
	if err := c.FailTables[table]; err != nil {
		return 0, err
	}
	if !repositories.IsStoreDependentTable(table) {
		return 0, fmt.Errorf("memory catalog: table %q is not a store dependent", table)
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if table == "products" {
		kept := c.products[:0]
		var removed int64
		for _, p := range c.products {
			if p.StoreID == storeID {
				removed++
				continue
			}
			kept = append(kept, p)
		}
		c.products = kept
		return removed, nil
	}
	n := c.dependents[table][storeID]
	delete(c.dependents[table], storeID)
	return int64(n), nil
}

func (c *Catalog) DeleteByOwner(_ context.Context, ownerID string) (int64, error) {
	if c.FailWith != nil {
		return 0, c.FailWith
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	kept := c.stores[:0]
	var removed int64
	for _, s := range c.stores {
		if s.OwnerID == ownerID {
			removed++
			continue
		}
		kept = append(kept, s)
	}
	c.stores = kept
	return removed, nil
}

func matchesList(p domain.Product, f repositories.ProductListFilter) bool {
	if f.StoreID != "" && p.StoreID != f.StoreID {
		return false
	}
	if len(f.CategoryIDs) > 0 && !containsString(f.CategoryIDs, p.CategoryID) {
		return false
	}
	if f.SubcategoryID != "" && p.SubcategoryID != f.SubcategoryID {
		return false
	}
	if b := strings.TrimSpace(f.Brand); b != "" && !strings.EqualFold(p.Brand, b) {
		return false
	}
	if s := strings.TrimSpace(f.Search); s != "" && !strings.Contains(strings.ToLower(p.Name), strings.ToLower(s)) {
		return false
	}
	if f.MinPrice != nil && p.Price.LessThan(*f.MinPrice) {
		return false
	}
	if f.MaxPrice != nil && p.Price.GreaterThan(*f.MaxPrice) {
		return false
	}
	if f.MinRating != nil && p.AverageRating < *f.MinRating {
		return false
	}
	if len(f.Colors) > 0 && !overlaps(f.Colors, p.Colors) {
		return false
	}
	if len(f.Sizes) > 0 && !overlaps(f.Sizes, p.Sizes) {
		return false
	}
	if f.FreeDelivery && !p.FreeDelivery {
		return false
	}
	if f.HomeDelivery && !p.HomeDeliveryAvailable {
		return false
	}
	if f.DesktopDelivery && !p.DesktopDeliveryAvailable {
		return false
	}
	if f.InStockOnly && p.SoldOut {
		return false
	}
	if f.OnSale && !p.OnSale() {
		return false
	}
	return true
}

func sortProducts(items []domain.Product, by domain.ProductSort, order domain.SortOrder) {
	asc := order == domain.SortAsc
	less := func(a, b domain.Product) int {
		switch by {
		case domain.ProductSortPrice:
			return a.Price.Cmp(b.Price)
		case domain.ProductSortName:
			return strings.Compare(a.Name, b.Name)
		case domain.ProductSortViewCount:
			return compareOrdered(a.ViewCount, b.ViewCount)
		case domain.ProductSortAverageRating:
			return compareOrdered(a.AverageRating, b.AverageRating)
		case domain.ProductSortDiscount:
			return compareOrdered(a.DiscountPercentage, b.DiscountPercentage)
		default:
			return a.CreatedAt.Compare(b.CreatedAt)
		}
	}
	sort.SliceStable(items, func(i, j int) bool {
		cmp := less(items[i], items[j])
		if cmp == 0 {
			return items[i].ID < items[j].ID
		}
		if asc {
			return cmp < 0
		}
		return cmp > 0
	})
}

func compareOrdered[T int64 | float64](a, b T) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

func containsString(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}

func overlaps(want, have []string) bool {
	for _, w := range want {
		if containsString(have, w) {
			return true
		}
	}
	return false
}

// Error implements repositories.RepositoryError for the in-memory backend.
type Error struct {
	op       string
	id       string
	notFound bool
}

func (e *Error) Error() string       { return fmt.Sprintf("memory %s: %s not found", e.op, e.id) }
func (e *Error) IsNotFound() bool    { return e.notFound }
func (e *Error) IsConflict() bool    { return false }
func (e *Error) IsUnavailable() bool { return false }

func notFound(op, id string) error {
	return &Error{op: op, id: id, notFound: true}
}
