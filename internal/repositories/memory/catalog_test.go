package memory

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/shopspring/decimal"

	domain "github.com/bazzarna/storefront/internal/domain"
	"github.com/bazzarna/storefront/internal/repositories"
)

func loadTestCatalog(t *testing.T) *Catalog {
	t.Helper()
	catalog, err := LoadSeedFile("testdata/catalog.json")
	if err != nil {
		t.Fatalf("LoadSeedFile: %v", err)
	}
	return catalog
}

func ids(products []domain.Product) string {
	out := make([]string, len(products))
	for i, p := range products {
		out[i] = p.ID
	}
	return strings.Join(out, ",")
}

func TestCatalogQueryNewestFirstWithExclusion(t *testing.T) {
	catalog := loadTestCatalog(t)
	q := repositories.NewProductQuery().Not(repositories.FieldID, "p4").NewestFirst().WithLimit(2)
	got, err := catalog.Query(context.Background(), q)
	if err != nil {
		t.Fatalf("Query: %v", err)
	}
	if ids(got) != "p2,p1" {
		t.Fatalf("expected p2,p1 got %s", ids(got))
	}

	bad := repositories.ProductQuery{Filters: []repositories.QueryFilter{{Field: "price", Op: repositories.OpEq}}}
	if _, err := catalog.Query(context.Background(), bad); !errors.Is(err, repositories.ErrInvalidQuery) {
		t.Fatalf("expected invalid query error, got %v", err)
	}
}

func TestCatalogListFiltersAndPaginates(t *testing.T) {
	catalog := loadTestCatalog(t)
	ctx := context.Background()

	page, err := catalog.List(ctx, repositories.ProductListFilter{PageSize: 3})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if page.TotalCount != 4 || page.TotalPages != 2 || ids(page.Items) != "p4,p2,p1" {
		t.Fatalf("unexpected first page %#v", page)
	}
	page, _ = catalog.List(ctx, repositories.ProductListFilter{Page: 2, PageSize: 3})
	if ids(page.Items) != "p3" || page.CurrentPage != 2 {
		t.Fatalf("unexpected second page %s", ids(page.Items))
	}

	max := decimal.NewFromInt(5000)
	page, _ = catalog.List(ctx, repositories.ProductListFilter{
		MaxPrice: &max,
		Colors:   []string{"red"},
		Sort:     domain.ProductSortPrice,
		Order:    domain.SortAsc,
	})
	if ids(page.Items) != "p4,p1" {
		t.Fatalf("expected red items under 5000 by price, got %s", ids(page.Items))
	}

	page, _ = catalog.List(ctx, repositories.ProductListFilter{CategoryIDs: []string{"cat-home"}, InStockOnly: true})
	if ids(page.Items) != "p4" {
		t.Fatalf("expected in-stock home items, got %s", ids(page.Items))
	}

	page, _ = catalog.List(ctx, repositories.ProductListFilter{Search: "KAR"})
	if ids(page.Items) != "p2" {
		t.Fatalf("expected case-insensitive search, got %s", ids(page.Items))
	}
}

func TestCatalogListCombinesCategoryAndSubcategory(t *testing.T) {
	catalog := loadTestCatalog(t)
	ctx := context.Background()

	page, _ := catalog.List(ctx, repositories.ProductListFilter{
		CategoryIDs:   []string{"cat-women", "cat-home"},
		SubcategoryID: "sub-kitchen",
	})
	if ids(page.Items) != "p4,p3" {
		t.Fatalf("expected both filters to apply, got %s", ids(page.Items))
	}

	page, _ = catalog.List(ctx, repositories.ProductListFilter{
		CategoryIDs:   []string{"cat-women"},
		SubcategoryID: "sub-kitchen",
	})
	if page.TotalCount != 0 || len(page.Items) != 0 {
		t.Fatalf("expected disjoint filters to match nothing, got %s", ids(page.Items))
	}
}

func TestCatalogListBrandAndSale(t *testing.T) {
	catalog := loadTestCatalog(t)
	ctx := context.Background()

	page, _ := catalog.List(ctx, repositories.ProductListFilter{Brand: "amina"})
	if ids(page.Items) != "p2,p1" {
		t.Fatalf("expected case-insensitive brand match, got %s", ids(page.Items))
	}

	page, _ = catalog.List(ctx, repositories.ProductListFilter{
		OnSale: true,
		Sort:   domain.ProductSortDiscount,
		Order:  domain.SortDesc,
	})
	if ids(page.Items) != "p2,p3" {
		t.Fatalf("expected discounted items by discount, got %s", ids(page.Items))
	}
	if page.Items[0].DiscountPercentage != 25 {
		t.Fatalf("expected seeded discount, got %v", page.Items[0].DiscountPercentage)
	}
}

func TestCatalogBrands(t *testing.T) {
	catalog := NewCatalog([]domain.Product{
		{ID: "a", Brand: "Condor"},
		{ID: "b", Brand: "  "},
		{ID: "c", Brand: "Condor"},
		{ID: "d", Brand: "Iris"},
		{ID: "e"},
	}, nil, nil)

	brands, err := catalog.Brands(context.Background())
	if err != nil {
		t.Fatalf("Brands: %v", err)
	}
	want := []domain.BrandSummary{{Name: "Condor", Count: 2}, {Name: "Iris", Count: 1}}
	if len(brands) != len(want) || brands[0] != want[0] || brands[1] != want[1] {
		t.Fatalf("unexpected brands %#v", brands)
	}
}

func TestCatalogPriceBoundsAndCategories(t *testing.T) {
	catalog := loadTestCatalog(t)
	bounds, err := catalog.PriceBounds(context.Background())
	if err != nil {
		t.Fatalf("PriceBounds: %v", err)
	}
	if bounds.Min != 1800 || bounds.Max != 12000 {
		t.Fatalf("unexpected bounds %#v", bounds)
	}

	cats, err := catalog.ListAll(context.Background())
	if err != nil {
		t.Fatalf("ListAll: %v", err)
	}
	var order []string
	for _, c := range cats {
		order = append(order, c.ID)
	}
	if got := strings.Join(order, ","); got != "cat-home,cat-women,sub-dresses,sub-kitchen" {
		t.Fatalf("unexpected order %s", got)
	}
	if cats[3].NameAR != "Kitchen" {
		t.Fatalf("expected name_ar to fall back to name, got %q", cats[3].NameAR)
	}
}

func TestCatalogStoreDeletion(t *testing.T) {
	catalog := loadTestCatalog(t)
	ctx := context.Background()
	catalog.SetDependents("notifications", "store-1", 5)

	store, err := catalog.FindByOwner(ctx, "owner-1")
	if err != nil || store.ID != "store-1" {
		t.Fatalf("FindByOwner: %v %#v", err, store)
	}
	n, err := catalog.DeleteByStoreID(ctx, "products", "store-1")
	if err != nil || n != 2 {
		t.Fatalf("expected 2 products removed, got %d %v", n, err)
	}
	n, _ = catalog.DeleteByStoreID(ctx, "notifications", "store-1")
	if n != 5 || catalog.Dependents("notifications", "store-1") != 0 {
		t.Fatalf("expected notifications cleared, got %d", n)
	}
	if n, _ := catalog.DeleteByOwner(ctx, "owner-1"); n != 1 || len(catalog.Stores()) != 0 {
		t.Fatalf("expected store removed")
	}

	_, err = catalog.FindByOwner(ctx, "owner-1")
	var repoErr repositories.RepositoryError
	if !errors.As(err, &repoErr) || !repoErr.IsNotFound() {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestLoadSeedRejectsUnknownFields(t *testing.T) {
	_, err := LoadSeed(strings.NewReader(`{"products":[{"id":"p","nope":1}]}`))
	if !errors.Is(err, ErrSeedInvalid) {
		t.Fatalf("expected ErrSeedInvalid, got %v", err)
	}
	_, err = LoadSeed(strings.NewReader(`{"products":[{"name":"no id"}]}`))
	if !errors.Is(err, ErrSeedInvalid) {
		t.Fatalf("expected ErrSeedInvalid for missing id, got %v", err)
	}
}
