package postgres

import (
	"reflect"
	"strings"
	"testing"

	"github.com/shopspring/decimal"

	domain "github.com/bazzarna/storefront/internal/domain"
	"github.com/bazzarna/storefront/internal/repositories"
)

func TestRenderProductQuery(t *testing.T) {
	q := repositories.NewProductQuery().
		Where(repositories.FieldBrand, "acme").
		Where(repositories.FieldCategoryID, "c1").
		Not(repositories.FieldID, "p1").
		NewestFirst().
		WithLimit(4)

	sql, args := renderProductQuery(q)
	wantTail := " FROM products WHERE brand = $1 AND category_id::text = $2 AND id::text <> $3 ORDER BY created_at DESC NULLS LAST LIMIT $4"
	if !strings.HasSuffix(sql, wantTail) {
		t.Fatalf("unexpected sql:\n%s", sql)
	}
	if want := []any{"acme", "c1", "p1", 4}; !reflect.DeepEqual(args, want) {
		t.Fatalf("expected args %v, got %v", want, args)
	}
}

func TestRenderProductQueryUnfiltered(t *testing.T) {
	sql, args := renderProductQuery(repositories.NewProductQuery())
	if strings.Contains(sql, "WHERE") || strings.Contains(sql, "LIMIT") || len(args) != 0 {
		t.Fatalf("expected bare select, got %s %v", sql, args)
	}
}

func TestRenderListWhere(t *testing.T) {
	min := decimal.NewFromInt(100)
	max := decimal.RequireFromString("2500.50")
	filter := repositories.ProductListFilter{
		StoreID:       "s1",
		CategoryIDs:   []string{"c1", "c2"},
		SubcategoryID: "sub1",
		Search:        "50%_off",
		MinPrice:      &min,
		MaxPrice:      &max,
		Colors:        []string{"red"},
		FreeDelivery:  true,
		InStockOnly:   true,
	}

	var args sqlArgs
	where := renderListWhere(filter, &args)
	want := " WHERE store_id::text = $1 AND category_id::text = ANY($2) AND subcategory_id::text = $3" +
		" AND name ILIKE $4 AND price >= $5::numeric AND price <= $6::numeric AND colors && $7::text[]" +
		" AND is_free_delivery AND NOT COALESCE(is_sold_out, false)"
	if where != want {
		t.Fatalf("unexpected where:\n got %s\nwant %s", where, want)
	}
	if args.values[2] != "sub1" {
		t.Fatalf("expected subcategory arg, got %v", args.values[2])
	}
	if args.values[3] != `%50\%\_off%` {
		t.Fatalf("expected escaped search, got %v", args.values[3])
	}
	if args.values[5] != "2500.5" {
		t.Fatalf("expected decimal string, got %v", args.values[5])
	}
}

func TestRenderListWhereSubcategoryAndEmpty(t *testing.T) {
	var args sqlArgs
	if where := renderListWhere(repositories.ProductListFilter{}, &args); where != "" {
		t.Fatalf("expected empty clause, got %q", where)
	}
	where := renderListWhere(repositories.ProductListFilter{SubcategoryID: "sub"}, &args)
	if where != " WHERE subcategory_id::text = $1" {
		t.Fatalf("unexpected where %q", where)
	}
}

func TestRenderListWhereBrandAndSale(t *testing.T) {
	var args sqlArgs
	where := renderListWhere(repositories.ProductListFilter{Brand: " Condor ", OnSale: true}, &args)
	if where != " WHERE lower(brand) = lower($1) AND COALESCE(discount_percentage, 0) > 0" {
		t.Fatalf("unexpected where %q", where)
	}
	if !reflect.DeepEqual(args.values, []any{"Condor"}) {
		t.Fatalf("unexpected args %v", args.values)
	}
}

func TestRenderListOrder(t *testing.T) {
	cases := []struct {
		sort  domain.ProductSort
		order domain.SortOrder
		want  string
	}{
		{"", "", " ORDER BY created_at DESC NULLS LAST, id"},
		{domain.ProductSortPrice, domain.SortAsc, " ORDER BY price ASC NULLS LAST, id"},
		{"drop table", domain.SortAsc, " ORDER BY created_at ASC NULLS LAST, id"},
		{domain.ProductSortDiscount, domain.SortDesc, " ORDER BY discount_percentage DESC NULLS LAST, id"},
	}
	for _, tc := range cases {
		if got := renderListOrder(tc.sort, tc.order); got != tc.want {
			t.Fatalf("renderListOrder(%q,%q) = %q, want %q", tc.sort, tc.order, got, tc.want)
		}
	}
}
