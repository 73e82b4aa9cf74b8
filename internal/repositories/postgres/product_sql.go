package postgres

import (
	"fmt"
	"strings"

	domain "github.com/bazzarna/storefront/internal/domain"
	"github.com/bazzarna/storefront/internal/repositories"
)

const productColumns = `id, name, COALESCE(name_ar, name), COALESCE(description, ''), COALESCE(description_ar, ''),
	price::text, COALESCE(image_url, ''), COALESCE(category_id::text, ''), COALESCE(subcategory_id::text, ''),
	COALESCE(store_id::text, ''), COALESCE(owner_id::text, ''), COALESCE(supplier_name, ''), COALESCE(brand, ''),
	COALESCE(colors, '{}'), COALESCE(sizes, '{}'),
	COALESCE(is_delivery_home_available, false), COALESCE(is_delivery_desktop_available, false),
	COALESCE(is_free_delivery, false), COALESCE(is_sold_out, false),
	COALESCE(view_count, 0), COALESCE(average_rating, 0)::float8, COALESCE(discount_percentage, 0)::float8,
	COALESCE(created_at, to_timestamp(0))`

var queryColumns = map[repositories.QueryField]string{
	repositories.FieldID:         "id::text",
	repositories.FieldCategoryID: "category_id::text",
	repositories.FieldBrand:      "brand",
	repositories.FieldCreatedAt:  "created_at",
}

var sortColumns = map[domain.ProductSort]string{
	domain.ProductSortCreatedAt:     "created_at",
	domain.ProductSortPrice:         "price",
	domain.ProductSortName:          "name",
	domain.ProductSortViewCount:     "view_count",
	domain.ProductSortAverageRating: "average_rating",
	domain.ProductSortDiscount:      "discount_percentage",
}

// sqlArgs accumulates positional parameters.
type sqlArgs struct {
	values []any
}

func (a *sqlArgs) add(v any) string {
	a.values = append(a.values, v)
	return fmt.Sprintf("$%d", len(a.values))
}

// renderProductQuery turns a validated ProductQuery into parameterised SQL.
func renderProductQuery(q repositories.ProductQuery) (string, []any) {
	var (
		args  sqlArgs
		where []string
	)
	for _, f := range q.Filters {
		col := queryColumns[f.Field]
		switch f.Op {
		case repositories.OpEq:
			where = append(where, col+" = "+args.add(f.Value))
		case repositories.OpNeq:
			where = append(where, col+" <> "+args.add(f.Value))
		}
	}

	var b strings.Builder
	b.WriteString("SELECT " + productColumns + " FROM products")
	if len(where) > 0 {
		b.WriteString(" WHERE " + strings.Join(where, " AND "))
	}
	if q.OrderBy != nil {
		dir := "ASC"
		if q.OrderBy.Desc {
			dir = "DESC"
		}
		b.WriteString(" ORDER BY " + queryColumns[q.OrderBy.Field] + " " + dir + " NULLS LAST")
	}
	if q.Limit > 0 {
		b.WriteString(" LIMIT " + args.add(q.Limit))
	}
	return b.String(), args.values
}

// renderListWhere renders the listing predicates. The returned clause is empty when unfiltered.
func renderListWhere(f repositories.ProductListFilter, args *sqlArgs) string {
	var where []string
	if id := strings.TrimSpace(f.StoreID); id != "" {
		where = append(where, "store_id::text = "+args.add(id))
	}
	if len(f.CategoryIDs) > 0 {
		where = append(where, "category_id::text = ANY("+args.add(f.CategoryIDs)+")")
	}
	if id := strings.TrimSpace(f.SubcategoryID); id != "" {
		where = append(where, "subcategory_id::text = "+args.add(id))
	}
	if b := strings.TrimSpace(f.Brand); b != "" {
		where = append(where, "lower(brand) = lower("+args.add(b)+")")
	}
	if s := strings.TrimSpace(f.Search); s != "" {
		where = append(where, "name ILIKE "+args.add("%"+escapeLike(s)+"%"))
	}
	if f.MinPrice != nil {
		where = append(where, "price >= "+args.add(f.MinPrice.String())+"::numeric")
	}
	if f.MaxPrice != nil {
		where = append(where, "price <= "+args.add(f.MaxPrice.String())+"::numeric")
	}
	if f.MinRating != nil {
		where = append(where, "average_rating >= "+args.add(*f.MinRating))
	}
	if len(f.Colors) > 0 {
		where = append(where, "colors && "+args.add(f.Colors)+"::text[]")
	}
	if len(f.Sizes) > 0 {
		where = append(where, "sizes && "+args.add(f.Sizes)+"::text[]")
	}
	if f.FreeDelivery {
		where = append(where, "is_free_delivery")
	}
	if f.HomeDelivery {
		where = append(where, "is_delivery_home_available")
	}
	if f.DesktopDelivery {
		where = append(where, "is_delivery_desktop_available")
	}
	if f.InStockOnly {
		where = append(where, "NOT COALESCE(is_sold_out, false)")
	}
	if f.OnSale {
		where = append(where, "COALESCE(discount_percentage, 0) > 0")
	}
	if len(where) == 0 {
		return ""
	}
	return " WHERE " + strings.Join(where, " AND ")
}

// renderListOrder falls back to created_at desc for unknown sorts.
func renderListOrder(sort domain.ProductSort, order domain.SortOrder) string {
	col, ok := sortColumns[sort]
	if !ok {
		col = "created_at"
	}
	dir := "DESC"
	if order == domain.SortAsc {
		dir = "ASC"
	}
	return " ORDER BY " + col + " " + dir + " NULLS LAST, id"
}

func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}
