package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	domain "github.com/bazzarna/storefront/internal/domain"
	"github.com/bazzarna/storefront/internal/platform/pagination"
	pgplatform "github.com/bazzarna/storefront/internal/platform/postgres"
	"github.com/bazzarna/storefront/internal/repositories"
)

// ProductRepository reads the products table.
type ProductRepository struct {
	db Querier
}

var _ repositories.ProductRepository = (*ProductRepository)(nil)

// NewProductRepository constructs a pgx-backed product repository.
func NewProductRepository(db Querier) (*ProductRepository, error) {
	if db == nil {
		return nil, errors.New("product repository requires a postgres querier")
	}
	return &ProductRepository{db: db}, nil
}

func (r *ProductRepository) Query(ctx context.Context, q repositories.ProductQuery) ([]domain.Product, error) {
	if err := q.Validate(); err != nil {
		return nil, err
	}
	sql, args := renderProductQuery(q)
	return r.collect(ctx, "products.query", sql, args...)
}

func (r *ProductRepository) FindByID(ctx context.Context, productID string) (domain.Product, error) {
	productID = strings.TrimSpace(productID)
	if productID == "" {
		return domain.Product{}, errors.New("product repository: product id is required")
	}
	row := r.db.QueryRow(ctx, "SELECT "+productColumns+" FROM products WHERE id::text = $1", productID)
	product, err := scanProduct(row)
	if err != nil {
		return domain.Product{}, pgplatform.WrapError("products.find", err)
	}
	return product, nil
}

func (r *ProductRepository) FindByIDs(ctx context.Context, ids []string) ([]domain.Product, error) {
	if len(ids) == 0 {
		return []domain.Product{}, nil
	}
	return r.collect(ctx, "products.find_many", "SELECT "+productColumns+" FROM products WHERE id::text = ANY($1)", ids)
}

func (r *ProductRepository) List(ctx context.Context, filter repositories.ProductListFilter) (domain.ProductPage, error) {
	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size < 1 {
		size = pagination.DefaultPageSize
	}

	var args sqlArgs
	where := renderListWhere(filter, &args)

	var total int
	if err := r.db.QueryRow(ctx, "SELECT count(*) FROM products"+where, args.values...).Scan(&total); err != nil {
		return domain.ProductPage{}, pgplatform.WrapError("products.count", err)
	}

	sql := "SELECT " + productColumns + " FROM products" + where +
		renderListOrder(filter.Sort, filter.Order) +
		" LIMIT " + args.add(size) + " OFFSET " + args.add(pagination.Offset(page, size))
	items, err := r.collect(ctx, "products.list", sql, args.values...)
	if err != nil {
		return domain.ProductPage{}, err
	}

	return domain.ProductPage{
		Items:       items,
		TotalCount:  total,
		TotalPages:  pagination.TotalPages(total, size),
		CurrentPage: page,
		PageSize:    size,
	}, nil
}

func (r *ProductRepository) PriceBounds(ctx context.Context) (domain.PriceBounds, error) {
	var bounds domain.PriceBounds
	err := r.db.QueryRow(ctx,
		"SELECT COALESCE(min(price), 0)::float8, COALESCE(max(price), 0)::float8 FROM products",
	).Scan(&bounds.Min, &bounds.Max)
	if err != nil {
		return domain.PriceBounds{}, pgplatform.WrapError("products.price_bounds", err)
	}
	return bounds, nil
}

// Brands counts products per non-blank brand. Ordering is left to the caller.
func (r *ProductRepository) Brands(ctx context.Context) ([]domain.BrandSummary, error) {
	rows, err := r.db.Query(ctx,
		"SELECT brand, count(*) FROM products WHERE brand IS NOT NULL AND btrim(brand) <> '' GROUP BY brand",
	)
	if err != nil {
		return nil, pgplatform.WrapError("products.brands", err)
	}
	defer rows.Close()

	brands := []domain.BrandSummary{}
	for rows.Next() {
		var b domain.BrandSummary
		if err := rows.Scan(&b.Name, &b.Count); err != nil {
			return nil, pgplatform.WrapError("products.brands", err)
		}
		brands = append(brands, b)
	}
	if err := rows.Err(); err != nil {
		return nil, pgplatform.WrapError("products.brands", err)
	}
	return brands, nil
}

func (r *ProductRepository) collect(ctx context.Context, op, sql string, args ...any) ([]domain.Product, error) {
	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, pgplatform.WrapError(op, err)
	}
	defer rows.Close()

	products := []domain.Product{}
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, pgplatform.WrapError(op, err)
		}
		products = append(products, p)
	}
	if err := rows.Err(); err != nil {
		return nil, pgplatform.WrapError(op, err)
	}
	return products, nil
}

func scanProduct(row pgx.Row) (domain.Product, error) {
	var (
		p     domain.Product
		price string
	)
	err := row.Scan(
		&p.ID, &p.Name, &p.NameAR, &p.Description, &p.DescriptionAR,
		&price, &p.ImageURL, &p.CategoryID, &p.SubcategoryID,
		&p.StoreID, &p.OwnerID, &p.SupplierName, &p.Brand,
		&p.Colors, &p.Sizes,
		&p.HomeDeliveryAvailable, &p.DesktopDeliveryAvailable,
		&p.FreeDelivery, &p.SoldOut,
		&p.ViewCount, &p.AverageRating, &p.DiscountPercentage, &p.CreatedAt,
	)
	if err != nil {
		return domain.Product{}, err
	}
	p.Price, err = decimal.NewFromString(price)
	if err != nil {
		return domain.Product{}, fmt.Errorf("decode price %q: %w", price, err)
	}
	return p, nil
}
