package postgres

import (
	"context"
	"errors"

	domain "github.com/bazzarna/storefront/internal/domain"
	pgplatform "github.com/bazzarna/storefront/internal/platform/postgres"
	"github.com/bazzarna/storefront/internal/repositories"
)

const (
	mainCategorySQL = `SELECT id::text, name, COALESCE(NULLIF(name_ar, ''), name), COALESCE(slug, ''), COALESCE(image_url, ''),
	COALESCE(created_at, to_timestamp(0)) FROM categories ORDER BY name`
	subCategorySQL = `SELECT id::text, name, COALESCE(NULLIF(name_ar, ''), name), COALESCE(slug, ''), COALESCE(image_url, ''),
	COALESCE(created_at, to_timestamp(0)), category_id::text FROM subcategories ORDER BY name`
)

// CategoryRepository merges the categories and subcategories tables into one forest.
// Subcategory rows take their category_id as parent.
type CategoryRepository struct {
	db Querier
}

var _ repositories.CategoryRepository = (*CategoryRepository)(nil)

// NewCategoryRepository constructs a pgx-backed category repository.
func NewCategoryRepository(db Querier) (*CategoryRepository, error) {
	if db == nil {
		return nil, errors.New("category repository requires a postgres querier")
	}
	return &CategoryRepository{db: db}, nil
}

// ListAll returns main categories by name followed by subcategories by name.
func (r *CategoryRepository) ListAll(ctx context.Context) ([]domain.Category, error) {
	out := []domain.Category{}

	rows, err := r.db.Query(ctx, mainCategorySQL)
	if err != nil {
		return nil, pgplatform.WrapError("categories.list", err)
	}
	for rows.Next() {
		var c domain.Category
		if err := rows.Scan(&c.ID, &c.Name, &c.NameAR, &c.Slug, &c.ImageURL, &c.CreatedAt); err != nil {
			rows.Close()
			return nil, pgplatform.WrapError("categories.list", err)
		}
		out = append(out, c)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, pgplatform.WrapError("categories.list", err)
	}

	rows, err = r.db.Query(ctx, subCategorySQL)
	if err != nil {
		return nil, pgplatform.WrapError("subcategories.list", err)
	}
	defer rows.Close()
	for rows.Next() {
		var (
			c      domain.Category
			parent string
		)
		if err := rows.Scan(&c.ID, &c.Name, &c.NameAR, &c.Slug, &c.ImageURL, &c.CreatedAt, &parent); err != nil {
			return nil, pgplatform.WrapError("subcategories.list", err)
		}
		c.ParentID = &parent
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, pgplatform.WrapError("subcategories.list", err)
	}
	return out, nil
}
