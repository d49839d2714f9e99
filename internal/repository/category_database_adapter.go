package repository

import (
	"context"

	"storefront-cache/internal/domain"
	"storefront-cache/internal/repository/models"

	"github.com/jmoiron/sqlx"
)

const categoryColumns = `c.id, c.slug, c.name, c.description, c.parent_id,
	(SELECT COUNT(*) FROM products p WHERE p.category_id = c.id AND p.status = 'active') AS product_count`

const (
	queryCategoryByID = `SELECT ` + categoryColumns + `
	FROM categories c
	WHERE c.id = :1`

	queryCategoryBySlug = `SELECT ` + categoryColumns + `
	FROM categories c
	WHERE c.slug = :1`

	queryCategories = `SELECT ` + categoryColumns + `
	FROM categories c
	ORDER BY c.name`
)

type CategoryDatabaseAdapter struct {
	db DBTX
}

// NewCategoryDatabaseAdapter creates a new instance of CategoryDatabaseAdapter
func NewCategoryDatabaseAdapter(db *sqlx.DB) domain.CategorySource {
	return &CategoryDatabaseAdapter{db: db}
}

// GetCategoryByID implements domain.CategorySource
func (a *CategoryDatabaseAdapter) GetCategoryByID(ctx context.Context, id string) (*domain.Category, error) {
	var row models.Category
	if err := a.db.GetContext(ctx, &row, queryCategoryByID, id); err != nil {
		return nil, sourceError("category", err)
	}
	return toDomainCategory(&row), nil
}

// GetCategoryBySlug implements domain.CategorySource
func (a *CategoryDatabaseAdapter) GetCategoryBySlug(ctx context.Context, slug string) (*domain.Category, error) {
	var row models.Category
	if err := a.db.GetContext(ctx, &row, queryCategoryBySlug, slug); err != nil {
		return nil, sourceError("category", err)
	}
	return toDomainCategory(&row), nil
}

// ListCategories returns every category flat; the tree is built by the caller.
func (a *CategoryDatabaseAdapter) ListCategories(ctx context.Context) ([]*domain.Category, error) {
	var rows []models.Category
	if err := a.db.SelectContext(ctx, &rows, queryCategories); err != nil {
		return nil, sourceError("categories", err)
	}
	categories := make([]*domain.Category, len(rows))
	for i := range rows {
		categories[i] = toDomainCategory(&rows[i])
	}
	return categories, nil
}
