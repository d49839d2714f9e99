package repository

import (
	"context"
	"strings"

	"storefront-cache/internal/domain"
	"storefront-cache/internal/repository/models"
	"storefront-cache/internal/util"

	"github.com/jmoiron/sqlx"
)

const (
	querySearchProducts = `SELECT ` + productColumns + `
	FROM products
	WHERE status = 'active'
	AND (LOWER(name) LIKE :1 ESCAPE '\' OR LOWER(description) LIKE :2 ESCAPE '\')
	ORDER BY rating DESC NULLS LAST, name
	FETCH FIRST :3 ROWS ONLY`

	querySuggestProductNames = `SELECT DISTINCT name
	FROM products
	WHERE status = 'active' AND LOWER(name) LIKE :1 ESCAPE '\'
	ORDER BY name
	FETCH FIRST :2 ROWS ONLY`
)

// SearchDatabaseAdapter runs substring searches over active products.
type SearchDatabaseAdapter struct {
	db DBTX
}

// NewSearchDatabaseAdapter creates a new instance of SearchDatabaseAdapter
func NewSearchDatabaseAdapter(db *sqlx.DB) domain.SearchSource {
	return &SearchDatabaseAdapter{db: db}
}

// SearchProducts matches query against product names and descriptions.
func (a *SearchDatabaseAdapter) SearchProducts(ctx context.Context, query string, limit int) ([]*domain.Product, error) {
	pattern := "%" + util.EscapeLike(strings.ToLower(query)) + "%"
	var rows []models.Product
	if err := a.db.SelectContext(ctx, &rows, querySearchProducts, pattern, pattern, limit); err != nil {
		return nil, sourceError("search results", err)
	}
	return toDomainProducts(rows), nil
}

// SuggestProductNames returns product names starting with prefix.
func (a *SearchDatabaseAdapter) SuggestProductNames(ctx context.Context, prefix string, limit int) ([]string, error) {
	pattern := util.EscapeLike(strings.ToLower(prefix)) + "%"
	var names []string
	if err := a.db.SelectContext(ctx, &names, querySuggestProductNames, pattern, limit); err != nil {
		return nil, sourceError("suggestions", err)
	}
	return names, nil
}
