package repository

import (
	"context"
	"time"

	"storefront-cache/internal/domain"
	"storefront-cache/internal/repository/models"

	"github.com/jmoiron/sqlx"
)

const (
	queryActiveComboDeals = `SELECT id, slug, name, product_ids, price, original_price, starts_at, ends_at
	FROM combo_deals
	WHERE starts_at <= :1 AND ends_at > :2
	ORDER BY ends_at`

	queryDiscountedProducts = `SELECT ` + productColumns + `
	FROM products
	WHERE status = 'active' AND compare_at_price > price
	ORDER BY (compare_at_price - price) / compare_at_price DESC
	FETCH FIRST :1 ROWS ONLY`
)

// DealDatabaseAdapter reads the aggregates behind the home page deals.
type DealDatabaseAdapter struct {
	db DBTX
}

// NewDealDatabaseAdapter creates a new instance of DealDatabaseAdapter
func NewDealDatabaseAdapter(db *sqlx.DB) domain.DealSource {
	return &DealDatabaseAdapter{db: db}
}

// ListActiveComboDeals returns the combo deals running at the given instant.
func (a *DealDatabaseAdapter) ListActiveComboDeals(ctx context.Context, at time.Time) ([]*domain.ComboDeal, error) {
	var rows []models.ComboDeal
	if err := a.db.SelectContext(ctx, &rows, queryActiveComboDeals, at, at); err != nil {
		return nil, sourceError("combo deals", err)
	}
	deals := make([]*domain.ComboDeal, len(rows))
	for i := range rows {
		deals[i] = toDomainComboDeal(&rows[i])
	}
	return deals, nil
}

// ListDiscountedProducts returns the products with the deepest discounts.
func (a *DealDatabaseAdapter) ListDiscountedProducts(ctx context.Context, limit int) ([]*domain.Product, error) {
	var rows []models.Product
	if err := a.db.SelectContext(ctx, &rows, queryDiscountedProducts, limit); err != nil {
		return nil, sourceError("discounted products", err)
	}
	return toDomainProducts(rows), nil
}
