package repository

import (
	"context"

	"storefront-cache/internal/domain"
	"storefront-cache/internal/repository/models"

	"github.com/jmoiron/sqlx"
)

const productColumns = `id, slug, name, description, price, compare_at_price, category_id,
	status, featured, images, rating, review_count, created_at, updated_at`

const (
	queryProductByID = `SELECT ` + productColumns + `
	FROM products
	WHERE id = :1`

	queryProductBySlug = `SELECT ` + productColumns + `
	FROM products
	WHERE slug = :1`

	queryProducts = `SELECT ` + productColumns + `
	FROM products
	WHERE status = 'active'
	ORDER BY name`

	queryFeaturedProducts = `SELECT ` + productColumns + `
	FROM products
	WHERE status = 'active' AND featured = 1
	ORDER BY updated_at DESC
	FETCH FIRST :1 ROWS ONLY`

	queryProductsByCategory = `SELECT ` + productColumns + `
	FROM products
	WHERE status = 'active' AND category_id = :1
	ORDER BY name`

	queryRelatedProducts = `SELECT ` + productColumns + `
	FROM products
	WHERE status = 'active'
	AND id != :1
	AND category_id = (SELECT category_id FROM products WHERE id = :2)
	ORDER BY rating DESC NULLS LAST
	FETCH FIRST :3 ROWS ONLY`

	queryReviews = `SELECT id, product_id, user_id, rating, title, body, created_at
	FROM reviews
	WHERE product_id = :1
	ORDER BY created_at DESC`

	queryInventory = `SELECT product_id, quantity, reserved, updated_at
	FROM inventory
	WHERE product_id = :1`
)

// ProductDatabaseAdapter reads products, reviews and stock from Oracle.
type ProductDatabaseAdapter struct {
	db DBTX
}

// NewProductDatabaseAdapter creates a new instance of ProductDatabaseAdapter
func NewProductDatabaseAdapter(db *sqlx.DB) domain.ProductSource {
	return &ProductDatabaseAdapter{db: db}
}

func (a *ProductDatabaseAdapter) getProduct(ctx context.Context, query string, arg string) (*domain.Product, error) {
	var row models.Product
	if err := a.db.GetContext(ctx, &row, query, arg); err != nil {
		return nil, sourceError("product", err)
	}
	return toDomainProduct(&row), nil
}

func (a *ProductDatabaseAdapter) listProducts(ctx context.Context, query string, args ...interface{}) ([]*domain.Product, error) {
	var rows []models.Product
	if err := a.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, sourceError("products", err)
	}
	return toDomainProducts(rows), nil
}

// GetProductByID implements domain.ProductSource
func (a *ProductDatabaseAdapter) GetProductByID(ctx context.Context, id string) (*domain.Product, error) {
	return a.getProduct(ctx, queryProductByID, id)
}

// GetProductBySlug implements domain.ProductSource
func (a *ProductDatabaseAdapter) GetProductBySlug(ctx context.Context, slug string) (*domain.Product, error) {
	return a.getProduct(ctx, queryProductBySlug, slug)
}

// ListProducts implements domain.ProductSource
func (a *ProductDatabaseAdapter) ListProducts(ctx context.Context) ([]*domain.Product, error) {
	return a.listProducts(ctx, queryProducts)
}

// ListFeaturedProducts implements domain.ProductSource
func (a *ProductDatabaseAdapter) ListFeaturedProducts(ctx context.Context, limit int) ([]*domain.Product, error) {
	return a.listProducts(ctx, queryFeaturedProducts, limit)
}

// ListProductsByCategory implements domain.ProductSource
func (a *ProductDatabaseAdapter) ListProductsByCategory(ctx context.Context, categoryID string) ([]*domain.Product, error) {
	return a.listProducts(ctx, queryProductsByCategory, categoryID)
}

// ListRelatedProducts returns the best rated products sharing the category of productID.
func (a *ProductDatabaseAdapter) ListRelatedProducts(ctx context.Context, productID string, limit int) ([]*domain.Product, error) {
	return a.listProducts(ctx, queryRelatedProducts, productID, productID, limit)
}

// ListReviews implements domain.ProductSource
func (a *ProductDatabaseAdapter) ListReviews(ctx context.Context, productID string) ([]*domain.Review, error) {
	var rows []models.Review
	if err := a.db.SelectContext(ctx, &rows, queryReviews, productID); err != nil {
		return nil, sourceError("reviews", err)
	}
	reviews := make([]*domain.Review, len(rows))
	for i := range rows {
		reviews[i] = toDomainReview(&rows[i])
	}
	return reviews, nil
}

// GetInventory implements domain.ProductSource
func (a *ProductDatabaseAdapter) GetInventory(ctx context.Context, productID string) (*domain.Inventory, error) {
	var row models.Inventory
	if err := a.db.GetContext(ctx, &row, queryInventory, productID); err != nil {
		return nil, sourceError("inventory", err)
	}
	return &domain.Inventory{
		ProductID: row.ProductID,
		Quantity:  row.Quantity,
		Reserved:  row.Reserved,
		UpdatedAt: row.UpdatedAt,
	}, nil
}
