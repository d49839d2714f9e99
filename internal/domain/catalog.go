package domain

import (
	"context"
	"time"
)

// ProductStatus is the publication state of a product.
type ProductStatus string

const (
	ProductStatusDraft    ProductStatus = "draft"
	ProductStatusActive   ProductStatus = "active"
	ProductStatusArchived ProductStatus = "archived"
)

// Product is the cached representation of a catalog product.
type Product struct {
	ID             string        `json:"id"`
	Slug           string        `json:"slug"`
	Name           string        `json:"name"`
	Description    string        `json:"description,omitempty"`
	Price          float64       `json:"price"`
	CompareAtPrice float64       `json:"compare_at_price,omitempty"`
	CategoryID     string        `json:"category_id,omitempty"`
	Status         ProductStatus `json:"status"`
	Featured       bool          `json:"featured"`
	Images         []string      `json:"images,omitempty"`
	Rating         float64       `json:"rating"`
	ReviewCount    int           `json:"review_count"`
	CreatedAt      time.Time     `json:"created_at"`
	UpdatedAt      time.Time     `json:"updated_at"`
}

// DiscountPercent returns how much cheaper the product is than its compare-at price.
func (p *Product) DiscountPercent() float64 {
	if p.CompareAtPrice <= 0 || p.CompareAtPrice <= p.Price {
		return 0
	}
	return (p.CompareAtPrice - p.Price) / p.CompareAtPrice * 100
}

// Category is a node of the catalog category tree.
type Category struct {
	ID           string      `json:"id"`
	Slug         string      `json:"slug"`
	Name         string      `json:"name"`
	Description  string      `json:"description,omitempty"`
	ParentID     string      `json:"parent_id,omitempty"`
	ProductCount int         `json:"product_count"`
	Children     []*Category `json:"children,omitempty"`
}

// Review is a customer review of a product.
type Review struct {
	ID        string    `json:"id"`
	ProductID string    `json:"product_id"`
	UserID    string    `json:"user_id"`
	Rating    int       `json:"rating"`
	Title     string    `json:"title,omitempty"`
	Body      string    `json:"body,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// Inventory is the stock level of a single product.
type Inventory struct {
	ProductID string    `json:"product_id"`
	Quantity  int       `json:"quantity"`
	Reserved  int       `json:"reserved"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Available returns the quantity that can still be sold.
func (i *Inventory) Available() int {
	if i.Reserved >= i.Quantity {
		return 0
	}
	return i.Quantity - i.Reserved
}

// ComboDeal bundles several products at a reduced price for a time window.
type ComboDeal struct {
	ID            string    `json:"id"`
	Slug          string    `json:"slug"`
	Name          string    `json:"name"`
	ProductIDs    []string  `json:"product_ids"`
	Price         float64   `json:"price"`
	OriginalPrice float64   `json:"original_price"`
	StartsAt      time.Time `json:"starts_at"`
	EndsAt        time.Time `json:"ends_at"`
}

// User is the cached view of a storefront account.
type User struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"created_at"`
}

// SearchResult is a cached page of product search results.
type SearchResult struct {
	Query    string     `json:"query"`
	Products []*Product `json:"products"`
	Total    int        `json:"total"`
}

// ProductSource is the source of truth for product reads.
type ProductSource interface {
	GetProductByID(ctx context.Context, id string) (*Product, error)
	GetProductBySlug(ctx context.Context, slug string) (*Product, error)
	ListProducts(ctx context.Context) ([]*Product, error)
	ListFeaturedProducts(ctx context.Context, limit int) ([]*Product, error)
	ListProductsByCategory(ctx context.Context, categoryID string) ([]*Product, error)
	ListRelatedProducts(ctx context.Context, productID string, limit int) ([]*Product, error)
	ListReviews(ctx context.Context, productID string) ([]*Review, error)
	GetInventory(ctx context.Context, productID string) (*Inventory, error)
}

// CategorySource is the source of truth for category reads.
type CategorySource interface {
	GetCategoryByID(ctx context.Context, id string) (*Category, error)
	GetCategoryBySlug(ctx context.Context, slug string) (*Category, error)
	ListCategories(ctx context.Context) ([]*Category, error)
}

// SearchSource runs product searches against the database.
type SearchSource interface {
	SearchProducts(ctx context.Context, query string, limit int) ([]*Product, error)
	SuggestProductNames(ctx context.Context, prefix string, limit int) ([]string, error)
}

// DealSource provides the aggregates shown on the home page deals section.
type DealSource interface {
	ListActiveComboDeals(ctx context.Context, at time.Time) ([]*ComboDeal, error)
	ListDiscountedProducts(ctx context.Context, limit int) ([]*Product, error)
}

// UserSource is the source of truth for account reads.
type UserSource interface {
	GetUserByID(ctx context.Context, id string) (*User, error)
}
