package service

import (
	"context"
	"errors"

	"storefront-cache/internal/cache"
	"storefront-cache/internal/domain"
)

const (
	featuredProductsLimit = 12
	relatedProductsLimit  = 8
)

// ProductCacheService serves product reads through both cache tiers.
type ProductCacheService interface {
	GetProduct(ctx context.Context, id string) (*domain.Product, error)
	GetProductBySlug(ctx context.Context, slug string) (*domain.Product, error)
	GetAllProducts(ctx context.Context) ([]*domain.Product, error)
	GetFeaturedProducts(ctx context.Context) ([]*domain.Product, error)
	GetProductsByCategory(ctx context.Context, categoryID string) ([]*domain.Product, error)
	GetRelatedProducts(ctx context.Context, productID string) ([]*domain.Product, error)
	GetProductReviews(ctx context.Context, productID string) ([]*domain.Review, error)
	GetInventory(ctx context.Context, productID string) (*domain.Inventory, error)

	InvalidateProduct(ctx context.Context, id, slug string) (int64, error)
	InvalidateProductSlugs(ctx context.Context) (int64, error)
	InvalidateProductListings(ctx context.Context) (int64, error)
	InvalidateCategoryListing(ctx context.Context, categoryID string) (int64, error)
	InvalidateReviews(ctx context.Context, productID string) (int64, error)
	InvalidateInventory(ctx context.Context, productID string) (int64, error)
	InvalidateAllProducts(ctx context.Context) (int64, error)
}

type productCacheServiceImpl struct {
	hybrid *cache.Hybrid
	source domain.ProductSource
	tiers  cache.TTLTiers
}

// NewProductCacheService creates a ProductCacheService backed by source.
func NewProductCacheService(hybrid *cache.Hybrid, source domain.ProductSource, tiers cache.TTLTiers) ProductCacheService {
	return &productCacheServiceImpl{hybrid: hybrid, source: source, tiers: tiers}
}

func (s *productCacheServiceImpl) GetProduct(ctx context.Context, id string) (*domain.Product, error) {
	if id == "" {
		return nil, domain.NewInvalidInputError("product id is required")
	}
	return cache.Get(ctx, s.hybrid, cache.Entry{
		Operation:  "product.by_id",
		Key:        cache.ProductKey(id),
		Tags:       []string{cache.ProductTag(id), cache.TagProductEntities},
		TTL:        s.tiers.Long,
		Revalidate: s.tiers.Long,
	}, func(ctx context.Context) (*domain.Product, error) {
		return s.source.GetProductByID(ctx, id)
	})
}

func (s *productCacheServiceImpl) GetProductBySlug(ctx context.Context, slug string) (*domain.Product, error) {
	if slug == "" {
		return nil, domain.NewInvalidInputError("product slug is required")
	}
	return cache.Get(ctx, s.hybrid, cache.Entry{
		Operation:  "product.by_slug",
		Key:        cache.ProductSlugKey(slug),
		Tags:       []string{cache.ProductSlugTag(slug), cache.TagProductSlugs},
		TTL:        s.tiers.Long,
		Revalidate: s.tiers.Long,
	}, func(ctx context.Context) (*domain.Product, error) {
		return s.source.GetProductBySlug(ctx, slug)
	})
}

func (s *productCacheServiceImpl) GetAllProducts(ctx context.Context) ([]*domain.Product, error) {
	return cache.Get(ctx, s.hybrid, cache.Entry{
		Operation:  "products.all",
		Key:        cache.ProductsAllKey(),
		Tags:       []string{cache.TagProducts},
		TTL:        s.tiers.Medium,
		Revalidate: s.tiers.Medium,
	}, s.source.ListProducts)
}

// GetFeaturedProducts changes with merchandising, so it uses the short tier.
func (s *productCacheServiceImpl) GetFeaturedProducts(ctx context.Context) ([]*domain.Product, error) {
	return cache.Get(ctx, s.hybrid, cache.Entry{
		Operation:  "products.featured",
		Key:        cache.ProductsFeaturedKey(),
		Tags:       []string{cache.TagProducts},
		TTL:        s.tiers.Short,
		Revalidate: s.tiers.Short,
	}, func(ctx context.Context) ([]*domain.Product, error) {
		return s.source.ListFeaturedProducts(ctx, featuredProductsLimit)
	})
}

func (s *productCacheServiceImpl) GetProductsByCategory(ctx context.Context, categoryID string) ([]*domain.Product, error) {
	if categoryID == "" {
		return nil, domain.NewInvalidInputError("category id is required")
	}
	return cache.Get(ctx, s.hybrid, cache.Entry{
		Operation:  "products.by_category",
		Key:        cache.ProductsByCategoryKey(categoryID),
		Tags:       []string{cache.TagProducts, cache.CategoryTag(categoryID)},
		TTL:        s.tiers.Medium,
		Revalidate: s.tiers.Medium,
	}, func(ctx context.Context) ([]*domain.Product, error) {
		return s.source.ListProductsByCategory(ctx, categoryID)
	})
}

func (s *productCacheServiceImpl) GetRelatedProducts(ctx context.Context, productID string) ([]*domain.Product, error) {
	if productID == "" {
		return nil, domain.NewInvalidInputError("product id is required")
	}
	return cache.Get(ctx, s.hybrid, cache.Entry{
		Operation:  "products.related",
		Key:        cache.RelatedProductsKey(productID),
		Tags:       []string{cache.TagProducts, cache.ProductTag(productID)},
		TTL:        s.tiers.Medium,
		Revalidate: s.tiers.Medium,
	}, func(ctx context.Context) ([]*domain.Product, error) {
		return s.source.ListRelatedProducts(ctx, productID, relatedProductsLimit)
	})
}

func (s *productCacheServiceImpl) GetProductReviews(ctx context.Context, productID string) ([]*domain.Review, error) {
	if productID == "" {
		return nil, domain.NewInvalidInputError("product id is required")
	}
	return cache.Get(ctx, s.hybrid, cache.Entry{
		Operation:  "reviews.by_product",
		Key:        cache.ReviewsKey(productID),
		Tags:       []string{cache.ReviewsTag(productID)},
		TTL:        s.tiers.Medium,
		Revalidate: s.tiers.Medium,
	}, func(ctx context.Context) ([]*domain.Review, error) {
		return s.source.ListReviews(ctx, productID)
	})
}

// GetInventory uses the short tier; stock moves faster than catalog data.
func (s *productCacheServiceImpl) GetInventory(ctx context.Context, productID string) (*domain.Inventory, error) {
	if productID == "" {
		return nil, domain.NewInvalidInputError("product id is required")
	}
	return cache.Get(ctx, s.hybrid, cache.Entry{
		Operation:  "inventory.by_product",
		Key:        cache.InventoryKey(productID),
		Tags:       []string{cache.InventoryTag(productID)},
		TTL:        s.tiers.Short,
		Revalidate: s.tiers.Short,
	}, func(ctx context.Context) (*domain.Inventory, error) {
		return s.source.GetInventory(ctx, productID)
	})
}

// InvalidateProduct clears the product's own entries: by id, related
// listing and, when slug is given, by slug.
func (s *productCacheServiceImpl) InvalidateProduct(ctx context.Context, id, slug string) (int64, error) {
	keys := []string{cache.ProductKey(id), cache.RelatedProductsKey(id)}
	tags := []string{cache.ProductTag(id)}
	if slug != "" {
		keys = append(keys, cache.ProductSlugKey(slug))
		tags = append(tags, cache.ProductSlugTag(slug))
	}
	return s.hybrid.InvalidateKeys(ctx, keys, tags...)
}

// InvalidateProductSlugs clears every slug lookup, for updates that may have
// renamed a product whose old slug is unknown.
func (s *productCacheServiceImpl) InvalidateProductSlugs(ctx context.Context) (int64, error) {
	return s.hybrid.InvalidatePattern(ctx, cache.ProductSlugPattern(), cache.TagProductSlugs)
}

func (s *productCacheServiceImpl) InvalidateProductListings(ctx context.Context) (int64, error) {
	return s.hybrid.InvalidatePattern(ctx, cache.RegionPattern(cache.RegionProducts), cache.TagProducts)
}

func (s *productCacheServiceImpl) InvalidateCategoryListing(ctx context.Context, categoryID string) (int64, error) {
	return s.hybrid.Invalidate(ctx, cache.ProductsByCategoryKey(categoryID), cache.CategoryTag(categoryID))
}

func (s *productCacheServiceImpl) InvalidateReviews(ctx context.Context, productID string) (int64, error) {
	return s.hybrid.Invalidate(ctx, cache.ReviewsKey(productID), cache.ReviewsTag(productID))
}

func (s *productCacheServiceImpl) InvalidateInventory(ctx context.Context, productID string) (int64, error) {
	return s.hybrid.Invalidate(ctx, cache.InventoryKey(productID), cache.InventoryTag(productID))
}

// InvalidateAllProducts clears both product regions and every product tag.
func (s *productCacheServiceImpl) InvalidateAllProducts(ctx context.Context) (int64, error) {
	entities, err1 := s.hybrid.InvalidatePattern(ctx, cache.RegionPattern(cache.RegionProduct),
		cache.TagProductEntities, cache.TagProductSlugs)
	listings, err2 := s.InvalidateProductListings(ctx)
	return entities + listings, errors.Join(err1, err2)
}
