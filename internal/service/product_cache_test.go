package service

import (
	"context"
	"errors"
	"testing"

	"storefront-cache/internal/cache"
	"storefront-cache/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestProductCacheService_GetProduct(t *testing.T) {
	ctx := context.Background()

	t.Run("MissThenHit", func(t *testing.T) {
		s := newTestStack(t)
		p1 := &domain.Product{ID: "P1", Slug: "p1", Price: 10}
		s.productSource.On("GetProductByID", mock.Anything, "P1").Return(p1, nil).Once()

		got, err := s.products.GetProduct(ctx, "P1")
		require.NoError(t, err)
		assert.Equal(t, p1, got)
		assert.True(t, s.store.Has(cache.ProductKey("P1")))

		got, err = s.products.GetProduct(ctx, "P1")
		require.NoError(t, err)
		assert.Equal(t, "P1", got.ID)
		s.productSource.AssertExpectations(t)
	})

	t.Run("NotFoundPropagates", func(t *testing.T) {
		s := newTestStack(t)
		notFound := domain.NewNotFoundError("product not found")
		s.productSource.On("GetProductByID", mock.Anything, "P404").Return(nil, notFound).Twice()

		_, err := s.products.GetProduct(ctx, "P404")
		assert.ErrorIs(t, err, notFound)
		_, err = s.products.GetProduct(ctx, "P404")
		assert.ErrorIs(t, err, notFound)
		assert.False(t, s.store.Has(cache.ProductKey("P404")))
		s.productSource.AssertExpectations(t)
	})

	t.Run("EmptyID", func(t *testing.T) {
		s := newTestStack(t)
		_, err := s.products.GetProduct(ctx, "")
		var domainErr *domain.DomainError
		require.True(t, errors.As(err, &domainErr))
		assert.Equal(t, domain.ErrInvalidInput, domainErr.Code)
		s.productSource.AssertNotCalled(t, "GetProductByID", mock.Anything, mock.Anything)
	})
}

func TestProductCacheService_ListingsAndTiers(t *testing.T) {
	ctx := context.Background()
	s := newTestStack(t)

	listing := []*domain.Product{{ID: "P1"}, {ID: "P2"}}
	s.productSource.On("ListProducts", mock.Anything).Return(listing, nil).Once()
	s.productSource.On("ListFeaturedProducts", mock.Anything, featuredProductsLimit).Return(listing[:1], nil).Once()
	s.productSource.On("ListProductsByCategory", mock.Anything, "C1").Return(listing, nil).Once()
	s.productSource.On("ListRelatedProducts", mock.Anything, "P1", relatedProductsLimit).Return(listing[1:], nil).Once()
	s.productSource.On("ListReviews", mock.Anything, "P1").Return([]*domain.Review{{ID: "R1", ProductID: "P1", Rating: 5}}, nil).Once()
	s.productSource.On("GetInventory", mock.Anything, "P1").Return(&domain.Inventory{ProductID: "P1", Quantity: 3}, nil).Once()

	for i := 0; i < 2; i++ {
		all, err := s.products.GetAllProducts(ctx)
		require.NoError(t, err)
		assert.Len(t, all, 2)

		featured, err := s.products.GetFeaturedProducts(ctx)
		require.NoError(t, err)
		assert.Len(t, featured, 1)

		byCategory, err := s.products.GetProductsByCategory(ctx, "C1")
		require.NoError(t, err)
		assert.Len(t, byCategory, 2)

		related, err := s.products.GetRelatedProducts(ctx, "P1")
		require.NoError(t, err)
		assert.Equal(t, "P2", related[0].ID)

		reviews, err := s.products.GetProductReviews(ctx, "P1")
		require.NoError(t, err)
		assert.Equal(t, 5, reviews[0].Rating)

		inv, err := s.products.GetInventory(ctx, "P1")
		require.NoError(t, err)
		assert.Equal(t, 3, inv.Available())
	}
	s.productSource.AssertExpectations(t)

	assert.InDelta(t, cache.TTLMedium.Seconds(), s.h.KV().TTL(ctx, cache.ProductsAllKey()), 1)
	assert.InDelta(t, cache.TTLShort.Seconds(), s.h.KV().TTL(ctx, cache.ProductsFeaturedKey()), 1)
	assert.InDelta(t, cache.TTLShort.Seconds(), s.h.KV().TTL(ctx, cache.InventoryKey("P1")), 1)
}

func TestProductCacheService_InvalidateProduct(t *testing.T) {
	ctx := context.Background()
	s := newTestStack(t)

	s.productSource.On("GetProductByID", mock.Anything, "P1").Return(&domain.Product{ID: "P1", Price: 10}, nil).Once()
	s.productSource.On("GetProductBySlug", mock.Anything, "p1").Return(&domain.Product{ID: "P1", Price: 10}, nil).Once()
	_, err := s.products.GetProduct(ctx, "P1")
	require.NoError(t, err)
	_, err = s.products.GetProductBySlug(ctx, "p1")
	require.NoError(t, err)

	n, err := s.products.InvalidateProduct(ctx, "P1", "p1")
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)
	assert.Empty(t, s.store.Keys())

	s.productSource.On("GetProductByID", mock.Anything, "P1").Return(&domain.Product{ID: "P1", Price: 12}, nil).Once()
	got, err := s.products.GetProduct(ctx, "P1")
	require.NoError(t, err)
	assert.Equal(t, 12.0, got.Price)
	s.productSource.AssertExpectations(t)
}

func TestProductCacheService_InvalidateAllProducts(t *testing.T) {
	ctx := context.Background()
	s := newTestStack(t)

	s.store.Seed(cache.ProductKey("P1"), "{}")
	s.store.Seed(cache.ProductSlugKey("p1"), "{}")
	s.store.Seed(cache.ProductsAllKey(), "[]")
	s.store.Seed(cache.CategoryKey("C1"), "{}")

	n, err := s.products.InvalidateAllProducts(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(3), n)
	assert.Equal(t, []string{cache.CategoryKey("C1")}, s.store.Keys())
}
