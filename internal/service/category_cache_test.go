package service

import (
	"context"
	"testing"

	"storefront-cache/internal/cache"
	"storefront-cache/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestBuildCategoryTree(t *testing.T) {
	flat := []*domain.Category{
		{ID: "3", Name: "Sneakers", ParentID: "1"},
		{ID: "1", Name: "Shoes"},
		{ID: "2", Name: "Bags"},
		{ID: "4", Name: "Boots", ParentID: "1"},
		{ID: "5", Name: "Orphan", ParentID: "missing"},
	}

	tree := buildCategoryTree(flat)

	require.Len(t, tree, 3)
	assert.Equal(t, []string{"Bags", "Orphan", "Shoes"}, []string{tree[0].Name, tree[1].Name, tree[2].Name})
	shoes := tree[2]
	require.Len(t, shoes.Children, 2)
	assert.Equal(t, "Boots", shoes.Children[0].Name)
	assert.Equal(t, "Sneakers", shoes.Children[1].Name)
	assert.Nil(t, flat[1].Children, "source slice is not mutated")
}

func TestCategoryCacheService_GetAndInvalidate(t *testing.T) {
	ctx := context.Background()
	s := newTestStack(t)

	flat := []*domain.Category{{ID: "1", Name: "Shoes", Slug: "shoes"}, {ID: "2", Name: "Sneakers", ParentID: "1"}}
	s.categorySource.On("ListCategories", mock.Anything).Return(flat, nil).Twice()
	s.categorySource.On("GetCategoryByID", mock.Anything, "1").Return(flat[0], nil).Once()
	s.categorySource.On("GetCategoryBySlug", mock.Anything, "shoes").Return(flat[0], nil).Once()

	for i := 0; i < 2; i++ {
		all, err := s.categories.GetAllCategories(ctx)
		require.NoError(t, err)
		assert.Len(t, all, 2)

		tree, err := s.categories.GetCategoryTree(ctx)
		require.NoError(t, err)
		require.Len(t, tree, 1)
		assert.Len(t, tree[0].Children, 1)

		c, err := s.categories.GetCategory(ctx, "1")
		require.NoError(t, err)
		assert.Equal(t, "Shoes", c.Name)

		c, err = s.categories.GetCategoryBySlug(ctx, "shoes")
		require.NoError(t, err)
		assert.Equal(t, "1", c.ID)
	}
	s.categorySource.AssertExpectations(t)
	assert.InDelta(t, cache.TTLVeryLong.Seconds(), s.h.KV().TTL(ctx, cache.CategoriesTreeKey()), 1)

	n, err := s.categories.InvalidateAllCategories(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(4), n)
	assert.Empty(t, s.store.Keys())
	assert.Zero(t, s.h.Local().Len())
}
