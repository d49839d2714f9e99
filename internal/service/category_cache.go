package service

import (
	"context"
	"errors"
	"sort"

	"storefront-cache/internal/cache"
	"storefront-cache/internal/domain"
)

// CategoryCacheService serves category reads through both cache tiers.
type CategoryCacheService interface {
	GetCategory(ctx context.Context, id string) (*domain.Category, error)
	GetCategoryBySlug(ctx context.Context, slug string) (*domain.Category, error)
	GetAllCategories(ctx context.Context) ([]*domain.Category, error)
	GetCategoryTree(ctx context.Context) ([]*domain.Category, error)

	InvalidateCategory(ctx context.Context, id, slug string) (int64, error)
	InvalidateCategorySlugs(ctx context.Context) (int64, error)
	InvalidateCategoryListings(ctx context.Context) (int64, error)
	InvalidateAllCategories(ctx context.Context) (int64, error)
}

type categoryCacheServiceImpl struct {
	hybrid *cache.Hybrid
	source domain.CategorySource
	tiers  cache.TTLTiers
}

// NewCategoryCacheService creates a CategoryCacheService backed by source.
func NewCategoryCacheService(hybrid *cache.Hybrid, source domain.CategorySource, tiers cache.TTLTiers) CategoryCacheService {
	return &categoryCacheServiceImpl{hybrid: hybrid, source: source, tiers: tiers}
}

func (s *categoryCacheServiceImpl) GetCategory(ctx context.Context, id string) (*domain.Category, error) {
	if id == "" {
		return nil, domain.NewInvalidInputError("category id is required")
	}
	return cache.Get(ctx, s.hybrid, cache.Entry{
		Operation:  "category.by_id",
		Key:        cache.CategoryKey(id),
		Tags:       []string{cache.CategoryTag(id), cache.TagCategories},
		TTL:        s.tiers.Long,
		Revalidate: s.tiers.Long,
	}, func(ctx context.Context) (*domain.Category, error) {
		return s.source.GetCategoryByID(ctx, id)
	})
}

func (s *categoryCacheServiceImpl) GetCategoryBySlug(ctx context.Context, slug string) (*domain.Category, error) {
	if slug == "" {
		return nil, domain.NewInvalidInputError("category slug is required")
	}
	return cache.Get(ctx, s.hybrid, cache.Entry{
		Operation:  "category.by_slug",
		Key:        cache.CategorySlugKey(slug),
		Tags:       []string{cache.TagCategorySlugs, cache.TagCategories},
		TTL:        s.tiers.Long,
		Revalidate: s.tiers.Long,
	}, func(ctx context.Context) (*domain.Category, error) {
		return s.source.GetCategoryBySlug(ctx, slug)
	})
}

func (s *categoryCacheServiceImpl) GetAllCategories(ctx context.Context) ([]*domain.Category, error) {
	return cache.Get(ctx, s.hybrid, cache.Entry{
		Operation:  "categories.all",
		Key:        cache.CategoriesAllKey(),
		Tags:       []string{cache.TagCategories},
		TTL:        s.tiers.VeryLong,
		Revalidate: s.tiers.Long,
	}, s.source.ListCategories)
}

// GetCategoryTree returns the root categories with their descendants nested.
func (s *categoryCacheServiceImpl) GetCategoryTree(ctx context.Context) ([]*domain.Category, error) {
	return cache.Get(ctx, s.hybrid, cache.Entry{
		Operation:  "categories.tree",
		Key:        cache.CategoriesTreeKey(),
		Tags:       []string{cache.TagCategories},
		TTL:        s.tiers.VeryLong,
		Revalidate: s.tiers.Long,
	}, func(ctx context.Context) ([]*domain.Category, error) {
		flat, err := s.source.ListCategories(ctx)
		if err != nil {
			return nil, err
		}
		return buildCategoryTree(flat), nil
	})
}

func (s *categoryCacheServiceImpl) InvalidateCategory(ctx context.Context, id, slug string) (int64, error) {
	keys := []string{cache.CategoryKey(id)}
	if slug != "" {
		keys = append(keys, cache.CategorySlugKey(slug))
	}
	return s.hybrid.InvalidateKeys(ctx, keys, cache.CategoryTag(id))
}

// InvalidateCategorySlugs clears every slug lookup, for events that do not
// say which slug the category had.
func (s *categoryCacheServiceImpl) InvalidateCategorySlugs(ctx context.Context) (int64, error) {
	return s.hybrid.InvalidatePattern(ctx, cache.CategorySlugPattern(), cache.TagCategorySlugs)
}

func (s *categoryCacheServiceImpl) InvalidateCategoryListings(ctx context.Context) (int64, error) {
	return s.hybrid.InvalidatePattern(ctx, cache.RegionPattern(cache.RegionCategories), cache.TagCategories)
}

func (s *categoryCacheServiceImpl) InvalidateAllCategories(ctx context.Context) (int64, error) {
	entities, err1 := s.hybrid.InvalidatePattern(ctx, cache.RegionPattern(cache.RegionCategory), cache.TagCategories)
	listings, err2 := s.InvalidateCategoryListings(ctx)
	return entities + listings, errors.Join(err1, err2)
}

// buildCategoryTree nests categories under their parents. Categories whose
// parent is unknown are treated as roots. Siblings are ordered by name.
func buildCategoryTree(flat []*domain.Category) []*domain.Category {
	nodes := make(map[string]*domain.Category, len(flat))
	for _, c := range flat {
		node := *c
		node.Children = nil
		nodes[c.ID] = &node
	}

	var roots []*domain.Category
	for _, c := range flat {
		node := nodes[c.ID]
		if parent, ok := nodes[c.ParentID]; ok && c.ParentID != c.ID {
			parent.Children = append(parent.Children, node)
			continue
		}
		roots = append(roots, node)
	}

	var sortLevel func([]*domain.Category)
	sortLevel = func(level []*domain.Category) {
		sort.Slice(level, func(i, j int) bool { return level[i].Name < level[j].Name })
		for _, n := range level {
			sortLevel(n.Children)
		}
	}
	sortLevel(roots)
	return roots
}
