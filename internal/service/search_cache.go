package service

import (
	"context"

	"storefront-cache/internal/cache"
	"storefront-cache/internal/domain"
)

const (
	defaultSearchLimit = 20
	maxSearchLimit     = 100
	suggestLimit       = 10
)

// SearchCacheService caches product search results and suggestions.
type SearchCacheService interface {
	Search(ctx context.Context, query string, limit int) (*domain.SearchResult, error)
	Suggest(ctx context.Context, prefix string) ([]string, error)
	InvalidateSearch(ctx context.Context) (int64, error)
}

type searchCacheServiceImpl struct {
	hybrid *cache.Hybrid
	source domain.SearchSource
	tiers  cache.TTLTiers
}

// NewSearchCacheService creates a SearchCacheService backed by source.
func NewSearchCacheService(hybrid *cache.Hybrid, source domain.SearchSource, tiers cache.TTLTiers) SearchCacheService {
	return &searchCacheServiceImpl{hybrid: hybrid, source: source, tiers: tiers}
}

// Search returns up to limit products matching query. Blank queries return
// an empty result without touching the cache or the database.
func (s *searchCacheServiceImpl) Search(ctx context.Context, query string, limit int) (*domain.SearchResult, error) {
	normalized := cache.NormalizeQuery(query)
	if normalized == "" {
		return &domain.SearchResult{Products: []*domain.Product{}}, nil
	}
	if limit <= 0 {
		limit = defaultSearchLimit
	}
	if limit > maxSearchLimit {
		limit = maxSearchLimit
	}

	return cache.Get(ctx, s.hybrid, cache.Entry{
		Operation:  "search.query",
		Key:        cache.SearchKey(normalized, limit),
		Tags:       []string{cache.TagSearch},
		TTL:        s.tiers.Short,
		Revalidate: s.tiers.Short,
	}, func(ctx context.Context) (*domain.SearchResult, error) {
		products, err := s.source.SearchProducts(ctx, normalized, limit)
		if err != nil {
			return nil, err
		}
		if products == nil {
			products = []*domain.Product{}
		}
		return &domain.SearchResult{Query: normalized, Products: products, Total: len(products)}, nil
	})
}

func (s *searchCacheServiceImpl) Suggest(ctx context.Context, prefix string) ([]string, error) {
	normalized := cache.NormalizeQuery(prefix)
	if normalized == "" {
		return []string{}, nil
	}
	return cache.Get(ctx, s.hybrid, cache.Entry{
		Operation:  "search.suggest",
		Key:        cache.SearchSuggestKey(normalized),
		Tags:       []string{cache.TagSearch},
		TTL:        s.tiers.Medium,
		Revalidate: s.tiers.Medium,
	}, func(ctx context.Context) ([]string, error) {
		return s.source.SuggestProductNames(ctx, normalized, suggestLimit)
	})
}

func (s *searchCacheServiceImpl) InvalidateSearch(ctx context.Context) (int64, error) {
	return s.hybrid.InvalidatePattern(ctx, cache.RegionPattern(cache.RegionSearch), cache.TagSearch)
}
