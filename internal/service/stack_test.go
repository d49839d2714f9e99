package service

import (
	"testing"
	"time"

	"storefront-cache/internal/cache"
	"storefront-cache/internal/cache/cachetest"

	"go.uber.org/zap/zaptest"
)

// testStack wires every facade over an in-memory store and mocked sources.
type testStack struct {
	store *cachetest.MemoryStore
	clock *cachetest.Clock
	h     *cache.Hybrid

	productSource  *MockProductSource
	categorySource *MockCategorySource
	searchSource   *MockSearchSource
	dealSource     *MockDealSource
	userSource     *MockUserSource

	products     ProductCacheService
	categories   CategoryCacheService
	search       SearchCacheService
	deals        HomeDealsCacheService
	users        UserCacheService
	invalidation InvalidationService
}

var stackStart = time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)

func newTestStack(t *testing.T) *testStack {
	t.Helper()
	clock := cachetest.NewClock(stackStart)
	store := cachetest.NewMemoryStore(clock.Now)
	return newTestStackWithStore(t, store, clock)
}

func newTestStackWithStore(t *testing.T, store *cachetest.MemoryStore, clock *cachetest.Clock) *testStack {
	t.Helper()
	s := &testStack{
		store:          store,
		clock:          clock,
		h:              cachetest.NewHybrid(t, store, clock.Now),
		productSource:  new(MockProductSource),
		categorySource: new(MockCategorySource),
		searchSource:   new(MockSearchSource),
		dealSource:     new(MockDealSource),
		userSource:     new(MockUserSource),
	}
	tiers := cache.DefaultTiers()
	s.products = NewProductCacheService(s.h, s.productSource, tiers)
	s.categories = NewCategoryCacheService(s.h, s.categorySource, tiers)
	s.search = NewSearchCacheService(s.h, s.searchSource, tiers)
	s.deals = NewHomeDealsCacheService(s.h, s.dealSource, tiers, clock.Now)
	s.users = NewUserCacheService(s.h, s.userSource, tiers)
	s.invalidation = NewInvalidationService(s.products, s.categories, s.search, s.deals, s.users, zaptest.NewLogger(t))
	return s
}
