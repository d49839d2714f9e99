package service

import (
	"context"
	"time"

	"storefront-cache/internal/cache"
	"storefront-cache/internal/domain"

	"golang.org/x/sync/errgroup"
)

const discountedProductsLimit = 12

// HomeDeals is the deals section of the home page for one hour bucket.
type HomeDeals struct {
	Bucket             int64               `json:"bucket"`
	ComboDeals         []*domain.ComboDeal `json:"combo_deals"`
	DiscountedProducts []*domain.Product   `json:"discounted_products"`
}

// HomeDealsCacheService caches deal aggregates under hour-bucketed keys, so
// they roll over on the hour without a scheduled job.
type HomeDealsCacheService interface {
	GetHomeDeals(ctx context.Context) (*HomeDeals, error)
	GetComboDeals(ctx context.Context) ([]*domain.ComboDeal, error)
	GetDiscountedProducts(ctx context.Context) ([]*domain.Product, error)

	InvalidateComboDeals(ctx context.Context) (int64, error)
	InvalidateCurrentBucket(ctx context.Context) (int64, error)
	InvalidateAllDeals(ctx context.Context) (int64, error)
}

type homeDealsCacheServiceImpl struct {
	hybrid *cache.Hybrid
	source domain.DealSource
	tiers  cache.TTLTiers
	now    func() time.Time
}

// NewHomeDealsCacheService creates a HomeDealsCacheService. A nil now uses
// time.Now.
func NewHomeDealsCacheService(hybrid *cache.Hybrid, source domain.DealSource, tiers cache.TTLTiers, now func() time.Time) HomeDealsCacheService {
	if now == nil {
		now = time.Now
	}
	return &homeDealsCacheServiceImpl{hybrid: hybrid, source: source, tiers: tiers, now: now}
}

func (s *homeDealsCacheServiceImpl) GetHomeDeals(ctx context.Context) (*HomeDeals, error) {
	deals := &HomeDeals{Bucket: cache.HourBucket(s.now())}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		combos, err := s.GetComboDeals(gctx)
		deals.ComboDeals = combos
		return err
	})
	g.Go(func() error {
		discounted, err := s.GetDiscountedProducts(gctx)
		deals.DiscountedProducts = discounted
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return deals, nil
}

func (s *homeDealsCacheServiceImpl) GetComboDeals(ctx context.Context) ([]*domain.ComboDeal, error) {
	now := s.now()
	return cache.Get(ctx, s.hybrid, cache.Entry{
		Operation:  "home_deals.combo",
		Key:        cache.HomeDealsKey(cache.DealKindCombo, now),
		Tags:       []string{cache.TagHomeDeals, cache.TagComboDeals},
		TTL:        s.tiers.Long,
		Revalidate: s.tiers.Long,
	}, func(ctx context.Context) ([]*domain.ComboDeal, error) {
		return s.source.ListActiveComboDeals(ctx, now)
	})
}

func (s *homeDealsCacheServiceImpl) GetDiscountedProducts(ctx context.Context) ([]*domain.Product, error) {
	return cache.Get(ctx, s.hybrid, cache.Entry{
		Operation:  "home_deals.discounted",
		Key:        cache.HomeDealsKey(cache.DealKindDiscounted, s.now()),
		Tags:       []string{cache.TagHomeDeals},
		TTL:        s.tiers.Long,
		Revalidate: s.tiers.Long,
	}, func(ctx context.Context) ([]*domain.Product, error) {
		return s.source.ListDiscountedProducts(ctx, discountedProductsLimit)
	})
}

// InvalidateComboDeals clears every bucket of the combo deals.
func (s *homeDealsCacheServiceImpl) InvalidateComboDeals(ctx context.Context) (int64, error) {
	return s.hybrid.InvalidatePattern(ctx, cache.HomeDealsKindPattern(cache.DealKindCombo), cache.TagComboDeals)
}

// InvalidateCurrentBucket clears the deals of the current hour.
func (s *homeDealsCacheServiceImpl) InvalidateCurrentBucket(ctx context.Context) (int64, error) {
	now := s.now()
	return s.hybrid.InvalidateKeys(ctx, []string{
		cache.HomeDealsKey(cache.DealKindCombo, now),
		cache.HomeDealsKey(cache.DealKindDiscounted, now),
	}, cache.TagHomeDeals)
}

func (s *homeDealsCacheServiceImpl) InvalidateAllDeals(ctx context.Context) (int64, error) {
	return s.hybrid.InvalidatePattern(ctx, cache.RegionPattern(cache.RegionHomeDeals), cache.TagHomeDeals)
}
