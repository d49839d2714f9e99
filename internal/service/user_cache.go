package service

import (
	"context"

	"storefront-cache/internal/cache"
	"storefront-cache/internal/domain"
)

// UserCacheService caches account lookups.
type UserCacheService interface {
	GetUser(ctx context.Context, id string) (*domain.User, error)
	InvalidateUser(ctx context.Context, id string) (int64, error)
}

type userCacheServiceImpl struct {
	hybrid *cache.Hybrid
	source domain.UserSource
	tiers  cache.TTLTiers
}

func NewUserCacheService(hybrid *cache.Hybrid, source domain.UserSource, tiers cache.TTLTiers) UserCacheService {
	return &userCacheServiceImpl{hybrid: hybrid, source: source, tiers: tiers}
}

func (s *userCacheServiceImpl) GetUser(ctx context.Context, id string) (*domain.User, error) {
	if id == "" {
		return nil, domain.NewInvalidInputError("user id is required")
	}
	return cache.Get(ctx, s.hybrid, cache.Entry{
		Operation:  "user.by_id",
		Key:        cache.UserKey(id),
		Tags:       []string{cache.UserTag(id)},
		TTL:        s.tiers.Medium,
		Revalidate: s.tiers.Medium,
	}, func(ctx context.Context) (*domain.User, error) {
		return s.source.GetUserByID(ctx, id)
	})
}

func (s *userCacheServiceImpl) InvalidateUser(ctx context.Context, id string) (int64, error) {
	return s.hybrid.Invalidate(ctx, cache.UserKey(id), cache.UserTag(id))
}
