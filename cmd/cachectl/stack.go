package main

import (
	"context"
	"fmt"

	"storefront-cache/internal/adapter"
	"storefront-cache/internal/cache"
	"storefront-cache/internal/config"
	"storefront-cache/internal/database"
	"storefront-cache/internal/domain"
	"storefront-cache/internal/repository"
	"storefront-cache/internal/service"

	"github.com/jmoiron/sqlx"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
)

// stack is the cache wiring a command runs against. Sources are only
// connected for commands that read through them.
type stack struct {
	db     *sqlx.DB
	kv     *cache.KVClient
	hybrid *cache.Hybrid

	products     service.ProductCacheService
	categories   service.CategoryCacheService
	deals        service.HomeDealsCacheService
	invalidation service.InvalidationService
	monitor      *cache.Monitor
}

func newStack(ctx context.Context, cfg *config.Config, withSources bool, log *zap.Logger) (*stack, error) {
	s := &stack{}

	// Invalidation never reads a source, so the facades can go without them.
	var (
		productSource  domain.ProductSource
		categorySource domain.CategorySource
		searchSource   domain.SearchSource
		dealSource     domain.DealSource
		userSource     domain.UserSource
	)
	if withSources {
		db, err := database.NewSQLXOracleDB(ctx, cfg.GetDSN(), database.PoolConfig{
			MaxOpenConns:    cfg.DB.MaxOpenConns,
			MaxIdleConns:    cfg.DB.MaxIdleConns,
			ConnMaxLifetime: cfg.DB.ConnMaxLifetime,
		}, log)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to database: %w", err)
		}
		s.db = db
		productSource = repository.NewProductDatabaseAdapter(db)
		categorySource = repository.NewCategoryDatabaseAdapter(db)
		searchSource = repository.NewSearchDatabaseAdapter(db)
		dealSource = repository.NewDealDatabaseAdapter(db)
		userSource = repository.NewUserDatabaseAdapter(db)
	}

	redisClient, err := cache.NewRedisClient(cfg.Redis)
	if err != nil {
		s.close(log)
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}
	s.kv = cache.NewKVClient(adapter.NewRedisCacheAdapter(redisClient), cache.KVOptions{
		OpTimeout:       cfg.Redis.OpTimeout,
		BreakerFailures: cfg.Cache.BreakerFailures,
		BreakerTimeout:  cfg.Cache.BreakerTimeout,
		Logger:          log.Named("kv"),
	})
	if err := s.kv.Connect(ctx); err != nil {
		s.close(log)
		return nil, fmt.Errorf("cache store is not reachable: %w", err)
	}

	local, err := cache.NewLocalCache(cache.LocalOptions{
		Capacity:     cfg.Cache.LocalCapacity,
		SingleFlight: cfg.Cache.SingleFlight,
		Logger:       log.Named("local"),
	})
	if err != nil {
		s.close(log)
		return nil, err
	}
	stats, err := cache.NewTracker(prometheus.NewRegistry())
	if err != nil {
		s.close(log)
		return nil, err
	}

	s.hybrid = cache.NewHybrid(s.kv, local, stats, log.Named("cache"))
	tiers := cache.TiersFromConfig(cfg.Cache)
	s.products = service.NewProductCacheService(s.hybrid, productSource, tiers)
	s.categories = service.NewCategoryCacheService(s.hybrid, categorySource, tiers)
	s.deals = service.NewHomeDealsCacheService(s.hybrid, dealSource, tiers, nil)
	search := service.NewSearchCacheService(s.hybrid, searchSource, tiers)
	users := service.NewUserCacheService(s.hybrid, userSource, tiers)
	s.invalidation = service.NewInvalidationService(s.products, s.categories, search, s.deals, users, log.Named("invalidation"))
	s.monitor = cache.NewMonitor(s.hybrid, log.Named("monitor"))
	return s, nil
}

func (s *stack) close(log *zap.Logger) {
	if s.kv != nil {
		if err := s.kv.Close(); err != nil {
			log.Warn("Failed to close cache store", zap.Error(err))
		}
	}
	if s.db != nil {
		if err := s.db.Close(); err != nil {
			log.Warn("Failed to close database", zap.Error(err))
		}
	}
}
