package service

import (
	"context"
	"sort"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
	"go.uber.org/zap"
)

const defaultWarmupConcurrency = 4

// WarmupReport lists the targets a warmup run loaded and the ones that failed.
type WarmupReport struct {
	StartedAt time.Time         `json:"started_at"`
	Duration  time.Duration     `json:"duration"`
	Warmed    []string          `json:"warmed"`
	Failed    map[string]string `json:"failed,omitempty"`
}

// WarmupService preloads the hottest read paths into both cache tiers.
type WarmupService interface {
	Warm(ctx context.Context) *WarmupReport
}

type warmupTarget struct {
	name string
	run  func(ctx context.Context) error
}

type warmupService struct {
	products    ProductCacheService
	categories  CategoryCacheService
	deals       HomeDealsCacheService
	concurrency int
	logger      *zap.Logger
}

// NewWarmupService creates a WarmupService. Concurrency below one uses the
// default.
func NewWarmupService(
	products ProductCacheService,
	categories CategoryCacheService,
	deals HomeDealsCacheService,
	concurrency int,
	logger *zap.Logger,
) WarmupService {
	if concurrency < 1 {
		concurrency = defaultWarmupConcurrency
	}
	return &warmupService{
		products:    products,
		categories:  categories,
		deals:       deals,
		concurrency: concurrency,
		logger:      logger,
	}
}

// Warm loads every target through the regular read path. A failing target is
// logged and recorded; the others still run.
func (s *warmupService) Warm(ctx context.Context) *WarmupReport {
	report := &WarmupReport{StartedAt: time.Now(), Failed: make(map[string]string)}
	s.logger.Info("Starting cache warmup", zap.Time("start_time", report.StartedAt))

	var mu sync.Mutex
	record := func(name string, err error) {
		mu.Lock()
		defer mu.Unlock()
		if err != nil {
			s.logger.Warn("Warmup target failed", zap.String("target", name), zap.Error(err))
			report.Failed[name] = err.Error()
			return
		}
		s.logger.Debug("Warmup target loaded", zap.String("target", name))
		report.Warmed = append(report.Warmed, name)
	}

	// Categories go first since per-category listings depend on them.
	categories, err := s.categories.GetAllCategories(ctx)
	record("categories.all", err)

	targets := []warmupTarget{
		{name: "categories.tree", run: func(ctx context.Context) error {
			_, err := s.categories.GetCategoryTree(ctx)
			return err
		}},
		{name: "products.all", run: func(ctx context.Context) error {
			_, err := s.products.GetAllProducts(ctx)
			return err
		}},
		{name: "products.featured", run: func(ctx context.Context) error {
			_, err := s.products.GetFeaturedProducts(ctx)
			return err
		}},
		{name: "home_deals", run: func(ctx context.Context) error {
			_, err := s.deals.GetHomeDeals(ctx)
			return err
		}},
	}
	for _, c := range categories {
		id := c.ID
		targets = append(targets, warmupTarget{name: "products.category:" + id, run: func(ctx context.Context) error {
			_, err := s.products.GetProductsByCategory(ctx, id)
			return err
		}})
	}

	var g errgroup.Group
	g.SetLimit(s.concurrency)
	for _, t := range targets {
		t := t
		g.Go(func() error {
			record(t.name, t.run(ctx))
			return nil
		})
	}
	_ = g.Wait()

	sort.Strings(report.Warmed)
	report.Duration = time.Since(report.StartedAt)
	s.logger.Info("Cache warmup finished",
		zap.Int("warmed", len(report.Warmed)),
		zap.Int("failed", len(report.Failed)),
		zap.Duration("duration", report.Duration))
	return report
}
