package service

import (
	"context"
	"time"

	"storefront-cache/internal/domain"
	"storefront-cache/internal/util"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// InvalidationService clears every cache region a committed mutation could
// have staled. It never fails the mutation that triggered it.
type InvalidationService interface {
	SmartInvalidate(ctx context.Context, event domain.InvalidationEvent) domain.InvalidationReport
}

type invalidationBranch struct {
	name string
	run  func(ctx context.Context) (int64, error)
}

type invalidationServiceImpl struct {
	products   ProductCacheService
	categories CategoryCacheService
	search     SearchCacheService
	deals      HomeDealsCacheService
	users      UserCacheService
	logger     *zap.Logger
}

// NewInvalidationService creates an InvalidationService over the facades.
func NewInvalidationService(
	products ProductCacheService,
	categories CategoryCacheService,
	search SearchCacheService,
	deals HomeDealsCacheService,
	users UserCacheService,
	logger *zap.Logger,
) InvalidationService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &invalidationServiceImpl{
		products:   products,
		categories: categories,
		search:     search,
		deals:      deals,
		users:      users,
		logger:     logger,
	}
}

// SmartInvalidate runs the branches for event concurrently and reports each
// outcome. A failing branch is logged and does not stop its siblings.
// Invalid events are logged and produce a report without branches.
func (s *invalidationServiceImpl) SmartInvalidate(ctx context.Context, event domain.InvalidationEvent) domain.InvalidationReport {
	start := time.Now()
	if event.ID == "" {
		event.ID = util.NewULID()
	}
	report := domain.InvalidationReport{
		EventID:  event.ID,
		Entity:   event.Entity,
		Type:     event.Type,
		Branches: []domain.BranchResult{},
	}
	log := s.logger.With(
		zap.String("eventID", event.ID),
		zap.String("entity", string(event.Entity)),
		zap.String("type", string(event.Type)),
	)

	if err := event.Validate(); err != nil {
		log.Warn("Ignoring invalid invalidation event", zap.Error(err))
		return report
	}

	// The mutation is already committed; a caller that goes away must not
	// leave the cache half cleared.
	ctx = context.WithoutCancel(ctx)

	branches := s.plan(event)
	results := make([]domain.BranchResult, len(branches))
	var g errgroup.Group
	for i, b := range branches {
		i, b := i, b
		g.Go(func() error {
			n, err := b.run(ctx)
			results[i] = domain.BranchResult{Name: b.name, KeysDeleted: n}
			if err != nil {
				results[i].Error = err.Error()
				log.Warn("Invalidation branch failed", zap.String("branch", b.name), zap.Error(err))
				return nil
			}
			log.Debug("Invalidation branch done", zap.String("branch", b.name), zap.Int64("keysDeleted", n))
			return nil
		})
	}
	_ = g.Wait()

	report.Branches = results
	report.Duration = time.Since(start)
	log.Info("Cache invalidated",
		zap.Int("branches", len(results)),
		zap.Int("failed", report.Failed()),
		zap.Duration("duration", report.Duration))
	return report
}

// plan maps an event to the branches it needs. Event identifiers have
// already been validated.
func (s *invalidationServiceImpl) plan(event domain.InvalidationEvent) []invalidationBranch {
	d := event.Data
	switch event.Entity {
	case domain.EntityProduct:
		return s.planProduct(event.Type, d)

	case domain.EntityCategory:
		var branches []invalidationBranch
		if id := d.CategoryIdentifier(); id != "" {
			branches = append(branches, invalidationBranch{"category.entry", func(ctx context.Context) (int64, error) {
				return s.categories.InvalidateCategory(ctx, id, d.Slug)
			}})
			if d.Slug == "" {
				branches = append(branches, invalidationBranch{"category.slugs", s.categories.InvalidateCategorySlugs})
			}
		}
		return append(branches,
			invalidationBranch{"categories.listings", s.categories.InvalidateCategoryListings},
			invalidationBranch{"products.listings", s.products.InvalidateProductListings},
		)

	case domain.EntityUser:
		id := d.UserIdentifier()
		return []invalidationBranch{{"user.entry", func(ctx context.Context) (int64, error) {
			return s.users.InvalidateUser(ctx, id)
		}}}

	case domain.EntityReview:
		return s.planReview(d.ProductID, d.Slug)

	case domain.EntityComboDeal:
		return []invalidationBranch{
			{"home_deals.combo", s.deals.InvalidateComboDeals},
			{"home_deals.bucket", s.deals.InvalidateCurrentBucket},
		}
	}
	return nil
}

func (s *invalidationServiceImpl) planProduct(eventType domain.EventType, d domain.EventData) []invalidationBranch {
	id := d.ProductIdentifier()

	switch eventType {
	case domain.EventInventoryUpdate:
		return []invalidationBranch{{"inventory", func(ctx context.Context) (int64, error) {
			return s.products.InvalidateInventory(ctx, id)
		}}}
	case domain.EventReview:
		return s.planReview(id, d.Slug)
	}

	branches := []invalidationBranch{
		{"products.listings", s.products.InvalidateProductListings},
		{"search", s.search.InvalidateSearch},
		{"home_deals", s.deals.InvalidateAllDeals},
	}
	if eventType == domain.EventCreate && id == "" {
		return branches
	}

	branches = append(branches, invalidationBranch{"product.entry", func(ctx context.Context) (int64, error) {
		return s.products.InvalidateProduct(ctx, id, d.Slug)
	}})
	if d.Slug == "" && eventType != domain.EventCreate {
		branches = append(branches, invalidationBranch{"product.slugs", s.products.InvalidateProductSlugs})
	}
	return branches
}

// planReview clears a product's reviews and its own entries, whose rating
// summary the review changed.
func (s *invalidationServiceImpl) planReview(productID, slug string) []invalidationBranch {
	branches := []invalidationBranch{
		{"reviews", func(ctx context.Context) (int64, error) {
			return s.products.InvalidateReviews(ctx, productID)
		}},
		{"product.entry", func(ctx context.Context) (int64, error) {
			return s.products.InvalidateProduct(ctx, productID, slug)
		}},
	}
	if slug == "" {
		branches = append(branches, invalidationBranch{"product.slugs", s.products.InvalidateProductSlugs})
	}
	return branches
}
