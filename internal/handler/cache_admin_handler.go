package handler

import (
	"net/url"

	"storefront-cache/internal/cache"
	"storefront-cache/internal/domain"
	"storefront-cache/internal/dto"
	"storefront-cache/internal/logger"
	"storefront-cache/internal/middleware"
	"storefront-cache/internal/service"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// CacheAdminHandler serves the cache monitoring and invalidation API.
type CacheAdminHandler struct {
	monitor      *cache.Monitor
	hybrid       *cache.Hybrid
	invalidation service.InvalidationService
}

// NewCacheAdminHandler creates a new CacheAdminHandler instance
func NewCacheAdminHandler(monitor *cache.Monitor, hybrid *cache.Hybrid, invalidation service.InvalidationService) *CacheAdminHandler {
	return &CacheAdminHandler{
		monitor:      monitor,
		hybrid:       hybrid,
		invalidation: invalidation,
	}
}

// GetStats returns the cache monitor snapshot.
// @Summary Cache Statistics
// @Tags admin
// @Security ApiKeyAuth
// @Produce json
// @Success 200 {object} cache.Snapshot
// @Failure 401 {object} middleware.ErrorResponse "Unauthorized"
// @Failure 403 {object} middleware.ErrorResponse "Forbidden"
// @Router /admin/cache/stats [get]
func (h *CacheAdminHandler) GetStats(c *fiber.Ctx) error {
	return c.JSON(h.monitor.Snapshot(c.UserContext()))
}

// Invalidate runs smart invalidation for a mutation event and returns the
// per-branch report.
// @Summary Invalidate For Event
// @Tags admin
// @Security ApiKeyAuth
// @Accept json
// @Produce json
// @Param event body domain.InvalidationEvent true "Mutation event"
// @Success 200 {object} domain.InvalidationReport
// @Failure 400 {object} middleware.ErrorResponse "Invalid event"
// @Failure 401 {object} middleware.ErrorResponse "Unauthorized"
// @Failure 403 {object} middleware.ErrorResponse "Forbidden"
// @Router /admin/cache/invalidate [post]
func (h *CacheAdminHandler) Invalidate(c *fiber.Ctx) error {
	var event domain.InvalidationEvent
	if err := c.BodyParser(&event); err != nil {
		return domain.NewInvalidInputError("request body must be an invalidation event")
	}
	if err := event.Validate(); err != nil {
		return err
	}

	report := h.invalidation.SmartInvalidate(c.UserContext(), event)
	logger.Get().Info("Admin invalidation",
		zap.Any("admin", c.Locals(middleware.AdminSubjectKey)),
		zap.String("eventID", report.EventID),
		zap.Int("failed", report.Failed()))
	return c.JSON(report)
}

// DeleteRegion clears every key of a region from both tiers.
// @Summary Invalidate Region
// @Tags admin
// @Security ApiKeyAuth
// @Produce json
// @Param region path string true "Key region, e.g. products or home:deals"
// @Success 200 {object} dto.RegionInvalidationResponse
// @Failure 401 {object} middleware.ErrorResponse "Unauthorized"
// @Failure 403 {object} middleware.ErrorResponse "Forbidden"
// @Failure 404 {object} middleware.ErrorResponse "Unknown region"
// @Router /admin/cache/regions/{region} [delete]
func (h *CacheAdminHandler) DeleteRegion(c *fiber.Ctx) error {
	region, err := url.PathUnescape(c.Params("region"))
	if err != nil {
		return domain.NewInvalidInputError("malformed region")
	}
	n, err := h.hybrid.InvalidateRegion(c.UserContext(), region)
	if err != nil {
		return err
	}
	return c.JSON(dto.RegionInvalidationResponse{
		Region:      region,
		Pattern:     cache.RegionPattern(region),
		KeysDeleted: n,
	})
}
