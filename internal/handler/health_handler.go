package handler

import (
	"context"
	"time"

	"storefront-cache/internal/cache"
	"storefront-cache/internal/dto"

	"github.com/gofiber/fiber/v2"
)

const healthCheckTimeout = 2 * time.Second

type HealthHandler struct {
	kv *cache.KVClient
}

func NewHealthHandler(kv *cache.KVClient) *HealthHandler {
	return &HealthHandler{kv: kv}
}

// Healthz handles GET /healthz. The service still answers reads when the
// cache is down, so an unreachable cache reports 503 with status "degraded".
// @Summary Health Check
// @Tags health
// @Produce json
// @Success 200 {object} dto.HealthResponse
// @Failure 503 {object} dto.HealthResponse
// @Router /healthz [get]
func (h *HealthHandler) Healthz(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.UserContext(), healthCheckTimeout)
	defer cancel()

	resp := dto.HealthResponse{Status: "ok", Cache: "up"}
	status := fiber.StatusOK
	if err := h.kv.Connect(ctx); err != nil {
		resp.Status = "degraded"
		resp.Cache = "down"
		status = fiber.StatusServiceUnavailable
	}
	resp.BreakerState = h.kv.BreakerState()
	return c.Status(status).JSON(resp)
}
