package handler

import (
	"storefront-cache/internal/middleware"

	"github.com/gofiber/fiber/v2"
)

// Handlers groups everything RegisterRoutes mounts.
type Handlers struct {
	Storefront *StorefrontHandler
	Admin      *CacheAdminHandler
	Health     *HealthHandler
}

// RegisterRoutes mounts the storefront read API, the admin cache API and the
// health check on app.
func RegisterRoutes(app fiber.Router, h Handlers, adminSecret string) {
	app.Get("/healthz", h.Health.Healthz)

	api := app.Group("/api")

	products := api.Group("/products")
	products.Get("/", h.Storefront.ListProducts)
	products.Get("/slug/:slug", h.Storefront.GetProductBySlug)
	products.Get("/:id", h.Storefront.GetProduct)
	products.Get("/:id/related", h.Storefront.GetRelatedProducts)
	products.Get("/:id/reviews", h.Storefront.GetProductReviews)
	products.Get("/:id/inventory", h.Storefront.GetInventory)

	categories := api.Group("/categories")
	categories.Get("/", h.Storefront.ListCategories)
	categories.Get("/slug/:slug", h.Storefront.GetCategoryBySlug)
	categories.Get("/:id", h.Storefront.GetCategory)

	api.Get("/search", h.Storefront.Search)
	api.Get("/search/suggest", h.Storefront.Suggest)
	api.Get("/deals", h.Storefront.GetDeals)

	admin := api.Group("/admin/cache", middleware.AdminOnly(adminSecret))
	admin.Get("/stats", h.Admin.GetStats)
	admin.Post("/invalidate", h.Admin.Invalidate)
	admin.Delete("/regions/:region", h.Admin.DeleteRegion)
}
