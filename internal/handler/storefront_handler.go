package handler

import (
	"strconv"

	"storefront-cache/internal/domain"
	"storefront-cache/internal/dto"
	"storefront-cache/internal/service"

	"github.com/gofiber/fiber/v2"
)

// StorefrontHandler serves the cached catalog reads.
type StorefrontHandler struct {
	products   service.ProductCacheService
	categories service.CategoryCacheService
	search     service.SearchCacheService
	deals      service.HomeDealsCacheService
}

// NewStorefrontHandler creates a new StorefrontHandler instance
func NewStorefrontHandler(
	products service.ProductCacheService,
	categories service.CategoryCacheService,
	search service.SearchCacheService,
	deals service.HomeDealsCacheService,
) *StorefrontHandler {
	return &StorefrontHandler{
		products:   products,
		categories: categories,
		search:     search,
		deals:      deals,
	}
}

// GetProduct returns a product by id.
// @Summary Get Product
// @Tags products
// @Produce json
// @Param id path string true "Product ID"
// @Success 200 {object} domain.Product
// @Failure 404 {object} middleware.ErrorResponse "Not found"
// @Failure 503 {object} middleware.ErrorResponse "Source unavailable"
// @Router /products/{id} [get]
func (h *StorefrontHandler) GetProduct(c *fiber.Ctx) error {
	p, err := h.products.GetProduct(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(p)
}

// GetProductBySlug returns a product by its URL slug.
// @Summary Get Product By Slug
// @Tags products
// @Produce json
// @Param slug path string true "Product slug"
// @Success 200 {object} domain.Product
// @Failure 404 {object} middleware.ErrorResponse "Not found"
// @Failure 503 {object} middleware.ErrorResponse "Source unavailable"
// @Router /products/slug/{slug} [get]
func (h *StorefrontHandler) GetProductBySlug(c *fiber.Ctx) error {
	p, err := h.products.GetProductBySlug(c.UserContext(), c.Params("slug"))
	if err != nil {
		return err
	}
	return c.JSON(p)
}

// ListProducts returns all products. The category and featured query
// parameters select the narrower listings.
// @Summary List Products
// @Tags products
// @Produce json
// @Param category query string false "Category ID"
// @Param featured query bool false "Only featured products"
// @Success 200 {object} dto.ProductListResponse
// @Failure 503 {object} middleware.ErrorResponse "Source unavailable"
// @Router /products [get]
func (h *StorefrontHandler) ListProducts(c *fiber.Ctx) error {
	ctx := c.UserContext()

	var (
		products []*domain.Product
		err      error
	)
	switch {
	case c.Query("category") != "":
		products, err = h.products.GetProductsByCategory(ctx, c.Query("category"))
	case c.QueryBool("featured"):
		products, err = h.products.GetFeaturedProducts(ctx)
	default:
		products, err = h.products.GetAllProducts(ctx)
	}
	if err != nil {
		return err
	}
	return c.JSON(dto.ProductListResponse{Products: products, Count: len(products)})
}

// GetRelatedProducts handles GET /api/products/:id/related
// @Summary Related Products
// @Tags products
// @Produce json
// @Param id path string true "Product ID"
// @Success 200 {object} dto.ProductListResponse
// @Router /products/{id}/related [get]
func (h *StorefrontHandler) GetRelatedProducts(c *fiber.Ctx) error {
	products, err := h.products.GetRelatedProducts(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(dto.ProductListResponse{Products: products, Count: len(products)})
}

// GetProductReviews handles GET /api/products/:id/reviews
// @Summary Product Reviews
// @Tags products
// @Produce json
// @Param id path string true "Product ID"
// @Success 200 {array} domain.Review
// @Router /products/{id}/reviews [get]
func (h *StorefrontHandler) GetProductReviews(c *fiber.Ctx) error {
	reviews, err := h.products.GetProductReviews(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(reviews)
}

// GetInventory returns stock levels, including the available quantity.
// @Summary Product Inventory
// @Tags products
// @Produce json
// @Param id path string true "Product ID"
// @Success 200 {object} map[string]interface{}
// @Failure 404 {object} middleware.ErrorResponse "Not found"
// @Router /products/{id}/inventory [get]
func (h *StorefrontHandler) GetInventory(c *fiber.Ctx) error {
	inv, err := h.products.GetInventory(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"product_id": inv.ProductID,
		"quantity":   inv.Quantity,
		"reserved":   inv.Reserved,
		"available":  inv.Available(),
		"updated_at": inv.UpdatedAt,
	})
}

// ListCategories returns the flat category list, or the nested tree when
// tree=true.
// @Summary List Categories
// @Tags categories
// @Produce json
// @Param tree query bool false "Return the nested tree"
// @Success 200 {object} dto.CategoryListResponse
// @Failure 503 {object} middleware.ErrorResponse "Source unavailable"
// @Router /categories [get]
func (h *StorefrontHandler) ListCategories(c *fiber.Ctx) error {
	var (
		categories []*domain.Category
		err        error
	)
	if c.QueryBool("tree") {
		categories, err = h.categories.GetCategoryTree(c.UserContext())
	} else {
		categories, err = h.categories.GetAllCategories(c.UserContext())
	}
	if err != nil {
		return err
	}
	return c.JSON(dto.CategoryListResponse{Categories: categories, Count: len(categories)})
}

// GetCategory handles GET /api/categories/:id
// @Summary Get Category
// @Tags categories
// @Produce json
// @Param id path string true "Category ID"
// @Success 200 {object} domain.Category
// @Failure 404 {object} middleware.ErrorResponse "Not found"
// @Router /categories/{id} [get]
func (h *StorefrontHandler) GetCategory(c *fiber.Ctx) error {
	category, err := h.categories.GetCategory(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(category)
}

// GetCategoryBySlug handles GET /api/categories/slug/:slug
// @Summary Get Category By Slug
// @Tags categories
// @Produce json
// @Param slug path string true "Category slug"
// @Success 200 {object} domain.Category
// @Failure 404 {object} middleware.ErrorResponse "Not found"
// @Router /categories/slug/{slug} [get]
func (h *StorefrontHandler) GetCategoryBySlug(c *fiber.Ctx) error {
	category, err := h.categories.GetCategoryBySlug(c.UserContext(), c.Params("slug"))
	if err != nil {
		return err
	}
	return c.JSON(category)
}

// Search runs a product search. Empty queries return no results.
// @Summary Search Products
// @Tags search
// @Produce json
// @Param q query string false "Search query"
// @Param limit query int false "Page size"
// @Success 200 {object} domain.SearchResult
// @Failure 400 {object} middleware.ErrorResponse "Invalid limit"
// @Failure 503 {object} middleware.ErrorResponse "Source unavailable"
// @Router /search [get]
func (h *StorefrontHandler) Search(c *fiber.Ctx) error {
	limit := 0
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			return domain.NewInvalidInputError("limit must be an integer")
		}
		limit = n
	}
	result, err := h.search.Search(c.UserContext(), c.Query("q"), limit)
	if err != nil {
		return err
	}
	return c.JSON(result)
}

// Suggest handles GET /api/search/suggest?prefix=
// @Summary Search Suggestions
// @Tags search
// @Produce json
// @Param prefix query string false "Name prefix"
// @Success 200 {object} dto.SuggestResponse
// @Router /search/suggest [get]
func (h *StorefrontHandler) Suggest(c *fiber.Ctx) error {
	prefix := c.Query("prefix")
	suggestions, err := h.search.Suggest(c.UserContext(), prefix)
	if err != nil {
		return err
	}
	return c.JSON(dto.SuggestResponse{Prefix: prefix, Suggestions: suggestions})
}

// GetDeals returns the home page deals for the current hour.
// @Summary Home Deals
// @Tags deals
// @Produce json
// @Success 200 {object} service.HomeDeals
// @Failure 503 {object} middleware.ErrorResponse "Source unavailable"
// @Router /deals [get]
func (h *StorefrontHandler) GetDeals(c *fiber.Ctx) error {
	deals, err := h.deals.GetHomeDeals(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(deals)
}
