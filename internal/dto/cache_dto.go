package dto

import "storefront-cache/internal/domain"

// ProductListResponse wraps a product listing.
type ProductListResponse struct {
	Products []*domain.Product `json:"products"`
	Count    int               `json:"count"`
}

// CategoryListResponse wraps a flat category list or the category tree.
type CategoryListResponse struct {
	Categories []*domain.Category `json:"categories"`
	Count      int                `json:"count"`
}

// SuggestResponse lists product name suggestions for a prefix.
type SuggestResponse struct {
	Prefix      string   `json:"prefix"`
	Suggestions []string `json:"suggestions"`
}

// RegionInvalidationResponse reports what a region delete cleared.
type RegionInvalidationResponse struct {
	Region      string `json:"region"`
	Pattern     string `json:"pattern"`
	KeysDeleted int64  `json:"keys_deleted"`
}

// HealthResponse is returned by the health check.
type HealthResponse struct {
	Status       string `json:"status"`
	Cache        string `json:"cache"`
	BreakerState string `json:"breaker_state"`
}
