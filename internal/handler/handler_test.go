package handler_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"storefront-cache/internal/cache"
	"storefront-cache/internal/cache/cachetest"
	"storefront-cache/internal/domain"
	"storefront-cache/internal/handler"
	"storefront-cache/internal/middleware"
	"storefront-cache/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

const testSecret = "test-admin-secret"

// fakeCatalog is an in-memory source of truth for every port.
type fakeCatalog struct {
	mu       sync.Mutex
	products map[string]*domain.Product
	calls    map[string]int
}

func newFakeCatalog() *fakeCatalog {
	return &fakeCatalog{
		products: map[string]*domain.Product{
			"P1": {ID: "P1", Slug: "red-shoes", Name: "Red Shoes", Price: 10, CompareAtPrice: 20, CategoryID: "C1", Featured: true, Status: domain.ProductStatusActive},
			"P2": {ID: "P2", Slug: "blue-cap", Name: "Blue Cap", Price: 5, CategoryID: "C2", Status: domain.ProductStatusActive},
		},
		calls: make(map[string]int),
	}
}

func (f *fakeCatalog) track(op string) {
	f.mu.Lock()
	f.calls[op]++
	f.mu.Unlock()
}

func (f *fakeCatalog) Calls(op string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[op]
}

func (f *fakeCatalog) SetPrice(id string, price float64) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p := *f.products[id]
	p.Price = price
	f.products[id] = &p
}

func (f *fakeCatalog) GetProductByID(_ context.Context, id string) (*domain.Product, error) {
	f.track("GetProductByID")
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.products[id]
	if !ok {
		return nil, domain.NewNotFoundError("product not found")
	}
	return p, nil
}

func (f *fakeCatalog) GetProductBySlug(_ context.Context, slug string) (*domain.Product, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, p := range f.products {
		if p.Slug == slug {
			return p, nil
		}
	}
	return nil, domain.NewNotFoundError("product not found")
}

func (f *fakeCatalog) list(keep func(*domain.Product) bool) []*domain.Product {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*domain.Product
	for _, id := range []string{"P1", "P2"} {
		if p := f.products[id]; keep(p) {
			out = append(out, p)
		}
	}
	return out
}

func (f *fakeCatalog) ListProducts(context.Context) ([]*domain.Product, error) {
	return f.list(func(*domain.Product) bool { return true }), nil
}

func (f *fakeCatalog) ListFeaturedProducts(context.Context, int) ([]*domain.Product, error) {
	f.track("ListFeaturedProducts")
	return f.list(func(p *domain.Product) bool { return p.Featured }), nil
}

func (f *fakeCatalog) ListProductsByCategory(_ context.Context, categoryID string) ([]*domain.Product, error) {
	return f.list(func(p *domain.Product) bool { return p.CategoryID == categoryID }), nil
}

func (f *fakeCatalog) ListRelatedProducts(context.Context, string, int) ([]*domain.Product, error) {
	return []*domain.Product{}, nil
}

func (f *fakeCatalog) ListReviews(_ context.Context, productID string) ([]*domain.Review, error) {
	return []*domain.Review{{ID: "R1", ProductID: productID, Rating: 5}}, nil
}

func (f *fakeCatalog) GetInventory(_ context.Context, productID string) (*domain.Inventory, error) {
	return &domain.Inventory{ProductID: productID, Quantity: 10, Reserved: 3}, nil
}

func (f *fakeCatalog) GetCategoryByID(_ context.Context, id string) (*domain.Category, error) {
	if id != "C1" {
		return nil, domain.NewNotFoundError("category not found")
	}
	return &domain.Category{ID: "C1", Slug: "shoes", Name: "Shoes"}, nil
}

func (f *fakeCatalog) GetCategoryBySlug(ctx context.Context, slug string) (*domain.Category, error) {
	return f.GetCategoryByID(ctx, map[string]string{"shoes": "C1"}[slug])
}

func (f *fakeCatalog) ListCategories(context.Context) ([]*domain.Category, error) {
	return []*domain.Category{
		{ID: "C1", Slug: "shoes", Name: "Shoes"},
		{ID: "C2", Slug: "sneakers", Name: "Sneakers", ParentID: "C1"},
	}, nil
}

func (f *fakeCatalog) SearchProducts(_ context.Context, query string, _ int) ([]*domain.Product, error) {
	f.track("SearchProducts")
	return f.list(func(p *domain.Product) bool {
		return strings.Contains(strings.ToLower(p.Name), query)
	}), nil
}

func (f *fakeCatalog) SuggestProductNames(context.Context, string, int) ([]string, error) {
	return []string{"Red Shoes"}, nil
}

func (f *fakeCatalog) ListActiveComboDeals(context.Context, time.Time) ([]*domain.ComboDeal, error) {
	return []*domain.ComboDeal{{ID: "D1", Name: "Pack", ProductIDs: []string{"P1", "P2"}}}, nil
}

func (f *fakeCatalog) ListDiscountedProducts(context.Context, int) ([]*domain.Product, error) {
	return f.list(func(p *domain.Product) bool { return p.DiscountPercent() > 0 }), nil
}

func (f *fakeCatalog) GetUserByID(_ context.Context, id string) (*domain.User, error) {
	return &domain.User{ID: id}, nil
}

type testApp struct {
	app     *fiber.App
	store   *cachetest.MemoryStore
	catalog *fakeCatalog
	hybrid  *cache.Hybrid
}

func newTestAppWithStore(t *testing.T, store domain.Cache) *testApp {
	t.Helper()
	catalog := newFakeCatalog()
	h := cachetest.NewHybrid(t, store, nil)
	tiers := cache.DefaultTiers()

	products := service.NewProductCacheService(h, catalog, tiers)
	categories := service.NewCategoryCacheService(h, catalog, tiers)
	search := service.NewSearchCacheService(h, catalog, tiers)
	deals := service.NewHomeDealsCacheService(h, catalog, tiers, nil)
	users := service.NewUserCacheService(h, catalog, tiers)
	invalidation := service.NewInvalidationService(products, categories, search, deals, users, zaptest.NewLogger(t))

	app := fiber.New(fiber.Config{ErrorHandler: middleware.ErrorHandler()})
	handler.RegisterRoutes(app, handler.Handlers{
		Storefront: handler.NewStorefrontHandler(products, categories, search, deals),
		Admin:      handler.NewCacheAdminHandler(cache.NewMonitor(h, zaptest.NewLogger(t)), h, invalidation),
		Health:     handler.NewHealthHandler(h.KV()),
	}, testSecret)

	ta := &testApp{app: app, catalog: catalog, hybrid: h}
	if ms, ok := store.(*cachetest.MemoryStore); ok {
		ta.store = ms
	}
	return ta
}

func newTestApp(t *testing.T) *testApp {
	return newTestAppWithStore(t, cachetest.NewMemoryStore(nil))
}

func adminToken(t *testing.T, role, secret string) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, middleware.AdminClaims{
		Role: role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "ops@example.com",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	})
	signed, err := token.SignedString([]byte(secret))
	require.NoError(t, err)
	return signed
}

func (ta *testApp) do(t *testing.T, method, target, token, body string) (int, []byte) {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set(middleware.AuthorizationHeader, middleware.BearerSchema+token)
	}
	resp, err := ta.app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, raw
}

func decode[T any](t *testing.T, raw []byte) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(raw, &v), string(raw))
	return v
}
