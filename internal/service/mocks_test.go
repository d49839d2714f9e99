package service

import (
	"context"
	"time"

	"storefront-cache/internal/domain"

	"github.com/stretchr/testify/mock"
)

// --- MockProductSource ---
type MockProductSource struct {
	mock.Mock
}

func (m *MockProductSource) GetProductByID(ctx context.Context, id string) (*domain.Product, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Product), args.Error(1)
}

func (m *MockProductSource) GetProductBySlug(ctx context.Context, slug string) (*domain.Product, error) {
	args := m.Called(ctx, slug)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Product), args.Error(1)
}

func (m *MockProductSource) ListProducts(ctx context.Context) ([]*domain.Product, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Product), args.Error(1)
}

func (m *MockProductSource) ListFeaturedProducts(ctx context.Context, limit int) ([]*domain.Product, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Product), args.Error(1)
}

func (m *MockProductSource) ListProductsByCategory(ctx context.Context, categoryID string) ([]*domain.Product, error) {
	args := m.Called(ctx, categoryID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Product), args.Error(1)
}

func (m *MockProductSource) ListRelatedProducts(ctx context.Context, productID string, limit int) ([]*domain.Product, error) {
	args := m.Called(ctx, productID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Product), args.Error(1)
}

func (m *MockProductSource) ListReviews(ctx context.Context, productID string) ([]*domain.Review, error) {
	args := m.Called(ctx, productID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Review), args.Error(1)
}

func (m *MockProductSource) GetInventory(ctx context.Context, productID string) (*domain.Inventory, error) {
	args := m.Called(ctx, productID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Inventory), args.Error(1)
}

// --- MockCategorySource ---
type MockCategorySource struct {
	mock.Mock
}

func (m *MockCategorySource) GetCategoryByID(ctx context.Context, id string) (*domain.Category, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Category), args.Error(1)
}

func (m *MockCategorySource) GetCategoryBySlug(ctx context.Context, slug string) (*domain.Category, error) {
	args := m.Called(ctx, slug)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Category), args.Error(1)
}

func (m *MockCategorySource) ListCategories(ctx context.Context) ([]*domain.Category, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Category), args.Error(1)
}

// --- MockSearchSource ---
type MockSearchSource struct {
	mock.Mock
}

func (m *MockSearchSource) SearchProducts(ctx context.Context, query string, limit int) ([]*domain.Product, error) {
	args := m.Called(ctx, query, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Product), args.Error(1)
}

func (m *MockSearchSource) SuggestProductNames(ctx context.Context, prefix string, limit int) ([]string, error) {
	args := m.Called(ctx, prefix, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

// --- MockDealSource ---
type MockDealSource struct {
	mock.Mock
}

func (m *MockDealSource) ListActiveComboDeals(ctx context.Context, at time.Time) ([]*domain.ComboDeal, error) {
	args := m.Called(ctx, at)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.ComboDeal), args.Error(1)
}

func (m *MockDealSource) ListDiscountedProducts(ctx context.Context, limit int) ([]*domain.Product, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Product), args.Error(1)
}

// --- MockUserSource ---
type MockUserSource struct {
	mock.Mock
}

func (m *MockUserSource) GetUserByID(ctx context.Context, id string) (*domain.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

var (
	_ domain.ProductSource  = (*MockProductSource)(nil)
	_ domain.CategorySource = (*MockCategorySource)(nil)
	_ domain.SearchSource   = (*MockSearchSource)(nil)
	_ domain.DealSource     = (*MockDealSource)(nil)
	_ domain.UserSource     = (*MockUserSource)(nil)
)
