package repository

import (
	"storefront-cache/internal/domain"
	"storefront-cache/internal/repository/models"
	"storefront-cache/internal/util"
)

func toDomainProduct(m *models.Product) *domain.Product {
	if m == nil {
		return nil
	}
	return &domain.Product{
		ID:             m.ID,
		Slug:           m.Slug,
		Name:           m.Name,
		Description:    util.NullStringValue(m.Description),
		Price:          m.Price,
		CompareAtPrice: util.NullFloat64Value(m.CompareAtPrice),
		CategoryID:     util.NullStringValue(m.CategoryID),
		Status:         domain.ProductStatus(m.Status),
		Featured:       m.Featured,
		Images:         []string(m.Images),
		Rating:         util.NullFloat64Value(m.Rating),
		ReviewCount:    m.ReviewCount,
		CreatedAt:      m.CreatedAt,
		UpdatedAt:      m.UpdatedAt,
	}
}

func toDomainProducts(rows []models.Product) []*domain.Product {
	out := make([]*domain.Product, len(rows))
	for i := range rows {
		out[i] = toDomainProduct(&rows[i])
	}
	return out
}

func toDomainCategory(m *models.Category) *domain.Category {
	if m == nil {
		return nil
	}
	return &domain.Category{
		ID:           m.ID,
		Slug:         m.Slug,
		Name:         m.Name,
		Description:  util.NullStringValue(m.Description),
		ParentID:     util.NullStringValue(m.ParentID),
		ProductCount: m.ProductCount,
	}
}

func toDomainReview(m *models.Review) *domain.Review {
	return &domain.Review{
		ID:        m.ID,
		ProductID: m.ProductID,
		UserID:    m.UserID,
		Rating:    m.Rating,
		Title:     util.NullStringValue(m.Title),
		Body:      util.NullStringValue(m.Body),
		CreatedAt: m.CreatedAt,
	}
}

func toDomainComboDeal(m *models.ComboDeal) *domain.ComboDeal {
	return &domain.ComboDeal{
		ID:            m.ID,
		Slug:          m.Slug,
		Name:          m.Name,
		ProductIDs:    []string(m.ProductIDs),
		Price:         m.Price,
		OriginalPrice: m.OriginalPrice,
		StartsAt:      m.StartsAt,
		EndsAt:        m.EndsAt,
	}
}

func toDomainUser(m *models.User) *domain.User {
	if m == nil {
		return nil
	}
	return &domain.User{
		ID:        m.ID,
		Email:     m.Email,
		Name:      util.NullStringValue(m.Name),
		Role:      m.Role,
		CreatedAt: m.CreatedAt,
	}
}
