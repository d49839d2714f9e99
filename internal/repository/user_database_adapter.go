package repository

import (
	"context"

	"storefront-cache/internal/domain"
	"storefront-cache/internal/repository/models"

	"github.com/jmoiron/sqlx"
)

const queryUserByID = `SELECT id, email, name, role, created_at, deleted_at
	FROM users
	WHERE id = :1 AND deleted_at IS NULL`

type UserDatabaseAdapter struct {
	db DBTX
}

// NewUserDatabaseAdapter creates a new instance of UserDatabaseAdapter
func NewUserDatabaseAdapter(db *sqlx.DB) domain.UserSource {
	return &UserDatabaseAdapter{db: db}
}

// GetUserByID retrieves a live account by its internal ID.
func (a *UserDatabaseAdapter) GetUserByID(ctx context.Context, id string) (*domain.User, error) {
	var row models.User
	if err := a.db.GetContext(ctx, &row, queryUserByID, id); err != nil {
		return nil, sourceError("user", err)
	}
	return toDomainUser(&row), nil
}
