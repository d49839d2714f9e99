package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"storefront-cache/internal/domain"
)

// DBTX is the read subset of *sqlx.DB and *sqlx.Tx the sources use.
type DBTX interface {
	GetContext(ctx context.Context, dest interface{}, query string, args ...interface{}) error
	SelectContext(ctx context.Context, dest interface{}, query string, args ...interface{}) error
}

// sourceError maps a database error to the domain: a missing row becomes
// NotFound and everything else SourceUnavailable.
func sourceError(entity string, err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return domain.NewNotFoundError(fmt.Sprintf("%s not found", entity))
	}
	return domain.NewSourceUnavailableError(entity, err)
}
