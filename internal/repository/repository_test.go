package repository

import (
	"errors"
	"testing"
	"time"

	"storefront-cache/internal/domain"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	productRowColumns = []string{
		"ID", "SLUG", "NAME", "DESCRIPTION", "PRICE", "COMPARE_AT_PRICE", "CATEGORY_ID",
		"STATUS", "FEATURED", "IMAGES", "RATING", "REVIEW_COUNT", "CREATED_AT", "UPDATED_AT",
	}
	categoryRowColumns = []string{"ID", "SLUG", "NAME", "DESCRIPTION", "PARENT_ID", "PRODUCT_COUNT"}

	fixedTime = time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
)

// setupTestDB creates a new sqlx.DB instance and sqlmock for repository testing.
func setupTestDB(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock) {
	t.Helper()
	mockDB, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() { mockDB.Close() })
	return sqlx.NewDb(mockDB, "sqlmock"), mock
}

func productRows() *sqlmock.Rows {
	return sqlmock.NewRows(productRowColumns)
}

func addProduct(rows *sqlmock.Rows, id, slug string, price float64, compareAt interface{}) *sqlmock.Rows {
	return rows.AddRow(id, slug, "Product "+id, nil, price, compareAt, "C1",
		"active", true, `["`+id+`.jpg"]`, 4.5, 3, fixedTime, fixedTime)
}

func assertDomainCode(t *testing.T, err error, code domain.ErrorCode) {
	t.Helper()
	var domainErr *domain.DomainError
	require.True(t, errors.As(err, &domainErr), "expected a domain error, got %v", err)
	assert.Equal(t, code, domainErr.Code)
}
