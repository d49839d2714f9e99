package cache

import (
	"testing"
	"time"

	"storefront-cache/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeDecode_RoundTrip(t *testing.T) {
	product := &domain.Product{
		ID:        "P1",
		Slug:      "red-shoes",
		Name:      "Red Shoes",
		Price:     49.5,
		Status:    domain.ProductStatusActive,
		Images:    []string{"a.jpg", "b.jpg"},
		CreatedAt: time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC),
		UpdatedAt: time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC),
	}

	raw, err := Encode(product)
	require.NoError(t, err)

	decoded, err := Decode[*domain.Product](raw)
	require.NoError(t, err)
	assert.Equal(t, product, decoded)

	names, err := Encode([]string{"a", "b"})
	require.NoError(t, err)
	back, err := Decode[[]string](names)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, back)
}

func TestEncode_Unsupported(t *testing.T) {
	_, err := Encode(make(chan int))
	require.Error(t, err)

	var cacheErr *domain.CacheError
	require.ErrorAs(t, err, &cacheErr)
	assert.Equal(t, domain.CacheKindSerialization, cacheErr.Kind)
}

func TestDecode_Corrupt(t *testing.T) {
	v, err := Decode[*domain.Product]("{not json")
	require.Error(t, err)
	assert.Nil(t, v)

	var cacheErr *domain.CacheError
	require.ErrorAs(t, err, &cacheErr)
	assert.Equal(t, domain.CacheKindSerialization, cacheErr.Kind)
	assert.False(t, domain.IsCacheMiss(err))
}
