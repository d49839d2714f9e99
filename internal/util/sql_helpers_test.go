package util

import (
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNullValues(t *testing.T) {
	assert.Equal(t, "", NullStringValue(sql.NullString{}))
	assert.Equal(t, "red", NullStringValue(sql.NullString{String: "red", Valid: true}))
	assert.Zero(t, NullFloat64Value(sql.NullFloat64{Float64: 3, Valid: false}))
	assert.Equal(t, 4.5, NullFloat64Value(sql.NullFloat64{Float64: 4.5, Valid: true}))
}

func TestEscapeLike(t *testing.T) {
	assert.Equal(t, "shoes", EscapeLike("shoes"))
	assert.Equal(t, `50\% off`, EscapeLike("50% off"))
	assert.Equal(t, `a\_b\\c`, EscapeLike(`a_b\c`))
}
