package util

import (
	"testing"

	"github.com/oklog/ulid/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewULID(t *testing.T) {
	a := NewULID()
	b := NewULID()

	assert.Len(t, a, ulid.EncodedSize)
	assert.NotEqual(t, a, b)
	assert.Less(t, a, b)

	_, err := ulid.Parse(a)
	require.NoError(t, err)
}
