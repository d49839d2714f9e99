package cache

import (
	"encoding/json"

	"storefront-cache/internal/domain"
)

// Encode serializes v for storage in the KV tier.
func Encode(v any) (string, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return "", domain.NewCacheError(domain.CacheKindSerialization, "encode", "", err)
	}
	return string(b), nil
}

// Decode parses a value stored by Encode. A corrupt payload is reported as a
// serialization error, which callers treat as a miss.
func Decode[T any](raw string) (T, error) {
	var v T
	if err := json.Unmarshal([]byte(raw), &v); err != nil {
		var zero T
		return zero, domain.NewCacheError(domain.CacheKindSerialization, "decode", "", err)
	}
	return v, nil
}

// DecodeInto parses raw into dest, which must be a pointer.
func DecodeInto(raw string, dest any) error {
	if err := json.Unmarshal([]byte(raw), dest); err != nil {
		return domain.NewCacheError(domain.CacheKindSerialization, "decode", "", err)
	}
	return nil
}
