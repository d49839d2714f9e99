package domain

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// CacheErrorKind classifies a failure at the cache boundary.
type CacheErrorKind string

const (
	CacheKindMiss          CacheErrorKind = "miss"
	CacheKindTransport     CacheErrorKind = "transport"
	CacheKindSerialization CacheErrorKind = "serialization"
	CacheKindBreakerOpen   CacheErrorKind = "breaker_open"
)

// CacheError represents an error originating from the cache.
type CacheError struct {
	Kind CacheErrorKind
	Op   string
	Key  string
	Err  error
}

func (e *CacheError) Error() string {
	msg := fmt.Sprintf("cache %s %s", e.Kind, e.Op)
	if e.Key != "" {
		msg += " " + e.Key
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *CacheError) Unwrap() error {
	return e.Err
}

// Is lets errors.Is(err, ErrCacheMiss) match any miss regardless of op or key.
func (e *CacheError) Is(target error) bool {
	t, ok := target.(*CacheError)
	if !ok {
		return false
	}
	return t.Kind == e.Kind && t.Op == "" && t.Key == ""
}

// ErrCacheMiss is returned when a key is not found in the cache.
var ErrCacheMiss = &CacheError{Kind: CacheKindMiss}

// NewCacheError builds a CacheError for the given operation and key.
func NewCacheError(kind CacheErrorKind, op, key string, err error) *CacheError {
	return &CacheError{Kind: kind, Op: op, Key: key, Err: err}
}

// IsCacheMiss reports whether err is a cache miss.
func IsCacheMiss(err error) bool {
	return errors.Is(err, ErrCacheMiss)
}

// IsTransport reports whether err means the cache store could not be reached.
// An open circuit breaker counts as a transport failure.
func IsTransport(err error) bool {
	var ce *CacheError
	if !errors.As(err, &ce) {
		return false
	}
	return ce.Kind == CacheKindTransport || ce.Kind == CacheKindBreakerOpen
}

// Cache defines the interface (port) for the shared key-value store.
// Implementations return raw errors; ErrCacheMiss when a key does not exist.
type Cache interface {
	// Get retrieves an item from the cache.
	// It returns ErrCacheMiss if the key is not found.
	Get(ctx context.Context, key string) (string, error)

	// Set adds an item to the cache, overwriting an existing item if one exists.
	// If expiration is 0, the item is cached indefinitely.
	Set(ctx context.Context, key string, value string, expiration time.Duration) error

	// Delete removes the given keys and reports how many existed.
	Delete(ctx context.Context, keys ...string) (int64, error)

	// Scan resolves a glob pattern to the concrete keys currently stored.
	Scan(ctx context.Context, pattern string) ([]string, error)

	// Exists reports whether the key is present.
	Exists(ctx context.Context, key string) (bool, error)

	// TTL returns the remaining time to live. A negative duration follows
	// Redis semantics: -1 for no expiration, -2 for a missing key.
	TTL(ctx context.Context, key string) (time.Duration, error)

	// Ping checks the health of the cache service.
	Ping(ctx context.Context) error

	// DBSize returns the number of keys in the selected database.
	DBSize(ctx context.Context) (int64, error)

	// MemoryUsage returns the store-reported memory usage, human readable.
	MemoryUsage(ctx context.Context) (string, error)

	// Close releases the underlying connection pool.
	Close() error
}
