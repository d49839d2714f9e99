package cachetest

import (
	"testing"
	"time"

	"storefront-cache/internal/cache"
	"storefront-cache/internal/domain"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

// NewHybrid wires a Hybrid over store with single-flight enabled and the
// breaker set high enough that failing stores never trip it. now drives the
// local tier; nil uses time.Now.
func NewHybrid(t testing.TB, store domain.Cache, now func() time.Time) *cache.Hybrid {
	t.Helper()
	logger := zaptest.NewLogger(t)

	kv := cache.NewKVClient(store, cache.KVOptions{
		BreakerFailures: 1 << 20,
		Logger:          logger,
	})
	local, err := cache.NewLocalCache(cache.LocalOptions{
		Capacity:     1000,
		SingleFlight: true,
		Logger:       logger,
		Now:          now,
	})
	require.NoError(t, err)

	stats, err := cache.NewTracker(nil)
	require.NoError(t, err)

	return cache.NewHybrid(kv, local, stats, logger)
}
