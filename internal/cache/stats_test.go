package cache

import (
	"sync"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTracker_HitRate(t *testing.T) {
	tracker, err := NewTracker(nil)
	require.NoError(t, err)

	assert.Zero(t, tracker.GetHitRate("product.by_id"))

	for i := 0; i < 3; i++ {
		tracker.Increment("product.by_id", OutcomeHit)
	}
	tracker.Increment("product.by_id", OutcomeMiss)
	tracker.Increment("product.by_id", OutcomeError)

	assert.InDelta(t, 75.0, tracker.GetHitRate("product.by_id"), 0.0001)
	assert.Equal(t, OperationStats{Hits: 3, Misses: 1, Errors: 1, TotalRequests: 5}, tracker.GetStats("product.by_id"))
	assert.Equal(t, OperationStats{}, tracker.GetStats("unknown"))
}

func TestTracker_ConcurrentIncrements(t *testing.T) {
	tracker, err := NewTracker(nil)
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				tracker.Increment("search", OutcomeHit)
				tracker.Increment("search", OutcomeMiss)
			}
		}()
	}
	wg.Wait()

	stats := tracker.GetStats("search")
	assert.Equal(t, int64(5000), stats.Hits)
	assert.Equal(t, int64(5000), stats.Misses)
	assert.InDelta(t, 50.0, tracker.GetHitRate("search"), 0.0001)
}

func TestTracker_AllStatsAndReset(t *testing.T) {
	tracker, err := NewTracker(nil)
	require.NoError(t, err)

	tracker.Increment("b", OutcomeHit)
	tracker.Increment("a", OutcomeMiss)
	tracker.Increment("a", Outcome("bogus"))

	all := tracker.GetAllStats()
	assert.Len(t, all, 2)
	assert.Equal(t, []string{"a", "b"}, tracker.Operations())
	assert.Equal(t, int64(1), all["a"].TotalRequests)

	tracker.Reset()
	assert.Empty(t, tracker.GetAllStats())
}

func TestTracker_ExportsPrometheusCounters(t *testing.T) {
	reg := prometheus.NewRegistry()
	tracker, err := NewTracker(reg)
	require.NoError(t, err)

	tracker.Increment("category.all", OutcomeHit)
	tracker.Increment("category.all", OutcomeHit)
	tracker.Increment("category.all", OutcomeMiss)

	assert.Equal(t, 2.0, testutil.ToFloat64(tracker.requests.WithLabelValues("category.all", "hit")))
	assert.Equal(t, 1.0, testutil.ToFloat64(tracker.requests.WithLabelValues("category.all", "miss")))

	// a second tracker on the same registry shares the series
	second, err := NewTracker(reg)
	require.NoError(t, err)
	second.Increment("category.all", OutcomeHit)
	assert.Equal(t, 3.0, testutil.ToFloat64(tracker.requests.WithLabelValues("category.all", "hit")))
}
