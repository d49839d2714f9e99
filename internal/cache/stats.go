package cache

import (
	"errors"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Outcome is the result of a tracked cache operation.
type Outcome string

const (
	OutcomeHit   Outcome = "hit"
	OutcomeMiss  Outcome = "miss"
	OutcomeError Outcome = "error"
)

// OperationStats is a snapshot of one operation's counters.
type OperationStats struct {
	Hits          int64 `json:"hits"`
	Misses        int64 `json:"misses"`
	Errors        int64 `json:"errors"`
	TotalRequests int64 `json:"total_requests"`
}

// HitRate returns hits as a percentage of hits plus misses, 0 when neither
// was recorded.
func (s OperationStats) HitRate() float64 {
	lookups := s.Hits + s.Misses
	if lookups == 0 {
		return 0
	}
	return float64(s.Hits) * 100 / float64(lookups)
}

type opCounters struct {
	hits   atomic.Int64
	misses atomic.Int64
	errors atomic.Int64
}

func (c *opCounters) snapshot() OperationStats {
	s := OperationStats{
		Hits:   c.hits.Load(),
		Misses: c.misses.Load(),
		Errors: c.errors.Load(),
	}
	s.TotalRequests = s.Hits + s.Misses + s.Errors
	return s
}

// Tracker counts hits, misses and errors per named operation. Counters are
// process-local and also exported to Prometheus when a registerer is given.
type Tracker struct {
	mu  sync.RWMutex
	ops map[string]*opCounters

	requests      *prometheus.CounterVec
	fetchDuration *prometheus.HistogramVec
}

// NewTracker creates a tracker. A nil registerer keeps the counters local.
func NewTracker(reg prometheus.Registerer) (*Tracker, error) {
	t := &Tracker{ops: make(map[string]*opCounters)}
	if reg == nil {
		return t, nil
	}

	requests := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "storefront",
			Subsystem: "cache",
			Name:      "requests_total",
			Help:      "Total number of cache lookups by operation and outcome",
		},
		[]string{"operation", "outcome"},
	)
	fetchDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "storefront",
			Subsystem: "cache",
			Name:      "source_fetch_duration_seconds",
			Help:      "Time spent in the source of truth on cache misses",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"operation"},
	)

	var err error
	if t.requests, err = register(reg, requests); err != nil {
		return nil, err
	}
	if t.fetchDuration, err = register(reg, fetchDuration); err != nil {
		return nil, err
	}
	return t, nil
}

// register reuses a collector that is already registered under the same name.
func register[C prometheus.Collector](reg prometheus.Registerer, c C) (C, error) {
	if err := reg.Register(c); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			if existing, ok := are.ExistingCollector.(C); ok {
				return existing, nil
			}
		}
		var zero C
		return zero, err
	}
	return c, nil
}

func (t *Tracker) counters(operation string) *opCounters {
	t.mu.RLock()
	c, ok := t.ops[operation]
	t.mu.RUnlock()
	if ok {
		return c
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	if c, ok = t.ops[operation]; !ok {
		c = &opCounters{}
		t.ops[operation] = c
	}
	return c
}

// Increment records one outcome of operation.
func (t *Tracker) Increment(operation string, outcome Outcome) {
	c := t.counters(operation)
	switch outcome {
	case OutcomeHit:
		c.hits.Add(1)
	case OutcomeMiss:
		c.misses.Add(1)
	case OutcomeError:
		c.errors.Add(1)
	default:
		return
	}
	if t.requests != nil {
		t.requests.WithLabelValues(operation, string(outcome)).Inc()
	}
}

// ObserveFetch records how long a source-of-truth call took.
func (t *Tracker) ObserveFetch(operation string, d time.Duration) {
	if t.fetchDuration != nil {
		t.fetchDuration.WithLabelValues(operation).Observe(d.Seconds())
	}
}

// GetStats returns the counters of operation; zero when it was never seen.
func (t *Tracker) GetStats(operation string) OperationStats {
	t.mu.RLock()
	c, ok := t.ops[operation]
	t.mu.RUnlock()
	if !ok {
		return OperationStats{}
	}
	return c.snapshot()
}

// GetAllStats returns the counters of every operation seen so far.
func (t *Tracker) GetAllStats() map[string]OperationStats {
	t.mu.RLock()
	defer t.mu.RUnlock()
	out := make(map[string]OperationStats, len(t.ops))
	for op, c := range t.ops {
		out[op] = c.snapshot()
	}
	return out
}

// Operations returns the tracked operation names, sorted.
func (t *Tracker) Operations() []string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	names := make([]string, 0, len(t.ops))
	for op := range t.ops {
		names = append(names, op)
	}
	sort.Strings(names)
	return names
}

// GetHitRate returns the hit percentage of operation.
func (t *Tracker) GetHitRate(operation string) float64 {
	return t.GetStats(operation).HitRate()
}

// Reset drops every counter. Prometheus series are left untouched.
func (t *Tracker) Reset() {
	t.mu.Lock()
	t.ops = make(map[string]*opCounters)
	t.mu.Unlock()
}
