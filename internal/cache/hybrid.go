package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"storefront-cache/internal/domain"

	"go.uber.org/zap"
)

// Entry describes where a value lives in both tiers.
type Entry struct {
	// Operation names the read for statistics, e.g. "product.by_id".
	Operation string
	Key       string
	Tags      []string
	// TTL is the KV expiry; <= 0 stores without expiration.
	TTL time.Duration
	// Revalidate is the local recompute interval; <= 0 keeps the entry until
	// one of its tags is invalidated.
	Revalidate time.Duration
}

// FetchFunc loads the canonical value from the source of truth. It may be
// called more than once per logical request and must fail with an error
// rather than a sentinel value.
type FetchFunc[T any] func(ctx context.Context) (T, error)

// Hybrid composes the KV tier and the local tier into one read path with a
// fallback to the source of truth on any cache fault.
type Hybrid struct {
	kv     *KVClient
	local  *LocalCache
	stats  *Tracker
	logger *zap.Logger
}

// NewHybrid creates the orchestrator. A nil tracker keeps unexported counters.
func NewHybrid(kv *KVClient, local *LocalCache, stats *Tracker, logger *zap.Logger) *Hybrid {
	if logger == nil {
		logger = zap.NewNop()
	}
	if stats == nil {
		stats, _ = NewTracker(nil)
	}
	return &Hybrid{kv: kv, local: local, stats: stats, logger: logger}
}

func (h *Hybrid) KV() *KVClient { return h.kv }
func (h *Hybrid) Local() *LocalCache { return h.local }
func (h *Hybrid) Stats() *Tracker { return h.stats }

// sourceError marks an error raised by the source of truth while computing a
// local entry, so it is never mistaken for a cache fault.
type sourceError struct {
	err error
}

func (e *sourceError) Error() string { return e.err.Error() }
func (e *sourceError) Unwrap() error { return e.err }

// Get reads e.Key from the KV tier, then from the local tier, and finally
// from fetch, populating both tiers on the way back. Cache faults degrade to
// a direct fetch; errors from fetch are returned unmodified.
func Get[T any](ctx context.Context, h *Hybrid, e Entry, fetch FetchFunc[T]) (T, error) {
	op := e.Operation
	if op == "" {
		op = "hybrid"
	}

	raw, err := h.kv.TryGet(ctx, e.Key)
	switch {
	case err == nil:
		v, decodeErr := Decode[T](raw)
		if decodeErr == nil {
			h.stats.Increment(op, OutcomeHit)
			return v, nil
		}
		h.logger.Warn("Discarding undecodable cache entry",
			zap.String("operation", op), zap.String("key", e.Key), zap.Error(decodeErr))
	case domain.IsCacheMiss(err):
	default:
		h.logger.Warn("KV cache unavailable, reading from source",
			zap.String("operation", op), zap.String("key", e.Key), zap.Error(err))
		h.stats.Increment(op, OutcomeError)
		return timedFetch(ctx, h, op, fetch)
	}

	// Invalidation bumps the local generations before deleting KV keys, so a
	// fetch that raced an invalidation sees moved generations here and skips
	// the KV write instead of resurrecting the old value.
	gens := h.local.Generations(e.Tags)
	v, computed, err := h.local.Do(ctx, e.Key, e.Tags, e.Revalidate, func(ctx context.Context) (any, error) {
		val, err := timedFetch(ctx, h, op, fetch)
		if err != nil {
			return nil, &sourceError{err: err}
		}
		if h.local.Current(e.Tags, gens) {
			h.populate(ctx, op, e, val)
		} else {
			h.logger.Debug("Skipping KV write of a value fetched before invalidation",
				zap.String("operation", op), zap.String("key", e.Key))
		}
		return val, nil
	})
	if err != nil {
		var se *sourceError
		if errors.As(err, &se) {
			var zero T
			return zero, se.err
		}
		h.logger.Warn("Local cache failed, reading from source",
			zap.String("operation", op), zap.String("key", e.Key), zap.Error(err))
		h.stats.Increment(op, OutcomeError)
		return timedFetch(ctx, h, op, fetch)
	}

	if computed {
		h.stats.Increment(op, OutcomeMiss)
	} else {
		h.stats.Increment(op, OutcomeHit)
	}

	if v == nil {
		var zero T
		return zero, nil
	}
	typed, ok := v.(T)
	if !ok {
		h.logger.Warn("Local cache entry has unexpected type, reading from source",
			zap.String("operation", op), zap.String("key", e.Key),
			zap.String("type", fmt.Sprintf("%T", v)))
		h.stats.Increment(op, OutcomeError)
		return timedFetch(ctx, h, op, fetch)
	}
	return typed, nil
}

func timedFetch[T any](ctx context.Context, h *Hybrid, op string, fetch FetchFunc[T]) (T, error) {
	start := time.Now()
	v, err := fetch(ctx)
	h.stats.ObserveFetch(op, time.Since(start))
	return v, err
}

// populate writes a freshly computed value to the KV tier. Failures are
// logged; the caller still gets the value.
func (h *Hybrid) populate(ctx context.Context, op string, e Entry, v any) {
	raw, err := Encode(v)
	if err != nil {
		h.logger.Warn("Cannot serialize value for KV cache",
			zap.String("operation", op), zap.String("key", e.Key), zap.Error(err))
		return
	}
	if err := h.kv.TrySet(ctx, e.Key, raw, e.TTL); err != nil {
		h.logger.Warn("Failed to populate KV cache",
			zap.String("operation", op), zap.String("key", e.Key), zap.Error(err))
	}
}

// Invalidate deletes key from the KV tier and invalidates tags in the local
// tier. The local step always runs; the error reports a failed KV delete.
func (h *Hybrid) Invalidate(ctx context.Context, key string, tags ...string) (int64, error) {
	return h.InvalidateKeys(ctx, []string{key}, tags...)
}

// InvalidateKeys is Invalidate for several KV keys in one round trip.
func (h *Hybrid) InvalidateKeys(ctx context.Context, keys []string, tags ...string) (int64, error) {
	h.local.Invalidate(tags...)
	n, err := h.kv.TryDelete(ctx, keys...)
	if err != nil {
		h.logger.Warn("Failed to delete cache keys",
			zap.Strings("keys", keys), zap.Error(err))
		return 0, err
	}
	return n, nil
}

// InvalidatePattern deletes every KV key matching the glob and invalidates
// tags in the local tier.
func (h *Hybrid) InvalidatePattern(ctx context.Context, pattern string, tags ...string) (int64, error) {
	h.local.Invalidate(tags...)
	n, err := h.kv.TryDeletePattern(ctx, pattern)
	if err != nil {
		h.logger.Warn("Failed to delete cache pattern",
			zap.String("pattern", pattern), zap.Error(err))
		return 0, err
	}
	return n, nil
}

// InvalidateRegion clears every key of a known region from both tiers.
// Regions without a covering tag purge the whole local tier.
func (h *Hybrid) InvalidateRegion(ctx context.Context, region string) (int64, error) {
	if !IsRegion(region) {
		return 0, domain.NewUnknownRegionError(region)
	}
	tags := RegionTags(region)
	if len(tags) == 0 {
		h.local.Purge()
	}
	return h.InvalidatePattern(ctx, RegionPattern(region), tags...)
}
