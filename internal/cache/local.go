package cache

import (
	"context"
	"encoding/json"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

// Default local cache size (number of entries)
const defaultLocalCapacity = 10000

// ComputeFunc produces the value of a local cache entry.
type ComputeFunc func(ctx context.Context) (any, error)

// SourceFunc is a parameterized source of truth.
type SourceFunc func(ctx context.Context, args ...any) (any, error)

// MemoizedFunc is a SourceFunc served from the local cache.
type MemoizedFunc func(ctx context.Context, args ...any) (any, error)

// LocalOptions tunes the process-local tier.
type LocalOptions struct {
	Capacity int
	// SingleFlight makes concurrent misses of one key share a single compute.
	SingleFlight bool
	Logger       *zap.Logger
	Now          func() time.Time
}

// localEntry wraps a memoized value with the state needed to judge freshness
type localEntry struct {
	value      any
	storedAt   time.Time
	revalidate time.Duration
	tags       []string
	gens       []uint64
}

// LocalCache is the process-local memoizing tier. Entries are keyed by an
// opaque string, grouped under tags, and recomputed once their revalidation
// interval elapses or one of their tags is invalidated.
type LocalCache struct {
	entries      *lru.Cache[string, *localEntry]
	group        singleflight.Group
	singleFlight bool
	now          func() time.Time
	logger       *zap.Logger

	// Tag index: tag -> set of entry keys
	mu          sync.RWMutex
	tagIndex    map[string]map[string]struct{}
	generations map[string]uint64
}

// NewLocalCache creates a bounded local cache.
func NewLocalCache(opts LocalOptions) (*LocalCache, error) {
	capacity := opts.Capacity
	if capacity <= 0 {
		capacity = defaultLocalCapacity
	}
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}

	lc := &LocalCache{
		singleFlight: opts.SingleFlight,
		now:          now,
		logger:       logger,
		tagIndex:     make(map[string]map[string]struct{}),
		generations:  make(map[string]uint64),
	}

	entries, err := lru.NewWithEvict[string, *localEntry](capacity, lc.onEvict)
	if err != nil {
		return nil, err
	}
	lc.entries = entries
	return lc, nil
}

// Do returns the fresh value stored under key, or runs fn and stores its
// result under key and tags. computed reports whether fn ran for this call.
// A revalidate <= 0 keeps the entry until it is invalidated or evicted.
// Errors from fn are returned as is and nothing is stored.
func (lc *LocalCache) Do(ctx context.Context, key string, tags []string, revalidate time.Duration, fn ComputeFunc) (any, bool, error) {
	if e, ok := lc.entries.Get(key); ok && lc.fresh(e) {
		return e.value, false, nil
	}

	gens := lc.snapshot(tags)
	var ran atomic.Bool
	compute := func() (any, error) {
		ran.Store(true)
		val, err := fn(ctx)
		if err != nil {
			return nil, err
		}
		lc.store(key, tags, gens, revalidate, val)
		return val, nil
	}

	if !lc.singleFlight {
		val, err := compute()
		return val, true, err
	}

	// Entries computed under different tag generations must not be shared,
	// so the generations are part of the flight key.
	ch := lc.group.DoChan(flightKey(key, gens), compute)
	select {
	case res := <-ch:
		return res.Val, ran.Load(), res.Err
	case <-ctx.Done():
		return nil, false, ctx.Err()
	}
}

// Memoize wraps fn so that calls are cached per (tag, arguments) and
// recomputed after revalidate or when tag is invalidated. Arguments that
// cannot be serialized bypass the cache.
func (lc *LocalCache) Memoize(fn SourceFunc, tag string, revalidate time.Duration) MemoizedFunc {
	return func(ctx context.Context, args ...any) (any, error) {
		argKey, err := json.Marshal(args)
		if err != nil {
			lc.logger.Warn("Memoize arguments not serializable, bypassing local cache",
				zap.String("tag", tag), zap.Error(err))
			return fn(ctx, args...)
		}
		v, _, err := lc.Do(ctx, tag+"#"+string(argKey), []string{tag}, revalidate, func(ctx context.Context) (any, error) {
			return fn(ctx, args...)
		})
		return v, err
	}
}

// Invalidate forces every entry under the given tags to recompute on next
// access. Computations already in flight for those tags will not store
// their results.
func (lc *LocalCache) Invalidate(tags ...string) int {
	var keys []string
	lc.mu.Lock()
	for _, tag := range tags {
		lc.generations[tag]++
		for k := range lc.tagIndex[tag] {
			keys = append(keys, k)
		}
		delete(lc.tagIndex, tag)
	}
	lc.mu.Unlock()

	// Remove outside the lock: the eviction callback takes it.
	for _, k := range keys {
		lc.entries.Remove(k)
	}
	return len(keys)
}

// Len returns the number of stored entries.
func (lc *LocalCache) Len() int {
	return lc.entries.Len()
}

// Purge drops every entry.
func (lc *LocalCache) Purge() {
	lc.entries.Purge()
}

func (lc *LocalCache) fresh(e *localEntry) bool {
	if e.revalidate > 0 && lc.now().Sub(e.storedAt) >= e.revalidate {
		return false
	}
	lc.mu.RLock()
	defer lc.mu.RUnlock()
	for i, tag := range e.tags {
		if lc.generations[tag] != e.gens[i] {
			return false
		}
	}
	return true
}

func (lc *LocalCache) snapshot(tags []string) []uint64 {
	gens := make([]uint64, len(tags))
	lc.mu.RLock()
	for i, tag := range tags {
		gens[i] = lc.generations[tag]
	}
	lc.mu.RUnlock()
	return gens
}

// Generations returns the current generation of each tag, for a later
// Current check.
func (lc *LocalCache) Generations(tags []string) []uint64 {
	return lc.snapshot(tags)
}

// Current reports whether none of tags has been invalidated since gens was
// taken with Generations.
func (lc *LocalCache) Current(tags []string, gens []uint64) bool {
	lc.mu.RLock()
	defer lc.mu.RUnlock()
	return lc.movedLocked(tags, gens) == ""
}

// movedLocked returns the first tag whose generation differs from gens.
func (lc *LocalCache) movedLocked(tags []string, gens []uint64) string {
	for i, tag := range tags {
		if lc.generations[tag] != gens[i] {
			return tag
		}
	}
	return ""
}

func (lc *LocalCache) store(key string, tags []string, gens []uint64, revalidate time.Duration, v any) {
	lc.mu.Lock()
	if tag := lc.movedLocked(tags, gens); tag != "" {
		lc.mu.Unlock()
		lc.logger.Debug("Discarding local result computed before invalidation",
			zap.String("key", key), zap.String("tag", tag))
		return
	}
	for _, tag := range tags {
		set, ok := lc.tagIndex[tag]
		if !ok {
			set = make(map[string]struct{})
			lc.tagIndex[tag] = set
		}
		set[key] = struct{}{}
	}
	lc.mu.Unlock()

	lc.entries.Add(key, &localEntry{
		value:      v,
		storedAt:   lc.now(),
		revalidate: revalidate,
		tags:       tags,
		gens:       gens,
	})
}

func (lc *LocalCache) onEvict(key string, e *localEntry) {
	lc.mu.Lock()
	defer lc.mu.Unlock()
	for _, tag := range e.tags {
		if set, ok := lc.tagIndex[tag]; ok {
			delete(set, key)
			if len(set) == 0 {
				delete(lc.tagIndex, tag)
			}
		}
	}
}

func flightKey(key string, gens []uint64) string {
	if len(gens) == 0 {
		return key
	}
	parts := make([]string, len(gens))
	for i, g := range gens {
		parts[i] = strconv.FormatUint(g, 10)
	}
	return key + "@" + strings.Join(parts, ".")
}
