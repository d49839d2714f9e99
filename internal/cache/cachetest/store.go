// Package cachetest provides in-memory cache stores and a controllable clock
// for tests of code built on the cache package.
package cachetest

import (
	"context"
	"errors"
	"path"
	"sort"
	"sync"
	"time"

	"storefront-cache/internal/domain"
)

// Clock is a manually advanced time source.
type Clock struct {
	mu  sync.Mutex
	now time.Time
}

func NewClock(start time.Time) *Clock {
	return &Clock{now: start}
}

func (c *Clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *Clock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

func (c *Clock) Set(t time.Time) {
	c.mu.Lock()
	c.now = t
	c.mu.Unlock()
}

type item struct {
	value     string
	expiresAt time.Time
}

// MemoryStore is a domain.Cache held in a map. Expiry follows the clock it
// was created with; patterns use Redis-style globs.
type MemoryStore struct {
	mu    sync.Mutex
	items map[string]item
	now   func() time.Time

	Gets int
	Sets int
}

// NewMemoryStore creates an empty store. A nil now uses time.Now.
func NewMemoryStore(now func() time.Time) *MemoryStore {
	if now == nil {
		now = time.Now
	}
	return &MemoryStore{items: make(map[string]item), now: now}
}

func (s *MemoryStore) live(key string) (item, bool) {
	it, ok := s.items[key]
	if !ok {
		return item{}, false
	}
	if !it.expiresAt.IsZero() && !s.now().Before(it.expiresAt) {
		delete(s.items, key)
		return item{}, false
	}
	return it, true
}

func (s *MemoryStore) Get(_ context.Context, key string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Gets++
	it, ok := s.live(key)
	if !ok {
		return "", domain.ErrCacheMiss
	}
	return it.value, nil
}

func (s *MemoryStore) Set(_ context.Context, key string, value string, expiration time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Sets++
	it := item{value: value}
	if expiration > 0 {
		it.expiresAt = s.now().Add(expiration)
	}
	s.items[key] = it
	return nil
}

func (s *MemoryStore) Delete(_ context.Context, keys ...string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var n int64
	for _, k := range keys {
		if _, ok := s.live(k); ok {
			delete(s.items, k)
			n++
		}
	}
	return n, nil
}

func (s *MemoryStore) Scan(_ context.Context, pattern string) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var keys []string
	for k := range s.items {
		if _, ok := s.live(k); !ok {
			continue
		}
		matched, err := path.Match(pattern, k)
		if err != nil {
			return nil, err
		}
		if matched {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	return keys, nil
}

func (s *MemoryStore) Exists(_ context.Context, key string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.live(key)
	return ok, nil
}

func (s *MemoryStore) TTL(_ context.Context, key string) (time.Duration, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	it, ok := s.live(key)
	switch {
	case !ok:
		return -2, nil
	case it.expiresAt.IsZero():
		return -1, nil
	}
	return it.expiresAt.Sub(s.now()), nil
}

func (s *MemoryStore) Ping(context.Context) error { return nil }

func (s *MemoryStore) DBSize(context.Context) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var n int64
	for k := range s.items {
		if _, ok := s.live(k); ok {
			n++
		}
	}
	return n, nil
}

func (s *MemoryStore) MemoryUsage(context.Context) (string, error) { return "1.00M", nil }

func (s *MemoryStore) Close() error { return nil }

// Keys returns every live key, sorted.
func (s *MemoryStore) Keys() []string {
	keys, _ := s.Scan(context.Background(), "*")
	return keys
}

// Has reports whether key is live.
func (s *MemoryStore) Has(key string) bool {
	ok, _ := s.Exists(context.Background(), key)
	return ok
}

// Seed stores value under key without expiration.
func (s *MemoryStore) Seed(key, value string) {
	_ = s.Set(context.Background(), key, value, 0)
}

// ErrUnavailable is returned by every FailingStore call.
var ErrUnavailable = errors.New("cache store unavailable")

// FailingStore is a domain.Cache whose every operation fails.
type FailingStore struct {
	mu    sync.Mutex
	Calls int
}

func (f *FailingStore) fail() error {
	f.mu.Lock()
	f.Calls++
	f.mu.Unlock()
	return ErrUnavailable
}

func (f *FailingStore) Get(context.Context, string) (string, error) { return "", f.fail() }
func (f *FailingStore) Set(context.Context, string, string, time.Duration) error {
	return f.fail()
}
func (f *FailingStore) Delete(context.Context, ...string) (int64, error) { return 0, f.fail() }
func (f *FailingStore) Scan(context.Context, string) ([]string, error) { return nil, f.fail() }
func (f *FailingStore) Exists(context.Context, string) (bool, error) { return false, f.fail() }
func (f *FailingStore) TTL(context.Context, string) (time.Duration, error) { return 0, f.fail() }
func (f *FailingStore) Ping(context.Context) error { return f.fail() }
func (f *FailingStore) DBSize(context.Context) (int64, error) { return 0, f.fail() }
func (f *FailingStore) MemoryUsage(context.Context) (string, error) { return "", f.fail() }
func (f *FailingStore) Close() error { return nil }

var (
	_ domain.Cache = (*MemoryStore)(nil)
	_ domain.Cache = (*FailingStore)(nil)
)
