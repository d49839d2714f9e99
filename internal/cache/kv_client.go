package cache

import (
	"context"
	"errors"
	"time"

	"storefront-cache/internal/domain"

	"github.com/sony/gobreaker"
	"go.uber.org/zap"
)

const (
	defaultBreakerFailures = 5
	defaultBreakerTimeout  = 30 * time.Second
)

// KVOptions tunes the KV client.
type KVOptions struct {
	// OpTimeout bounds every round trip. Zero leaves the caller's deadline alone.
	OpTimeout       time.Duration
	BreakerFailures uint32
	BreakerTimeout  time.Duration
	Logger          *zap.Logger
}

// KVClient is the shared key-value tier. The Try* methods report every
// failure as a *domain.CacheError; the plain methods log failures and return
// safe defaults so callers can treat an outage as a miss.
type KVClient struct {
	store   domain.Cache
	breaker *gobreaker.CircuitBreaker
	timeout time.Duration
	logger  *zap.Logger
}

// NewKVClient wraps store with per-operation timeouts and a circuit breaker.
func NewKVClient(store domain.Cache, opts KVOptions) *KVClient {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	failures := opts.BreakerFailures
	if failures == 0 {
		failures = defaultBreakerFailures
	}
	timeout := opts.BreakerTimeout
	if timeout <= 0 {
		timeout = defaultBreakerTimeout
	}

	c := &KVClient{store: store, timeout: opts.OpTimeout, logger: logger}
	c.breaker = gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:    "kv-cache",
		Timeout: timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= failures
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			logger.Warn("Circuit breaker state changed",
				zap.String("breaker", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()))
		},
		// A miss is an answer, not a failure of the store.
		IsSuccessful: func(err error) bool {
			return err == nil || domain.IsCacheMiss(err)
		},
	})
	return c
}

// Connect verifies the store is reachable.
func (c *KVClient) Connect(ctx context.Context) error {
	_, err := c.run(ctx, "ping", "", func(ctx context.Context) (any, error) {
		return nil, c.store.Ping(ctx)
	})
	return err
}

// Close releases the underlying store.
func (c *KVClient) Close() error {
	return c.store.Close()
}

// BreakerState returns the circuit breaker state: closed, half-open or open.
func (c *KVClient) BreakerState() string {
	return c.breaker.State().String()
}

func (c *KVClient) run(ctx context.Context, op, key string, fn func(ctx context.Context) (any, error)) (any, error) {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	v, err := c.breaker.Execute(func() (any, error) {
		return fn(ctx)
	})
	if err == nil {
		return v, nil
	}

	switch {
	case errors.Is(err, gobreaker.ErrOpenState), errors.Is(err, gobreaker.ErrTooManyRequests):
		return nil, domain.NewCacheError(domain.CacheKindBreakerOpen, op, key, err)
	case domain.IsCacheMiss(err):
		return nil, domain.NewCacheError(domain.CacheKindMiss, op, key, nil)
	default:
		return nil, domain.NewCacheError(domain.CacheKindTransport, op, key, err)
	}
}

// TryGet returns the stored value or a miss/transport error.
func (c *KVClient) TryGet(ctx context.Context, key string) (string, error) {
	v, err := c.run(ctx, "get", key, func(ctx context.Context) (any, error) {
		return c.store.Get(ctx, key)
	})
	if err != nil {
		return "", err
	}
	return v.(string), nil
}

// TrySet stores value under key. A ttl <= 0 stores without expiration.
func (c *KVClient) TrySet(ctx context.Context, key, value string, ttl time.Duration) error {
	if ttl < 0 {
		ttl = 0
	}
	_, err := c.run(ctx, "set", key, func(ctx context.Context) (any, error) {
		return nil, c.store.Set(ctx, key, value, ttl)
	})
	return err
}

// TryDelete removes keys and returns how many existed.
func (c *KVClient) TryDelete(ctx context.Context, keys ...string) (int64, error) {
	if len(keys) == 0 {
		return 0, nil
	}
	v, err := c.run(ctx, "delete", keys[0], func(ctx context.Context) (any, error) {
		return c.store.Delete(ctx, keys...)
	})
	if err != nil {
		return 0, err
	}
	return v.(int64), nil
}

// TryDeletePattern resolves the glob to concrete keys, then deletes them.
// A pattern matching nothing deletes nothing and is not an error.
func (c *KVClient) TryDeletePattern(ctx context.Context, pattern string) (int64, error) {
	v, err := c.run(ctx, "scan", pattern, func(ctx context.Context) (any, error) {
		return c.store.Scan(ctx, pattern)
	})
	if err != nil {
		return 0, err
	}
	keys := v.([]string)
	if len(keys) == 0 {
		return 0, nil
	}
	v, err = c.run(ctx, "delete_pattern", pattern, func(ctx context.Context) (any, error) {
		return c.store.Delete(ctx, keys...)
	})
	if err != nil {
		return 0, err
	}
	return v.(int64), nil
}

// TryCount returns how many keys match the glob.
func (c *KVClient) TryCount(ctx context.Context, pattern string) (int64, error) {
	v, err := c.run(ctx, "scan", pattern, func(ctx context.Context) (any, error) {
		return c.store.Scan(ctx, pattern)
	})
	if err != nil {
		return 0, err
	}
	return int64(len(v.([]string))), nil
}

// TryExists reports whether key is stored.
func (c *KVClient) TryExists(ctx context.Context, key string) (bool, error) {
	v, err := c.run(ctx, "exists", key, func(ctx context.Context) (any, error) {
		return c.store.Exists(ctx, key)
	})
	if err != nil {
		return false, err
	}
	return v.(bool), nil
}

// TryTTL returns the remaining lifetime of key in the store's negative-value
// convention.
func (c *KVClient) TryTTL(ctx context.Context, key string) (time.Duration, error) {
	v, err := c.run(ctx, "ttl", key, func(ctx context.Context) (any, error) {
		return c.store.TTL(ctx, key)
	})
	if err != nil {
		return 0, err
	}
	return v.(time.Duration), nil
}

// TryDBSize returns the number of keys in the store.
func (c *KVClient) TryDBSize(ctx context.Context) (int64, error) {
	v, err := c.run(ctx, "dbsize", "", func(ctx context.Context) (any, error) {
		return c.store.DBSize(ctx)
	})
	if err != nil {
		return 0, err
	}
	return v.(int64), nil
}

// TryMemoryUsage returns the store-reported memory usage.
func (c *KVClient) TryMemoryUsage(ctx context.Context) (string, error) {
	v, err := c.run(ctx, "memory", "", func(ctx context.Context) (any, error) {
		return c.store.MemoryUsage(ctx)
	})
	if err != nil {
		return "", err
	}
	return v.(string), nil
}

// Get returns the value and true on a hit; any failure reads as a miss.
func (c *KVClient) Get(ctx context.Context, key string) (string, bool) {
	v, err := c.TryGet(ctx, key)
	if err != nil {
		c.logFailure("get", key, err)
		return "", false
	}
	return v, true
}

// Set stores value for ttlSeconds; ttlSeconds <= 0 stores without expiration.
// It reports whether the write reached the store.
func (c *KVClient) Set(ctx context.Context, key, value string, ttlSeconds int64) bool {
	if err := c.TrySet(ctx, key, value, time.Duration(ttlSeconds)*time.Second); err != nil {
		c.logFailure("set", key, err)
		return false
	}
	return true
}

// Delete reports whether key existed and was removed.
func (c *KVClient) Delete(ctx context.Context, key string) bool {
	n, err := c.TryDelete(ctx, key)
	if err != nil {
		c.logFailure("delete", key, err)
		return false
	}
	return n > 0
}

// DeletePattern returns how many keys matching the glob were removed.
func (c *KVClient) DeletePattern(ctx context.Context, pattern string) int64 {
	n, err := c.TryDeletePattern(ctx, pattern)
	if err != nil {
		c.logFailure("delete_pattern", pattern, err)
		return 0
	}
	return n
}

// Exists reports whether key is stored; failures read as absent.
func (c *KVClient) Exists(ctx context.Context, key string) bool {
	ok, err := c.TryExists(ctx, key)
	if err != nil {
		c.logFailure("exists", key, err)
		return false
	}
	return ok
}

// TTL returns the remaining seconds of key, -1 when it never expires or the
// store failed, -2 when it does not exist.
func (c *KVClient) TTL(ctx context.Context, key string) int64 {
	d, err := c.TryTTL(ctx, key)
	if err != nil {
		c.logFailure("ttl", key, err)
		return -1
	}
	switch {
	case d == -2 || d == -2*time.Second:
		return -2
	case d < 0:
		return -1
	}
	return int64(d / time.Second)
}

// GetJSON decodes the stored value into dest. It returns false on a miss,
// a transport failure or a corrupt payload.
func (c *KVClient) GetJSON(ctx context.Context, key string, dest any) bool {
	raw, ok := c.Get(ctx, key)
	if !ok {
		return false
	}
	if err := DecodeInto(raw, dest); err != nil {
		c.logFailure("get_json", key, err)
		return false
	}
	return true
}

// SetJSON encodes v and stores it with ttl.
func (c *KVClient) SetJSON(ctx context.Context, key string, v any, ttl time.Duration) bool {
	raw, err := Encode(v)
	if err != nil {
		c.logFailure("set_json", key, err)
		return false
	}
	if err := c.TrySet(ctx, key, raw, ttl); err != nil {
		c.logFailure("set_json", key, err)
		return false
	}
	return true
}

func (c *KVClient) logFailure(op, key string, err error) {
	if domain.IsCacheMiss(err) {
		return
	}
	c.logger.Warn("Cache operation failed",
		zap.String("operation", op),
		zap.String("key", key),
		zap.Error(err))
}
