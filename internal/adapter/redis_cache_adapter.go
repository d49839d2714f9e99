package adapter

import (
	"bufio"
	"context"
	"errors"
	"strings"
	"time"

	"storefront-cache/internal/domain"

	"github.com/redis/go-redis/v9"
)

// scanBatchSize is the COUNT hint passed to SCAN while resolving patterns.
const scanBatchSize = 100

// RedisCacheAdapter implements the domain.Cache interface using a Redis client.
type RedisCacheAdapter struct {
	client *redis.Client
}

// NewRedisCacheAdapter creates a new instance of RedisCacheAdapter.
// It expects a connected *redis.Client.
func NewRedisCacheAdapter(client *redis.Client) domain.Cache {
	return &RedisCacheAdapter{client: client}
}

// Get retrieves an item from the Redis cache.
// It translates redis.Nil to domain.ErrCacheMiss.
func (r *RedisCacheAdapter) Get(ctx context.Context, key string) (string, error) {
	val, err := r.client.Get(ctx, key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", domain.ErrCacheMiss
		}
		return "", err
	}
	return val, nil
}

// Set adds an item to the Redis cache. A zero expiration keeps the key forever.
func (r *RedisCacheAdapter) Set(ctx context.Context, key string, value string, expiration time.Duration) error {
	return r.client.Set(ctx, key, value, expiration).Err()
}

// Delete removes keys from the Redis cache and returns how many were removed.
func (r *RedisCacheAdapter) Delete(ctx context.Context, keys ...string) (int64, error) {
	if len(keys) == 0 {
		return 0, nil
	}
	return r.client.Del(ctx, keys...).Result()
}

// Scan walks the keyspace with SCAN MATCH until the cursor wraps around.
// Unlike KEYS it does not block the server on large databases.
func (r *RedisCacheAdapter) Scan(ctx context.Context, pattern string) ([]string, error) {
	var (
		cursor uint64
		found  []string
	)
	seen := make(map[string]struct{})
	for {
		keys, next, err := r.client.Scan(ctx, cursor, pattern, scanBatchSize).Result()
		if err != nil {
			return nil, err
		}
		// SCAN may return the same key more than once
		for _, k := range keys {
			if _, dup := seen[k]; dup {
				continue
			}
			seen[k] = struct{}{}
			found = append(found, k)
		}
		cursor = next
		if cursor == 0 {
			return found, nil
		}
	}
}

// Exists reports whether the key is present.
func (r *RedisCacheAdapter) Exists(ctx context.Context, key string) (bool, error) {
	n, err := r.client.Exists(ctx, key).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// TTL returns the remaining lifetime of a key.
// go-redis reports -1/-2 as raw durations for "no expiry"/"missing key".
func (r *RedisCacheAdapter) TTL(ctx context.Context, key string) (time.Duration, error) {
	return r.client.TTL(ctx, key).Result()
}

// Ping checks the health of the Redis server.
func (r *RedisCacheAdapter) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

// DBSize returns the number of keys in the selected database.
func (r *RedisCacheAdapter) DBSize(ctx context.Context) (int64, error) {
	return r.client.DBSize(ctx).Result()
}

// MemoryUsage returns used_memory_human from INFO memory.
func (r *RedisCacheAdapter) MemoryUsage(ctx context.Context) (string, error) {
	info, err := r.client.Info(ctx, "memory").Result()
	if err != nil {
		return "", err
	}
	return parseInfoField(info, "used_memory_human"), nil
}

// Close closes the underlying connection pool.
func (r *RedisCacheAdapter) Close() error {
	return r.client.Close()
}

func parseInfoField(info, field string) string {
	scanner := bufio.NewScanner(strings.NewReader(info))
	prefix := field + ":"
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if strings.HasPrefix(line, prefix) {
			return strings.TrimPrefix(line, prefix)
		}
	}
	return "unknown"
}
