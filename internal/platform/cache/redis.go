package cache

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

const redisKeyPrefix = "txn:cache:"

// Redis is a JSON-backed Store shared by every process pointing at the same
// Redis. Entries are namespaced by generation; invalidation is a single INCR
// and superseded entries age out through their TTL.
type Redis[V any] struct {
	name   string
	client *redis.Client
	ttl    time.Duration
}

var _ Store[int] = (*Redis[int])(nil)

// NewRedis creates a Redis-backed cache. ttl must be positive.
func NewRedis[V any](client *redis.Client, name string, ttl time.Duration) *Redis[V] {
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	return &Redis[V]{name: name, client: client, ttl: ttl}
}

func (c *Redis[V]) Name() string { return c.name }

func (c *Redis[V]) generationKey() string {
	return redisKeyPrefix + c.name + ":gen"
}

func (c *Redis[V]) entryKey(generation uint64, key string) string {
	return redisKeyPrefix + c.name + ":" + strconv.FormatUint(generation, 10) + ":" + key
}

func (c *Redis[V]) Generation(ctx context.Context) uint64 {
	gen, err := c.client.Get(ctx, c.generationKey()).Uint64()
	if err != nil && !errors.Is(err, redis.Nil) {
		slog.Warn("Cache generation read failed", slog.String("cache", c.name), slog.String("error", err.Error()))
	}
	return gen
}

// Get returns a miss on any Redis or decoding error.
func (c *Redis[V]) Get(ctx context.Context, key string) (V, bool) {
	var zero V
	data, err := c.client.Get(ctx, c.entryKey(c.Generation(ctx), key)).Bytes()
	if err != nil {
		return zero, false
	}
	var v V
	if err := json.Unmarshal(data, &v); err != nil {
		return zero, false
	}
	return v, true
}

// Set writes under the supplied generation's namespace. Errors are logged
// rather than returned since a failed cache write is non-fatal.
func (c *Redis[V]) Set(ctx context.Context, generation uint64, key string, value V) {
	if generation != c.Generation(ctx) {
		return
	}
	data, err := json.Marshal(value)
	if err != nil {
		slog.Warn("Cache marshal failed", slog.String("cache", c.name), slog.String("key", key), slog.String("error", err.Error()))
		return
	}
	if err := c.client.Set(ctx, c.entryKey(generation, key), data, c.ttl).Err(); err != nil {
		slog.Warn("Cache write failed", slog.String("cache", c.name), slog.String("key", key), slog.String("error", err.Error()))
	}
}

const invalidateAttempts = 3

// InvalidateAll bumps the generation. When INCR keeps failing it deletes the
// entries themselves so no listing outlives the write that invalidated it.
func (c *Redis[V]) InvalidateAll(ctx context.Context) {
	var err error
	for attempt := 0; attempt < invalidateAttempts; attempt++ {
		if err = c.client.Incr(ctx, c.generationKey()).Err(); err == nil {
			return
		}
	}
	slog.Warn("Cache generation bump failed, deleting entries",
		slog.String("cache", c.name), slog.String("error", err.Error()))

	if err := c.deleteEntries(ctx); err != nil {
		slog.Error("Cache invalidation failed, stale listings may be served until the TTL expires",
			slog.String("cache", c.name), slog.Duration("ttl", c.ttl), slog.String("error", err.Error()))
	}
}

func (c *Redis[V]) deleteEntries(ctx context.Context) error {
	genKey := c.generationKey()
	iter := c.client.Scan(ctx, 0, redisKeyPrefix+c.name+":*", 100).Iterator()
	for iter.Next(ctx) {
		if iter.Val() == genKey {
			continue
		}
		if err := c.client.Del(ctx, iter.Val()).Err(); err != nil {
			return err
		}
	}
	return iter.Err()
}
