package cache

import (
	"context"
	"encoding/json"
	"time"

	"github.com/georgemichailidhs/meet2rent-sub001/pkg/config"
	"github.com/redis/go-redis/v9"
)

var (
	client *redis.Client
	ttl    time.Duration
)

// InitRedis initializes the Redis client. Caching is optional: with no
// REDIS_ADDR configured every cache call becomes a no-op and reads fall
// through to the database.
func InitRedis(cfg *config.RedisConfig) {
	if cfg.Addr == "" {
		return
	}

	client = redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       0,
	})
	ttl = cfg.CacheTTL
}

// GetClient returns the Redis client, or nil when caching is disabled
func GetClient() *redis.Client {
	return client
}

// GetJSON loads a cached value into dest. Returns false on miss, disabled
// cache, or any Redis error.
func GetJSON(ctx context.Context, key string, dest interface{}) bool {
	if client == nil {
		return false
	}

	data, err := client.Get(ctx, key).Bytes()
	if err != nil {
		return false
	}
	return json.Unmarshal(data, dest) == nil
}

// SetJSON stores a value under key for the configured TTL. Errors are
// ignored: a failed cache write must never fail the request.
func SetJSON(ctx context.Context, key string, value interface{}) {
	if client == nil {
		return
	}

	data, err := json.Marshal(value)
	if err != nil {
		return
	}
	client.Set(ctx, key, data, ttl)
}

// Invalidate removes keys from the cache
func Invalidate(ctx context.Context, keys ...string) {
	if client == nil || len(keys) == 0 {
		return
	}
	client.Del(ctx, keys...)
}
