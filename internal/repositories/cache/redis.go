package cache

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/SscSPs/approval_engine/internal/core/domain"
	"github.com/SscSPs/approval_engine/internal/core/ports"
	"github.com/SscSPs/approval_engine/internal/middleware"
	"github.com/redis/go-redis/v9"
)

const keyPrefix = "approvals:perms:"

// RedisClient is the subset of the go-redis client the cache uses.
type RedisClient interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value any, expiration time.Duration) *redis.StatusCmd
	Del(ctx context.Context, keys ...string) *redis.IntCmd
}

// Redis is a PermissionCache shared by every node. A Redis failure is logged
// and treated as a miss so permission checks fall through to the store.
type Redis struct {
	client RedisClient
	ttl    time.Duration
}

var _ ports.PermissionCache = (*Redis)(nil)

func NewRedis(client RedisClient, ttl time.Duration) *Redis {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Redis{client: client, ttl: ttl}
}

// NewRedisFromURL parses a redis:// URL and returns the cache and the
// underlying client so the caller can close it.
func NewRedisFromURL(url string, ttl time.Duration) (*Redis, *redis.Client, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, nil, err
	}
	client := redis.NewClient(opts)
	return NewRedis(client, ttl), client, nil
}

func (c *Redis) Get(ctx context.Context, userID string) (domain.PermissionSet, bool) {
	raw, err := c.client.Get(ctx, keyPrefix+userID).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			middleware.GetLoggerFromCtx(ctx).Warn("Permission cache read failed", slog.String("user_id", userID), slog.String("error", err.Error()))
		}
		return domain.PermissionSet{}, false
	}
	var set domain.PermissionSet
	if err := set.UnmarshalJSON(raw); err != nil {
		middleware.GetLoggerFromCtx(ctx).Warn("Discarding malformed permission cache entry", slog.String("user_id", userID))
		c.Invalidate(ctx, userID)
		return domain.PermissionSet{}, false
	}
	return set, true
}

func (c *Redis) Set(ctx context.Context, userID string, set domain.PermissionSet) {
	raw, err := set.MarshalJSON()
	if err != nil {
		return
	}
	if err := c.client.Set(ctx, keyPrefix+userID, raw, c.ttl).Err(); err != nil {
		middleware.GetLoggerFromCtx(ctx).Warn("Permission cache write failed", slog.String("user_id", userID), slog.String("error", err.Error()))
	}
}

func (c *Redis) Invalidate(ctx context.Context, userID string) {
	if err := c.client.Del(ctx, keyPrefix+userID).Err(); err != nil {
		middleware.GetLoggerFromCtx(ctx).Warn("Permission cache invalidation failed", slog.String("user_id", userID), slog.String("error", err.Error()))
	}
}
