package llm

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/markdave123-py/LegalScan/internal/core"
	"github.com/markdave123-py/LegalScan/internal/logging"
)

// delete KEYS[1] only when it still equals ARGV[1]
var compareAndDelete = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// RedisCache shares the active model between replicas. Redis failures are
// logged and degrade to a cache miss, which only costs a probe.
type RedisCache struct {
	rdb    redis.UniversalClient
	key    string
	ttl    time.Duration
	logger *slog.Logger
}

func NewRedisCache(rdb redis.UniversalClient, name string, ttl time.Duration, logger *slog.Logger) *RedisCache {
	return &RedisCache{
		rdb:    rdb,
		key:    "legalscan:active-model:" + name,
		ttl:    ttl,
		logger: logging.Component(logger, "model-cache"),
	}
}

func (c *RedisCache) Get(ctx context.Context) (string, bool) {
	v, err := c.rdb.Get(ctx, c.key).Result()
	if errors.Is(err, redis.Nil) {
		return "", false
	}
	if err != nil {
		c.logger.Warn("redis get failed", "key", c.key, "error", err)
		return "", false
	}
	return v, v != ""
}

func (c *RedisCache) Set(ctx context.Context, model string) {
	if err := c.rdb.Set(ctx, c.key, model, c.ttl).Err(); err != nil {
		c.logger.Warn("redis set failed", "key", c.key, "error", err)
	}
}

func (c *RedisCache) Invalidate(ctx context.Context, model string) {
	if err := compareAndDelete.Run(ctx, c.rdb, []string{c.key}, model).Err(); err != nil && !errors.Is(err, redis.Nil) {
		c.logger.Warn("redis invalidate failed", "key", c.key, "error", err)
	}
}

var _ core.ModelCache = (*RedisCache)(nil)
