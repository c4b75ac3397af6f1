package cache

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

// Redis is a Cache backed by a shared redis instance, for deployments where
// several sync invocations should see each other's entries.
type Redis struct {
	rdb    *redis.Client
	logger *slog.Logger
}

// NewRedis connects to redisURL and verifies the connection with a ping.
func NewRedis(ctx context.Context, redisURL string, logger *slog.Logger) (*Redis, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}

	rdb := redis.NewClient(opts)

	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		return nil, fmt.Errorf("ping redis: %w", err)
	}

	logger.Info("connected to redis cache", "addr", opts.Addr)

	return &Redis{rdb: rdb, logger: logger}, nil
}

func (r *Redis) Get(ctx context.Context, key string) ([]byte, bool) {
	data, err := r.rdb.Get(ctx, key).Bytes()
	if err != nil {
		return nil, false
	}
	return data, true
}

func (r *Redis) Set(ctx context.Context, key string, payload []byte, ttl time.Duration) {
	if err := r.rdb.Set(ctx, key, payload, ttl).Err(); err != nil {
		r.logger.Debug("cache set failed", "key", key, "error", err)
	}
}

func (r *Redis) Close() error {
	return r.rdb.Close()
}
