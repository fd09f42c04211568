package database

import (
	"context"
	"log/slog"

	"github.com/go-redis/redis/v8"

	"github.com/luckydraw/backend/internal/config"
)

// InitRedis connects to Redis. It returns nil when Redis is disabled or
// unreachable; callers run without the lookup cache in that case.
func InitRedis(ctx context.Context, cfg *config.RedisConfig, logger *slog.Logger) *redis.Client {
	if !cfg.Enabled {
		logger.Info("redis disabled, ticket cache off")
		return nil
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr(),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	if err := rdb.Ping(ctx).Err(); err != nil {
		logger.Warn("redis connection failed, continuing without redis", "addr", cfg.Addr(), "error", err)
		rdb.Close()
		return nil
	}

	logger.Info("redis connection established", "addr", cfg.Addr())
	return rdb
}
