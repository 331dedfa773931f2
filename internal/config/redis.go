package config

import (
	"context"
	"fmt"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

// InitRedis اتصال به Redis را راه‌اندازی می‌کند؛ بدون REDIS_ADDR مقدار nil برمی‌گردد
func InitRedis(ctx context.Context, cfg AppConfig, logger *zap.Logger) (*redis.Client, error) {
	if cfg.RedisAddr == "" {
		logger.Warn("⚠️ REDIS_ADDR is not set, due queue falls back to database polling")
		return nil, nil
	}
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})

	// بررسی اتصال به Redis
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("error connecting to redis: %w", err)
	}
	logger.Info("✅ Connected to Redis", zap.String("addr", cfg.RedisAddr))
	return client, nil
}
