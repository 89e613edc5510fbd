package database

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
	"github.com/vlabhub/labchat-go/internal/config"
	"github.com/vlabhub/labchat-go/internal/logger"
)

var RedisClient *redis.Client

func InitRedis() (*redis.Client, error) {
	cfg := config.AppConfig
	if cfg == nil {
		return nil, fmt.Errorf("config not loaded")
	}

	rdb := redis.NewClient(&redis.Options{
		Addr: fmt.Sprintf("%s:%s", cfg.Redis.Host, cfg.Redis.Port),
		DB:   cfg.Redis.DB,
	})

	// 测试连接
	ctx := context.Background()
	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	RedisClient = rdb
	logger.Info("redis connected")
	return rdb, nil
}

func CloseRedis() error {
	if RedisClient == nil {
		return nil
	}
	return RedisClient.Close()
}
