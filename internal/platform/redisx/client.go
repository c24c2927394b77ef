// Package redisx dials Redis for the adapters that need it.
package redisx

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

// ConnectOrFallback returns a pinged client, or nil when addr is empty or unreachable.
func ConnectOrFallback(ctx context.Context, addr string, logger *slog.Logger) (*redis.Client, func()) {
	if logger == nil {
		logger = slog.Default()
	}
	if strings.TrimSpace(addr) == "" {
		logger.Info("REDIS_ADDR not set, idempotency records kept in memory")
		return nil, func() {}
	}
	rdb := redis.NewClient(&redis.Options{
		Addr:         addr,
		DialTimeout:  2 * time.Second,
		ReadTimeout:  2 * time.Second,
		WriteTimeout: 2 * time.Second,
	})
	pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		logger.Warn("failed to reach redis, idempotency records kept in memory", slog.String("error", err.Error()))
		_ = rdb.Close()
		return nil, func() {}
	}
	logger.Info("redis connection established", slog.String("addr", addr))
	return rdb, func() { _ = rdb.Close() }
}
