package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"loan-service/internal/logger"
)

const pingTimeout = 5 * time.Second

// OpenRedis connects to the idempotency store and fails fast when it is unreachable.
func OpenRedis(addr string, db int) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{Addr: addr, DB: db})

	ctx, cancel := context.WithTimeout(context.Background(), pingTimeout)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping %s: %w", addr, err)
	}
	logger.Info("Idempotency store connected", "addr", addr, "db", db)
	return rdb, nil
}
