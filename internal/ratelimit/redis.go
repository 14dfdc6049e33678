// Package ratelimit throttles page renders per client with a redis counter.
package ratelimit

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-redis/redis/v8"
)

const defaultWindow = 60 * time.Second

type Limiter struct {
	rdb         *redis.Client
	maxRequests int
	window      time.Duration
}

func NewLimiter(addr string, maxRequests int) (*Limiter, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr: addr,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if _, err := rdb.Ping(ctx).Result(); err != nil {
		rdb.Close()
		return nil, err
	}

	return &Limiter{rdb: rdb, maxRequests: maxRequests, window: defaultWindow}, nil
}

// IsRateLimited counts one request for key in the current window. Redis
// failures let the request through.
func (l *Limiter) IsRateLimited(ctx context.Context, key string) bool {
	if l.maxRequests <= 0 {
		return false
	}
	redisKey := fmt.Sprintf("ratelimit:deals:%s", key)

	pipe := l.rdb.Pipeline()
	incr := pipe.Incr(ctx, redisKey)
	pipe.Expire(ctx, redisKey, l.window)
	_, err := pipe.Exec(ctx)

	if err != nil {
		slog.Warn("Rate limiter unavailable", "error", err)
		return false
	}

	return incr.Val() > int64(l.maxRequests)
}

func (l *Limiter) Close() error {
	return l.rdb.Close()
}
