// Package ratelimit provides a fixed-window counter on Redis, used to cap
// OTP issuance per email. When Redis is not configured the Noop limiter is
// used and everything is allowed.
package ratelimit

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// Limiter answers whether one more event is allowed for the given key.
type Limiter interface {
	Allow(ctx context.Context, key string) (bool, error)
}

// Noop allows everything.
type Noop struct{}

func (Noop) Allow(ctx context.Context, key string) (bool, error) { return true, nil }

// Redis counts events per key in a fixed window.
type Redis struct {
	rdb    *redis.Client
	limit  int64
	window time.Duration
	prefix string
}

func NewRedis(rdb *redis.Client, limit int, window time.Duration) *Redis {
	return &Redis{rdb: rdb, limit: int64(limit), window: window, prefix: "otp:rl:"}
}

func (l *Redis) Allow(ctx context.Context, key string) (bool, error) {
	k := l.prefix + key
	n, err := l.rdb.Incr(ctx, k).Result()
	if err != nil {
		return false, err
	}
	if n == 1 {
		// First hit opens the window.
		if err := l.rdb.Expire(ctx, k, l.window).Err(); err != nil {
			return false, err
		}
	}
	return n <= l.limit, nil
}
