package ratelimit

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

func newTestLimiter(t *testing.T, limit int, window time.Duration) (*Redis, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return NewRedis(rdb, limit, window), mr
}

func TestAllowUpToLimitThenBlock(t *testing.T) {
	l, _ := newTestLimiter(t, 3, time.Minute)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		ok, err := l.Allow(ctx, "signup:a@example.com")
		require.NoError(t, err)
		require.True(t, ok, "attempt %d should be allowed", i+1)
	}
	ok, err := l.Allow(ctx, "signup:a@example.com")
	require.NoError(t, err)
	require.False(t, ok)
}

func TestKeysAreIndependent(t *testing.T) {
	l, _ := newTestLimiter(t, 1, time.Minute)
	ctx := context.Background()

	ok, err := l.Allow(ctx, "signup:a@example.com")
	require.NoError(t, err)
	require.True(t, ok)

	ok, err = l.Allow(ctx, "signup:b@example.com")
	require.NoError(t, err)
	require.True(t, ok)

	ok, err = l.Allow(ctx, "reset:a@example.com")
	require.NoError(t, err)
	require.True(t, ok)
}

func TestWindowExpiryResetsCounter(t *testing.T) {
	l, mr := newTestLimiter(t, 1, time.Minute)
	ctx := context.Background()

	ok, err := l.Allow(ctx, "signup:a@example.com")
	require.NoError(t, err)
	require.True(t, ok)

	ok, err = l.Allow(ctx, "signup:a@example.com")
	require.NoError(t, err)
	require.False(t, ok)

	mr.FastForward(2 * time.Minute)

	ok, err = l.Allow(ctx, "signup:a@example.com")
	require.NoError(t, err)
	require.True(t, ok)
}

func TestNoopAllowsEverything(t *testing.T) {
	var l Limiter = Noop{}
	for i := 0; i < 100; i++ {
		ok, err := l.Allow(context.Background(), "anything")
		require.NoError(t, err)
		require.True(t, ok)
	}
}
