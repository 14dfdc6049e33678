package ratelimit

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/require"
)

func TestLimiter_AllowsUpToLimit(t *testing.T) {
	mr := miniredis.RunT(t)
	limiter, err := NewLimiter(mr.Addr(), 2)
	require.NoError(t, err)
	t.Cleanup(func() { limiter.Close() })

	ctx := context.Background()
	require.False(t, limiter.IsRateLimited(ctx, "10.0.0.1"))
	require.False(t, limiter.IsRateLimited(ctx, "10.0.0.1"))
	require.True(t, limiter.IsRateLimited(ctx, "10.0.0.1"))

	require.False(t, limiter.IsRateLimited(ctx, "10.0.0.2"))
}

func TestLimiter_WindowExpires(t *testing.T) {
	mr := miniredis.RunT(t)
	limiter, err := NewLimiter(mr.Addr(), 1)
	require.NoError(t, err)
	t.Cleanup(func() { limiter.Close() })

	ctx := context.Background()
	require.False(t, limiter.IsRateLimited(ctx, "ip"))
	require.True(t, limiter.IsRateLimited(ctx, "ip"))

	mr.FastForward(2 * time.Minute)
	require.False(t, limiter.IsRateLimited(ctx, "ip"))
}

func TestLimiter_FailsOpen(t *testing.T) {
	mr := miniredis.RunT(t)
	limiter, err := NewLimiter(mr.Addr(), 1)
	require.NoError(t, err)
	t.Cleanup(func() { limiter.Close() })

	mr.Close()
	require.False(t, limiter.IsRateLimited(context.Background(), "ip"))
	require.False(t, limiter.IsRateLimited(context.Background(), "ip"))
}

func TestLimiter_ZeroLimitDisables(t *testing.T) {
	mr := miniredis.RunT(t)
	limiter, err := NewLimiter(mr.Addr(), 0)
	require.NoError(t, err)
	t.Cleanup(func() { limiter.Close() })

	for i := 0; i < 5; i++ {
		require.False(t, limiter.IsRateLimited(context.Background(), "ip"))
	}
}

func TestNewLimiter_Unreachable(t *testing.T) {
	_, err := NewLimiter("127.0.0.1:1", 10)
	require.Error(t, err)
}
