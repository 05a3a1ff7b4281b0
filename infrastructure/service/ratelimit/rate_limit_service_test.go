package ratelimit

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newLimiter(t *testing.T, attempts int, window time.Duration) (RateLimitService, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	return NewRateLimitService(client, RateLimitConfig{Enabled: true, Attempts: attempts, Window: window}, nil), mr
}

func TestAllowWithinLimit(t *testing.T) {
	limiter, mr := newLimiter(t, 3, time.Minute)
	ctx := context.Background()

	for i := 1; i <= 3; i++ {
		d, err := limiter.Allow(ctx, "login:ip:10.0.0.1")
		require.NoError(t, err)
		assert.True(t, d.Allowed)
		assert.EqualValues(t, i, d.Count)
	}

	d, err := limiter.Allow(ctx, "login:ip:10.0.0.1")
	require.NoError(t, err)
	assert.False(t, d.Allowed)
	assert.Greater(t, d.RetryAfter, time.Duration(0))
	assert.LessOrEqual(t, d.RetryAfter, time.Minute)

	assert.True(t, mr.Exists(defaultKeyPrefix+"login:ip:10.0.0.1"))
}

func TestAllowKeysAreIndependent(t *testing.T) {
	limiter, _ := newLimiter(t, 1, time.Minute)
	ctx := context.Background()

	d, err := limiter.Allow(ctx, "login:ip:a")
	require.NoError(t, err)
	assert.True(t, d.Allowed)

	d, err = limiter.Allow(ctx, "login:ip:b")
	require.NoError(t, err)
	assert.True(t, d.Allowed)
}

func TestWindowExpiry(t *testing.T) {
	limiter, mr := newLimiter(t, 1, time.Minute)
	ctx := context.Background()

	_, err := limiter.Allow(ctx, "k")
	require.NoError(t, err)
	d, err := limiter.Allow(ctx, "k")
	require.NoError(t, err)
	assert.False(t, d.Allowed)

	mr.FastForward(time.Minute + time.Second)

	d, err = limiter.Allow(ctx, "k")
	require.NoError(t, err)
	assert.True(t, d.Allowed)
	assert.EqualValues(t, 1, d.Count)
}

func TestReset(t *testing.T) {
	limiter, _ := newLimiter(t, 1, time.Minute)
	ctx := context.Background()

	_, _ = limiter.Allow(ctx, "k")
	require.NoError(t, limiter.Reset(ctx, "k"))

	d, err := limiter.Allow(ctx, "k")
	require.NoError(t, err)
	assert.True(t, d.Allowed)
}

func TestAllowRedisDownFailsOpen(t *testing.T) {
	limiter, mr := newLimiter(t, 1, time.Minute)
	mr.Close()

	d, err := limiter.Allow(context.Background(), "k")
	assert.Error(t, err)
	assert.True(t, d.Allowed)
}

func TestDisabledLimiterAlwaysAllows(t *testing.T) {
	limiter := NewRateLimitService(nil, RateLimitConfig{Enabled: false}, nil)

	for i := 0; i < 100; i++ {
		d, err := limiter.Allow(context.Background(), "k")
		require.NoError(t, err)
		assert.True(t, d.Allowed)
	}
}
