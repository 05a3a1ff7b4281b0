package rediscache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/go-redis/redis/v8"

	"github.com/fixora/oauth-service/application/port/outbound"
)

const DefaultKeyPrefix = "oauth:refresh:"

// TokenCacheAdapter stores refresh token -> user id mappings with a TTL.
// Keys are derived from a SHA-256 of the token so raw tokens never reach Redis.
type TokenCacheAdapter struct {
	client    redis.Cmdable
	keyPrefix string
	timeout   time.Duration
}

func NewTokenCacheAdapter(client redis.Cmdable, keyPrefix string, timeout time.Duration) *TokenCacheAdapter {
	if keyPrefix == "" {
		keyPrefix = DefaultKeyPrefix
	}
	return &TokenCacheAdapter{
		client:    client,
		keyPrefix: keyPrefix,
		timeout:   timeout,
	}
}

var _ outbound.TokenCache = (*TokenCacheAdapter)(nil)

func (c *TokenCacheAdapter) Set(ctx context.Context, token string, userID int64, ttl time.Duration) error {
	if token == "" {
		return fmt.Errorf("token cannot be empty")
	}
	if ttl <= 0 {
		return fmt.Errorf("refresh token ttl must be positive, got %s", ttl)
	}

	ctx, cancel := c.withTimeout(ctx)
	defer cancel()

	if err := c.client.Set(ctx, c.key(token), strconv.FormatInt(userID, 10), ttl).Err(); err != nil {
		return fmt.Errorf("failed to store refresh token: %w", err)
	}
	return nil
}

func (c *TokenCacheAdapter) Get(ctx context.Context, token string) (int64, error) {
	if token == "" {
		return 0, outbound.ErrRefreshTokenNotFound
	}

	ctx, cancel := c.withTimeout(ctx)
	defer cancel()

	val, err := c.client.Get(ctx, c.key(token)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return 0, outbound.ErrRefreshTokenNotFound
		}
		return 0, fmt.Errorf("failed to get refresh token: %w", err)
	}

	userID, err := strconv.ParseInt(val, 10, 64)
	if err != nil {
		// an entry we did not write is as good as absent
		return 0, fmt.Errorf("%w: malformed user id %q", outbound.ErrRefreshTokenNotFound, val)
	}
	return userID, nil
}

func (c *TokenCacheAdapter) Delete(ctx context.Context, token string) (bool, error) {
	if token == "" {
		return false, nil
	}

	ctx, cancel := c.withTimeout(ctx)
	defer cancel()

	n, err := c.client.Del(ctx, c.key(token)).Result()
	if err != nil {
		return false, fmt.Errorf("failed to delete refresh token: %w", err)
	}
	return n > 0, nil
}

func (c *TokenCacheAdapter) key(token string) string {
	sum := sha256.Sum256([]byte(token))
	return c.keyPrefix + hex.EncodeToString(sum[:])
}

func (c *TokenCacheAdapter) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if c.timeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, c.timeout)
}
