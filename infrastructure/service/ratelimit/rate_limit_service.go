package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"

	"github.com/fixora/oauth-service/infrastructure/service/logger"
)

// Decision is the outcome of a single rate limit check.
type Decision struct {
	Allowed    bool
	Count      int64
	Limit      int
	RetryAfter time.Duration
}

// RateLimitService counts attempts per key inside a fixed window.
type RateLimitService interface {
	Allow(ctx context.Context, key string) (Decision, error)
	Reset(ctx context.Context, key string) error
}

type RateLimitConfig struct {
	Enabled   bool
	KeyPrefix string
	Attempts  int
	Window    time.Duration
}

const defaultKeyPrefix = "oauth:ratelimit:"

type rateLimitService struct {
	client    redis.Cmdable
	keyPrefix string
	limit     int
	window    time.Duration
	logger    logger.Logger
}

// NewRateLimitService returns a Redis-backed limiter, or a no-op one when disabled.
func NewRateLimitService(client redis.Cmdable, config RateLimitConfig, log logger.Logger) RateLimitService {
	if log == nil {
		log = logger.NewNopLogger()
	}
	if !config.Enabled || client == nil {
		log.Info(context.Background(), "Rate limiting disabled", nil)
		return noopRateLimitService{}
	}
	if config.KeyPrefix == "" {
		config.KeyPrefix = defaultKeyPrefix
	}
	if config.Attempts <= 0 {
		config.Attempts = 20
	}
	if config.Window <= 0 {
		config.Window = 15 * time.Minute
	}

	log.Info(context.Background(), "Rate limiting service initialized", map[string]interface{}{
		"attempts": config.Attempts,
		"window":   config.Window.String(),
	})

	return &rateLimitService{
		client:    client,
		keyPrefix: config.KeyPrefix,
		limit:     config.Attempts,
		window:    config.Window,
		logger:    log,
	}
}

func (s *rateLimitService) Allow(ctx context.Context, key string) (Decision, error) {
	redisKey := s.keyPrefix + key

	pipe := s.client.TxPipeline()
	incr := pipe.Incr(ctx, redisKey)
	ttl := pipe.PTTL(ctx, redisKey)
	if _, err := pipe.Exec(ctx); err != nil {
		return Decision{Allowed: true, Limit: s.limit}, fmt.Errorf("failed to increment rate limit: %w", err)
	}

	// the window starts with the first hit; later hits must not extend it
	retryAfter := ttl.Val()
	if retryAfter < 0 {
		if err := s.client.PExpire(ctx, redisKey, s.window).Err(); err != nil {
			return Decision{Allowed: true, Limit: s.limit}, fmt.Errorf("failed to set rate limit window: %w", err)
		}
		retryAfter = s.window
	}

	count := incr.Val()
	decision := Decision{
		Allowed: count <= int64(s.limit),
		Count:   count,
		Limit:   s.limit,
	}
	if !decision.Allowed {
		decision.RetryAfter = retryAfter
	}

	s.logger.Debug(ctx, "Rate limit check", map[string]interface{}{
		"key":     key,
		"count":   count,
		"limit":   s.limit,
		"allowed": decision.Allowed,
	})

	return decision, nil
}

func (s *rateLimitService) Reset(ctx context.Context, key string) error {
	if err := s.client.Del(ctx, s.keyPrefix+key).Err(); err != nil {
		return fmt.Errorf("failed to reset rate limit: %w", err)
	}
	return nil
}

type noopRateLimitService struct{}

func (noopRateLimitService) Allow(ctx context.Context, key string) (Decision, error) {
	return Decision{Allowed: true}, nil
}

func (noopRateLimitService) Reset(ctx context.Context, key string) error {
	return nil
}
