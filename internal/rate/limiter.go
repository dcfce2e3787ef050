package rate

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Config holds rate limiter tuning parameters.
type Config struct {
	// MaxRequests per Window per client. Zero disables the limiter.
	MaxRequests int
	Window      time.Duration
	// KeyPrefix overrides the default "pr:" prefix.
	KeyPrefix string
}

// Validate checks the limiter parameters.
func (c Config) Validate() error {
	if c.MaxRequests < 0 {
		return errors.New("rate MaxRequests must be >= 0")
	}
	if c.MaxRequests > 0 && c.Window <= 0 {
		return errors.New("rate Window must be > 0")
	}
	return nil
}

// Limiter enforces per-client request budgets using Redis counters.
type Limiter struct {
	redis  redis.UniversalClient
	config Config
}

// New creates a rate [Limiter] backed by the given Redis client.
func New(redisClient redis.UniversalClient, cfg Config) *Limiter {
	return &Limiter{
		redis:  redisClient,
		config: cfg,
	}
}

// Enabled reports whether Allow can ever reject.
func (l *Limiter) Enabled() bool {
	return l != nil && l.redis != nil && l.config.MaxRequests > 0
}

// Allow counts one request for client and returns ErrRateLimited once the
// window budget is spent.
func (l *Limiter) Allow(ctx context.Context, client string) error {
	if !l.Enabled() {
		return nil
	}

	count, err := l.incrementWithTTL(ctx, clientKey(l.config.KeyPrefix, client), l.config.Window)
	if err != nil {
		return err
	}
	if count > int64(l.config.MaxRequests) {
		return ErrRateLimited
	}

	return nil
}

// Remaining returns how many requests client has left in the current window.
// Missing keys mean a full budget.
func (l *Limiter) Remaining(ctx context.Context, client string) (int, error) {
	if !l.Enabled() {
		return 0, nil
	}

	count, err := l.redis.Get(ctx, clientKey(l.config.KeyPrefix, client)).Int64()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return l.config.MaxRequests, nil
		}
		return 0, fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}

	left := int64(l.config.MaxRequests) - count
	if left < 0 {
		return 0, nil
	}
	return int(left), nil
}

// Reset clears client's counter.
func (l *Limiter) Reset(ctx context.Context, client string) error {
	if l == nil || l.redis == nil {
		return nil
	}
	if err := l.redis.Del(ctx, clientKey(l.config.KeyPrefix, client)).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}
	return nil
}

func (l *Limiter) incrementWithTTL(ctx context.Context, key string, ttl time.Duration) (int64, error) {
	count, err := l.redis.Incr(ctx, key).Result()
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}

	// Fixed-window semantics: set TTL only for the first hit in the window.
	if count == 1 {
		if err := l.redis.Expire(ctx, key, ttl).Err(); err != nil {
			return 0, fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
		}
	}

	return count, nil
}
