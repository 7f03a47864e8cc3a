package ratelimit

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// DefaultWindow is the fixed window length
const DefaultWindow = time.Minute

// Counter increments the hit count of a key that expires after ttl
type Counter interface {
	Increment(ctx context.Context, key string, ttl time.Duration) (int64, error)
}

// RedisCounter implements Counter with INCR and EXPIRE in one transaction
type RedisCounter struct {
	client redis.Cmdable
}

// NewRedisCounter creates a counter backed by client
func NewRedisCounter(client redis.Cmdable) *RedisCounter {
	return &RedisCounter{client: client}
}

// Increment bumps key and refreshes its expiry
func (c *RedisCounter) Increment(ctx context.Context, key string, ttl time.Duration) (int64, error) {
	pipe := c.client.TxPipeline()
	incr := pipe.Incr(ctx, key)
	pipe.Expire(ctx, key, ttl)
	if _, err := pipe.Exec(ctx); err != nil {
		return 0, fmt.Errorf("failed to increment %s: %w", key, err)
	}
	return incr.Val(), nil
}

// Decision is the outcome of a rate limit check
type Decision struct {
	Allowed   bool
	Limit     int
	Remaining int
	ResetAt   time.Time
}

// RetryAfter returns how long the caller should wait before retrying
func (d *Decision) RetryAfter(now time.Time) time.Duration {
	if d.ResetAt.Before(now) {
		return 0
	}
	return d.ResetAt.Sub(now)
}

// Limiter enforces a per-subject request budget over fixed windows
type Limiter struct {
	counter Counter
	limit   int
	window  time.Duration
	prefix  string
	logger  *zap.Logger
	now     func() time.Time
}

// NewLimiter creates a limiter allowing limit requests per window
func NewLimiter(counter Counter, limit int, window time.Duration, logger *zap.Logger) *Limiter {
	if window <= 0 {
		window = DefaultWindow
	}
	return &Limiter{
		counter: counter,
		limit:   limit,
		window:  window,
		prefix:  "synapse:ratelimit:ai",
		logger:  logger,
		now:     time.Now,
	}
}

// Allow counts one request for subject. Counter failures fail open.
func (l *Limiter) Allow(ctx context.Context, subject string) *Decision {
	now := l.now()
	windowStart, resetAt := l.windowBounds(now)

	count, err := l.counter.Increment(ctx, l.buildKey(subject, windowStart), l.window)
	if err != nil {
		l.logger.Warn("rate limiter unavailable, allowing request",
			zap.String("subject", subject),
			zap.Error(err))
		return &Decision{Allowed: true, Limit: l.limit, Remaining: l.limit, ResetAt: resetAt}
	}

	remaining := l.limit - int(count)
	if remaining < 0 {
		remaining = 0
	}

	return &Decision{
		Allowed:   int(count) <= l.limit,
		Limit:     l.limit,
		Remaining: remaining,
		ResetAt:   resetAt,
	}
}

// windowBounds returns the start of the window containing now and when it resets
func (l *Limiter) windowBounds(now time.Time) (start time.Time, reset time.Time) {
	start = now.Truncate(l.window)
	return start, start.Add(l.window)
}

// buildKey builds the counter key for subject in the window starting at start
func (l *Limiter) buildKey(subject string, start time.Time) string {
	return l.prefix + ":" + subject + ":" + strconv.FormatInt(start.Unix(), 10)
}
