// Package ratelimiter counts failures per subject in redis windows. A nil
// client disables limiting entirely.
package ratelimiter

import (
	"context"
	"errors"
	"fmt"
	"time"

	"anoa.com/itemprofile/pkg/apperror"
	"github.com/redis/go-redis/v9"
)

// LimitError is returned when a key is still inside its cooldown window.
type LimitError struct {
	RetryAfter time.Duration
}

func (e *LimitError) Error() string {
	return fmt.Sprintf("too many attempts, retry in %s", e.RetryAfter.Round(time.Second))
}

func (e *LimitError) Unwrap() error {
	return apperror.ErrRateLimitExceeded
}

type Limiter struct {
	rdb    *redis.Client
	prefix string
}

func New(rdb *redis.Client, prefix string) *Limiter {
	return &Limiter{rdb: rdb, prefix: prefix}
}

func (l *Limiter) Enabled() bool {
	return l != nil && l.rdb != nil
}

func (l *Limiter) key(action, subject string) string {
	return fmt.Sprintf("%s:%s:%s", l.prefix, action, subject)
}

// Check returns a *LimitError with the remaining window once subject has
// accumulated limit failures for action. A limit of zero or less never blocks.
func (l *Limiter) Check(ctx context.Context, action, subject string, limit int64) error {
	if !l.Enabled() || limit <= 0 {
		return nil
	}

	key := l.key(action, subject)
	count, err := l.rdb.Get(ctx, key).Int64()
	if errors.Is(err, redis.Nil) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to check rate limit in redis: %w", err)
	}
	if count < limit {
		return nil
	}

	ttl, err := l.rdb.TTL(ctx, key).Result()
	if err != nil {
		return fmt.Errorf("failed to read rate limit ttl in redis: %w", err)
	}
	if ttl <= 0 {
		return nil
	}
	return &LimitError{RetryAfter: ttl}
}

// Fail records one failure for subject and returns the count inside the
// current window. The window starts at the first failure.
func (l *Limiter) Fail(ctx context.Context, action, subject string, window time.Duration) (int64, error) {
	if !l.Enabled() || window <= 0 {
		return 0, nil
	}

	key := l.key(action, subject)
	count, err := l.rdb.Incr(ctx, key).Result()
	if err != nil {
		return 0, fmt.Errorf("failed to count rate limit in redis: %w", err)
	}
	if count == 1 {
		if err := l.rdb.Expire(ctx, key, window).Err(); err != nil {
			return count, fmt.Errorf("failed to set rate limit window in redis: %w", err)
		}
	}
	return count, nil
}

func (l *Limiter) Clear(ctx context.Context, action, subject string) error {
	if !l.Enabled() {
		return nil
	}
	return l.rdb.Del(ctx, l.key(action, subject)).Err()
}
