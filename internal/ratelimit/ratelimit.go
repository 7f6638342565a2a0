package ratelimit

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

var ErrTooManyAttempts = errors.New("too many attempts, try again later")

// RateLimiter keeps per-key attempt counters in Redis.
type RateLimiter struct {
	redis *redis.Client
}

func NewRateLimiter(redis *redis.Client) *RateLimiter {
	return &RateLimiter{redis: redis}
}

func (r *RateLimiter) CheckLogin(ctx context.Context, email string) error {
	return r.check(ctx, fmt.Sprintf("login_attempts:%s", email), 5, 15*time.Minute)
}

func (r *RateLimiter) CheckRegister(ctx context.Context, email string) error {
	return r.check(ctx, fmt.Sprintf("register_attempts:%s", email), 3, time.Hour)
}

// CheckChat throttles assistant requests per player, since each one costs a
// model call.
func (r *RateLimiter) CheckChat(ctx context.Context, playerID string) error {
	return r.check(ctx, fmt.Sprintf("chat_attempts:%s", playerID), 30, time.Minute)
}

func (r *RateLimiter) ResetAttempts(ctx context.Context, email, operation string) error {
	key := fmt.Sprintf("%s_attempts:%s", operation, email)
	return r.redis.Del(ctx, key).Err()
}

func (r *RateLimiter) check(ctx context.Context, key string, limit int64, window time.Duration) error {
	count, err := r.redis.Incr(ctx, key).Result()
	if err != nil {
		return err
	}

	if count == 1 {
		r.redis.Expire(ctx, key, window)
	}

	if count > limit {
		return ErrTooManyAttempts
	}

	return nil
}
