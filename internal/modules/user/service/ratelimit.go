package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"anoa.com/rickmortyapi/pkg/logger"
	"github.com/redis/go-redis/v9"
)

// LoginLimiter counts failed logins per email in Redis. A nil client
// disables it.
type LoginLimiter struct {
	rdb         *redis.Client
	maxAttempts int
	window      time.Duration
}

func NewLoginLimiter(rdb *redis.Client, maxAttempts int, window time.Duration) *LoginLimiter {
	return &LoginLimiter{rdb: rdb, maxAttempts: maxAttempts, window: window}
}

func loginAttemptsKey(email string) string {
	return fmt.Sprintf("rate_limit:login:%s", strings.ToLower(email))
}

func (l *LoginLimiter) enabled() bool {
	return l != nil && l.rdb != nil && l.maxAttempts > 0
}

// Allow reports whether another attempt is permitted and, if not, how long
// the lockout still lasts. Redis failures let the attempt through.
func (l *LoginLimiter) Allow(ctx context.Context, email string) (bool, time.Duration) {
	if !l.enabled() {
		return true, 0
	}

	key := loginAttemptsKey(email)
	attempts, err := l.rdb.Get(ctx, key).Int()
	if err == redis.Nil {
		return true, 0
	}
	if err != nil {
		logger.Ctx(ctx).Warn().Err(err).Msg("login limiter unavailable")
		return true, 0
	}
	if attempts < l.maxAttempts {
		return true, 0
	}

	ttl, err := l.rdb.TTL(ctx, key).Result()
	if err != nil || ttl < 0 {
		ttl = l.window
	}
	return false, ttl
}

func (l *LoginLimiter) RegisterFailure(ctx context.Context, email string) {
	if !l.enabled() {
		return
	}

	key := loginAttemptsKey(email)
	attempts, err := l.rdb.Incr(ctx, key).Result()
	if err != nil {
		logger.Ctx(ctx).Warn().Err(err).Msg("failed to record login failure")
		return
	}
	if attempts == 1 {
		if err := l.rdb.Expire(ctx, key, l.window).Err(); err != nil {
			logger.Ctx(ctx).Warn().Err(err).Msg("failed to set login lockout window")
		}
	}
}

func (l *LoginLimiter) Reset(ctx context.Context, email string) {
	if !l.enabled() {
		return
	}
	if err := l.rdb.Del(ctx, loginAttemptsKey(email)).Err(); err != nil {
		logger.Ctx(ctx).Warn().Err(err).Msg("failed to clear login attempts")
	}
}
