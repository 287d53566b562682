package ratelimit

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	redis "github.com/redis/go-redis/v9"
	"github.com/smallbiznis/birracraft/internal/config"
	"go.uber.org/zap"
)

var ErrRateLimited = errors.New("rate_limited")

const keyAuthEndpoint = "ratelimit:auth:%s:%s"

// AuthLimiter throttles the unauthenticated auth endpoints per client IP.
type AuthLimiter struct {
	bucket *TokenBucket
	rate   float64
	burst  int
	log    *zap.Logger
}

func NewAuthLimiter(cfg config.Config, client *redis.Client, log *zap.Logger) *AuthLimiter {
	perMinute := cfg.Auth.RateLimit
	if client == nil || perMinute <= 0 {
		return &AuthLimiter{log: log}
	}
	return &AuthLimiter{
		bucket: NewTokenBucket(client),
		rate:   float64(perMinute) / 60,
		burst:  perMinute,
		log:    log.Named("ratelimit.auth"),
	}
}

func (l *AuthLimiter) Enabled() bool {
	return l != nil && l.bucket != nil
}

// Allow consumes one token for the scope/client pair. Redis failures let the
// request through.
func (l *AuthLimiter) Allow(ctx context.Context, scope, clientIP string) (time.Duration, error) {
	if !l.Enabled() {
		return 0, nil
	}
	key := fmt.Sprintf(keyAuthEndpoint, strings.TrimSpace(scope), strings.TrimSpace(clientIP))
	res, err := l.bucket.Allow(ctx, key, l.rate, l.burst)
	if err != nil {
		l.log.Warn("rate limit check failed", zap.String("key", key), zap.Error(err))
		return 0, nil
	}
	if !res.Allowed {
		return res.RetryAfter, ErrRateLimited
	}
	return 0, nil
}
