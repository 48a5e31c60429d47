package ratelimit

import (
	"context"
	"fmt"
	"strings"

	"github.com/printhaus/portal/internal/config"
)

const keyLogin = "auth:login:%s"

// LoginLimiter throttles credential checks per client IP. It is inert
// when Redis is not configured.
type LoginLimiter struct {
	bucket *TokenBucket
	holder *config.PortalConfigHolder
}

func NewLoginLimiter(bucket *TokenBucket, holder *config.PortalConfigHolder) *LoginLimiter {
	return &LoginLimiter{bucket: bucket, holder: holder}
}

func (l *LoginLimiter) Enabled() bool {
	return l != nil && l.bucket != nil
}

func (l *LoginLimiter) Allow(ctx context.Context, clientIP string) (*Result, error) {
	if !l.Enabled() {
		return &Result{Allowed: true}, nil
	}
	cfg := l.holder.Get()
	rate := cfg.LoginRatePerMinute / 60.0
	burst := cfg.LoginBurst
	if rate <= 0 || burst <= 0 {
		return &Result{Allowed: true}, nil
	}
	key := fmt.Sprintf(keyLogin, strings.TrimSpace(clientIP))
	return l.bucket.Allow(ctx, key, rate, burst)
}
