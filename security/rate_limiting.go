package security

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/pocketbase/pocketbase/apis"
	"github.com/pocketbase/pocketbase/core"
	"github.com/redis/go-redis/v9"
)

type RateLimiter struct {
	redis *redis.Client
}

func NewRateLimiter(redisClient *redis.Client) *RateLimiter {
	return &RateLimiter{redis: redisClient}
}

// CheckoutGuard throttles checkout initiations. Checkout is the most
// expensive route (gateway round trip, long poll), so the budget is
// tight: a handful of attempts per minute per buyer.
func (r *RateLimiter) CheckoutGuard() func(*core.RequestEvent) error {
	return r.guard("ratelimit:checkout", 5, time.Minute)
}

// CartGuard throttles cart mutations more loosely.
func (r *RateLimiter) CartGuard() func(*core.RequestEvent) error {
	return r.guard("ratelimit:cart", 60, time.Minute)
}

func (r *RateLimiter) guard(prefix string, limit int64, window time.Duration) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		if !r.allow(fmt.Sprintf("%s:%s", prefix, identifier(e)), limit, window) {
			return apis.NewApiError(http.StatusTooManyRequests, "Rate limit exceeded. Please try again later.", nil)
		}
		return e.Next()
	}
}

// AntiBotGuard rejects obvious scraper user agents and caps per-IP
// request frequency.
func (r *RateLimiter) AntiBotGuard() func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		userAgent := e.Request.Header.Get("User-Agent")
		if isSuspiciousUserAgent(userAgent) {
			return apis.NewForbiddenError("Access denied", nil)
		}

		key := fmt.Sprintf("antibot:%s", e.RealIP())
		if !r.allow(key, 30, time.Minute) {
			return apis.NewApiError(http.StatusTooManyRequests, "Too many requests", nil)
		}
		return e.Next()
	}
}

// allow is a fixed-window counter. It fails open: a Redis outage must
// not block checkouts.
func (r *RateLimiter) allow(key string, limit int64, window time.Duration) bool {
	ctx := context.Background()

	count, err := r.redis.Incr(ctx, key).Result()
	if err != nil {
		return true
	}
	if count == 1 {
		r.redis.Expire(ctx, key, window)
	}
	return count <= limit
}

// identifier rate-limits authenticated buyers by account, anonymous
// ones by session header, and everyone else by IP.
func identifier(e *core.RequestEvent) string {
	if e.Auth != nil {
		return "user:" + e.Auth.Id
	}
	if sid := e.Request.Header.Get("X-Session-Id"); sid != "" {
		return "session:" + sid
	}
	return e.RealIP()
}

func isSuspiciousUserAgent(ua string) bool {
	suspicious := []string{"bot", "crawler", "spider", "scraper"}
	for _, pattern := range suspicious {
		if strings.Contains(strings.ToLower(ua), pattern) {
			return true
		}
	}
	return false
}
