// middleware/rate_limiter.go
package middleware

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

// RateLimitConfig defines one endpoint's limit.
type RateLimitConfig struct {
	MaxRequests int
	Window      time.Duration
	KeyPrefix   string
}

// Limits for the authentication surface. Login and OTP verification are the
// brute-force targets; everything else rides on the global safeguard.
var (
	LoginLimit = RateLimitConfig{
		MaxRequests: 10,
		Window:      15 * time.Minute,
		KeyPrefix:   "ratelimit:login",
	}
	VerifyLimit = RateLimitConfig{
		MaxRequests: 5,
		Window:      10 * time.Minute,
		KeyPrefix:   "ratelimit:verify",
	}
	GlobalIPLimit = RateLimitConfig{
		MaxRequests: 300,
		Window:      time.Minute,
		KeyPrefix:   "ratelimit:global",
	}
)

type RateLimiter struct {
	rdb *redis.Client
}

func NewRateLimiter(rdb *redis.Client) *RateLimiter {
	return &RateLimiter{rdb: rdb}
}

// slidingWindow keeps a sorted set of request timestamps per key; the Lua
// script trims, counts and inserts atomically.
func (l *RateLimiter) slidingWindow(ctx context.Context, key string, cfg RateLimitConfig) (bool, int, error) {
	now := time.Now().Unix()
	windowStart := now - int64(cfg.Window.Seconds())

	luaScript := `
	local key = KEYS[1]
	local now = tonumber(ARGV[1])
	local window_start = tonumber(ARGV[2])
	local max_requests = tonumber(ARGV[3])
	local window_seconds = tonumber(ARGV[4])

	redis.call('ZREMRANGEBYSCORE', key, 0, window_start)

	local current = redis.call('ZCARD', key)
	if current >= max_requests then
		return {0, 0}
	end

	redis.call('ZADD', key, now, now .. '-' .. redis.call('INCR', key .. ':seq'))
	redis.call('EXPIRE', key, window_seconds + 60)
	redis.call('EXPIRE', key .. ':seq', window_seconds + 60)

	local remaining = max_requests - current - 1
	if remaining < 0 then remaining = 0 end

	return {1, remaining}
	`

	result, err := l.rdb.Eval(ctx, luaScript, []string{key},
		now, windowStart, cfg.MaxRequests, int(cfg.Window.Seconds())).Result()
	if err != nil {
		return false, 0, err
	}

	results := result.([]interface{})
	allowed := results[0].(int64) == 1
	remaining := int(results[1].(int64))
	return allowed, remaining, nil
}

// fixedWindow is the cheaper counter used for the global per-IP safeguard.
func (l *RateLimiter) fixedWindow(ctx context.Context, key string, cfg RateLimitConfig) (bool, int, error) {
	luaScript := `
	local key = KEYS[1]
	local expiry = tonumber(ARGV[1])
	local limit = tonumber(ARGV[2])

	local current = redis.call('GET', key)
	if current == false then
		redis.call('SET', key, 1, 'EX', expiry)
		return {1, limit - 1}
	end

	local count = tonumber(current)
	if count >= limit then
		return {0, 0}
	end

	local new_count = redis.call('INCR', key)
	return {1, limit - new_count}
	`

	result, err := l.rdb.Eval(ctx, luaScript, []string{key},
		int(cfg.Window.Seconds()), cfg.MaxRequests).Result()
	if err != nil {
		return false, 0, err
	}

	results := result.([]interface{})
	allowed := results[0].(int64) == 1
	remaining := int(results[1].(int64))
	return allowed, remaining, nil
}

// Limit applies a per-IP sliding window to one endpoint. Redis outages fail
// open: losing rate limiting is better than losing login.
func (l *RateLimiter) Limit(cfg RateLimitConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		if l == nil || l.rdb == nil {
			c.Next()
			return
		}

		key := fmt.Sprintf("%s:ip:%s", cfg.KeyPrefix, c.ClientIP())
		allowed, remaining, err := l.slidingWindow(c.Request.Context(), key, cfg)
		if err != nil {
			c.Next()
			return
		}

		c.Header("X-RateLimit-Limit", fmt.Sprintf("%d", cfg.MaxRequests))
		c.Header("X-RateLimit-Remaining", fmt.Sprintf("%d", remaining))

		if !allowed {
			c.Header("X-RateLimit-Reset", fmt.Sprintf("%d", time.Now().Add(cfg.Window).Unix()))
			c.JSON(http.StatusTooManyRequests, gin.H{
				"message":     fmt.Sprintf("Too many requests, please try again in %v", cfg.Window),
				"code":        "RATE_LIMIT_EXCEEDED",
				"retry_after": int(cfg.Window.Seconds()),
			})
			c.Abort()
			return
		}

		c.Next()
	}
}

// GlobalLimit is the coarse per-IP ceiling applied in front of every route.
func (l *RateLimiter) GlobalLimit() gin.HandlerFunc {
	return func(c *gin.Context) {
		if l == nil || l.rdb == nil || c.Request.URL.Path == "/ping" {
			c.Next()
			return
		}

		key := fmt.Sprintf("%s:ip:%s", GlobalIPLimit.KeyPrefix, c.ClientIP())
		allowed, _, err := l.fixedWindow(c.Request.Context(), key, GlobalIPLimit)
		if err != nil {
			c.Next()
			return
		}

		if !allowed {
			c.JSON(http.StatusTooManyRequests, gin.H{
				"message": "Global rate limit exceeded",
				"code":    "RATE_LIMIT_GLOBAL_IP",
			})
			c.Abort()
			return
		}

		c.Next()
	}
}
