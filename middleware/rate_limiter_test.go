package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newLimitedRouter(limiter *RateLimiter, cfg RateLimitConfig) *gin.Engine {
	r := gin.New()
	r.POST("/login", limiter.Limit(cfg), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"success": true})
	})
	return r
}

func hit(r *gin.Engine, path string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestLimitBlocksAfterMax(t *testing.T) {
	mr := miniredis.RunT(t)
	limiter := NewRateLimiter(redis.NewClient(&redis.Options{Addr: mr.Addr()}))

	cfg := RateLimitConfig{MaxRequests: 3, Window: time.Minute, KeyPrefix: "ratelimit:test"}
	router := newLimitedRouter(limiter, cfg)

	for i := 0; i < 3; i++ {
		w := hit(router, "/login")
		assert.Equal(t, http.StatusOK, w.Code, "request %d should pass", i+1)
	}

	w := hit(router, "/login")
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Contains(t, w.Body.String(), "RATE_LIMIT_EXCEEDED")
}

func TestLimitSetsHeaders(t *testing.T) {
	mr := miniredis.RunT(t)
	limiter := NewRateLimiter(redis.NewClient(&redis.Options{Addr: mr.Addr()}))

	cfg := RateLimitConfig{MaxRequests: 5, Window: time.Minute, KeyPrefix: "ratelimit:test"}
	router := newLimitedRouter(limiter, cfg)

	w := hit(router, "/login")
	assert.Equal(t, "5", w.Header().Get("X-RateLimit-Limit"))
	assert.Equal(t, "4", w.Header().Get("X-RateLimit-Remaining"))
}

func TestLimitFailsOpenWithoutRedis(t *testing.T) {
	// Nil client means rate limiting is off, not the login surface.
	router := newLimitedRouter(NewRateLimiter(nil), LoginLimit)

	for i := 0; i < 20; i++ {
		w := hit(router, "/login")
		assert.Equal(t, http.StatusOK, w.Code)
	}
}

func TestLimitFailsOpenOnRedisError(t *testing.T) {
	client := redis.NewClient(&redis.Options{Addr: "127.0.0.1:1"})
	client.Close()
	router := newLimitedRouter(NewRateLimiter(client), LoginLimit)

	w := hit(router, "/login")
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestFixedWindowBlocksAtLimit(t *testing.T) {
	mr := miniredis.RunT(t)
	limiter := NewRateLimiter(redis.NewClient(&redis.Options{Addr: mr.Addr()}))

	cfg := RateLimitConfig{MaxRequests: 3, Window: time.Minute, KeyPrefix: "ratelimit:test"}
	ctx := context.Background()
	key := "ratelimit:test:ip:1.2.3.4"

	for i := 1; i <= 3; i++ {
		allowed, remaining, err := limiter.fixedWindow(ctx, key, cfg)
		require.NoError(t, err)
		assert.True(t, allowed, "request %d within the limit must pass", i)
		assert.Equal(t, 3-i, remaining)
	}

	// Once the counter hits the limit every further request is denied, not
	// just the one that crossed it.
	for i := 4; i <= 6; i++ {
		allowed, remaining, err := limiter.fixedWindow(ctx, key, cfg)
		require.NoError(t, err)
		assert.False(t, allowed, "request %d past the limit must be blocked", i)
		assert.Zero(t, remaining)
	}
}

func TestGlobalLimitSkipsPing(t *testing.T) {
	mr := miniredis.RunT(t)
	limiter := NewRateLimiter(redis.NewClient(&redis.Options{Addr: mr.Addr()}))

	r := gin.New()
	r.Use(limiter.GlobalLimit())
	r.GET("/ping", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"message": "pong"}) })

	for i := 0; i < GlobalIPLimit.MaxRequests+10; i++ {
		req := httptest.NewRequest(http.MethodGet, "/ping", nil)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		assert.Equal(t, http.StatusOK, w.Code)
	}
}

func TestGlobalLimitBlocks(t *testing.T) {
	mr := miniredis.RunT(t)
	limiter := NewRateLimiter(redis.NewClient(&redis.Options{Addr: mr.Addr()}))

	r := gin.New()
	r.Use(limiter.GlobalLimit())
	r.GET("/data", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"success": true}) })

	var blocked bool
	for i := 0; i < GlobalIPLimit.MaxRequests+1; i++ {
		req := httptest.NewRequest(http.MethodGet, "/data", nil)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		if w.Code == http.StatusTooManyRequests {
			blocked = true
			break
		}
	}
	assert.True(t, blocked, "requests past the global ceiling must be rejected")
}
