package middleware

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/chrispoponi/contractflowai-web-sub001/config"
	"github.com/chrispoponi/contractflowai-web-sub001/pkg/logger"
)

// RateLimiter is a fixed-window counter keyed by caller. Every parse call
// fans out to paid extraction services, so callers are capped per window.
type RateLimiter struct {
	mu        sync.Mutex
	counts    map[string]int
	lastReset time.Time
	rate      int
	window    time.Duration
	now       func() time.Time
}

func NewRateLimiter(rate int, window time.Duration) *RateLimiter {
	return &RateLimiter{
		counts:    make(map[string]int),
		lastReset: time.Now(),
		rate:      rate,
		window:    window,
		now:       time.Now,
	}
}

// Allow records one request for key and reports whether it is within limits.
func (l *RateLimiter) Allow(key string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.now().Sub(l.lastReset) > l.window {
		l.counts = make(map[string]int)
		l.lastReset = l.now()
	}

	if l.counts[key] >= l.rate {
		return false
	}
	l.counts[key]++
	return true
}

// RateLimit limits requests per authenticated user, falling back to the
// client IP when auth is disabled. A non-positive rate disables limiting.
func RateLimit(cfg *config.RateLimitConfig) gin.HandlerFunc {
	if cfg.Requests <= 0 {
		return func(c *gin.Context) { c.Next() }
	}
	limiter := NewRateLimiter(cfg.Requests, cfg.Window)

	return func(c *gin.Context) {
		key := GetUserID(c)
		if key == "" {
			key = "ip:" + c.ClientIP()
		}

		if !limiter.Allow(key) {
			logger.Warn(c.Request.Context(), "rate limit exceeded",
				"key", key,
				"path", c.Request.URL.Path,
			)
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"error": "Rate limit exceeded. Please try again later.",
			})
			return
		}

		c.Next()
	}
}
