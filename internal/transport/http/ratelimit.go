package http

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
)

// rateLimiter counts requests per client key inside a fixed one-minute
// window. Used on the auth endpoints to slow down credential stuffing and
// OTP guessing.
type rateLimiter struct {
	mu       sync.Mutex
	limit    int
	counters map[string]int
	window   time.Time
}

func newRateLimiter(limit int) *rateLimiter {
	return &rateLimiter{
		limit:    limit,
		counters: make(map[string]int),
		window:   time.Now(),
	}
}

func (r *rateLimiter) allow(key string) bool {
	if r == nil || r.limit <= 0 {
		return true
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now()
	if now.Sub(r.window) >= time.Minute {
		r.counters = make(map[string]int)
		r.window = now
	}

	r.counters[key]++
	return r.counters[key] <= r.limit
}

// RateLimitMiddleware rejects clients that exceed the per-minute limit.
func RateLimitMiddleware(limit int) gin.HandlerFunc {
	limiter := newRateLimiter(limit)
	return func(c *gin.Context) {
		if !limiter.allow(c.ClientIP()) {
			c.JSON(http.StatusTooManyRequests, ErrorResponse{Error: "too many requests"})
			c.Abort()
			return
		}
		c.Next()
	}
}
