package middleware

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"golang.org/x/time/rate"
)

// RateLimiter implements rate limiting for API endpoints
type RateLimiter struct {
	ipLimiters       map[string]*rate.Limiter
	writeLimiters    map[string]*rate.Limiter
	ipMutex          sync.RWMutex
	writeMutex       sync.RWMutex
	ipLimiterRate    rate.Limit
	writeLimiterRate rate.Limit
	ipBurst          int
	writeBurst       int
	cleanupTicker    *time.Ticker
}

// NewRateLimiter creates a new rate limiter. Write limits apply per
// authenticated user to submission create and resubmit endpoints.
func NewRateLimiter(ipRequestsPerSecond, writeRequestsPerMinute float64, ipBurst, writeBurst int) *RateLimiter {
	limiter := &RateLimiter{
		ipLimiters:       make(map[string]*rate.Limiter),
		writeLimiters:    make(map[string]*rate.Limiter),
		ipLimiterRate:    rate.Limit(ipRequestsPerSecond),
		writeLimiterRate: rate.Limit(writeRequestsPerMinute / 60),
		ipBurst:          ipBurst,
		writeBurst:       writeBurst,
		cleanupTicker:    time.NewTicker(5 * time.Minute),
	}

	go limiter.cleanup()

	return limiter
}

// cleanup periodically removes old limiters to prevent memory leaks
func (rl *RateLimiter) cleanup() {
	for range rl.cleanupTicker.C {
		rl.ipMutex.Lock()
		rl.ipLimiters = make(map[string]*rate.Limiter)
		rl.ipMutex.Unlock()

		rl.writeMutex.Lock()
		rl.writeLimiters = make(map[string]*rate.Limiter)
		rl.writeMutex.Unlock()
	}
}

// Stop stops the rate limiter cleanup
func (rl *RateLimiter) Stop() {
	rl.cleanupTicker.Stop()
}

func (rl *RateLimiter) getIPLimiter(ip string) *rate.Limiter {
	rl.ipMutex.RLock()
	limiter, exists := rl.ipLimiters[ip]
	rl.ipMutex.RUnlock()

	if !exists {
		rl.ipMutex.Lock()
		limiter = rate.NewLimiter(rl.ipLimiterRate, rl.ipBurst)
		rl.ipLimiters[ip] = limiter
		rl.ipMutex.Unlock()
	}

	return limiter
}

func (rl *RateLimiter) getWriteLimiter(key string) *rate.Limiter {
	rl.writeMutex.RLock()
	limiter, exists := rl.writeLimiters[key]
	rl.writeMutex.RUnlock()

	if !exists {
		rl.writeMutex.Lock()
		limiter = rate.NewLimiter(rl.writeLimiterRate, rl.writeBurst)
		rl.writeLimiters[key] = limiter
		rl.writeMutex.Unlock()
	}

	return limiter
}

// IPRateLimiterMiddleware limits requests based on IP address
func (rl *RateLimiter) IPRateLimiterMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		ip := c.ClientIP()
		limiter := rl.getIPLimiter(ip)

		if !limiter.Allow() {
			c.JSON(http.StatusTooManyRequests, gin.H{
				"error": "rate limit exceeded",
			})
			c.Abort()
			return
		}

		c.Next()
	}
}

// SubmissionWriteLimiterMiddleware limits submission writes per user so a
// single contributor cannot flood the review queue
func (rl *RateLimiter) SubmissionWriteLimiterMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		key := c.ClientIP()
		if userID, exists := c.Get("user_id"); exists {
			if id, ok := userID.(uuid.UUID); ok {
				key = id.String()
			}
		}

		limiter := rl.getWriteLimiter(key)
		if !limiter.Allow() {
			c.JSON(http.StatusTooManyRequests, gin.H{
				"error": "too many submissions, please try again later",
			})
			c.Abort()
			return
		}

		c.Next()
	}
}
