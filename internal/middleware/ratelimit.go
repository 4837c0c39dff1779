package middleware

import (
	"math"
	"strconv"
	"sync"
	"time"

	"github.com/cradlehq/backend/internal/apierror"
	"github.com/cradlehq/backend/internal/logger"
	"github.com/gin-gonic/gin"
)

// KeyFunc picks the budget a request draws from
type KeyFunc func(c *gin.Context) string

// ClientIPKey gives every client address its own budget
func ClientIPKey(c *gin.Context) string {
	return c.ClientIP()
}

// ChildKey gives every (user, child) pair its own budget, so one family
// regenerating a checklist cannot starve another behind the same NAT.
// Unauthenticated requests fall back to the client address.
func ChildKey(c *gin.Context) string {
	userID := c.GetString("user_id")
	if userID == "" {
		return "ip:" + c.ClientIP()
	}
	return "child:" + userID + "/" + c.Param("child_id")
}

// RateLimiter counts requests per key in fixed windows
type RateLimiter struct {
	requests map[string]*bucket
	mu       sync.Mutex
	rate     int           // requests per window
	window   time.Duration // time window
	name     string        // identifier for logging
	key      KeyFunc
	now      func() time.Time
}

type bucket struct {
	count       int
	windowStart time.Time
}

// NewRateLimiter creates a limiter allowing rate requests per window for
// each key. name identifies the limiter in logs ("general", "generate").
func NewRateLimiter(rate int, window time.Duration, name string, key KeyFunc) *RateLimiter {
	rl := &RateLimiter{
		requests: make(map[string]*bucket),
		rate:     rate,
		window:   window,
		name:     name,
		key:      key,
		now:      time.Now,
	}

	go rl.cleanup()

	logger.Default().Debug("rate limiter initialized",
		logger.String("name", name),
		logger.Int("rate", rate),
		logger.Duration("window", window),
	)

	return rl
}

// cleanup drops buckets whose window ended at least one window ago
func (rl *RateLimiter) cleanup() {
	ticker := time.NewTicker(rl.window * 2)
	defer ticker.Stop()

	for range ticker.C {
		cleaned, remaining := rl.sweep()
		if cleaned > 0 {
			logger.Default().Debug("rate limiter cleanup completed",
				logger.String("name", rl.name),
				logger.Int("cleaned", cleaned),
				logger.Int("remaining", remaining),
			)
		}
	}
}

func (rl *RateLimiter) sweep() (cleaned, remaining int) {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	for key, b := range rl.requests {
		if now.Sub(b.windowStart) >= rl.window*2 {
			delete(rl.requests, key)
			cleaned++
		}
	}
	return cleaned, len(rl.requests)
}

// allow records a request against key. It reports whether the request fits
// the budget, the count in the current window and how long until it resets.
func (rl *RateLimiter) allow(key string) (bool, int, time.Duration) {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	b, ok := rl.requests[key]
	if !ok || now.Sub(b.windowStart) >= rl.window {
		b = &bucket{windowStart: now}
		rl.requests[key] = b
	}
	b.count++

	return b.count <= rl.rate, b.count, b.windowStart.Add(rl.window).Sub(now)
}

// RateLimit allows 300 requests per minute per client address
func RateLimit() gin.HandlerFunc {
	return rateLimitMiddleware(NewRateLimiter(300, time.Minute, "general", ClientIPKey))
}

// RateLimitGenerate limits checklist generation, which rewrites a full
// timeline and fans out reminders, to 10 calls per minute per child.
// It must run after Auth.
func RateLimitGenerate() gin.HandlerFunc {
	return rateLimitMiddleware(NewRateLimiter(10, time.Minute, "generate", ChildKey))
}

func rateLimitMiddleware(limiter *RateLimiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := limiter.key(c)

		allowed, count, resetIn := limiter.allow(key)
		c.Header("X-RateLimit-Limit", strconv.Itoa(limiter.rate))
		if !allowed {
			logger.Ctx(c.Request.Context()).Warn("rate limit exceeded",
				logger.String("limiter", limiter.name),
				logger.String("key", key),
				logger.Int("request_count", count),
				logger.Int("limit", limiter.rate),
				logger.Duration("reset_in", resetIn),
			)

			retryAfter := int(math.Ceil(resetIn.Seconds()))
			if retryAfter < 1 {
				retryAfter = 1
			}
			c.Header("X-RateLimit-Remaining", "0")
			apierror.WriteProblem(c, apierror.NewRateLimitError(apierror.GetRequestID(c), retryAfter))
			c.Abort()
			return
		}

		c.Header("X-RateLimit-Remaining", strconv.Itoa(limiter.rate-count))
		c.Next()
	}
}
