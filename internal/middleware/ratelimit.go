package middleware

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/yigit/deptportal/internal/app/models/dto"
	"golang.org/x/time/rate"
)

const limiterTTL = 15 * time.Minute

// RateLimiter keeps one token bucket per client IP
type RateLimiter struct {
	mu       sync.Mutex
	limiters map[string]*limiterEntry
	every    rate.Limit
	burst    int
	now      func() time.Time
}

type limiterEntry struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// NewRateLimiter allows perMinute requests per IP with the given burst.
// A non-positive perMinute disables limiting.
func NewRateLimiter(perMinute, burst int) *RateLimiter {
	if burst <= 0 {
		burst = 1
	}
	rl := &RateLimiter{
		limiters: make(map[string]*limiterEntry),
		burst:    burst,
		now:      time.Now,
	}
	if perMinute > 0 {
		rl.every = rate.Every(time.Minute / time.Duration(perMinute))
	}
	return rl
}

func (rl *RateLimiter) limiter(key string) *rate.Limiter {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	if entry, ok := rl.limiters[key]; ok {
		entry.lastSeen = now
		return entry.limiter
	}

	// drop idle entries while the lock is held anyway
	for k, entry := range rl.limiters {
		if now.Sub(entry.lastSeen) > limiterTTL {
			delete(rl.limiters, k)
		}
	}

	l := rate.NewLimiter(rl.every, rl.burst)
	rl.limiters[key] = &limiterEntry{limiter: l, lastSeen: now}
	return l
}

// Handler rejects requests over the limit with 429
func (rl *RateLimiter) Handler() gin.HandlerFunc {
	return func(c *gin.Context) {
		if rl.every == 0 {
			c.Next()
			return
		}
		if !rl.limiter(c.ClientIP()).AllowN(rl.now(), 1) {
			c.Header("Retry-After", "60")
			errorDetail := dto.NewErrorDetail(dto.ErrorCodeTooManyRequests, "Too many requests").
				WithDetails("Please wait before trying again")
			c.AbortWithStatusJSON(http.StatusTooManyRequests, dto.NewErrorResponse(errorDetail))
			return
		}
		c.Next()
	}
}
