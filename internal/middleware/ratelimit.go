package middleware

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"crm-service/internal/config"
)

// ThrottleCounter increments a named counter within a fixed window and
// returns the new count.
type ThrottleCounter interface {
	IncrementThrottle(ctx context.Context, key string, window time.Duration) (int64, error)
}

// RateLimiter throttles requests per principal. Anonymous requests are
// counted per client IP over a one-minute window; authenticated requests
// per user over a one-day window. When Redis is unavailable an in-process
// counter takes over so limits still hold on a single instance.
type RateLimiter struct {
	counter ThrottleCounter
	cfg     config.RateLimitConfig
	logger  *logrus.Entry

	mu       sync.Mutex
	fallback map[string]*windowCount
}

type windowCount struct {
	count   int64
	resetAt time.Time
}

// NewRateLimiter creates a rate limiter. counter may be nil, in which case
// the in-memory fallback is used for everything.
func NewRateLimiter(counter ThrottleCounter, cfg config.RateLimitConfig, logger *logrus.Logger) *RateLimiter {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &RateLimiter{
		counter:  counter,
		cfg:      cfg,
		logger:   logger.WithField("component", "rate_limiter"),
		fallback: make(map[string]*windowCount),
	}
}

// Limit enforces the throttle for the current request
func (rl *RateLimiter) Limit() gin.HandlerFunc {
	return func(c *gin.Context) {
		var key string
		var limit int64
		var window time.Duration

		if userID, ok := GetUserID(c); ok {
			key = fmt.Sprintf("user:%s", userID)
			limit = int64(rl.cfg.UserPerDay)
			window = 24 * time.Hour
		} else {
			key = fmt.Sprintf("anon:%s", c.ClientIP())
			limit = int64(rl.cfg.AnonPerMinute)
			window = time.Minute
		}

		count, err := rl.increment(c.Request.Context(), key, window)
		if err != nil {
			rl.logger.WithError(err).Warn("throttle counter unavailable, using in-memory fallback")
			count = rl.incrementLocal(key, window)
		}

		if count > limit {
			c.Header("Retry-After", fmt.Sprintf("%d", int(window.Seconds())))
			c.JSON(http.StatusTooManyRequests, gin.H{
				"error": "Request was throttled",
				"code":  "THROTTLED",
			})
			c.Abort()
			return
		}

		c.Next()
	}
}

func (rl *RateLimiter) increment(ctx context.Context, key string, window time.Duration) (int64, error) {
	if rl.counter == nil {
		return rl.incrementLocal(key, window), nil
	}
	return rl.counter.IncrementThrottle(ctx, key, window)
}

func (rl *RateLimiter) incrementLocal(key string, window time.Duration) int64 {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := time.Now()
	for k, wc := range rl.fallback {
		if now.After(wc.resetAt) {
			delete(rl.fallback, k)
		}
	}

	wc, ok := rl.fallback[key]
	if !ok {
		wc = &windowCount{resetAt: now.Add(window)}
		rl.fallback[key] = wc
	}
	wc.count++
	return wc.count
}
