package middleware

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/invcheck/invcheck/caching"
	"github.com/invcheck/invcheck/logger"
)

// RateLimitConfig configures rate limiting
type RateLimitConfig struct {
	RequestsPerMinute int
	KeyFunc           func(c *gin.Context) string
}

// DefaultRateLimitConfig limits by client IP.
func DefaultRateLimitConfig(perMinute int) RateLimitConfig {
	return RateLimitConfig{
		RequestsPerMinute: perMinute,
		KeyFunc: func(c *gin.Context) string {
			return c.ClientIP()
		},
	}
}

// RateLimitMiddleware counts requests per key and path in fixed one-minute
// windows held in the shared cache.
func RateLimitMiddleware(store *caching.Cache, config RateLimitConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := config.KeyFunc(c)
		rateLimitKey := "ratelimit:" + key + ":" + c.Request.URL.Path
		mem := store.Memory()

		if err := mem.Add(rateLimitKey, 0, time.Minute); err == nil {
			logger.Debugf("rate limit window opened for %s", key)
		}
		count, err := mem.IncrementInt(rateLimitKey, 1)
		if err != nil {
			// window expired between Add and Increment
			mem.Set(rateLimitKey, 1, time.Minute)
			count = 1
		}

		if count > config.RequestsPerMinute {
			logger.Warningf("Rate limit exceeded for %s on %s (count: %d)", key, c.Request.URL.Path, count)
			c.JSON(http.StatusTooManyRequests, gin.H{
				"success": false,
				"msg":     "Rate limit exceeded. Please try again later.",
			})
			c.Abort()
			return
		}

		c.Header("X-RateLimit-Limit", strconv.Itoa(config.RequestsPerMinute))
		c.Header("X-RateLimit-Remaining", strconv.Itoa(config.RequestsPerMinute-count))

		c.Next()
	}
}
