package middleware

import (
	"context"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/zfogg/aihub/backend/internal/cache"
	"github.com/zfogg/aihub/backend/internal/errors"
	"github.com/zfogg/aihub/backend/internal/logger"
	"github.com/zfogg/aihub/backend/internal/metrics"
	"github.com/zfogg/aihub/backend/internal/util"
	"go.uber.org/zap"
)

// RateLimitConfig holds configuration for rate limiting
type RateLimitConfig struct {
	// Requests per window
	Limit int
	// Window duration
	Window time.Duration
	// KeyFunc picks the bucket of a request; defaults to the client IP
	KeyFunc func(c *gin.Context) string
	// Counter is the shared store of hit counts. When nil or failing the
	// limiter counts in process memory.
	Counter cache.Counter
}

// DefaultRateLimitConfig returns sensible defaults
func DefaultRateLimitConfig() RateLimitConfig {
	return RateLimitConfig{
		Limit:   100,
		Window:  time.Minute,
		KeyFunc: ClientIPKey,
	}
}

// AuthRateLimitConfig returns stricter limits for auth endpoints
func AuthRateLimitConfig() RateLimitConfig {
	return RateLimitConfig{
		Limit:   10,
		Window:  time.Minute,
		KeyFunc: ClientIPKey,
	}
}

// ClientIPKey buckets requests by client IP
func ClientIPKey(c *gin.Context) string {
	return c.ClientIP()
}

// UserOrIPKey buckets authenticated requests by user and anonymous ones by IP
func UserOrIPKey(c *gin.Context) string {
	if userID := util.GetUserIDFromContext(c); userID != "" {
		return "user:" + userID
	}
	return "ip:" + c.ClientIP()
}

const (
	backendRedis  = "redis"
	backendMemory = "memory"
)

// NewRateLimiter creates a fixed-window rate limiting middleware
func NewRateLimiter(config RateLimitConfig) gin.HandlerFunc {
	if config.Limit <= 0 {
		config.Limit = DefaultRateLimitConfig().Limit
	}
	if config.Window <= 0 {
		config.Window = time.Minute
	}
	if config.KeyFunc == nil {
		config.KeyFunc = ClientIPKey
	}
	fallback := cache.NewMemoryCounter()
	limitStr := strconv.Itoa(config.Limit)
	m := metrics.Get()

	return func(c *gin.Context) {
		key := "rate_limit:" + config.KeyFunc(c)

		count, backend := hit(c.Request.Context(), config.Counter, fallback, key, config.Window)

		remaining := config.Limit - int(count)
		if remaining < 0 {
			remaining = 0
		}
		c.Header("X-RateLimit-Limit", limitStr)
		c.Header("X-RateLimit-Remaining", strconv.Itoa(remaining))

		if count > int64(config.Limit) {
			m.RateLimitExceededTotal.WithLabelValues(backend).Inc()
			logger.Log.Warn("Rate limit exceeded",
				logger.WithIP(c.ClientIP()),
				zap.String("key", key),
				zap.Int("limit", config.Limit),
				zap.Int64("count", count),
			)
			c.Header("Retry-After", strconv.Itoa(int(config.Window.Seconds())))
			util.RespondWithAPIError(c, errors.RateLimited(""))
			return
		}

		c.Next()
	}
}

func hit(ctx context.Context, shared, fallback cache.Counter, key string, window time.Duration) (int64, string) {
	if shared != nil {
		ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
		defer cancel()

		count, err := shared.Hit(ctx, key, window)
		if err == nil {
			return count, backendRedis
		}
		logger.Log.Warn("Shared rate limit counter failed, counting in memory",
			zap.String("key", key),
			zap.Error(err),
		)
	}
	count, _ := fallback.Hit(ctx, key, window)
	return count, backendMemory
}

// RateLimit returns a middleware with default configuration
func RateLimit() gin.HandlerFunc {
	return NewRateLimiter(DefaultRateLimitConfig())
}
