package middleware

import (
	"net/http"
	"strconv"
	"time"

	"github.com/botforce/unity/internal/domain/shared"
	"github.com/botforce/unity/internal/infrastructure/config"
	"github.com/botforce/unity/internal/infrastructure/logger"
	"github.com/botforce/unity/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/ulule/limiter/v3"
	"github.com/ulule/limiter/v3/drivers/store/memory"
	sredis "github.com/ulule/limiter/v3/drivers/store/redis"
	"go.uber.org/zap"
)

const rateLimitPrefix = "unity:ratelimit"

// NewRateLimiter builds a fixed-window limiter. A non-nil redis client shares
// counters across instances; otherwise counters live in process memory.
func NewRateLimiter(cfg config.RateLimitConfig, client *redis.Client) (*limiter.Limiter, error) {
	rate := limiter.Rate{Period: cfg.Window, Limit: cfg.Requests}

	var store limiter.Store
	if client != nil {
		var err error
		store, err = sredis.NewStoreWithOptions(client, limiter.StoreOptions{Prefix: rateLimitPrefix})
		if err != nil {
			return nil, err
		}
	} else {
		store = memory.NewStoreWithOptions(limiter.StoreOptions{
			Prefix:          rateLimitPrefix,
			CleanUpInterval: 2 * cfg.Window,
		})
	}
	return limiter.New(store, rate), nil
}

// RateLimit limits requests per client IP, scoped by tenant once authenticated.
func RateLimit(l *limiter.Limiter) gin.HandlerFunc {
	return RateLimitByKey(l, func(c *gin.Context) string {
		key := c.ClientIP()
		if tenantID := GetTenantID(c); tenantID != uuid.Nil {
			key = tenantID.String() + ":" + key
		}
		return key
	})
}

// RateLimitByKey limits requests using a custom key extractor
func RateLimitByKey(l *limiter.Limiter, keyFunc func(*gin.Context) string) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := keyFunc(c)

		lctx, err := l.Get(c.Request.Context(), key)
		if err != nil {
			// Fail open on store errors.
			logger.L(c.Request.Context()).Error("rate limit check failed",
				zap.String("key", key),
				zap.Error(err),
			)
			c.Next()
			return
		}

		c.Header("X-RateLimit-Limit", strconv.FormatInt(lctx.Limit, 10))
		c.Header("X-RateLimit-Remaining", strconv.FormatInt(lctx.Remaining, 10))
		c.Header("X-RateLimit-Reset", strconv.FormatInt(lctx.Reset, 10))

		if lctx.Reached {
			retryAfter := time.Until(time.Unix(lctx.Reset, 0))
			if retryAfter < time.Second {
				retryAfter = time.Second
			}
			appErr := shared.NewRateLimitError(retryAfter)

			logger.L(c.Request.Context()).Warn("rate limit exceeded",
				zap.String("key", key),
				zap.Int64("limit", lctx.Limit),
			)
			c.Header("Retry-After", strconv.Itoa(int(retryAfter.Seconds())))
			c.AbortWithStatusJSON(http.StatusTooManyRequests,
				dto.NewErrorResponseWithRequestID(appErr.Code, appErr.PublicMessage(), c.GetString(RequestIDKey)))
			return
		}

		c.Next()
	}
}
