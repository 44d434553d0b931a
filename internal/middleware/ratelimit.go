package middleware

import (
	"strconv"
	"time"

	redispkg "github.com/blogd/blogd/internal/pkg/redis"
	"github.com/blogd/blogd/internal/pkg/response"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// RateLimit allows max anonymous requests per client IP per second.
// Authenticated callers and Redis failures pass through.
func RateLimit(rdb *redispkg.Client, max int) gin.HandlerFunc {
	return func(c *gin.Context) {
		if rdb == nil || CurrentIdentity(c) != nil {
			c.Next()
			return
		}

		ip := c.ClientIP()
		if ip == "" {
			c.Next()
			return
		}

		window := strconv.FormatInt(time.Now().Unix(), 10)
		count, err := rdb.IncrWindow(c.Request.Context(), redispkg.Key("rate_limit", ip, window), 2*time.Second)
		if err != nil {
			zap.L().Debug("rate limit skipped", zap.Error(err))
			c.Next()
			return
		}

		if count > int64(max) {
			c.Header("Retry-After", "1")
			response.TooManyRequests(c)
			return
		}

		c.Next()
	}
}
