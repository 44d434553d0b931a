package middleware

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"io"
	"net/http"
	"time"

	redispkg "github.com/blogd/blogd/internal/pkg/redis"
	"github.com/blogd/blogd/internal/pkg/response"
	"github.com/gin-gonic/gin"
)

const (
	IdempotenceHeader = "X-Idempotence-Key"
	idempotenceTTL    = 60 * time.Second
)

// Idempotence rejects a repeat of the same write while the first is in
// flight or for a minute after it succeeded. Failed requests release the key.
func Idempotence(rdb *redispkg.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		if rdb == nil || c.Request.Method == http.MethodGet {
			c.Next()
			return
		}

		key, err := idempotenceKey(c)
		if err != nil || key == "" {
			c.Next()
			return
		}

		ctx := c.Request.Context()
		redisKey := redispkg.Key("idempotence", key)
		acquired, err := rdb.SetNX(ctx, redisKey, "0", idempotenceTTL)
		if err != nil {
			c.Next()
			return
		}
		if !acquired {
			response.Conflict(c, "Duplicate request")
			return
		}

		c.Next()

		if status := c.Writer.Status(); status >= 200 && status < 300 {
			_ = rdb.Set(ctx, redisKey, "1", idempotenceTTL)
		} else {
			_ = rdb.Del(ctx, redisKey)
		}
	}
}

func idempotenceKey(c *gin.Context) (string, error) {
	if hdr := c.GetHeader(IdempotenceHeader); hdr != "" {
		return hdr, nil
	}

	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		return "", err
	}
	c.Request.Body = io.NopCloser(bytes.NewReader(body))

	raw := c.Request.Method + "|" + c.Request.URL.String() + "|" + string(body) + "|" +
		c.Request.UserAgent() + "|" + c.ClientIP() + "|" + extractToken(c)
	h := sha256.Sum256([]byte(raw))
	return hex.EncodeToString(h[:]), nil
}
