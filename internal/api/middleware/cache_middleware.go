package middleware

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/crow2678/Digital-Twin-sub001/internal/infrastructure/cache"
	"github.com/crow2678/Digital-Twin-sub001/pkg/logger"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

var log = logger.NewLogger()

// CacheMiddleware caches whole GET responses in Redis. It sits in front
// of the stats endpoint so repeated dashboard polls do not re-aggregate.
type CacheMiddleware struct {
	cache  *cache.RedisClient
	prefix string
	ttl    time.Duration
}

func NewCacheMiddleware(cache *cache.RedisClient, prefix string, ttl time.Duration) *CacheMiddleware {
	return &CacheMiddleware{
		cache:  cache,
		prefix: prefix,
		ttl:    ttl,
	}
}

// responseBuffer is a custom ResponseWriter that stores the response
type responseBuffer struct {
	gin.ResponseWriter
	body *bytes.Buffer
}

func newResponseBuffer(original gin.ResponseWriter) *responseBuffer {
	return &responseBuffer{
		ResponseWriter: original,
		body:           bytes.NewBufferString(""),
	}
}

func (r *responseBuffer) Write(b []byte) (int, error) {
	r.ResponseWriter.Write(b)
	return r.body.Write(b)
}

func (r *responseBuffer) WriteString(s string) (int, error) {
	r.ResponseWriter.WriteString(s)
	return r.body.WriteString(s)
}

func (r *responseBuffer) WriteHeader(code int) {
	r.ResponseWriter.WriteHeader(code)
}

// CacheResponse caches the response of an endpoint
func (m *CacheMiddleware) CacheResponse() gin.HandlerFunc {
	return func(c *gin.Context) {
		if m.cache == nil || c.Request.Method != http.MethodGet {
			c.Next()
			return
		}

		key := m.generateCacheKey(c)

		// Try to get from cache
		if cached, err := m.cache.Get(c, key); err == nil {
			var response map[string]interface{}
			if err := json.Unmarshal([]byte(cached), &response); err == nil {
				c.JSON(http.StatusOK, response)
				c.Abort()
				return
			}
		}

		// Store original response writer
		writer := c.Writer
		buff := newResponseBuffer(writer)
		c.Writer = buff

		c.Next()

		// If response was successful, cache it
		if c.Writer.Status() == http.StatusOK {
			responseData := buff.body.String()
			if err := m.cache.Set(c, key, responseData, m.ttl); err != nil {
				log.Error("Failed to cache response", zap.Error(err))
			}
		}

		c.Writer = writer
	}
}

// CacheInvalidate invalidates cache entries based on patterns
func (m *CacheMiddleware) CacheInvalidate(patterns ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if m.cache == nil {
			return
		}

		if c.Writer.Status() >= 200 && c.Writer.Status() < 300 {
			for _, pattern := range patterns {
				key := fmt.Sprintf("%s:%s", m.prefix, pattern)
				if err := m.cache.ClearByPattern(c, key); err != nil {
					log.Error("Failed to invalidate cache", zap.Error(err), zap.String("pattern", pattern))
				}
			}
		}
	}
}

// generateCacheKey builds a key from the request path and query. Stats
// paths carry the user id, so keys are user-specific without any auth
// context.
func (m *CacheMiddleware) generateCacheKey(c *gin.Context) string {
	parts := []string{m.prefix, "response"}
	parts = append(parts, strings.Split(strings.Trim(c.Request.URL.Path, "/"), "/")...)

	if len(c.Request.URL.RawQuery) > 0 {
		parts = append(parts, c.Request.URL.RawQuery)
	}

	return strings.Join(parts, ":")
}
