package api

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

const requestIDKey = "request_id"

// Per-client limits sized for a browser storefront that polls the catalog.
const (
	clientLimit      = rate.Limit(20)
	clientBurst      = 40
	visitorStaleness = 10 * time.Minute
)

func requestIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader("X-Request-ID")
		if id == "" {
			id = uuid.NewString()
		}
		c.Set(requestIDKey, id)
		c.Header("X-Request-ID", id)
		c.Next()
	}
}

func loggerMiddleware(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		query := c.Request.URL.RawQuery

		c.Next()

		logger.Info("HTTP request",
			zap.String("method", c.Request.Method),
			zap.String("path", path),
			zap.String("query", query),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)),
			zap.String("request_id", c.GetString(requestIDKey)),
		)
	}
}

type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

type visitorTable struct {
	mu       sync.Mutex
	visitors map[string]*visitor
}

func newVisitorTable() *visitorTable {
	t := &visitorTable{visitors: make(map[string]*visitor)}
	go t.cleanup()
	return t
}

func (t *visitorTable) get(key string) *rate.Limiter {
	t.mu.Lock()
	defer t.mu.Unlock()

	v, ok := t.visitors[key]
	if !ok {
		v = &visitor{limiter: rate.NewLimiter(clientLimit, clientBurst)}
		t.visitors[key] = v
	}
	v.lastSeen = time.Now()
	return v.limiter
}

func (t *visitorTable) cleanup() {
	for range time.Tick(time.Minute) {
		t.mu.Lock()
		for key, v := range t.visitors {
			if time.Since(v.lastSeen) > visitorStaleness {
				delete(t.visitors, key)
			}
		}
		t.mu.Unlock()
	}
}

func rateLimitMiddleware() gin.HandlerFunc {
	table := newVisitorTable()
	return func(c *gin.Context) {
		if !table.get(c.ClientIP()).Allow() {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"success": false,
				"error":   "too many requests",
			})
			return
		}
		c.Next()
	}
}
