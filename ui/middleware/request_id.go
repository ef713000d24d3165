package middleware

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"gradscope/domain/core"
	"gradscope/internal"
	"gradscope/internal/metrics"
)

// RequestIDHeader carries the request ID in and out
const RequestIDHeader = "X-Request-ID"

const requestIDKey = "request_id"

// RequestID tags each request with an ID, taken from the incoming header
// when it is a UUID and minted otherwise.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := core.ParseRequestID(c.GetHeader(RequestIDHeader))
		c.Set(requestIDKey, id.String())
		c.Header(RequestIDHeader, id.String())
		c.Next()
	}
}

// GetRequestID returns the ID set by RequestID, or ""
func GetRequestID(c *gin.Context) string {
	return c.GetString(requestIDKey)
}

// AccessLog logs one line per request and counts it by route and status.
func AccessLog(logger *internal.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		status := c.Writer.Status()
		metrics.HTTPRequests.WithLabelValues(c.Request.Method, route, strconv.Itoa(status)).Inc()
		logger.Debug("[HTTP] %s %s %d %s request_id=%s",
			c.Request.Method, c.Request.URL.Path, status, time.Since(start), GetRequestID(c))
	}
}
