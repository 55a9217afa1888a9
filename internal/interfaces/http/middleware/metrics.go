package middleware

import (
	"github.com/cultivo/backend/internal/infrastructure/telemetry"
	"github.com/gin-gonic/gin"
)

// Metrics records request count and latency per route pattern. A nil
// collector set returns a pass-through handler.
func Metrics(m *telemetry.HTTPMetrics) gin.HandlerFunc {
	if m == nil {
		return func(c *gin.Context) { c.Next() }
	}

	return func(c *gin.Context) {
		done := m.Begin()
		c.Next()
		done(c.Request.Method, c.FullPath(), c.Writer.Status())
	}
}
