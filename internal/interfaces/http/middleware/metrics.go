package middleware

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/turtacn/ClauseWise/internal/infrastructure/monitoring/prometheus"
)

// Metrics records one request observation per call. The route template is
// used as the path label so ids do not explode cardinality; unmatched
// routes share the "unmatched" label.
func Metrics(m *prometheus.AnalysisMetrics) gin.HandlerFunc {
	if m == nil {
		m = prometheus.NewNoopMetrics()
	}
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		m.RecordHTTPRequest(c.Request.Method, path, c.Writer.Status(), time.Since(start))
	}
}

//Personal.AI order the ending
