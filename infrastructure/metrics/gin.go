package metrics

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
)

// GinMiddleware records request count, latency and in-flight requests.
// Routes are labelled by their pattern so ids do not explode cardinality.
func (m *Metrics) GinMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		m.InFlight.Inc()
		defer m.InFlight.Dec()

		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		method := c.Request.Method

		m.RequestsTotal.WithLabelValues(method, route, strconv.Itoa(c.Writer.Status())).Inc()
		m.RequestDuration.WithLabelValues(method, route).Observe(time.Since(start).Seconds())
	}
}
