package middleware

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/arm-gateway/internal/http/response"
	"github.com/yungbote/arm-gateway/internal/observability"
)

const unmatchedRoute = "unmatched"

// Metrics records gateway request counts, latency and wire error codes per
// route template. Probe and scrape endpoints are not counted.
func Metrics(m *observability.Metrics) gin.HandlerFunc {
	if m == nil {
		return func(c *gin.Context) { c.Next() }
	}
	return func(c *gin.Context) {
		switch c.FullPath() {
		case "/metrics", "/healthcheck":
			c.Next()
			return
		}
		start := time.Now()
		m.ApiInflightInc()
		defer m.ApiInflightDec()

		c.Next()

		// Unrouted paths share one label.
		route := c.FullPath()
		if route == "" {
			route = unmatchedRoute
		}
		m.ObserveAPI(c.Request.Method, route, strconv.Itoa(c.Writer.Status()), time.Since(start))
		if code, ok := c.Get(response.ErrorCodeKey); ok {
			if s, ok := code.(string); ok {
				m.ObserveAPIError(route, s)
			}
		}
	}
}
