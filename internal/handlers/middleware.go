package handlers

import (
	"net/http"
	"strconv"

	"controlling_irrigation/internal/metrics"

	"github.com/gin-gonic/gin"
)

// requestMetricsMiddleware counts every request by route template and logs
// server errors.
func (h *Handler) requestMetricsMiddleware(c *gin.Context) {
	c.Next()

	route := c.FullPath()
	if route == "" {
		route = "unmatched"
	}
	status := c.Writer.Status()
	metrics.HTTPRequests.WithLabelValues(route, c.Request.Method, strconv.Itoa(status)).Inc()

	if status >= http.StatusInternalServerError && h.log != nil {
		h.log.Warnw("http_server_error", "route", route, "method", c.Request.Method, "status", status)
	}
}
