package middleware

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/leon37/RizalLamp/internal/metrics"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Prometheus 统计请求数和耗时
func Prometheus() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !metrics.Enabled() || c.Request.URL.Path == "/metrics" {
			c.Next()
			return
		}
		metrics.Register()

		start := time.Now()
		c.Next()

		// 用路由模板做 label，未命中的路由统一归到一起，避免基数爆炸
		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		method := c.Request.Method
		metrics.HTTPRequestsTotal.WithLabelValues(method, path, strconv.Itoa(c.Writer.Status())).Inc()
		metrics.HTTPRequestDurationSeconds.WithLabelValues(method, path).Observe(time.Since(start).Seconds())
	}
}

// MetricsHandler /metrics
func MetricsHandler() gin.HandlerFunc {
	handler := promhttp.Handler()
	return func(c *gin.Context) {
		if !metrics.Enabled() {
			c.AbortWithStatus(http.StatusNotFound)
			return
		}
		metrics.Register()
		handler.ServeHTTP(c.Writer, c.Request)
	}
}
