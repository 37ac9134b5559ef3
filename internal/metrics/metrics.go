// Package metrics exposes Prometheus counters for the HTTP surface and the
// two upstream providers.
package metrics

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// RequestsTotal counts handled HTTP requests.
	// Labels: method, path (route template), status.
	RequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "scheduler_http_requests_total",
			Help: "Total number of HTTP requests handled",
		},
		[]string{"method", "path", "status"},
	)

	// RequestDuration observes request latency per route.
	RequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "scheduler_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"method", "path"},
	)

	// UpstreamCallsTotal counts calls to external providers.
	// Labels: provider (zoom/zoom_oauth/calendar/drive/s3), outcome.
	UpstreamCallsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "scheduler_upstream_calls_total",
			Help: "Total number of external provider calls by outcome",
		},
		[]string{"provider", "outcome"},
	)
)

// RecordUpstream records one external provider call.
func RecordUpstream(provider string, success bool) {
	outcome := "success"
	if !success {
		outcome = "error"
	}
	UpstreamCallsTotal.WithLabelValues(provider, outcome).Inc()
}

// Middleware records per-request counters and latency.
func Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		RequestsTotal.WithLabelValues(c.Request.Method, path, strconv.Itoa(c.Writer.Status())).Inc()
		RequestDuration.WithLabelValues(c.Request.Method, path).Observe(time.Since(start).Seconds())
	}
}

// Handler serves the /metrics endpoint.
func Handler() gin.HandlerFunc {
	return gin.WrapH(promhttp.Handler())
}
