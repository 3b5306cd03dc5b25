package middleware

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/duynhne/records-service/internal/auth"
)

var (
	httpRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "Total number of HTTP requests.",
	}, []string{"method", "path", "status"})

	httpRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "HTTP request latency in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path"})

	authDecisionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "auth_guard_decisions_total",
		Help: "Authentication guard decisions by outcome and internal reason.",
	}, []string{"outcome", "reason"})
)

// PrometheusMiddleware records request counts and latencies per route template.
func PrometheusMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		status := strconv.Itoa(c.Writer.Status())

		httpRequestsTotal.WithLabelValues(c.Request.Method, path, status).Inc()
		httpRequestDuration.WithLabelValues(c.Request.Method, path).Observe(time.Since(start).Seconds())
	}
}

// RecordAuthDecision counts one guard decision. err is nil for an accepted request.
func RecordAuthDecision(err error) {
	outcome := "allowed"
	if err != nil {
		outcome = "denied"
	}
	authDecisionsTotal.WithLabelValues(outcome, auth.CauseLabel(err)).Inc()
}
