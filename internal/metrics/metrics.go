// Package metrics provides Prometheus instrumentation for the scoring service.
package metrics

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Label values for the status dimension of ScoresTotal.
const (
	StatusSuccess         = "success"
	StatusValidationError = "validation_error"
	StatusError           = "error"
)

// RiskLevelError is the reserved risk_level label for failed attempts, which
// never reach classification.
const RiskLevelError = "ERROR"

// LatencyBuckets are the fixed histogram boundaries for predictor latency,
// in seconds. Sized for inline approval flows (10ms-1s).
var LatencyBuckets = []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0}

var (
	// ScoresTotal counts risk assessments by model version, level, and outcome.
	ScoresTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "transaction_risk_scores_total",
			Help: "Total transaction risk assessments.",
		},
		[]string{"model_version", "risk_level", "status"},
	)

	// ScoreLatency observes predictor invocation latency by model version.
	ScoreLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "transaction_risk_latency_seconds",
			Help:    "Transaction risk scoring latency.",
			Buckets: LatencyBuckets,
		},
		[]string{"model_version"},
	)

	// HighRiskLastHour reports HIGH/CRITICAL detections within the trailing
	// hour. Backed by a real sliding window; see highrisk.go.
	HighRiskLastHour = prometheus.NewGaugeFunc(
		prometheus.GaugeOpts{
			Name: "high_risk_transactions_last_hour",
			Help: "Count of high-risk transactions in the last hour.",
		},
		func() float64 { return float64(highRisk.Count()) },
	)

	// HTTPRequestsTotal counts HTTP requests by method, path, and status.
	HTTPRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "riskscore",
			Name:      "http_requests_total",
			Help:      "Total HTTP requests by method, path pattern, and status code.",
		},
		[]string{"method", "path", "status"},
	)

	// HTTPRequestDuration observes request latency by method and path.
	HTTPRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "riskscore",
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request duration in seconds.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)
)

func init() {
	prometheus.MustRegister(
		ScoresTotal,
		ScoreLatency,
		HighRiskLastHour,
		HTTPRequestsTotal,
		HTTPRequestDuration,
	)
}

// Middleware returns a gin middleware that records request metrics.
func Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		timer := prometheus.NewTimer(HTTPRequestDuration.WithLabelValues(
			c.Request.Method,
			c.FullPath(), // Uses route pattern, not actual path (avoids cardinality explosion)
		))

		c.Next()

		timer.ObserveDuration()
		HTTPRequestsTotal.WithLabelValues(
			c.Request.Method,
			c.FullPath(),
			statusBucket(c.Writer.Status()),
		).Inc()
	}
}

// Handler returns the Prometheus metrics HTTP handler for /metrics endpoint.
func Handler() gin.HandlerFunc {
	h := promhttp.Handler()
	return func(c *gin.Context) {
		h.ServeHTTP(c.Writer, c.Request)
	}
}

// statusBucket groups HTTP status codes into buckets (2xx, 3xx, 4xx, 5xx).
func statusBucket(code int) string {
	switch {
	case code < 200:
		return "1xx"
	case code < 300:
		return "2xx"
	case code < 400:
		return "3xx"
	case code < 500:
		return "4xx"
	default:
		return "5xx"
	}
}
