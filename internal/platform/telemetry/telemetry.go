// Package telemetry exposes Prometheus metrics for the reconciliation layer:
// per-lookup outcomes, enrichment pass durations, and HTTP request counts.
package telemetry

import (
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const (
	OutcomeHit     = "hit"
	OutcomeMiss    = "miss"
	OutcomeError   = "error"
	OutcomeTimeout = "timeout"
)

var (
	lookupsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "carelink_enrichment_lookups_total",
			Help: "Cross-reference lookups by collection and outcome",
		},
		[]string{"collection", "outcome"},
	)

	enrichmentDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "carelink_enrichment_pass_duration_seconds",
			Help:    "Duration of a full enrichment pass",
			Buckets: []float64{0.005, 0.01, 0.05, 0.1, 0.25, 0.5, 1.0, 2.5, 5.0},
		},
	)

	httpRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "carelink_http_requests_total",
			Help: "HTTP requests by method, path, and status code",
		},
		[]string{"method", "path", "status"},
	)
)

func init() {
	prometheus.MustRegister(lookupsTotal, enrichmentDuration, httpRequestsTotal)
}

// RecordLookup counts one cross-reference lookup outcome.
func RecordLookup(collection, outcome string) {
	lookupsTotal.WithLabelValues(collection, outcome).Inc()
}

// RecordEnrichmentPass observes the duration of one fan-out/fan-in pass.
func RecordEnrichmentPass(d time.Duration) {
	enrichmentDuration.Observe(d.Seconds())
}

// RecordHTTPRequest counts one handled HTTP request.
func RecordHTTPRequest(method, path, status string) {
	httpRequestsTotal.WithLabelValues(method, path, status).Inc()
}

// Handler returns the Prometheus exposition endpoint.
func Handler() echo.HandlerFunc {
	return echo.WrapHandler(promhttp.Handler())
}
