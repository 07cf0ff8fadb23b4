package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for the application
type Metrics struct {
	// HTTP metrics
	HTTPRequestsTotal     *prometheus.CounterVec
	HTTPRequestDuration   *prometheus.HistogramVec
	HTTPResponseSize      *prometheus.HistogramVec
	HTTPActiveConnections *prometheus.GaugeVec

	// Rate limiting
	RateLimitExceededTotal *prometheus.CounterVec

	// Aggregation engine
	StatsRecomputationsTotal   *prometheus.CounterVec
	StatsRecomputationDuration *prometheus.HistogramVec
	RecommendationsServed      *prometheus.HistogramVec

	// Search
	SearchRequestsTotal *prometheus.CounterVec
}

var (
	instance *Metrics
	once     sync.Once
)

// Initialize creates and registers all Prometheus metrics
func Initialize() *Metrics {
	once.Do(func() {
		instance = &Metrics{
			HTTPRequestsTotal: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Name: "http_requests_total",
					Help: "Total number of HTTP requests",
				},
				[]string{"method", "path", "status"},
			),
			HTTPRequestDuration: promauto.NewHistogramVec(
				prometheus.HistogramOpts{
					Name:    "http_request_duration_seconds",
					Help:    "HTTP request latency in seconds",
					Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5},
				},
				[]string{"method", "path", "status"},
			),
			HTTPResponseSize: promauto.NewHistogramVec(
				prometheus.HistogramOpts{
					Name:    "http_response_size_bytes",
					Help:    "HTTP response size in bytes",
					Buckets: prometheus.ExponentialBuckets(100, 10, 7),
				},
				[]string{"method", "path", "status"},
			),
			HTTPActiveConnections: promauto.NewGaugeVec(
				prometheus.GaugeOpts{
					Name: "http_active_connections",
					Help: "Number of currently active HTTP connections",
				},
				[]string{"method", "path"},
			),
			RateLimitExceededTotal: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Name: "rate_limit_exceeded_total",
					Help: "Requests rejected by the rate limiter",
				},
				[]string{"backend"},
			),
			StatsRecomputationsTotal: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Name: "stats_recomputations_total",
					Help: "Materialized statistics recomputations by kind and outcome",
				},
				[]string{"kind", "outcome"},
			),
			StatsRecomputationDuration: promauto.NewHistogramVec(
				prometheus.HistogramOpts{
					Name:    "stats_recomputation_duration_seconds",
					Help:    "Time spent recomputing materialized statistics",
					Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1},
				},
				[]string{"kind"},
			),
			RecommendationsServed: promauto.NewHistogramVec(
				prometheus.HistogramOpts{
					Name:    "recommendations_served",
					Help:    "Number of recommendations returned per request",
					Buckets: []float64{0, 1, 2, 5, 10, 20, 50},
				},
				[]string{"source"},
			),
			SearchRequestsTotal: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Name: "search_requests_total",
					Help: "Tool searches by backend (elasticsearch, store, store_fallback)",
				},
				[]string{"backend"},
			),
		}
	})
	return instance
}

// Get returns the global metrics instance
func Get() *Metrics {
	return Initialize()
}
