// Package metrics provides Prometheus metrics for the formulary browser.
// HTTP traffic:
//   - http_request_total: Counter with method, path, and status labels
//   - http_request_duration_seconds: Histogram with method and path labels
//   - http_request_in_flight: Gauge for concurrent requests
//
// Browser activity:
//   - filter_recomputations_total: Counter with dataset label
//   - favorites_writes_total: Counter with result label (ok, error)
//   - favorites_total: Gauge of stored favorite ids
//   - sessions_active: Gauge of live browser sessions
//   - sessions_expired_total: Counter of sessions removed by the idle sweep
//
// All metrics are registered with the Prometheus default registry during
// package initialization.
package metrics

import "github.com/prometheus/client_golang/prometheus"

var (
	HTTPRequestTotals = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_request_total",
			Help: "Total HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request latency",
			Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5},
		},
		[]string{"method", "path"},
	)

	HTTPRequestInFlight = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "http_request_in_flight",
			Help: "Current in-flight requests",
		},
	)

	RateLimiterBucketsTotal = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "rate_limiter_buckets_total",
			Help: "Total number of rate limiter buckets (IPs seen in last ~5 minutes)",
		},
	)

	FilterRecomputations = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "filter_recomputations_total",
			Help: "Filtered views recomputed after a query, category or mode change",
		},
		[]string{"dataset"},
	)

	FavoritesWrites = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "favorites_writes_total",
			Help: "Full favorite set writes to durable storage",
		},
		[]string{"result"},
	)

	FavoritesTotal = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "favorites_total",
			Help: "Number of favorite formulary ids",
		},
	)

	SessionsActive = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "sessions_active",
			Help: "Live browser sessions",
		},
	)

	SessionsExpired = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "sessions_expired_total",
			Help: "Sessions removed after being idle past the TTL",
		},
	)
)

func init() {
	prometheus.MustRegister(HTTPRequestTotals)
	prometheus.MustRegister(HTTPRequestDuration)
	prometheus.MustRegister(HTTPRequestInFlight)
	prometheus.MustRegister(RateLimiterBucketsTotal)
	prometheus.MustRegister(FilterRecomputations)
	prometheus.MustRegister(FavoritesWrites)
	prometheus.MustRegister(FavoritesTotal)
	prometheus.MustRegister(SessionsActive)
	prometheus.MustRegister(SessionsExpired)
}

// RecordFavoritesWrite counts one favorites write
func RecordFavoritesWrite(err error) {
	if err != nil {
		FavoritesWrites.WithLabelValues("error").Inc()
		return
	}
	FavoritesWrites.WithLabelValues("ok").Inc()
}
