package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Fetch outcomes recorded by the stores.
const (
	ResultOK       = "ok"
	ResultError    = "error"
	ResultStale    = "stale"
	ResultRejected = "rejected"
	ResultNoop     = "noop"
)

// Metrics holds all application metrics
type Metrics struct {
	// Store metrics
	StoreFetchesTotal  *prometheus.CounterVec
	StoreFetchDuration *prometheus.HistogramVec
	StoreInvalidations *prometheus.CounterVec
	FeedPagesLoaded    prometheus.Gauge

	// View metrics
	ViewActionsTotal    *prometheus.CounterVec
	ViewActionsInFlight prometheus.Gauge

	// Roster cache metrics
	RosterCacheRequests *prometheus.CounterVec

	// HTTP metrics
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec
	RateLimitedTotal    *prometheus.CounterVec

	// Circuit breaker metrics
	CircuitBreakerState    *prometheus.GaugeVec
	CircuitBreakerRequests *prometheus.CounterVec
}

// NewMetrics creates and registers all metrics against the given registry.
// If reg is nil, prometheus.DefaultRegisterer is used.
func NewMetrics(namespace string, reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	factory := prometheus.WrapRegistererWith(nil, reg)

	m := &Metrics{
		StoreFetchesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "store_fetches_total",
				Help:      "Total number of store fetches by store and result",
			},
			[]string{"store", "result"},
		),
		StoreFetchDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "store_fetch_duration_seconds",
				Help:      "Upstream fetch duration per store in seconds",
				Buckets:   []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10},
			},
			[]string{"store"},
		),
		StoreInvalidations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "store_invalidations_total",
				Help:      "Total number of store invalidations",
			},
			[]string{"store"},
		),
		FeedPagesLoaded: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "feed_pages_loaded",
				Help:      "Number of all-transactions pages currently accumulated",
			},
		),
		ViewActionsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "view_actions_total",
				Help:      "Total number of view actions by action and status",
			},
			[]string{"action", "status"},
		),
		ViewActionsInFlight: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "view_actions_in_flight",
				Help:      "Number of view actions with unsettled fetches",
			},
		),
		RosterCacheRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "roster_cache_requests_total",
				Help:      "Roster cache lookups by result",
			},
			[]string{"result"},
		),
		HTTPRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "http_requests_total",
				Help:      "Total number of HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		HTTPRequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "http_request_duration_seconds",
				Help:      "HTTP request duration in seconds",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"method", "path"},
		),
		RateLimitedTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "http_rate_limited_total",
				Help:      "Requests rejected by the rate limiter per route",
			},
			[]string{"path"},
		),
		CircuitBreakerState: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "circuit_breaker_state",
				Help:      "Circuit breaker state (0=closed, 1=half-open, 2=open)",
			},
			[]string{"name"},
		),
		CircuitBreakerRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "circuit_breaker_requests_total",
				Help:      "Total number of circuit breaker requests",
			},
			[]string{"name", "result"},
		),
	}

	factory.MustRegister(
		m.StoreFetchesTotal,
		m.StoreFetchDuration,
		m.StoreInvalidations,
		m.FeedPagesLoaded,
		m.ViewActionsTotal,
		m.ViewActionsInFlight,
		m.RosterCacheRequests,
		m.HTTPRequestsTotal,
		m.HTTPRequestDuration,
		m.RateLimitedTotal,
		m.CircuitBreakerState,
		m.CircuitBreakerRequests,
	)

	return m
}
