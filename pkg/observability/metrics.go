package observability

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus metrics for the service.
type Metrics struct {
	// HTTP metrics
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec

	// Authorization metrics
	DecisionsTotal   *prometheus.CounterVec
	DecisionDuration *prometheus.HistogramVec

	// Cache metrics
	CacheHitsTotal   *prometheus.CounterVec
	CacheMissesTotal *prometheus.CounterVec

	// Group and policy metrics
	GroupEventsTotal   *prometheus.CounterVec
	PolicyReloadsTotal *prometheus.CounterVec

	// Session metrics
	SessionsActive prometheus.Gauge
	GroupsTotal    prometheus.Gauge
}

// NewMetrics creates and registers all Prometheus metrics on the given
// registry.
func NewMetrics(registry *prometheus.Registry) *Metrics {
	m := &Metrics{
		HTTPRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "bramble_http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		HTTPRequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "bramble_http_request_duration_seconds",
				Help:    "HTTP request duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "path"},
		),
		DecisionsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "bramble_authz_decisions_total",
				Help: "Total number of permission check decisions",
			},
			[]string{"permission", "outcome", "source"},
		),
		DecisionDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "bramble_authz_decision_duration_seconds",
				Help:    "Permission check duration in seconds",
				Buckets: []float64{.00001, .0001, .001, .005, .01, .05, .1},
			},
			[]string{"permission"},
		),
		CacheHitsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "bramble_cache_hits_total",
				Help: "Total number of cache hits",
			},
			[]string{"cache"},
		),
		CacheMissesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "bramble_cache_misses_total",
				Help: "Total number of cache misses",
			},
			[]string{"cache"},
		),
		GroupEventsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "bramble_group_events_total",
				Help: "Total number of group change events",
			},
			[]string{"type"},
		),
		PolicyReloadsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "bramble_policy_reloads_total",
				Help: "Total number of security policy reloads",
			},
			[]string{"status"},
		),
		SessionsActive: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "bramble_sessions_active",
				Help: "Number of live wiki sessions",
			},
		),
		GroupsTotal: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "bramble_groups_total",
				Help: "Number of wiki groups",
			},
		),
	}

	registry.MustRegister(
		m.HTTPRequestsTotal,
		m.HTTPRequestDuration,
		m.DecisionsTotal,
		m.DecisionDuration,
		m.CacheHitsTotal,
		m.CacheMissesTotal,
		m.GroupEventsTotal,
		m.PolicyReloadsTotal,
		m.SessionsActive,
		m.GroupsTotal,
	)
	return m
}

// ObserveDecision records one permission check outcome.
func (m *Metrics) ObserveDecision(permission string, allowed bool, source string, elapsed time.Duration) {
	outcome := "deny"
	if allowed {
		outcome = "allow"
	}
	m.DecisionsTotal.WithLabelValues(permission, outcome, source).Inc()
	m.DecisionDuration.WithLabelValues(permission).Observe(elapsed.Seconds())
}

// ObserveGroupEvent counts one group mutation event and records the
// resulting number of groups.
func (m *Metrics) ObserveGroupEvent(eventType string, groupCount int) {
	m.GroupEventsTotal.WithLabelValues(eventType).Inc()
	m.GroupsTotal.Set(float64(groupCount))
}

// SetSessionsActive records the current number of live sessions.
func (m *Metrics) SetSessionsActive(count int) {
	m.SessionsActive.Set(float64(count))
}

// ObserveHTTPRequest records one served HTTP request.
func (m *Metrics) ObserveHTTPRequest(method, path string, status int, elapsed time.Duration) {
	m.HTTPRequestsTotal.WithLabelValues(method, path, strconv.Itoa(status)).Inc()
	m.HTTPRequestDuration.WithLabelValues(method, path).Observe(elapsed.Seconds())
}

// Handler returns the /metrics endpoint handler for the registry the
// metrics were registered on.
func Handler(registry *prometheus.Registry) http.Handler {
	return promhttp.HandlerFor(registry, promhttp.HandlerOpts{})
}
