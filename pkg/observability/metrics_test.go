package observability

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestObserveDecision(t *testing.T) {
	registry := prometheus.NewRegistry()
	m := NewMetrics(registry)

	m.ObserveDecision("edit", true, "acl", time.Millisecond)
	m.ObserveDecision("delete", false, "static", time.Millisecond)
	m.ObserveDecision("edit", true, "acl", time.Millisecond)

	assert.Equal(t, float64(2), testutil.ToFloat64(
		m.DecisionsTotal.WithLabelValues("edit", "allow", "acl")))
	assert.Equal(t, float64(1), testutil.ToFloat64(
		m.DecisionsTotal.WithLabelValues("delete", "deny", "static")))
}

func TestObserveHTTPRequest(t *testing.T) {
	registry := prometheus.NewRegistry()
	m := NewMetrics(registry)

	m.ObserveHTTPRequest(http.MethodGet, "/api/v1/groups", 200, 5*time.Millisecond)
	assert.Equal(t, float64(1), testutil.ToFloat64(
		m.HTTPRequestsTotal.WithLabelValues("GET", "/api/v1/groups", "200")))
}

func TestObserveGroupEvent(t *testing.T) {
	registry := prometheus.NewRegistry()
	m := NewMetrics(registry)

	m.ObserveGroupEvent("group.add", 1)
	m.ObserveGroupEvent("group.add.member", 1)
	m.ObserveGroupEvent("group.remove", 0)

	assert.Equal(t, float64(1), testutil.ToFloat64(
		m.GroupEventsTotal.WithLabelValues("group.add")))
	assert.Equal(t, float64(1), testutil.ToFloat64(
		m.GroupEventsTotal.WithLabelValues("group.remove")))
	assert.Equal(t, float64(0), testutil.ToFloat64(m.GroupsTotal))
}

func TestSetSessionsActive(t *testing.T) {
	registry := prometheus.NewRegistry()
	m := NewMetrics(registry)

	m.SetSessionsActive(3)
	assert.Equal(t, float64(3), testutil.ToFloat64(m.SessionsActive))
}

func TestMetricsHandlerServesRegistry(t *testing.T) {
	registry := prometheus.NewRegistry()
	m := NewMetrics(registry)
	m.GroupsTotal.Set(4)

	rec := httptest.NewRecorder()
	Handler(registry).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "bramble_groups_total 4")
}
