package metrics

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCounters(t *testing.T) {
	m := New()

	m.ObserveTrust("cookie", true)
	m.ObserveTrust("header", false)
	m.ObserveTrust("header", false)
	m.ObserveLogin(false)
	m.ObserveDatasetLoad("csv", errors.New("boom"))

	assert.Equal(t, 1.0, testutil.ToFloat64(m.TrustDecisions.WithLabelValues("cookie", "trusted")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.TrustDecisions.WithLabelValues("header", "guest")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.LoginAttempts.WithLabelValues("rejected")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.DatasetLoads.WithLabelValues("csv", "error")))
}

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics
	m.ObserveTrust("none", false)
	m.ObserveRateLimited("login")

	h := m.Middleware(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusTeapot, rec.Code)
}

func TestHandlerExposesRouteLatency(t *testing.T) {
	m := New()
	r := chi.NewRouter()
	r.Use(m.Middleware)
	r.Get("/api/summary", func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusOK) })
	r.Handle("/metrics", m.Handler())

	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/summary", nil))

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.True(t, strings.Contains(body, `findash_http_request_duration_seconds_count{method="GET",route="/api/summary",status="200"} 1`), body)
}
