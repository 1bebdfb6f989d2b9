// Package metrics exposes the Prometheus collectors of the service.
// A nil *Metrics is valid and records nothing.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "findash"

type Metrics struct {
	registry *prometheus.Registry

	TrustDecisions      *prometheus.CounterVec
	LoginAttempts       *prometheus.CounterVec
	NormalizedResponses *prometheus.CounterVec
	RateLimited         *prometheus.CounterVec
	DatasetLoads        *prometheus.CounterVec
	InsightRequests     *prometheus.CounterVec
	RequestDuration     *prometheus.HistogramVec
}

// New registers every collector on a private registry.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	f := promauto.With(reg)

	return &Metrics{
		registry: reg,
		TrustDecisions: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "trust_decisions_total",
			Help:      "Access gate decisions by credential channel and resulting mode.",
		}, []string{"channel", "mode"}),
		LoginAttempts: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "login_attempts_total",
			Help:      "Login attempts by outcome.",
		}, []string{"outcome"}),
		NormalizedResponses: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "normalized_responses_total",
			Help:      "Responses served with obfuscated data.",
		}, []string{"endpoint"}),
		RateLimited: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rate_limited_total",
			Help:      "Requests rejected by a rate limit policy.",
		}, []string{"policy"}),
		DatasetLoads: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "dataset_loads_total",
			Help:      "Dataset loads from the configured source by outcome.",
		}, []string{"source", "outcome"}),
		InsightRequests: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "insight_requests_total",
			Help:      "Language model insight requests by outcome.",
		}, []string{"outcome"}),
		RequestDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by route and status.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route", "status"}),
	}
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

func (m *Metrics) ObserveTrust(channel string, trusted bool) {
	if m == nil {
		return
	}
	m.TrustDecisions.WithLabelValues(channel, mode(trusted)).Inc()
}

func (m *Metrics) ObserveLogin(ok bool) {
	if m == nil {
		return
	}
	outcome := "rejected"
	if ok {
		outcome = "accepted"
	}
	m.LoginAttempts.WithLabelValues(outcome).Inc()
}

func (m *Metrics) ObserveNormalized(endpoint string) {
	if m == nil {
		return
	}
	m.NormalizedResponses.WithLabelValues(endpoint).Inc()
}

func (m *Metrics) ObserveRateLimited(policy string) {
	if m == nil {
		return
	}
	m.RateLimited.WithLabelValues(policy).Inc()
}

func (m *Metrics) ObserveDatasetLoad(source string, err error) {
	if m == nil {
		return
	}
	m.DatasetLoads.WithLabelValues(source, outcome(err)).Inc()
}

func (m *Metrics) ObserveInsight(err error) {
	if m == nil {
		return
	}
	m.InsightRequests.WithLabelValues(outcome(err)).Inc()
}

// Middleware records request latency labelled with the chi route pattern.
func (m *Metrics) Middleware(next http.Handler) http.Handler {
	if m == nil {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		route := "unmatched"
		if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
			route = rctx.RoutePattern()
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		m.RequestDuration.WithLabelValues(r.Method, route, strconv.Itoa(status)).
			Observe(time.Since(start).Seconds())
	})
}

func mode(trusted bool) string {
	if trusted {
		return "trusted"
	}
	return "guest"
}

func outcome(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}
