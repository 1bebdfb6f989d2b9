package http

import (
	"context"
	"errors"
	"net/http"
	"time"

	"findash/internal/auth"
	"findash/internal/dataset"
	"findash/internal/log"
	"findash/internal/privacy"
)

const noDataMessage = "No financial data available. Please upload CSV files or configure DATABASE_URL."

// handleHealth reports the API and its backend.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, r, http.StatusOK, HealthResponse{
		Message:  "Finance Analysis API",
		Status:   "running",
		Database: s.data.Source(),
	})
}

// handleHealthz performs basic liveness check
func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, r, http.StatusOK, map[string]string{
		"status":    "ok",
		"timestamp": time.Now().Format(time.RFC3339),
	})
}

// handleReadyz performs readiness check with dependency verification
func (s *Server) handleReadyz(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	status := "ready"
	httpStatus := http.StatusOK
	checks := make(map[string]any)

	// An empty dataset is served as 503 per request but does not make the
	// process unready.
	if _, err := s.data.Load(ctx); err != nil && !errors.Is(err, dataset.ErrNoData) {
		checks["dataset"] = "failed: " + err.Error()
		status = "not_ready"
		httpStatus = http.StatusServiceUnavailable
	} else {
		checks["dataset"] = "ok"
	}
	checks["backend"] = s.data.Source()
	checks["rate_limiter"] = map[string]any{
		"login":    s.loginLimiter.ActiveClients(),
		"insights": s.insightsLimiter.ActiveClients(),
		"api":      s.apiLimiter.ActiveClients(),
	}
	checks["suspicious_requests"] = s.detector.SuspiciousRequests()
	checks["requests_served"] = s.trace.TotalRequests()

	writeJSON(w, r, httpStatus, map[string]any{
		"status":    status,
		"timestamp": time.Now().Format(time.RFC3339),
		"checks":    checks,
	})
}

// view picks the presentation for the request. Guests get one normalizer
// drawn for the whole response.
func (s *Server) view(r *http.Request, endpoint string) dataset.View {
	if auth.FromContext(r.Context()).Trusted {
		return dataset.TrustedView()
	}
	s.metrics.ObserveNormalized(endpoint)
	return dataset.GuestView(privacy.NewNormalizer(s.factors.Factor(r.Context())))
}

// writeDataError maps dataset failures to responses.
func (s *Server) writeDataError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, dataset.ErrNoData):
		writeError(w, r, http.StatusServiceUnavailable, noDataMessage)
	case errors.Is(err, context.DeadlineExceeded):
		writeError(w, r, http.StatusGatewayTimeout, "Data source timed out")
	default:
		log.FromContext(r.Context()).ErrorContext(r.Context(), "Failed to load dataset",
			log.FieldBackend, s.data.Source(), log.Err(err))
		writeError(w, r, http.StatusInternalServerError, "Failed to load financial data")
	}
}
