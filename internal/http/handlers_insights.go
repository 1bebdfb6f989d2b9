package http

import (
	"errors"
	"net/http"

	"findash/internal/dataset"
	"findash/internal/insights"
)

const insightsNotConfigured = "AI insights not configured. Set ANTHROPIC_API_KEY environment variable."

// handleInsights forwards a real summary to the language model. Guests are
// rejected before this handler runs.
func (s *Server) handleInsights(w http.ResponseWriter, r *http.Request) {
	var req InsightRequest
	if err := decodeJSON(w, r, s.validate, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	if s.insights == nil {
		writeError(w, r, http.StatusInternalServerError, insightsNotConfigured)
		return
	}

	period := dataset.TimePeriod(req.TimePeriod)
	if period == "" {
		period = dataset.PeriodAll
	}

	res, err := s.insights.Ask(r.Context(), sanitizeInput(req.Query), period)
	switch {
	case err == nil:
		writeJSON(w, r, http.StatusOK, InsightsResponse{Insights: res.Insights, Query: res.Query})
	case errors.Is(err, insights.ErrNotConfigured):
		writeError(w, r, http.StatusInternalServerError, insightsNotConfigured)
	case errors.Is(err, insights.ErrUpstream):
		writeError(w, r, http.StatusBadGateway, err.Error())
	default:
		s.writeDataError(w, r, err)
	}
}
