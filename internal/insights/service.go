package insights

import (
	"context"
	"strings"
	"time"

	"findash/internal/dataset"
	"findash/internal/log"
	"findash/internal/metrics"
)

// Completer produces a model answer for a prompt.
type Completer interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

// Summarizer yields the real dataset summary.
type Summarizer interface {
	RealSummary(ctx context.Context, since *time.Time) (dataset.Summary, error)
}

// Result is the answer returned to the caller.
type Result struct {
	Insights string
	Query    string
}

// Service builds the prompt from real data and asks the model.
type Service struct {
	data    Summarizer
	model   Completer
	logger  *log.Logger
	metrics *metrics.Metrics
	now     func() time.Time
}

func NewService(data Summarizer, model Completer, logger *log.Logger, m *metrics.Metrics) *Service {
	if logger == nil {
		logger = log.Discard()
	}
	return &Service{
		data:    data,
		model:   model,
		logger:  logger.WithComponent(log.ComponentInsights),
		metrics: m,
		now:     time.Now,
	}
}

// Ask answers query over the given period. A blank query uses DefaultQuery.
func (s *Service) Ask(ctx context.Context, query string, period dataset.TimePeriod) (Result, error) {
	if c, ok := s.model.(*Client); ok && !c.Configured() {
		return Result{}, ErrNotConfigured
	}
	if strings.TrimSpace(query) == "" {
		query = DefaultQuery
	}

	summary, err := s.data.RealSummary(ctx, period.Since(s.now()))
	if err != nil {
		return Result{}, err
	}

	start := time.Now()
	text, err := s.model.Complete(ctx, BuildPrompt(summary, query))
	s.metrics.ObserveInsight(err)
	if err != nil {
		s.logger.ErrorContext(ctx, "Insight request failed", log.Err(err))
		return Result{}, err
	}
	s.logger.InfoContext(ctx, "Insight generated",
		"period", string(period),
		log.FieldDuration, time.Since(start).Milliseconds())
	return Result{Insights: text, Query: query}, nil
}
