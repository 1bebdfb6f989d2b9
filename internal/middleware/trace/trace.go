// Package trace logs each request's lifecycle and attaches a request-scoped
// logger carrying the request id.
package trace

import (
	"net/http"
	"sync/atomic"
	"time"

	"github.com/go-chi/chi/middleware"

	"findash/internal/log"
)

// Middleware handles request tracing and logging
type Middleware struct {
	extractIP func(*http.Request) string
	logger    *log.Logger
	lifecycle *log.StructuredLogger
	total     atomic.Int64
}

// NewMiddleware creates a new trace middleware. It must run after chi's
// middleware.RequestID so the id is available.
func NewMiddleware(logger *log.Logger, extractIP func(*http.Request) string) *Middleware {
	if logger == nil {
		logger = log.Discard()
	}
	logger = logger.WithComponent(log.ComponentTrace)
	return &Middleware{
		extractIP: extractIP,
		logger:    logger,
		lifecycle: log.NewStructuredLogger(logger),
	}
}

// Middleware returns HTTP middleware for request tracing
func (m *Middleware) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		requestID := middleware.GetReqID(r.Context())

		clientIP := ""
		if m.extractIP != nil {
			clientIP = m.extractIP(r)
		}

		reqLogger := m.logger.With(log.FieldRequestID, requestID)
		ctx := log.NewContext(r.Context(), reqLogger)
		r = r.WithContext(ctx)

		m.lifecycle.LogHTTPStart(ctx, r, requestID, clientIP)
		m.total.Add(1)

		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		m.lifecycle.LogHTTPEnd(ctx, r, requestID, status, time.Since(start).Milliseconds(), clientIP)
	})
}

// TotalRequests returns how many requests passed through.
func (m *Middleware) TotalRequests() int64 {
	return m.total.Load()
}
