package trace

import (
	"bytes"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/middleware"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"findash/internal/log"
)

func TestMiddlewareLogsLifecycle(t *testing.T) {
	var buf bytes.Buffer
	logger := log.New(log.Config{Level: slog.LevelDebug, Format: "text", Output: &buf})

	m := NewMiddleware(logger, func(*http.Request) string { return "203.0.113.9" })
	var fromCtx *log.Logger
	h := middleware.RequestID(m.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fromCtx = log.FromContext(r.Context())
		w.WriteHeader(http.StatusNotFound)
	})))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/missing", nil))

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, int64(1), m.TotalRequests())
	require.NotNil(t, fromCtx)

	out := buf.String()
	assert.Contains(t, out, "HTTP request started")
	assert.Contains(t, out, "HTTP request completed")
	assert.Contains(t, out, "level=WARN")
	assert.Contains(t, out, "client_ip=203.0.113.9")
	assert.Equal(t, 2, strings.Count(out, "request_id="))
}
