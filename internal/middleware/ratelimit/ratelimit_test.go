package ratelimit

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func newTestLimiter(perMinute int) (*Limiter, *time.Time) {
	rl := NewLimiter(Config{Policy: "login", RequestsPerMinute: perMinute})
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	rl.now = func() time.Time { return now }
	return rl, &now
}

func TestAllowBurstThenRefill(t *testing.T) {
	rl, now := newTestLimiter(5)
	defer rl.Stop()

	for i := 0; i < 5; i++ {
		assert.True(t, rl.Allow("10.0.0.1"), "request %d", i+1)
	}
	assert.False(t, rl.Allow("10.0.0.1"))
	assert.True(t, rl.Allow("10.0.0.2"), "other clients have their own bucket")

	*now = now.Add(12 * time.Second)
	assert.True(t, rl.Allow("10.0.0.1"))
	assert.False(t, rl.Allow("10.0.0.1"))

	*now = now.Add(time.Minute)
	for i := 0; i < 5; i++ {
		assert.True(t, rl.Allow("10.0.0.1"))
	}
}

func TestCleanupStaleEntries(t *testing.T) {
	rl, now := newTestLimiter(5)
	defer rl.Stop()

	rl.Allow("a")
	*now = now.Add(5 * time.Minute)
	rl.Allow("b")
	*now = now.Add(6 * time.Minute)

	assert.Equal(t, 1, rl.cleanupStaleEntries())
	assert.Equal(t, 1, rl.ActiveClients())
}

func TestMiddleware(t *testing.T) {
	rl, _ := newTestLimiter(1)
	defer rl.Stop()

	var limited int
	h := rl.Middleware(
		func(r *http.Request) string { return r.RemoteAddr },
		func(w http.ResponseWriter, r *http.Request) {
			limited++
			w.WriteHeader(http.StatusTooManyRequests)
		},
	)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))

	req := httptest.NewRequest(http.MethodPost, "/api/auth/login", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "60", rec.Header().Get("Retry-After"))
	assert.Equal(t, 1, limited)
}

func TestStopIsIdempotent(t *testing.T) {
	rl := NewLimiter(Config{})
	assert.Equal(t, "api", rl.Policy())
	rl.Stop()
	rl.Stop()
}
