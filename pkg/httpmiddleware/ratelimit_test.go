package httpmiddleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func doRequest(h http.Handler, remoteAddr string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = remoteAddr
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func TestRateLimit_AllowsUnderLimit(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	h := RateLimit(ctx, RateLimitConfig{Max: 3, Window: time.Minute})(okHandler())

	for i := range 3 {
		w := doRequest(h, "10.0.0.1:1234")
		assert.Equal(t, http.StatusOK, w.Code, "request %d", i)
	}
}

func TestRateLimit_BlocksOverLimit(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	h := RateLimit(ctx, RateLimitConfig{Max: 2, Window: time.Minute})(okHandler())

	doRequest(h, "10.0.0.1:1234")
	doRequest(h, "10.0.0.1:1234")
	w := doRequest(h, "10.0.0.1:1234")

	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))
	assert.NotEmpty(t, w.Header().Get("Retry-After"))
	assert.Equal(t, "0", w.Header().Get("X-RateLimit-Remaining"))
}

func TestRateLimit_PerClientIsolation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	h := RateLimit(ctx, RateLimitConfig{Max: 1, Window: time.Minute})(okHandler())

	assert.Equal(t, http.StatusOK, doRequest(h, "10.0.0.1:1234").Code)
	assert.Equal(t, http.StatusTooManyRequests, doRequest(h, "10.0.0.1:1234").Code)

	// A different client has its own budget.
	assert.Equal(t, http.StatusOK, doRequest(h, "10.0.0.2:1234").Code)
}

func TestRateLimit_Headers(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	h := RateLimit(ctx, RateLimitConfig{Max: 10, Window: time.Minute})(okHandler())

	w := doRequest(h, "10.0.0.1:1234")
	assert.Equal(t, "10", w.Header().Get("X-RateLimit-Limit"))
	assert.Equal(t, "9", w.Header().Get("X-RateLimit-Remaining"))
	assert.NotEmpty(t, w.Header().Get("X-RateLimit-Reset"))
}

func TestRateLimit_CustomKeyFunc(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	h := RateLimit(ctx, RateLimitConfig{
		Max:    1,
		Window: time.Minute,
		KeyFunc: func(r *http.Request) string {
			return r.Header.Get("X-API-Client")
		},
	})(okHandler())

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-API-Client", "client-a")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)

	w = httptest.NewRecorder()
	h.ServeHTTP(w, req)
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
}

func TestRateLimiter_WindowRotation(t *testing.T) {
	rl := &rateLimiter{
		cfg:     RateLimitConfig{Max: 2, Window: time.Minute},
		clients: make(map[string]*window),
	}

	start := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	_, _, allowed := rl.allow("c", start)
	require.True(t, allowed)
	_, _, allowed = rl.allow("c", start.Add(time.Second))
	require.True(t, allowed)
	_, _, allowed = rl.allow("c", start.Add(2*time.Second))
	require.False(t, allowed)

	// Well past two full windows the previous counts no longer weigh in.
	_, _, allowed = rl.allow("c", start.Add(3*time.Minute))
	assert.True(t, allowed)
}

func TestRateLimiter_SlidingWeight(t *testing.T) {
	rl := &rateLimiter{
		cfg:     RateLimitConfig{Max: 10, Window: time.Minute},
		clients: make(map[string]*window),
	}

	start := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	for i := range 10 {
		_, _, allowed := rl.allow("c", start.Add(time.Duration(i)*time.Second))
		require.True(t, allowed, "request %d", i)
	}

	// Just into the next interval most of the previous interval still
	// overlaps the sliding window: barely one request fits, the next is
	// blocked.
	_, _, allowed := rl.allow("c", start.Add(time.Minute+time.Second))
	require.True(t, allowed)
	_, _, allowed = rl.allow("c", start.Add(time.Minute+2*time.Second))
	assert.False(t, allowed)

	// Near the end of the next interval the overlap has decayed enough to
	// admit new requests.
	_, _, allowed = rl.allow("c", start.Add(2*time.Minute-time.Second))
	assert.True(t, allowed)
}

func TestRateLimiter_Cleanup(t *testing.T) {
	rl := &rateLimiter{
		cfg:     RateLimitConfig{Max: 5, Window: time.Minute},
		clients: make(map[string]*window),
	}

	start := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	rl.allow("a", start)
	rl.allow("b", start.Add(90*time.Second))

	rl.cleanup(start.Add(2 * time.Minute))

	rl.mu.Lock()
	defer rl.mu.Unlock()
	assert.NotContains(t, rl.clients, "a")
	assert.Contains(t, rl.clients, "b")
}

func TestClientIP(t *testing.T) {
	tests := []struct {
		name       string
		remoteAddr string
		headers    map[string]string
		want       string
	}{
		{"remote addr", "192.168.1.5:4567", nil, "192.168.1.5"},
		{"x-forwarded-for single", "10.0.0.1:80", map[string]string{"X-Forwarded-For": "203.0.113.9"}, "203.0.113.9"},
		{"x-forwarded-for chain", "10.0.0.1:80", map[string]string{"X-Forwarded-For": "203.0.113.9, 10.0.0.2"}, "203.0.113.9"},
		{"x-real-ip", "10.0.0.1:80", map[string]string{"X-Real-IP": "198.51.100.4"}, "198.51.100.4"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.RemoteAddr = tt.remoteAddr
			for k, v := range tt.headers {
				req.Header.Set(k, v)
			}
			assert.Equal(t, tt.want, clientIP(req))
		})
	}
}
