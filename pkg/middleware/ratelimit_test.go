package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func loginRequest(remote string) *http.Request {
	req := httptest.NewRequest(http.MethodPost, "/api/auth/login", nil)
	req.RemoteAddr = remote
	return req
}

func TestRateLimit_WithinBurst_Pass(t *testing.T) {
	h := RateLimit(RateLimitConfig{RPS: 1, Burst: 5}, discardLogger())(okHandler)

	for i := 0; i < 5; i++ {
		rr := httptest.NewRecorder()
		h.ServeHTTP(rr, loginRequest("192.168.1.1:12345"))
		assert.Equal(t, http.StatusOK, rr.Code, "request %d should pass", i+1)
	}
}

func TestRateLimit_ExceedingBurst_Returns429Envelope(t *testing.T) {
	h := RateLimit(RateLimitConfig{RPS: 0.001, Burst: 2}, discardLogger())(okHandler)

	for i := 0; i < 2; i++ {
		rr := httptest.NewRecorder()
		h.ServeHTTP(rr, loginRequest("10.0.0.1:12345"))
		assert.Equal(t, http.StatusOK, rr.Code)
	}

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, loginRequest("10.0.0.1:12345"))
	assert.Equal(t, http.StatusTooManyRequests, rr.Code)
	assert.Contains(t, rr.Body.String(), `"code":"RATE_LIMITED"`)
	assert.Contains(t, rr.Body.String(), "Too many requests, try again later")
}

func TestRateLimit_DifferentIPs_IndependentLimits(t *testing.T) {
	h := RateLimit(RateLimitConfig{RPS: 0.001, Burst: 1}, discardLogger())(okHandler)

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, loginRequest("10.0.0.1:12345"))
	assert.Equal(t, http.StatusOK, rr.Code)

	rr = httptest.NewRecorder()
	h.ServeHTTP(rr, loginRequest("10.0.0.2:12345"))
	assert.Equal(t, http.StatusOK, rr.Code)
}

func TestRateLimit_Disabled_PassesThrough(t *testing.T) {
	h := RateLimit(RateLimitConfig{}, discardLogger())(okHandler)

	for i := 0; i < 50; i++ {
		rr := httptest.NewRecorder()
		h.ServeHTTP(rr, loginRequest("10.0.0.1:12345"))
		assert.Equal(t, http.StatusOK, rr.Code)
	}
}

func TestRateLimit_UntrustedForwardedForCannotRotateKey(t *testing.T) {
	h := RateLimit(RateLimitConfig{RPS: 0.001, Burst: 1}, discardLogger())(okHandler)

	codes := make([]int, 0, 2)
	for _, spoofed := range []string{"203.0.113.1", "203.0.113.2"} {
		req := loginRequest("10.0.0.1:12345")
		req.Header.Set("X-Forwarded-For", spoofed)
		rr := httptest.NewRecorder()
		h.ServeHTTP(rr, req)
		codes = append(codes, rr.Code)
	}

	assert.Equal(t, []int{http.StatusOK, http.StatusTooManyRequests}, codes)
}

func TestVisitorStore_SweepsIdleClients(t *testing.T) {
	now := time.Unix(1_700_000_000, 0)
	store := newVisitorStore(RateLimitConfig{RPS: 1, Burst: 1, IdleTTL: time.Minute})
	store.nowFunc = func() time.Time { return now }

	store.allow("10.0.0.1")
	store.allow("10.0.0.2")
	assert.Equal(t, 2, store.len())

	now = now.Add(2 * time.Minute)
	store.allow("10.0.0.3")
	assert.Equal(t, 1, store.len())
}

func TestClientIP(t *testing.T) {
	tests := []struct {
		name       string
		trustProxy bool
		headers    map[string]string
		want       string
	}{
		{"remote addr", false, nil, "10.0.0.1"},
		{"forwarded ignored when untrusted", false, map[string]string{"X-Forwarded-For": "203.0.113.50"}, "10.0.0.1"},
		{"first forwarded entry", true, map[string]string{"X-Forwarded-For": "203.0.113.50, 10.1.1.1"}, "203.0.113.50"},
		{"invalid forwarded skipped", true, map[string]string{"X-Forwarded-For": "unknown, 198.51.100.7"}, "198.51.100.7"},
		{"real ip", true, map[string]string{"X-Real-IP": "198.51.100.42"}, "198.51.100.42"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.RemoteAddr = "10.0.0.1:12345"
			for k, v := range tc.headers {
				req.Header.Set(k, v)
			}
			assert.Equal(t, tc.want, clientIP(req, tc.trustProxy))
		})
	}
}
