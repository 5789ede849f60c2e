package httpapi

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestRateLimiterBurst(t *testing.T) {
	limiter := NewRateLimiter(60, 2)
	if !limiter.Allow("1.2.3.4") {
		t.Fatal("first request should pass")
	}
	if !limiter.Allow("1.2.3.4") {
		t.Fatal("second request should pass within burst")
	}
	if limiter.Allow("1.2.3.4") {
		t.Fatal("third request should be limited")
	}
	// other clients get their own bucket
	if !limiter.Allow("5.6.7.8") {
		t.Fatal("different key should pass")
	}
}

func TestRateLimiterSweep(t *testing.T) {
	limiter := NewRateLimiter(60, 2)
	limiter.Allow("1.2.3.4")
	limiter.Allow("5.6.7.8")
	if limiter.Len() != 2 {
		t.Fatalf("len = %d, want 2", limiter.Len())
	}
	limiter.Sweep(0)
	if limiter.Len() != 0 {
		t.Fatalf("len after sweep = %d, want 0", limiter.Len())
	}
}

func TestRateLimiterMiddleware(t *testing.T) {
	limiter := NewRateLimiter(60, 1)
	handler := limiter.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))

	first := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/auth/login", nil)
	req.RemoteAddr = "9.9.9.9:1234"
	handler.ServeHTTP(first, req)
	if first.Code != http.StatusNoContent {
		t.Fatalf("first status = %d", first.Code)
	}

	second := httptest.NewRecorder()
	handler.ServeHTTP(second, req)
	if second.Code != http.StatusTooManyRequests {
		t.Fatalf("second status = %d, want 429", second.Code)
	}
	if ct := second.Header().Get("Content-Type"); ct != "application/json" {
		t.Fatalf("content type = %q", ct)
	}
}

func TestClientIPPrefersForwardedFor(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "10.0.0.1:5555"
	req.Header.Set("X-Forwarded-For", "203.0.113.9, 10.0.0.1")
	if got := clientIP(req); got != "203.0.113.9" {
		t.Fatalf("clientIP = %q", got)
	}
	req.Header.Del("X-Forwarded-For")
	if got := clientIP(req); got != "10.0.0.1" {
		t.Fatalf("clientIP = %q", got)
	}
}
