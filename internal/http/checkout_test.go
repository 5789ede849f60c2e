package httpapi

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"liftacademy-backend-go/internal/config"
)

func TestCheckoutCancelBuildsDeepLink(t *testing.T) {
	server := &Server{Config: config.Config{DeepLinkScheme: "liftacademy"}}
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/checkout/cancel?tier=ADVANCED", nil)
	server.CheckoutCancel(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var resp CheckoutOutcomeResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Outcome != "cancel" {
		t.Fatalf("outcome = %q", resp.Outcome)
	}
	if resp.DeepLink != "liftacademy://checkout/cancel?tier=ADVANCED" {
		t.Fatalf("deep link = %q", resp.DeepLink)
	}
}

func TestRecovererConvertsPanicTo500(t *testing.T) {
	handler := Recoverer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	}))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
		t.Fatalf("content type = %q", ct)
	}
}
