package httpapi

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"liftacademy-backend-go/internal/services"
)

func testGuardServer(entries map[string]services.GuardEntry) *Server {
	return &Server{
		Tokens: services.TokenService{
			Secret:     []byte("test-secret"),
			Issuer:     "liftacademy",
			AccessTTL:  time.Hour,
			RefreshTTL: 24 * time.Hour,
		},
		Guard: services.NewGuardCache(time.Minute, func(userID string) (services.GuardEntry, error) {
			if entry, ok := entries[userID]; ok {
				return entry, nil
			}
			return services.GuardEntry{}, services.ErrNotFound("User not found")
		}),
	}
}

func TestWithAuthAcceptsValidAccessToken(t *testing.T) {
	server := testGuardServer(map[string]services.GuardEntry{
		"user-1": {Status: "ACTIVE", Roles: []string{"CONTENT_ADMIN"}},
	})
	signed, _, err := server.Tokens.CreateAccessToken("user-1", "a@b.c", []string{"CONTENT_ADMIN"})
	if err != nil {
		t.Fatalf("token: %v", err)
	}

	var gotUserID string
	var gotRoles []string
	handler := server.WithAuth(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUserID = CurrentUserID(r)
		gotRoles = CurrentRoles(r)
		w.WriteHeader(http.StatusNoContent)
	}))

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/me", nil)
	req.Header.Set("Authorization", "Bearer "+signed)
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusNoContent {
		t.Fatalf("status = %d", rec.Code)
	}
	if gotUserID != "user-1" {
		t.Fatalf("user id = %q", gotUserID)
	}
	if len(gotRoles) != 1 || gotRoles[0] != "CONTENT_ADMIN" {
		t.Fatalf("roles = %v", gotRoles)
	}
}

func TestWithAuthRejectsMissingHeader(t *testing.T) {
	server := testGuardServer(nil)
	handler := server.WithAuth(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler should not run")
	}))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/me", nil))
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", rec.Code)
	}
}

func TestWithAuthRejectsRefreshToken(t *testing.T) {
	server := testGuardServer(map[string]services.GuardEntry{
		"user-1": {Status: "ACTIVE"},
	})
	signed, err := server.Tokens.CreateRefreshToken("user-1")
	if err != nil {
		t.Fatalf("token: %v", err)
	}
	handler := server.WithAuth(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler should not run")
	}))
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/me", nil)
	req.Header.Set("Authorization", "Bearer "+signed)
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", rec.Code)
	}
}

func TestWithAuthRejectsSuspendedAccount(t *testing.T) {
	server := testGuardServer(map[string]services.GuardEntry{
		"user-1": {Status: "SUSPENDED", Roles: []string{"MEMBER"}},
	})
	signed, _, err := server.Tokens.CreateAccessToken("user-1", "a@b.c", []string{"MEMBER"})
	if err != nil {
		t.Fatalf("token: %v", err)
	}
	handler := server.WithAuth(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler should not run")
	}))
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/me", nil)
	req.Header.Set("Authorization", "Bearer "+signed)
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", rec.Code)
	}
}

func TestWithAuthRejectsUnknownUser(t *testing.T) {
	server := testGuardServer(nil)
	signed, _, err := server.Tokens.CreateAccessToken("ghost", "a@b.c", nil)
	if err != nil {
		t.Fatalf("token: %v", err)
	}
	handler := server.WithAuth(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler should not run")
	}))
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/me", nil)
	req.Header.Set("Authorization", "Bearer "+signed)
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", rec.Code)
	}
}

func TestWithAuthUsesGuardRolesOverTokenClaims(t *testing.T) {
	// roles changed after the token was minted: the guard entry wins
	server := testGuardServer(map[string]services.GuardEntry{
		"user-1": {Status: "ACTIVE", Roles: []string{"MEMBER"}},
	})
	signed, _, err := server.Tokens.CreateAccessToken("user-1", "a@b.c", []string{"SUPER_ADMIN"})
	if err != nil {
		t.Fatalf("token: %v", err)
	}
	handler := server.WithAuth(RequireRole("SUPER_ADMIN")(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler should not run")
	})))
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/admin/users", nil)
	req.Header.Set("Authorization", "Bearer "+signed)
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("status = %d, want 403", rec.Code)
	}
}

func TestRequireAnyRole(t *testing.T) {
	server := testGuardServer(map[string]services.GuardEntry{
		"user-1": {Status: "ACTIVE", Roles: []string{"SUPPORT_ADMIN"}},
	})
	signed, _, err := server.Tokens.CreateAccessToken("user-1", "a@b.c", []string{"SUPPORT_ADMIN"})
	if err != nil {
		t.Fatalf("token: %v", err)
	}
	handler := server.WithAuth(RequireAnyRole("CONTENT_ADMIN", "SUPPORT_ADMIN")(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})))
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/admin/questions", nil)
	req.Header.Set("Authorization", "Bearer "+signed)
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("status = %d, want 204", rec.Code)
	}
}
