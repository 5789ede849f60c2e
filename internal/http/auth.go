package httpapi

import (
	"context"
	"net/http"
	"strings"

	"liftacademy-backend-go/internal/services"
)

type contextKey string

const (
	ctxUserID contextKey = "userID"
	ctxEmail  contextKey = "email"
	ctxRoles  contextKey = "roles"
)

// WithAuth validates the Bearer access token, then revalidates the account
// through the guard cache so a suspension or role change takes effect within
// one cache TTL even for live tokens. Any failure rejects the request.
func (s *Server) WithAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		auth := r.Header.Get("Authorization")
		if auth == "" || !strings.HasPrefix(auth, "Bearer ") {
			WriteError(w, http.StatusUnauthorized, "Authentication failed")
			return
		}
		tokenStr := strings.TrimSpace(strings.TrimPrefix(auth, "Bearer "))
		token, claims, err := s.Tokens.ParseToken(tokenStr)
		if err != nil || !token.Valid || claims["typ"] != "access" {
			WriteError(w, http.StatusUnauthorized, "Authentication failed")
			return
		}
		userID, _ := claims["sub"].(string)
		if userID == "" {
			WriteError(w, http.StatusUnauthorized, "Authentication failed")
			return
		}
		entry, err := s.Guard.Get(userID)
		if err != nil {
			WriteError(w, http.StatusUnauthorized, "Authentication failed")
			return
		}
		if entry.Status != "ACTIVE" {
			WriteError(w, http.StatusUnauthorized, "Account is not active")
			return
		}
		email, _ := claims["email"].(string)
		ctx := context.WithValue(r.Context(), ctxUserID, userID)
		ctx = context.WithValue(ctx, ctxEmail, email)
		ctx = context.WithValue(ctx, ctxRoles, entry.Roles)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func CurrentUserID(r *http.Request) string {
	if value, ok := r.Context().Value(ctxUserID).(string); ok {
		return value
	}
	return ""
}

func CurrentEmail(r *http.Request) string {
	if value, ok := r.Context().Value(ctxEmail).(string); ok {
		return value
	}
	return ""
}

func CurrentRoles(r *http.Request) []string {
	if value, ok := r.Context().Value(ctxRoles).([]string); ok {
		return value
	}
	return nil
}

func RequireRole(role string) func(http.Handler) http.Handler {
	role = strings.ToUpper(role)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			for _, code := range CurrentRoles(r) {
				if strings.ToUpper(code) == role {
					next.ServeHTTP(w, r)
					return
				}
			}
			WriteError(w, http.StatusForbidden, "Not allowed")
		})
	}
}

func RequireAnyRole(roles ...string) func(http.Handler) http.Handler {
	allowed := map[string]bool{}
	for _, role := range roles {
		allowed[strings.ToUpper(role)] = true
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			for _, code := range CurrentRoles(r) {
				if allowed[strings.ToUpper(code)] {
					next.ServeHTTP(w, r)
					return
				}
			}
			WriteError(w, http.StatusForbidden, "Not allowed")
		})
	}
}

func hasRole(roles []string, role string) bool {
	for _, code := range roles {
		if strings.EqualFold(code, role) {
			return true
		}
	}
	return false
}

func mapServiceError(w http.ResponseWriter, err error) bool {
	if err == nil {
		return false
	}
	if serr, ok := err.(services.ServiceError); ok {
		WriteError(w, serr.Status, serr.Message)
		return true
	}
	return false
}
