package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/bazaarhq/bazaar/pkg/auth"
	"github.com/bazaarhq/bazaar/pkg/response"
)

// userKey is the unexported context key for the authenticated user ID.
type userKey struct{}

// UserID returns the authenticated user's ID from ctx, set by RequireAuth.
func UserID(ctx context.Context) string {
	if id, ok := ctx.Value(userKey{}).(string); ok {
		return id
	}
	return ""
}

// RequireAuth resolves the bearer access token from the Authorization
// header, verifies it, and stores the user ID in the request context.
func RequireAuth(issuer *auth.TokenIssuer) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")
			if token == "" {
				response.BadRequest(w, "Invalid Authentication")
				return
			}

			claims, err := issuer.VerifyAccess(token)
			if err != nil {
				response.Forbidden(w, "Invalid or expired token")
				return
			}

			ctx := context.WithValue(r.Context(), userKey{}, claims.UserID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireAdmin gates a route to admin users. roleOf resolves the stored
// role for the authenticated user; wire RequireAuth before this.
func RequireAdmin(roleOf func(ctx context.Context, userID string) (int, error)) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			role, err := roleOf(r.Context(), UserID(r.Context()))
			if err != nil {
				response.BadRequest(w, "User does not exist")
				return
			}
			if role != 1 {
				response.Forbidden(w, "Admin resources access denied")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
