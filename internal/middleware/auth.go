package middleware

import (
	"context"
	"log"
	"net/http"
	"strings"

	"sci-cast/internal/models"
)

type contextKey string

// UserContextKey is the key for the authenticated user in the request
// context.
const UserContextKey = contextKey("user")

// TokenVerifier resolves a bearer token to a user.
type TokenVerifier interface {
	Verify(ctx context.Context, token string) (*models.User, error)
}

// Auth validates the Authorization bearer token and stores the resolved
// user in the request context. A nil verifier means auth is not
// configured for this deployment and every protected request is
// rejected.
func Auth(verifier TokenVerifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if verifier == nil {
				http.Error(w, "Authentication is not configured", http.StatusInternalServerError)
				return
			}

			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				http.Error(w, "Authorization header is required", http.StatusUnauthorized)
				return
			}

			parts := strings.Split(authHeader, " ")
			if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
				http.Error(w, "Authorization header format must be 'Bearer <token>'", http.StatusUnauthorized)
				return
			}

			user, err := verifier.Verify(r.Context(), parts[1])
			if err != nil {
				log.Printf("token verification failed: %v", err)
				http.Error(w, "Invalid or expired token", http.StatusUnauthorized)
				return
			}

			ctx := context.WithValue(r.Context(), UserContextKey, user)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// UserFrom extracts the authenticated user from the context.
func UserFrom(ctx context.Context) (*models.User, bool) {
	user, ok := ctx.Value(UserContextKey).(*models.User)
	return user, ok
}
