package middlewares

import (
	"context"
	"encoding/json"
	"net/http"

	jwtpkg "github.com/messagely/server/internal/jwt"
	"github.com/messagely/server/internal/logger"
	"github.com/messagely/server/internal/models"
)

// Tokener defines the minimal token interface needed by the middleware.
type Tokener interface {
	GetTokenFromRequest(ctx context.Context, r *http.Request) (string, error)
	GetClaims(ctx context.Context, tokenString string) (*jwtpkg.Claims, error)
}

// contextKey is an unexported type for keys in context
type contextKey struct{}

var usernameKey = contextKey{}

// setUsernameToContext stores the authenticated username in the context
func setUsernameToContext(ctx context.Context, username string) context.Context {
	return context.WithValue(ctx, usernameKey, username)
}

// GetUsernameFromContext retrieves the authenticated username from the
// context. Returns "" if the request never passed the auth gate.
func GetUsernameFromContext(ctx context.Context) string {
	username, _ := ctx.Value(usernameKey).(string)
	return username
}

// writeUnauthorized writes the canonical 401 error envelope.
func writeUnauthorized(w http.ResponseWriter, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	json.NewEncoder(w).Encode(models.NewErrorResponse(http.StatusUnauthorized, message))
}

// AuthMiddleware returns a middleware that verifies the bearer token
// and attaches the authenticated username to the request context. No
// request reaches the wrapped handler without a verified identity.
func AuthMiddleware(tokener Tokener) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()

			tokenString, err := tokener.GetTokenFromRequest(ctx, r)
			if err != nil {
				logger.Log.Infow("authentication failed", "err", err)
				writeUnauthorized(w, "authentication required")
				return
			}

			claims, err := tokener.GetClaims(ctx, tokenString)
			if err != nil {
				logger.Log.Infow("authentication failed", "err", err)
				writeUnauthorized(w, "invalid or expired token")
				return
			}

			ctx = setUsernameToContext(ctx, claims.Username)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
