package middlewares

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/messagely/server/internal/logger"
)

// RequireSameUser returns a middleware that compares the {username}
// URL parameter against the authenticated identity. A mismatch is
// unauthorized, same as a missing identity.
func RequireSameUser() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			current := GetUsernameFromContext(r.Context())
			requested := chi.URLParam(r, "username")

			if current == "" || current != requested {
				logger.Log.Infow("identity mismatch", "requested", requested, "current", current)
				writeUnauthorized(w, "not authorized")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
