package middleware

import (
	"net/http"

	"github.com/sellorama/sellorama/internal/domain"
	"github.com/sellorama/sellorama/internal/repository"
)

// SessionHeader carries the opaque session token issued at login.
const SessionHeader = "session_id"

// WithUser resolves the session_id header into an identity and attaches
// it to the request context. Requests without a valid session pass
// through unauthenticated; RequireUser gates the protected routes.
func WithUser(users domain.UserService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := r.Header.Get(SessionHeader)
			if token == "" {
				next.ServeHTTP(w, r)
				return
			}

			sessionID, err := repository.ParseUUID(token)
			if err != nil {
				next.ServeHTTP(w, r)
				return
			}

			identity, err := users.Resolve(r.Context(), sessionID)
			if err != nil {
				next.ServeHTTP(w, r)
				return
			}

			ctx := domain.NewContextWithIdentity(r.Context(), identity)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireUser rejects requests that do not carry an authenticated identity.
func RequireUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if domain.IdentityFromContext(r.Context()) == nil {
			respondUnauthorized(w, r)
			return
		}
		next.ServeHTTP(w, r)
	})
}
