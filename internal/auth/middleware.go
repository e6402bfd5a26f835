package auth

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/simpletodo/api/internal/httputil"
	"github.com/simpletodo/api/internal/logging"
	"github.com/simpletodo/api/internal/user"
)

// ContextKey is a type for context keys to avoid collisions
type ContextKey string

const UserContextKey ContextKey = "auth_user"

// Middleware handles authentication for protected routes
type Middleware struct {
	service *Service
}

func NewMiddleware(service *Service) *Middleware {
	return &Middleware{service: service}
}

// RequireAuth rejects requests without a valid bearer token. A missing or
// malformed Authorization header fails immediately, before any token
// verification. On success the resolved user is attached to the request
// context for downstream handlers.
func (m *Middleware) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			httputil.RespondErrorWithCode(w, "unauthorized: missing authorization header", httputil.CodeMissingAuth, http.StatusUnauthorized)
			return
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			httputil.RespondErrorWithCode(w, "unauthorized: invalid authorization header format", httputil.CodeInvalidAuthHeader, http.StatusUnauthorized)
			return
		}

		resolved, err := m.service.ResolveToken(r.Context(), parts[1])
		if err != nil {
			// The failure kind is logged; the caller only learns it was
			// unauthorized.
			logger := logging.GetLoggerFromContext(r.Context())
			logger.Warn("token resolution failed", "error", err.Error())

			if errors.Is(err, ErrTokenExpired) {
				httputil.RespondErrorWithCode(w, "unauthorized: token has expired", httputil.CodeTokenExpired, http.StatusUnauthorized)
				return
			}
			httputil.RespondErrorWithCode(w, "unauthorized: invalid token", httputil.CodeInvalidToken, http.StatusUnauthorized)
			return
		}

		ctx := context.WithValue(r.Context(), UserContextKey, resolved)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// UserFromContext extracts the resolved user from the request context
func UserFromContext(ctx context.Context) (*user.User, bool) {
	u, ok := ctx.Value(UserContextKey).(*user.User)
	return u, ok
}
