package httputil

import (
	"context"
	"net/http"

	"github.com/statuskite/statuskite/internal/domain"
)

// CORSMiddleware creates CORS middleware that handles preflight requests
// and adds appropriate CORS headers to responses.
func CORSMiddleware(allowedOrigins []string) func(http.Handler) http.Handler {
	originsSet := make(map[string]bool, len(allowedOrigins))
	for _, o := range allowedOrigins {
		originsSet[o] = true
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			origin := r.Header.Get("Origin")

			if originsSet[origin] || originsSet["*"] {
				w.Header().Set("Access-Control-Allow-Origin", origin)
				w.Header().Set("Access-Control-Allow-Credentials", "true")
			}

			if r.Method == http.MethodOptions {
				w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")
				w.Header().Set("Access-Control-Allow-Headers", "Content-Type, X-User-ID")
				w.Header().Set("Access-Control-Max-Age", "86400")
				w.WriteHeader(http.StatusNoContent)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

type contextKey string

// ActorKey stores the acting user in the request context.
const ActorKey contextKey = "actor"

// ActorHeader carries the acting user's ID, injected by the fronting
// auth proxy. Authentication itself happens upstream of this service.
const ActorHeader = "X-User-ID"

// ActorResolver loads the acting user by ID.
type ActorResolver interface {
	GetUser(ctx context.Context, id string) (*domain.User, error)
}

// ActorMiddleware resolves the acting user from the ActorHeader and
// stores it in the request context. Requests without a resolvable,
// approved actor are rejected.
func ActorMiddleware(resolver ActorResolver) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			userID := r.Header.Get(ActorHeader)
			if userID == "" {
				Error(w, http.StatusUnauthorized, "missing "+ActorHeader+" header")
				return
			}

			user, err := resolver.GetUser(r.Context(), userID)
			if err != nil {
				Error(w, http.StatusUnauthorized, "unknown user")
				return
			}

			if !user.IsApproved() {
				Error(w, http.StatusForbidden, "membership not approved")
				return
			}

			ctx := context.WithValue(r.Context(), ActorKey, user)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireRole creates RBAC middleware.
func RequireRole(minRole domain.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			actor := Actor(r.Context())
			if actor == nil {
				Error(w, http.StatusUnauthorized, "unauthorized")
				return
			}

			if !actor.Role.HasPermission(minRole) {
				Error(w, http.StatusForbidden, "insufficient permissions")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// Actor extracts the acting user from context, or nil.
func Actor(ctx context.Context) *domain.User {
	if user, ok := ctx.Value(ActorKey).(*domain.User); ok {
		return user
	}
	return nil
}
