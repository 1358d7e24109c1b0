package middleware

import (
	"context"
	"net/http"

	"github.com/lesechos/accounts/internal/httputil"
	"github.com/lesechos/accounts/internal/logging"
	"github.com/lesechos/accounts/internal/models"
)

// Authenticator resolves and re-checks the caller. *service.AuthService
// implements it.
type Authenticator interface {
	Authenticate(ctx context.Context, authHeader string) (*models.User, error)
	Authorize(ctx context.Context, user *models.User, roles []models.Role) (*models.User, error)
}

// Guard enforces authentication and role checks on routes.
type Guard struct {
	auth Authenticator
	log  *logging.Logger
}

func NewGuard(auth Authenticator, log *logging.Logger) *Guard {
	return &Guard{auth: auth, log: log}
}

// Authenticate rejects requests without a valid, unrevoked bearer token and
// attaches the token's user to the request context.
func (g *Guard) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, err := g.auth.Authenticate(r.Context(), r.Header.Get("Authorization"))
		if err != nil {
			httputil.WriteServiceError(w, r, g.log, err)
			return
		}
		next.ServeHTTP(w, r.WithContext(WithUser(r.Context(), user)))
	})
}

// RequireRoles lets the request through when the caller's current role is
// one of roles. It must run after Authenticate. The freshly loaded user
// replaces the one in the context.
func (g *Guard) RequireRoles(roles ...models.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if len(roles) == 0 {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user, err := g.auth.Authorize(r.Context(), UserFromContext(r.Context()), roles)
			if err != nil {
				httputil.WriteServiceError(w, r, g.log, err)
				return
			}
			next.ServeHTTP(w, r.WithContext(WithUser(r.Context(), user)))
		})
	}
}

// Protect is Authenticate followed by RequireRoles.
func (g *Guard) Protect(h http.Handler, roles ...models.Role) http.Handler {
	return g.Authenticate(g.RequireRoles(roles...)(h))
}
