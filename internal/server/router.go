package server

import (
	"net/http"

	"github.com/lesechos/accounts/internal/handlers"
	"github.com/lesechos/accounts/internal/logging"
	"github.com/lesechos/accounts/internal/middleware"
	"github.com/lesechos/accounts/internal/models"
)

// Route is one entry in the route table. Non-public routes run the
// authentication guard, then the role guard when Roles is non-empty.
type Route struct {
	Pattern string
	Handler http.Handler
	Public  bool
	Roles   []models.Role
}

// Handlers groups everything the router dispatches to.
type Handlers struct {
	Auth    *handlers.AuthHandler
	Users   *handlers.UserHandler
	Health  http.Handler
	Metrics http.Handler
}

var (
	anyRole   = []models.Role{models.RoleUser, models.RoleAdmin}
	adminOnly = []models.Role{models.RoleAdmin}
)

// Routes returns the API route table.
func Routes(h Handlers) []Route {
	routes := []Route{
		{Pattern: "POST /auth/login", Handler: http.HandlerFunc(h.Auth.Login), Public: true},
		{Pattern: "GET /auth/me", Handler: http.HandlerFunc(h.Auth.Me), Roles: anyRole},
		{Pattern: "POST /auth/logout", Handler: http.HandlerFunc(h.Auth.Logout), Roles: anyRole},

		{Pattern: "POST /users", Handler: http.HandlerFunc(h.Users.Register), Public: true},
		{Pattern: "PATCH /users/me", Handler: http.HandlerFunc(h.Users.UpdateMe), Roles: anyRole},

		{Pattern: "GET /users/admin", Handler: http.HandlerFunc(h.Users.List), Roles: adminOnly},
		{Pattern: "POST /users/admin", Handler: http.HandlerFunc(h.Users.Create), Roles: adminOnly},
		{Pattern: "GET /users/admin/{id}", Handler: http.HandlerFunc(h.Users.Get), Roles: adminOnly},
		{Pattern: "PATCH /users/admin/{id}", Handler: http.HandlerFunc(h.Users.Update), Roles: adminOnly},
		{Pattern: "DELETE /users/admin/{id}", Handler: http.HandlerFunc(h.Users.Delete), Roles: adminOnly},
	}

	if h.Health != nil {
		routes = append(routes, Route{Pattern: "GET /healthz", Handler: h.Health, Public: true})
	}
	if h.Metrics != nil {
		routes = append(routes, Route{Pattern: "GET /metrics", Handler: h.Metrics, Public: true})
	}
	return routes
}

// NewRouter constructs a ServeMux with the route table registered and the
// common middleware chain applied.
func NewRouter(h Handlers, guard *middleware.Guard, log *logging.Logger, cors middleware.CORSConfig) http.Handler {
	mux := http.NewServeMux()
	for _, route := range Routes(h) {
		handler := route.Handler
		if !route.Public {
			handler = guard.Protect(handler, route.Roles...)
		}
		mux.Handle(route.Pattern, handler)
	}

	var handler http.Handler = mux
	handler = middleware.RequestLogger(log)(handler)
	handler = middleware.CORS(cors)(handler)
	handler = middleware.ClientInfo(handler)
	handler = middleware.RequestID(handler)
	return handler
}
