package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Guard names and outcomes used as label values.
const (
	GuardAuthenticate = "authenticate"
	GuardAuthorize    = "authorize"

	OutcomeAllow = "allow"
	OutcomeDeny  = "deny"
	OutcomeError = "error"
)

var (
	// Login metrics
	LoginAttempts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "accounts_login_attempts_total",
			Help: "Total number of login attempts",
		},
		[]string{"result"},
	)

	// Guard metrics
	GuardDecisions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "accounts_guard_decisions_total",
			Help: "Total number of authentication and authorization decisions",
		},
		[]string{"guard", "outcome"},
	)

	TokensRevoked = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "accounts_tokens_revoked_total",
			Help: "Total number of tokens revoked by logout",
		},
	)

	UsersCreated = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "accounts_users_created_total",
			Help: "Total number of users created",
		},
		[]string{"role"},
	)

	// HTTP metrics
	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "accounts_http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route", "status"},
	)
)

// Handler serves the default registry.
func Handler() http.Handler {
	return promhttp.Handler()
}
