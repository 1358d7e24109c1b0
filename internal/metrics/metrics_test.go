package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestCounters(t *testing.T) {
	before := testutil.ToFloat64(GuardDecisions.WithLabelValues(GuardAuthorize, OutcomeDeny))
	GuardDecisions.WithLabelValues(GuardAuthorize, OutcomeDeny).Inc()
	assert.Equal(t, before+1, testutil.ToFloat64(GuardDecisions.WithLabelValues(GuardAuthorize, OutcomeDeny)))

	revoked := testutil.ToFloat64(TokensRevoked)
	TokensRevoked.Inc()
	assert.Equal(t, revoked+1, testutil.ToFloat64(TokensRevoked))
}

func TestHandler(t *testing.T) {
	LoginAttempts.WithLabelValues("success").Inc()
	HTTPRequestDuration.WithLabelValues("GET", "/auth/me", "200").Observe(0.01)

	w := httptest.NewRecorder()
	Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()
	assert.Contains(t, body, "accounts_login_attempts_total")
	assert.Contains(t, body, "accounts_http_request_duration_seconds")
}
