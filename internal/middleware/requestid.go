package middleware

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/lesechos/accounts/internal/audit"
	"github.com/lesechos/accounts/internal/httputil"
	"github.com/lesechos/accounts/internal/logging"
)

const RequestIDHeader = "X-Request-ID"

// RequestID propagates X-Request-ID or generates one, echoes it on the
// response and stores it in the request context for logging.
func RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := r.Header.Get(RequestIDHeader)
		if requestID == "" {
			requestID = uuid.New().String()
		}

		w.Header().Set(RequestIDHeader, requestID)

		ctx := logging.WithRequestID(r.Context(), requestID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// ClientInfo records the caller's IP and user agent for audit records.
func ClientInfo(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := audit.WithRequestInfo(r.Context(), audit.RequestInfo{
			IP:        httputil.GetClientIP(r),
			UserAgent: r.UserAgent(),
		})
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
