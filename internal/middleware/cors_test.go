package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCORS(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	tests := []struct {
		name           string
		config         CORSConfig
		origin         string
		method         string
		preflight      bool
		expectedOrigin string
		expectedMaxAge string
		expectedStatus int
		expectedBody   string
	}{
		{
			name: "exact origin match",
			config: CORSConfig{
				AllowedOrigins:   []string{"https://example.com"},
				AllowedMethods:   []string{"GET", "POST"},
				AllowedHeaders:   []string{"Content-Type"},
				AllowCredentials: true,
				MaxAge:           600,
			},
			origin:         "https://example.com",
			method:         http.MethodGet,
			expectedOrigin: "https://example.com",
			expectedMaxAge: "600",
			expectedStatus: http.StatusOK,
			expectedBody:   "OK",
		},
		{
			name:           "wildcard subdomain match",
			config:         DefaultCORSConfig([]string{"*.example.com"}),
			origin:         "https://app.example.com",
			method:         http.MethodGet,
			expectedOrigin: "https://app.example.com",
			expectedMaxAge: "300",
			expectedStatus: http.StatusOK,
			expectedBody:   "OK",
		},
		{
			name:           "wildcard subdomain does not match apex",
			config:         DefaultCORSConfig([]string{"*.example.com"}),
			origin:         "https://example.com",
			method:         http.MethodGet,
			expectedStatus: http.StatusOK,
			expectedBody:   "OK",
		},
		{
			name:           "origin not in allowed list",
			config:         DefaultCORSConfig([]string{"https://example.com"}),
			origin:         "https://evil.com",
			method:         http.MethodGet,
			expectedStatus: http.StatusOK,
			expectedBody:   "OK",
		},
		{
			name:           "any origin",
			config:         DefaultCORSConfig([]string{"*"}),
			origin:         "https://anything.test",
			method:         http.MethodGet,
			expectedOrigin: "https://anything.test",
			expectedMaxAge: "300",
			expectedStatus: http.StatusOK,
			expectedBody:   "OK",
		},
		{
			name:           "preflight short-circuits",
			config:         DefaultCORSConfig([]string{"https://example.com"}),
			origin:         "https://example.com",
			method:         http.MethodOptions,
			preflight:      true,
			expectedOrigin: "https://example.com",
			expectedMaxAge: "300",
			expectedStatus: http.StatusNoContent,
		},
		{
			name:           "no origin header",
			config:         DefaultCORSConfig([]string{"https://example.com"}),
			method:         http.MethodGet,
			expectedStatus: http.StatusOK,
			expectedBody:   "OK",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, "/auth/login", nil)
			if tt.origin != "" {
				req.Header.Set("Origin", tt.origin)
			}
			if tt.preflight {
				req.Header.Set("Access-Control-Request-Method", http.MethodPost)
			}
			w := httptest.NewRecorder()

			CORS(tt.config)(handler).ServeHTTP(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
			assert.Equal(t, tt.expectedBody, w.Body.String())
			assert.Equal(t, tt.expectedOrigin, w.Header().Get("Access-Control-Allow-Origin"))
			assert.Equal(t, tt.expectedMaxAge, w.Header().Get("Access-Control-Max-Age"))
			if tt.expectedOrigin != "" {
				assert.NotEmpty(t, w.Header().Get("Access-Control-Allow-Methods"))
			}
		})
	}
}

func TestDefaultCORSConfig(t *testing.T) {
	cfg := DefaultCORSConfig([]string{"https://example.com"})
	assert.Contains(t, cfg.AllowedHeaders, "Authorization")
	assert.Contains(t, cfg.AllowedMethods, http.MethodPatch)
	assert.False(t, cfg.AllowCredentials)
}
