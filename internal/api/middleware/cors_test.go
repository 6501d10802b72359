package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/dom/snake-game-api/internal/api/middleware"
	"github.com/dom/snake-game-api/internal/config"
	"github.com/stretchr/testify/assert"
)

func TestCORS(t *testing.T) {
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	})

	credentialed := config.CORSConfig{
		AllowOrigins:     []string{"http://localhost:5173"},
		AllowCredentials: true,
		AllowMethods:     []string{"GET", "POST"},
		AllowHeaders:     []string{"Authorization", "Content-Type"},
	}
	wildcard := config.CORSConfig{
		AllowOrigins: []string{"*"},
		AllowMethods: []string{"GET"},
		AllowHeaders: []string{"*"},
	}

	tests := []struct {
		name          string
		cfg           config.CORSConfig
		method        string
		origin        string
		requestMethod string
		requestHeader string
		wantStatus    int
		wantOrigin    string
		wantCreds     string
		wantMethods   string
		wantHeaders   string
	}{
		{
			name:       "allowed origin",
			cfg:        credentialed,
			method:     http.MethodGet,
			origin:     "http://localhost:5173",
			wantStatus: http.StatusTeapot,
			wantOrigin: "http://localhost:5173",
			wantCreds:  "true",
		},
		{
			name:       "disallowed origin",
			cfg:        credentialed,
			method:     http.MethodGet,
			origin:     "http://evil.example",
			wantStatus: http.StatusTeapot,
		},
		{
			name:       "no origin",
			cfg:        credentialed,
			method:     http.MethodGet,
			wantStatus: http.StatusTeapot,
		},
		{
			name:          "preflight",
			cfg:           credentialed,
			method:        http.MethodOptions,
			origin:        "http://localhost:5173",
			requestMethod: "POST",
			wantStatus:    http.StatusOK,
			wantOrigin:    "http://localhost:5173",
			wantCreds:     "true",
			wantMethods:   "GET, POST",
			wantHeaders:   "Authorization, Content-Type",
		},
		{
			name:       "wildcard without credentials",
			cfg:        wildcard,
			method:     http.MethodGet,
			origin:     "http://anywhere.example",
			wantStatus: http.StatusTeapot,
			wantOrigin: "*",
		},
		{
			name:          "wildcard headers echo the request",
			cfg:           wildcard,
			method:        http.MethodOptions,
			origin:        "http://anywhere.example",
			requestMethod: "GET",
			requestHeader: "X-Custom",
			wantStatus:    http.StatusOK,
			wantOrigin:    "*",
			wantMethods:   "GET",
			wantHeaders:   "X-Custom",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, "/api/test", nil)
			if tt.origin != "" {
				req.Header.Set("Origin", tt.origin)
			}
			if tt.requestMethod != "" {
				req.Header.Set("Access-Control-Request-Method", tt.requestMethod)
			}
			if tt.requestHeader != "" {
				req.Header.Set("Access-Control-Request-Headers", tt.requestHeader)
			}
			rec := httptest.NewRecorder()

			middleware.CORS(tt.cfg)(next).ServeHTTP(rec, req)

			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.Equal(t, tt.wantOrigin, rec.Header().Get("Access-Control-Allow-Origin"))
			assert.Equal(t, tt.wantCreds, rec.Header().Get("Access-Control-Allow-Credentials"))
			assert.Equal(t, tt.wantMethods, rec.Header().Get("Access-Control-Allow-Methods"))
			assert.Equal(t, tt.wantHeaders, rec.Header().Get("Access-Control-Allow-Headers"))
		})
	}
}
