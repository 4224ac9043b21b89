package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func corsRequest(t *testing.T, cfg CORSConfig, method, origin string, preflight bool) *httptest.ResponseRecorder {
	t.Helper()

	handler := CORS(cfg)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(method, "/jobs", nil)
	if origin != "" {
		req.Header.Set("Origin", origin)
	}
	if preflight {
		req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	}
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func TestCORS(t *testing.T) {
	tests := []struct {
		name           string
		allowedOrigins []string
		requestOrigin  string
		method         string
		preflight      bool
		wantStatus     int
		wantHeader     string
	}{
		{
			name:          "no origins configured blocks all",
			requestOrigin: "https://careers.example.edu",
			method:        http.MethodGet,
			wantStatus:    http.StatusOK,
		},
		{
			name:           "allowed origin gets header",
			allowedOrigins: []string{"https://careers.example.edu"},
			requestOrigin:  "https://careers.example.edu",
			method:         http.MethodGet,
			wantStatus:     http.StatusOK,
			wantHeader:     "https://careers.example.edu",
		},
		{
			name:           "disallowed origin blocked on preflight",
			allowedOrigins: []string{"https://careers.example.edu"},
			requestOrigin:  "https://evil.test",
			method:         http.MethodOptions,
			preflight:      true,
			wantStatus:     http.StatusForbidden,
		},
		{
			name:           "preflight returns no content",
			allowedOrigins: []string{"https://careers.example.edu"},
			requestOrigin:  "https://careers.example.edu",
			method:         http.MethodOptions,
			preflight:      true,
			wantStatus:     http.StatusNoContent,
			wantHeader:     "https://careers.example.edu",
		},
		{
			name:           "plain OPTIONS is passed through",
			allowedOrigins: []string{"https://careers.example.edu"},
			requestOrigin:  "https://careers.example.edu",
			method:         http.MethodOptions,
			wantStatus:     http.StatusOK,
			wantHeader:     "https://careers.example.edu",
		},
		{
			name:           "case insensitive origin match",
			allowedOrigins: []string{"HTTPS://CAREERS.EXAMPLE.EDU"},
			requestOrigin:  "https://careers.example.edu",
			method:         http.MethodGet,
			wantStatus:     http.StatusOK,
			wantHeader:     "https://careers.example.edu",
		},
		{
			name:           "wildcard matches subdomain",
			allowedOrigins: []string{"*.example.edu"},
			requestOrigin:  "https://jobs.cs.example.edu",
			method:         http.MethodGet,
			wantStatus:     http.StatusOK,
			wantHeader:     "https://jobs.cs.example.edu",
		},
		{
			name:           "wildcard rejects bare domain",
			allowedOrigins: []string{"*.example.edu"},
			requestOrigin:  "https://example.edu",
			method:         http.MethodGet,
			wantStatus:     http.StatusOK,
		},
		{
			name:           "wildcard rejects lookalike",
			allowedOrigins: []string{"*.example.edu"},
			requestOrigin:  "https://notexample.edu",
			method:         http.MethodGet,
			wantStatus:     http.StatusOK,
		},
		{
			name:           "no origin header skips CORS",
			allowedOrigins: []string{"https://careers.example.edu"},
			method:         http.MethodGet,
			wantStatus:     http.StatusOK,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultCORSConfig()
			cfg.AllowedOrigins = tt.allowedOrigins

			rec := corsRequest(t, cfg, tt.method, tt.requestOrigin, tt.preflight)

			if rec.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", rec.Code, tt.wantStatus)
			}

			got := rec.Header().Get("Access-Control-Allow-Origin")
			if got != tt.wantHeader {
				t.Errorf("Access-Control-Allow-Origin = %q, want %q", got, tt.wantHeader)
			}
		})
	}
}

func TestCORSPreflightHeaders(t *testing.T) {
	cfg := DefaultCORSConfig()
	cfg.AllowedOrigins = []string{"https://careers.example.edu"}

	rec := corsRequest(t, cfg, http.MethodOptions, "https://careers.example.edu", true)

	if got := rec.Header().Get("Access-Control-Allow-Methods"); !strings.Contains(got, "PATCH") {
		t.Errorf("Access-Control-Allow-Methods = %q, want PATCH listed", got)
	}
	if got := rec.Header().Get("Access-Control-Allow-Headers"); !strings.Contains(got, "Authorization") {
		t.Errorf("Access-Control-Allow-Headers = %q, want Authorization listed", got)
	}
	if got := rec.Header().Get("Access-Control-Max-Age"); got != "86400" {
		t.Errorf("Access-Control-Max-Age = %q, want 86400", got)
	}
	if vary := rec.Header().Values("Vary"); len(vary) != 3 {
		t.Errorf("Vary = %v, want Origin plus both request headers", vary)
	}
}

func TestCORSExposesRateLimitHeaders(t *testing.T) {
	cfg := DefaultCORSConfig()
	cfg.AllowedOrigins = []string{"https://careers.example.edu"}

	rec := corsRequest(t, cfg, http.MethodGet, "https://careers.example.edu", false)

	exposed := rec.Header().Get("Access-Control-Expose-Headers")
	for _, h := range []string{"X-RateLimit-Remaining", "Retry-After", "X-Request-ID"} {
		if !strings.Contains(exposed, h) {
			t.Errorf("Access-Control-Expose-Headers = %q, missing %s", exposed, h)
		}
	}
	if rec.Header().Get("Access-Control-Allow-Credentials") != "" {
		t.Error("credentials must not be allowed by default")
	}
}
