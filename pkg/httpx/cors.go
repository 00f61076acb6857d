package httpx

import (
	"net/http"
	"strings"
)

// CORSConfig controls cross-origin handling for the public endpoints.
type CORSConfig struct {
	// AllowedOrigins is the exact-match origin allow-list.
	AllowedOrigins []string
	// AllowLocalhost additionally permits any http://localhost[:port] and
	// http://127.0.0.1[:port] origin. Must be off in production.
	AllowLocalhost bool
}

var (
	corsMethods = "POST, GET, OPTIONS"
	corsHeaders = "Content-Type, Authorization, X-Request-ID"
)

// CORSMiddleware answers preflight requests and sets allow headers for
// approved origins. Requests without an Origin header pass straight through.
func CORSMiddleware(cfg CORSConfig) Middleware {
	allowed := make(map[string]struct{}, len(cfg.AllowedOrigins))
	for _, o := range cfg.AllowedOrigins {
		allowed[strings.TrimRight(o, "/")] = struct{}{}
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			origin := r.Header.Get("Origin")
			if origin == "" {
				next.ServeHTTP(w, r)
				return
			}

			if originAllowed(origin, allowed, cfg.AllowLocalhost) {
				h := w.Header()
				h.Set("Vary", "Origin")
				h.Set("Access-Control-Allow-Origin", origin)
				h.Set("Access-Control-Allow-Methods", corsMethods)
				h.Set("Access-Control-Allow-Headers", corsHeaders)
				h.Set("Access-Control-Allow-Credentials", "true")
			}

			if r.Method == http.MethodOptions {
				w.WriteHeader(http.StatusNoContent)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func originAllowed(origin string, allowed map[string]struct{}, allowLocalhost bool) bool {
	origin = strings.TrimRight(origin, "/")
	if _, ok := allowed[origin]; ok {
		return true
	}
	if allowLocalhost && isLocalhostOrigin(origin) {
		return true
	}
	return false
}

func isLocalhostOrigin(origin string) bool {
	for _, prefix := range []string{"http://localhost", "http://127.0.0.1"} {
		if origin == prefix || strings.HasPrefix(origin, prefix+":") {
			return true
		}
	}
	return false
}
