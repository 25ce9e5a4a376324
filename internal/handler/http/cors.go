package http

import (
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"balanced-news/pkg/config"
)

// CORSConfig holds the CORS policy applied to cross-origin requests.
type CORSConfig struct {
	// AllowedOrigins is a whitelist of permitted origins. The single entry
	// "*" allows every origin. The request origin is echoed back instead of
	// a literal "*" so credentialed requests keep working.
	AllowedOrigins []string

	// AllowedMethods and AllowedHeaders are advertised on preflight responses.
	AllowedMethods []string
	AllowedHeaders []string

	// MaxAge is how long (seconds) a preflight result may be cached.
	MaxAge int
}

// DefaultCORSConfig permits every origin, mirroring the permissive policy
// the frontend development setup expects.
func DefaultCORSConfig() CORSConfig {
	return CORSConfig{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "PATCH", "OPTIONS"},
		AllowedHeaders: []string{"Content-Type", "Authorization", "X-Request-ID"},
		MaxAge:         86400,
	}
}

// LoadCORSConfig builds the CORS policy from environment variables,
// falling back to the permissive defaults.
//
// Environment variables:
//   - CORS_ALLOWED_ORIGINS: comma-separated origins, or "*"
//   - CORS_ALLOWED_METHODS: comma-separated HTTP methods
//   - CORS_ALLOWED_HEADERS: comma-separated request headers
//   - CORS_MAX_AGE_SECONDS: preflight cache lifetime
func LoadCORSConfig() CORSConfig {
	def := DefaultCORSConfig()
	return CORSConfig{
		AllowedOrigins: config.GetEnvStringList("CORS_ALLOWED_ORIGINS", def.AllowedOrigins),
		AllowedMethods: config.GetEnvStringList("CORS_ALLOWED_METHODS", def.AllowedMethods),
		AllowedHeaders: config.GetEnvStringList("CORS_ALLOWED_HEADERS", def.AllowedHeaders),
		MaxAge:         config.GetEnvInt("CORS_MAX_AGE_SECONDS", def.MaxAge),
	}
}

func (c CORSConfig) allows(origin string) bool {
	for _, o := range c.AllowedOrigins {
		if o == "*" || o == origin {
			return true
		}
	}
	return false
}

// CORS returns middleware that handles cross-origin requests.
//
// Behavior:
//   - Empty Origin header (same-origin request): pass through untouched.
//   - Disallowed origin: no CORS headers are set; the browser blocks the
//     response. The request itself still runs.
//   - Allowed origin: the origin is echoed back with credentials enabled.
//     Preflight OPTIONS requests are answered with 204 without reaching
//     the next handler.
func CORS(cfg CORSConfig) func(http.Handler) http.Handler {
	allowMethods := strings.Join(cfg.AllowedMethods, ", ")
	allowHeaders := strings.Join(cfg.AllowedHeaders, ", ")
	maxAge := strconv.Itoa(cfg.MaxAge)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			origin := r.Header.Get("Origin")
			if origin == "" {
				next.ServeHTTP(w, r)
				return
			}

			// キャッシュが Origin ごとに分かれるようにする
			w.Header().Add("Vary", "Origin")

			if !cfg.allows(origin) {
				slog.Warn("CORS: origin not allowed",
					slog.String("origin", origin),
					slog.String("path", r.URL.Path),
					slog.String("method", r.Method))
				next.ServeHTTP(w, r)
				return
			}

			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Set("Access-Control-Allow-Credentials", "true")

			if r.Method == http.MethodOptions {
				w.Header().Set("Access-Control-Allow-Methods", allowMethods)
				w.Header().Set("Access-Control-Allow-Headers", allowHeaders)
				w.Header().Set("Access-Control-Max-Age", maxAge)
				w.WriteHeader(http.StatusNoContent)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
