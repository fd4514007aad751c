package middleware

import (
	"net/http"
	"strconv"
	"strings"
)

// CORSConfig holds CORS configuration
type CORSConfig struct {
	AllowedOrigins   string
	AllowedMethods   string
	AllowedHeaders   string
	AllowCredentials bool
	MaxAge           int
}

// allowOrigin returns the value for Access-Control-Allow-Origin, or ""
// when the request origin is not in the comma-separated allow list.
func (c CORSConfig) allowOrigin(origin string) string {
	for _, allowed := range strings.Split(c.AllowedOrigins, ",") {
		allowed = strings.TrimSpace(allowed)
		switch {
		case allowed == "*" && !c.AllowCredentials:
			return "*"
		case allowed == "*" && origin != "":
			// credentials cannot be combined with a literal wildcard
			return origin
		case allowed != "" && strings.EqualFold(allowed, origin):
			return origin
		}
	}
	return ""
}

// CORS middleware adds CORS headers to responses
func CORS(config CORSConfig) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			origin := r.Header.Get("Origin")
			if allow := config.allowOrigin(origin); allow != "" {
				w.Header().Set("Access-Control-Allow-Origin", allow)
				if allow != "*" {
					w.Header().Add("Vary", "Origin")
				}
				w.Header().Set("Access-Control-Allow-Methods", config.AllowedMethods)
				w.Header().Set("Access-Control-Allow-Headers", config.AllowedHeaders)
				w.Header().Set("Access-Control-Expose-Headers", CorrelationHeader+", Content-Disposition")

				if config.AllowCredentials {
					w.Header().Set("Access-Control-Allow-Credentials", "true")
				}
				if config.MaxAge > 0 {
					w.Header().Set("Access-Control-Max-Age", strconv.Itoa(config.MaxAge))
				}
			}

			if r.Method == http.MethodOptions && r.Header.Get("Access-Control-Request-Method") != "" {
				w.WriteHeader(http.StatusNoContent)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
