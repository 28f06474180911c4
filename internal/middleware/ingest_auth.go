package middleware

import (
	"crypto/subtle"
	"net/http"
	"strings"

	"github.com/modwarden/warden-api/internal/pkg/response"
)

// IngestAuth guards the connector-facing ingest endpoint with a shared
// bearer token. An empty configured token disables the endpoint entirely
// rather than leaving it open.
func IngestAuth(token string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if token == "" {
				response.Unauthorized(w, "Ingest endpoint is not configured")
				return
			}

			header := r.Header.Get("Authorization")
			presented, ok := strings.CutPrefix(header, "Bearer ")
			if !ok {
				response.Unauthorized(w, "Missing bearer token")
				return
			}

			if subtle.ConstantTimeCompare([]byte(presented), []byte(token)) != 1 {
				response.Unauthorized(w, "Invalid bearer token")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
