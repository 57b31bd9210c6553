// Package middleware provides HTTP middleware for the extraction API.
package middleware

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/knowron/foss-api/internal/extract"
)

// AuthConfig holds API-key authentication settings.
type AuthConfig struct {
	Enabled bool
	APIKey  string
}

// Auth returns middleware that checks the Authorization header against the
// configured API key. Rejections carry the uniform error envelope with a 403
// status; the header value itself never appears in the response.
func Auth(cfg AuthConfig, envelopes *extract.EnvelopeBuilder) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !cfg.Enabled {
				next.ServeHTTP(w, r)
				return
			}

			if r.Header.Get("Authorization") != cfg.APIKey {
				e := envelopes.ForRequest(r, "", http.StatusForbidden,
					errors.New("could not validate credentials"))
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusForbidden)
				_ = json.NewEncoder(w).Encode(e)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
