package auth

import (
	"net/http"
	"strings"
)

// Middleware provides HTTP middleware for bearer-token validation.
//
// Authentication is optional at this layer: a request without an
// Authorization header passes through anonymous, so reads like the recent
// workout list can answer with their empty-state payloads. A header that is
// present but fails validation is rejected here with 401. Handlers that
// mutate state check for an identity themselves.
type Middleware struct {
	Config Config
}

// NewMiddleware constructs the middleware.
func NewMiddleware(cfg Config) Middleware {
	return Middleware{Config: cfg}
}

// Wrap attaches identity resolution to an http.Handler.
func (m Middleware) Wrap(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		if header == "" {
			next.ServeHTTP(w, r)
			return
		}

		if !strings.HasPrefix(strings.ToLower(header), "bearer ") {
			http.Error(w, ErrInvalidToken.Error(), http.StatusUnauthorized)
			return
		}

		ident, err := Parse(strings.TrimSpace(header[len("Bearer "):]), m.Config)
		if err != nil {
			http.Error(w, err.Error(), http.StatusUnauthorized)
			return
		}

		next.ServeHTTP(w, r.WithContext(WithIdentity(r.Context(), ident)))
	})
}
