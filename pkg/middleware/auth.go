package middleware

import (
	"net/http"
	"strings"

	"github.com/Suhaibinator/SKernel/pkg/common"
	"github.com/golang-jwt/jwt/v5"
)

// Auth validates requests with either a static API key or a JWT bearer token.
// It carries no authorization policy of its own; it only checks that the
// presented credential is valid.
type Auth struct {
	apiKeys   map[string]bool
	jwtSecret []byte
}

// NewAuth creates an Auth middleware with the given API keys and JWT signing secret.
func NewAuth(apiKeys []string, jwtSecret string) *Auth {
	keys := make(map[string]bool, len(apiKeys))
	for _, k := range apiKeys {
		keys[k] = true
	}
	return &Auth{
		apiKeys:   keys,
		jwtSecret: []byte(jwtSecret),
	}
}

// Middleware returns the auth middleware. The X-API-Key header is checked
// first, then Authorization: Bearer <JWT>. Invalid or missing credentials get
// a 401 Unauthorized.
func (a *Auth) Middleware() common.Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if key := r.Header.Get("X-API-Key"); key != "" {
				if a.apiKeys[key] {
					next.ServeHTTP(w, r)
					return
				}
				http.Error(w, "Invalid API Key", http.StatusUnauthorized)
				return
			}

			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				http.Error(w, "Unauthorized", http.StatusUnauthorized)
				return
			}

			tokenString := strings.TrimPrefix(authHeader, "Bearer ")
			if tokenString == authHeader {
				http.Error(w, "Invalid Authorization Header", http.StatusUnauthorized)
				return
			}

			token, err := jwt.Parse(tokenString, func(token *jwt.Token) (any, error) {
				return a.jwtSecret, nil
			})
			if err != nil || !token.Valid {
				http.Error(w, "Invalid Token", http.StatusUnauthorized)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
