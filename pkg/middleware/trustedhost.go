package middleware

import (
	"net"
	"net/http"
	"strings"

	"github.com/Suhaibinator/SKernel/pkg/common"
)

// TrustedHost creates a middleware that rejects requests whose Host header is
// not in the allowed list. Patterns may be exact hosts, "*.domain" wildcards,
// or "*" to allow everything. Requests with untrusted hosts get a 400.
func TrustedHost(allowedHosts []string) common.Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			host := requestHost(r)

			if !hostAllowed(host, allowedHosts) {
				http.Error(w, "Invalid host header", http.StatusBadRequest)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// requestHost returns the request host with any port stripped.
func requestHost(r *http.Request) string {
	host := r.Host
	if h, _, err := net.SplitHostPort(host); err == nil {
		return h
	}
	return host
}

func hostAllowed(host string, patterns []string) bool {
	for _, pattern := range patterns {
		if pattern == "*" || pattern == host {
			return true
		}
		if suffix, ok := strings.CutPrefix(pattern, "*."); ok {
			if strings.HasSuffix(host, "."+suffix) || host == suffix {
				return true
			}
		}
	}
	return false
}
