package middleware

import (
	"context"
	"net"
	"net/http"
	"strings"

	"github.com/Suhaibinator/SKernel/pkg/common"
)

// IPSourceType defines the source for client IP addresses
type IPSourceType string

const (
	// IPSourceRemoteAddr uses the request's RemoteAddr field
	IPSourceRemoteAddr IPSourceType = "remote_addr"

	// IPSourceXForwardedFor uses the X-Forwarded-For header
	IPSourceXForwardedFor IPSourceType = "x_forwarded_for"

	// IPSourceXRealIP uses the X-Real-IP header
	IPSourceXRealIP IPSourceType = "x_real_ip"
)

// IPConfig defines configuration for client IP extraction
type IPConfig struct {
	// Source specifies where to extract the client IP from
	Source IPSourceType

	// TrustProxy determines whether to trust proxy headers like X-Forwarded-For.
	// If false, RemoteAddr is used for all sources.
	TrustProxy bool
}

// DefaultIPConfig returns the default IP configuration
func DefaultIPConfig() *IPConfig {
	return &IPConfig{
		Source:     IPSourceXForwardedFor,
		TrustProxy: true,
	}
}

type clientIPKey struct{}

// ClientIP extracts the client IP from the request context.
// Returns an empty string if no client IP middleware ran.
func ClientIP(r *http.Request) string {
	if ip, ok := r.Context().Value(clientIPKey{}).(string); ok {
		return ip
	}
	return ""
}

// ClientIPMiddleware creates a middleware that extracts the client IP from
// the request and stores it in the request context for downstream middleware.
func ClientIPMiddleware(config *IPConfig) common.Middleware {
	if config == nil {
		config = DefaultIPConfig()
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			clientIP := extractClientIP(r, config)

			ctx := context.WithValue(r.Context(), clientIPKey{}, clientIP)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// extractClientIP extracts the client IP from the request based on the configuration
func extractClientIP(r *http.Request, config *IPConfig) string {
	var ip string

	if config.TrustProxy {
		switch config.Source {
		case IPSourceXForwardedFor:
			ip = firstForwardedIP(r)
		case IPSourceXRealIP:
			ip = r.Header.Get("X-Real-IP")
		}
	}

	if ip == "" {
		ip = r.RemoteAddr
	}

	return stripPort(ip)
}

// firstForwardedIP returns the leftmost entry of X-Forwarded-For, which is
// the original client in a well-behaved proxy chain.
func firstForwardedIP(r *http.Request) string {
	xff := r.Header.Get("X-Forwarded-For")
	if xff == "" {
		return ""
	}
	return strings.TrimSpace(strings.Split(xff, ",")[0])
}

// stripPort removes the port from an address if one is present.
func stripPort(addr string) string {
	if host, _, err := net.SplitHostPort(addr); err == nil {
		return host
	}
	return addr
}
