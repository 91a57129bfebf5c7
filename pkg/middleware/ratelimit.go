package middleware

import (
	"net/http"
	"sync"

	"github.com/Suhaibinator/SKernel/pkg/common"
	"go.uber.org/ratelimit"
	"go.uber.org/zap"
)

// RateLimit creates a middleware that paces requests to at most rps per
// second per client IP using Uber's leaky-bucket limiter. Requests above the
// rate are delayed, not rejected, which smooths bursts without dropping
// traffic.
func RateLimit(rps int, logger *zap.Logger) common.Middleware {
	if rps < 1 {
		rps = 1
	}

	var (
		mu       sync.Mutex
		limiters = make(map[string]ratelimit.Limiter)
	)

	limiterFor := func(key string) ratelimit.Limiter {
		mu.Lock()
		defer mu.Unlock()
		if limiter, ok := limiters[key]; ok {
			return limiter
		}
		limiter := ratelimit.New(rps)
		limiters[key] = limiter
		return limiter
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := ClientIP(r)
			if key == "" {
				key = stripPort(r.RemoteAddr)
			}

			limiter := limiterFor(key)
			limiter.Take()

			logger.Debug("Rate limiter passed request",
				zap.String("client_ip", key),
				zap.String("path", r.URL.Path),
			)

			next.ServeHTTP(w, r)
		})
	}
}
