package middleware

import (
	"context"
	"net/http"

	"github.com/Suhaibinator/SKernel/pkg/common"
	"github.com/google/uuid"
)

type traceIDKey struct{}

// TraceIDKey is the key used to store the trace ID in the request context
var TraceIDKey = traceIDKey{}

// Trace creates a middleware that attaches a unique trace ID to each request.
// An incoming X-Trace-ID header is reused so IDs survive proxy hops; otherwise
// a new UUID is generated. The ID is stored in the request context and echoed
// in the response header.
func Trace() common.Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			traceID := r.Header.Get("X-Trace-ID")
			if traceID == "" {
				traceID = uuid.New().String()
			}

			w.Header().Set("X-Trace-ID", traceID)

			ctx := context.WithValue(r.Context(), TraceIDKey, traceID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// GetTraceID extracts the trace ID from the request context.
// Returns an empty string if no trace ID is found.
func GetTraceID(r *http.Request) string {
	return GetTraceIDFromContext(r.Context())
}

// GetTraceIDFromContext extracts the trace ID from a context.
// Returns an empty string if no trace ID is found.
func GetTraceIDFromContext(ctx context.Context) string {
	if traceID, ok := ctx.Value(TraceIDKey).(string); ok {
		return traceID
	}
	return ""
}
