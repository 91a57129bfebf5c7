package middleware

import (
	"compress/gzip"
	"net/http"
	"strings"

	"github.com/Suhaibinator/SKernel/pkg/common"
)

// GZip creates a middleware that compresses responses for clients that accept
// gzip encoding. Responses that already carry a Content-Encoding are left alone.
func GZip() common.Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !strings.Contains(r.Header.Get("Accept-Encoding"), "gzip") {
				next.ServeHTTP(w, r)
				return
			}

			gz := gzip.NewWriter(w)
			gzw := &gzipResponseWriter{ResponseWriter: w, writer: gz}
			next.ServeHTTP(gzw, r)

			// Closing an unused gzip.Writer would still emit framing
			// bytes, so only close when the body was compressed.
			if gzw.wroteHeader && !gzw.passthrough {
				_ = gz.Close()
			}
		})
	}
}

// gzipResponseWriter compresses the body while delegating headers and status
// to the underlying writer.
type gzipResponseWriter struct {
	http.ResponseWriter
	writer      *gzip.Writer
	wroteHeader bool
	passthrough bool
}

// WriteHeader sets the encoding headers before the status line goes out.
// Content-Length would describe the uncompressed body, so it is dropped.
func (gzw *gzipResponseWriter) WriteHeader(statusCode int) {
	if gzw.wroteHeader {
		return
	}
	gzw.wroteHeader = true

	if gzw.Header().Get("Content-Encoding") != "" {
		gzw.passthrough = true
	} else {
		gzw.Header().Set("Content-Encoding", "gzip")
		gzw.Header().Del("Content-Length")
		gzw.Header().Add("Vary", "Accept-Encoding")
	}
	gzw.ResponseWriter.WriteHeader(statusCode)
}

func (gzw *gzipResponseWriter) Write(b []byte) (int, error) {
	if !gzw.wroteHeader {
		gzw.WriteHeader(http.StatusOK)
	}
	if gzw.passthrough {
		return gzw.ResponseWriter.Write(b)
	}
	return gzw.writer.Write(b)
}

// Flush flushes the compressor and the underlying writer if it supports it.
func (gzw *gzipResponseWriter) Flush() {
	_ = gzw.writer.Flush()
	if f, ok := gzw.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}
