package middleware

import (
	"compress/gzip"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestGZipCompresses(t *testing.T) {
	handler := GZip()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("hello gzip world"))
	}))

	req := httptest.NewRequest("GET", "/", nil)
	req.Header.Set("Accept-Encoding", "gzip")
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	if got := w.Header().Get("Content-Encoding"); got != "gzip" {
		t.Fatalf("Expected Content-Encoding %q, got %q", "gzip", got)
	}

	gr, err := gzip.NewReader(w.Body)
	if err != nil {
		t.Fatalf("Failed to create gzip reader: %v", err)
	}
	defer gr.Close()

	body, err := io.ReadAll(gr)
	if err != nil {
		t.Fatalf("Failed to decompress body: %v", err)
	}
	if string(body) != "hello gzip world" {
		t.Errorf("Expected decompressed body %q, got %q", "hello gzip world", string(body))
	}
}

func TestGZipSkipsWithoutAcceptEncoding(t *testing.T) {
	handler := GZip()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("plain"))
	}))

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest("GET", "/", nil))

	if got := w.Header().Get("Content-Encoding"); got != "" {
		t.Errorf("Expected no Content-Encoding, got %q", got)
	}
	if w.Body.String() != "plain" {
		t.Errorf("Expected body %q, got %q", "plain", w.Body.String())
	}
}

func TestGZipLeavesEncodedResponsesAlone(t *testing.T) {
	handler := GZip()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Encoding", "br")
		_, _ = w.Write([]byte("already-encoded"))
	}))

	req := httptest.NewRequest("GET", "/", nil)
	req.Header.Set("Accept-Encoding", "gzip")
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	if got := w.Header().Get("Content-Encoding"); got != "br" {
		t.Errorf("Expected Content-Encoding %q, got %q", "br", got)
	}
	if w.Body.String() != "already-encoded" {
		t.Errorf("Expected body to pass through untouched, got %q", w.Body.String())
	}
}
