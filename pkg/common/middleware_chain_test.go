package common

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestMiddlewareChain(t *testing.T) {
	chain := NewMiddlewareChain()

	// Add middleware that adds headers
	chain = chain.Append(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Add("X-Test-1", "value1")
			next.ServeHTTP(w, r)
		})
	})

	chain = chain.Append(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Add("X-Test-2", "value2")
			next.ServeHTTP(w, r)
		})
	})

	finalHandler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Add("X-Final", "final")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})

	handler := chain.Then(finalHandler)

	req := httptest.NewRequest("GET", "http://example.com/foo", nil)
	w := httptest.NewRecorder()

	handler.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("Expected status code %d, got %d", http.StatusOK, w.Code)
	}
	if w.Header().Get("X-Test-1") != "value1" {
		t.Errorf("Expected X-Test-1 header to be %q, got %q", "value1", w.Header().Get("X-Test-1"))
	}
	if w.Header().Get("X-Test-2") != "value2" {
		t.Errorf("Expected X-Test-2 header to be %q, got %q", "value2", w.Header().Get("X-Test-2"))
	}
	if w.Header().Get("X-Final") != "final" {
		t.Errorf("Expected X-Final header to be %q, got %q", "final", w.Header().Get("X-Final"))
	}
	if w.Body.String() != "OK" {
		t.Errorf("Expected body %q, got %q", "OK", w.Body.String())
	}
}

func TestMiddlewareChainOrder(t *testing.T) {
	chain := NewMiddlewareChain()

	var order []string

	chain = chain.Append(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			order = append(order, "middleware1-before")
			next.ServeHTTP(w, r)
			order = append(order, "middleware1-after")
		})
	})

	chain = chain.Append(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			order = append(order, "middleware2-before")
			next.ServeHTTP(w, r)
			order = append(order, "middleware2-after")
		})
	})

	finalHandler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		order = append(order, "final-handler")
		w.WriteHeader(http.StatusOK)
	})

	handler := chain.Then(finalHandler)

	req := httptest.NewRequest("GET", "http://example.com/foo", nil)
	w := httptest.NewRecorder()

	handler.ServeHTTP(w, req)

	expected := []string{
		"middleware1-before",
		"middleware2-before",
		"final-handler",
		"middleware2-after",
		"middleware1-after",
	}
	if len(order) != len(expected) {
		t.Fatalf("Expected %d entries in order, got %d: %v", len(expected), len(order), order)
	}
	for i, step := range expected {
		if order[i] != step {
			t.Errorf("Expected order[%d] to be %q, got %q", i, step, order[i])
		}
	}
}

func TestMiddlewareChainPrepend(t *testing.T) {
	var order []string

	tag := func(name string) Middleware {
		return func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				order = append(order, name)
				next.ServeHTTP(w, r)
			})
		}
	}

	chain := NewMiddlewareChain(tag("second"), tag("third"))
	chain = chain.Prepend(tag("first"))

	handler := chain.Then(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest("GET", "http://example.com/", nil)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	expected := []string{"first", "second", "third"}
	for i, step := range expected {
		if order[i] != step {
			t.Errorf("Expected order[%d] to be %q, got %q", i, step, order[i])
		}
	}
}

func TestMiddlewareChainEmpty(t *testing.T) {
	chain := NewMiddlewareChain()

	handler := chain.Then(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))

	req := httptest.NewRequest("GET", "http://example.com/", nil)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	if w.Code != http.StatusTeapot {
		t.Errorf("Expected status code %d, got %d", http.StatusTeapot, w.Code)
	}
}
