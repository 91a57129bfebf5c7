package app

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/Suhaibinator/SKernel/pkg/common"
	"go.uber.org/zap"
)

func tagMiddleware(order *[]string, name string) common.Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			*order = append(*order, name)
			next.ServeHTTP(w, r)
		})
	}
}

func TestRouteMatchingAndParams(t *testing.T) {
	a := New(WithLogger(zap.NewNop()))
	a.Handle("GET", "/users/:id", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("User ID: " + GetParam(r, "id")))
	})

	server := httptest.NewServer(a)
	defer server.Close()

	resp, err := http.Get(server.URL + "/users/123")
	if err != nil {
		t.Fatalf("Failed to send request: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Errorf("Expected status code %d, got %d", http.StatusOK, resp.StatusCode)
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("Failed to read response body: %v", err)
	}
	if string(body) != "User ID: 123" {
		t.Errorf("Expected response body %q, got %q", "User ID: 123", string(body))
	}
}

func TestMiddlewareOrdering(t *testing.T) {
	var order []string

	a := New(WithLogger(zap.NewNop()))
	a.Use(tagMiddleware(&order, "global"))

	g := a.Group("/api", tagMiddleware(&order, "group"))
	g.Handle("GET", "/ping", func(w http.ResponseWriter, r *http.Request) {
		order = append(order, "handler")
		w.WriteHeader(http.StatusOK)
	}, tagMiddleware(&order, "route"))

	w := httptest.NewRecorder()
	a.ServeHTTP(w, httptest.NewRequest("GET", "/api/ping", nil))

	if w.Code != http.StatusOK {
		t.Fatalf("Expected status %d, got %d", http.StatusOK, w.Code)
	}
	expected := []string{"global", "group", "route", "handler"}
	if len(order) != len(expected) {
		t.Fatalf("Expected order %v, got %v", expected, order)
	}
	for i, name := range expected {
		if order[i] != name {
			t.Errorf("Expected order[%d] to be %q, got %q", i, name, order[i])
		}
	}
}

func TestGroupUse(t *testing.T) {
	var order []string

	a := New(WithLogger(zap.NewNop()))
	g := a.Group("/api")
	g.Use(tagMiddleware(&order, "group"))
	g.Handle("GET", "/ping", func(w http.ResponseWriter, r *http.Request) {
		order = append(order, "handler")
	})

	a.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest("GET", "/api/ping", nil))

	if len(order) != 2 || order[0] != "group" || order[1] != "handler" {
		t.Errorf("Expected group middleware before handler, got %v", order)
	}
}

func TestRecoveryIsAlwaysInstalled(t *testing.T) {
	a := New(WithLogger(zap.NewNop()))
	a.Handle("GET", "/panic", func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	})

	w := httptest.NewRecorder()
	a.ServeHTTP(w, httptest.NewRequest("GET", "/panic", nil))

	if w.Code != http.StatusInternalServerError {
		t.Errorf("Expected status %d, got %d", http.StatusInternalServerError, w.Code)
	}
}

func TestUseAfterServeIsIgnored(t *testing.T) {
	var order []string

	a := New(WithLogger(zap.NewNop()))
	a.Handle("GET", "/ping", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	a.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest("GET", "/ping", nil))

	a.Use(tagMiddleware(&order, "late"))

	a.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest("GET", "/ping", nil))
	if len(order) != 0 {
		t.Errorf("Expected late middleware to be ignored, but it ran: %v", order)
	}
}

func TestShutdownRejectsNewRequests(t *testing.T) {
	a := New(WithLogger(zap.NewNop()))
	a.Handle("GET", "/ping", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	// Warm up so the chain is built before shutdown.
	a.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest("GET", "/ping", nil))

	if err := a.Shutdown(context.Background()); err != nil {
		t.Fatalf("Expected shutdown to succeed, got %v", err)
	}

	w := httptest.NewRecorder()
	a.ServeHTTP(w, httptest.NewRequest("GET", "/ping", nil))
	if w.Code != http.StatusServiceUnavailable {
		t.Errorf("Expected status %d after shutdown, got %d", http.StatusServiceUnavailable, w.Code)
	}
}

func TestNotFoundDelegatesToRouter(t *testing.T) {
	a := New(WithLogger(zap.NewNop()))
	a.Handle("GET", "/known", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	w := httptest.NewRecorder()
	a.ServeHTTP(w, httptest.NewRequest("GET", "/unknown", nil))
	if w.Code != http.StatusNotFound {
		t.Errorf("Expected status %d, got %d", http.StatusNotFound, w.Code)
	}
}
