package kernel

import (
	"net/http"

	"github.com/Suhaibinator/SKernel/pkg/common"
)

// blockedDetail is the body sent when a guard blocks a request.
const blockedDetail = "Request blocked by middleware."

// Guard is a per-route precondition built from a middleware. It returns true
// when the request may proceed to the handler. Guards let middleware behavior
// be attached to individual endpoints after the application is already wired.
type Guard func(http.ResponseWriter, *http.Request) bool

// noopHandler is the "next" used when probing a middleware as a guard.
// It does nothing, so anything the probe writes came from the middleware.
var noopHandler = http.HandlerFunc(func(http.ResponseWriter, *http.Request) {})

// Dependency resolves ref and adapts it into a Guard. The middleware runs
// against a no-op next; if it writes a response (short-circuits), the guard
// blocks the request with the captured status code and a fixed detail body.
// Header-only mutations do not block.
func (k *Kernel) Dependency(ref any, args map[string]any) (Guard, error) {
	mw, err := k.Resolve(ref, args)
	if err != nil {
		return nil, err
	}
	probe := mw(noopHandler)

	return func(w http.ResponseWriter, r *http.Request) bool {
		rec := &guardRecorder{header: make(http.Header), statusCode: http.StatusOK}
		probe.ServeHTTP(rec, r)
		if !rec.wrote {
			return true
		}
		http.Error(w, blockedDetail, rec.statusCode)
		return false
	}, nil
}

// WithGuards composes guards in front of a handler. Guards run in list order
// and the first blocking guard ends the request.
func WithGuards(handler http.HandlerFunc, guards ...Guard) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		for _, guard := range guards {
			if !guard(w, r) {
				return
			}
		}
		handler(w, r)
	}
}

// RouteMiddleware resolves ref and returns a decorator that applies the
// middleware to a single handler. This is the route-level counterpart of
// registering the middleware globally.
func (k *Kernel) RouteMiddleware(ref any, args map[string]any) (func(http.HandlerFunc) http.HandlerFunc, error) {
	mw, err := k.Resolve(ref, args)
	if err != nil {
		return nil, err
	}
	return func(handler http.HandlerFunc) http.HandlerFunc {
		return mw(handler).ServeHTTP
	}, nil
}

// Chain applies middlewares to a handler in list order, the first middleware
// being the outermost wrapper.
func Chain(handler http.Handler, middlewares ...common.Middleware) http.Handler {
	return common.MiddlewareChain(middlewares).Then(handler)
}

// guardRecorder captures a middleware's attempt to respond without letting
// anything reach the real response writer.
type guardRecorder struct {
	header     http.Header
	statusCode int
	wrote      bool
}

func (g *guardRecorder) Header() http.Header {
	return g.header
}

func (g *guardRecorder) WriteHeader(statusCode int) {
	if !g.wrote {
		g.statusCode = statusCode
		g.wrote = true
	}
}

func (g *guardRecorder) Write(b []byte) (int, error) {
	g.wrote = true
	return len(b), nil
}
