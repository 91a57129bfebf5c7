// Package app adapts a julienschmidt/httprouter application to the kernel.
// Routing stays httprouter's job; this package only composes middleware
// chains around handlers and provides graceful shutdown.
package app

import (
	"context"
	"net/http"
	"sync"
	"sync/atomic"

	"github.com/Suhaibinator/SKernel/pkg/common"
	"github.com/Suhaibinator/SKernel/pkg/middleware"
	"github.com/julienschmidt/httprouter"
	"go.uber.org/zap"
)

// contextKey is a type for context keys.
type contextKey string

// ParamsKey is the key used to store httprouter.Params in the request context.
// This allows route parameters to be accessed from handlers and middleware.
const ParamsKey contextKey = "params"

// App wraps an httprouter.Router with a middleware chain composed at
// start-up. Global middleware added with Use applies to every route; group
// and route middleware wrap individual handlers at registration time.
type App struct {
	router *httprouter.Router
	logger *zap.Logger

	chain common.MiddlewareChain

	buildOnce sync.Once
	started   atomic.Bool
	handler   http.Handler

	wg         sync.WaitGroup
	shutdown   bool
	shutdownMu sync.RWMutex
}

// Option configures an App.
type Option func(*App)

// WithLogger sets the logger used by the app and its recovery middleware.
func WithLogger(logger *zap.Logger) Option {
	return func(a *App) {
		a.logger = logger
	}
}

// New creates an App around a fresh httprouter.Router.
func New(opts ...Option) *App {
	a := &App{
		router: httprouter.New(),
	}
	for _, opt := range opts {
		opt(a)
	}
	if a.logger == nil {
		logger, err := zap.NewProduction()
		if err != nil {
			logger = zap.NewNop()
		}
		a.logger = logger
	}
	return a
}

// Use appends middleware to the global chain. The chain is composed on first
// serve, so Use calls after the app starts serving have no effect.
func (a *App) Use(middlewares ...common.Middleware) {
	if a.built() {
		a.logger.Warn("Use called after app started serving; middleware ignored",
			zap.Int("count", len(middlewares)),
		)
		return
	}
	a.chain = a.chain.Append(middlewares...)
}

// Handle registers a route. Route middlewares wrap the handler in list order
// inside the global chain.
func (a *App) Handle(method, path string, handler http.HandlerFunc, middlewares ...common.Middleware) {
	h := common.MiddlewareChain(middlewares).Then(handler)
	a.router.Handle(method, path, func(w http.ResponseWriter, req *http.Request, ps httprouter.Params) {
		ctx := context.WithValue(req.Context(), ParamsKey, ps)
		h.ServeHTTP(w, req.WithContext(ctx))
	})
}

// Group returns a registrar for routes sharing a path prefix and middleware.
func (a *App) Group(prefix string, middlewares ...common.Middleware) *Group {
	return &Group{
		app:         a,
		prefix:      prefix,
		middlewares: middlewares,
	}
}

// ServeHTTP implements http.Handler. The first request composes the global
// chain: recovery first, then Use order.
func (a *App) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	a.buildOnce.Do(func() {
		chain := a.chain.Prepend(middleware.Recovery(a.logger))
		a.handler = chain.Then(a.router)
		a.started.Store(true)
	})

	a.wg.Add(1)

	a.shutdownMu.RLock()
	isShutdown := a.shutdown
	a.shutdownMu.RUnlock()

	if isShutdown {
		a.wg.Done()
		http.Error(w, "Service Unavailable", http.StatusServiceUnavailable)
		return
	}
	defer a.wg.Done()

	a.handler.ServeHTTP(w, req)
}

// Shutdown gracefully shuts down the app. It stops accepting new requests and
// waits for in-flight requests to complete, or for the context to end.
func (a *App) Shutdown(ctx context.Context) error {
	a.shutdownMu.Lock()
	a.shutdown = true
	a.shutdownMu.Unlock()

	done := make(chan struct{})
	go func() {
		a.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (a *App) built() bool {
	return a.started.Load()
}

// Group registers routes under a shared prefix with shared middleware.
type Group struct {
	app         *App
	prefix      string
	middlewares common.MiddlewareChain
}

// Use appends middleware applied to routes registered through this group
// from this point on.
func (g *Group) Use(middlewares ...common.Middleware) {
	g.middlewares = g.middlewares.Append(middlewares...)
}

// Handle registers a route under the group's prefix. Group middleware wraps
// the handler before route middleware.
func (g *Group) Handle(method, path string, handler http.HandlerFunc, middlewares ...common.Middleware) {
	all := g.middlewares.Append(middlewares...)
	g.app.Handle(method, g.prefix+path, handler, all...)
}

// GetParams retrieves the httprouter.Params from the request context.
func GetParams(r *http.Request) httprouter.Params {
	params, _ := r.Context().Value(ParamsKey).(httprouter.Params)
	return params
}

// GetParam retrieves a specific route parameter from the request context.
func GetParam(r *http.Request, name string) string {
	return GetParams(r).ByName(name)
}
