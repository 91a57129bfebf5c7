// Package kernel turns declarative middleware configuration into a wired
// request-processing chain. It resolves middleware references (registered
// names, import-path strings, or direct values) through a registry and
// attaches them to an application at start-up, optionally filtered by group.
package kernel

import (
	"errors"
	"fmt"
	"net/http"
	"slices"

	"github.com/Suhaibinator/SKernel/pkg/common"
	"github.com/Suhaibinator/SKernel/pkg/registry"
	"go.uber.org/zap"
)

// App is the surface the kernel needs from the surrounding web application.
// Routing, transport, and HTTP semantics stay the application's job; the
// kernel only appends resolved middleware to its chain.
type App interface {
	Use(middlewares ...common.Middleware)
}

// ErrBadRef is returned when a middleware reference is not a registered name,
// an import-path string, a middleware value, or a constructor.
var ErrBadRef = errors.New("invalid middleware reference")

// maxResolveDepth bounds chained name/path indirection. A name may point at a
// path string which points at a value; anything deeper is a registration bug.
const maxResolveDepth = 8

// Kernel resolves middleware references and registers them on an App.
type Kernel struct {
	registry *registry.Registry
	logger   *zap.Logger
}

// Option configures a Kernel.
type Option func(*Kernel)

// WithRegistry sets the registry used for name and path resolution.
// The default is registry.Default.
func WithRegistry(r *registry.Registry) Option {
	return func(k *Kernel) {
		k.registry = r
	}
}

// WithLogger sets the logger used for registration logging.
func WithLogger(logger *zap.Logger) Option {
	return func(k *Kernel) {
		k.logger = logger
	}
}

// New creates a Kernel. Without options it resolves against registry.Default
// and logs with a production zap logger.
func New(opts ...Option) *Kernel {
	k := &Kernel{
		registry: registry.Default,
	}
	for _, opt := range opts {
		opt(k)
	}
	if k.logger == nil {
		logger, err := zap.NewProduction()
		if err != nil {
			logger = zap.NewNop()
		}
		k.logger = logger
	}
	return k
}

// registerOptions holds options for Register.
type registerOptions struct {
	group string
}

// RegisterOption configures a Register call.
type RegisterOption func(*registerOptions)

// WithGroup restricts registration to entries whose Groups contain the given
// group. Entries without groups are skipped when a group filter is set.
func WithGroup(group string) RegisterOption {
	return func(o *registerOptions) {
		o.group = group
	}
}

// Register resolves every middleware config and attaches it to the app in
// list order. List order is the only ordering guarantee. A resolution failure
// aborts registration and reports the failing entry.
func (k *Kernel) Register(app App, configs []MiddlewareConfig, opts ...RegisterOption) error {
	var o registerOptions
	for _, opt := range opts {
		opt(&o)
	}

	for i, cfg := range configs {
		name := cfg.displayName()

		if o.group != "" && !slices.Contains(cfg.Groups, o.group) {
			k.logger.Debug("Skipping middleware outside group",
				zap.String("middleware", name),
				zap.String("group", o.group),
				zap.Strings("groups", cfg.Groups),
			)
			continue
		}

		mw, err := k.Resolve(cfg.Ref, cfg.Args)
		if err != nil {
			return fmt.Errorf("register middleware %q (entry %d): %w", name, i, err)
		}

		app.Use(mw)
		k.logger.Debug("Registered middleware",
			zap.String("middleware", name),
			zap.Strings("groups", cfg.Groups),
		)
	}

	return nil
}

// Resolve turns a middleware reference into a common.Middleware.
// Strings resolve as registered names first, then as import paths. Middleware
// values pass through unchanged. Constructors are invoked with args.
func (k *Kernel) Resolve(ref any, args map[string]any) (common.Middleware, error) {
	return k.resolve(ref, args, 0)
}

func (k *Kernel) resolve(ref any, args map[string]any, depth int) (common.Middleware, error) {
	if depth > maxResolveDepth {
		return nil, fmt.Errorf("%w: resolution depth exceeded", ErrBadRef)
	}

	switch v := ref.(type) {
	case string:
		if named, ok := k.registry.Lookup(v); ok {
			return k.resolve(named, args, depth+1)
		}
		resolved, err := k.registry.ResolvePath(v)
		if err != nil {
			// A string without a path shape is a name that was never registered.
			if errors.Is(err, registry.ErrBadPath) {
				return nil, fmt.Errorf("%w: %q", registry.ErrUnknownName, v)
			}
			return nil, err
		}
		return k.resolve(resolved, args, depth+1)

	case common.Middleware:
		return v, nil

	case func(http.Handler) http.Handler:
		// Untyped function literals arrive as the underlying func type.
		return common.Middleware(v), nil

	case func(args map[string]any) (common.Middleware, error):
		return registry.Constructor(v)(args)

	case registry.Constructor:
		return v(args)

	case interface {
		Middleware() common.Middleware
	}:
		// Structs exposing a Middleware method, like configured auth providers.
		return v.Middleware(), nil

	default:
		return nil, fmt.Errorf("%w: %T", ErrBadRef, ref)
	}
}
