// Package registry implements name and import-path resolution for middleware.
// Middlewares can be registered under short names ("cors", "gzip") or exported
// by their defining package under its import path, and later resolved from
// declarative configuration.
package registry

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/Suhaibinator/SKernel/pkg/common"
)

// Constructor builds a middleware from declarative arguments.
// It is the registered form for middlewares that need per-use configuration,
// such as CORS origins or rate limits.
type Constructor func(args map[string]any) (common.Middleware, error)

var (
	// ErrUnknownName is returned when a name has no registration.
	ErrUnknownName = errors.New("unknown middleware name")

	// ErrUnknownProvider is returned when an import path has no registered provider.
	ErrUnknownProvider = errors.New("unknown middleware provider")

	// ErrUnknownExport is returned when a provider exists but lacks the requested export.
	ErrUnknownExport = errors.New("unknown middleware export")

	// ErrBadPath is returned when an import path string cannot be split into
	// a package path and an export name.
	ErrBadPath = errors.New("malformed middleware path")
)

// resolveCacheSize bounds the path resolution cache.
const resolveCacheSize = 128

// Registry maps names and import paths to middleware implementations.
// A registered reference may be a common.Middleware, a Constructor, or a
// path string that resolves through a provider. All methods are safe for
// concurrent use.
type Registry struct {
	mu        sync.RWMutex
	named     map[string]any
	providers map[string]map[string]any
	cache     *lruCache
}

// New creates an empty Registry.
func New() *Registry {
	return &Registry{
		named:     make(map[string]any),
		providers: make(map[string]map[string]any),
		cache:     newLRUCache(resolveCacheSize),
	}
}

// Default is the process-wide registry. Built-in middlewares register
// themselves here, and the kernel uses it unless given another registry.
var Default = New()

// Register registers a middleware reference under a name.
// Registering an existing name overwrites the previous reference.
func (r *Registry) Register(name string, ref any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.named[name] = ref
}

// Lookup returns the reference registered under name, if any.
func (r *Registry) Lookup(name string) (any, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	ref, ok := r.named[name]
	return ref, ok
}

// Names returns all registered names in sorted order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.named))
	for name := range r.named {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// RegisterProvider registers a package's middleware exports under its import
// path. Exports merge with any previously registered exports for the same
// path, so a package may register from multiple files.
func (r *Registry) RegisterProvider(pkgPath string, exports map[string]any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	existing, ok := r.providers[pkgPath]
	if !ok {
		existing = make(map[string]any, len(exports))
		r.providers[pkgPath] = existing
	}
	for name, ref := range exports {
		existing[name] = ref
	}
}

// ResolvePath resolves a reference of the form "import/path.Export" against
// the registered providers. Results are cached in a bounded LRU so repeated
// resolution of the same path skips the provider table.
func (r *Registry) ResolvePath(path string) (any, error) {
	if ref, ok := r.cache.get(path); ok {
		return ref, nil
	}

	pkgPath, export, err := splitPath(path)
	if err != nil {
		return nil, err
	}

	r.mu.RLock()
	exports, ok := r.providers[pkgPath]
	if !ok {
		r.mu.RUnlock()
		return nil, fmt.Errorf("%w: %q", ErrUnknownProvider, pkgPath)
	}
	ref, ok := exports[export]
	r.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %q has no export %q", ErrUnknownExport, pkgPath, export)
	}

	r.cache.put(path, ref)
	return ref, nil
}

// splitPath splits "import/path.Export" at the last dot. The last dot must
// come after the last slash, otherwise the "dot" belongs to a domain segment
// (e.g. "gopkg.in/yaml") and the path has no export name.
func splitPath(path string) (pkgPath, export string, err error) {
	dot := strings.LastIndex(path, ".")
	slash := strings.LastIndex(path, "/")
	if dot < 0 || dot < slash || dot == len(path)-1 {
		return "", "", fmt.Errorf("%w: %q", ErrBadPath, path)
	}
	return path[:dot], path[dot+1:], nil
}
