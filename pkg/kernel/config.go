package kernel

import (
	"fmt"

	"github.com/google/uuid"
)

// MiddlewareConfig is one declarative middleware entry.
// The list of these entries is the application's middleware configuration;
// the kernel resolves and registers them in list order at start-up.
type MiddlewareConfig struct {
	// Ref identifies the middleware: a registered name, an import-path
	// string of the form "import/path.Export", a common.Middleware value,
	// or a registry.Constructor.
	Ref any

	// Name labels the entry in logs and errors. When empty, a name is
	// derived from a string Ref or generated.
	Name string

	// Groups the entry belongs to. An entry with no groups is registered
	// only when no group filter is in effect.
	Groups []string

	// Args are passed to constructor refs. Ignored for direct middleware values.
	Args map[string]any
}

// displayName returns a stable human-readable name for the entry.
func (c MiddlewareConfig) displayName() string {
	if c.Name != "" {
		return c.Name
	}
	if s, ok := c.Ref.(string); ok {
		return s
	}
	return fmt.Sprintf("middleware-%s", uuid.New().String())
}
