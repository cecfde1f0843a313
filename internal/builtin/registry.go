// Package builtin implements built-in tools dispatched in-process by the
// invocation executor when an invocation's executable begins with the
// "builtin-" prefix, instead of being spawned as a child process.
package builtin

import (
	"context"
	"fmt"
	"log/slog"
)

// Prefix is the executable-name prefix that marks an invocation as
// built-in rather than an external child process.
const Prefix = "builtin-"

// Driver is a tool implemented in-process. Run is executed synchronously
// on the executor's goroutine.
type Driver interface {
	// Run executes the tool and returns its exit code, or a non-nil error
	// if the tool could not run at all (as opposed to running and
	// returning a non-zero status).
	Run(ctx context.Context, args []string, env map[string]string, cwd string) (int, error)
}

// DriverFunc adapts a function to the Driver interface.
type DriverFunc func(ctx context.Context, args []string, env map[string]string, cwd string) (int, error)

// Run implements Driver.
func (f DriverFunc) Run(ctx context.Context, args []string, env map[string]string, cwd string) (int, error) {
	return f(ctx, args, env, cwd)
}

// Registry maps an executable name (including its "builtin-" prefix) to
// the driver that implements it. It is read-only once a build starts.
type Registry struct {
	drivers map[string]Driver
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{drivers: make(map[string]Driver)}
}

// Register adds a driver under name. name must already carry the
// "builtin-" prefix. Registering the same name twice is a programmer
// error and panics, matching the discipline the rest of this driver's
// registration points use.
func (r *Registry) Register(name string, driver Driver) {
	if _, exists := r.drivers[name]; exists {
		panic(fmt.Sprintf("builtin: driver %q already registered", name))
	}
	slog.Debug("builtin: registering driver", "name", name)
	r.drivers[name] = driver
}

// Driver looks up the driver registered for name. The second return
// value is false if no such driver is registered.
func (r *Registry) Driver(name string) (Driver, bool) {
	d, ok := r.drivers[name]
	return d, ok
}

// NewDefaultRegistry returns the registry carrying the driver set this
// driver ships with: file copy, directory creation, symlinking, and
// concatenation, modeled on Xcode's own built-in tools.
func NewDefaultRegistry() *Registry {
	r := NewRegistry()
	r.Register("builtin-copy", DriverFunc(runCopy))
	r.Register("builtin-mkdir", DriverFunc(runMkdir))
	r.Register("builtin-symlink", DriverFunc(runSymlink))
	r.Register("builtin-concatenate", DriverFunc(runConcatenate))
	return r
}
