// Package executor runs a target's scheduled invocations: resolving
// each executable, dispatching to a built-in driver or an external
// child process, and reporting failures.
package executor

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"xbdriver/internal/builtin"
	"xbdriver/internal/ctxlog"
	"xbdriver/internal/formatter"
	"xbdriver/internal/invocation"
	"xbdriver/internal/target"
)

// ExecutableNotFound is reported when a bare executable name cannot be
// located in the target environment's SDK search path.
type ExecutableNotFound struct {
	Name string
}

func (e *ExecutableNotFound) Error() string {
	return fmt.Sprintf("unable to find executable %s", e.Name)
}

// BuiltinMissing is reported when an invocation's executable carries the
// builtin- prefix but no driver is registered under that name.
type BuiltinMissing struct {
	Name string
}

func (e *BuiltinMissing) Error() string {
	return fmt.Sprintf("no built-in driver registered for %s", e.Name)
}

// InvocationFailure is the canonical per-invocation failure: the
// invocation that failed, and the underlying cause.
type InvocationFailure struct {
	Invocation invocation.Invocation
	Err        error
}

func (e *InvocationFailure) Error() string {
	return fmt.Sprintf("invocation failed: %v", e.Err)
}

func (e *InvocationFailure) Unwrap() error {
	return e.Err
}

// Executor runs a target's already-scheduled invocations in order.
type Executor struct {
	Formatter formatter.Formatter
	Builtins  *builtin.Registry
	DryRun    bool
}

// New returns an Executor bound to the given formatter and built-in
// registry.
func New(f formatter.Formatter, builtins *builtin.Registry, dryRun bool) *Executor {
	return &Executor{Formatter: f, Builtins: builtins, DryRun: dryRun}
}

// Run executes invocations in the order given, writing every formatter
// event to out as it happens. It stops at the first failing invocation
// and returns an *InvocationFailure wrapping the cause; phony
// invocations (empty Executable) are skipped without being reported as
// failures.
func (e *Executor) Run(ctx context.Context, out io.Writer, env target.Environment, invocations []invocation.Invocation) error {
	logger := ctxlog.FromContext(ctx)

	for _, inv := range invocations {
		if inv.IsPhony() {
			continue
		}
		if err := ctx.Err(); err != nil {
			return err
		}

		resolved, resolveErr := e.resolve(inv, env)
		if resolveErr != nil {
			logger.Error("failed to resolve executable", "executable", inv.Executable, "error", resolveErr)
		}

		io.WriteString(out, e.Formatter.BeginInvocation(ctx, inv, resolved))

		if !e.DryRun {
			if err := e.runOne(ctx, inv, resolved, resolveErr); err != nil {
				io.WriteString(out, e.Formatter.FinishInvocation(ctx, inv, resolved))
				return err
			}
		}

		io.WriteString(out, e.Formatter.FinishInvocation(ctx, inv, resolved))
	}

	return nil
}

func (e *Executor) runOne(ctx context.Context, inv invocation.Invocation, resolved string, resolveErr error) error {
	for _, output := range inv.Outputs {
		if err := os.MkdirAll(filepath.Dir(output), 0755); err != nil {
			return &InvocationFailure{Invocation: inv, Err: fmt.Errorf("creating output directory: %w", err)}
		}
	}

	if resolveErr != nil {
		return &InvocationFailure{Invocation: inv, Err: resolveErr}
	}

	if isBuiltin(inv.Executable) {
		driver, ok := e.Builtins.Driver(inv.Executable)
		if !ok {
			return &InvocationFailure{Invocation: inv, Err: &BuiltinMissing{Name: inv.Executable}}
		}
		code, err := driver.Run(ctx, inv.Arguments, inv.Environment, inv.WorkingDirectory)
		if err != nil {
			return &InvocationFailure{Invocation: inv, Err: err}
		}
		if code != 0 {
			return &InvocationFailure{Invocation: inv, Err: fmt.Errorf("builtin %s exited with status %d", inv.Executable, code)}
		}
		return nil
	}

	cmd := exec.CommandContext(ctx, resolved, inv.Arguments...)
	cmd.Dir = inv.WorkingDirectory
	cmd.Env = flattenEnvironment(inv.Environment)
	if err := cmd.Run(); err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return &InvocationFailure{Invocation: inv, Err: fmt.Errorf("%s exited with status %d", resolved, exitErr.ExitCode())}
		}
		return &InvocationFailure{Invocation: inv, Err: fmt.Errorf("spawning %s: %w", resolved, err)}
	}
	return nil
}

// resolve determines the concrete executable the invocation should run.
// Display/presentation ordering of the environment (sorted keys) is the
// formatter's concern; resolve only decides which binary to run.
func (e *Executor) resolve(inv invocation.Invocation, env target.Environment) (string, error) {
	if isBuiltin(inv.Executable) {
		return inv.Executable, nil
	}
	if filepath.IsAbs(inv.Executable) {
		return inv.Executable, nil
	}

	for _, dir := range env.ExecutablePaths() {
		candidate := filepath.Join(dir, inv.Executable)
		if isExecutableFile(candidate) {
			return candidate, nil
		}
	}
	return "", &ExecutableNotFound{Name: inv.Executable}
}

func isBuiltin(executable string) bool {
	return strings.HasPrefix(executable, builtin.Prefix)
}

func isExecutableFile(path string) bool {
	info, err := os.Stat(path)
	if err != nil || info.IsDir() {
		return false
	}
	return info.Mode()&0111 != 0
}

func flattenEnvironment(env map[string]string) []string {
	flat := make([]string, 0, len(env))
	for k, v := range env {
		flat = append(flat, k+"="+v)
	}
	return flat
}
