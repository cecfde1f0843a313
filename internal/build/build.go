// Package build implements the top-level driver: it walks the target
// graph in order, and for each target materializes auxiliary files,
// schedules invocations, and executes them, reporting progress through
// a Formatter.
package build

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"xbdriver/internal/builtin"
	"xbdriver/internal/ctxlog"
	"xbdriver/internal/executor"
	"xbdriver/internal/formatter"
	"xbdriver/internal/invocation"
	"xbdriver/internal/materializer"
	"xbdriver/internal/scheduler"
	"xbdriver/internal/target"
)

// TargetEnvironmentMissing is reported when a target's environment
// cannot be constructed. This is not fatal to the overall build: the
// target produces no work and the driver continues with the next one.
type TargetEnvironmentMissing struct {
	TargetName string
	Err        error
}

func (e *TargetEnvironmentMissing) Error() string {
	return fmt.Sprintf("couldn't create target environment for %s: %v", e.TargetName, e.Err)
}

func (e *TargetEnvironmentMissing) Unwrap() error {
	return e.Err
}

// Options configures a build.
type Options struct {
	DryRun bool
	// ErrOut receives configuration/environment error lines that are not
	// part of the formatter's own progress stream (spec.md §6: "a line
	// on the error stream for configuration and environment problems").
	ErrOut io.Writer
}

// Result is the exceptionless outcome of a build: OK is true only when
// every target's invocations all ran to completion. Failing carries the
// single invocation that stopped the build, if any.
type Result struct {
	OK      bool
	Failing []invocation.Invocation
}

// ExitCode maps a Result to the process exit codes spec.md §6 defines:
// 0 on success, 1 when one or more invocations failed.
func (r Result) ExitCode() int {
	if r.OK {
		return 0
	}
	return 1
}

// Build drives targetGraph to completion, writing every formatter event
// to out in strict execution order. buildEnv and buildCtx are opaque
// carriers threaded through to the target/invocation collaborators.
func Build(
	ctx context.Context,
	out io.Writer,
	f formatter.Formatter,
	builtins *builtin.Registry,
	opts Options,
	buildEnv target.BuildEnvironment,
	buildCtx target.BuildContext,
	targetGraph target.Graph,
) (Result, error) {
	logger := ctxlog.FromContext(ctx)
	b := formatter.Build{Name: "build"}

	io.WriteString(out, f.Begin(ctx, b))

	targets, err := targetGraph.Ordered()
	if err != nil {
		logger.Error("failed to order target graph", "error", err)
		return Result{OK: false}, err
	}
	logger.Debug("build: target order resolved", "count", len(targets))

	for _, t := range targets {
		ft := formatter.Target{Name: t.Name()}
		// Scope every log line emitted while processing this target
		// with its name, so materializer and executor don't each need
		// to pass "target" explicitly on every call site.
		targetCtx := ctxlog.WithFields(ctx, "target", t.Name())
		targetLogger := ctxlog.FromContext(targetCtx)

		io.WriteString(out, f.BeginTarget(ctx, b, ft))

		env, envErr := buildCtx.EnvironmentFor(buildEnv, t)
		if envErr != nil {
			missing := &TargetEnvironmentMissing{TargetName: t.Name(), Err: envErr}
			targetLogger.Error("couldn't create target environment", "error", envErr)
			fmt.Fprintf(opts.errOut(), "error: %v\n", missing)
			io.WriteString(out, f.FinishTarget(ctx, b, ft))
			continue
		}

		io.WriteString(out, f.BeginCheckDependencies(ctx, ft))
		invocations, invErr := buildCtx.InvocationsFor(buildEnv, t, env)
		io.WriteString(out, f.FinishCheckDependencies(ctx, ft))
		if invErr != nil {
			targetLogger.Error("failed to construct invocations", "error", invErr)
			io.WriteString(out, f.FinishTarget(ctx, b, ft))
			return Result{OK: false}, invErr
		}

		ok, failing, buildErr := buildTarget(targetCtx, out, f, builtins, opts, ft, env, invocations)
		if !ok {
			io.WriteString(out, f.FinishTarget(ctx, b, ft))
			io.WriteString(out, f.Failure(ctx, b, failing))
			return Result{OK: false, Failing: failing}, buildErr
		}

		io.WriteString(out, f.FinishTarget(ctx, b, ft))
	}

	io.WriteString(out, f.Success(ctx, b))
	return Result{OK: true}, nil
}

func (o Options) errOut() io.Writer {
	if o.ErrOut != nil {
		return o.ErrOut
	}
	return os.Stderr
}

// buildTarget runs the per-target sequence: materialize auxiliary
// files, create the target's product structure, schedule invocations,
// and execute them. It returns ok=false and the single failing
// invocation (if any) on the first error, matching the spec's
// first-failure-halts-the-build contract.
func buildTarget(
	ctx context.Context,
	out io.Writer,
	f formatter.Formatter,
	builtins *builtin.Registry,
	opts Options,
	ft formatter.Target,
	env target.Environment,
	invocations []invocation.Invocation,
) (bool, []invocation.Invocation, error) {
	io.WriteString(out, f.BeginWriteAuxiliaryFiles(ctx, ft))
	if err := materializer.Materialize(ctx, out, f, ft, invocations, opts.DryRun); err != nil {
		io.WriteString(out, f.FinishWriteAuxiliaryFiles(ctx, ft))
		return false, nil, err
	}
	io.WriteString(out, f.FinishWriteAuxiliaryFiles(ctx, ft))

	io.WriteString(out, f.BeginCreateProductStructure(ctx, ft))
	if err := createProductStructure(invocations, opts.DryRun); err != nil {
		io.WriteString(out, f.FinishCreateProductStructure(ctx, ft))
		return false, nil, err
	}
	io.WriteString(out, f.FinishCreateProductStructure(ctx, ft))

	scheduled, err := scheduler.Schedule(invocations)
	if err != nil {
		return false, nil, err
	}

	ex := executor.New(f, builtins, opts.DryRun)
	if err := ex.Run(ctx, out, env, scheduled); err != nil {
		var invFailure *executor.InvocationFailure
		if errors.As(err, &invFailure) {
			return false, []invocation.Invocation{invFailure.Invocation}, err
		}
		return false, nil, err
	}

	return true, nil, nil
}

// createProductStructure ensures the common ancestor directory of a
// target's outputs exists before any invocation runs. The original
// system left this a no-op (see original_source's "TODO(grp): Create
// product structure."); this driver gives it a real, minimal
// implementation using the same directory-creation semantics the
// built-in mkdir driver uses.
func createProductStructure(invocations []invocation.Invocation, dryRun bool) error {
	if dryRun {
		return nil
	}
	root := commonOutputAncestor(invocations)
	if root == "" {
		return nil
	}
	if err := os.MkdirAll(root, 0755); err != nil {
		return fmt.Errorf("creating product structure at %s: %w", root, err)
	}
	return nil
}

func commonOutputAncestor(invocations []invocation.Invocation) string {
	var common string
	first := true
	for _, inv := range invocations {
		for _, output := range inv.Outputs {
			dir := filepath.Dir(output)
			if first {
				common = dir
				first = false
				continue
			}
			common = commonPrefix(common, dir)
		}
	}
	return common
}

func commonPrefix(a, b string) string {
	aParts := strings.Split(filepath.Clean(a), string(filepath.Separator))
	bParts := strings.Split(filepath.Clean(b), string(filepath.Separator))
	n := len(aParts)
	if len(bParts) < n {
		n = len(bParts)
	}
	i := 0
	for i < n && aParts[i] == bParts[i] {
		i++
	}
	if i <= 1 {
		return string(filepath.Separator)
	}
	return strings.Join(aParts[:i], string(filepath.Separator))
}
