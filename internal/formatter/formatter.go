// Package formatter defines the build driver's progress-event protocol
// and a default, human-readable implementation of it.
package formatter

import (
	"context"

	"xbdriver/internal/invocation"
)

// Build and Target are the minimal shapes the formatter needs to render
// progress text. They deliberately do not depend on the
// target or build packages, so formatter stays free of any notion of
// how a build is actually driven.
type Build struct {
	Name string
}

type Target struct {
	Name string
}

// Formatter is an abstract sink for progress events. Every event returns
// a text chunk; the caller is responsible for writing it to the
// progress stream immediately, in strict execution order — the protocol
// itself carries no behavior beyond text production and is safe to call
// repeatedly from a single goroutine.
type Formatter interface {
	Begin(ctx context.Context, build Build) string
	Success(ctx context.Context, build Build) string
	Failure(ctx context.Context, build Build, failing []invocation.Invocation) string

	BeginTarget(ctx context.Context, build Build, target Target) string
	FinishTarget(ctx context.Context, build Build, target Target) string

	BeginCheckDependencies(ctx context.Context, target Target) string
	FinishCheckDependencies(ctx context.Context, target Target) string

	BeginWriteAuxiliaryFiles(ctx context.Context, target Target) string
	FinishWriteAuxiliaryFiles(ctx context.Context, target Target) string

	CreateAuxiliaryDirectory(ctx context.Context, path string) string
	WriteAuxiliaryFile(ctx context.Context, path string) string
	SetAuxiliaryExecutable(ctx context.Context, path string) string

	BeginCreateProductStructure(ctx context.Context, target Target) string
	FinishCreateProductStructure(ctx context.Context, target Target) string

	BeginInvocation(ctx context.Context, inv invocation.Invocation, resolvedExecutable string) string
	FinishInvocation(ctx context.Context, inv invocation.Invocation, resolvedExecutable string) string
}
