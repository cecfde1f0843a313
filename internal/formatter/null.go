package formatter

import (
	"context"

	"xbdriver/internal/invocation"
)

// NullFormatter discards every event, returning empty strings. Used by
// tests and by dry-run diagnostics that want the executor's side effects
// without any progress text.
type NullFormatter struct{}

func (NullFormatter) Begin(ctx context.Context, build Build) string {
	return ""
}

func (NullFormatter) Success(ctx context.Context, build Build) string {
	return ""
}

func (NullFormatter) Failure(ctx context.Context, build Build, failing []invocation.Invocation) string {
	return ""
}

func (NullFormatter) BeginTarget(ctx context.Context, build Build, target Target) string {
	return ""
}

func (NullFormatter) FinishTarget(ctx context.Context, build Build, target Target) string {
	return ""
}

func (NullFormatter) BeginCheckDependencies(ctx context.Context, target Target) string {
	return ""
}

func (NullFormatter) FinishCheckDependencies(ctx context.Context, target Target) string {
	return ""
}

func (NullFormatter) BeginWriteAuxiliaryFiles(ctx context.Context, target Target) string {
	return ""
}

func (NullFormatter) FinishWriteAuxiliaryFiles(ctx context.Context, target Target) string {
	return ""
}

func (NullFormatter) CreateAuxiliaryDirectory(ctx context.Context, path string) string {
	return ""
}

func (NullFormatter) WriteAuxiliaryFile(ctx context.Context, path string) string {
	return ""
}

func (NullFormatter) SetAuxiliaryExecutable(ctx context.Context, path string) string {
	return ""
}

func (NullFormatter) BeginCreateProductStructure(ctx context.Context, target Target) string {
	return ""
}

func (NullFormatter) FinishCreateProductStructure(ctx context.Context, target Target) string {
	return ""
}

func (NullFormatter) BeginInvocation(ctx context.Context, inv invocation.Invocation, resolvedExecutable string) string {
	return ""
}

func (NullFormatter) FinishInvocation(ctx context.Context, inv invocation.Invocation, resolvedExecutable string) string {
	return ""
}
