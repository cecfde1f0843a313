package formatter

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"xbdriver/internal/invocation"
)

func TestDefaultFormatterPlainText(t *testing.T) {
	f := NewDefaultFormatterWithColor(false)
	ctx := context.Background()

	out := f.Begin(ctx, Build{Name: "Demo"})
	assert.Contains(t, out, "BUILD Demo")
	assert.NotContains(t, out, "\x1b[")

	out = f.BeginTarget(ctx, Build{Name: "Demo"}, Target{Name: "App"})
	assert.Contains(t, out, "TARGET App")

	out = f.BeginInvocation(ctx, invocation.Invocation{Executable: "/usr/bin/clang", Outputs: []string{"/out/a.o"}}, "/usr/bin/clang")
	assert.Contains(t, out, "/usr/bin/clang")
	assert.Contains(t, out, "/out/a.o")
}

func TestDefaultFormatterColorWraps(t *testing.T) {
	f := NewDefaultFormatterWithColor(true)
	ctx := context.Background()

	out := f.Success(ctx, Build{Name: "Demo"})
	assert.Contains(t, out, "\x1b[")
	assert.Contains(t, out, "BUILD SUCCEEDED")
}

func TestDefaultFormatterSkipsPhonyInvocationText(t *testing.T) {
	f := NewDefaultFormatterWithColor(false)
	out := f.BeginInvocation(context.Background(), invocation.Invocation{}, "")
	assert.Empty(t, out)
}

func TestDefaultFormatterFailureListsInvocations(t *testing.T) {
	f := NewDefaultFormatterWithColor(false)
	failing := []invocation.Invocation{{Executable: "/bin/false", Outputs: []string{"/out/x"}}}
	out := f.Failure(context.Background(), Build{Name: "Demo"}, failing)
	assert.Contains(t, out, "BUILD FAILED")
	assert.Contains(t, out, "/bin/false")
}

func TestNullFormatterDiscardsEverything(t *testing.T) {
	var f NullFormatter
	ctx := context.Background()
	assert.Empty(t, f.Begin(ctx, Build{}))
	assert.Empty(t, f.BeginInvocation(ctx, invocation.Invocation{}, ""))
	assert.Empty(t, f.Failure(ctx, Build{}, nil))
}
