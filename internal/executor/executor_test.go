package executor

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"xbdriver/internal/builtin"
	"xbdriver/internal/ctxlog"
	"xbdriver/internal/formatter"
	"xbdriver/internal/invocation"
)

type fakeEnvironment struct {
	paths []string
}

func (f fakeEnvironment) ExecutablePaths() []string { return f.paths }

func testContext() context.Context {
	return ctxlog.WithLogger(context.Background(), slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestRunSkipsPhonyInvocations(t *testing.T) {
	e := New(formatter.NullFormatter{}, builtin.NewDefaultRegistry(), false)
	var buf bytes.Buffer

	err := e.Run(testContext(), &buf, fakeEnvironment{}, []invocation.Invocation{{}})
	assert.NoError(t, err)
}

func TestRunDispatchesBuiltinSuccess(t *testing.T) {
	dir := t.TempDir()
	e := New(formatter.NullFormatter{}, builtin.NewDefaultRegistry(), false)
	var buf bytes.Buffer

	inv := invocation.Invocation{
		Executable: "builtin-mkdir",
		Arguments:  []string{filepath.Join(dir, "out")},
	}
	err := e.Run(testContext(), &buf, fakeEnvironment{}, []invocation.Invocation{inv})
	require.NoError(t, err)

	info, err := os.Stat(filepath.Join(dir, "out"))
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}

func TestRunBuiltinMissingFails(t *testing.T) {
	e := New(formatter.NullFormatter{}, builtin.NewRegistry(), false)
	var buf bytes.Buffer

	inv := invocation.Invocation{Executable: "builtin-nonexistent"}
	err := e.Run(testContext(), &buf, fakeEnvironment{}, []invocation.Invocation{inv})
	require.Error(t, err)

	var failure *InvocationFailure
	require.ErrorAs(t, err, &failure)
	var missing *BuiltinMissing
	require.ErrorAs(t, err, &missing)
}

func TestRunExecutableSearchResolvesFromPath(t *testing.T) {
	dir := t.TempDir()
	bin := filepath.Join(dir, "clang")
	require.NoError(t, os.WriteFile(bin, []byte("#!/bin/sh\nexit 0\n"), 0755))

	e := New(formatter.NullFormatter{}, builtin.NewDefaultRegistry(), false)
	var buf bytes.Buffer

	inv := invocation.Invocation{Executable: "clang"}
	err := e.Run(testContext(), &buf, fakeEnvironment{paths: []string{"/nope", dir}}, []invocation.Invocation{inv})
	require.NoError(t, err)
}

func TestRunExecutableNotFoundFailsInvocation(t *testing.T) {
	e := New(formatter.NullFormatter{}, builtin.NewDefaultRegistry(), false)
	var buf bytes.Buffer

	inv := invocation.Invocation{Executable: "nonexistent-tool"}
	err := e.Run(testContext(), &buf, fakeEnvironment{paths: []string{"/nope"}}, []invocation.Invocation{inv})
	require.Error(t, err)

	var notFound *ExecutableNotFound
	require.ErrorAs(t, err, &notFound)
}

func TestRunHaltsAfterFirstFailure(t *testing.T) {
	e := New(formatter.NullFormatter{}, builtin.NewDefaultRegistry(), false)
	var buf bytes.Buffer

	failing := invocation.Invocation{Executable: "builtin-nonexistent"}
	neverRunDir := filepath.Join(t.TempDir(), "never-run")
	neverRun := invocation.Invocation{Executable: "builtin-mkdir", Arguments: []string{neverRunDir}}

	err := e.Run(testContext(), &buf, fakeEnvironment{}, []invocation.Invocation{failing, neverRun})
	require.Error(t, err)

	_, statErr := os.Stat(neverRunDir)
	assert.True(t, os.IsNotExist(statErr))
}

func TestRunDryRunPerformsNoMutation(t *testing.T) {
	dir := t.TempDir()
	target := filepath.Join(dir, "out")
	e := New(formatter.NullFormatter{}, builtin.NewDefaultRegistry(), true)
	var buf bytes.Buffer

	inv := invocation.Invocation{Executable: "builtin-mkdir", Arguments: []string{target}}
	err := e.Run(testContext(), &buf, fakeEnvironment{}, []invocation.Invocation{inv})
	require.NoError(t, err)

	_, statErr := os.Stat(target)
	assert.True(t, os.IsNotExist(statErr))
}

func TestRunBuiltinNonZeroExitFails(t *testing.T) {
	e := New(formatter.NullFormatter{}, builtin.NewDefaultRegistry(), false)
	var buf bytes.Buffer

	// builtin-copy with too few arguments returns a non-zero status.
	inv := invocation.Invocation{Executable: "builtin-copy", Arguments: []string{"onlyone"}}
	err := e.Run(testContext(), &buf, fakeEnvironment{}, []invocation.Invocation{inv})
	require.Error(t, err)
}
