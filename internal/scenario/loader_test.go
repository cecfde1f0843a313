package scenario

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"xbdriver/internal/ctxlog"
)

func testContext() context.Context {
	return ctxlog.WithLogger(context.Background(), slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func writeHCL(t *testing.T, dir, name, contents string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(contents), 0644))
	return path
}

func TestLoadOrdersTargetsByDependency(t *testing.T) {
	dir := t.TempDir()
	writeHCL(t, dir, "scenario.hcl", `
target "link" {
  depends_on = ["compile"]

  invocation {
    executable = "/bin/ld"
    inputs     = ["/out/main.o"]
  }
}

target "compile" {
  invocation {
    executable = "builtin-mkdir"
    arguments  = ["/out"]
    outputs    = ["/out/main.o"]
  }
}
`)

	s, err := Load(testContext(), dir)
	require.NoError(t, err)

	targets, err := s.Ordered()
	require.NoError(t, err)
	require.Len(t, targets, 2)
	assert.Equal(t, "compile", targets[0].Name())
	assert.Equal(t, "link", targets[1].Name())
}

func TestLoadDetectsTargetCycle(t *testing.T) {
	dir := t.TempDir()
	writeHCL(t, dir, "scenario.hcl", `
target "a" {
  depends_on = ["b"]
}

target "b" {
  depends_on = ["a"]
}
`)

	_, err := Load(testContext(), dir)
	require.Error(t, err)
}

func TestEnvironmentFromDefaultsMergesWithPerInvocation(t *testing.T) {
	dir := t.TempDir()
	writeHCL(t, dir, "scenario.hcl", `
environment = {
  SDKROOT = "/sdk"
}

target "compile" {
  invocation {
    executable  = "/bin/cc"
    environment = {
      SDKROOT = "/override"
      DEBUG   = "1"
    }
  }
}
`)

	s, err := Load(testContext(), dir)
	require.NoError(t, err)

	invocations, err := s.InvocationsFor(nil, Target{name: "compile"}, Environment{})
	require.NoError(t, err)
	require.Len(t, invocations, 1)
	assert.Equal(t, "/override", invocations[0].Environment["SDKROOT"])
	assert.Equal(t, "1", invocations[0].Environment["DEBUG"])
}

func TestEnvironmentForReturnsSDKPaths(t *testing.T) {
	dir := t.TempDir()
	writeHCL(t, dir, "scenario.hcl", `
target "compile" {
  sdk_paths = ["/usr/bin", "/opt/sdk/bin"]
}
`)

	s, err := Load(testContext(), dir)
	require.NoError(t, err)

	env, err := s.EnvironmentFor(nil, Target{name: "compile"})
	require.NoError(t, err)
	assert.Equal(t, []string{"/usr/bin", "/opt/sdk/bin"}, env.ExecutablePaths())
}

func TestLoadUnknownTargetDependencyFails(t *testing.T) {
	dir := t.TempDir()
	writeHCL(t, dir, "scenario.hcl", `
target "a" {
  depends_on = ["ghost"]
}
`)

	_, err := Load(testContext(), dir)
	require.Error(t, err)
}

func TestAuxiliaryFilesDecodeFromInvocationBlocks(t *testing.T) {
	dir := t.TempDir()
	writeHCL(t, dir, "scenario.hcl", `
target "generate" {
  invocation {
    executable = "builtin-mkdir"
    arguments  = ["/out"]

    auxiliary_file "/out/run.sh" {
      contents   = "#!/bin/sh\necho hi\n"
      executable = true
    }
  }
}
`)

	s, err := Load(testContext(), dir)
	require.NoError(t, err)

	invocations, err := s.InvocationsFor(nil, Target{name: "generate"}, Environment{})
	require.NoError(t, err)
	require.Len(t, invocations, 1)
	require.Len(t, invocations[0].AuxiliaryFiles, 1)
	aux := invocations[0].AuxiliaryFiles[0]
	assert.Equal(t, "/out/run.sh", aux.Path)
	assert.True(t, aux.Executable)
	assert.Contains(t, string(aux.Contents), "echo hi")
}
