package ninjaexport

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"xbdriver/internal/invocation"
)

func TestWriteRendersRuleAndBuildPerInvocation(t *testing.T) {
	invocations := []invocation.Invocation{
		{Executable: "/bin/cc", Arguments: []string{"-c", "main.c"}, Outputs: []string{"main.o"}},
	}

	var buf bytes.Buffer
	require.NoError(t, Write(&buf, "demo", invocations))

	out := buf.String()
	assert.Contains(t, out, "rule r0")
	assert.Contains(t, out, "command = /bin/cc -c main.c")
	assert.Contains(t, out, "build main.o: r0")
}

func TestWriteQuotesArgumentsWithSpaces(t *testing.T) {
	invocations := []invocation.Invocation{
		{Executable: "/bin/echo", Arguments: []string{"hello world"}},
	}

	var buf bytes.Buffer
	require.NoError(t, Write(&buf, "demo", invocations))

	assert.Contains(t, buf.String(), `"hello world"`)
}

func TestWriteRendersPhonyInvocationAsPhonyRule(t *testing.T) {
	invocations := []invocation.Invocation{
		{PhonyOutputs: []string{"stage-1"}, PhonyInputs: []string{"prereq"}},
	}

	var buf bytes.Buffer
	require.NoError(t, Write(&buf, "demo", invocations))

	assert.Contains(t, buf.String(), "build stage-1: phony prereq")
}
