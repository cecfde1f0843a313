package cliapp

import (
	"bytes"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	testCases := []struct {
		name        string
		args        []string
		expectExit  bool
		expectErr   bool
		expected    *Config
		checkOutput func(t *testing.T, output string)
	}{
		{
			name: "happy path with all flags",
			args: []string{"-dry-run", "-log-level=debug", "-log-format=json", "-color=always", "scenario.hcl"},
			expected: &Config{
				ScenarioPaths: []string{"scenario.hcl"},
				DryRun:        true,
				LogLevel:      "debug",
				LogFormat:     "json",
				Color:         ColorAlways,
			},
		},
		{
			name: "defaults with multiple positional paths",
			args: []string{"a.hcl", "b.hcl"},
			expected: &Config{
				ScenarioPaths: []string{"a.hcl", "b.hcl"},
				LogLevel:      "info",
				LogFormat:     "text",
				Color:         ColorAuto,
			},
		},
		{
			name: "export ninja flag",
			args: []string{"-export-ninja=build.ninja", "scenario.hcl"},
			expected: &Config{
				ScenarioPaths: []string{"scenario.hcl"},
				LogLevel:      "info",
				LogFormat:     "text",
				Color:         ColorAuto,
				ExportNinja:   "build.ninja",
			},
		},
		{
			name:       "help flag triggers clean exit",
			args:       []string{"-h"},
			expectExit: true,
			checkOutput: func(t *testing.T, output string) {
				require.Contains(t, output, "Usage:")
			},
		},
		{
			name:       "no scenario path triggers clean exit with usage",
			args:       []string{},
			expectExit: true,
			checkOutput: func(t *testing.T, output string) {
				require.Contains(t, output, "Usage:")
			},
		},
		{
			name:      "invalid log level returns an error",
			args:      []string{"-log-level=bogus", "scenario.hcl"},
			expectErr: true,
		},
		{
			name:      "invalid log format returns an error",
			args:      []string{"-log-format=yaml", "scenario.hcl"},
			expectErr: true,
		},
		{
			name:      "invalid color returns an error",
			args:      []string{"-color=rainbow", "scenario.hcl"},
			expectErr: true,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			out := &bytes.Buffer{}

			cfg, shouldExit, err := Parse(tc.args, out)

			if tc.expectErr {
				require.Error(t, err)
				_, isExitError := err.(*ExitError)
				require.True(t, isExitError, "expected error to be of type *ExitError")
				return
			}
			require.NoError(t, err)
			require.Equal(t, tc.expectExit, shouldExit)

			if tc.expected != nil {
				if diff := cmp.Diff(tc.expected, cfg); diff != "" {
					t.Errorf("Config mismatch (-want +got):\n%s", diff)
				}
			}
			if tc.checkOutput != nil {
				tc.checkOutput(t, out.String())
			}
		})
	}
}

func TestNewLoggerDefaultsToInfoText(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(&Config{LogLevel: "info", LogFormat: "text"}, &buf)
	logger.Info("hello")
	require.True(t, strings.Contains(buf.String(), "hello"))
}

func TestNewLoggerJSONFormat(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(&Config{LogLevel: "debug", LogFormat: "json"}, &buf)
	logger.Debug("probe")
	require.True(t, strings.Contains(buf.String(), `"msg":"probe"`))
}
