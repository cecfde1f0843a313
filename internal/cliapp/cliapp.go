// Package cliapp parses the xbdriver command line into a validated
// Config, the way internal/cli parses burstgridgo's.
package cliapp

import (
	"flag"
	"fmt"
	"io"
	"log/slog"
	"strings"
)

// ExitError is an error that carries the process exit code it should
// cause. Parse returns one for usage errors; main is expected to print
// Message to stderr and exit with Code.
type ExitError struct {
	Code    int
	Message string
}

func (e *ExitError) Error() string {
	return e.Message
}

// ColorMode controls whether the default formatter paints its output.
type ColorMode string

const (
	ColorAuto   ColorMode = "auto"
	ColorAlways ColorMode = "always"
	ColorNever  ColorMode = "never"
)

// Config is the fully validated result of parsing the command line.
type Config struct {
	ScenarioPaths []string
	DryRun        bool
	LogLevel      string
	LogFormat     string
	Color         ColorMode
	ExportNinja   string
}

// Parse processes args (typically os.Args[1:]). It returns a populated
// Config, a boolean indicating the program should exit cleanly (e.g.
// -help was requested or no scenario path was given), or an *ExitError
// for a malformed invocation.
func Parse(args []string, output io.Writer) (*Config, bool, error) {
	slog.Debug("cliapp: parsing arguments")
	flagSet := flag.NewFlagSet("xbdriver", flag.ContinueOnError)
	flagSet.SetOutput(output)

	flagSet.Usage = func() {
		fmt.Fprint(output, `
xbdriver - a minimal Xcode-style build driver.

Usage:
  xbdriver [options] SCENARIO_PATH...

Arguments:
  SCENARIO_PATH
    One or more .hcl files, or directories containing them, describing
    the target graph to build.

Options:
`)
		flagSet.PrintDefaults()
	}

	dryRunFlag := flagSet.Bool("dry-run", false, "Report what would happen without touching the filesystem.")
	logFormatFlag := flagSet.String("log-format", "text", "Log output format. Options: 'text' or 'json'.")
	logLevelFlag := flagSet.String("log-level", "info", "Set the logging level. Options: 'debug', 'info', 'warn', 'error'.")
	colorFlag := flagSet.String("color", "auto", "Colorize formatter output. Options: 'auto', 'always', 'never'.")
	exportNinjaFlag := flagSet.String("export-ninja", "", "Write the resolved build as a .ninja file at this path instead of building.")

	if err := flagSet.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return nil, true, nil
		}
		return nil, false, &ExitError{Code: 2, Message: err.Error()}
	}

	if flagSet.NArg() == 0 {
		flagSet.Usage()
		return nil, true, nil
	}

	logFormat := strings.ToLower(*logFormatFlag)
	if logFormat != "text" && logFormat != "json" {
		return nil, false, &ExitError{Code: 2, Message: "invalid log-format: must be 'text' or 'json'"}
	}

	logLevel := strings.ToLower(*logLevelFlag)
	switch logLevel {
	case "debug", "info", "warn", "error":
	default:
		return nil, false, &ExitError{Code: 2, Message: "invalid log-level: must be 'debug', 'info', 'warn', or 'error'"}
	}

	color := ColorMode(strings.ToLower(*colorFlag))
	switch color {
	case ColorAuto, ColorAlways, ColorNever:
	default:
		return nil, false, &ExitError{Code: 2, Message: "invalid color: must be 'auto', 'always', or 'never'"}
	}

	cfg := &Config{
		ScenarioPaths: flagSet.Args(),
		DryRun:        *dryRunFlag,
		LogLevel:      logLevel,
		LogFormat:     logFormat,
		Color:         color,
		ExportNinja:   *exportNinjaFlag,
	}
	slog.Debug("cliapp: parsed successfully", "config", cfg)
	return cfg, false, nil
}

// NewLogger builds a slog.Logger from the parsed Config, the same way
// burstgridgo's app package derives one from its AppConfig.
func NewLogger(cfg *Config, out io.Writer) *slog.Logger {
	var level slog.Level
	switch cfg.LogLevel {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: level}
	var handler slog.Handler
	if cfg.LogFormat == "json" {
		handler = slog.NewJSONHandler(out, opts)
	} else {
		handler = slog.NewTextHandler(out, opts)
	}
	return slog.New(handler)
}
