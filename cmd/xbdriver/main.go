package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"xbdriver/internal/build"
	"xbdriver/internal/builtin"
	"xbdriver/internal/cliapp"
	"xbdriver/internal/ctxlog"
	"xbdriver/internal/formatter"
	"xbdriver/internal/ninjaexport"
	"xbdriver/internal/scenario"
	"xbdriver/internal/scheduler"
)

// main is the entrypoint for the xbdriver demo binary.
func main() {
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	})))

	if err := run(os.Stdout, os.Args[1:]); err != nil {
		if exitErr, ok := err.(*cliapp.ExitError); ok {
			fmt.Fprintln(os.Stderr, exitErr.Message)
			os.Exit(exitErr.Code)
		}
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(outW io.Writer, args []string) error {
	cfg, shouldExit, err := cliapp.Parse(args, outW)
	if err != nil {
		return err
	}
	if shouldExit {
		return nil
	}

	logger := cliapp.NewLogger(cfg, os.Stderr)
	slog.SetDefault(logger)
	ctx := ctxlog.WithLogger(context.Background(), logger)

	// The driver panics on critical setup errors (e.g. a duplicate
	// builtin driver registration); recover here to provide a clean
	// exit message to the user instead of crashing.
	defer func() {
		if r := recover(); r != nil {
			fmt.Fprintf(outW, "A critical startup error occurred: %v\n", r)
			os.Exit(1)
		}
	}()

	s, err := scenario.Load(ctx, cfg.ScenarioPaths...)
	if err != nil {
		return fmt.Errorf("loading scenario: %w", err)
	}

	if cfg.ExportNinja != "" {
		return exportNinja(ctx, s, cfg.ExportNinja)
	}

	f := newFormatter(cfg, outW)
	builtins := builtin.NewDefaultRegistry()
	opts := build.Options{DryRun: cfg.DryRun, ErrOut: os.Stderr}

	result, buildErr := build.Build(ctx, outW, f, builtins, opts, s, s, s)
	if buildErr != nil {
		logger.Error("build failed", "error", buildErr)
	}
	os.Exit(result.ExitCode())
	return nil
}

func newFormatter(cfg *cliapp.Config, out io.Writer) formatter.Formatter {
	switch cfg.Color {
	case cliapp.ColorAlways:
		return formatter.NewDefaultFormatterWithColor(true)
	case cliapp.ColorNever:
		return formatter.NewDefaultFormatterWithColor(false)
	default:
		if f, ok := out.(*os.File); ok {
			return formatter.NewDefaultFormatter(f)
		}
		return formatter.NewDefaultFormatterWithColor(false)
	}
}

// exportNinja resolves every target's invocations and writes them to path
// as a single ninja file, without running any of them.
func exportNinja(ctx context.Context, s *scenario.Scenario, path string) error {
	targets, err := s.Ordered()
	if err != nil {
		return err
	}

	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	defer file.Close()

	for _, t := range targets {
		env, err := s.EnvironmentFor(s, t)
		if err != nil {
			return fmt.Errorf("resolving environment for %s: %w", t.Name(), err)
		}
		invocations, err := s.InvocationsFor(s, t, env)
		if err != nil {
			return fmt.Errorf("resolving invocations for %s: %w", t.Name(), err)
		}
		scheduled, err := scheduler.Schedule(invocations)
		if err != nil {
			return fmt.Errorf("scheduling invocations for %s: %w", t.Name(), err)
		}
		if err := ninjaexport.Write(file, t.Name(), scheduled); err != nil {
			return fmt.Errorf("writing %s: %w", path, err)
		}
	}
	return nil
}
