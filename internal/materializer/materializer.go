// Package materializer creates the directories and auxiliary files an
// invocation needs before it runs.
package materializer

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"xbdriver/internal/ctxlog"
	"xbdriver/internal/formatter"
	"xbdriver/internal/invocation"
)

// AuxiliaryFileFailure is returned when directory creation, file write,
// or a permission change fails while materializing a target's auxiliary
// files. Path identifies the file or directory that could not be
// prepared.
type AuxiliaryFileFailure struct {
	Path string
	Err  error
}

func (e *AuxiliaryFileFailure) Error() string {
	return fmt.Sprintf("auxiliary file failure at %s: %v", e.Path, e.Err)
}

func (e *AuxiliaryFileFailure) Unwrap() error {
	return e.Err
}

// Materialize walks invocations in order and, for each one: ensures the
// parent directory of every output exists, then writes every auxiliary
// file that is not already present at its target path. Every formatter
// event produced along the way is written to out immediately, in
// execution order. dryRun suppresses every filesystem mutation while
// still producing the same event stream a wet run would.
//
// The existence check before writing an auxiliary file is coarse — a
// bare stat, with no content or modification-time comparison — so a
// changed auxiliary file whose path already exists is never rewritten.
// This is documented, acknowledged behavior, not a bug: see DESIGN.md.
func Materialize(ctx context.Context, out io.Writer, f formatter.Formatter, target formatter.Target, invocations []invocation.Invocation, dryRun bool) error {
	logger := ctxlog.FromContext(ctx)

	// planned records every path a wet run has created by this point, so a
	// dry run, which creates nothing, makes the same existence decisions.
	planned := make(map[string]bool)
	plan := func(path string) {
		for p := path; !planned[p]; p = filepath.Dir(p) {
			planned[p] = true
		}
	}

	for _, inv := range invocations {
		for _, output := range inv.Outputs {
			dir := filepath.Dir(output)
			if dirExists(dir) || planned[dir] {
				continue
			}
			io.WriteString(out, f.CreateAuxiliaryDirectory(ctx, dir))
			plan(dir)
			if dryRun {
				continue
			}
			if err := os.MkdirAll(dir, 0755); err != nil {
				logger.Error("failed to create auxiliary directory", "path", dir, "error", err)
				return &AuxiliaryFileFailure{Path: dir, Err: err}
			}
		}

		for _, aux := range inv.AuxiliaryFiles {
			if fileExists(aux.Path) || planned[aux.Path] {
				continue
			}

			if !dryRun {
				if err := os.MkdirAll(filepath.Dir(aux.Path), 0755); err != nil {
					logger.Error("failed to create directory for auxiliary file", "path", aux.Path, "error", err)
					return &AuxiliaryFileFailure{Path: aux.Path, Err: err}
				}
			}

			io.WriteString(out, f.WriteAuxiliaryFile(ctx, aux.Path))
			plan(aux.Path)
			if !dryRun {
				if err := os.WriteFile(aux.Path, aux.Contents, 0644); err != nil {
					logger.Error("failed to write auxiliary file", "path", aux.Path, "error", err)
					return &AuxiliaryFileFailure{Path: aux.Path, Err: err}
				}
			}

			if aux.Executable && !isExecutable(aux.Path) {
				io.WriteString(out, f.SetAuxiliaryExecutable(ctx, aux.Path))
				if !dryRun {
					if err := os.Chmod(aux.Path, 0755); err != nil {
						logger.Error("failed to mark auxiliary file executable", "path", aux.Path, "error", err)
						return &AuxiliaryFileFailure{Path: aux.Path, Err: err}
					}
				}
			}
		}
	}

	return nil
}

func dirExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

func isExecutable(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return info.Mode()&0111 != 0
}
