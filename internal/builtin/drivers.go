package builtin

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// runCopy implements "builtin-copy": args are [source..., destination].
// If destination is an existing directory (or more than one source is
// given), each source is copied into it by basename; otherwise the sole
// source is copied to destination directly. Directories are copied
// recursively.
func runCopy(ctx context.Context, args []string, env map[string]string, cwd string) (int, error) {
	if len(args) < 2 {
		return 1, fmt.Errorf("builtin-copy: expected at least 2 arguments, got %d", len(args))
	}
	sources, dest := args[:len(args)-1], args[len(args)-1]

	destIsDir := len(sources) > 1
	if !destIsDir {
		if info, err := os.Stat(dest); err == nil && info.IsDir() {
			destIsDir = true
		}
	}

	for _, src := range sources {
		if ctx.Err() != nil {
			return 1, ctx.Err()
		}
		target := dest
		if destIsDir {
			target = filepath.Join(dest, filepath.Base(src))
		}
		if err := copyPath(src, target); err != nil {
			return 1, fmt.Errorf("builtin-copy: %w", err)
		}
	}
	return 0, nil
}

func copyPath(src, dst string) error {
	info, err := os.Lstat(src)
	if err != nil {
		return err
	}
	if info.IsDir() {
		return copyDir(src, dst, info)
	}
	return copyFile(src, dst, info)
}

func copyDir(src, dst string, info os.FileInfo) error {
	if err := os.MkdirAll(dst, info.Mode().Perm()|0755); err != nil {
		return err
	}
	entries, err := os.ReadDir(src)
	if err != nil {
		return err
	}
	for _, entry := range entries {
		if err := copyPath(filepath.Join(src, entry.Name()), filepath.Join(dst, entry.Name())); err != nil {
			return err
		}
	}
	return nil
}

func copyFile(src, dst string, info os.FileInfo) error {
	if err := os.MkdirAll(filepath.Dir(dst), 0755); err != nil {
		return err
	}
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, info.Mode().Perm())
	if err != nil {
		return err
	}
	defer out.Close()

	if _, err := io.Copy(out, in); err != nil {
		return err
	}
	return nil
}

// runMkdir implements "builtin-mkdir": every argument is created as a
// directory, recursively, if it does not already exist.
func runMkdir(ctx context.Context, args []string, env map[string]string, cwd string) (int, error) {
	for _, dir := range args {
		if ctx.Err() != nil {
			return 1, ctx.Err()
		}
		if err := os.MkdirAll(dir, 0755); err != nil {
			return 1, fmt.Errorf("builtin-mkdir: %w", err)
		}
	}
	return 0, nil
}

// runSymlink implements "builtin-symlink": args are [target, linkPath].
// An existing file or link at linkPath is replaced.
func runSymlink(ctx context.Context, args []string, env map[string]string, cwd string) (int, error) {
	if len(args) != 2 {
		return 1, fmt.Errorf("builtin-symlink: expected exactly 2 arguments, got %d", len(args))
	}
	linkTarget, linkPath := args[0], args[1]

	if err := os.MkdirAll(filepath.Dir(linkPath), 0755); err != nil {
		return 1, fmt.Errorf("builtin-symlink: %w", err)
	}
	if _, err := os.Lstat(linkPath); err == nil {
		if err := os.Remove(linkPath); err != nil {
			return 1, fmt.Errorf("builtin-symlink: removing existing entry: %w", err)
		}
	}
	if err := os.Symlink(linkTarget, linkPath); err != nil {
		return 1, fmt.Errorf("builtin-symlink: %w", err)
	}
	return 0, nil
}

// runConcatenate implements "builtin-concatenate": args are
// [input..., output]. Every input's bytes are written to output, in
// argument order, truncating any existing output contents.
func runConcatenate(ctx context.Context, args []string, env map[string]string, cwd string) (int, error) {
	if len(args) < 2 {
		return 1, fmt.Errorf("builtin-concatenate: expected at least 2 arguments, got %d", len(args))
	}
	inputs, output := args[:len(args)-1], args[len(args)-1]

	if err := os.MkdirAll(filepath.Dir(output), 0755); err != nil {
		return 1, fmt.Errorf("builtin-concatenate: %w", err)
	}
	out, err := os.OpenFile(output, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0644)
	if err != nil {
		return 1, fmt.Errorf("builtin-concatenate: %w", err)
	}
	defer out.Close()

	for _, input := range inputs {
		if ctx.Err() != nil {
			return 1, ctx.Err()
		}
		in, err := os.Open(input)
		if err != nil {
			return 1, fmt.Errorf("builtin-concatenate: %w", err)
		}
		_, copyErr := io.Copy(out, in)
		in.Close()
		if copyErr != nil {
			return 1, fmt.Errorf("builtin-concatenate: %w", copyErr)
		}
	}
	return 0, nil
}
