// Package protoc compiles schema sources into a serialized descriptor set
// by running the external protoc compiler.
package protoc

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar"
	"golang.org/x/sys/execabs"
)

// DefaultBinary is used when no compiler path is configured.
const DefaultBinary = "protoc"

// ErrNoSources is returned when the patterns match no schema files.
var ErrNoSources = errors.New("no schema source files matched")

type Options struct {
	Binary string
	// Patterns are file globs; "**" matches across directories.
	Patterns []string
	Includes []string
	Flags    []string
	// Output is the descriptor set path handed to protoc -o.
	Output string
	Stdout io.Writer
	Stderr io.Writer
}

// Expand resolves every pattern to the files it matches, keeping first-seen
// order and dropping duplicates. Relative patterns are resolved against base.
func Expand(patterns []string, base string) ([]string, error) {
	seen := make(map[string]bool)
	var out []string
	for _, p := range patterns {
		if base != "" && !filepath.IsAbs(p) {
			p = filepath.Join(base, p)
		}
		matches, err := doublestar.Glob(p)
		if err != nil {
			return nil, fmt.Errorf("expand %s: %w", p, err)
		}
		for _, m := range matches {
			if !seen[m] {
				seen[m] = true
				out = append(out, m)
			}
		}
	}
	return out, nil
}

// Args builds the compiler arguments: output, explicit includes, one include
// per distinct source directory, sources, then extra flags.
func Args(opts Options, files []string) []string {
	args := []string{"-o", opts.Output}

	dirs := make(map[string]bool)
	var fileDirs []string
	for _, f := range files {
		dir := filepath.Dir(f)
		if !dirs[dir] {
			dirs[dir] = true
			fileDirs = append(fileDirs, dir)
		}
	}
	for _, inc := range opts.Includes {
		if !dirs[inc] {
			args = append(args, "-I"+inc)
		}
	}
	for _, dir := range fileDirs {
		args = append(args, "-I"+dir)
	}
	args = append(args, files...)
	return append(args, opts.Flags...)
}

// Compile expands the source patterns and runs the compiler.
func Compile(ctx context.Context, opts Options, base string, logger *slog.Logger) error {
	files, err := Expand(opts.Patterns, base)
	if err != nil {
		return err
	}
	if len(files) == 0 {
		return fmt.Errorf("%w: %s", ErrNoSources, strings.Join(opts.Patterns, ", "))
	}
	if err := os.MkdirAll(filepath.Dir(opts.Output), 0o755); err != nil {
		return fmt.Errorf("create descriptor set directory: %w", err)
	}

	bin := opts.Binary
	if bin == "" {
		bin = DefaultBinary
	}
	args := Args(opts, files)
	logger.Debug("Running schema compiler", "binary", bin, "args", args)

	cmd := execabs.CommandContext(ctx, bin, args...)
	cmd.Dir = base
	cmd.Stdout = opts.Stdout
	cmd.Stderr = opts.Stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("run %s: %w", bin, err)
	}
	return nil
}
