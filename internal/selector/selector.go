// Package selector filters the named children of an entity with anchored
// include/exclude patterns and an ignore set.
package selector

import (
	"fmt"
	"log/slog"
	"regexp"

	"github.com/Alia5/pbtmpl/internal/model"
)

// Named is anything that can be selected.
type Named interface {
	Name() string
	IsValid(ignore model.IgnoreSet) bool
}

// Filter describes one selection. Empty patterns match everything.
type Filter struct {
	// Kind names the children in log messages, e.g. "rpc" or "field".
	Kind    string
	Include string
	Exclude string
	Ignore  model.IgnoreSet
}

// Compile builds a pattern that must match at the start of a name but need
// not consume all of it.
func Compile(pattern string) (*regexp.Regexp, error) {
	re, err := regexp.Compile(`^(?:` + pattern + `)`)
	if err != nil {
		return nil, fmt.Errorf("invalid pattern %q: %w", pattern, err)
	}
	return re, nil
}

func compileOrSkip(logger *slog.Logger, kind, which, pattern string) *regexp.Regexp {
	if pattern == "" {
		return nil
	}
	re, err := Compile(pattern)
	if err != nil {
		logger.Error("Ignoring invalid "+which+" rule", "kind", kind, "pattern", pattern, "error", err)
		return nil
	}
	return re
}

// Select keeps the items accepted by f, in their original order. A pattern
// that does not compile is logged and treated as absent.
func Select[T Named](items []T, f Filter, logger *slog.Logger) []T {
	if logger == nil {
		logger = slog.Default()
	}
	include := compileOrSkip(logger, f.Kind, "include", f.Include)
	exclude := compileOrSkip(logger, f.Kind, "exclude", f.Exclude)

	out := make([]T, 0, len(items))
	for _, item := range items {
		name := item.Name()
		if include != nil && !include.MatchString(name) {
			continue
		}
		if exclude != nil && exclude.MatchString(name) {
			continue
		}
		if !item.IsValid(f.Ignore) {
			continue
		}
		out = append(out, item)
	}
	return out
}
