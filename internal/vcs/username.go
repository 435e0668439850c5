// Package vcs reads the local version-control user name shown in generated
// file headers.
package vcs

import (
	"context"
	"path/filepath"
	"strings"
	"sync"

	"golang.org/x/sys/execabs"
)

// LookupFunc returns the user name configured for the repository at dir.
type LookupFunc func(ctx context.Context, dir string) (string, error)

// GitUserName runs `git config user.name` in dir.
func GitUserName(ctx context.Context, dir string) (string, error) {
	cmd := execabs.CommandContext(ctx, "git", "config", "user.name")
	cmd.Dir = dir
	out, err := cmd.Output()
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(out)), nil
}

// UserNameCache remembers one user name per project directory.
type UserNameCache struct {
	lookup   LookupFunc
	fallback string

	mu    sync.Mutex
	names map[string]string
}

// NewUserNameCache uses lookup (GitUserName when nil) and falls back to
// fallback when the lookup fails or yields nothing.
func NewUserNameCache(lookup LookupFunc, fallback string) *UserNameCache {
	if lookup == nil {
		lookup = GitUserName
	}
	return &UserNameCache{lookup: lookup, fallback: fallback, names: make(map[string]string)}
}

func (c *UserNameCache) Get(ctx context.Context, dir string) string {
	key := filepath.Clean(dir)
	c.mu.Lock()
	defer c.mu.Unlock()
	if name, ok := c.names[key]; ok {
		return name
	}
	name, err := c.lookup(ctx, dir)
	if err != nil || name == "" {
		name = c.fallback
	}
	c.names[key] = name
	return name
}
