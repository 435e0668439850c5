package schema

import (
	"fmt"
	"path/filepath"
	"sync"
)

// Cache keeps one loaded Set per resolved input path for the lifetime of the
// cache.
type Cache struct {
	mu   sync.Mutex
	load func(string) (*Set, error)
	sets map[string]*Set
}

// NewCache returns a cache that loads missing entries with load, or with
// Load when load is nil.
func NewCache(load func(string) (*Set, error)) *Cache {
	if load == nil {
		load = Load
	}
	return &Cache{load: load, sets: make(map[string]*Set)}
}

// Get returns the Set for path, loading it on first use. Failed loads are not
// cached.
func (c *Cache) Get(path string) (*Set, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolve %s: %w", path, err)
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if set, ok := c.sets[abs]; ok {
		return set, nil
	}
	set, err := c.load(abs)
	if err != nil {
		return nil, err
	}
	c.sets[abs] = set
	return set, nil
}

func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.sets)
}
