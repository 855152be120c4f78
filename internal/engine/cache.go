// cache.go provides an in-memory cache for compiled Go templates.
// This is the L1 cache: it avoids re-parsing template files on every
// request. Entries are keyed by file path and modification time, so a
// rewritten file automatically produces a cache miss.
package engine

import (
	"html/template"
	"log/slog"
	"sync"
	"time"
)

type cacheEntry struct {
	modTime  time.Time
	compiled *template.Template
}

// templateCache is a concurrency-safe in-memory cache of compiled templates.
type templateCache struct {
	mu      sync.RWMutex
	entries map[string]cacheEntry
}

func newTemplateCache() *templateCache {
	return &templateCache{
		entries: make(map[string]cacheEntry),
	}
}

// get retrieves a compiled template. Returns nil on miss or when the file
// changed since it was cached.
func (c *templateCache) get(path string, modTime time.Time) *template.Template {
	c.mu.RLock()
	defer c.mu.RUnlock()
	e, ok := c.entries[path]
	if !ok || !e.modTime.Equal(modTime) {
		return nil
	}
	return e.compiled
}

// put stores a compiled template, replacing any older version of the file.
func (c *templateCache) put(path string, modTime time.Time, tmpl *template.Template) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[path] = cacheEntry{modTime: modTime, compiled: tmpl}
	slog.Debug("template cached", "path", path, "size", len(c.entries))
}

// invalidateAll clears the entire cache.
func (c *templateCache) invalidateAll() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]cacheEntry)
	slog.Debug("template cache fully cleared")
}
