// Package metadata caches probed media metadata keyed by absolute file path.
// Primary asset files and component bundle artifacts share the key space.
package metadata

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"time"
)

type Entry struct {
	Path      string    `json:"path"`
	Duration  float64   `json:"duration"`
	Width     int       `json:"width,omitempty"`
	Height    int       `json:"height,omitempty"`
	Codec     string    `json:"codec,omitempty"`
	FrameRate float64   `json:"frame_rate,omitempty"`
	ProbedAt  time.Time `json:"probed_at"`
}

// Store persists entries across restarts. Implementations must treat
// deleting an absent path as success.
type Store interface {
	PutMetadata(ctx context.Context, e Entry) error
	GetMetadata(ctx context.Context, path string) (*Entry, error)
	DeleteMetadata(ctx context.Context, path string) error
}

// Cache is an in-memory map optionally written through to a Store.
type Cache struct {
	store  Store
	logger *slog.Logger

	mu      sync.RWMutex
	entries map[string]Entry
}

// NewCache creates a cache. store may be nil.
func NewCache(store Store, logger *slog.Logger) *Cache {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Cache{
		store:   store,
		logger:  logger,
		entries: make(map[string]Entry),
	}
}

// Get returns the entry for path, falling back to the store on a miss.
func (c *Cache) Get(ctx context.Context, path string) (Entry, bool) {
	c.mu.RLock()
	e, ok := c.entries[path]
	c.mu.RUnlock()
	if ok || c.store == nil {
		return e, ok
	}

	stored, err := c.store.GetMetadata(ctx, path)
	if err != nil {
		c.logger.Warn("metadata store lookup failed", "path", path, "error", err)
		return Entry{}, false
	}
	if stored == nil {
		return Entry{}, false
	}

	c.mu.Lock()
	c.entries[path] = *stored
	c.mu.Unlock()
	return *stored, true
}

func (c *Cache) Put(ctx context.Context, e Entry) {
	if e.ProbedAt.IsZero() {
		e.ProbedAt = time.Now()
	}

	c.mu.Lock()
	c.entries[e.Path] = e
	c.mu.Unlock()

	if c.store != nil {
		if err := c.store.PutMetadata(ctx, e); err != nil {
			c.logger.Warn("metadata store write failed", "path", e.Path, "error", err)
		}
	}
}

// Purge drops every path given. Purging an absent key is a no-op, so two
// assets that share a bundle path can both be purged safely.
func (c *Cache) Purge(ctx context.Context, paths ...string) {
	c.mu.Lock()
	for _, p := range paths {
		delete(c.entries, p)
	}
	c.mu.Unlock()

	if c.store == nil {
		return
	}
	for _, p := range paths {
		if err := c.store.DeleteMetadata(ctx, p); err != nil {
			c.logger.Warn("metadata store delete failed", "path", p, "error", err)
		}
	}
}

// Has reports whether path is held in memory. It does not consult the store.
func (c *Cache) Has(path string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	_, ok := c.entries[path]
	return ok
}

func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}
