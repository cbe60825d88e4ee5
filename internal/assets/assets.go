// Package assets fetches and decodes the scene and environment files.
package assets

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
)

// ProgressFunc receives bytes loaded and the expected total, which is
// zero or negative when unknown.
type ProgressFunc func(loaded, total int64)

// Manager resolves asset names against its sources.
type Manager struct {
	sources []Source
	cache   *Cache
	mu      sync.RWMutex
}

// NewManager creates a manager with no sources.
func NewManager() *Manager {
	return &Manager{cache: NewCache()}
}

// AddSource registers src. Later sources take priority.
func (m *Manager) AddSource(src Source) {
	m.mu.Lock()
	m.sources = append(m.sources, src)
	m.mu.Unlock()
}

// Load returns the bytes of name, reporting download progress.
func (m *Manager) Load(ctx context.Context, name string, report ProgressFunc) ([]byte, error) {
	if data, ok := m.cache.Get(name); ok {
		if report != nil {
			report(int64(len(data)), int64(len(data)))
		}
		return data, nil
	}

	m.mu.RLock()
	sources := append([]Source(nil), m.sources...)
	m.mu.RUnlock()

	for i := len(sources) - 1; i >= 0; i-- {
		data, err := read(ctx, sources[i], name, report)
		if errors.Is(err, ErrNotFound) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("loading %s from %s: %w", name, sources[i], err)
		}
		m.cache.Set(name, data)
		return data, nil
	}
	return nil, fmt.Errorf("%s: %w", name, ErrNotFound)
}

func read(ctx context.Context, src Source, name string, report ProgressFunc) ([]byte, error) {
	rc, size, err := src.Open(ctx, name)
	if err != nil {
		return nil, err
	}
	defer rc.Close()

	var buf bytes.Buffer
	if size > 0 {
		buf.Grow(int(size))
	}
	if _, err := io.Copy(&buf, &progressReader{r: rc, total: size, report: report}); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Close drops all sources and cached data.
func (m *Manager) Close() {
	m.mu.Lock()
	m.sources = nil
	m.mu.Unlock()
	m.cache.Clear()
}

// Cache is an in-memory byte cache keyed by asset name.
type Cache struct {
	data map[string][]byte
	mu   sync.RWMutex

	hits   int
	misses int
}

// NewCache creates an empty cache.
func NewCache() *Cache {
	return &Cache{data: make(map[string][]byte)}
}

// Get retrieves an entry.
func (c *Cache) Get(key string) ([]byte, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	data, ok := c.data[key]
	if ok {
		c.hits++
	} else {
		c.misses++
	}
	return data, ok
}

// Set stores an entry.
func (c *Cache) Set(key string, data []byte) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data[key] = data
}

// Stats returns hit and miss counts.
func (c *Cache) Stats() (hits, misses int) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.hits, c.misses
}

// Clear empties the cache and resets the counters.
func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data = make(map[string][]byte)
	c.hits = 0
	c.misses = 0
}
