package utils

import (
	"os"
	"sync"
	"time"
)

// cacheEntry holds a parsed value together with the file metadata it was parsed from
type cacheEntry[V any] struct {
	value   V
	modTime time.Time
	size    int64
}

// FileCache caches values derived from files, invalidating an entry when
// its file's modification time or size changes. Safe for concurrent use.
type FileCache[V any] struct {
	items map[string]*cacheEntry[V]
	mutex sync.RWMutex
}

// NewFileCache creates an empty file cache
func NewFileCache[V any]() *FileCache[V] {
	return &FileCache[V]{
		items: make(map[string]*cacheEntry[V]),
	}
}

// Get returns the cached value for path if the file is unchanged since it was stored
func (c *FileCache[V]) Get(path string) (V, bool) {
	c.mutex.RLock()
	item, exists := c.items[path]
	c.mutex.RUnlock()

	var zero V
	if !exists {
		return zero, false
	}

	if stat, err := os.Stat(path); err == nil {
		if stat.ModTime().Equal(item.modTime) && stat.Size() == item.size {
			return item.value, true
		}
	}

	// File changed or vanished
	c.mutex.Lock()
	delete(c.items, path)
	c.mutex.Unlock()

	return zero, false
}

// Set stores value for path, recording the file's current metadata
func (c *FileCache[V]) Set(path string, value V) error {
	stat, err := os.Stat(path)
	if err != nil {
		return err
	}

	c.mutex.Lock()
	defer c.mutex.Unlock()

	c.items[path] = &cacheEntry[V]{
		value:   value,
		modTime: stat.ModTime(),
		size:    stat.Size(),
	}
	return nil
}

// GetOrLoad returns the cached value for path or calls load and caches its result
func (c *FileCache[V]) GetOrLoad(path string, load func(path string) (V, error)) (V, error) {
	if v, ok := c.Get(path); ok {
		return v, nil
	}
	v, err := load(path)
	if err != nil {
		return v, err
	}
	// A failed stat only means the next call reloads
	_ = c.Set(path, v)
	return v, nil
}

// Delete removes an item from the cache
func (c *FileCache[V]) Delete(path string) {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	delete(c.items, path)
}

// Clear removes all items from the cache
func (c *FileCache[V]) Clear() {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	c.items = make(map[string]*cacheEntry[V])
}

// Size returns the number of items in the cache
func (c *FileCache[V]) Size() int {
	c.mutex.RLock()
	defer c.mutex.RUnlock()

	return len(c.items)
}
