// Package cache provides thread-safe generic caching and the rendered-markdown cache.
package cache

import "sync"

// Cache is a map guarded by a RWMutex. A bounded cache (max > 0) evicts in insertion order.
type Cache[K comparable, V any] struct {
	mu    sync.RWMutex
	items map[K]V
	order []K
	max   int
}

func NewCache[K comparable, V any]() *Cache[K, V] {
	return &Cache[K, V]{
		items: make(map[K]V),
	}
}

// NewBoundedCache returns a cache holding at most max entries.
func NewBoundedCache[K comparable, V any](max int) *Cache[K, V] {
	c := NewCache[K, V]()
	c.max = max
	return c
}

func (c *Cache[K, V]) Get(key K) (V, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	val, ok := c.items[key]
	return val, ok
}

func (c *Cache[K, V]) Set(key K, value V) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, exists := c.items[key]; !exists && c.max > 0 {
		c.order = append(c.order, key)
		for len(c.order) > c.max {
			delete(c.items, c.order[0])
			c.order = c.order[1:]
		}
	}
	c.items[key] = value
}

func (c *Cache[K, V]) Delete(key K) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.items, key)
	if c.max > 0 {
		for i, k := range c.order {
			if k == key {
				c.order = append(c.order[:i], c.order[i+1:]...)
				break
			}
		}
	}
}

func (c *Cache[K, V]) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.items)
}

func (c *Cache[K, V]) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items = make(map[K]V)
	c.order = nil
}

// RenderedContent represents cached rendered markdown with HTML and extra data.
type RenderedContent struct {
	HTML  []byte
	Extra interface{}
}

// Enough for undo/redo bouncing between recent snapshots without holding a whole session.
const renderedMarkdownCacheSize = 64

var renderedMarkdownCache = NewBoundedCache[string, *RenderedContent](renderedMarkdownCacheSize)

// GetRenderedMarkdown looks up a fragment by content hash and render variant
// (engine and syntax theme).
func GetRenderedMarkdown(contentHash, variant string) (*RenderedContent, bool) {
	return renderedMarkdownCache.Get(contentHash + ":" + variant)
}

func SetRenderedMarkdown(contentHash, variant string, html []byte, extra interface{}) {
	renderedMarkdownCache.Set(contentHash+":"+variant, &RenderedContent{
		HTML:  html,
		Extra: extra,
	})
}

func ClearRenderedMarkdownCache() {
	renderedMarkdownCache.Clear()
}
