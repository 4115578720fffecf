package fieldsvc

import (
	"context"
	"sync"
	"time"

	"github.com/couchcryptid/fire-nowcast-engine/internal/domain"
	"github.com/couchcryptid/fire-nowcast-engine/internal/fields"
)

// CachedProvider wraps a fields.Provider with an in-memory LRU cache.
// Entries also carry a max age: weather windows go stale, so a hit older
// than maxAge is treated as a miss and refetched.
type CachedProvider struct {
	inner  fields.Provider
	cache  *lruCache
	maxAge time.Duration
}

// NewCachedProvider creates a cache decorator around a provider.
func NewCachedProvider(inner fields.Provider, maxEntries int, maxAge time.Duration) *CachedProvider {
	return &CachedProvider{
		inner:  inner,
		cache:  newLRUCache(maxEntries),
		maxAge: maxAge,
	}
}

// Fields returns the cached field set for a fire, fetching on miss or when
// the cached window has gone stale.
func (c *CachedProvider) Fields(ctx context.Context, fireID string) (domain.FieldSet, error) {
	if fs, ok := c.cache.get(fireID, c.maxAge); ok {
		return fs, nil
	}
	fs, err := c.inner.Fields(ctx, fireID)
	if err != nil {
		return fs, err
	}
	c.cache.put(fireID, fs)
	return fs, nil
}

// lruCache is a simple thread-safe LRU cache for field sets.
type lruCache struct {
	maxEntries int
	mu         sync.Mutex
	entries    map[string]*entry
	head       *entry // most recently used
	tail       *entry // least recently used
}

type entry struct {
	key      string
	value    domain.FieldSet
	storedAt time.Time
	prev     *entry
	next     *entry
}

func newLRUCache(maxEntries int) *lruCache {
	return &lruCache{
		maxEntries: maxEntries,
		entries:    make(map[string]*entry),
	}
}

func (c *lruCache) get(key string, maxAge time.Duration) (domain.FieldSet, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if !ok {
		return domain.FieldSet{}, false
	}
	if maxAge > 0 && time.Since(e.storedAt) > maxAge {
		c.remove(e)
		delete(c.entries, key)
		return domain.FieldSet{}, false
	}
	c.moveToFront(e)
	return e.value, true
}

func (c *lruCache) put(key string, value domain.FieldSet) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if e, ok := c.entries[key]; ok {
		e.value = value
		e.storedAt = time.Now()
		c.moveToFront(e)
		return
	}

	e := &entry{key: key, value: value, storedAt: time.Now()}
	c.entries[key] = e
	c.addToFront(e)

	if len(c.entries) > c.maxEntries {
		c.evictTail()
	}
}

func (c *lruCache) moveToFront(e *entry) {
	if e == c.head {
		return
	}
	c.remove(e)
	c.addToFront(e)
}

func (c *lruCache) addToFront(e *entry) {
	e.next = c.head
	e.prev = nil
	if c.head != nil {
		c.head.prev = e
	}
	c.head = e
	if c.tail == nil {
		c.tail = e
	}
}

func (c *lruCache) remove(e *entry) {
	if e.prev != nil {
		e.prev.next = e.next
	} else {
		c.head = e.next
	}
	if e.next != nil {
		e.next.prev = e.prev
	} else {
		c.tail = e.prev
	}
	e.prev, e.next = nil, nil
}

func (c *lruCache) evictTail() {
	if c.tail == nil {
		return
	}
	t := c.tail
	c.remove(t)
	delete(c.entries, t.key)
}
