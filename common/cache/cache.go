// Package cache provides a concurrency safe LRU keyed by comparable
// values. The candle store fronts sqlite with one to keep hot datasets
// out of repeat scans
package cache

import (
	"container/list"
	"sync"
)

// Cache is a fixed capacity LRU safe for concurrent use
type Cache struct {
	capacity uint64
	mu       sync.Mutex
	order    *list.List
	items    map[any]*list.Element
}

type entry struct {
	key   any
	value any
}

// New returns an empty cache evicting the least recently used entry once
// capacity is exceeded
func New(capacity uint64) *Cache {
	return &Cache{
		capacity: capacity,
		order:    list.New(),
		items:    make(map[any]*list.Element),
	}
}

// Add stores a value, refreshing recency and overwriting any previous
// value for the key
func (c *Cache) Add(key, value any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if e, ok := c.items[key]; ok {
		c.order.MoveToFront(e)
		e.Value.(*entry).value = value
		return
	}
	c.items[key] = c.order.PushFront(&entry{key: key, value: value})
	if uint64(c.order.Len()) > c.capacity {
		if oldest := c.order.Back(); oldest != nil {
			c.remove(oldest)
		}
	}
}

// Get returns the value stored for key, or nil, refreshing recency on a
// hit
func (c *Cache) Get(key any) any {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.items[key]
	if !ok {
		return nil
	}
	c.order.MoveToFront(e)
	return e.Value.(*entry).value
}

// Contains reports whether key is cached without refreshing recency
func (c *Cache) Contains(key any) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.items[key]
	return ok
}

// ContainsOrAdd returns true when key is already cached, otherwise adds
// the value and returns false
func (c *Cache) ContainsOrAdd(key, value any) bool {
	if c.Contains(key) {
		return true
	}
	c.Add(key, value)
	return false
}

// Remove evicts key, reporting whether it was present
func (c *Cache) Remove(key any) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.items[key]
	if !ok {
		return false
	}
	c.remove(e)
	return true
}

// Clear empties the cache
func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.order.Init()
	c.items = make(map[any]*list.Element)
}

// Len returns the number of cached entries
func (c *Cache) Len() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return uint64(c.order.Len())
}

func (c *Cache) getNewest() (key, value any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if e := c.order.Front(); e != nil {
		return e.Value.(*entry).key, e.Value.(*entry).value
	}
	return nil, nil
}

func (c *Cache) getOldest() (key, value any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if e := c.order.Back(); e != nil {
		return e.Value.(*entry).key, e.Value.(*entry).value
	}
	return nil, nil
}

// remove expects the lock held
func (c *Cache) remove(e *list.Element) {
	c.order.Remove(e)
	delete(c.items, e.Value.(*entry).key)
}
