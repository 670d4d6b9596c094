// Package cache is a bounded map with per-entry freshness. An entry older
// than the TTL is never returned and is dropped on read.
package cache

import (
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
)

const DefaultSize = 256

// Entry is a cached value with the time it was stored.
type Entry[V any] struct {
	Value      V
	InsertedAt time.Time
}

// IsFresh reports whether the entry is younger than ttl at now.
func (e Entry[V]) IsFresh(now time.Time, ttl time.Duration) bool {
	return now.Sub(e.InsertedAt) < ttl
}

// Cache is safe for concurrent use.
type Cache[K comparable, V any] struct {
	lru *lru.Cache[K, Entry[V]]
	ttl time.Duration
	now func() time.Time
}

type Option[K comparable, V any] func(*Cache[K, V])

// WithClock replaces time.Now, for tests.
func WithClock[K comparable, V any](now func() time.Time) Option[K, V] {
	return func(c *Cache[K, V]) { c.now = now }
}

// New builds a cache holding at most size entries. Least recently used
// entries are evicted first.
func New[K comparable, V any](size int, ttl time.Duration, opts ...Option[K, V]) (*Cache[K, V], error) {
	if size <= 0 {
		size = DefaultSize
	}
	l, err := lru.New[K, Entry[V]](size)
	if err != nil {
		return nil, err
	}
	c := &Cache[K, V]{lru: l, ttl: ttl, now: time.Now}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Must is New that panics on error.
func Must[K comparable, V any](size int, ttl time.Duration, opts ...Option[K, V]) *Cache[K, V] {
	c, err := New(size, ttl, opts...)
	if err != nil {
		panic(err)
	}
	return c
}

// Get returns the value for key when it is still fresh.
func (c *Cache[K, V]) Get(key K) (V, bool) {
	var zero V
	e, ok := c.lru.Get(key)
	if !ok {
		return zero, false
	}
	if !e.IsFresh(c.now(), c.ttl) {
		c.lru.Remove(key)
		return zero, false
	}
	return e.Value, true
}

func (c *Cache[K, V]) Set(key K, value V) {
	c.lru.Add(key, Entry[V]{Value: value, InsertedAt: c.now()})
}

func (c *Cache[K, V]) Delete(key K) {
	c.lru.Remove(key)
}

// DeleteFunc removes every key for which match returns true.
func (c *Cache[K, V]) DeleteFunc(match func(K) bool) {
	for _, k := range c.lru.Keys() {
		if match(k) {
			c.lru.Remove(k)
		}
	}
}

func (c *Cache[K, V]) Purge() {
	c.lru.Purge()
}

// Len counts stored entries, stale ones included.
func (c *Cache[K, V]) Len() int {
	return c.lru.Len()
}

func (c *Cache[K, V]) TTL() time.Duration {
	return c.ttl
}
