package cache

import (
	"context"
	"sync"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
)

// LRU is an in-process Store bounded by size. A ttl of zero disables expiry.
type LRU[V any] struct {
	name string

	mu         sync.Mutex
	generation uint64
	entries    *expirable.LRU[string, V]
}

var _ Store[int] = (*LRU[int])(nil)

// NewLRU creates an in-process cache holding at most size entries.
func NewLRU[V any](name string, size int, ttl time.Duration) *LRU[V] {
	return &LRU[V]{
		name:    name,
		entries: expirable.NewLRU[string, V](size, nil, ttl),
	}
}

func (c *LRU[V]) Name() string { return c.name }

func (c *LRU[V]) Generation(context.Context) uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.generation
}

func (c *LRU[V]) Get(_ context.Context, key string) (V, bool) {
	return c.entries.Get(key)
}

func (c *LRU[V]) Set(_ context.Context, generation uint64, key string, value V) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if generation != c.generation {
		return
	}
	c.entries.Add(key, value)
}

func (c *LRU[V]) InvalidateAll(context.Context) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.generation++
	c.entries.Purge()
}

// Len returns the number of cached entries.
func (c *LRU[V]) Len() int {
	return c.entries.Len()
}
