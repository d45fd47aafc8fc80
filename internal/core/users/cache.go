package users

import (
	"context"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
)

// LRUProjectionCache is a bounded in-process ProjectionCache.
// Entries expire after the TTL so avatar or username changes made by the
// auth provider show up without a restart.
type LRUProjectionCache struct {
	lru *expirable.LRU[string, AuthorView]
}

// NewLRUProjectionCache creates a cache holding at most size projections
func NewLRUProjectionCache(size int, ttl time.Duration) *LRUProjectionCache {
	if size <= 0 {
		size = 1
	}
	return &LRUProjectionCache{
		lru: expirable.NewLRU[string, AuthorView](size, nil, ttl),
	}
}

// GetMany implements ProjectionCache
func (c *LRUProjectionCache) GetMany(_ context.Context, ids []string) (map[string]*AuthorView, []string) {
	found := make(map[string]*AuthorView, len(ids))
	var missing []string
	for _, id := range ids {
		view, ok := c.lru.Get(id)
		if !ok {
			missing = append(missing, id)
			continue
		}
		found[id] = &view
	}
	return found, missing
}

// AddMany implements ProjectionCache
func (c *LRUProjectionCache) AddMany(_ context.Context, views []*AuthorView) {
	for _, view := range views {
		if view == nil {
			continue
		}
		c.lru.Add(view.ID, *view)
	}
}

// Len returns the number of cached projections
func (c *LRUProjectionCache) Len() int {
	return c.lru.Len()
}
