package users

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLRUProjectionCache(t *testing.T) {
	ctx := context.Background()
	cache := NewLRUProjectionCache(2, time.Minute)

	cache.AddMany(ctx, []*AuthorView{
		{ID: "a", Username: "alice"},
		{ID: "b", Username: "bob"},
		nil,
	})
	assert.Equal(t, 2, cache.Len())

	found, missing := cache.GetMany(ctx, []string{"a", "c"})
	assert.Equal(t, "alice", found["a"].Username)
	assert.Equal(t, []string{"c"}, missing)

	// Adding a third entry evicts the least recently used one (b)
	cache.AddMany(ctx, []*AuthorView{{ID: "c", Username: "carol"}})
	_, missing = cache.GetMany(ctx, []string{"a", "b", "c"})
	assert.Equal(t, []string{"b"}, missing)
}

func TestLRUProjectionCache_Expiry(t *testing.T) {
	ctx := context.Background()
	cache := NewLRUProjectionCache(10, 10*time.Millisecond)

	cache.AddMany(ctx, []*AuthorView{{ID: "a", Username: "alice"}})
	time.Sleep(50 * time.Millisecond)

	found, missing := cache.GetMany(ctx, []string{"a"})
	assert.Empty(t, found)
	assert.Equal(t, []string{"a"}, missing)
}

func TestLRUProjectionCache_ReturnsCopies(t *testing.T) {
	ctx := context.Background()
	cache := NewLRUProjectionCache(10, time.Minute)
	cache.AddMany(ctx, []*AuthorView{{ID: "a", Username: "alice"}})

	found, _ := cache.GetMany(ctx, []string{"a"})
	found["a"].Username = "mutated"

	again, _ := cache.GetMany(ctx, []string{"a"})
	assert.Equal(t, "alice", again["a"].Username)
}
