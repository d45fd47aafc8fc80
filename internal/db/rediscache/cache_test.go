package rediscache

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"Agora/internal/core/users"
)

func TestProjectionCache_RoundTrip(t *testing.T) {
	url := os.Getenv("TEST_REDIS_URL")
	if url == "" {
		t.Skip("TEST_REDIS_URL not set")
	}

	ctx := context.Background()
	client, err := Connect(ctx, url)
	require.NoError(t, err)
	defer func() { _ = client.Close() }()

	cache := NewProjectionCache(client, time.Minute)
	defer client.Del(ctx, key("cache-alice"), key("cache-bob"))

	cache.AddMany(ctx, []*users.AuthorView{
		{ID: "cache-alice", Username: "alice", Avatar: "a.png"},
		nil,
	})

	found, missing := cache.GetMany(ctx, []string{"cache-alice", "cache-bob"})
	require.Contains(t, found, "cache-alice")
	assert.Equal(t, "alice", found["cache-alice"].Username)
	assert.Equal(t, "a.png", found["cache-alice"].Avatar)
	assert.Equal(t, []string{"cache-bob"}, missing)
}

func TestProjectionCache_UnreachableServerIsAMiss(t *testing.T) {
	client, err := Connect(context.Background(), "redis://127.0.0.1:1/0")
	assert.Error(t, err)
	assert.Nil(t, client)
}
