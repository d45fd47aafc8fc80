package main

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"Agora/internal/config"
	"Agora/internal/core/feed"
	"Agora/internal/core/users"
	"Agora/internal/db/memory"
)

func TestSeedUsers_MemoryStoreServesFeed(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	userService := users.NewUserService(store.Users(), nil)

	seeds := []config.SeedUser{
		{ID: "alice", Username: "alice"},
		{ID: "bob", Username: "bob", Avatar: "https://img.example/bob.png"},
	}
	require.NoError(t, seedUsers(ctx, userService, seeds))
	// Restarting against a persistent store sees the same ids again
	require.NoError(t, seedUsers(ctx, userService, seeds))

	profile, err := userService.GetProfile(ctx, "bob")
	require.NoError(t, err)
	assert.Equal(t, "https://img.example/bob.png", profile.Avatar)

	page, err := feed.NewFeedService(store.Posts(), userService, feed.DefaultMaxPageSize).
		GetFeed(ctx, feed.GetFeedRequest{ViewerID: "alice", Params: feed.PageParams{PageSize: 10, PageNumber: 1}})
	require.NoError(t, err)
	assert.Empty(t, page.Items)
}

func TestSeedUsers_InvalidUsername(t *testing.T) {
	userService := users.NewUserService(memory.NewStore().Users(), nil)
	err := seedUsers(context.Background(), userService, []config.SeedUser{{ID: "x", Username: "!"}})
	assert.Error(t, err)
}
