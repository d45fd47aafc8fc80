package users_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"Agora/internal/core/users"
	"Agora/internal/db/memory"
)

func newTestService(t *testing.T) (users.Service, *users.LRUProjectionCache) {
	t.Helper()
	cache := users.NewLRUProjectionCache(10, time.Minute)
	return users.NewUserService(memory.NewStore().Users(), cache), cache
}

func TestCreateUser(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	user, err := svc.CreateUser(ctx, users.CreateUserRequest{ID: "  U1 ", Username: "Alice_1", Avatar: "a.png"})
	require.NoError(t, err)
	assert.Equal(t, "u1", user.ID)
	assert.Equal(t, "alice_1", user.Username)

	tests := []struct {
		name string
		req  users.CreateUserRequest
		want error
	}{
		{name: "Duplicate username", req: users.CreateUserRequest{ID: "u2", Username: "alice_1"}, want: users.ErrUsernameTaken},
		{name: "Duplicate id", req: users.CreateUserRequest{ID: "U1", Username: "someone"}, want: users.ErrUserExists},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.CreateUser(ctx, tt.req)
			assert.ErrorIs(t, err, tt.want)
		})
	}

	invalid := []users.CreateUserRequest{
		{ID: "", Username: "valid_name"},
		{ID: "u3", Username: "ab"},
		{ID: "u3", Username: "has space"},
	}
	for _, req := range invalid {
		_, err := svc.CreateUser(ctx, req)
		assert.True(t, users.IsValidationError(err), "expected validation error for %+v", req)
	}
}

func TestResolveAudience(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	for _, id := range []string{"u1", "u2", "u3"} {
		_, err := svc.CreateUser(ctx, users.CreateUserRequest{ID: id, Username: "name_" + id})
		require.NoError(t, err)
	}

	audience, err := svc.ResolveAudience(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, users.Audience{"u1"}, audience)

	require.NoError(t, svc.Follow(ctx, "u1", "u3"))
	require.NoError(t, svc.Follow(ctx, "U1", "u2"))
	require.NoError(t, svc.Follow(ctx, "u1", "u2"))

	audience, err = svc.ResolveAudience(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, users.Audience{"u1", "u2", "u3"}, audience)
	assert.Contains(t, audience, "u3")

	require.NoError(t, svc.Unfollow(ctx, "u1", "u3"))
	audience, err = svc.ResolveAudience(ctx, "u1")
	require.NoError(t, err)
	assert.NotContains(t, audience, "u3")

	_, err = svc.ResolveAudience(ctx, "nobody")
	assert.ErrorIs(t, err, users.ErrUserNotFound)
}

func TestFollowRules(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.CreateUser(ctx, users.CreateUserRequest{ID: "u1", Username: "one"})
	require.NoError(t, err)

	assert.True(t, users.IsValidationError(svc.Follow(ctx, "u1", "u1")))
	assert.True(t, users.IsValidationError(svc.Follow(ctx, "", "u1")))
	assert.ErrorIs(t, svc.Follow(ctx, "u1", "ghost"), users.ErrUserNotFound)
}

func TestGetAuthors_UsesCache(t *testing.T) {
	svc, cache := newTestService(t)
	ctx := context.Background()

	_, err := svc.CreateUser(ctx, users.CreateUserRequest{ID: "u1", Username: "one", Avatar: "1.png"})
	require.NoError(t, err)

	authors, err := svc.GetAuthors(ctx, []string{"u1", "U1", "missing"})
	require.NoError(t, err)
	require.Len(t, authors, 1)
	assert.Equal(t, &users.AuthorView{ID: "u1", Username: "one", Avatar: "1.png"}, authors["u1"])
	assert.Equal(t, 1, cache.Len())

	profile, err := svc.GetProfile(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, "one", profile.Username)

	_, err = svc.GetProfile(ctx, "missing")
	assert.ErrorIs(t, err, users.ErrUserNotFound)
}
