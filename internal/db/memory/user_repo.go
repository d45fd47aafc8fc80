package memory

import (
	"context"
	"slices"
	"time"

	"Agora/internal/core/users"
)

type userRepo struct {
	store *Store
}

func (r *userRepo) Create(_ context.Context, user *users.User) (*users.User, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	if _, exists := r.store.users[user.ID]; exists {
		return nil, users.ErrUserExists
	}
	for _, existing := range r.store.users {
		if existing.Username == user.Username {
			return nil, users.ErrUsernameTaken
		}
	}

	if user.CreatedAt.IsZero() {
		user.CreatedAt = time.Now().UTC()
	}
	stored := *user
	stored.Following = nil
	r.store.users[user.ID] = &stored
	return r.copyUser(&stored), nil
}

func (r *userRepo) GetByID(_ context.Context, id string) (*users.User, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	user, ok := r.store.users[id]
	if !ok {
		return nil, users.ErrUserNotFound
	}
	return r.copyUser(user), nil
}

func (r *userRepo) GetByIDs(_ context.Context, ids []string) (map[string]*users.User, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	result := make(map[string]*users.User, len(ids))
	for _, id := range ids {
		if user, ok := r.store.users[id]; ok {
			result[id] = r.copyUser(user)
		}
	}
	return result, nil
}

func (r *userRepo) GetFollowing(_ context.Context, id string) ([]string, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	if _, ok := r.store.users[id]; !ok {
		return nil, users.ErrUserNotFound
	}
	return r.followingOf(id), nil
}

func (r *userRepo) Follow(_ context.Context, followerID, followeeID string) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	if _, ok := r.store.users[followerID]; !ok {
		return users.ErrUserNotFound
	}
	if _, ok := r.store.users[followeeID]; !ok {
		return users.ErrUserNotFound
	}
	set, ok := r.store.following[followerID]
	if !ok {
		set = make(map[string]struct{})
		r.store.following[followerID] = set
	}
	set[followeeID] = struct{}{}
	return nil
}

func (r *userRepo) Unfollow(_ context.Context, followerID, followeeID string) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	delete(r.store.following[followerID], followeeID)
	return nil
}

// followingOf must be called with the lock held
func (r *userRepo) followingOf(id string) []string {
	ids := make([]string, 0, len(r.store.following[id]))
	for followee := range r.store.following[id] {
		ids = append(ids, followee)
	}
	slices.Sort(ids)
	return ids
}

// copyUser must be called with the lock held
func (r *userRepo) copyUser(user *users.User) *users.User {
	out := *user
	out.Following = r.followingOf(user.ID)
	return &out
}
