package memory

import (
	"context"
	"fmt"
	"slices"
	"time"

	"Agora/internal/core/posts"
)

type postRepo struct {
	store *Store
}

func (r *postRepo) Create(_ context.Context, post *posts.Post) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	if _, exists := r.store.posts[post.ID]; exists {
		return fmt.Errorf("post already exists: %s", post.ID)
	}
	r.store.posts[post.ID] = copyPost(post)
	return nil
}

func (r *postRepo) GetByID(_ context.Context, id string) (*posts.Post, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	post, ok := r.live(id)
	if !ok {
		return nil, posts.ErrNotFound
	}
	return copyPost(post), nil
}

func (r *postRepo) Find(_ context.Context, q posts.Query) ([]*posts.Post, error) {
	if err := q.Validate(); err != nil {
		return nil, err
	}

	r.store.mu.RLock()
	matched := make([]*posts.Post, 0)
	for _, post := range r.store.posts {
		if q.Filter.Matches(post) {
			matched = append(matched, copyPost(post))
		}
	}
	r.store.mu.RUnlock()

	slices.SortFunc(matched, q.Sort.Compare)

	if q.Skip >= len(matched) {
		return []*posts.Post{}, nil
	}
	matched = matched[q.Skip:]
	if q.Limit > 0 && q.Limit < len(matched) {
		matched = matched[:q.Limit]
	}
	return matched, nil
}

func (r *postRepo) Count(_ context.Context, f posts.Filter) (int, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	count := 0
	for _, post := range r.store.posts {
		if f.Matches(post) {
			count++
		}
	}
	return count, nil
}

func (r *postRepo) DeleteOwned(_ context.Context, id, authorID string) (*posts.Post, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	post, ok := r.live(id)
	if !ok {
		return nil, posts.ErrNotFound
	}
	if post.AuthorID != authorID {
		return nil, posts.ErrForbidden
	}

	now := time.Now().UTC()
	post.DeletedAt = &now
	delete(r.store.comments, id)
	return copyPost(post), nil
}

func (r *postRepo) ToggleLike(_ context.Context, id, userID string) (*posts.Post, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	post, ok := r.live(id)
	if !ok {
		return nil, posts.ErrNotFound
	}

	if idx := slices.Index(post.Likes, userID); idx >= 0 {
		post.Likes = slices.Delete(post.Likes, idx, idx+1)
	} else {
		post.Likes = append(post.Likes, userID)
	}
	return copyPost(post), nil
}

// live must be called with the lock held
func (r *postRepo) live(id string) (*posts.Post, bool) {
	post, ok := r.store.posts[id]
	if !ok || post.DeletedAt != nil {
		return nil, false
	}
	return post, true
}

func copyPost(post *posts.Post) *posts.Post {
	out := *post
	out.Likes = slices.Clone(post.Likes)
	if out.Likes == nil {
		out.Likes = []string{}
	}
	if post.DeletedAt != nil {
		deletedAt := *post.DeletedAt
		out.DeletedAt = &deletedAt
	}
	return &out
}
