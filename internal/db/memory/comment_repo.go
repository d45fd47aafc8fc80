package memory

import (
	"cmp"
	"context"
	"slices"

	"Agora/internal/core/comments"
)

type commentRepo struct {
	store *Store
}

func (r *commentRepo) Create(_ context.Context, comment *comments.Comment) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	if post, ok := r.store.posts[comment.PostID]; !ok || post.DeletedAt != nil {
		return comments.ErrPostNotFound
	}
	stored := *comment
	r.store.comments[comment.PostID] = append(r.store.comments[comment.PostID], &stored)
	return nil
}

func (r *commentRepo) ListByPost(_ context.Context, postID string) ([]*comments.Comment, error) {
	r.store.mu.RLock()
	list := make([]*comments.Comment, 0, len(r.store.comments[postID]))
	for _, c := range r.store.comments[postID] {
		out := *c
		list = append(list, &out)
	}
	r.store.mu.RUnlock()

	slices.SortFunc(list, func(a, b *comments.Comment) int {
		if c := a.CreatedAt.Compare(b.CreatedAt); c != 0 {
			return c
		}
		return cmp.Compare(a.ID, b.ID)
	})
	return list, nil
}
