package posts

import "context"

// Repository is the persistence layer for posts.
// Implementations must make DeleteOwned and ToggleLike single-document atomic
// operations; the service never performs a read-modify-write on its own.
type Repository interface {
	// Create inserts a new post
	Create(ctx context.Context, post *Post) error

	// GetByID returns ErrNotFound for missing or deleted posts
	GetByID(ctx context.Context, id string) (*Post, error)

	// Find executes a Query
	Find(ctx context.Context, q Query) ([]*Post, error)

	// Count returns the number of posts matching the filter, ignoring skip and limit
	Count(ctx context.Context, f Filter) (int, error)

	// DeleteOwned deletes the post only if it is live and authored by authorID,
	// checking ownership in the same write. Returns the post's last state.
	// Returns ErrNotFound when no live post has this id and ErrForbidden when
	// it belongs to someone else.
	DeleteOwned(ctx context.Context, id, authorID string) (*Post, error)

	// ToggleLike atomically adds userID to the like set if absent, or removes
	// it if present, and returns the updated post.
	ToggleLike(ctx context.Context, id, userID string) (*Post, error)
}

// Service defines the business logic for post mutations and profile reads
type Service interface {
	// CreatePost validates content, assigns id and createdAt, and persists the post
	CreatePost(ctx context.Context, authorID, content string) (*PostView, error)

	// DeletePost removes a post owned by requesterID and returns its last state
	DeletePost(ctx context.Context, requesterID, postID string) (*PostView, error)

	// GetPost returns a single live post
	GetPost(ctx context.Context, postID string) (*PostView, error)

	// GetPostsByUser returns every live post by userID, newest first.
	// Not filtered by audience; this is a profile view, not a feed.
	GetPostsByUser(ctx context.Context, userID string) ([]*PostView, error)

	// ToggleLike flips userID's membership in the post's like set
	ToggleLike(ctx context.Context, userID, postID string) (*PostView, error)
}
