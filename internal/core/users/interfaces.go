package users

import "context"

// Repository defines the interface for user and follow-graph persistence
type Repository interface {
	Create(ctx context.Context, user *User) (*User, error)

	// GetByID returns ErrUserNotFound when no user has this ID
	GetByID(ctx context.Context, id string) (*User, error)

	// GetByIDs retrieves multiple users in a single batch query.
	// Missing users are not included in the result map (no error for missing users).
	GetByIDs(ctx context.Context, ids []string) (map[string]*User, error)

	// GetFollowing returns the IDs followed by the user.
	// Returns ErrUserNotFound if the user itself does not exist.
	GetFollowing(ctx context.Context, id string) ([]string, error)

	// Follow and Unfollow are idempotent
	Follow(ctx context.Context, followerID, followeeID string) error
	Unfollow(ctx context.Context, followerID, followeeID string) error
}

// ProjectionCache caches author projections keyed by user ID
type ProjectionCache interface {
	// GetMany returns the cached views and the IDs that were not cached
	GetMany(ctx context.Context, ids []string) (map[string]*AuthorView, []string)
	AddMany(ctx context.Context, views []*AuthorView)
}

// Service defines the social-graph and author-projection business logic
type Service interface {
	CreateUser(ctx context.Context, req CreateUserRequest) (*User, error)
	GetProfile(ctx context.Context, id string) (*AuthorView, error)

	// ResolveAudience returns following(viewer) ∪ {viewer}
	ResolveAudience(ctx context.Context, viewerID string) (Audience, error)

	// GetAuthors returns author projections for the given IDs.
	// Unknown IDs are absent from the map.
	GetAuthors(ctx context.Context, ids []string) (map[string]*AuthorView, error)

	Follow(ctx context.Context, followerID, followeeID string) error
	Unfollow(ctx context.Context, followerID, followeeID string) error
}
