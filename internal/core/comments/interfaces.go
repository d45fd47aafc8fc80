package comments

import "context"

// Repository is the persistence layer for comments
type Repository interface {
	Create(ctx context.Context, comment *Comment) error

	// ListByPost returns a post's comments oldest first (createdAt, id ascending)
	ListByPost(ctx context.Context, postID string) ([]*Comment, error)
}

// Service defines comment business logic
type Service interface {
	CreateComment(ctx context.Context, authorID, postID, content string) (*CommentView, error)
	ListComments(ctx context.Context, postID string) ([]*CommentView, error)
}
