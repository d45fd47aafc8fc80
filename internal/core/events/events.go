// Package events defines the domain events emitted after successful writes.
// Delivery is best-effort: a failed publish is logged by the caller and never
// rolls back or fails the write that produced it.
package events

import (
	"context"
	"time"
)

// Subjects used on the message bus
const (
	SubjectPostCreated    = "post.created"
	SubjectPostDeleted    = "post.deleted"
	SubjectLikeToggled    = "post.like_toggled"
	SubjectCommentCreated = "comment.created"
)

// PostCreated is emitted after a post is persisted
type PostCreated struct {
	CreatedAt time.Time `json:"createdAt"`
	PostID    string    `json:"postId"`
	AuthorID  string    `json:"authorId"`
}

// PostDeleted is emitted after a post is removed by its author
type PostDeleted struct {
	DeletedAt time.Time `json:"deletedAt"`
	PostID    string    `json:"postId"`
	AuthorID  string    `json:"authorId"`
}

// LikeToggled carries the state of the like set after a toggle
type LikeToggled struct {
	PostID    string `json:"postId"`
	UserID    string `json:"userId"`
	Liked     bool   `json:"liked"`
	LikeCount int    `json:"likeCount"`
}

// CommentCreated is emitted after a comment is persisted
type CommentCreated struct {
	CreatedAt time.Time `json:"createdAt"`
	CommentID string    `json:"commentId"`
	PostID    string    `json:"postId"`
	AuthorID  string    `json:"authorId"`
}

// Publisher publishes domain events
type Publisher interface {
	PublishPostCreated(ctx context.Context, evt PostCreated) error
	PublishPostDeleted(ctx context.Context, evt PostDeleted) error
	PublishLikeToggled(ctx context.Context, evt LikeToggled) error
	PublishCommentCreated(ctx context.Context, evt CommentCreated) error
}

// NopPublisher discards every event. Used when no broker is configured.
type NopPublisher struct{}

func (NopPublisher) PublishPostCreated(context.Context, PostCreated) error       { return nil }
func (NopPublisher) PublishPostDeleted(context.Context, PostDeleted) error       { return nil }
func (NopPublisher) PublishLikeToggled(context.Context, LikeToggled) error       { return nil }
func (NopPublisher) PublishCommentCreated(context.Context, CommentCreated) error { return nil }
