package comments

import (
	"time"

	"Agora/internal/core/users"
)

// Comment is a flat, top-level reply to a post
type Comment struct {
	CreatedAt time.Time `json:"createdAt" db:"created_at" bson:"createdAt"`
	ID        string    `json:"id" db:"id" bson:"_id"`
	PostID    string    `json:"postId" db:"post_id" bson:"postId"`
	AuthorID  string    `json:"authorId" db:"author_id" bson:"authorId"`
	Content   string    `json:"content" db:"content" bson:"content"`
}

// CommentView is a comment with its author projection
type CommentView struct {
	CreatedAt time.Time         `json:"createdAt"`
	Author    *users.AuthorView `json:"user"`
	ID        string            `json:"id"`
	PostID    string            `json:"postId"`
	AuthorID  string            `json:"authorId"`
	Content   string            `json:"content"`
}

// CreateCommentRequest is the body of POST /posts/{id}/comments
type CreateCommentRequest struct {
	Content string `json:"content"`
}
