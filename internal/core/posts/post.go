package posts

import (
	"slices"
	"time"

	"Agora/internal/core/users"
)

// Post represents a post in the persistence layer.
// AuthorID and CreatedAt are assigned once at creation and never updated.
type Post struct {
	CreatedAt time.Time  `json:"createdAt" db:"created_at" bson:"createdAt"`
	DeletedAt *time.Time `json:"-" db:"deleted_at" bson:"deletedAt,omitempty"`
	ID        string     `json:"id" db:"id" bson:"_id"`
	AuthorID  string     `json:"authorId" db:"author_id" bson:"authorId"`
	Content   string     `json:"content" db:"content" bson:"content"`
	Likes     []string   `json:"likes" db:"likes" bson:"likes"`
}

// HasLike reports whether userID is in the post's like set
func (p *Post) HasLike(userID string) bool {
	return slices.Contains(p.Likes, userID)
}

// PostView is a post with its author projection attached.
// Used by every read and write response.
type PostView struct {
	CreatedAt time.Time         `json:"createdAt"`
	Author    *users.AuthorView `json:"user"`
	ID        string            `json:"id"`
	AuthorID  string            `json:"authorId"`
	Content   string            `json:"content"`
	Likes     []string          `json:"likes"`
}

// NewPostView builds the response view of a post.
// author may be nil when the author record no longer exists.
func NewPostView(post *Post, author *users.AuthorView) *PostView {
	likes := make([]string, len(post.Likes))
	copy(likes, post.Likes)
	return &PostView{
		CreatedAt: post.CreatedAt,
		Author:    author,
		ID:        post.ID,
		AuthorID:  post.AuthorID,
		Content:   post.Content,
		Likes:     likes,
	}
}

// CreatePostRequest is the body of POST /posts
type CreatePostRequest struct {
	Content string `json:"content"`
}
