package users

import (
	"strings"
	"time"
)

// User is an account known to the backend.
// Following is the set of user IDs this user follows (the follow relation).
type User struct {
	CreatedAt time.Time `json:"createdAt" db:"created_at" bson:"createdAt"`
	ID        string    `json:"id" db:"id" bson:"_id"`
	Username  string    `json:"username" db:"username" bson:"username"`
	Avatar    string    `json:"avatar" db:"avatar" bson:"avatar"`
	Following []string  `json:"following,omitempty" db:"-" bson:"following"`
}

// AuthorView is the author projection embedded in post and comment views.
// Only these three fields ever leave the users package attached to content.
type AuthorView struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Avatar   string `json:"avatar"`
}

// View returns the author projection of u
func (u *User) View() *AuthorView {
	return &AuthorView{
		ID:       u.ID,
		Username: u.Username,
		Avatar:   u.Avatar,
	}
}

// CreateUserRequest represents the input for registering a user record.
// Identity issuance lives with the auth provider; this only indexes the account.
type CreateUserRequest struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Avatar   string `json:"avatar"`
}

// Audience is the deduplicated, sorted set of author IDs visible in a viewer's feed
type Audience []string

// NormalizeID returns the canonical representation of a user identifier.
// Every component compares IDs only after normalization so that likes and
// follows never hold two spellings of the same user.
func NormalizeID(id string) string {
	return strings.ToLower(strings.TrimSpace(id))
}
