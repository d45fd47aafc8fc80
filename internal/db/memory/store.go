// Package memory is an in-process persistence layer.
// Every operation runs under one store-wide lock, which gives the same
// per-document atomicity the database backends provide.
package memory

import (
	"sync"

	"Agora/internal/core/comments"
	"Agora/internal/core/posts"
	"Agora/internal/core/users"
)

// Store holds users, follows, posts and comments in memory
type Store struct {
	users     map[string]*users.User
	following map[string]map[string]struct{} // follower -> followees
	posts     map[string]*posts.Post
	comments  map[string][]*comments.Comment // postID -> comments
	mu        sync.RWMutex
}

// NewStore creates an empty store
func NewStore() *Store {
	return &Store{
		users:     make(map[string]*users.User),
		following: make(map[string]map[string]struct{}),
		posts:     make(map[string]*posts.Post),
		comments:  make(map[string][]*comments.Comment),
	}
}

// Users returns the store's users.Repository
func (s *Store) Users() users.Repository {
	return &userRepo{store: s}
}

// Posts returns the store's posts.Repository
func (s *Store) Posts() posts.Repository {
	return &postRepo{store: s}
}

// Comments returns the store's comments.Repository
func (s *Store) Comments() comments.Repository {
	return &commentRepo{store: s}
}
