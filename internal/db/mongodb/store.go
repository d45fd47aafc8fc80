// Package mongodb implements the repositories on MongoDB.
// Posts, users and comments live in one collection each; the follow
// relation is embedded in the follower's user document.
package mongodb

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
	"go.mongodb.org/mongo-driver/v2/mongo/readpref"

	"Agora/internal/core/comments"
	"Agora/internal/core/posts"
	"Agora/internal/core/users"
)

// Collection names
const (
	UsersCollection    = "users"
	PostsCollection    = "posts"
	CommentsCollection = "comments"
)

// Store owns the client and hands out repositories bound to one database
type Store struct {
	client *mongo.Client
	db     *mongo.Database
}

// Connect opens a client, verifies it with a ping and selects the database
func Connect(ctx context.Context, uri, database string) (*Store, error) {
	client, err := mongo.Connect(options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to mongodb: %w", err)
	}
	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("failed to ping mongodb: %w", err)
	}
	return &Store{client: client, db: client.Database(database)}, nil
}

// EnsureIndexes creates the indexes every query relies on. Safe to call repeatedly.
func (s *Store) EnsureIndexes(ctx context.Context) error {
	indexes := map[string][]mongo.IndexModel{
		UsersCollection: {
			{Keys: bson.D{{Key: "username", Value: 1}}, Options: options.Index().SetUnique(true).SetName("users_username_key")},
		},
		PostsCollection: {
			{Keys: bson.D{{Key: "authorId", Value: 1}, {Key: "createdAt", Value: -1}, {Key: "_id", Value: -1}}},
		},
		CommentsCollection: {
			{Keys: bson.D{{Key: "postId", Value: 1}, {Key: "createdAt", Value: 1}, {Key: "_id", Value: 1}}},
		},
	}

	for name, models := range indexes {
		if _, err := s.db.Collection(name).Indexes().CreateMany(ctx, models); err != nil {
			return fmt.Errorf("failed to create %s indexes: %w", name, err)
		}
	}
	return nil
}

// Ping checks the connection
func (s *Store) Ping(ctx context.Context) error {
	return s.client.Ping(ctx, readpref.Primary())
}

// Close disconnects the client
func (s *Store) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

// Users returns the user repository
func (s *Store) Users() users.Repository {
	return &userRepo{coll: s.db.Collection(UsersCollection)}
}

// Posts returns the post repository
func (s *Store) Posts() posts.Repository {
	return &postRepo{coll: s.db.Collection(PostsCollection)}
}

// Comments returns the comment repository
func (s *Store) Comments() comments.Repository {
	return &commentRepo{
		coll:  s.db.Collection(CommentsCollection),
		posts: s.db.Collection(PostsCollection),
	}
}
