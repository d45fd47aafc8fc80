package mongodb

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"Agora/internal/core/comments"
)

type commentRepo struct {
	coll  *mongo.Collection
	posts *mongo.Collection
}

func (r *commentRepo) Create(ctx context.Context, comment *comments.Comment) error {
	count, err := r.posts.CountDocuments(ctx, liveFilter(bson.E{Key: "_id", Value: comment.PostID}))
	if err != nil {
		return fmt.Errorf("failed to check post: %w", err)
	}
	if count == 0 {
		return comments.ErrPostNotFound
	}

	if _, err := r.coll.InsertOne(ctx, comment); err != nil {
		return fmt.Errorf("failed to insert comment: %w", err)
	}
	return nil
}

func (r *commentRepo) ListByPost(ctx context.Context, postID string) ([]*comments.Comment, error) {
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: 1}, {Key: "_id", Value: 1}})
	cursor, err := r.coll.Find(ctx, bson.D{{Key: "postId", Value: postID}}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to query comments: %w", err)
	}

	result := []*comments.Comment{}
	if err := cursor.All(ctx, &result); err != nil {
		return nil, fmt.Errorf("failed to decode comments: %w", err)
	}
	for _, c := range result {
		c.CreatedAt = c.CreatedAt.UTC()
	}
	return result, nil
}
