package mongodb

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"Agora/internal/core/users"
)

type userRepo struct {
	coll *mongo.Collection
}

func (r *userRepo) Create(ctx context.Context, user *users.User) (*users.User, error) {
	created := *user
	if created.CreatedAt.IsZero() {
		created.CreatedAt = time.Now().UTC().Truncate(time.Millisecond)
	}
	created.Following = []string{}

	if _, err := r.coll.InsertOne(ctx, &created); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			if strings.Contains(err.Error(), "username") {
				return nil, users.ErrUsernameTaken
			}
			return nil, users.ErrUserExists
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	created.Following = nil
	return &created, nil
}

func (r *userRepo) GetByID(ctx context.Context, id string) (*users.User, error) {
	var user users.User
	err := r.coll.FindOne(ctx, bson.D{{Key: "_id", Value: id}}).Decode(&user)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, users.ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user by id: %w", err)
	}
	user.Following = nil
	return &user, nil
}

func (r *userRepo) GetByIDs(ctx context.Context, ids []string) (map[string]*users.User, error) {
	result := make(map[string]*users.User, len(ids))
	if len(ids) == 0 {
		return result, nil
	}

	opts := options.Find().SetProjection(bson.D{{Key: "following", Value: 0}})
	cursor, err := r.coll.Find(ctx, bson.D{{Key: "_id", Value: bson.D{{Key: "$in", Value: ids}}}}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to query users: %w", err)
	}

	var found []*users.User
	if err := cursor.All(ctx, &found); err != nil {
		return nil, fmt.Errorf("failed to decode users: %w", err)
	}
	for _, user := range found {
		result[user.ID] = user
	}
	return result, nil
}

func (r *userRepo) GetFollowing(ctx context.Context, id string) ([]string, error) {
	var doc struct {
		Following []string `bson:"following"`
	}
	opts := options.FindOne().SetProjection(bson.D{{Key: "following", Value: 1}})
	err := r.coll.FindOne(ctx, bson.D{{Key: "_id", Value: id}}, opts).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, users.ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get following: %w", err)
	}
	if doc.Following == nil {
		return []string{}, nil
	}
	return doc.Following, nil
}

func (r *userRepo) Follow(ctx context.Context, followerID, followeeID string) error {
	count, err := r.coll.CountDocuments(ctx, bson.D{{Key: "_id", Value: followeeID}})
	if err != nil {
		return fmt.Errorf("failed to check followee: %w", err)
	}
	if count == 0 {
		return users.ErrUserNotFound
	}

	res, err := r.coll.UpdateOne(ctx,
		bson.D{{Key: "_id", Value: followerID}},
		bson.D{{Key: "$addToSet", Value: bson.D{{Key: "following", Value: followeeID}}}})
	if err != nil {
		return fmt.Errorf("failed to follow: %w", err)
	}
	if res.MatchedCount == 0 {
		return users.ErrUserNotFound
	}
	return nil
}

func (r *userRepo) Unfollow(ctx context.Context, followerID, followeeID string) error {
	_, err := r.coll.UpdateOne(ctx,
		bson.D{{Key: "_id", Value: followerID}},
		bson.D{{Key: "$pull", Value: bson.D{{Key: "following", Value: followeeID}}}})
	if err != nil {
		return fmt.Errorf("failed to unfollow: %w", err)
	}
	return nil
}
