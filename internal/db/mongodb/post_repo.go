package mongodb

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"Agora/internal/core/posts"
)

var postSorts = map[posts.SortOrder]bson.D{
	posts.SortNewest: {{Key: "createdAt", Value: -1}, {Key: "_id", Value: -1}},
	posts.SortOldest: {{Key: "createdAt", Value: 1}, {Key: "_id", Value: 1}},
}

type postRepo struct {
	coll *mongo.Collection
}

// liveFilter matches posts without a deletedAt field
func liveFilter(extra ...bson.E) bson.D {
	filter := bson.D{{Key: "deletedAt", Value: nil}}
	return append(filter, extra...)
}

func (r *postRepo) Create(ctx context.Context, post *posts.Post) error {
	doc := *post
	if doc.Likes == nil {
		doc.Likes = []string{}
	}
	if _, err := r.coll.InsertOne(ctx, &doc); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return fmt.Errorf("post already exists: %s", post.ID)
		}
		return fmt.Errorf("failed to insert post: %w", err)
	}
	return nil
}

func (r *postRepo) GetByID(ctx context.Context, id string) (*posts.Post, error) {
	var post posts.Post
	err := r.coll.FindOne(ctx, liveFilter(bson.E{Key: "_id", Value: id})).Decode(&post)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, posts.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get post by id: %w", err)
	}
	return normalizePost(&post), nil
}

func (r *postRepo) Find(ctx context.Context, q posts.Query) ([]*posts.Post, error) {
	if err := q.Validate(); err != nil {
		return nil, err
	}
	sort, ok := postSorts[q.Sort]
	if !ok {
		return nil, fmt.Errorf("unsupported sort order: %d", q.Sort)
	}

	opts := options.Find().SetSort(sort).SetSkip(int64(q.Skip))
	if q.Limit > 0 {
		opts.SetLimit(int64(q.Limit))
	}

	cursor, err := r.coll.Find(ctx, authorFilter(q.Filter), opts)
	if err != nil {
		return nil, fmt.Errorf("failed to query posts: %w", err)
	}

	result := []*posts.Post{}
	if err := cursor.All(ctx, &result); err != nil {
		return nil, fmt.Errorf("failed to decode posts: %w", err)
	}
	for _, post := range result {
		normalizePost(post)
	}
	return result, nil
}

func (r *postRepo) Count(ctx context.Context, f posts.Filter) (int, error) {
	if len(f.AuthorIDs) == 0 {
		return 0, fmt.Errorf("count filter requires at least one author")
	}
	count, err := r.coll.CountDocuments(ctx, authorFilter(f))
	if err != nil {
		return 0, fmt.Errorf("failed to count posts: %w", err)
	}
	return int(count), nil
}

func (r *postRepo) DeleteOwned(ctx context.Context, id, authorID string) (*posts.Post, error) {
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	update := bson.D{{Key: "$set", Value: bson.D{{Key: "deletedAt", Value: time.Now().UTC()}}}}

	var post posts.Post
	err := r.coll.FindOneAndUpdate(ctx,
		liveFilter(bson.E{Key: "_id", Value: id}, bson.E{Key: "authorId", Value: authorID}),
		update, opts).Decode(&post)
	if err == nil {
		return normalizePost(&post), nil
	}
	if !errors.Is(err, mongo.ErrNoDocuments) {
		return nil, fmt.Errorf("failed to delete post: %w", err)
	}

	count, err := r.coll.CountDocuments(ctx, liveFilter(bson.E{Key: "_id", Value: id}))
	if err != nil {
		return nil, fmt.Errorf("failed to check post owner: %w", err)
	}
	if count == 0 {
		return nil, posts.ErrNotFound
	}
	return nil, posts.ErrForbidden
}

// ToggleLike runs a single pipeline update so membership is decided by the
// server against the stored array, never against a stale client copy.
func (r *postRepo) ToggleLike(ctx context.Context, id, userID string) (*posts.Post, error) {
	user := bson.D{{Key: "$literal", Value: userID}}
	likes := bson.D{{Key: "$ifNull", Value: bson.A{"$likes", bson.A{}}}}

	toggled := bson.D{{Key: "$cond", Value: bson.D{
		{Key: "if", Value: bson.D{{Key: "$in", Value: bson.A{user, likes}}}},
		{Key: "then", Value: bson.D{{Key: "$filter", Value: bson.D{
			{Key: "input", Value: likes},
			{Key: "cond", Value: bson.D{{Key: "$ne", Value: bson.A{"$$this", user}}}},
		}}}},
		{Key: "else", Value: bson.D{{Key: "$concatArrays", Value: bson.A{likes, bson.A{user}}}}},
	}}}
	pipeline := mongo.Pipeline{{{Key: "$set", Value: bson.D{{Key: "likes", Value: toggled}}}}}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var post posts.Post
	err := r.coll.FindOneAndUpdate(ctx, liveFilter(bson.E{Key: "_id", Value: id}), pipeline, opts).Decode(&post)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, posts.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to toggle like: %w", err)
	}
	return normalizePost(&post), nil
}

func authorFilter(f posts.Filter) bson.D {
	return liveFilter(bson.E{Key: "authorId", Value: bson.D{{Key: "$in", Value: f.AuthorIDs}}})
}

func normalizePost(post *posts.Post) *posts.Post {
	if post.Likes == nil {
		post.Likes = []string{}
	}
	post.CreatedAt = post.CreatedAt.UTC()
	return post
}
