package posts

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rivo/uniseg"
	"github.com/rs/zerolog"

	"Agora/internal/core/events"
	"Agora/internal/core/users"
)

const maxContentGraphemes = 10000

type postService struct {
	repo         Repository
	userService  users.Service
	publisher    events.Publisher
	now          func() time.Time
	newID        func() string
	maxUserPosts int
}

// Option configures a post service
type Option func(*postService)

// WithClock overrides the time source used for createdAt
func WithClock(now func() time.Time) Option {
	return func(s *postService) { s.now = now }
}

// WithIDGenerator overrides post id generation
func WithIDGenerator(newID func() string) Option {
	return func(s *postService) { s.newID = newID }
}

// WithMaxUserPosts caps GetPostsByUser results. 0 leaves them unbounded.
func WithMaxUserPosts(limit int) Option {
	return func(s *postService) { s.maxUserPosts = limit }
}

// NewPostService creates a new post service.
// publisher may be nil, in which case events are dropped.
func NewPostService(repo Repository, userService users.Service, publisher events.Publisher, opts ...Option) Service {
	if publisher == nil {
		publisher = events.NopPublisher{}
	}
	s := &postService{
		repo:        repo,
		userService: userService,
		publisher:   publisher,
		now:         Now,
		newID:       NewID,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Now returns the current time at the precision every backend can store.
// Timestamps are millisecond-truncated so a created post compares equal to
// the same post read back from any store.
func Now() time.Time {
	return time.Now().UTC().Truncate(time.Millisecond)
}

// NewID returns a new time-ordered identifier in canonical form
func NewID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}
	return id.String()
}

// ValidateContent trims content and enforces the non-empty and length rules
func ValidateContent(content string) (string, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return "", &ValidationError{Err: ErrContentEmpty, Field: "content", Message: ErrContentEmpty.Error()}
	}
	if uniseg.GraphemeClusterCount(content) > maxContentGraphemes {
		return "", &ValidationError{Err: ErrContentTooLong, Field: "content", Message: ErrContentTooLong.Error()}
	}
	return content, nil
}

// CreatePost persists a new post on behalf of authorID
func (s *postService) CreatePost(ctx context.Context, authorID, content string) (*PostView, error) {
	authorID = users.NormalizeID(authorID)
	if authorID == "" {
		return nil, ErrUnauthorized
	}

	content, err := ValidateContent(content)
	if err != nil {
		return nil, err
	}

	post := &Post{
		ID:        s.newID(),
		AuthorID:  authorID,
		Content:   content,
		CreatedAt: s.now(),
		Likes:     []string{},
	}
	if err := s.repo.Create(ctx, post); err != nil {
		return nil, wrapStorage("create post", err)
	}

	views, err := HydrateViews(ctx, s.userService, []*Post{post})
	if err != nil {
		return nil, err
	}

	if err := s.publisher.PublishPostCreated(ctx, events.PostCreated{
		PostID:    post.ID,
		AuthorID:  post.AuthorID,
		CreatedAt: post.CreatedAt,
	}); err != nil {
		zerolog.Ctx(ctx).Warn().Err(err).Str("post", post.ID).Msg("failed to publish post.created")
	}

	zerolog.Ctx(ctx).Info().
		Str("post", post.ID).
		Str("author", post.AuthorID).
		Msg("post created")

	return views[0], nil
}

// DeletePost removes a post if requesterID is its author
func (s *postService) DeletePost(ctx context.Context, requesterID, postID string) (*PostView, error) {
	requesterID = users.NormalizeID(requesterID)
	if requesterID == "" {
		return nil, ErrUnauthorized
	}
	postID = strings.TrimSpace(postID)
	if postID == "" {
		return nil, ErrNotFound
	}

	post, err := s.repo.GetByID(ctx, postID)
	if err != nil {
		return nil, wrapStorage("load post", err)
	}
	if post.AuthorID != requesterID {
		return nil, ErrForbidden
	}

	// Ownership is checked again inside the delete itself, so a concurrent
	// writer between the load above and here cannot widen who may delete.
	deleted, err := s.repo.DeleteOwned(ctx, postID, requesterID)
	if err != nil {
		return nil, wrapStorage("delete post", err)
	}

	views, err := HydrateViews(ctx, s.userService, []*Post{deleted})
	if err != nil {
		return nil, err
	}

	deletedAt := s.now()
	if deleted.DeletedAt != nil {
		deletedAt = *deleted.DeletedAt
	}
	if err := s.publisher.PublishPostDeleted(ctx, events.PostDeleted{
		PostID:    deleted.ID,
		AuthorID:  deleted.AuthorID,
		DeletedAt: deletedAt,
	}); err != nil {
		zerolog.Ctx(ctx).Warn().Err(err).Str("post", deleted.ID).Msg("failed to publish post.deleted")
	}

	zerolog.Ctx(ctx).Info().
		Str("post", deleted.ID).
		Str("author", deleted.AuthorID).
		Msg("post deleted")

	return views[0], nil
}

// GetPost returns a single post with its author
func (s *postService) GetPost(ctx context.Context, postID string) (*PostView, error) {
	postID = strings.TrimSpace(postID)
	if postID == "" {
		return nil, ErrNotFound
	}

	post, err := s.repo.GetByID(ctx, postID)
	if err != nil {
		return nil, wrapStorage("load post", err)
	}

	views, err := HydrateViews(ctx, s.userService, []*Post{post})
	if err != nil {
		return nil, err
	}
	return views[0], nil
}

// GetPostsByUser lists a user's posts, newest first
func (s *postService) GetPostsByUser(ctx context.Context, userID string) ([]*PostView, error) {
	userID = users.NormalizeID(userID)
	if userID == "" {
		return []*PostView{}, nil
	}

	list, err := s.repo.Find(ctx, Query{
		Filter: Filter{AuthorIDs: []string{userID}},
		Sort:   SortNewest,
		Limit:  s.maxUserPosts,
	})
	if err != nil {
		return nil, wrapStorage("list user posts", err)
	}

	return HydrateViews(ctx, s.userService, list)
}

// ToggleLike likes the post if userID has not liked it yet, otherwise unlikes it
func (s *postService) ToggleLike(ctx context.Context, userID, postID string) (*PostView, error) {
	userID = users.NormalizeID(userID)
	if userID == "" {
		return nil, ErrUnauthorized
	}
	postID = strings.TrimSpace(postID)
	if postID == "" {
		return nil, ErrNotFound
	}

	post, err := s.repo.ToggleLike(ctx, postID, userID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, wrapStorage("toggle like", err)
	}

	views, err := HydrateViews(ctx, s.userService, []*Post{post})
	if err != nil {
		return nil, err
	}

	liked := post.HasLike(userID)
	if err := s.publisher.PublishLikeToggled(ctx, events.LikeToggled{
		PostID:    post.ID,
		UserID:    userID,
		Liked:     liked,
		LikeCount: len(post.Likes),
	}); err != nil {
		zerolog.Ctx(ctx).Warn().Err(err).Str("post", post.ID).Msg("failed to publish post.like_toggled")
	}

	zerolog.Ctx(ctx).Debug().
		Str("post", post.ID).
		Str("user", userID).
		Bool("liked", liked).
		Msg("like toggled")

	return views[0], nil
}
