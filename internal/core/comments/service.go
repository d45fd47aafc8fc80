package comments

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/rivo/uniseg"
	"github.com/rs/zerolog"

	"Agora/internal/core/events"
	"Agora/internal/core/posts"
	"Agora/internal/core/users"
)

const maxCommentGraphemes = 10000

type commentService struct {
	repo        Repository
	postRepo    posts.Repository
	userService users.Service
	publisher   events.Publisher
	now         func() time.Time
	newID       func() string
}

// NewCommentService creates a new comment service.
// publisher may be nil, in which case events are dropped.
func NewCommentService(repo Repository, postRepo posts.Repository, userService users.Service, publisher events.Publisher) Service {
	if publisher == nil {
		publisher = events.NopPublisher{}
	}
	return &commentService{
		repo:        repo,
		postRepo:    postRepo,
		userService: userService,
		publisher:   publisher,
		now:         posts.Now,
		newID:       posts.NewID,
	}
}

// CreateComment adds a comment to a live post
func (s *commentService) CreateComment(ctx context.Context, authorID, postID, content string) (*CommentView, error) {
	authorID = users.NormalizeID(authorID)
	if authorID == "" {
		return nil, ErrUnauthorized
	}

	content = strings.TrimSpace(content)
	if content == "" {
		return nil, ErrContentEmpty
	}
	if uniseg.GraphemeClusterCount(content) > maxCommentGraphemes {
		return nil, ErrContentTooLong
	}

	if err := s.ensurePost(ctx, postID); err != nil {
		return nil, err
	}

	comment := &Comment{
		ID:        s.newID(),
		PostID:    strings.TrimSpace(postID),
		AuthorID:  authorID,
		Content:   content,
		CreatedAt: s.now(),
	}
	if err := s.repo.Create(ctx, comment); err != nil {
		return nil, posts.WrapStorage("create comment", err)
	}

	views, err := s.hydrate(ctx, []*Comment{comment})
	if err != nil {
		return nil, err
	}

	if err := s.publisher.PublishCommentCreated(ctx, events.CommentCreated{
		CommentID: comment.ID,
		PostID:    comment.PostID,
		AuthorID:  comment.AuthorID,
		CreatedAt: comment.CreatedAt,
	}); err != nil {
		zerolog.Ctx(ctx).Warn().Err(err).Str("comment", comment.ID).Msg("failed to publish comment.created")
	}

	zerolog.Ctx(ctx).Info().
		Str("comment", comment.ID).
		Str("post", comment.PostID).
		Str("author", comment.AuthorID).
		Msg("comment created")

	return views[0], nil
}

// ListComments returns a live post's comments, oldest first
func (s *commentService) ListComments(ctx context.Context, postID string) ([]*CommentView, error) {
	if err := s.ensurePost(ctx, postID); err != nil {
		return nil, err
	}

	list, err := s.repo.ListByPost(ctx, strings.TrimSpace(postID))
	if err != nil {
		return nil, posts.WrapStorage("list comments", err)
	}
	return s.hydrate(ctx, list)
}

func (s *commentService) ensurePost(ctx context.Context, postID string) error {
	postID = strings.TrimSpace(postID)
	if postID == "" {
		return ErrPostNotFound
	}
	if _, err := s.postRepo.GetByID(ctx, postID); err != nil {
		if errors.Is(err, posts.ErrNotFound) {
			return ErrPostNotFound
		}
		return posts.WrapStorage("load post", err)
	}
	return nil
}

func (s *commentService) hydrate(ctx context.Context, list []*Comment) ([]*CommentView, error) {
	views := make([]*CommentView, 0, len(list))
	if len(list) == 0 {
		return views, nil
	}

	ids := make([]string, 0, len(list))
	for _, c := range list {
		ids = append(ids, c.AuthorID)
	}
	authors, err := s.userService.GetAuthors(ctx, ids)
	if err != nil {
		return nil, posts.WrapStorage("load authors", err)
	}

	for _, c := range list {
		views = append(views, &CommentView{
			CreatedAt: c.CreatedAt,
			Author:    authors[c.AuthorID],
			ID:        c.ID,
			PostID:    c.PostID,
			AuthorID:  c.AuthorID,
			Content:   c.Content,
		})
	}
	return views, nil
}
