package feed

import (
	"context"
	"errors"

	"github.com/rs/zerolog"

	"Agora/internal/core/posts"
	"Agora/internal/core/users"
)

type feedService struct {
	postRepo    posts.Repository
	userService users.Service
	maxPageSize int
}

// NewFeedService creates a new feed service.
// maxPageSize of 0 disables the page size cap.
func NewFeedService(postRepo posts.Repository, userService users.Service, maxPageSize int) Service {
	return &feedService{
		postRepo:    postRepo,
		userService: userService,
		maxPageSize: maxPageSize,
	}
}

// GetFeed returns one page of posts written by the viewer or by anyone the viewer follows
func (s *feedService) GetFeed(ctx context.Context, req GetFeedRequest) (*Page, error) {
	viewerID := users.NormalizeID(req.ViewerID)
	if viewerID == "" {
		return nil, ErrUnauthorized
	}
	params := req.Params.normalize(s.maxPageSize)

	audience, err := s.userService.ResolveAudience(ctx, viewerID)
	if err != nil {
		if errors.Is(err, users.ErrUserNotFound) {
			// An authenticated caller without a user record is an identity failure
			zerolog.Ctx(ctx).Warn().Str("viewer", viewerID).Msg("feed requested by unknown user")
			return nil, ErrUnauthorized
		}
		return nil, posts.WrapStorage("resolve audience", err)
	}

	query := BuildQuery(audience, params)

	total, err := s.postRepo.Count(ctx, query.Filter)
	if err != nil {
		return nil, posts.WrapStorage("count feed", err)
	}

	list, err := s.postRepo.Find(ctx, query)
	if err != nil {
		return nil, posts.WrapStorage("query feed", err)
	}

	items, err := posts.HydrateViews(ctx, s.userService, list)
	if err != nil {
		return nil, err
	}

	zerolog.Ctx(ctx).Debug().
		Str("viewer", viewerID).
		Int("audience", len(audience)).
		Int("page", params.PageNumber).
		Int("size", params.PageSize).
		Int("returned", len(items)).
		Int("total", total).
		Msg("feed assembled")

	return &Page{
		Items:      items,
		TotalCount: total,
		PageSize:   params.PageSize,
		PageNumber: params.PageNumber,
	}, nil
}
