package users

import (
	"context"
	"fmt"
	"regexp"
	"slices"
	"strings"

	"github.com/rs/zerolog"
)

// usernames are lower-case alphanumerics plus underscore
var usernameRegex = regexp.MustCompile(`^[a-z0-9_]{3,30}$`)

type userService struct {
	repo  Repository
	cache ProjectionCache
}

// NewUserService creates a new user service.
// cache may be nil, in which case every projection lookup hits the repository.
func NewUserService(repo Repository, cache ProjectionCache) Service {
	return &userService{
		repo:  repo,
		cache: cache,
	}
}

// CreateUser indexes a new user
func (s *userService) CreateUser(ctx context.Context, req CreateUserRequest) (*User, error) {
	req.ID = NormalizeID(req.ID)
	req.Username = strings.TrimSpace(strings.ToLower(req.Username))
	req.Avatar = strings.TrimSpace(req.Avatar)

	if req.ID == "" {
		return nil, NewValidationError("id", "id is required")
	}
	if !usernameRegex.MatchString(req.Username) {
		return nil, NewValidationError("username", "username must be 3-30 characters of a-z, 0-9 or _")
	}

	return s.repo.Create(ctx, &User{
		ID:       req.ID,
		Username: req.Username,
		Avatar:   req.Avatar,
	})
}

// GetProfile returns the public projection of a user
func (s *userService) GetProfile(ctx context.Context, id string) (*AuthorView, error) {
	id = NormalizeID(id)
	if id == "" {
		return nil, ErrUserNotFound
	}

	authors, err := s.GetAuthors(ctx, []string{id})
	if err != nil {
		return nil, err
	}
	author, ok := authors[id]
	if !ok {
		return nil, ErrUserNotFound
	}
	return author, nil
}

// ResolveAudience returns the viewer's followees plus the viewer
func (s *userService) ResolveAudience(ctx context.Context, viewerID string) (Audience, error) {
	viewerID = NormalizeID(viewerID)
	if viewerID == "" {
		return nil, ErrUserNotFound
	}

	following, err := s.repo.GetFollowing(ctx, viewerID)
	if err != nil {
		return nil, err
	}

	audience := make(Audience, 0, len(following)+1)
	audience = append(audience, viewerID)
	for _, id := range following {
		audience = append(audience, NormalizeID(id))
	}
	slices.Sort(audience)
	return slices.Compact(audience), nil
}

// GetAuthors resolves author projections, consulting the cache first
func (s *userService) GetAuthors(ctx context.Context, ids []string) (map[string]*AuthorView, error) {
	wanted := make([]string, 0, len(ids))
	for _, id := range ids {
		wanted = append(wanted, NormalizeID(id))
	}
	slices.Sort(wanted)
	wanted = slices.Compact(wanted)

	result := make(map[string]*AuthorView, len(wanted))
	missing := wanted
	if s.cache != nil {
		var cached map[string]*AuthorView
		cached, missing = s.cache.GetMany(ctx, wanted)
		for id, view := range cached {
			result[id] = view
		}
	}
	if len(missing) == 0 {
		return result, nil
	}

	found, err := s.repo.GetByIDs(ctx, missing)
	if err != nil {
		return nil, fmt.Errorf("failed to load authors: %w", err)
	}

	fresh := make([]*AuthorView, 0, len(found))
	for id, user := range found {
		view := user.View()
		result[id] = view
		fresh = append(fresh, view)
	}
	if s.cache != nil && len(fresh) > 0 {
		s.cache.AddMany(ctx, fresh)
	}

	zerolog.Ctx(ctx).Debug().
		Int("requested", len(wanted)).
		Int("loaded", len(found)).
		Msg("author projections resolved")

	return result, nil
}

// Follow adds followeeID to followerID's following set
func (s *userService) Follow(ctx context.Context, followerID, followeeID string) error {
	followerID, followeeID, err := s.validateFollow(ctx, followerID, followeeID)
	if err != nil {
		return err
	}
	return s.repo.Follow(ctx, followerID, followeeID)
}

// Unfollow removes followeeID from followerID's following set
func (s *userService) Unfollow(ctx context.Context, followerID, followeeID string) error {
	followerID, followeeID, err := s.validateFollow(ctx, followerID, followeeID)
	if err != nil {
		return err
	}
	return s.repo.Unfollow(ctx, followerID, followeeID)
}

func (s *userService) validateFollow(ctx context.Context, followerID, followeeID string) (string, string, error) {
	followerID = NormalizeID(followerID)
	followeeID = NormalizeID(followeeID)

	if followerID == "" || followeeID == "" {
		return "", "", NewValidationError("id", "user id is required")
	}
	if followerID == followeeID {
		return "", "", NewValidationError("id", "users cannot follow themselves")
	}
	if _, err := s.repo.GetByID(ctx, followeeID); err != nil {
		return "", "", err
	}
	return followerID, followeeID, nil
}
