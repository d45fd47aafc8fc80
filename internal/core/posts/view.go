package posts

import (
	"context"

	"Agora/internal/core/users"
)

// HydrateViews attaches author projections to posts, preserving order.
// Authors are fetched in one batch regardless of how many posts share them.
func HydrateViews(ctx context.Context, userService users.Service, list []*Post) ([]*PostView, error) {
	views := make([]*PostView, 0, len(list))
	if len(list) == 0 {
		return views, nil
	}

	authorIDs := make([]string, 0, len(list))
	for _, post := range list {
		authorIDs = append(authorIDs, post.AuthorID)
	}

	authors, err := userService.GetAuthors(ctx, authorIDs)
	if err != nil {
		return nil, wrapStorage("load authors", err)
	}

	for _, post := range list {
		views = append(views, NewPostView(post, authors[post.AuthorID]))
	}
	return views, nil
}
