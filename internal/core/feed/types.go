package feed

import (
	"context"
	"errors"

	"Agora/internal/core/posts"
)

const (
	// DefaultPageSize is used when pageSize is absent or not positive
	DefaultPageSize = 10
	// DefaultMaxPageSize is the recommended cap on pageSize
	DefaultMaxPageSize = 100
)

// Service defines feed business logic
type Service interface {
	GetFeed(ctx context.Context, req GetFeedRequest) (*Page, error)
}

// GetFeedRequest is the typed input of a feed read.
// ViewerID comes from the authenticated request context, never from the query string.
type GetFeedRequest struct {
	ViewerID string
	Params   PageParams
}

// PageParams are validated pagination parameters
type PageParams struct {
	PageSize   int
	PageNumber int
}

// Page is one page of a viewer's feed.
// TotalCount is read separately from Items and may be stale by the writes
// that landed between the two reads.
type Page struct {
	Items      []*posts.PostView
	TotalCount int
	PageSize   int
	PageNumber int
}

// PageCount returns the number of pages implied by TotalCount
func (p *Page) PageCount() int {
	if p.PageSize <= 0 || p.TotalCount == 0 {
		return 0
	}
	return (p.TotalCount-1)/p.PageSize + 1
}

// Errors
var (
	ErrUnauthorized = errors.New("unauthorized")
)

// ValidationError represents a validation error with field context
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// NewValidationError creates a new validation error
func NewValidationError(field, message string) error {
	return &ValidationError{
		Field:   field,
		Message: message,
	}
}

// IsValidationError checks if an error is a validation error
func IsValidationError(err error) bool {
	var valErr *ValidationError
	return errors.As(err, &valErr)
}
