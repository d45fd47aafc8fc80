package posts

import (
	"cmp"
	"fmt"
	"slices"
)

// SortOrder selects the ordering of a post query
type SortOrder int

const (
	// SortNewest orders by createdAt descending, id descending on ties
	SortNewest SortOrder = iota
	// SortOldest orders by createdAt ascending, id ascending on ties
	SortOldest
)

// Filter restricts which posts a query matches.
// Soft-deleted posts never match.
type Filter struct {
	// AuthorIDs must be non-empty; a post matches when its author is in the set
	AuthorIDs []string
}

// Query describes one post lookup, built once and executed by a Repository.
type Query struct {
	Filter Filter
	Sort   SortOrder
	Skip   int
	// Limit of 0 means unbounded
	Limit int
}

// Validate checks the query is executable
func (q Query) Validate() error {
	if len(q.Filter.AuthorIDs) == 0 {
		return fmt.Errorf("query filter requires at least one author")
	}
	if q.Skip < 0 {
		return fmt.Errorf("query skip must not be negative: %d", q.Skip)
	}
	if q.Limit < 0 {
		return fmt.Errorf("query limit must not be negative: %d", q.Limit)
	}
	if q.Sort != SortNewest && q.Sort != SortOldest {
		return fmt.Errorf("unknown sort order: %d", q.Sort)
	}
	return nil
}

// Compare orders two posts according to s.
// The id tie-break makes the order total, so skip/limit pagination is stable.
func (s SortOrder) Compare(a, b *Post) int {
	c := a.CreatedAt.Compare(b.CreatedAt)
	if c == 0 {
		c = cmp.Compare(a.ID, b.ID)
	}
	if s == SortNewest {
		return -c
	}
	return c
}

// Matches reports whether a post satisfies the filter
func (f Filter) Matches(post *Post) bool {
	if post.DeletedAt != nil {
		return false
	}
	return slices.Contains(f.AuthorIDs, post.AuthorID)
}
