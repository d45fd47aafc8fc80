package feed

import (
	"math"
	"strconv"
	"strings"

	"Agora/internal/core/posts"
	"Agora/internal/core/users"
)

// ParsePageParams turns raw query-string values into PageParams.
//
// Absent values take the defaults (10, 1). Non-integers are rejected.
// A pageSize <= 0 falls back to the default and a page number <= 0 is clamped
// to 1. When maxPageSize > 0, larger page sizes are clamped to it. Page numbers
// past the last representable offset are clamped so they read an empty page.
func ParsePageParams(pageSizeRaw, pageNumberRaw string, maxPageSize int) (PageParams, error) {
	params := PageParams{
		PageSize:   DefaultPageSize,
		PageNumber: 1,
	}

	if raw := strings.TrimSpace(pageSizeRaw); raw != "" {
		size, err := strconv.Atoi(raw)
		if err != nil {
			return PageParams{}, NewValidationError("pageSize", "pageSize must be an integer")
		}
		if size > 0 {
			params.PageSize = size
		}
	}

	if raw := strings.TrimSpace(pageNumberRaw); raw != "" {
		number, err := strconv.Atoi(raw)
		if err != nil {
			return PageParams{}, NewValidationError("currentPage", "currentPage must be an integer")
		}
		if number > 0 {
			params.PageNumber = number
		}
	}

	return params.normalize(maxPageSize), nil
}

// normalize applies the same clamping rules to params built in code
func (p PageParams) normalize(maxPageSize int) PageParams {
	if p.PageSize <= 0 {
		p.PageSize = DefaultPageSize
	}
	if maxPageSize > 0 && p.PageSize > maxPageSize {
		p.PageSize = maxPageSize
	}
	if p.PageNumber <= 0 {
		p.PageNumber = 1
	}
	// Skip must stay within int
	if maxSkipPages := math.MaxInt / p.PageSize; p.PageNumber-1 > maxSkipPages {
		p.PageNumber = maxSkipPages + 1
	}
	return p
}

// Skip is the number of posts before the requested page
func (p PageParams) Skip() int {
	return p.PageSize * (p.PageNumber - 1)
}

// BuildQuery builds the posts query for one page of an audience's feed
func BuildQuery(audience users.Audience, params PageParams) posts.Query {
	authorIDs := make([]string, len(audience))
	copy(authorIDs, audience)

	return posts.Query{
		Filter: posts.Filter{AuthorIDs: authorIDs},
		Sort:   posts.SortNewest,
		Skip:   params.Skip(),
		Limit:  params.PageSize,
	}
}
