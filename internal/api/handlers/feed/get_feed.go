package feed

import (
	"net/http"
	"strconv"

	"Agora/internal/api/handlers"
	"Agora/internal/api/middleware"
	"Agora/internal/core/feed"
)

const (
	// TotalCountHeader carries the number of posts across all pages
	TotalCountHeader = "X-Total-Count"
	// PageCountHeader carries the number of pages at the served page size
	PageCountHeader = "X-Page-Count"
)

// GetFeedHandler handles feed retrieval
type GetFeedHandler struct {
	service     feed.Service
	maxPageSize int
}

// NewGetFeedHandler creates a new feed handler
func NewGetFeedHandler(service feed.Service, maxPageSize int) *GetFeedHandler {
	return &GetFeedHandler{
		service:     service,
		maxPageSize: maxPageSize,
	}
}

// HandleGetFeed returns one page of posts by the caller and the users they follow
// GET /posts/feed?pageSize=10&currentPage=1
func (h *GetFeedHandler) HandleGetFeed(w http.ResponseWriter, r *http.Request) {
	viewerID := middleware.GetUserID(r)
	if viewerID == "" {
		handlers.WriteError(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	query := r.URL.Query()
	params, err := feed.ParsePageParams(query.Get("pageSize"), query.Get("currentPage"), h.maxPageSize)
	if err != nil {
		handlers.HandleServiceError(w, r, err)
		return
	}

	page, err := h.service.GetFeed(r.Context(), feed.GetFeedRequest{
		ViewerID: viewerID,
		Params:   params,
	})
	if err != nil {
		handlers.HandleServiceError(w, r, err)
		return
	}

	w.Header().Set(TotalCountHeader, strconv.Itoa(page.TotalCount))
	w.Header().Set(PageCountHeader, strconv.Itoa(page.PageCount()))
	handlers.WriteJSON(w, r, http.StatusOK, page.Items)
}
