package post

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"Agora/internal/api/handlers"
	"Agora/internal/core/posts"
)

// GetHandler serves single posts and per-user post lists
type GetHandler struct {
	service posts.Service
}

// NewGetHandler creates a new get handler
func NewGetHandler(service posts.Service) *GetHandler {
	return &GetHandler{
		service: service,
	}
}

// HandleGet handles GET /posts/{id}
func (h *GetHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	view, err := h.service.GetPost(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		handlers.HandleServiceError(w, r, err)
		return
	}

	handlers.WriteJSON(w, r, http.StatusOK, view)
}

// HandleListByUser handles GET /posts/user/{id}
// Lists every live post by the user, newest first, without audience filtering.
func (h *GetHandler) HandleListByUser(w http.ResponseWriter, r *http.Request) {
	views, err := h.service.GetPostsByUser(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		handlers.HandleServiceError(w, r, err)
		return
	}

	handlers.WriteJSON(w, r, http.StatusOK, views)
}
