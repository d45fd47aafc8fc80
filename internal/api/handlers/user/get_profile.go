package user

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"Agora/internal/api/handlers"
	"Agora/internal/core/users"
)

// ProfileHandler serves public author projections
type ProfileHandler struct {
	userService users.Service
}

// NewProfileHandler creates a new profile handler
func NewProfileHandler(userService users.Service) *ProfileHandler {
	return &ProfileHandler{
		userService: userService,
	}
}

// HandleGetProfile handles GET /users/{id}
func (h *ProfileHandler) HandleGetProfile(w http.ResponseWriter, r *http.Request) {
	view, err := h.userService.GetProfile(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		handlers.HandleServiceError(w, r, err)
		return
	}

	handlers.WriteJSON(w, r, http.StatusOK, view)
}
