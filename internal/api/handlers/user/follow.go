package user

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"Agora/internal/api/handlers"
	"Agora/internal/api/middleware"
	"Agora/internal/core/users"
)

// FollowHandler handles follow and unfollow requests
type FollowHandler struct {
	userService users.Service
}

// NewFollowHandler creates a new follow handler
func NewFollowHandler(userService users.Service) *FollowHandler {
	return &FollowHandler{
		userService: userService,
	}
}

// HandleFollow handles POST /users/{id}/follow
func (h *FollowHandler) HandleFollow(w http.ResponseWriter, r *http.Request) {
	h.handle(w, r, h.userService.Follow)
}

// HandleUnfollow handles DELETE /users/{id}/follow
func (h *FollowHandler) HandleUnfollow(w http.ResponseWriter, r *http.Request) {
	h.handle(w, r, h.userService.Unfollow)
}

func (h *FollowHandler) handle(w http.ResponseWriter, r *http.Request, op func(ctx context.Context, followerID, followeeID string) error) {
	followerID := middleware.GetUserID(r)
	if followerID == "" {
		handlers.WriteError(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	if err := op(r.Context(), followerID, chi.URLParam(r, "id")); err != nil {
		handlers.HandleServiceError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
