package routes

import (
	"github.com/go-chi/chi/v5"

	"Agora/internal/api/handlers/user"
	"Agora/internal/api/middleware"
	"Agora/internal/core/users"
)

// RegisterUserRoutes registers profile and follow endpoints
func RegisterUserRoutes(r chi.Router, service users.Service, authMiddleware *middleware.AuthMiddleware) {
	profileHandler := user.NewProfileHandler(service)
	followHandler := user.NewFollowHandler(service)

	r.Get("/users/{id}", profileHandler.HandleGetProfile)
	r.With(authMiddleware.RequireAuth).Post("/users/{id}/follow", followHandler.HandleFollow)
	r.With(authMiddleware.RequireAuth).Delete("/users/{id}/follow", followHandler.HandleUnfollow)
}
