package routes

import (
	"github.com/go-chi/chi/v5"

	commentHandlers "Agora/internal/api/handlers/comments"
	"Agora/internal/api/middleware"
	"Agora/internal/core/comments"
)

// RegisterCommentRoutes registers comment endpoints nested under posts
func RegisterCommentRoutes(r chi.Router, service comments.Service, authMiddleware *middleware.AuthMiddleware) {
	createHandler := commentHandlers.NewCreateCommentHandler(service)
	getHandler := commentHandlers.NewGetCommentsHandler(service)

	r.Get("/posts/{id}/comments", getHandler.HandleGetComments)
	r.With(authMiddleware.RequireAuth).Post("/posts/{id}/comments", createHandler.HandleCreate)
}
