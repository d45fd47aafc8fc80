package routes

import (
	"github.com/go-chi/chi/v5"

	feedHandlers "Agora/internal/api/handlers/feed"
	"Agora/internal/api/handlers/post"
	"Agora/internal/api/middleware"
	"Agora/internal/core/feed"
	"Agora/internal/core/posts"
)

// RegisterPostRoutes registers post and feed endpoints on the router
func RegisterPostRoutes(r chi.Router, service posts.Service, feedService feed.Service, authMiddleware *middleware.AuthMiddleware, maxPageSize int) {
	feedHandler := feedHandlers.NewGetFeedHandler(feedService, maxPageSize)
	getHandler := post.NewGetHandler(service)
	createHandler := post.NewCreateHandler(service)
	deleteHandler := post.NewDeleteHandler(service)
	likeHandler := post.NewLikeHandler(service)

	r.With(authMiddleware.RequireAuth).Get("/posts/feed", feedHandler.HandleGetFeed)
	r.Get("/posts/user/{id}", getHandler.HandleListByUser)
	r.Get("/posts/{id}", getHandler.HandleGet)

	r.With(authMiddleware.RequireAuth).Post("/posts", createHandler.HandleCreate)
	r.With(authMiddleware.RequireAuth).Delete("/posts/{id}", deleteHandler.HandleDelete)
	r.With(authMiddleware.RequireAuth).Put("/posts/{id}/like", likeHandler.HandleToggleLike)
}
