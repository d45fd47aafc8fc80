package routes

import (
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/hlog"

	"Agora/internal/api/middleware"
	"Agora/internal/core/comments"
	"Agora/internal/core/feed"
	"Agora/internal/core/posts"
	"Agora/internal/core/users"
)

// WelcomeMessage is served at the root path
const WelcomeMessage = "Welcome to the Agora API"

// Services bundles the domain services the API exposes
type Services struct {
	Posts    posts.Service
	Feed     feed.Service
	Comments comments.Service
	Users    users.Service
}

// Options configures the router
type Options struct {
	Logger       zerolog.Logger
	APIBase      string
	CORSOrigins  []string
	RateLimitRPM int
	MaxPageSize  int
}

// NewRouter assembles the HTTP handler: request logging, panic recovery,
// CORS, identity resolution and rate limiting wrap every API route.
func NewRouter(svc Services, authMiddleware *middleware.AuthMiddleware, opts Options) http.Handler {
	r := chi.NewRouter()

	r.Use(hlog.NewHandler(opts.Logger))
	r.Use(hlog.RequestIDHandler("req_id", "X-Request-Id"))
	r.Use(hlog.RemoteAddrHandler("ip"))
	r.Use(hlog.AccessHandler(func(r *http.Request, status, size int, duration time.Duration) {
		hlog.FromRequest(r).Info().
			Str("method", r.Method).
			Stringer("url", r.URL).
			Int("status", status).
			Int("size", size).
			Dur("duration", duration).
			Msg("request")
	}))
	r.Use(chiMiddleware.Recoverer)
	r.Use(corsHandler(opts.CORSOrigins))

	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		_, _ = w.Write([]byte(WelcomeMessage))
	})

	api := func(r chi.Router) {
		r.Use(authMiddleware.OptionalAuth)
		if opts.RateLimitRPM > 0 {
			r.Use(middleware.NewRateLimiter(opts.RateLimitRPM, time.Minute).Middleware)
		}

		r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
			_, _ = w.Write([]byte("OK"))
		})

		RegisterPostRoutes(r, svc.Posts, svc.Feed, authMiddleware, opts.MaxPageSize)
		RegisterCommentRoutes(r, svc.Comments, authMiddleware)
		RegisterUserRoutes(r, svc.Users, authMiddleware)
	}

	base := "/" + strings.Trim(opts.APIBase, "/")
	if base == "/" {
		r.Group(api)
	} else {
		r.Route(base, api)
	}

	return r
}

func corsHandler(origins []string) func(http.Handler) http.Handler {
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	return cors.Handler(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Authorization", "Content-Type", "X-Request-Id"},
		ExposedHeaders:   []string{"X-Total-Count", "X-Page-Count", "X-Request-Id"},
		AllowCredentials: false,
		MaxAge:           300,
	})
}
