package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v2"

	"Agora/internal/api/middleware"
	"Agora/internal/api/routes"
	"Agora/internal/auth"
	"Agora/internal/config"
	"Agora/internal/core/comments"
	"Agora/internal/core/events"
	"Agora/internal/core/feed"
	"Agora/internal/core/posts"
	"Agora/internal/core/users"
	"Agora/internal/db/rediscache"
	"Agora/internal/eventbroker"
)

func serveCommand() *cli.Command {
	return &cli.Command{
		Name:   "serve",
		Usage:  "run the HTTP API",
		Flags:  config.ServeFlags(),
		Action: serve,
	}
}

func serve(c *cli.Context) error {
	cfg, err := config.FromContext(c)
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(c.Context, syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	ctx = log.Logger.WithContext(ctx)

	store, err := openStorage(ctx, cfg, cfg.AutoMigrate && cfg.Store == config.StorePostgres)
	if err != nil {
		return err
	}
	defer func() {
		if err := store.close(context.Background()); err != nil {
			log.Warn().Err(err).Msg("failed to close store")
		}
	}()

	cache, closeCache, err := newProjectionCache(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeCache()

	publisher, closePublisher, err := newPublisher(cfg)
	if err != nil {
		return err
	}
	defer closePublisher()

	verifier, err := newVerifier(ctx, cfg)
	if err != nil {
		return err
	}

	userService := users.NewUserService(store.users, cache)
	if err := seedUsers(ctx, userService, cfg.SeedUsers); err != nil {
		return err
	}
	if cfg.Store == config.StoreMemory && len(cfg.SeedUsers) == 0 {
		log.Warn().Msg("memory store has no users; pass --seed-user so tokens map to accounts")
	}
	svc := routes.Services{
		Users:    userService,
		Posts:    posts.NewPostService(store.posts, userService, publisher, posts.WithMaxUserPosts(cfg.MaxUserPosts)),
		Feed:     feed.NewFeedService(store.posts, userService, cfg.MaxPageSize),
		Comments: comments.NewCommentService(store.comments, store.posts, userService, publisher),
	}

	handler := routes.NewRouter(svc, middleware.NewAuthMiddleware(verifier), routes.Options{
		Logger:       log.Logger,
		APIBase:      cfg.APIBaseURL,
		CORSOrigins:  cfg.CORSOrigins,
		RateLimitRPM: cfg.RateLimitRPM,
		MaxPageSize:  cfg.MaxPageSize,
	})

	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().
			Str("port", cfg.Port).
			Str("api_base", cfg.APIBaseURL).
			Str("store", cfg.Store).
			Msg("agora API starting")
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	log.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}

func newProjectionCache(ctx context.Context, cfg *config.Config) (users.ProjectionCache, func(), error) {
	if cfg.RedisURL == "" {
		return users.NewLRUProjectionCache(cfg.AuthorCacheSize, cfg.AuthorCacheTTL), func() {}, nil
	}

	client, err := rediscache.Connect(ctx, cfg.RedisURL)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to connect to redis: %w", err)
	}
	log.Info().Msg("using redis author cache")
	return rediscache.NewProjectionCache(client, cfg.AuthorCacheTTL), func() { _ = client.Close() }, nil
}

func newPublisher(cfg *config.Config) (events.Publisher, func(), error) {
	if cfg.NATSURL == "" {
		return events.NopPublisher{}, func() {}, nil
	}

	nc, err := eventbroker.Connect(cfg.NATSURL)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to connect to nats: %w", err)
	}
	log.Info().Str("url", nc.ConnectedUrlRedacted()).Msg("publishing domain events to nats")
	return eventbroker.NewNatsPublisher(nc), func() { _ = nc.Drain() }, nil
}

func newVerifier(ctx context.Context, cfg *config.Config) (*auth.Verifier, error) {
	var opts []auth.VerifierOption
	if cfg.JWTIssuer != "" {
		opts = append(opts, auth.WithIssuer(cfg.JWTIssuer))
	}
	if cfg.JWKSURL != "" {
		return auth.NewJWKSVerifier(ctx, cfg.JWKSURL, opts...)
	}
	return auth.NewHMACVerifier([]byte(cfg.JWTSecret), opts...)
}
