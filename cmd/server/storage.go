package main

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/lib/pq"
	"github.com/rs/zerolog"

	"Agora/internal/config"
	"Agora/internal/core/comments"
	"Agora/internal/core/posts"
	"Agora/internal/core/users"
	"Agora/internal/db/memory"
	"Agora/internal/db/mongodb"
	"Agora/internal/db/postgres"
)

// storage is the set of repositories for the configured backend
type storage struct {
	users    users.Repository
	posts    posts.Repository
	comments comments.Repository
	close    func(ctx context.Context) error
}

func openPostgres(ctx context.Context, cfg *config.Config) (*sql.DB, error) {
	db, err := sql.Open("postgres", cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(30 * time.Minute)

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	return db, nil
}

func openStorage(ctx context.Context, cfg *config.Config, migrate bool) (*storage, error) {
	logger := zerolog.Ctx(ctx)

	switch cfg.Store {
	case config.StorePostgres:
		db, err := openPostgres(ctx, cfg)
		if err != nil {
			return nil, err
		}
		logger.Info().Msg("connected to postgres")

		if migrate {
			if err := postgres.Migrate(ctx, db); err != nil {
				_ = db.Close()
				return nil, err
			}
			logger.Info().Msg("migrations completed successfully")
		}

		return &storage{
			users:    postgres.NewUserRepository(db),
			posts:    postgres.NewPostRepository(db),
			comments: postgres.NewCommentRepository(db),
			close:    func(context.Context) error { return db.Close() },
		}, nil

	case config.StoreMongo:
		store, err := mongodb.Connect(ctx, cfg.MongoURI, cfg.MongoDatabase)
		if err != nil {
			return nil, err
		}
		if err := store.EnsureIndexes(ctx); err != nil {
			_ = store.Close(ctx)
			return nil, err
		}
		logger.Info().Str("database", cfg.MongoDatabase).Msg("connected to mongodb")

		return &storage{
			users:    store.Users(),
			posts:    store.Posts(),
			comments: store.Comments(),
			close:    store.Close,
		}, nil

	case config.StoreMemory:
		logger.Warn().Msg("using in-memory store; data is lost on exit")
		store := memory.NewStore()
		return &storage{
			users:    store.Users(),
			posts:    store.Posts(),
			comments: store.Comments(),
			close:    func(context.Context) error { return nil },
		}, nil
	}

	return nil, fmt.Errorf("unknown store %q", cfg.Store)
}
