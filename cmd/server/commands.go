package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v2"

	"Agora/internal/auth"
	"Agora/internal/config"
	"Agora/internal/core/users"
	"Agora/internal/db/postgres"
)

func migrateCommand() *cli.Command {
	return &cli.Command{
		Name:  "migrate",
		Usage: "apply pending PostgreSQL migrations",
		Action: func(c *cli.Context) error {
			cfg, err := config.FromContext(c)
			if err != nil {
				return err
			}
			if cfg.Store != config.StorePostgres {
				return errors.New("migrations only apply to the postgres store")
			}
			if err := cfg.ValidateStore(); err != nil {
				return err
			}

			ctx := log.Logger.WithContext(c.Context)
			db, err := openPostgres(ctx, cfg)
			if err != nil {
				return err
			}
			defer func() { _ = db.Close() }()

			if err := postgres.Migrate(ctx, db); err != nil {
				return err
			}
			return postgres.MigrationStatus(ctx, db)
		},
		Subcommands: []*cli.Command{
			{
				Name:  "status",
				Usage: "show applied and pending migrations",
				Action: func(c *cli.Context) error {
					cfg, err := config.FromContext(c)
					if err != nil {
						return err
					}
					if err := cfg.ValidateStore(); err != nil {
						return err
					}

					ctx := log.Logger.WithContext(c.Context)
					db, err := openPostgres(ctx, cfg)
					if err != nil {
						return err
					}
					defer func() { _ = db.Close() }()

					return postgres.MigrationStatus(ctx, db)
				},
			},
		},
	}
}

func createUserCommand() *cli.Command {
	return &cli.Command{
		Name:  "create-user",
		Usage: "index a user issued by the identity provider",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "id", Required: true, Usage: "the user id carried in token subjects"},
			&cli.StringFlag{Name: "username", Required: true},
			&cli.StringFlag{Name: "avatar"},
		},
		Action: func(c *cli.Context) error {
			cfg, err := config.FromContext(c)
			if err != nil {
				return err
			}
			if err := cfg.ValidateStore(); err != nil {
				return err
			}
			if cfg.Store == config.StoreMemory {
				return errors.New("create-user needs a persistent store; use serve --seed-user with the memory store")
			}

			ctx := log.Logger.WithContext(c.Context)
			store, err := openStorage(ctx, cfg, false)
			if err != nil {
				return err
			}
			defer func() { _ = store.close(ctx) }()

			user, err := users.NewUserService(store.users, nil).CreateUser(ctx, users.CreateUserRequest{
				ID:       c.String("id"),
				Username: c.String("username"),
				Avatar:   c.String("avatar"),
			})
			if err != nil {
				return err
			}

			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(user)
		},
	}
}

func tokenCommand() *cli.Command {
	return &cli.Command{
		Name:  "token",
		Usage: "sign an HS256 bearer token for local development",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "subject", Aliases: []string{"sub"}, Required: true, Usage: "user id"},
			&cli.DurationFlag{Name: "ttl", Value: 24 * time.Hour},
		},
		Action: func(c *cli.Context) error {
			cfg, err := config.FromContext(c)
			if err != nil {
				return err
			}
			if cfg.JWTSecret == "" {
				return errors.New("JWT_SECRET is required to sign tokens")
			}

			token, err := auth.IssueToken([]byte(cfg.JWTSecret), c.String("subject"), cfg.JWTIssuer, c.Duration("ttl"))
			if err != nil {
				return err
			}
			fmt.Println(token)
			return nil
		},
	}
}
