package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"Agora/internal/config"
	"Agora/internal/core/users"
)

// seedUsers indexes the configured users, skipping ids already present
func seedUsers(ctx context.Context, svc users.Service, seeds []config.SeedUser) error {
	logger := zerolog.Ctx(ctx)
	for _, seed := range seeds {
		_, err := svc.CreateUser(ctx, users.CreateUserRequest{
			ID:       seed.ID,
			Username: seed.Username,
			Avatar:   seed.Avatar,
		})
		switch {
		case err == nil:
			logger.Info().Str("user", seed.ID).Msg("seeded user")
		case errors.Is(err, users.ErrUserExists):
			logger.Debug().Str("user", seed.ID).Msg("seed user already indexed")
		default:
			return fmt.Errorf("failed to seed user %q: %w", seed.ID, err)
		}
	}
	return nil
}
