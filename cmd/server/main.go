package main

import (
	"os"

	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v2"

	"Agora/internal/config"
)

func main() {
	app := &cli.App{
		Name:  "agora",
		Usage: "feed and post-interaction API",
		Flags: config.GlobalFlags(),
		Before: func(c *cli.Context) error {
			cfg, err := config.FromContext(c)
			if err != nil {
				return err
			}
			setupLogger(cfg)
			return nil
		},
		Commands: []*cli.Command{
			serveCommand(),
			migrateCommand(),
			createUserCommand(),
			tokenCommand(),
		},
		DefaultCommand: "serve",
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal().Err(err).Msg("agora exited with error")
	}
}
