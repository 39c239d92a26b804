package app

import (
	"os"

	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v2"

	"exusiai.dev/boxstats/cmd/app/cli/runscript"
	"exusiai.dev/boxstats/cmd/app/server"
	"exusiai.dev/boxstats/internal/pkg/bininfo"
)

func Run() {
	app := &cli.App{
		Name:        "boxstats",
		Description: "Loot box opening statistics backend. Built with Go, fiber, bun and go.uber.org/fx. Uses NATS as MQ and Redis as state synchronization.",
		Version:     bininfo.Version,
		Commands: []*cli.Command{
			server.Command(),
			runscript.Command(),
		},
	}
	if err := app.Run(os.Args); err != nil {
		log.Fatal().Err(err).Msg("failed to run app")
	}
}
