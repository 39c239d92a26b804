package script_init_schema

import (
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v2"
)

func run(ctx *cli.Context, deps CommandDeps) error {
	log.Info().Msg("running script")

	if err := deps.Schema.Create(ctx.Context); err != nil {
		return errors.Wrap(err, "failed to create schema")
	}

	log.Info().Msg("script finished")
	return nil
}
