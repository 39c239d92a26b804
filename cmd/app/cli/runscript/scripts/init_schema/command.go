package script_init_schema

import (
	"github.com/urfave/cli/v2"
	"go.uber.org/fx"

	"exusiai.dev/boxstats/internal/repo"
)

type CommandDeps struct {
	fx.In

	Schema *repo.Schema
}

func Command(depsFn func() (CommandDeps, error)) *cli.Command {
	return &cli.Command{
		Name:        "init_schema",
		Description: "create the accounts and seasons tables and their indexes",
		Action: func(ctx *cli.Context) error {
			deps, err := depsFn()
			if err != nil {
				return err
			}
			return run(ctx, deps)
		},
	}
}
