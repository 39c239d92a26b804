package script_warm_stats

import (
	"github.com/urfave/cli/v2"
	"go.uber.org/fx"

	"exusiai.dev/boxstats/internal/service"
)

type CommandDeps struct {
	fx.In

	StatsService *service.Stats
}

func Command(depsFn func() (CommandDeps, error)) *cli.Command {
	return &cli.Command{
		Name:        "warm_stats",
		Description: "precompute the cached all-season statistics of every owner",
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:  "concurrency",
				Usage: "number of owners warmed in parallel",
				Value: 4,
			},
			&cli.StringFlag{
				Name:  "flush",
				Usage: "drop the named cache before warming, or every cache with \"all\"",
			},
		},
		Action: func(ctx *cli.Context) error {
			deps, err := depsFn()
			if err != nil {
				return err
			}
			return run(ctx, deps)
		},
	}
}
