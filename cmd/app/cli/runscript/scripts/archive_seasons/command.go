package script_archive_seasons

import (
	"time"

	"github.com/urfave/cli/v2"
	"go.uber.org/fx"

	"exusiai.dev/boxstats/internal/service"
)

type CommandDeps struct {
	fx.In

	ArchiveService *service.Archive
}

func Command(depsFn func() (CommandDeps, error)) *cli.Command {
	return &cli.Command{
		Name:        "archive_seasons",
		Description: "snapshot every stored season to S3 as gzipped JSON Lines",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "date",
				Usage: "snapshot date in YYYY-MM-DD, defaults to today (UTC)",
				Value: time.Now().UTC().Format("2006-01-02"),
			},
			&cli.BoolFlag{
				Name:  "profile",
				Usage: "serve fgprof on 127.0.0.1:6060 while running",
			},
		},
		Action: func(ctx *cli.Context) error {
			deps, err := depsFn()
			if err != nil {
				return err
			}
			return run(ctx, deps, ctx.String("date"))
		},
	}
}
