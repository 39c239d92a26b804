package runscript

import (
	"github.com/urfave/cli/v2"
	"go.uber.org/fx"

	cliapp "exusiai.dev/boxstats/cmd/app/cli"
	script_archive_seasons "exusiai.dev/boxstats/cmd/app/cli/runscript/scripts/archive_seasons"
	script_init_schema "exusiai.dev/boxstats/cmd/app/cli/runscript/scripts/init_schema"
	script_warm_stats "exusiai.dev/boxstats/cmd/app/cli/runscript/scripts/warm_stats"
)

// depsFn defers building the application graph until a script actually runs,
// so `--help` never dials the infrastructure.
func depsFn[T any]() func() (T, error) {
	return func() (T, error) {
		var deps T
		err := cliapp.Start(fx.Populate(&deps))
		return deps, err
	}
}

func Command() *cli.Command {
	return &cli.Command{
		Name:        "run-script",
		Description: "run maintenance go scripts",
		Subcommands: []*cli.Command{
			script_init_schema.Command(depsFn[script_init_schema.CommandDeps]()),
			script_archive_seasons.Command(depsFn[script_archive_seasons.CommandDeps]()),
			script_warm_stats.Command(depsFn[script_warm_stats.CommandDeps]()),
		},
	}
}
