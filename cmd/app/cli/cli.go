package cli

import (
	"context"

	"go.uber.org/fx"

	"exusiai.dev/boxstats/internal/app"
	"exusiai.dev/boxstats/internal/app/appcontext"
)

// Start builds the application graph for a one-off command. Nothing listens
// for requests and the stats worker stays off.
func Start(module fx.Option) error {
	return app.New(appcontext.Declare(appcontext.EnvCLI), module).Start(context.Background())
}
