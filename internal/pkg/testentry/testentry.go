// Package testentry boots the full application graph for integration tests.
package testentry

import (
	"os"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"go.uber.org/fx"
	"go.uber.org/fx/fxtest"

	"exusiai.dev/boxstats/internal/app"
	"exusiai.dev/boxstats/internal/app/appcontext"
)

// EnvIntegration gates tests that need Postgres, Redis and NATS.
const EnvIntegration = "BOXSTATS_INTEGRATION_TEST"

// RequireIntegration skips t unless integration tests are enabled.
func RequireIntegration(t testing.TB) {
	t.Helper()
	if os.Getenv(EnvIntegration) == "" {
		t.Skipf("integration tests are disabled; set %s=1 to run them", EnvIntegration)
	}
}

// Start boots the server graph, populating targets, and stops it when t finishes.
func Start(t testing.TB, targets ...any) *fiber.App {
	t.Helper()

	var fiberApp *fiber.App
	opts := app.Options(appcontext.Declare(appcontext.EnvServer))
	// for testing, logger is too annoying. therefore, we use a NopLogger here
	opts = append(opts,
		fx.NopLogger,
		fx.Populate(&fiberApp),
		fx.Populate(targets...),
		fx.Invoke(func() {
			log.Logger = log.Logger.Output(zerolog.NewTestWriter(t))
		}),
	)

	fxApp := fxtest.New(t, opts...)
	fxApp.RequireStart()
	t.Cleanup(fxApp.RequireStop)

	return fiberApp
}
