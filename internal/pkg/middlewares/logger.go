package middlewares

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"exusiai.dev/boxstats/internal/constant"
	"exusiai.dev/boxstats/internal/pkg/flog"
)

func Logger(app *fiber.App) {
	Chained(
		app,
		flog.NewHandlerMiddleware(log.With().Logger()),
		flog.RequestIDHandler("request_id", constant.RequestIDHeader),
		requestFields(),
		requestLogger(),
	)
}

func requestFields() fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		flog.FromFiberCtx(ctx).UpdateContext(func(c zerolog.Context) zerolog.Context {
			return c.
				Str("ip", ctx.IP()).
				Str("method", ctx.Method()).
				Str("url", ctx.Path()).
				Str("user_agent", ctx.Get(fiber.HeaderUserAgent))
		})
		return ctx.Next()
	}
}

func requestLogger() fiber.Handler {
	return flog.AccessHandler(func(ctx *fiber.Ctx, duration time.Duration) {
		flog.InfoFrom(ctx).
			Str("evt.name", "http.request").
			Int("status", ctx.Response().StatusCode()).
			Int("size", len(ctx.Response().Body())).
			Dur("duration", duration).
			Msg("received request")
	})
}
