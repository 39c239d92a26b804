package httpserver

import (
	"strconv"

	"github.com/getsentry/sentry-go"
	"github.com/gofiber/contrib/fibersentry"
	"github.com/gofiber/fiber/v2"
	"github.com/pkg/errors"

	"exusiai.dev/boxstats/internal/pkg/bserr"
	"exusiai.dev/boxstats/internal/pkg/bsid"
	"exusiai.dev/boxstats/internal/pkg/flog"
)

func handleCustomError(ctx *fiber.Ctx, e *bserr.Error) error {
	flog.WarnFrom(ctx).
		Err(e).
		Str("method", ctx.Method()).
		Str("path", ctx.Path()).
		Msg(e.Message)

	body := fiber.Map{
		"code":    e.ErrorCode,
		"message": e.Message,
	}

	// Add extra details if needed
	if e.Extras != nil && len(*e.Extras) > 0 {
		for k, v := range *e.Extras {
			body[k] = v
		}
	}

	return ctx.Status(e.StatusCode).JSON(body)
}

func ErrorHandler(ctx *fiber.Ctx, err error) error {
	var be *bserr.Error
	if errors.As(err, &be) && be.StatusCode < fiber.StatusInternalServerError {
		return handleCustomError(ctx, be)
	}

	// Default 500 statuscode
	re := *bserr.ErrInternalError
	if be != nil {
		re = *be
	}

	var fe *fiber.Error
	if errors.As(err, &fe) {
		// Overwrite status code if fiber.Error type & provided code
		re.StatusCode = fe.Code
		re.ErrorCode = "UNKNOWN_ERROR"
		re.Message = fe.Message
		if fe.Code < fiber.StatusInternalServerError {
			return handleCustomError(ctx, &re)
		}
	}

	flog.ErrorFrom(ctx).
		Stack().
		Err(err).
		Str("method", ctx.Method()).
		Str("path", ctx.Path()).
		Int("status", re.StatusCode).
		Msg("Internal Server Error")

	if hub := fibersentry.GetHubFromContext(ctx); hub != nil {
		hub.Scope().SetTag("status", strconv.Itoa(re.StatusCode))
		if u := bsid.Extract(ctx); u != "" {
			hub.Scope().SetUser(sentry.User{
				ID: u,
			})
		}
		hub.CaptureException(err)
	}

	return handleCustomError(ctx, &re)
}
