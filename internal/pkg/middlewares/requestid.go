package middlewares

import (
	"github.com/gofiber/fiber/v2"

	"exusiai.dev/boxstats/internal/constant"
	"exusiai.dev/boxstats/internal/pkg/flog"
)

// RequestID mirrors the id assigned by the logger chain into ctx.Locals for handlers and Sentry.
func RequestID() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if id, ok := flog.IDFromCtx(c.UserContext()); ok {
			c.Locals(constant.ContextKeyRequestID, id.String())
		}
		return c.Next()
	}
}
