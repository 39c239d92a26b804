package middlewares

import (
	"github.com/gofiber/fiber/v2"

	"exusiai.dev/boxstats/internal/pkg/bserr"
)

// ValidateSeasonNumberAsParam rejects requests whose :number param is not a positive integer.
func ValidateSeasonNumberAsParam(c *fiber.Ctx) error {
	number, err := c.ParamsInt("number")
	if err != nil || number < 1 {
		return bserr.ErrInvalidReq.Msg("season number must be a positive integer")
	}
	return c.Next()
}
