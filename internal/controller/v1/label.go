package v1

import (
	"github.com/gofiber/fiber/v2"
	"go.uber.org/fx"

	"exusiai.dev/boxstats/internal/server/svr"
	"exusiai.dev/boxstats/internal/service"
)

type Label struct {
	fx.In

	LabelService *service.Label
}

func RegisterLabel(v1 *svr.V1, c Label) {
	v1.Get("/meta/box-types", c.GetBoxTypeLabels)
}

func (c *Label) GetBoxTypeLabels(ctx *fiber.Ctx) error {
	ctx.Vary(fiber.HeaderAcceptLanguage)
	return ctx.JSON(c.LabelService.GetBoxTypeLabels(ctx.Get(fiber.HeaderAcceptLanguage)))
}
