package v1

import (
	"github.com/goccy/go-json"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/fx"
	"gopkg.in/guregu/null.v3"

	"exusiai.dev/boxstats/internal/pkg/cachectrl"
	"exusiai.dev/boxstats/internal/pkg/middlewares"
	"exusiai.dev/boxstats/internal/server/svr"
	"exusiai.dev/boxstats/internal/service"
)

type Stats struct {
	fx.In

	AccountService *service.Account
	StatsService   *service.Stats
}

func RegisterStats(v1 *svr.V1, c Stats) {
	stats := v1.Group("/drops/stats")

	stats.Get("/total/qualities", c.GetTotalQualities)
	stats.Get("/total/seasons", c.GetTotalSeasons)
	stats.Get("/total/probability", c.GetTotalProbability)
	stats.Get("/seasons/:number/qualities", middlewares.ValidateSeasonNumberAsParam, c.GetSeasonQualities)
	stats.Get("/seasons/:number/probability", middlewares.ValidateSeasonNumberAsParam, c.GetSeasonProbability)
}

func (c *Stats) GetTotalQualities(ctx *fiber.Ctx) error {
	return c.send(ctx, func(accountID int) (any, error) {
		return c.StatsService.GetTotalContentView(ctx.UserContext(), accountID)
	})
}

func (c *Stats) GetTotalSeasons(ctx *fiber.Ctx) error {
	return c.send(ctx, func(accountID int) (any, error) {
		return c.StatsService.GetSeasonTotals(ctx.UserContext(), accountID)
	})
}

func (c *Stats) GetTotalProbability(ctx *fiber.Ctx) error {
	return c.send(ctx, func(accountID int) (any, error) {
		return c.StatsService.GetVariantCompositions(ctx.UserContext(), accountID, null.Int{})
	})
}

func (c *Stats) GetSeasonQualities(ctx *fiber.Ctx) error {
	number, _ := ctx.ParamsInt("number")
	return c.send(ctx, func(accountID int) (any, error) {
		return c.StatsService.GetSeasonContentView(ctx.UserContext(), accountID, number)
	})
}

func (c *Stats) GetSeasonProbability(ctx *fiber.Ctx) error {
	number, _ := ctx.ParamsInt("number")
	return c.send(ctx, func(accountID int) (any, error) {
		return c.StatsService.GetVariantCompositions(ctx.UserContext(), accountID, null.IntFrom(int64(number)))
	})
}

// send resolves the owner, computes the view and replies with an ETag so
// unchanged statistics revalidate to a 304.
func (c *Stats) send(ctx *fiber.Ctx, view func(accountID int) (any, error)) error {
	account, err := c.AccountService.GetAccountFromRequest(ctx)
	if err != nil {
		return err
	}

	result, err := view(account.AccountID)
	if err != nil {
		return err
	}

	body, err := json.Marshal(result)
	if err != nil {
		return err
	}

	cachectrl.Private(ctx)
	return cachectrl.SendWithETag(ctx, body)
}
