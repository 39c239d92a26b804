package v1

import (
	"bytes"
	"time"

	"github.com/go-redsync/redsync/v4"
	"github.com/goccy/go-json"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/redis/go-redis/v9"
	"go.uber.org/fx"

	"exusiai.dev/boxstats/internal/app/appconfig"
	"exusiai.dev/boxstats/internal/constant"
	"exusiai.dev/boxstats/internal/model/types"
	"exusiai.dev/boxstats/internal/pkg/bserr"
	"exusiai.dev/boxstats/internal/pkg/bsid"
	"exusiai.dev/boxstats/internal/pkg/cachectrl"
	"exusiai.dev/boxstats/internal/pkg/fiberstore"
	"exusiai.dev/boxstats/internal/pkg/flog"
	"exusiai.dev/boxstats/internal/pkg/middlewares"
	"exusiai.dev/boxstats/internal/server/svr"
	"exusiai.dev/boxstats/internal/service"
	"exusiai.dev/boxstats/internal/util/rekuest"
)

type Season struct {
	fx.In

	Config         *appconfig.Config
	Redis          *redis.Client
	RedSync        *redsync.Redsync
	AccountService *service.Account
	SeasonService  *service.Season
}

func RegisterSeason(v1 *svr.V1, c Season) {
	seasons := v1.Group("/drops/seasons", c.MiddlewareRequireAccount)

	seasons.Get("/", c.GetSeasons)
	seasons.Get("/completed", c.GetCompletedSeasons)
	seasons.Get("/:number", middlewares.ValidateSeasonNumberAsParam, c.GetSeason)

	write := []fiber.Handler{
		limiter.New(limiter.Config{
			Max:        c.Config.WriteRateLimit,
			Expiration: time.Minute,
			KeyGenerator: func(ctx *fiber.Ctx) string {
				return bsid.Extract(ctx)
			},
			LimitReached: func(ctx *fiber.Ctx) error {
				return ctx.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
					"code":    "TOO_MANY_REQUESTS",
					"message": "Your client is writing seasons too frequently. Please retry later.",
				})
			},
			Storage: fiberstore.NewRedis(c.Redis, constant.SeasonWriteLimiterRedisPrefix),
		}),
		middlewares.Idempotency(&middlewares.IdempotencyConfig{
			Lifetime:  constant.SeasonWriteIdempotencyLifetime,
			KeyHeader: constant.IdempotencyKeyHeader,
			KeepResponseHeaders: []string{
				fiber.HeaderContentType,
				fiber.HeaderContentLength,
			},
			Storage: fiberstore.NewRedis(c.Redis, constant.SeasonWriteIdempotencyRedisPrefix),
			RedSync: c.RedSync,
		}),
	}

	seasons.Post("/", append(write, c.CreateSeason)...)
	seasons.Post("/new", append(write, c.CreateSeason)...)
	seasons.Patch("/:id", append(write, c.ReplaceSeason)...)
}

// MiddlewareRequireAccount rejects requests without a known owner key and
// keeps the resolved account in ctx.Locals for the handlers.
func (c *Season) MiddlewareRequireAccount(ctx *fiber.Ctx) error {
	if _, err := c.AccountService.GetAccountFromRequest(ctx); err != nil {
		return err
	}
	cachectrl.Private(ctx)
	return ctx.Next()
}

func (c *Season) GetSeasons(ctx *fiber.Ctx) error {
	account, err := c.AccountService.GetAccountFromRequest(ctx)
	if err != nil {
		return err
	}

	seasons, err := c.SeasonService.GetSeasons(ctx.UserContext(), account.AccountID)
	if err != nil {
		return err
	}

	return ctx.JSON(&types.SeasonList{Seasons: seasons})
}

func (c *Season) GetCompletedSeasons(ctx *fiber.Ctx) error {
	account, err := c.AccountService.GetAccountFromRequest(ctx)
	if err != nil {
		return err
	}

	numbers, err := c.SeasonService.GetCompletedSeasonNumbers(ctx.UserContext(), account.AccountID)
	if err != nil {
		return err
	}

	return ctx.JSON(numbers)
}

func (c *Season) GetSeason(ctx *fiber.Ctx) error {
	account, err := c.AccountService.GetAccountFromRequest(ctx)
	if err != nil {
		return err
	}
	number, _ := ctx.ParamsInt("number")

	season, err := c.SeasonService.GetSeasonBoxes(ctx.UserContext(), account.AccountID, number)
	if err != nil {
		return err
	}

	return ctx.JSON(season)
}

func (c *Season) CreateSeason(ctx *fiber.Ctx) error {
	account, err := c.AccountService.GetAccountFromRequest(ctx)
	if err != nil {
		return err
	}

	var req types.CreateSeasonRequest
	if err := rekuest.ValidBody(ctx, &req); err != nil {
		return err
	}

	result, err := c.SeasonService.CreateOrMerge(ctx.UserContext(), account.AccountID, req.SeasonNumber, req.Boxes)
	if err != nil {
		return err
	}

	flog.InfoFrom(ctx).
		Str("evt.name", "season.write").
		Int("accountId", account.AccountID).
		Int("seasonNumber", req.SeasonNumber).
		Bool("created", result.Created).
		Msg("season boxes recorded")

	status := fiber.StatusOK
	if result.Created {
		status = fiber.StatusCreated
	}
	return ctx.Status(status).JSON(result)
}

// ReplaceSeason accepts either {"boxes": [...]} or a bare box list as body.
// An empty list deletes the season.
func (c *Season) ReplaceSeason(ctx *fiber.Ctx) error {
	account, err := c.AccountService.GetAccountFromRequest(ctx)
	if err != nil {
		return err
	}
	seasonID := ctx.Params("id")
	if err := rekuest.ValidVar(ctx, seasonID, "required,max=64"); err != nil {
		return err
	}

	req, err := parseReplaceBody(ctx)
	if err != nil {
		return err
	}

	result, err := c.SeasonService.ReplaceOrDelete(ctx.UserContext(), account.AccountID, seasonID, req.Boxes)
	if err != nil {
		return err
	}

	flog.InfoFrom(ctx).
		Str("evt.name", "season.write").
		Int("accountId", account.AccountID).
		Str("seasonId", seasonID).
		Bool("deleted", result.Deleted).
		Msg("season boxes replaced")

	return ctx.JSON(result)
}

func parseReplaceBody(ctx *fiber.Ctx) (*types.ReplaceSeasonRequest, error) {
	var req types.ReplaceSeasonRequest
	if body := bytes.TrimSpace(ctx.Body()); len(body) > 0 && body[0] == '[' {
		if err := json.Unmarshal(body, &req.Boxes); err != nil {
			return nil, bserr.ErrMalformedInput.Msg("invalid request body: %s", err)
		}
		if err := rekuest.ValidStruct(ctx, &req); err != nil {
			return nil, err
		}
		return &req, nil
	}

	if err := rekuest.ValidBody(ctx, &req); err != nil {
		return nil, err
	}
	return &req, nil
}
