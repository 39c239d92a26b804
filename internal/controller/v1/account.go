package v1

import (
	"github.com/gofiber/fiber/v2"
	"go.uber.org/fx"

	"exusiai.dev/boxstats/internal/model/types"
	"exusiai.dev/boxstats/internal/pkg/bsid"
	"exusiai.dev/boxstats/internal/pkg/cachectrl"
	"exusiai.dev/boxstats/internal/pkg/flog"
	"exusiai.dev/boxstats/internal/server/svr"
	"exusiai.dev/boxstats/internal/service"
)

type Account struct {
	fx.In

	AccountService *service.Account
}

func RegisterAccount(v1 *svr.V1, c Account) {
	v1.Post("/accounts", c.CreateAccount)
	v1.Get("/accounts/me", c.GetMe)
}

// CreateAccount issues a new anonymous owner. The owner key is only ever
// returned here, so clients must keep it.
func (c *Account) CreateAccount(ctx *fiber.Ctx) error {
	cachectrl.OptOut(ctx)

	account, err := c.AccountService.CreateAccountWithRandomOwnerKey(ctx.UserContext())
	if err != nil {
		return err
	}
	bsid.Inject(ctx, account.OwnerKey)

	flog.InfoFrom(ctx).
		Str("evt.name", "account.created").
		Int("accountId", account.AccountID).
		Msg("created anonymous owner")

	return ctx.Status(fiber.StatusCreated).JSON(&types.AccountResponse{
		AccountID: account.AccountID,
		OwnerKey:  account.OwnerKey,
	})
}

func (c *Account) GetMe(ctx *fiber.Ctx) error {
	cachectrl.Private(ctx)

	account, err := c.AccountService.GetAccountFromRequest(ctx)
	if err != nil {
		return err
	}

	return ctx.JSON(&types.AccountResponse{
		AccountID: account.AccountID,
	})
}
