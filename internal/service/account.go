package service

import (
	"context"

	"github.com/gofiber/fiber/v2"
	"github.com/pkg/errors"

	"exusiai.dev/boxstats/internal/constant"
	"exusiai.dev/boxstats/internal/model"
	"exusiai.dev/boxstats/internal/pkg/bserr"
	"exusiai.dev/boxstats/internal/pkg/bsid"
	"exusiai.dev/boxstats/internal/repo"
)

type Account struct {
	AccountRepo *repo.Account
}

func NewAccount(accountRepo *repo.Account) *Account {
	return &Account{
		AccountRepo: accountRepo,
	}
}

func (s *Account) CreateAccountWithRandomOwnerKey(ctx context.Context) (*model.Account, error) {
	return s.AccountRepo.CreateAccountWithRandomOwnerKey(ctx)
}

// GetAccountFromRequest resolves the owner of a request. A missing or
// unknown owner key yields bserr.ErrUnauthorized.
func (s *Account) GetAccountFromRequest(ctx *fiber.Ctx) (*model.Account, error) {
	if account, ok := ctx.Locals(constant.ContextKeyAccount).(*model.Account); ok {
		return account, nil
	}

	ownerKey := bsid.Extract(ctx)
	if ownerKey == "" {
		return nil, bserr.ErrUnauthorized
	}

	account, err := s.AccountRepo.GetAccountByOwnerKey(ctx.UserContext(), ownerKey)
	if errors.Is(err, bserr.ErrNotFound) {
		return nil, bserr.ErrUnauthorized
	} else if err != nil {
		return nil, err
	}

	ctx.Locals(constant.ContextKeyAccount, account)
	return account, nil
}
