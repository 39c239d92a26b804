package repo

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/uptrace/bun"

	"exusiai.dev/boxstats/internal/model"
	"exusiai.dev/boxstats/internal/model/cache"
	"exusiai.dev/boxstats/internal/pkg/bserr"
	"exusiai.dev/boxstats/internal/pkg/bsid"
	"exusiai.dev/boxstats/internal/repo/selector"
)

const (
	AccountMaxRetries = 10

	accountCacheTTL = time.Hour * 24
)

type Account struct {
	db  *bun.DB
	sel selector.S[model.Account]
}

func NewAccount(db *bun.DB) *Account {
	return &Account{
		db:  db,
		sel: selector.New[model.Account](db),
	}
}

func (r *Account) CreateAccountWithRandomOwnerKey(ctx context.Context) (*model.Account, error) {
	// owner keys are random; a collision on the unique index is retried with a fresh key
	for i := 0; i < AccountMaxRetries; i++ {
		account := &model.Account{
			OwnerKey:  bsid.New(),
			CreatedAt: time.Now(),
		}

		_, err := r.db.NewInsert().
			Model(account).
			Returning("account_id").
			Exec(ctx)
		if err != nil {
			log.Warn().
				Str("evt.name", "account.create.retry").
				Err(err).
				Int("retry", i).
				Msg("failed to create account. retrying...")
			continue
		}

		return account, nil
	}

	return nil, bserr.ErrInternalError.Msg("failed to create account")
}

func (r *Account) GetAccountByID(ctx context.Context, accountID int) (*model.Account, error) {
	return r.sel.SelectOne(ctx, func(q *bun.SelectQuery) *bun.SelectQuery {
		return q.Where("account_id = ?", accountID)
	})
}

// GetAccountByOwnerKey resolves an owner key, served from cache when possible.
// An unknown key yields bserr.ErrNotFound.
func (r *Account) GetAccountByOwnerKey(ctx context.Context, ownerKey string) (*model.Account, error) {
	var account model.Account
	_, err := cache.AccountByOwnerKey.MutexGetSet(ctx, ownerKey, &account, func() (model.Account, error) {
		found, err := r.sel.SelectOne(ctx, func(q *bun.SelectQuery) *bun.SelectQuery {
			return q.Where("owner_key = ?", ownerKey)
		})
		if err != nil {
			return model.Account{}, err
		}
		return *found, nil
	}, accountCacheTTL)
	if err != nil {
		return nil, err
	}
	return &account, nil
}
