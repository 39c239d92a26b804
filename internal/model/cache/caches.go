package cache

import (
	"context"
	"strconv"
	"sync"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
	"gopkg.in/guregu/null.v3"

	"exusiai.dev/boxstats/internal/model"
	"exusiai.dev/boxstats/internal/pkg/cache"
)

type Flusher func(ctx context.Context) error

var (
	AccountByOwnerKey *cache.Set[model.Account]

	ContentViews        *cache.Set[model.ContentView]
	SeasonTotals        *cache.Set[model.SeasonTotals]
	VariantCompositions *cache.Set[[]*model.VariantComposition]

	once sync.Once

	SetMap map[string]Flusher
)

func Initialize(client *redis.Client) {
	once.Do(func() {
		initializeCaches(client)
	})
}

func initializeCaches(client *redis.Client) {
	SetMap = make(map[string]Flusher)

	// account
	AccountByOwnerKey = cache.NewSet[model.Account](client, "account#ownerKey")
	SetMap[AccountByOwnerKey.Name()] = AccountByOwnerKey.Flush

	// stats
	ContentViews = cache.NewSet[model.ContentView](client, "stats#contentView#accountId|scope")
	SeasonTotals = cache.NewSet[model.SeasonTotals](client, "stats#seasonTotals#accountId")
	VariantCompositions = cache.NewSet[[]*model.VariantComposition](client, "stats#variantCompositions#accountId|scope")

	SetMap[ContentViews.Name()] = ContentViews.Flush
	SetMap[SeasonTotals.Name()] = SeasonTotals.Flush
	SetMap[VariantCompositions.Name()] = VariantCompositions.Flush
}

// OwnerPrefix is the key prefix shared by every statistics entry of an owner.
func OwnerPrefix(accountID int) string {
	return strconv.Itoa(accountID) + "|"
}

// ScopeKey keys a statistics entry by owner and scope: all seasons when
// season is null, otherwise the single season.
func ScopeKey(accountID int, season null.Int) string {
	if !season.Valid {
		return OwnerPrefix(accountID) + "total"
	}
	return OwnerPrefix(accountID) + "season:" + strconv.FormatInt(season.Int64, 10)
}

// SeasonTotalsKey keys the per-season totals of an owner.
func SeasonTotalsKey(accountID int) string {
	return OwnerPrefix(accountID) + "seasons"
}

// InvalidateOwner drops every cached statistics view of an owner.
func InvalidateOwner(ctx context.Context, accountID int) error {
	prefix := OwnerPrefix(accountID)
	if _, err := ContentViews.DeletePrefix(ctx, prefix); err != nil {
		return err
	}
	if _, err := VariantCompositions.DeletePrefix(ctx, prefix); err != nil {
		return err
	}
	if err := SeasonTotals.Delete(ctx, SeasonTotalsKey(accountID)); err != nil {
		return err
	}
	log.Debug().
		Str("evt.name", "cache.invalidate.owner").
		Int("accountId", accountID).
		Msg("invalidated owner statistics")
	return nil
}

// Flush drops the named cache, or every cache when name is empty.
func Flush(ctx context.Context, name string) error {
	if name != "" {
		flusher, ok := SetMap[name]
		if !ok {
			return nil
		}
		return flusher(ctx)
	}
	for _, flusher := range SetMap {
		if err := flusher(ctx); err != nil {
			return err
		}
	}
	return nil
}
