package service

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
	"gopkg.in/guregu/null.v3"

	"exusiai.dev/boxstats/internal/app/appconfig"
	"exusiai.dev/boxstats/internal/model"
	modelcache "exusiai.dev/boxstats/internal/model/cache"
	"exusiai.dev/boxstats/internal/pkg/bserr"
	"exusiai.dev/boxstats/internal/pkg/cache"
	"exusiai.dev/boxstats/internal/pkg/observability"
	"exusiai.dev/boxstats/internal/repo"
	"exusiai.dev/boxstats/internal/util/statsutil"
)

const (
	viewContent  = "content"
	viewSeasons  = "season_totals"
	viewVariants = "variant_compositions"
)

// StatsStore is the part of the season store the statistics views read.
type StatsStore interface {
	GetSeasonNumbers(ctx context.Context, accountID int) ([]int, error)
	GetAccountIDsWithSeasons(ctx context.Context) ([]int, error)
	AggregateQualityTotals(ctx context.Context, accountID int, season null.Int) ([]*model.QualityTotalRow, error)
	AggregateQualityTotalsWithLatest(ctx context.Context, accountID, latest int) (total, last []*model.QualityTotalRow, err error)
	AggregateSeasonTotals(ctx context.Context, accountID int) ([]*model.SeasonTotalRow, error)
	AggregateVariantTotals(ctx context.Context, accountID int, season null.Int) ([]*model.VariantTotalRow, error)
}

type Stats struct {
	Config     *appconfig.Config
	SeasonRepo StatsStore
}

func NewStats(conf *appconfig.Config, seasonRepo *repo.Season) *Stats {
	return &Stats{
		Config:     conf,
		SeasonRepo: seasonRepo,
	}
}

// GetTotalContentView builds the content view over every season of the owner.
// With more than one season, each box type also carries its latest season and
// everything before it.
func (s *Stats) GetTotalContentView(ctx context.Context, accountID int) (model.ContentView, error) {
	var view model.ContentView
	err := cached(ctx, s.Config.StatsCacheTTL, viewContent, modelcache.ContentViews, modelcache.ScopeKey(accountID, null.Int{}), &view, func() (model.ContentView, error) {
		numbers, err := s.seasonNumbers(ctx, accountID)
		if err != nil {
			return nil, err
		}

		if len(numbers) == 1 {
			rows, err := s.SeasonRepo.AggregateQualityTotals(ctx, accountID, null.Int{})
			if err != nil {
				return nil, err
			}
			return statsutil.BuildContentView(statsutil.QualityTotalsByType(rows), nil)
		}

		totalRows, lastRows, err := s.SeasonRepo.AggregateQualityTotalsWithLatest(ctx, accountID, numbers[len(numbers)-1])
		if err != nil {
			return nil, err
		}
		return statsutil.BuildContentView(statsutil.QualityTotalsByType(totalRows), statsutil.QualityTotalsByType(lastRows))
	})
	if err != nil {
		return nil, err
	}
	return view, nil
}

// GetSeasonContentView builds the content view of a single season. No
// last/prev comparisons are made for a single season.
func (s *Stats) GetSeasonContentView(ctx context.Context, accountID, seasonNumber int) (model.ContentView, error) {
	scope := null.IntFrom(int64(seasonNumber))
	var view model.ContentView
	err := cached(ctx, s.Config.StatsCacheTTL, viewContent, modelcache.ContentViews, modelcache.ScopeKey(accountID, scope), &view, func() (model.ContentView, error) {
		if err := s.requireSeason(ctx, accountID, seasonNumber); err != nil {
			return nil, err
		}
		rows, err := s.SeasonRepo.AggregateQualityTotals(ctx, accountID, scope)
		if err != nil {
			return nil, err
		}
		return statsutil.BuildContentView(statsutil.QualityTotalsByType(rows), nil)
	})
	if err != nil {
		return nil, err
	}
	return view, nil
}

// GetSeasonTotals returns the number of items per season for each box type.
func (s *Stats) GetSeasonTotals(ctx context.Context, accountID int) (model.SeasonTotals, error) {
	var totals model.SeasonTotals
	err := cached(ctx, s.Config.StatsCacheTTL, viewSeasons, modelcache.SeasonTotals, modelcache.SeasonTotalsKey(accountID), &totals, func() (model.SeasonTotals, error) {
		if _, err := s.seasonNumbers(ctx, accountID); err != nil {
			return nil, err
		}
		rows, err := s.SeasonRepo.AggregateSeasonTotals(ctx, accountID)
		if err != nil {
			return nil, err
		}
		return statsutil.SeasonTotalsByType(rows), nil
	})
	if err != nil {
		return nil, err
	}
	return totals, nil
}

// GetVariantCompositions returns the quality shares of regular boxes per
// variant, over every season when season is null.
func (s *Stats) GetVariantCompositions(ctx context.Context, accountID int, season null.Int) ([]*model.VariantComposition, error) {
	var compositions []*model.VariantComposition
	err := cached(ctx, s.Config.StatsCacheTTL, viewVariants, modelcache.VariantCompositions, modelcache.ScopeKey(accountID, season), &compositions, func() ([]*model.VariantComposition, error) {
		if season.Valid {
			if err := s.requireSeason(ctx, accountID, int(season.Int64)); err != nil {
				return nil, err
			}
		} else if _, err := s.seasonNumbers(ctx, accountID); err != nil {
			return nil, err
		}
		rows, err := s.SeasonRepo.AggregateVariantTotals(ctx, accountID, season)
		if err != nil {
			return nil, err
		}
		return statsutil.VariantCompositions(rows)
	})
	if err != nil {
		return nil, err
	}
	return compositions, nil
}

// Invalidate drops every cached view of the owner.
func (s *Stats) Invalidate(ctx context.Context, accountID int) error {
	return modelcache.InvalidateOwner(ctx, accountID)
}

// Warm recomputes and caches the owner's all-season views. Owners without
// seasons have nothing to warm.
func (s *Stats) Warm(ctx context.Context, accountID int) error {
	eg, ectx := errgroup.WithContext(ctx)
	eg.Go(func() error {
		_, err := s.GetTotalContentView(ectx, accountID)
		return err
	})
	eg.Go(func() error {
		_, err := s.GetSeasonTotals(ectx, accountID)
		return err
	})
	eg.Go(func() error {
		_, err := s.GetVariantCompositions(ectx, accountID, null.Int{})
		return err
	})
	err := eg.Wait()
	if errors.Is(err, bserr.ErrNoSeasonsForUser) {
		return nil
	}
	return err
}

// WarmAll warms every owner that has seasons, at most concurrency at a time,
// and returns the number of owners warmed.
func (s *Stats) WarmAll(ctx context.Context, concurrency int) (int, error) {
	ids, err := s.SeasonRepo.GetAccountIDsWithSeasons(ctx)
	if err != nil {
		return 0, err
	}

	if concurrency < 1 {
		concurrency = 1
	}

	eg, ectx := errgroup.WithContext(ctx)
	eg.SetLimit(concurrency)
	for _, id := range ids {
		id := id
		eg.Go(func() error {
			return s.Warm(ectx, id)
		})
	}
	if err := eg.Wait(); err != nil {
		return 0, err
	}
	return len(ids), nil
}

func (s *Stats) seasonNumbers(ctx context.Context, accountID int) ([]int, error) {
	numbers, err := s.SeasonRepo.GetSeasonNumbers(ctx, accountID)
	if err != nil {
		return nil, err
	}
	if len(numbers) == 0 {
		return nil, bserr.ErrNoSeasonsForUser
	}
	return numbers, nil
}

func (s *Stats) requireSeason(ctx context.Context, accountID, seasonNumber int) error {
	numbers, err := s.seasonNumbers(ctx, accountID)
	if err != nil {
		return err
	}
	for _, n := range numbers {
		if n == seasonNumber {
			return nil
		}
	}
	return bserr.ErrSeasonNotFound.Msg("season %d not found", seasonNumber)
}

// cached serves key from set, computing and storing the value on a miss.
// Failed computations are never cached.
func cached[T any](ctx context.Context, ttl time.Duration, view string, set *cache.Set[T], key string, dest *T, compute func() (T, error)) error {
	computed, err := set.MutexGetSet(ctx, key, dest, func() (T, error) {
		start := time.Now()
		defer func() {
			observability.StatsComputeDuration.WithLabelValues(view).Observe(time.Since(start).Seconds())
		}()
		return compute()
	}, ttl)
	if err != nil {
		return err
	}

	result := "hit"
	if computed {
		result = "miss"
	}
	observability.CacheLookups.WithLabelValues(set.Name(), result).Inc()
	log.Trace().
		Str("evt.name", "stats.cache.lookup").
		Str("cache", set.Name()).
		Str("key", key).
		Str("result", result).
		Msg("statistics cache lookup")
	return nil
}
