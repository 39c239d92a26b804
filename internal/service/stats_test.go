package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/guregu/null.v3"

	"exusiai.dev/boxstats/internal/model"
	modelcache "exusiai.dev/boxstats/internal/model/cache"
	"exusiai.dev/boxstats/internal/pkg/bserr"
)

func TestStatsWithoutSeasons(t *testing.T) {
	s := newTestServices(t)
	ctx := context.Background()

	_, err := s.stats.GetTotalContentView(ctx, 1)
	assert.ErrorIs(t, err, bserr.ErrNoSeasonsForUser)
	_, err = s.stats.GetSeasonContentView(ctx, 1, 1)
	assert.ErrorIs(t, err, bserr.ErrNoSeasonsForUser)
	_, err = s.stats.GetSeasonTotals(ctx, 1)
	assert.ErrorIs(t, err, bserr.ErrNoSeasonsForUser)
	_, err = s.stats.GetVariantCompositions(ctx, 1, null.Int{})
	assert.ErrorIs(t, err, bserr.ErrNoSeasonsForUser)
	_, err = s.stats.GetVariantCompositions(ctx, 1, null.IntFrom(1))
	assert.ErrorIs(t, err, bserr.ErrNoSeasonsForUser)

	// nothing to warm is not a failure
	assert.NoError(t, s.stats.Warm(ctx, 1))
}

func TestStatsSeasonNotRecorded(t *testing.T) {
	s := newTestServices(t)
	ctx := context.Background()

	_, err := s.season.CreateOrMerge(ctx, 1, 1, []*model.Box{regularBox(model.BoxVariantSport, item(model.QualitySport, 5))})
	require.NoError(t, err)

	_, err = s.stats.GetSeasonContentView(ctx, 1, 9)
	assert.ErrorIs(t, err, bserr.ErrSeasonNotFound)
	_, err = s.stats.GetVariantCompositions(ctx, 1, null.IntFrom(9))
	assert.ErrorIs(t, err, bserr.ErrSeasonNotFound)

	// another owner's seasons never count
	_, err = s.stats.GetTotalContentView(ctx, 2)
	assert.ErrorIs(t, err, bserr.ErrNoSeasonsForUser)
}

func TestStatsTotalContentViewComparesLatestSeason(t *testing.T) {
	s := newTestServices(t)
	ctx := context.Background()

	// season 2 is recorded first: the latest season is the highest number, not the newest write
	_, err := s.season.CreateOrMerge(ctx, 1, 2, []*model.Box{
		regularBox(model.BoxVariantSport, item(model.QualitySport, 10)),
	})
	require.NoError(t, err)
	_, err = s.season.CreateOrMerge(ctx, 1, 1, []*model.Box{
		regularBox(model.BoxVariantSport, item(model.QualitySport, 20), item(model.QualitySpecial, 2)),
	})
	require.NoError(t, err)
	_, err = s.season.CreateOrMerge(ctx, 1, 1, []*model.Box{
		tournamentBox(item(model.QualityExotic, 1)),
	})
	require.NoError(t, err)

	view, err := s.stats.GetTotalContentView(ctx, 1)
	require.NoError(t, err)

	regular := view[model.BoxTypeRegular]
	require.NotNil(t, regular)
	assert.Equal(t, 32, regular.Total.TotalBoxes)
	require.NotNil(t, regular.LastSeason)
	assert.Equal(t, []*model.QualityCount{{Quality: model.QualitySport, Count: 10}}, regular.LastSeason.Qualities)
	require.NotNil(t, regular.PrevSeasons)
	assert.Equal(t, []*model.QualityCount{
		{Quality: model.QualitySport, Count: 20},
		{Quality: model.QualitySpecial, Count: 2},
	}, regular.PrevSeasons.Qualities)
	assert.Equal(t, 22, regular.PrevSeasons.TotalBoxes)

	// no tournament boxes in season 2, so there is nothing to compare against
	tournament := view[model.BoxTypeTournament]
	require.NotNil(t, tournament)
	assert.Nil(t, tournament.LastSeason)
	assert.Nil(t, tournament.PrevSeasons)

	single, err := s.stats.GetSeasonContentView(ctx, 1, 1)
	require.NoError(t, err)
	assert.Equal(t, 22, single[model.BoxTypeRegular].Total.TotalBoxes)
	assert.Nil(t, single[model.BoxTypeRegular].LastSeason)

	totals, err := s.stats.GetSeasonTotals(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, []*model.SeasonCount{{Season: 1, Count: 22}, {Season: 2, Count: 10}}, totals[model.BoxTypeRegular])
}

func TestStatsServesCacheUntilInvalidated(t *testing.T) {
	s := newTestServices(t)
	ctx := context.Background()

	_, err := s.season.CreateOrMerge(ctx, 1, 1, []*model.Box{regularBox(model.BoxVariantSport, item(model.QualitySport, 5))})
	require.NoError(t, err)

	view, err := s.stats.GetTotalContentView(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, 5, view[model.BoxTypeRegular].Total.TotalBoxes)

	// a write that bypasses the service leaves the cached view in place
	_, err = s.store.InsertSeason(ctx, bunTx, 1, 2, []*model.Box{regularBox(model.BoxVariantSport, item(model.QualitySport, 7))})
	require.NoError(t, err)
	view, err = s.stats.GetTotalContentView(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, 5, view[model.BoxTypeRegular].Total.TotalBoxes)

	require.NoError(t, s.stats.Invalidate(ctx, 1))
	view, err = s.stats.GetTotalContentView(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, 12, view[model.BoxTypeRegular].Total.TotalBoxes)
}

func TestStatsWarmAllClampsConcurrency(t *testing.T) {
	s := newTestServices(t)
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	for _, accountID := range []int{1, 2} {
		_, err := s.store.InsertSeason(ctx, bunTx, accountID, 1, []*model.Box{regularBox(model.BoxVariantLux, item(model.QualityLux, 3))})
		require.NoError(t, err)
	}

	count, err := s.stats.WarmAll(ctx, 0)
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	for _, accountID := range []int{1, 2} {
		var view model.ContentView
		assert.NoError(t, modelcache.ContentViews.Get(ctx, modelcache.ScopeKey(accountID, null.Int{}), &view))
		var totals model.SeasonTotals
		assert.NoError(t, modelcache.SeasonTotals.Get(ctx, modelcache.SeasonTotalsKey(accountID), &totals))
	}
}
