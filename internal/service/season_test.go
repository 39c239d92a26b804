package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/guregu/null.v3"

	"exusiai.dev/boxstats/internal/constant"
	"exusiai.dev/boxstats/internal/model"
	modelcache "exusiai.dev/boxstats/internal/model/cache"
	"exusiai.dev/boxstats/internal/pkg/bserr"
	"exusiai.dev/boxstats/internal/pkg/cache"
)

func TestSeasonCreateOrMerge(t *testing.T) {
	s := newTestServices(t)
	ctx := context.Background()

	created, err := s.season.CreateOrMerge(ctx, 1, 1, []*model.Box{
		regularBox(model.BoxVariantSport, item(model.QualitySport, 20)),
		regularBox(model.BoxVariantSpecial, item(model.QualitySpecial, 2)),
	})
	require.NoError(t, err)
	assert.True(t, created.Created)
	require.NotNil(t, created.Season)
	assert.Equal(t, 1, created.Season.Version)

	// same type again, even with a new variant
	_, err = s.season.CreateOrMerge(ctx, 1, 1, []*model.Box{regularBox(model.BoxVariantLux, item(model.QualityLux, 1))})
	assert.ErrorIs(t, err, bserr.ErrDuplicateBoxType)

	appended, err := s.season.CreateOrMerge(ctx, 1, 1, []*model.Box{tournamentBox(item(model.QualityExotic, 1))})
	require.NoError(t, err)
	assert.False(t, appended.Created)
	assert.Equal(t, created.Season.SeasonID, appended.Season.SeasonID)
	assert.Equal(t, 2, appended.Season.Version)
	assert.Len(t, appended.Season.Boxes, 3)

	// both types are taken now
	_, err = s.season.CreateOrMerge(ctx, 1, 1, []*model.Box{tournamentBox(item(model.QualityExotic, 1))})
	assert.ErrorIs(t, err, bserr.ErrDuplicateBoxType)

	_, err = s.season.CreateOrMerge(ctx, 1, 2, []*model.Box{{Type: model.BoxTypeRegular, Items: []*model.Item{item(model.QualitySport, 1)}}})
	assert.ErrorIs(t, err, bserr.ErrInvalidReq)

	numbers, err := s.season.GetCompletedSeasonNumbers(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, []int{1}, numbers)

	// rejected writes publish nothing
	assert.Equal(t, []string{constant.SeasonUpdatedSubject, constant.SeasonUpdatedSubject}, s.js.Subjects())
}

func TestSeasonWriteInvalidatesStatistics(t *testing.T) {
	s := newTestServices(t)
	ctx := context.Background()

	_, err := s.season.CreateOrMerge(ctx, 1, 1, []*model.Box{regularBox(model.BoxVariantSport, item(model.QualitySport, 5))})
	require.NoError(t, err)
	require.NoError(t, s.stats.Warm(ctx, 1))

	var view model.ContentView
	require.NoError(t, modelcache.ContentViews.Get(ctx, modelcache.ScopeKey(1, null.Int{}), &view))

	_, err = s.season.CreateOrMerge(ctx, 1, 2, []*model.Box{regularBox(model.BoxVariantSport, item(model.QualitySport, 5))})
	require.NoError(t, err)

	assert.ErrorIs(t, modelcache.ContentViews.Get(ctx, modelcache.ScopeKey(1, null.Int{}), &view), cache.ErrMiss)
	var totals model.SeasonTotals
	assert.ErrorIs(t, modelcache.SeasonTotals.Get(ctx, modelcache.SeasonTotalsKey(1), &totals), cache.ErrMiss)
}

func TestSeasonReplaceOrDelete(t *testing.T) {
	s := newTestServices(t)
	ctx := context.Background()

	created, err := s.season.CreateOrMerge(ctx, 1, 3, []*model.Box{regularBox(model.BoxVariantSport, item(model.QualitySport, 5))})
	require.NoError(t, err)
	seasonID := created.Season.SeasonID

	t.Run("unknown or foreign season", func(t *testing.T) {
		_, err := s.season.ReplaceOrDelete(ctx, 1, "01HZZZZZZZZZZZZZZZZZZZZZZZ", nil)
		assert.ErrorIs(t, err, bserr.ErrSeasonNotFound)
		_, err = s.season.ReplaceOrDelete(ctx, 2, seasonID, nil)
		assert.ErrorIs(t, err, bserr.ErrSeasonNotFound)
	})

	t.Run("replace", func(t *testing.T) {
		replaced, err := s.season.ReplaceOrDelete(ctx, 1, seasonID, []*model.Box{
			regularBox(model.BoxVariantGolden, item(model.QualityImport, 1)),
			tournamentBox(item(model.QualityLux, 4)),
		})
		require.NoError(t, err)
		assert.False(t, replaced.Deleted)
		assert.Equal(t, 2, replaced.Season.Version)

		boxes, err := s.season.GetSeasonBoxes(ctx, 1, 3)
		require.NoError(t, err)
		assert.Equal(t, seasonID, boxes.SeasonID)
		assert.Len(t, boxes.Boxes, 2)
	})

	t.Run("duplicate groups are rejected", func(t *testing.T) {
		_, err := s.season.ReplaceOrDelete(ctx, 1, seasonID, []*model.Box{
			tournamentBox(item(model.QualityLux, 1)),
			tournamentBox(item(model.QualityLux, 2)),
		})
		assert.ErrorIs(t, err, bserr.ErrInvalidReq)
	})

	t.Run("empty list deletes", func(t *testing.T) {
		deleted, err := s.season.ReplaceOrDelete(ctx, 1, seasonID, []*model.Box{})
		require.NoError(t, err)
		assert.True(t, deleted.Deleted)
		assert.Nil(t, deleted.Season)

		_, err = s.season.GetSeasonBoxes(ctx, 1, 3)
		assert.ErrorIs(t, err, bserr.ErrSeasonNotFound)
		_, err = s.stats.GetTotalContentView(ctx, 1)
		assert.ErrorIs(t, err, bserr.ErrNoSeasonsForUser)

		numbers, err := s.season.GetCompletedSeasonNumbers(ctx, 1)
		require.NoError(t, err)
		assert.NotNil(t, numbers)
		assert.Empty(t, numbers)
	})

	assert.Equal(t, []string{
		constant.SeasonUpdatedSubject,
		constant.SeasonUpdatedSubject,
		constant.SeasonDeletedSubject,
	}, s.js.Subjects())
}

func TestSeasonGetSeasons(t *testing.T) {
	s := newTestServices(t)
	ctx := context.Background()

	for _, number := range []int{7, 1} {
		_, err := s.season.CreateOrMerge(ctx, 1, number, []*model.Box{tournamentBox(item(model.QualitySport, number))})
		require.NoError(t, err)
	}

	seasons, err := s.season.GetSeasons(ctx, 1)
	require.NoError(t, err)
	require.Len(t, seasons, 2)
	assert.Equal(t, 1, seasons[0].SeasonNumber)
	assert.Equal(t, 7, seasons[1].SeasonNumber)
	assert.NotEmpty(t, seasons[0].SeasonID)
	assert.Len(t, seasons[1].Boxes, 1)

	empty, err := s.season.GetSeasons(ctx, 2)
	require.NoError(t, err)
	assert.Empty(t, empty)
}
