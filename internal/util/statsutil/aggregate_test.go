package statsutil

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"exusiai.dev/boxstats/internal/model"
	"exusiai.dev/boxstats/internal/pkg/bserr"
)

func TestQualityTotalsByType(t *testing.T) {
	rows := []*model.QualityTotalRow{
		{BoxType: model.BoxTypeRegular, Quality: model.QualityLux, Count: 1},
		{BoxType: model.BoxTypeRegular, Quality: model.QualitySport, Count: 7},
		{BoxType: model.BoxTypeTournament, Quality: model.QualityExotic, Count: 2},
		{BoxType: model.BoxTypeRegular, Quality: model.QualitySport, Count: 3},
		{BoxType: model.BoxTypeRegular, Quality: model.QualitySpecial, Count: 2},
	}

	got := QualityTotalsByType(rows)
	require.Len(t, got, 2)

	assert.Equal(t, &model.QualityTotals{
		Type: model.BoxTypeRegular,
		Qualities: []*model.QualityCount{
			{Quality: model.QualitySport, Count: 10},
			{Quality: model.QualitySpecial, Count: 2},
			{Quality: model.QualityLux, Count: 1},
		},
		TotalBoxes: 13,
	}, got[model.BoxTypeRegular])

	assert.Equal(t, &model.QualityTotals{
		Type:       model.BoxTypeTournament,
		Qualities:  []*model.QualityCount{{Quality: model.QualityExotic, Count: 2}},
		TotalBoxes: 2,
	}, got[model.BoxTypeTournament])

	t.Run("no rows", func(t *testing.T) {
		assert.Empty(t, QualityTotalsByType(nil))
	})
}

func TestSeasonTotalsByType(t *testing.T) {
	rows := []*model.SeasonTotalRow{
		{BoxType: model.BoxTypeRegular, SeasonNumber: 3, Count: 4},
		{BoxType: model.BoxTypeRegular, SeasonNumber: 1, Count: 10},
		{BoxType: model.BoxTypeRegular, SeasonNumber: 3, Count: 1},
		{BoxType: model.BoxTypeTournament, SeasonNumber: 2, Count: 6},
	}

	got := SeasonTotalsByType(rows)
	assert.Equal(t, model.SeasonTotals{
		model.BoxTypeRegular: {
			{Season: 1, Count: 10},
			{Season: 3, Count: 5},
		},
		model.BoxTypeTournament: {
			{Season: 2, Count: 6},
		},
	}, got)
}

func TestVariantCompositions(t *testing.T) {
	t.Run("shares within a variant", func(t *testing.T) {
		got, err := VariantCompositions([]*model.VariantTotalRow{
			{BoxVariant: model.BoxVariantSport, Quality: model.QualitySport, Count: 8},
			{BoxVariant: model.BoxVariantSport, Quality: model.QualitySpecial, Count: 2},
		})
		require.NoError(t, err)
		assert.Equal(t, []*model.VariantComposition{
			{
				BoxVariant: model.BoxVariantSport,
				Qualities: map[model.Quality]float64{
					model.QualitySport:   80,
					model.QualitySpecial: 20,
				},
			},
		}, got)
	})

	t.Run("variants in display order", func(t *testing.T) {
		got, err := VariantCompositions([]*model.VariantTotalRow{
			{BoxVariant: model.BoxVariantGolden, Quality: model.QualityExotic, Count: 1},
			{BoxVariant: model.BoxVariantLux, Quality: model.QualityLux, Count: 3},
			{BoxVariant: model.BoxVariantSport, Quality: model.QualitySport, Count: 1},
		})
		require.NoError(t, err)

		var order []model.BoxVariant
		for _, c := range got {
			order = append(order, c.BoxVariant)
			assert.Equal(t, 100.0, c.Qualities[firstKey(c.Qualities)])
		}
		assert.Equal(t, []model.BoxVariant{model.BoxVariantSport, model.BoxVariantLux, model.BoxVariantGolden}, order)
	})

	t.Run("thirds are rounded", func(t *testing.T) {
		got, err := VariantCompositions([]*model.VariantTotalRow{
			{BoxVariant: model.BoxVariantSpecial, Quality: model.QualitySport, Count: 1},
			{BoxVariant: model.BoxVariantSpecial, Quality: model.QualitySpecial, Count: 1},
			{BoxVariant: model.BoxVariantSpecial, Quality: model.QualityLux, Count: 1},
		})
		require.NoError(t, err)
		require.Len(t, got, 1)
		for _, share := range got[0].Qualities {
			assert.Equal(t, 33.33, share)
		}
	})

	t.Run("empty variant", func(t *testing.T) {
		_, err := VariantCompositions([]*model.VariantTotalRow{
			{BoxVariant: model.BoxVariantImport, Quality: model.QualityImport, Count: 0},
		})
		assert.True(t, errors.Is(err, bserr.ErrDivisionByZero))
	})
}

func firstKey(m map[model.Quality]float64) model.Quality {
	for k := range m {
		return k
	}
	return ""
}
