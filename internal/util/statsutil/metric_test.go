package statsutil

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"exusiai.dev/boxstats/internal/model"
	"exusiai.dev/boxstats/internal/pkg/bserr"
)

func TestCoefficientOf(t *testing.T) {
	expected := map[model.Quality]int{
		model.QualitySport:       1,
		model.QualitySpecial:     5,
		model.QualityLux:         25,
		model.QualityImport:      125,
		model.QualityExotic:      625,
		model.QualityBlackMarket: 3125,
	}
	for quality, want := range expected {
		got, err := CoefficientOf(quality)
		require.NoError(t, err)
		assert.Equal(t, want, got, "coefficient of %s", quality)
	}

	_, err := CoefficientOf("legendary")
	assert.True(t, errors.Is(err, bserr.ErrUnknownQuality))
}

func TestChance(t *testing.T) {
	chance, err := Chance(10, 12)
	require.NoError(t, err)
	assert.Equal(t, 83.33, Round2(chance))

	for _, tc := range []struct{ count, total int }{{0, 5}, {5, 5}, {3, 7}} {
		chance, err := Chance(tc.count, tc.total)
		require.NoError(t, err)
		assert.GreaterOrEqual(t, chance, 0.0)
		assert.LessOrEqual(t, chance, 100.0)
	}

	for _, count := range []int{0, 1, 100} {
		_, err := Chance(count, 0)
		assert.True(t, errors.Is(err, bserr.ErrDivisionByZero), "count %d", count)
	}
}

func TestEfficiency(t *testing.T) {
	qcs := []*model.QualityCount{
		{Quality: model.QualitySport, Count: 10},
		{Quality: model.QualitySpecial, Count: 2},
	}

	t.Run("weighted sum", func(t *testing.T) {
		eff, err := Efficiency(qcs, 12)
		require.NoError(t, err)
		// 83.33 + 5*16.67 with rounded chances, 166.67 unrounded
		assert.InDelta(t, 166.68, eff, 0.02)
		assert.Equal(t, 166.67, Round2(eff))
	})

	t.Run("empty list", func(t *testing.T) {
		eff, err := Efficiency(nil, 7)
		require.NoError(t, err)
		assert.Equal(t, 0.0, eff)

		eff, err = Efficiency([]*model.QualityCount{}, 1)
		require.NoError(t, err)
		assert.Equal(t, 0.0, eff)
	})

	t.Run("monotonic in a single count", func(t *testing.T) {
		prev := -1.0
		for count := 0; count <= 5; count++ {
			eff, err := Efficiency([]*model.QualityCount{
				{Quality: model.QualitySport, Count: 4},
				{Quality: model.QualityLux, Count: count},
			}, 20)
			require.NoError(t, err)
			assert.GreaterOrEqual(t, eff, prev)
			prev = eff
		}
	})

	tests := []struct {
		name  string
		qcs   []*model.QualityCount
		total int
		want  *bserr.Error
	}{
		{"zero total", qcs, 0, bserr.ErrDivisionByZero},
		{"unknown quality", []*model.QualityCount{{Quality: "mythic", Count: 1}}, 1, bserr.ErrUnknownQuality},
		{"nil entry", []*model.QualityCount{nil}, 1, bserr.ErrMalformedInput},
		{"missing quality", []*model.QualityCount{{Count: 1}}, 1, bserr.ErrMalformedInput},
		{"negative count", []*model.QualityCount{{Quality: model.QualityLux, Count: -1}}, 1, bserr.ErrMalformedInput},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Efficiency(tt.qcs, tt.total)
			assert.True(t, errors.Is(err, tt.want), "got %v", err)
		})
	}
}

func TestChances(t *testing.T) {
	chances, err := Chances([]*model.QualityCount{
		{Quality: model.QualitySport, Count: 10},
		{Quality: model.QualitySpecial, Count: 2},
	}, 12)
	require.NoError(t, err)
	assert.Equal(t, []*model.QualityChance{
		{Quality: model.QualitySport, Chance: 83.33},
		{Quality: model.QualitySpecial, Chance: 16.67},
	}, chances)
}

func TestSortQualityCounts(t *testing.T) {
	sorted := SortQualityCounts([]*model.QualityCount{
		{Quality: "zeta", Count: 1},
		{Quality: model.QualityBlackMarket, Count: 1},
		{Quality: model.QualitySport, Count: 1},
		{Quality: "alpha", Count: 1},
		{Quality: model.QualityLux, Count: 1},
	})

	var order []model.Quality
	for _, qc := range sorted {
		order = append(order, qc.Quality)
	}
	assert.Equal(t, []model.Quality{model.QualitySport, model.QualityLux, model.QualityBlackMarket, "alpha", "zeta"}, order)
}
