package statsutil

import (
	"math"

	"exusiai.dev/boxstats/internal/model"
	"exusiai.dev/boxstats/internal/pkg/bserr"
)

// Chance returns the percentage share of count within total.
func Chance(count, total int) (float64, error) {
	if total == 0 {
		return 0, bserr.ErrDivisionByZero.Msg("total cannot be zero when calculating chance")
	}
	return float64(count) / float64(total) * 100, nil
}

// Efficiency is the rarity weighted sum of chances: Σ coefficient(quality) * chance(count, total).
func Efficiency(qcs []*model.QualityCount, total int) (float64, error) {
	if total == 0 {
		return 0, bserr.ErrDivisionByZero.Msg("total boxes cannot be zero when calculating efficiency")
	}

	var sum float64
	for i, qc := range qcs {
		if qc == nil || qc.Quality == "" || qc.Count < 0 {
			return 0, bserr.ErrMalformedInput.Msg("invalid quality count at index %d", i)
		}
		coefficient, err := CoefficientOf(qc.Quality)
		if err != nil {
			return 0, err
		}
		chance, err := Chance(qc.Count, total)
		if err != nil {
			return 0, err
		}
		sum += float64(coefficient) * chance
	}
	return sum, nil
}

// Chances computes the rounded chance of every quality in qcs, preserving order.
func Chances(qcs []*model.QualityCount, total int) ([]*model.QualityChance, error) {
	chances := make([]*model.QualityChance, 0, len(qcs))
	for _, qc := range qcs {
		chance, err := Chance(qc.Count, total)
		if err != nil {
			return nil, err
		}
		chances = append(chances, &model.QualityChance{
			Quality: qc.Quality,
			Chance:  Round2(chance),
		})
	}
	return chances, nil
}

// Round2 rounds v half away from zero to two decimal places.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}
