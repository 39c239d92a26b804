package statsutil

import (
	"github.com/ahmetb/go-linq/v3"

	"exusiai.dev/boxstats/internal/model"
	"exusiai.dev/boxstats/internal/pkg/bserr"
)

var coefficients = map[model.Quality]int{
	model.QualitySport:       1,
	model.QualitySpecial:     5,
	model.QualityLux:         25,
	model.QualityImport:      125,
	model.QualityExotic:      625,
	model.QualityBlackMarket: 3125,
}

var qualityOrder = map[model.Quality]int{
	model.QualitySport:       1,
	model.QualitySpecial:     2,
	model.QualityLux:         3,
	model.QualityImport:      4,
	model.QualityExotic:      5,
	model.QualityBlackMarket: 6,
}

var variantOrder = map[model.BoxVariant]int{
	model.BoxVariantSport:   1,
	model.BoxVariantSpecial: 2,
	model.BoxVariantLux:     3,
	model.BoxVariantImport:  4,
	model.BoxVariantGolden:  5,
}

// CoefficientOf returns the rarity weight of a quality.
func CoefficientOf(quality model.Quality) (int, error) {
	c, ok := coefficients[quality]
	if !ok {
		return 0, bserr.ErrUnknownQuality.Msg("unknown quality: %q", quality)
	}
	return c, nil
}

// QualityRank returns the display rank of a quality. Unknown qualities rank last.
func QualityRank(quality model.Quality) int {
	if r, ok := qualityOrder[quality]; ok {
		return r
	}
	return len(qualityOrder) + 1
}

// VariantRank returns the display rank of a regular box variant. Unknown variants rank last.
func VariantRank(variant model.BoxVariant) int {
	if r, ok := variantOrder[variant]; ok {
		return r
	}
	return len(variantOrder) + 1
}

// SortQualityCounts returns a new slice sorted by quality display order.
// Qualities of equal rank (only possible for unknown ones) are ordered by name.
func SortQualityCounts(qcs []*model.QualityCount) []*model.QualityCount {
	sorted := make([]*model.QualityCount, 0, len(qcs))
	linq.From(qcs).
		OrderByT(func(qc *model.QualityCount) int { return QualityRank(qc.Quality) }).
		ThenByT(func(qc *model.QualityCount) string { return string(qc.Quality) }).
		ToSlice(&sorted)
	return sorted
}
