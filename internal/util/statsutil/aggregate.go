package statsutil

import (
	"github.com/ahmetb/go-linq/v3"
	"github.com/samber/lo"

	"exusiai.dev/boxstats/internal/model"
)

// QualityTotalsByType groups store rows by box type and then by quality,
// summing counts, and sorts every quality list by display order.
// Box types without rows are absent from the result.
func QualityTotalsByType(rows []*model.QualityTotalRow) map[model.BoxType]*model.QualityTotals {
	var groups []linq.Group
	linq.From(rows).
		GroupByT(
			func(row *model.QualityTotalRow) model.BoxType { return row.BoxType },
			func(row *model.QualityTotalRow) *model.QualityTotalRow { return row },
		).
		ToSlice(&groups)

	result := make(map[model.BoxType]*model.QualityTotals, len(groups))
	for _, el := range groups {
		boxType := el.Key.(model.BoxType)

		var counts []*model.QualityCount
		linq.From(el.Group).
			GroupByT(
				func(row any) model.Quality { return row.(*model.QualityTotalRow).Quality },
				func(row any) int { return row.(*model.QualityTotalRow).Count },
			).
			SelectT(func(g linq.Group) *model.QualityCount {
				return &model.QualityCount{
					Quality: g.Key.(model.Quality),
					Count:   int(linq.From(g.Group).SumInts()),
				}
			}).
			ToSlice(&counts)

		counts = SortQualityCounts(counts)
		result[boxType] = &model.QualityTotals{
			Type:      boxType,
			Qualities: counts,
			TotalBoxes: lo.SumBy(counts, func(qc *model.QualityCount) int {
				return qc.Count
			}),
		}
	}

	return result
}

// SeasonTotalsByType groups store rows by box type and season number and
// orders each sequence by season ascending.
func SeasonTotalsByType(rows []*model.SeasonTotalRow) model.SeasonTotals {
	var groups []linq.Group
	linq.From(rows).
		GroupByT(
			func(row *model.SeasonTotalRow) model.BoxType { return row.BoxType },
			func(row *model.SeasonTotalRow) *model.SeasonTotalRow { return row },
		).
		ToSlice(&groups)

	result := make(model.SeasonTotals, len(groups))
	for _, el := range groups {
		var seasons []*model.SeasonCount
		linq.From(el.Group).
			GroupByT(
				func(row any) int { return row.(*model.SeasonTotalRow).SeasonNumber },
				func(row any) int { return row.(*model.SeasonTotalRow).Count },
			).
			SelectT(func(g linq.Group) *model.SeasonCount {
				return &model.SeasonCount{
					Season: g.Key.(int),
					Count:  int(linq.From(g.Group).SumInts()),
				}
			}).
			OrderByT(func(sc *model.SeasonCount) int { return sc.Season }).
			ToSlice(&seasons)

		result[el.Key.(model.BoxType)] = seasons
	}

	return result
}

// VariantCompositions computes, for every regular box variant, the share of
// each quality within that variant as a percentage rounded to 2 decimals.
// Records are ordered by variant display order.
func VariantCompositions(rows []*model.VariantTotalRow) ([]*model.VariantComposition, error) {
	var groups []linq.Group
	linq.From(rows).
		GroupByT(
			func(row *model.VariantTotalRow) model.BoxVariant { return row.BoxVariant },
			func(row *model.VariantTotalRow) *model.VariantTotalRow { return row },
		).
		OrderByT(func(g linq.Group) int { return VariantRank(g.Key.(model.BoxVariant)) }).
		ThenByT(func(g linq.Group) string { return string(g.Key.(model.BoxVariant)) }).
		ToSlice(&groups)

	result := make([]*model.VariantComposition, 0, len(groups))
	for _, el := range groups {
		counts := make(map[model.Quality]int)
		total := 0
		for _, row := range el.Group {
			r := row.(*model.VariantTotalRow)
			counts[r.Quality] += r.Count
			total += r.Count
		}

		qualities := make(map[model.Quality]float64, len(counts))
		for quality, count := range counts {
			chance, err := Chance(count, total)
			if err != nil {
				return nil, err
			}
			qualities[quality] = Round2(chance)
		}

		result = append(result, &model.VariantComposition{
			BoxVariant: el.Key.(model.BoxVariant),
			Qualities:  qualities,
		})
	}

	return result, nil
}
