package statsutil

import (
	"github.com/samber/lo"

	"exusiai.dev/boxstats/internal/model"
	"exusiai.dev/boxstats/internal/pkg/bserr"
)

// Subtract removes b's per-quality counts from a. Entries of a without a
// counterpart in b pass through, entries only in b are ignored. The result
// keeps a's order. A negative difference means b is not a subset of a and is
// reported as ErrNegativeDelta.
func Subtract(a, b []*model.QualityCount) ([]*model.QualityCount, error) {
	byQuality := lo.KeyBy(b, func(qc *model.QualityCount) model.Quality {
		return qc.Quality
	})

	result := make([]*model.QualityCount, 0, len(a))
	for _, qc := range a {
		match, ok := byQuality[qc.Quality]
		if !ok {
			result = append(result, &model.QualityCount{Quality: qc.Quality, Count: qc.Count})
			continue
		}

		count := qc.Count - match.Count
		if count < 0 {
			return nil, bserr.ErrNegativeDelta.
				Msg("quality %q would go negative: %d - %d", qc.Quality, qc.Count, match.Count).
				WithExtras(bserr.Extras{"quality": qc.Quality})
		}
		result = append(result, &model.QualityCount{Quality: qc.Quality, Count: count})
	}

	return result, nil
}

// PrevSeasons derives "all seasons except the latest" from the total and the
// latest season scope. TotalBoxes is the sum of the delta counts.
func PrevSeasons(total, last *model.QualityTotals) (*model.QualityTotals, error) {
	qualities, err := Subtract(total.Qualities, last.Qualities)
	if err != nil {
		return nil, err
	}

	return &model.QualityTotals{
		Type:      total.Type,
		Qualities: qualities,
		TotalBoxes: lo.SumBy(qualities, func(qc *model.QualityCount) int {
			return qc.Count
		}),
	}, nil
}
