package statsutil

import (
	"github.com/samber/lo"

	"exusiai.dev/boxstats/internal/model"
)

// BuildContentView assembles the content view for every box type present in
// total. last is the latest season scope and is nil when only one season is
// in play, in which case no lastSeason/prevSeasons comparisons are made.
func BuildContentView(total, last map[model.BoxType]*model.QualityTotals) (model.ContentView, error) {
	view := make(model.ContentView, len(total))
	for boxType, totals := range total {
		stats, err := buildContentStats(totals, last[boxType])
		if err != nil {
			return nil, err
		}
		view[boxType] = stats
	}
	return view, nil
}

func buildContentStats(totals, last *model.QualityTotals) (*model.ContentStats, error) {
	efficiency, err := Efficiency(totals.Qualities, totals.TotalBoxes)
	if err != nil {
		return nil, err
	}
	chances, err := Chances(totals.Qualities, totals.TotalBoxes)
	if err != nil {
		return nil, err
	}

	stats := &model.ContentStats{
		Total: totals,
		Efficiency: model.Efficiency{
			Total: Round2(efficiency),
		},
		Chances: chances,
	}
	if last == nil {
		return stats, nil
	}

	prev, err := PrevSeasons(totals, last)
	if err != nil {
		return nil, err
	}
	stats.LastSeason = last
	stats.PrevSeasons = prev

	// a scope without items has no efficiency; its counts are still shown
	if stats.Efficiency.LastSeason, err = scopeEfficiency(last); err != nil {
		return nil, err
	}
	if stats.Efficiency.PrevSeasons, err = scopeEfficiency(prev); err != nil {
		return nil, err
	}

	return stats, nil
}

// scopeEfficiency returns the rounded efficiency of a comparison scope, or
// nil when the scope holds no items.
func scopeEfficiency(totals *model.QualityTotals) (*float64, error) {
	if totals.TotalBoxes == 0 {
		return nil, nil
	}
	efficiency, err := Efficiency(totals.Qualities, totals.TotalBoxes)
	if err != nil {
		return nil, err
	}
	return lo.ToPtr(Round2(efficiency)), nil
}
