package model

// Rows produced by the store's unwind+group stage. They are reshaped
// in memory by statsutil.

type QualityTotalRow struct {
	BoxType BoxType `bun:"box_type"`
	Quality Quality `bun:"quality"`
	Count   int     `bun:"count"`
}

type SeasonTotalRow struct {
	BoxType      BoxType `bun:"box_type"`
	SeasonNumber int     `bun:"season_number"`
	Count        int     `bun:"count"`
}

type VariantTotalRow struct {
	BoxVariant BoxVariant `bun:"box_variant"`
	Quality    Quality    `bun:"quality"`
	Count      int        `bun:"count"`
}
