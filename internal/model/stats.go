package model

type QualityCount struct {
	Quality Quality `json:"quality" msgpack:"quality"`
	Count   int     `json:"count" msgpack:"count"`
}

// QualityTotals is the by-quality total of one box type within a scope.
// TotalBoxes is the sum of all counts, i.e. the number of items dropped.
type QualityTotals struct {
	Type       BoxType         `json:"type" msgpack:"type"`
	Qualities  []*QualityCount `json:"qualities" msgpack:"qualities"`
	TotalBoxes int             `json:"totalBoxes" msgpack:"totalBoxes"`
}

type QualityChance struct {
	Quality Quality `json:"quality" msgpack:"quality"`
	Chance  float64 `json:"chance" msgpack:"chance"`
}

type Efficiency struct {
	Total       float64  `json:"total" msgpack:"total"`
	LastSeason  *float64 `json:"lastSeason,omitempty" msgpack:"lastSeason"`
	PrevSeasons *float64 `json:"prevSeasons,omitempty" msgpack:"prevSeasons"`
}

// ContentStats is the per box type section of a content view.
type ContentStats struct {
	Total       *QualityTotals   `json:"total" msgpack:"total"`
	LastSeason  *QualityTotals   `json:"lastSeason,omitempty" msgpack:"lastSeason"`
	PrevSeasons *QualityTotals   `json:"prevSeasons,omitempty" msgpack:"prevSeasons"`
	Efficiency  Efficiency       `json:"efficiency" msgpack:"efficiency"`
	Chances     []*QualityChance `json:"chances" msgpack:"chances"`
}

// ContentView maps each box type present in the scope to its section.
// Absent box types have no key.
type ContentView map[BoxType]*ContentStats

type SeasonCount struct {
	Season int `json:"season" msgpack:"season"`
	Count  int `json:"count" msgpack:"count"`
}

// SeasonTotals maps each box type to its per-season counts, ascending by season.
type SeasonTotals map[BoxType][]*SeasonCount

type VariantComposition struct {
	BoxVariant BoxVariant          `json:"box_variant" msgpack:"box_variant"`
	Qualities  map[Quality]float64 `json:"qualities" msgpack:"qualities"`
}
