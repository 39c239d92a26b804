package model

type BoxType string

const (
	BoxTypeRegular    BoxType = "regular"
	BoxTypeTournament BoxType = "tournament"
)

// BoxTypes lists box types in the order they are rendered.
var BoxTypes = []BoxType{BoxTypeRegular, BoxTypeTournament}

type BoxVariant string

const (
	BoxVariantSport   BoxVariant = "sport"
	BoxVariantSpecial BoxVariant = "special"
	BoxVariantLux     BoxVariant = "lux"
	BoxVariantImport  BoxVariant = "import"
	BoxVariantGolden  BoxVariant = "golden"
)

type Quality string

const (
	QualitySport       Quality = "sport"
	QualitySpecial     Quality = "special"
	QualityLux         Quality = "lux"
	QualityImport      Quality = "import"
	QualityExotic      Quality = "exotic"
	QualityBlackMarket Quality = "black_market"
)

// Item is a single (quality, quantity) record inside a box group.
type Item struct {
	Quality  Quality `json:"quality" msgpack:"quality" validate:"required,oneof=sport special lux import exotic black_market"`
	Quantity int     `json:"quantity" msgpack:"quantity" validate:"gte=0"`
}

// Box is a group of opened containers of one type (and, for regular boxes, one variant).
type Box struct {
	Type       BoxType    `json:"type" msgpack:"type" validate:"required,oneof=regular tournament"`
	BoxVariant BoxVariant `json:"box_variant,omitempty" msgpack:"box_variant" validate:"omitempty,oneof=sport special lux import golden"`
	Items      []*Item    `json:"items" msgpack:"items" validate:"dive,required"`
}

// GroupKey identifies the (type, variant) group the box belongs to.
// Tournament boxes never carry a variant, so they share a single group.
func (b *Box) GroupKey() string {
	if b.Type == BoxTypeTournament {
		return string(b.Type)
	}
	return string(b.Type) + ":" + string(b.BoxVariant)
}
