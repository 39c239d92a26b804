package model

import (
	"time"

	"github.com/uptrace/bun"
)

type Season struct {
	bun.BaseModel `bun:"seasons,alias:s"`

	SeasonID     string     `bun:",pk" json:"id"`
	AccountID    int        `bun:",notnull" json:"-"`
	SeasonNumber int        `bun:",notnull" json:"season_number"`
	Boxes        []*Box     `bun:"boxes,type:jsonb,notnull" json:"boxes"`
	Version      int        `bun:",notnull,default:1" json:"-"`
	CreatedAt    *time.Time `bun:",nullzero,notnull,default:current_timestamp" json:"createdAt"`
	UpdatedAt    *time.Time `bun:",nullzero,notnull,default:current_timestamp" json:"updatedAt"`
}
