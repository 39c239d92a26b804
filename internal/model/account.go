package model

import (
	"time"

	"github.com/uptrace/bun"
)

type Account struct {
	bun.BaseModel `bun:"accounts,alias:a"`

	AccountID int       `bun:",pk,autoincrement" json:"id" msgpack:"id"`
	OwnerKey  string    `bun:",unique,notnull" json:"ownerKey" msgpack:"ownerKey"`
	CreatedAt time.Time `bun:",nullzero,notnull,default:current_timestamp" json:"createdAt" msgpack:"createdAt"`
}
