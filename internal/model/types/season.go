package types

import (
	"time"

	"exusiai.dev/boxstats/internal/model"
)

type CreateSeasonRequest struct {
	SeasonNumber int          `json:"season_number" validate:"required,gte=1"`
	Boxes        []*model.Box `json:"boxes" validate:"required,min=1,dive,required"`
}

// ReplaceSeasonRequest replaces a season's boxes. An empty, but present,
// boxes list deletes the season.
type ReplaceSeasonRequest struct {
	Boxes []*model.Box `json:"boxes" validate:"required,dive,required"`
}

type SeasonBoxes struct {
	SeasonID string       `json:"id"`
	Boxes    []*model.Box `json:"boxes"`
}

type SeasonWriteResult struct {
	Season  *model.Season `json:"season,omitempty"`
	Created bool          `json:"created"`
	Deleted bool          `json:"deleted"`
}

// SeasonListItem is a season as listed to its owner.
type SeasonListItem struct {
	SeasonID     string       `json:"id"`
	SeasonNumber int          `json:"season_number"`
	Boxes        []*model.Box `json:"boxes"`
}

type SeasonList struct {
	Seasons []*SeasonListItem `json:"seasons"`
}

// SeasonEvent is published on JetStream after every successful season write.
type SeasonEvent struct {
	AccountID    int       `msgpack:"a"`
	SeasonID     string    `msgpack:"s"`
	SeasonNumber int       `msgpack:"n"`
	Version      int       `msgpack:"v"`
	Deleted      bool      `msgpack:"d"`
	PublishedAt  time.Time `msgpack:"t"`
}
