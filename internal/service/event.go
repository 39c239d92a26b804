package service

import (
	"context"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog/log"
	"github.com/vmihailenco/msgpack/v5"

	"exusiai.dev/boxstats/internal/constant"
	"exusiai.dev/boxstats/internal/model"
	"exusiai.dev/boxstats/internal/model/types"
	"exusiai.dev/boxstats/internal/pkg/jetstream"
)

type Event struct {
	JetStream nats.JetStreamContext
}

func NewEvent(js nats.JetStreamContext) *Event {
	return &Event{
		JetStream: js,
	}
}

// PublishSeasonChanged announces a season write. Publishing is best effort:
// a failure is logged and the write it describes still stands.
func (s *Event) PublishSeasonChanged(ctx context.Context, season *model.Season, deleted bool) {
	event := &types.SeasonEvent{
		AccountID:    season.AccountID,
		SeasonID:     season.SeasonID,
		SeasonNumber: season.SeasonNumber,
		Version:      season.Version,
		Deleted:      deleted,
		PublishedAt:  time.Now(),
	}

	subject := constant.SeasonUpdatedSubject
	if deleted {
		subject = constant.SeasonDeletedSubject
	}

	b, err := msgpack.Marshal(event)
	if err != nil {
		log.Error().Err(err).Str("evt.name", "event.season.marshal").Msg("failed to marshal season event")
		return
	}

	msgID := jetstream.PublishID(season.SeasonID, season.Version)
	if deleted {
		msgID += ":deleted"
	}
	if _, err := s.JetStream.Publish(subject, b, nats.MsgId(msgID), nats.Context(ctx)); err != nil {
		log.Error().
			Err(err).
			Str("evt.name", "event.season.publish").
			Str("subject", subject).
			Str("seasonId", season.SeasonID).
			Msg("failed to publish season event")
	}
}
