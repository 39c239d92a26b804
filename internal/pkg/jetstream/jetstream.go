package jetstream

import (
	"strconv"

	"github.com/nats-io/nats.go"
)

// PublishID is the Nats-Msg-Id of a season event. Republishing the same
// season version inside the stream's duplicate window is dropped by the server.
func PublishID(seasonID string, version int) string {
	return seasonID + "@" + strconv.Itoa(version)
}

// MessageID identifies a delivered message by its consumer sequence, for logging.
func MessageID(pair nats.SequencePair) string {
	return "seq:" + strconv.FormatUint(pair.Consumer, 10)
}
