package chat

import (
	"errors"

	"github.com/rs/zerolog"

	"eventchat/internal/pkg/logx"
)

// Broadcaster fans a payload out to the members of a room.
type Broadcaster struct {
	dir    *Directory
	logger zerolog.Logger
}

// NewBroadcaster returns a Broadcaster over dir.
func NewBroadcaster(dir *Directory) *Broadcaster {
	return &Broadcaster{
		dir:    dir,
		logger: logx.Component("Broadcaster"),
	}
}

// Broadcast queues payload for every member of roomID except exclude, which may be nil.
// It works on the membership snapshot taken at call time and returns how many members
// the payload was queued for. A failing member never stops delivery to the others and is
// not retried. A member whose queue is full is closed so its session tears down.
func (b *Broadcaster) Broadcast(roomID string, payload []byte, exclude *Conn) int {
	delivered := 0

	for _, member := range b.dir.Members(roomID) {
		if member == exclude {
			continue
		}

		err := member.Send(payload)
		switch {
		case err == nil:
			delivered++

		case errors.Is(err, ErrSendQueueFull):
			b.logger.Warn().
				Str("room", roomID).
				Str("conn_id", member.ID).
				Msg("Member send queue full, closing slow connection.")
			member.Close()

		default:
			b.logger.Debug().
				Err(err).
				Str("room", roomID).
				Str("conn_id", member.ID).
				Msg("Skipping member during broadcast.")
		}
	}

	return delivered
}
