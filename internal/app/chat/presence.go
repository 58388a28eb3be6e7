package chat

import (
	"time"

	"github.com/rs/zerolog"

	"eventchat/internal/pkg/logx"
)

// PresenceKind distinguishes join and leave notices.
type PresenceKind string

const (
	PresenceJoin  PresenceKind = EventJoin
	PresenceLeave PresenceKind = EventLeave
)

// PresenceEvent describes a membership change. It only ever exists as a broadcast payload.
type PresenceEvent struct {
	Kind      PresenceKind
	Username  string
	RoomID    string
	Timestamp time.Time
}

// Presence turns membership changes into notices for the rest of the room.
// Callers must apply the Directory change before notifying.
type Presence struct {
	broadcaster *Broadcaster
	now         func() time.Time
	logger      zerolog.Logger
}

// NewPresence returns a Presence notifier that delivers through b.
func NewPresence(b *Broadcaster) *Presence {
	return &Presence{
		broadcaster: b,
		now:         time.Now,
		logger:      logx.Component("Presence"),
	}
}

// Joined tells the other members of roomID that username arrived on c.
func (p *Presence) Joined(roomID string, c *Conn, username string) int {
	return p.notify(PresenceEvent{Kind: PresenceJoin, Username: username, RoomID: roomID, Timestamp: p.now()}, c)
}

// Left tells the remaining members of roomID that username is gone.
func (p *Presence) Left(roomID, username string) int {
	return p.notify(PresenceEvent{Kind: PresenceLeave, Username: username, RoomID: roomID, Timestamp: p.now()}, nil)
}

func (p *Presence) notify(ev PresenceEvent, exclude *Conn) int {
	payload, err := Encode(string(ev.Kind), PresencePayload{
		Username:  ev.Username,
		Timestamp: unixMilli(ev.Timestamp),
	})
	if err != nil {
		p.logger.Error().Err(err).Str("room", ev.RoomID).Msg("Failed to encode presence event.")
		return 0
	}

	delivered := p.broadcaster.Broadcast(ev.RoomID, payload, exclude)

	p.logger.Info().
		Str("room", ev.RoomID).
		Str("kind", string(ev.Kind)).
		Str("username", ev.Username).
		Int("recipients", delivered).
		Msg("Presence broadcast.")
	return delivered
}
