package chat

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"eventchat/internal/app/history"
	"eventchat/internal/pkg/errs"
	"eventchat/internal/pkg/logx"
)

const (
	// MaxContentBytes is the maximum size of a chat message body.
	MaxContentBytes = 5000

	// MaxUsernameBytes is the maximum size of a username.
	MaxUsernameBytes = 64
)

// Recorder persists chat messages off the delivery path.
type Recorder interface {
	Record(msg history.Message) error
}

// Gateway runs the per-connection protocol state machine and wires inbound events to the
// directory, broadcaster, presence notifier, and history recorder.
type Gateway struct {
	registry    *Registry
	dir         *Directory
	broadcaster *Broadcaster
	presence    *Presence
	recorder    Recorder

	// sessions tracks running WebSocket sessions for Shutdown.
	// shuttingDown is set under sessionMu; no session starts after it.
	sessionMu    sync.Mutex
	sessions     sync.WaitGroup
	shuttingDown bool

	now    func() time.Time
	logger zerolog.Logger
}

// NewGateway wires a Gateway over an owned registry and directory.
func NewGateway(registry *Registry, dir *Directory, recorder Recorder) *Gateway {
	broadcaster := NewBroadcaster(dir)

	return &Gateway{
		registry:    registry,
		dir:         dir,
		broadcaster: broadcaster,
		presence:    NewPresence(broadcaster),
		recorder:    recorder,
		now:         time.Now,
		logger:      logx.Component("Gateway"),
	}
}

// Registry returns the connection registry.
func (g *Gateway) Registry() *Registry {
	return g.registry
}

// Directory returns the room directory.
func (g *Gateway) Directory() *Directory {
	return g.dir
}

// Connect accepts a new unjoined connection.
func (g *Gateway) Connect() *Conn {
	c := g.registry.Accept()
	g.logger.Info().Str("conn_id", c.ID).Msg("Client connected.")
	return c
}

// HandleFrame decodes one inbound frame from c and dispatches it.
// Protocol violations are answered with an error event to c alone; the connection stays open.
func (g *Gateway) HandleFrame(c *Conn, raw []byte) {
	var env Envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		g.logger.Warn().Err(err).Str("conn_id", c.ID).Msg("Client sent invalid JSON.")
		g.reject(c, errs.NewError(errs.ErrInvalidJSONFormat))
		return
	}

	var customErr *errs.CustomError

	switch env.Event {
	case EventJoin:
		var payload JoinPayload
		if err := json.Unmarshal(env.Data, &payload); err != nil {
			customErr = errs.NewError(errs.ErrInvalidJSONFormat)
			break
		}
		customErr = g.Join(c, payload)

	case EventMessage:
		var payload MessagePayload
		if err := json.Unmarshal(env.Data, &payload); err != nil {
			customErr = errs.NewError(errs.ErrInvalidJSONFormat)
			break
		}
		customErr = g.Message(c, payload)

	default:
		g.logger.Warn().Str("conn_id", c.ID).Str("event", env.Event).Msg("Client sent unsupported event.")
		customErr = errs.NewError(errs.ErrUnsupportedEvent, env.Event)
	}

	if customErr != nil {
		g.reject(c, customErr)
	}
}

// Join moves c from Unjoined to Joined in payload.Room and announces it to the room.
func (g *Gateway) Join(c *Conn, payload JoinPayload) *errs.CustomError {
	room := payload.Room
	username := strings.TrimSpace(payload.Username)

	if room == "" || username == "" || len(username) > MaxUsernameBytes {
		return errs.NewError(errs.ErrInvalidParams)
	}

	if err := c.AssignIdentity(room, username); err != nil {
		if errors.Is(err, ErrAlreadyJoined) {
			current, _, _ := c.Identity()
			g.logger.Warn().
				Str("conn_id", c.ID).
				Str("room", current).
				Str("requested_room", room).
				Msg("Rejected duplicate join.")
			return errs.NewError(errs.ErrAlreadyJoined)
		}
		g.logger.Debug().Err(err).Str("conn_id", c.ID).Msg("Join on unusable connection ignored.")
		return nil
	}

	g.dir.Join(room, c)
	g.presence.Joined(room, c, username)

	g.logger.Info().
		Str("conn_id", c.ID).
		Str("room", room).
		Str("username", username).
		Msg("Client joined room.")
	return nil
}

// Message fans a chat message out to the other members of c's room and records it.
// Delivery and recording are independent: both are attempted whatever the other's outcome.
func (g *Gateway) Message(c *Conn, payload MessagePayload) *errs.CustomError {
	room, username, joined := c.Identity()
	if !joined {
		g.logger.Warn().Str("conn_id", c.ID).Msg("Message before join rejected.")
		return errs.NewError(errs.ErrNotJoined)
	}

	if payload.Room != "" && payload.Room != room {
		g.logger.Warn().
			Str("conn_id", c.ID).
			Str("room", room).
			Str("requested_room", payload.Room).
			Msg("Message for another room rejected.")
		return errs.NewError(errs.ErrRoomMismatch)
	}

	if payload.Message == "" {
		return errs.NewError(errs.ErrInvalidParams)
	}

	if len(payload.Message) > MaxContentBytes {
		return errs.NewError(errs.ErrMessageContentTooLong, MaxContentBytes)
	}

	msg := history.Message{
		RoomID:    room,
		Username:  username,
		Body:      payload.Message,
		CreatedAt: g.now().UTC(),
	}

	delivered := 0
	frame, err := Encode(EventMessage, ChatPayload{
		Username:  msg.Username,
		Message:   msg.Body,
		Timestamp: unixMilli(msg.CreatedAt),
	})
	if err != nil {
		g.logger.Error().Err(err).Str("conn_id", c.ID).Msg("Failed to encode chat message.")
	} else {
		delivered = g.broadcaster.Broadcast(room, frame, c)
	}

	// the writer logs its own failures; delivery has already happened
	_ = g.recorder.Record(msg)

	g.logger.Debug().
		Str("conn_id", c.ID).
		Str("room", room).
		Int("recipients", delivered).
		Msg("Chat message relayed.")
	return nil
}

// Disconnect runs transport-close cleanup for c: release, leave the joined room, and
// announce the departure. It is safe to call more than once; only the call that removes
// the member announces it.
func (g *Gateway) Disconnect(c *Conn) {
	g.registry.Release(c)

	room, username, joined := c.Identity()
	if joined && g.dir.Leave(room, c) {
		g.presence.Left(room, username)
	}

	g.logger.Info().
		Str("conn_id", c.ID).
		Str("room", room).
		Bool("was_joined", joined).
		Msg("Client disconnected.")
}

// Shutdown closes every live connection and waits for their sessions to finish or ctx to end.
func (g *Gateway) Shutdown(ctx context.Context) error {
	g.sessionMu.Lock()
	g.shuttingDown = true
	g.sessionMu.Unlock()

	closed := g.registry.CloseAll()
	g.logger.Info().Int("connections", closed).Msg("Closing all client connections.")

	done := make(chan struct{})
	go func() {
		g.sessions.Wait()
		close(done)
	}()

	select {
	case <-done:
		g.logger.Info().Msg("Gateway shutdown complete.")
		return nil
	case <-ctx.Done():
		g.logger.Warn().Msg("Gateway shutdown timed out with sessions still running.")
		return ctx.Err()
	}
}

// beginSession registers a session and accepts its connection.
// It returns nil once Shutdown has started.
func (g *Gateway) beginSession() *Conn {
	g.sessionMu.Lock()
	defer g.sessionMu.Unlock()

	if g.shuttingDown {
		return nil
	}

	g.sessions.Add(1)
	return g.Connect()
}

// reject sends an error event to c only.
func (g *Gateway) reject(c *Conn, customErr *errs.CustomError) {
	frame, err := Encode(EventError, ErrorPayload{Code: customErr.Code, Message: customErr.Message})
	if err != nil {
		g.logger.Error().Err(err).Msg("Failed to encode error event.")
		return
	}

	if err := c.Send(frame); err != nil {
		g.logger.Debug().Err(err).Str("conn_id", c.ID).Msg("Failed to queue error event.")
	}
}
