package chat

import (
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
)

const (
	// timeout duration for writing to the WebSocket connection.
	writeWait = 10 * time.Second

	// maximum time allowed for the server to wait for a Pong message from the client.
	pongWait = 60 * time.Second

	// frequency at which the server sends a Ping message.
	pingPeriod = (pongWait * 9) / 10

	// maximum allowed size (in bytes) of a frame sent by the client. A body of
	// MaxContentBytes may grow sixfold when every byte is \u-escaped; the rest covers
	// the envelope, room, and username.
	maxMessageSize = 6*MaxContentBytes + 4096
)

// session binds one WebSocket to one Conn for its lifetime.
type session struct {
	gateway *Gateway
	conn    *Conn
	ws      *websocket.Conn
	logger  zerolog.Logger
}

// Serve runs the protocol over ws until the client goes away or the connection is closed
// by the server. It blocks; cleanup is complete when it returns.
// Once Shutdown has started, new sockets are closed with CloseGoingAway.
func (g *Gateway) Serve(ws *websocket.Conn) {
	c := g.beginSession()
	if c == nil {
		refuse(ws)
		return
	}
	defer g.sessions.Done()

	s := &session{
		gateway: g,
		conn:    c,
		ws:      ws,
		logger: g.logger.With().
			Str("conn_id", c.ID).
			Str("remote_addr", ws.RemoteAddr().String()).
			Logger(),
	}

	writerDone := make(chan struct{})
	go func() {
		defer close(writerDone)
		s.writePump()
	}()

	s.readPump()

	// closes the outbound queue, which stops the writer
	g.Disconnect(c)
	<-writerDone
}

func refuse(ws *websocket.Conn) {
	msg := websocket.FormatCloseMessage(websocket.CloseGoingAway, "server shutting down")
	_ = ws.WriteControl(websocket.CloseMessage, msg, time.Now().Add(writeWait))
	_ = ws.Close()
}

// readPump reads frames until the socket fails, handling heartbeats along the way.
func (s *session) readPump() {
	s.ws.SetReadLimit(maxMessageSize)

	if err := s.ws.SetReadDeadline(time.Now().Add(pongWait)); err != nil {
		s.logger.Error().Err(err).Msg("Failed to set read deadline")
		return
	}

	s.ws.SetPongHandler(func(string) error {
		return s.ws.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, frame, err := s.ws.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				s.logger.Info().Err(err).Msg("Error reading message (Client close/going away)")
			}
			return
		}

		s.gateway.HandleFrame(s.conn, frame)
	}
}

// writePump drains the outbound queue to the socket and sends periodic pings.
// It closes the socket on exit so a blocked readPump returns too.
func (s *session) writePump() {
	ticker := time.NewTicker(pingPeriod)

	defer func() {
		ticker.Stop()

		if err := s.ws.Close(); err != nil {
			s.logger.Debug().Err(err).Msg("Client connection close error in writePump")
		}
	}()

	outbound := s.conn.Outbound()
	for {
		select {
		case frame, ok := <-outbound:
			if !s.writeQueued(frame, ok) {
				return
			}

		case <-ticker.C:
			if !s.writePing() {
				return
			}
		}
	}
}

// writeQueued writes one queued frame, or a close frame once the queue is closed.
// Returns false when the pump should stop.
func (s *session) writeQueued(frame []byte, ok bool) bool {
	if err := s.ws.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
		s.logger.Error().Err(err).Msg("Failed to set write deadline")
		return false
	}

	if !ok {
		if err := s.ws.WriteMessage(websocket.CloseMessage, []byte{}); err != nil {
			s.logger.Debug().Err(err).Msg("Error writing close message")
		}
		return false
	}

	if err := s.ws.WriteMessage(websocket.TextMessage, frame); err != nil {
		s.logger.Warn().Err(err).Msg("Error writing message")
		return false
	}

	return true
}

func (s *session) writePing() bool {
	if err := s.ws.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
		s.logger.Error().Err(err).Msg("Failed to set write deadline on ping")
		return false
	}

	if err := s.ws.WriteMessage(websocket.PingMessage, nil); err != nil {
		s.logger.Warn().Err(err).Msg("Error writing ping")
		return false
	}

	return true
}
