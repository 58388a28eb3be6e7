/*
Package chat contains the real-time relay: connections, room membership,
broadcast fan-out, presence notices, and the protocol gateway that ties them
to WebSocket sessions.

This file defines the wire protocol. Every frame in either direction is a JSON
object {"event": <name>, "data": <payload>}.
*/
package chat

import (
	"encoding/json"
	"time"
)

// Event names shared by both directions of the protocol.
const (
	EventJoin    = "join"
	EventLeave   = "leave"
	EventMessage = "message"
	EventError   = "error"
)

// Envelope is the outer frame of every protocol message.
type Envelope struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data,omitempty"`
}

// JoinPayload is sent by a client to enter a room.
type JoinPayload struct {
	Room     string `json:"room"`
	Username string `json:"username"`
}

// MessagePayload is sent by a client to post into its room.
// Room and Username are informational; the connection's joined identity is authoritative.
type MessagePayload struct {
	Room     string `json:"room"`
	Username string `json:"username"`
	Message  string `json:"message"`
}

// PresencePayload is delivered to room members on join and leave.
type PresencePayload struct {
	Username  string `json:"username"`
	Timestamp int64  `json:"timestamp"`
}

// ChatPayload is delivered to room members for every chat message.
type ChatPayload struct {
	Username  string `json:"username"`
	Message   string `json:"message"`
	Timestamp int64  `json:"timestamp"`
}

// ErrorPayload is sent only to the connection that violated the protocol.
type ErrorPayload struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// Encode marshals an outbound frame.
func Encode(event string, data any) ([]byte, error) {
	raw, err := json.Marshal(data)
	if err != nil {
		return nil, err
	}
	return json.Marshal(Envelope{Event: event, Data: raw})
}

// unixMilli is the timestamp format used on the wire.
func unixMilli(t time.Time) int64 {
	return t.UnixMilli()
}
