/*
Package history records chat messages to a durable, append-only log.

Recording is decoupled from live delivery: the Writer queues messages and
appends them to a Store from background workers, logging and dropping any
message that cannot be persisted.
*/
package history

import (
	"context"
	"time"
)

// Message is one persisted chat message. It is immutable once created.
type Message struct {
	RoomID    string    `json:"room_id"`
	Username  string    `json:"username"`
	Body      string    `json:"message"`
	CreatedAt time.Time `json:"created_at"`
}

// Store is an append-only sink for chat messages.
// Implementations must preserve call order for appends to the same room.
type Store interface {
	// Append durably records msg.
	Append(ctx context.Context, msg Message) error

	// Close releases the resources held by the store.
	Close() error
}
