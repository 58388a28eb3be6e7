package history

import (
	"context"
	"sync"
)

// MemoryStore keeps messages in process memory, one append-only slice per room.
// It backs the development setup and tests; nothing survives a restart.
type MemoryStore struct {
	mu    sync.RWMutex
	rooms map[string][]Message
}

// NewMemoryStore returns an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{rooms: make(map[string][]Message)}
}

// Append implements Store.
func (s *MemoryStore) Append(ctx context.Context, msg Message) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.rooms[msg.RoomID] = append(s.rooms[msg.RoomID], msg)
	return nil
}

// Messages returns a copy of the messages recorded for roomID in arrival order.
func (s *MemoryStore) Messages(roomID string) []Message {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Message, len(s.rooms[roomID]))
	copy(out, s.rooms[roomID])
	return out
}

// Close implements Store.
func (s *MemoryStore) Close() error {
	return nil
}
