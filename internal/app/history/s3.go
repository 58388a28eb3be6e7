package history

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"sync"

	"github.com/google/uuid"

	"eventchat/internal/app/storage"
)

// ObjectStore archives each message as its own JSON object.
// Keys are <prefix>/<escaped room>/<seq>-<uuid>.json. seq is a zero-padded per-room
// sequence taken at append time: the message's unix-nano timestamp, bumped past the
// previous key of the room when needed. Lexical key order is therefore append order.
type ObjectStore struct {
	objects storage.ObjectStore
	prefix  string

	mu   sync.Mutex
	last map[string]int64
}

// NewObjectStore archives messages into objects under prefix.
func NewObjectStore(objects storage.ObjectStore, prefix string) *ObjectStore {
	return &ObjectStore{
		objects: objects,
		prefix:  prefix,
		last:    make(map[string]int64),
	}
}

// ObjectKey returns the key for sequence seq of roomID.
func (s *ObjectStore) ObjectKey(roomID string, seq int64, id string) string {
	name := fmt.Sprintf("%020d-%s.json", seq, id)
	return fmt.Sprintf("%s/%s/%s", s.prefix, url.PathEscape(roomID), name)
}

func (s *ObjectStore) nextSeq(msg Message) int64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	seq := msg.CreatedAt.UnixNano()
	if last, ok := s.last[msg.RoomID]; ok && seq <= last {
		seq = last + 1
	}
	s.last[msg.RoomID] = seq
	return seq
}

// Append implements Store.
func (s *ObjectStore) Append(ctx context.Context, msg Message) error {
	body, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("marshal chat message: %w", err)
	}

	key := s.ObjectKey(msg.RoomID, s.nextSeq(msg), uuid.NewString())
	return s.objects.Put(ctx, key, "application/json", body)
}

// Close implements Store.
func (s *ObjectStore) Close() error {
	return nil
}
