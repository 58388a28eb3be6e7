package history

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

const insertMessageSQL = `INSERT INTO chat_messages (room_id, username, message, created_at) VALUES ($1, $2, $3, $4)`

// PostgresStore appends messages to the chat_messages table.
// The BIGSERIAL id gives insertion order within a room.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore wraps an open pool whose schema is already migrated.
func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

// Append implements Store.
func (s *PostgresStore) Append(ctx context.Context, msg Message) error {
	if _, err := s.pool.Exec(ctx, insertMessageSQL, msg.RoomID, msg.Username, msg.Body, msg.CreatedAt); err != nil {
		return fmt.Errorf("insert chat message: %w", err)
	}
	return nil
}

// Close implements Store.
func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}
