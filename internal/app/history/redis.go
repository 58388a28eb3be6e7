package history

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// redisStreamPrefix namespaces the per-room history streams.
const redisStreamPrefix = "chat:history:"

// RedisStore appends each message to a per-room Redis stream with XADD.
// Stream entry ids are monotonic, so stream order is arrival order.
type RedisStore struct {
	client redis.UniversalClient
}

// NewRedisStore connects to addr and verifies the connection with PING.
func NewRedisStore(ctx context.Context, addr, password string, db int) (*RedisStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("ping redis %s: %w", addr, err)
	}

	return &RedisStore{client: client}, nil
}

// StreamKey returns the stream holding the history of roomID.
func StreamKey(roomID string) string {
	return redisStreamPrefix + roomID
}

// Append implements Store.
func (s *RedisStore) Append(ctx context.Context, msg Message) error {
	err := s.client.XAdd(ctx, &redis.XAddArgs{
		Stream: StreamKey(msg.RoomID),
		Values: map[string]any{
			"room_id":    msg.RoomID,
			"username":   msg.Username,
			"message":    msg.Body,
			"created_at": msg.CreatedAt.UTC().Format(time.RFC3339Nano),
		},
	}).Err()
	if err != nil {
		return fmt.Errorf("xadd chat message: %w", err)
	}
	return nil
}

// Close implements Store.
func (s *RedisStore) Close() error {
	return s.client.Close()
}
