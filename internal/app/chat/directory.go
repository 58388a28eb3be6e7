package chat

import (
	"sort"
	"sync"

	"github.com/rs/zerolog"

	"eventchat/internal/pkg/logx"
)

// RoomStat is a point-in-time view of one room.
type RoomStat struct {
	Room    string `json:"room"`
	Members int    `json:"members"`
}

// Directory maps room ids to their member connections.
// A room exists while it has at least one member: it is created by the first Join
// and dropped by the Leave that empties it.
type Directory struct {
	mu     sync.RWMutex
	rooms  map[string]map[*Conn]struct{}
	logger zerolog.Logger
}

// NewDirectory returns an empty Directory.
func NewDirectory() *Directory {
	return &Directory{
		rooms:  make(map[string]map[*Conn]struct{}),
		logger: logx.Component("Directory"),
	}
}

// Join adds c to roomID, creating the room if needed.
// It reports whether c was newly added; joining twice leaves a single entry.
func (d *Directory) Join(roomID string, c *Conn) bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	members, ok := d.rooms[roomID]
	if !ok {
		members = make(map[*Conn]struct{})
		d.rooms[roomID] = members
		d.logger.Info().Str("room", roomID).Msg("Room created.")
	}

	if _, exists := members[c]; exists {
		return false
	}
	members[c] = struct{}{}

	d.logger.Debug().
		Str("room", roomID).
		Str("conn_id", c.ID).
		Int("members", len(members)).
		Msg("Member joined room.")
	return true
}

// Leave removes c from roomID and reports whether it was a member.
// Unknown rooms and non-members are a no-op.
func (d *Directory) Leave(roomID string, c *Conn) bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	members, ok := d.rooms[roomID]
	if !ok {
		return false
	}

	if _, exists := members[c]; !exists {
		return false
	}
	delete(members, c)

	d.logger.Debug().
		Str("room", roomID).
		Str("conn_id", c.ID).
		Int("members", len(members)).
		Msg("Member left room.")

	if len(members) == 0 {
		delete(d.rooms, roomID)
		d.logger.Info().Str("room", roomID).Msg("Room is empty, removed.")
	}
	return true
}

// Members returns a snapshot of the connections currently in roomID.
func (d *Directory) Members(roomID string) []*Conn {
	d.mu.RLock()
	defer d.mu.RUnlock()

	members := d.rooms[roomID]
	out := make([]*Conn, 0, len(members))
	for c := range members {
		out = append(out, c)
	}
	return out
}

// Len returns the number of non-empty rooms.
func (d *Directory) Len() int {
	d.mu.RLock()
	defer d.mu.RUnlock()

	return len(d.rooms)
}

// Rooms returns member counts for every room, sorted by room id.
func (d *Directory) Rooms() []RoomStat {
	d.mu.RLock()
	stats := make([]RoomStat, 0, len(d.rooms))
	for id, members := range d.rooms {
		stats = append(stats, RoomStat{Room: id, Members: len(members)})
	}
	d.mu.RUnlock()

	sort.Slice(stats, func(i, j int) bool { return stats[i].Room < stats[j].Room })
	return stats
}
