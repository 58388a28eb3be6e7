package chat

import (
	"errors"
	"sync"
)

// State is the protocol state of a connection.
type State int

const (
	// StateUnjoined is the state of a freshly accepted connection.
	StateUnjoined State = iota

	// StateJoined means the connection has a username and a room.
	StateJoined

	// StateClosed is terminal; nothing can be sent to the connection anymore.
	StateClosed
)

func (s State) String() string {
	switch s {
	case StateUnjoined:
		return "unjoined"
	case StateJoined:
		return "joined"
	case StateClosed:
		return "closed"
	}
	return "unknown"
}

var (
	// ErrAlreadyJoined is returned when identity is assigned a second time.
	ErrAlreadyJoined = errors.New("connection already joined a room")

	// ErrConnClosed is returned for operations on a released connection.
	ErrConnClosed = errors.New("connection closed")

	// ErrSendQueueFull is returned when the outbound queue cannot take another frame.
	ErrSendQueueFull = errors.New("connection send queue full")

	// ErrInvalidIdentity is returned when the room or username is empty.
	ErrInvalidIdentity = errors.New("room and username are required")
)

// Conn is one accepted client channel and its identity.
// The room and username are set once, by AssignIdentity, and stay readable after Close
// so disconnect cleanup can find the room the connection was in.
type Conn struct {
	// ID is assigned at accept time and never changes.
	ID string

	mu       sync.RWMutex
	state    State
	room     string
	username string

	// send queues encoded frames for the transport writer. It is closed by Close.
	send chan []byte
}

func newConn(id string, queueSize int) *Conn {
	return &Conn{
		ID:    id,
		state: StateUnjoined,
		send:  make(chan []byte, queueSize),
	}
}

// AssignIdentity binds the connection to room under username. It succeeds at most once.
func (c *Conn) AssignIdentity(room, username string) error {
	if room == "" || username == "" {
		return ErrInvalidIdentity
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	switch c.state {
	case StateJoined:
		return ErrAlreadyJoined
	case StateClosed:
		return ErrConnClosed
	}

	c.room = room
	c.username = username
	c.state = StateJoined
	return nil
}

// Identity returns the room and username captured at join.
// joined reports whether AssignIdentity ever succeeded, including on a closed connection.
func (c *Conn) Identity() (room, username string, joined bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return c.room, c.username, c.room != ""
}

// State returns the current protocol state.
func (c *Conn) State() State {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return c.state
}

// Send queues payload without blocking.
func (c *Conn) Send(payload []byte) error {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if c.state == StateClosed {
		return ErrConnClosed
	}

	select {
	case c.send <- payload:
		return nil
	default:
		return ErrSendQueueFull
	}
}

// Outbound is the queue drained by the transport writer. It is closed once the
// connection is closed.
func (c *Conn) Outbound() <-chan []byte {
	return c.send
}

// Close marks the connection closed and closes its outbound queue.
// It reports whether this call performed the transition.
func (c *Conn) Close() bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state == StateClosed {
		return false
	}

	c.state = StateClosed
	close(c.send)
	return true
}
