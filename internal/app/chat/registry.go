package chat

import (
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"eventchat/internal/pkg/logx"
)

// DefaultSendQueueSize is the outbound queue length used when none is configured.
const DefaultSendQueueSize = 256

// Registry tracks every live connection.
type Registry struct {
	mu        sync.RWMutex
	conns     map[string]*Conn
	queueSize int
	logger    zerolog.Logger
}

// NewRegistry returns an empty Registry whose connections buffer queueSize outbound frames.
func NewRegistry(queueSize int) *Registry {
	if queueSize < 1 {
		queueSize = DefaultSendQueueSize
	}

	return &Registry{
		conns:     make(map[string]*Conn),
		queueSize: queueSize,
		logger:    logx.Component("Registry"),
	}
}

// Accept creates an unjoined connection with a fresh id and starts tracking it.
func (r *Registry) Accept() *Conn {
	c := newConn(uuid.NewString(), r.queueSize)

	r.mu.Lock()
	r.conns[c.ID] = c
	total := len(r.conns)
	r.mu.Unlock()

	r.logger.Debug().Str("conn_id", c.ID).Int("total_conns", total).Msg("Connection accepted.")
	return c
}

// Release closes c and stops tracking it. Releasing twice is a no-op.
func (r *Registry) Release(c *Conn) {
	c.Close()

	r.mu.Lock()
	delete(r.conns, c.ID)
	r.mu.Unlock()
}

// Get returns the live connection with the given id.
func (r *Registry) Get(id string) (*Conn, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	c, ok := r.conns[id]
	return c, ok
}

// Len returns the number of live connections.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.conns)
}

// CloseAll closes every live connection and returns how many were closed.
// The connections stay tracked until their sessions release them.
func (r *Registry) CloseAll() int {
	r.mu.RLock()
	conns := make([]*Conn, 0, len(r.conns))
	for _, c := range r.conns {
		conns = append(conns, c)
	}
	r.mu.RUnlock()

	closed := 0
	for _, c := range conns {
		if c.Close() {
			closed++
		}
	}
	return closed
}
