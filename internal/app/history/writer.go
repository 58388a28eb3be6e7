package history

import (
	"context"
	"errors"
	"hash/fnv"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"eventchat/internal/pkg/logx"
)

var (
	// ErrWriterClosed is returned by Record once Close has been called.
	ErrWriterClosed = errors.New("history writer closed")

	// ErrQueueFull is returned by Record when the worker queue for the room is saturated.
	ErrQueueFull = errors.New("history queue full")
)

// WriterOptions tunes the Writer worker pool.
type WriterOptions struct {
	// Workers is the number of append goroutines. Rooms are sharded across them.
	Workers int

	// QueueSize is the total number of messages that may wait for persistence.
	QueueSize int

	// WriteTimeout bounds a single Store.Append call.
	WriteTimeout time.Duration
}

func (o WriterOptions) withDefaults() WriterOptions {
	if o.Workers < 1 {
		o.Workers = 1
	}
	if o.QueueSize < o.Workers {
		o.QueueSize = o.Workers
	}
	if o.WriteTimeout <= 0 {
		o.WriteTimeout = 5 * time.Second
	}
	return o
}

// Writer asynchronously appends messages to a Store.
// Messages of one room always land on the same worker, so per-room order is kept.
type Writer struct {
	store  Store
	opts   WriterOptions
	queues []chan Message
	wg     sync.WaitGroup
	mu     sync.RWMutex
	closed bool
	done   chan struct{}
	logger zerolog.Logger
}

// NewWriter constructs a Writer over store and starts its workers.
func NewWriter(store Store, opts WriterOptions) *Writer {
	opts = opts.withDefaults()

	w := &Writer{
		store:  store,
		opts:   opts,
		queues: make([]chan Message, opts.Workers),
		done:   make(chan struct{}),
		logger: logx.Component("HistoryWriter"),
	}

	perWorker := opts.QueueSize / opts.Workers
	for i := range w.queues {
		w.queues[i] = make(chan Message, perWorker)
		w.wg.Add(1)
		go w.run(i, w.queues[i])
	}

	go func() {
		w.wg.Wait()
		close(w.done)
	}()

	w.logger.Info().
		Int("workers", opts.Workers).
		Int("queue_size", opts.QueueSize).
		Dur("write_timeout", opts.WriteTimeout).
		Msg("History writer started.")

	return w
}

// Record hands msg to the worker owning its room and returns without waiting for the store.
// A closed writer or a full queue drops the message; the error is logged and also returned
// for callers that want to count drops.
func (w *Writer) Record(msg Message) error {
	w.mu.RLock()
	defer w.mu.RUnlock()

	if w.closed {
		w.logger.Warn().Str("room", msg.RoomID).Msg("History writer closed, dropping message.")
		return ErrWriterClosed
	}

	select {
	case w.queues[w.shard(msg.RoomID)] <- msg:
		return nil
	default:
		w.logger.Warn().Str("room", msg.RoomID).Msg("History queue full, dropping message.")
		return ErrQueueFull
	}
}

// shard maps a room id to a worker index.
func (w *Writer) shard(roomID string) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(roomID))
	return int(h.Sum32() % uint32(len(w.queues)))
}

func (w *Writer) run(id int, queue <-chan Message) {
	defer w.wg.Done()

	for msg := range queue {
		w.persist(id, msg)
	}
}

// persist appends one message. Failures are logged and the message is lost.
func (w *Writer) persist(worker int, msg Message) {
	ctx, cancel := context.WithTimeout(context.Background(), w.opts.WriteTimeout)
	defer cancel()

	if err := w.store.Append(ctx, msg); err != nil {
		w.logger.Error().
			Err(err).
			Int("worker", worker).
			Str("room", msg.RoomID).
			Str("username", msg.Username).
			Msg("Failed to persist chat message.")
	}
}

// Close stops accepting messages and waits until the queued ones are persisted
// or ctx is done. It does not close the underlying store.
func (w *Writer) Close(ctx context.Context) error {
	w.mu.Lock()
	if !w.closed {
		w.closed = true
		for _, q := range w.queues {
			close(q)
		}
	}
	w.mu.Unlock()

	select {
	case <-w.done:
		w.logger.Info().Msg("History writer drained.")
		return nil
	case <-ctx.Done():
		w.logger.Warn().Msg("History writer close timed out with messages still queued.")
		return ctx.Err()
	}
}
