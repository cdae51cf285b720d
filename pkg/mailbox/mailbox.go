package mailbox

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"

	"github.com/handygrpc/handygrpc/pkg/chunk"
	"github.com/handygrpc/handygrpc/pkg/pqueue"
	"github.com/handygrpc/handygrpc/pkg/transferpb"
	"github.com/handygrpc/handygrpc/pkg/types"
)

// Queue is the priority channel a Mailbox feeds.
type Queue = pqueue.Queue[*transferpb.Message]

// NewQueue returns a queue suitable for New.
func NewQueue(capacity int) *Queue {
	return pqueue.New[*transferpb.Message](capacity)
}

// Mailbox submits payloads to a shared queue. It is safe for concurrent use;
// use Clone to hand independent handles to other producers.
type Mailbox struct {
	queue     *Queue
	capacity  int
	chunkSize int
	ids       *chunk.IDGenerator

	handles *atomic.Int64 // open handles sharing queue
	closed  atomic.Bool
}

// New returns the first handle on queue. capacity is the soft limit checked
// by the non-blocking sends; chunkSize bounds the size of each queued
// message. A nil ids uses chunk.Default.
func New(queue *Queue, capacity, chunkSize int, ids *chunk.IDGenerator) *Mailbox {
	if chunkSize < 1 {
		chunkSize = types.DefaultChunkSize
	}
	if ids == nil {
		ids = chunk.Default
	}
	m := &Mailbox{
		queue:     queue,
		capacity:  capacity,
		chunkSize: chunkSize,
		ids:       ids,
		handles:   new(atomic.Int64),
	}
	m.handles.Add(1)
	return m
}

// Clone returns a new handle on the same queue. It fails if this handle has
// already been closed.
func (m *Mailbox) Clone() (*Mailbox, error) {
	if m.closed.Load() {
		return nil, ErrDisconnected
	}
	m.handles.Add(1)
	return &Mailbox{
		queue:     m.queue,
		capacity:  m.capacity,
		chunkSize: m.chunkSize,
		ids:       m.ids,
		handles:   m.handles,
	}, nil
}

// Close releases this handle. Closing the last open handle closes the
// queue; the consumer then drains what remains and stops. Close is
// idempotent per handle.
func (m *Mailbox) Close() {
	if !m.closed.CompareAndSwap(false, true) {
		return
	}
	if m.handles.Add(-1) == 0 {
		slog.Debug("mailbox: last handle closed", "queue_len", m.queue.Len())
		m.queue.Close()
	}
}

// QueueLen returns the current depth of the shared queue. It is advisory
// and may be stale immediately.
func (m *Mailbox) QueueLen() int {
	return m.queue.Len()
}

// Capacity returns the soft capacity used by the non-blocking sends.
func (m *Mailbox) Capacity() int {
	return m.capacity
}

// Send queues data at types.MinPriority, waiting while the queue is full.
func (m *Mailbox) Send(ctx context.Context, data []byte) error {
	return m.SendPriority(ctx, data, types.MinPriority)
}

// QuickSend queues data at types.MaxPriority so it overtakes any default
// backlog, waiting while the queue is full.
func (m *Mailbox) QuickSend(ctx context.Context, data []byte) error {
	return m.SendPriority(ctx, data, types.MaxPriority)
}

// SendPriority fragments data if needed and queues each chunk in turn,
// waiting for space before each one. Other producers may interleave with the
// chunks. It returns a Disconnected SendError once the queue is closed, or a
// Canceled SendError wrapping ctx.Err() if ctx ends while waiting. Either
// carries the bytes of the chunk that was not queued; earlier chunks stay
// queued.
func (m *Mailbox) SendPriority(ctx context.Context, data []byte, p types.Priority) error {
	if m.closed.Load() {
		return disconnected(data)
	}
	for _, msg := range chunk.Fragment(m.ids, data, p, m.chunkSize) {
		if err := m.queue.Enqueue(ctx, p, msg); err != nil {
			return sendError(err, msg.Data)
		}
	}
	return nil
}

// TrySend is the non-blocking form of Send.
func (m *Mailbox) TrySend(data []byte) error {
	return m.TrySendPriority(data, types.MinPriority)
}

// QuickTrySend is the non-blocking form of QuickSend.
func (m *Mailbox) QuickTrySend(data []byte) error {
	return m.TrySendPriority(data, types.MaxPriority)
}

// TrySendPriority queues data without waiting. When QueueLen is at or over
// the soft capacity it returns a Full SendError carrying data and queues
// nothing. Otherwise each chunk is offered in turn; a failure partway returns
// the failing chunk's bytes and leaves earlier chunks queued.
func (m *Mailbox) TrySendPriority(data []byte, p types.Priority) error {
	if m.closed.Load() {
		return disconnected(data)
	}
	if m.QueueLen() >= m.capacity {
		return full(data)
	}
	for _, msg := range chunk.Fragment(m.ids, data, p, m.chunkSize) {
		if err := m.queue.TryEnqueue(p, msg); err != nil {
			return sendError(err, msg.Data)
		}
	}
	return nil
}

func sendError(err error, data []byte) error {
	switch {
	case errors.Is(err, pqueue.ErrFull):
		return full(data)
	case errors.Is(err, pqueue.ErrClosed):
		return disconnected(data)
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return canceled(err, data)
	default:
		return fmt.Errorf("mailbox: send: %w", err)
	}
}
