package pump

import (
	"context"
	"errors"
	"sync"

	"github.com/handygrpc/handygrpc/pkg/pqueue"
	"github.com/handygrpc/handygrpc/pkg/transferpb"
)

// ErrClosed is returned by Recv once the queue is closed and drained.
var ErrClosed = errors.New("pump: receiver closed")

// Receiver adapts the consumer side of a queue for a stream. Many holders
// may share one Receiver; a mutex ensures only one of them polls at a time.
type Receiver struct {
	mu    sync.Mutex
	queue *pqueue.Queue[*transferpb.Message]
}

// NewReceiver wraps queue.
func NewReceiver(queue *pqueue.Queue[*transferpb.Message]) *Receiver {
	return &Receiver{queue: queue}
}

// Recv waits for the highest priority message and returns it. The queue
// priority is not returned; it is still carried inside the message.
func (r *Receiver) Recv(ctx context.Context) (*transferpb.Message, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	_, msg, err := r.queue.Dequeue(ctx)
	if errors.Is(err, pqueue.ErrClosed) {
		return nil, ErrClosed
	}
	if err != nil {
		return nil, err
	}
	return msg, nil
}

// Closed reports whether the queue is closed and nothing remains to send.
func (r *Receiver) Closed() bool {
	return r.queue.Drained()
}

// Len returns the number of queued messages.
func (r *Receiver) Len() int {
	return r.queue.Len()
}
