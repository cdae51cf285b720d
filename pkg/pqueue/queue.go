package pqueue

import (
	"context"
	"errors"
	"sync"

	rbt "github.com/emirpasic/gods/trees/redblacktree"
)

var (
	// ErrFull is returned by TryEnqueue when the queue is at capacity.
	ErrFull = errors.New("pqueue: queue is full")

	// ErrClosed is returned to producers after Close, and to the consumer once
	// the queue is closed and drained.
	ErrClosed = errors.New("pqueue: queue is closed")
)

// key orders entries: higher priority first, then lower sequence first.
type key struct {
	priority uint32
	seq      uint64
}

func compareKeys(a, b interface{}) int {
	ka, kb := a.(key), b.(key)
	switch {
	case ka.priority > kb.priority:
		return -1
	case ka.priority < kb.priority:
		return 1
	case ka.seq < kb.seq:
		return -1
	case ka.seq > kb.seq:
		return 1
	}
	return 0
}

// Queue is a bounded, concurrency-safe priority queue of T.
type Queue[T any] struct {
	mu       sync.Mutex
	tree     *rbt.Tree
	seq      uint64
	capacity int
	closed   bool
	changed  chan struct{} // closed and replaced whenever the queue changes
}

// New returns an empty queue holding at most capacity entries. A capacity
// below 1 is treated as 1.
func New[T any](capacity int) *Queue[T] {
	if capacity < 1 {
		capacity = 1
	}
	return &Queue[T]{
		tree:     rbt.NewWith(compareKeys),
		capacity: capacity,
		changed:  make(chan struct{}),
	}
}

// Enqueue adds v with priority p, waiting while the queue is full. It returns
// ErrClosed if the queue is closed, before or during the wait, and ctx.Err()
// if ctx ends first.
func (q *Queue[T]) Enqueue(ctx context.Context, p uint32, v T) error {
	for {
		q.mu.Lock()
		if q.closed {
			q.mu.Unlock()
			return ErrClosed
		}
		if q.tree.Size() < q.capacity {
			q.putLocked(p, v)
			q.mu.Unlock()
			return nil
		}
		wait := q.changed
		q.mu.Unlock()

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-wait:
		}
	}
}

// TryEnqueue adds v with priority p without waiting. It returns ErrFull when
// the queue is at capacity and ErrClosed after Close.
func (q *Queue[T]) TryEnqueue(p uint32, v T) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.closed {
		return ErrClosed
	}
	if q.tree.Size() >= q.capacity {
		return ErrFull
	}
	q.putLocked(p, v)
	return nil
}

// Dequeue removes and returns the highest priority entry, waiting while the
// queue is empty. Once the queue is closed and empty it returns ErrClosed.
func (q *Queue[T]) Dequeue(ctx context.Context) (uint32, T, error) {
	for {
		q.mu.Lock()
		if node := q.tree.Left(); node != nil {
			k := node.Key.(key)
			v, _ := node.Value.(T)
			q.tree.Remove(k)
			q.notifyLocked()
			q.mu.Unlock()
			return k.priority, v, nil
		}
		if q.closed {
			q.mu.Unlock()
			var zero T
			return 0, zero, ErrClosed
		}
		wait := q.changed
		q.mu.Unlock()

		select {
		case <-ctx.Done():
			var zero T
			return 0, zero, ctx.Err()
		case <-wait:
		}
	}
}

// TryDequeue is Dequeue without waiting. ok is false when nothing was
// available; err is ErrClosed once the queue is closed and drained.
func (q *Queue[T]) TryDequeue() (p uint32, v T, ok bool, err error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if node := q.tree.Left(); node != nil {
		k := node.Key.(key)
		v, _ = node.Value.(T)
		q.tree.Remove(k)
		q.notifyLocked()
		return k.priority, v, true, nil
	}
	if q.closed {
		return 0, v, false, ErrClosed
	}
	return 0, v, false, nil
}

// Len returns the current number of entries. The value is advisory: it may
// be stale as soon as it is returned.
func (q *Queue[T]) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.tree.Size()
}

// Cap returns the capacity.
func (q *Queue[T]) Cap() int {
	return q.capacity
}

// Close stops accepting entries and wakes every waiter. Entries already
// queued remain available to Dequeue. Close is idempotent.
func (q *Queue[T]) Close() {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.closed {
		return
	}
	q.closed = true
	q.notifyLocked()
}

// IsClosed reports whether Close has been called.
func (q *Queue[T]) IsClosed() bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.closed
}

// Drained reports whether the queue is closed and empty; the consumer will
// not receive anything more.
func (q *Queue[T]) Drained() bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.closed && q.tree.Size() == 0
}

func (q *Queue[T]) putLocked(p uint32, v T) {
	q.seq++
	q.tree.Put(key{priority: p, seq: q.seq}, v)
	q.notifyLocked()
}

func (q *Queue[T]) notifyLocked() {
	close(q.changed)
	q.changed = make(chan struct{})
}
