// Package pqueue provides a bounded priority channel: a priority queue shared
// by many producers and one consumer.
//
// Entries are kept in a red-black tree keyed by (priority, sequence). Dequeue
// always returns the highest priority entry; entries of equal priority come
// out in the order they were enqueued.
//
// Locking discipline: one mutex guards the tree, the capacity check and the
// closed flag. Every Enqueue, TryEnqueue, Dequeue, Len and Close takes it, so
// all producers and the consumer serialize on it. Blocked callers wait on a
// broadcast channel that is replaced on every state change, never while
// holding the mutex.
//
// Close marks the queue closed: producers fail with ErrClosed immediately,
// the consumer drains what is left and then receives ErrClosed.
package pqueue
