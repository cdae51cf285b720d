// Package mailbox is the producer-facing side of a transfer: a handle that
// fragments payloads and places them on a shared bounded priority queue for
// the stream pump to drain.
//
// Send, QuickSend and SendPriority block while the queue is full. TrySend,
// QuickTrySend and TrySendPriority never block: they first compare QueueLen
// with the soft capacity and fail with a Full SendError carrying the whole
// payload when the queue is at or over it. That check and the enqueue that
// follows are not atomic, so concurrent producers can briefly overshoot the
// soft capacity.
//
// A multi-chunk payload is enqueued chunk by chunk. If a non-blocking send
// fails partway, the SendError carries only the failing chunk's bytes and the
// chunks already queued stay queued.
//
// Clone returns another handle on the same queue. Each handle is released
// with Close; when the last one is closed the queue closes and the pump exits
// after draining it.
package mailbox
