// Package pump drains a mailbox queue into a long-lived outbound stream.
//
// A Pump runs one goroutine that repeatedly invokes a StreamFunc with a
// Receiver over the queue. The StreamFunc owns the actual RPC: it pulls
// messages with Receiver.Recv and returns when the stream ends.
//
//	Connecting -> Streaming -> (error) Backoff -> Connecting -> ... -> Exited
//
// A failed stream is logged and retried after a fixed backoff, forever. The
// pump exits when the queue is closed and drained, when its context is
// cancelled or Stop is called, or when a stream call completes without
// error. The last case stops the pump even if messages are still queued.
//
// Messages the StreamFunc had already received when a stream failed are not
// replayed; only what is still queued is sent on the next attempt.
package pump
