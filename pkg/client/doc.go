// Package client connects to a transferpb.DataTransfer service and offers two
// ways to deliver payloads.
//
// Send and SendPriority use the unary Send RPC. A payload larger than the
// chunk size is fragmented and each chunk is sent as its own request, one
// round trip at a time. The first response that carries data is the result;
// if none does the call fails with ErrTimeout.
//
// TransferStart opens a Mailbox backed by a bounded priority queue and starts
// a pump that feeds the queue into the Transfer stream, reconnecting after a
// fixed backoff whenever the stream fails.
//
// Connection settings are fixed at Connect time: TLS with an optional CA file
// and server name override, a bearer token added to every call as
// "authorization: Bearer <token>", a concurrency limit for unary calls,
// connect and per-call timeouts, and the chunk size.
package client
