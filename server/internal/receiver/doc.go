// Package receiver implements transferpb.DataTransferServer, the reference
// endpoint that pkg/client talks to.
//
// Send answers each request. Unchunked messages are handed to the Handler
// immediately; chunks are buffered in a store.Store and answered without
// data until the last missing index arrives, when the reassembled payload is
// handed over and the Handler's result is returned as the response data.
// Transfer runs the same path for every streamed message and replies Empty
// once the client half-closes.
//
// Chunks whose index or total disagree with their siblings are rejected with
// codes.InvalidArgument. Authentication is enforced upstream by the gRPC
// server interceptors (see package auth).
package receiver
