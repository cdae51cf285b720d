// Package shipper delivers agent payloads to handygrpc-server through
// pkg/client.
//
// Shipper.SendUnary uses the chunked unary path and retries transient gRPC
// failures with truncated exponential backoff (1s→60s, ±25% jitter, at most
// five attempts). Permanent errors (Unauthenticated, PermissionDenied,
// InvalidArgument, ResourceExhausted, or a chunked send that never got a
// payload back) are returned immediately.
//
// Shipper.Start opens a mailbox whose pump streams queued payloads over
// Transfer; Ship and TryShip queue into it at a chosen priority. Close hands
// the queue to the pump for draining and then closes the connection.
//
// Connection settings (endpoint, TLS, bearer token from token_env, limits,
// timeouts, chunk size) come from config.AgentConfig.
package shipper
