// Package api implements the JSON HTTP API of handygrpc-server.
//
// New(store, stats, recent, started) returns an http.Handler that serves:
//
//	GET /api/v1/health        - state, uptime, stream and pending counts
//	GET /api/v1/summary       - all counters plus generated_at
//	GET /api/v1/pending       - incomplete payloads ordered by id
//	GET /api/v1/pending/{id}  - one incomplete payload; 404 if unknown
//	GET /api/v1/payloads      - the most recently completed payloads, newest first
//
// Health reports "degraded" while any incomplete payload has waited longer
// than half the reassembly TTL for its next chunk, which usually means a
// sender stalled or lost its connection mid-payload.
//
// All endpoints respond with Content-Type: application/json and return 405
// for non-GET methods. Recent is the bounded history behind /api/v1/payloads;
// the server records every delivered payload into it.
package api
