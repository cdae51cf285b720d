// Package ws implements the WebSocket payload feed of handygrpc-server.
//
// Hub manages a set of connected clients. Every delivered payload is pushed
// to all of them as it happens (Publish), and a counter summary is sent on
// connect and then every interval (Run).
//
// Message format sent to clients:
//
//	{"event": "payload", "data": { /* api.PayloadEvent */ }}
//	{"event": "summary", "data": { /* same schema as GET /api/v1/summary */ }}
//
// A client whose outgoing buffer is full is disconnected rather than slowing
// down the receiver. The upgrader accepts all origins; apply CORS
// restrictions at the reverse proxy. The server mounts the hub at
// /ws/payloads.
package ws
