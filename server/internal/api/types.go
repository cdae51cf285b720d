package api

// HealthResponse is the payload for GET /api/v1/health.
type HealthResponse struct {
	State         string  `json:"state"` // ok | degraded
	UptimeSeconds float64 `json:"uptime_seconds"`
	StreamsActive int64   `json:"streams_active"`
	PendingCount  int     `json:"pending_count"`
	StalledCount  int     `json:"stalled_count"`
}

// SummaryResponse is the payload for GET /api/v1/summary and the periodic
// "summary" event on the WebSocket feed.
type SummaryResponse struct {
	Messages      uint64 `json:"messages"`
	Chunks        uint64 `json:"chunks"`
	Rejected      uint64 `json:"rejected"`
	Payloads      uint64 `json:"payloads"`
	PayloadBytes  uint64 `json:"payload_bytes"`
	Evictions     uint64 `json:"evictions"`
	StreamsActive int64  `json:"streams_active"`
	PendingCount  int    `json:"pending_count"`
	GeneratedAt   string `json:"generated_at"` // RFC3339
}

// PendingResponse is one entry in GET /api/v1/pending.
type PendingResponse struct {
	ID             uint64  `json:"id"`
	Priority       uint32  `json:"priority"`
	ChunksReceived uint32  `json:"chunks_received"`
	TotalChunks    uint32  `json:"total_chunks"`
	Bytes          int     `json:"bytes"`
	Progress       float64 `json:"progress"`   // 0-100
	LastChunk      string  `json:"last_chunk"` // RFC3339
}

// PayloadEvent describes one delivered payload. It is listed by
// GET /api/v1/payloads and pushed as a "payload" event on the feed.
type PayloadEvent struct {
	ID         uint64 `json:"id"`
	Priority   uint32 `json:"priority"`
	Bytes      int    `json:"bytes"`
	RPC        string `json:"rpc"`
	ReceivedAt string `json:"received_at"` // RFC3339
}

// errorResponse is a generic JSON error body.
type errorResponse struct {
	Error string `json:"error"`
}
