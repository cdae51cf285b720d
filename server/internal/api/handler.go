package api

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/handygrpc/handygrpc/server/internal/stats"
	"github.com/handygrpc/handygrpc/server/internal/store"
)

// Handler is the HTTP handler for all /api/v1/* endpoints.
type Handler struct {
	store   *store.Store
	stats   *stats.Stats
	recent  *Recent
	started time.Time
	mux     *http.ServeMux
}

// New creates a Handler reading from st, sc and recent and registers all
// routes. started is reported as the start of uptime.
func New(st *store.Store, sc *stats.Stats, recent *Recent, started time.Time) http.Handler {
	h := &Handler{store: st, stats: sc, recent: recent, started: started, mux: http.NewServeMux()}

	h.mux.HandleFunc("/api/v1/health", h.health)
	h.mux.HandleFunc("/api/v1/summary", h.summary)
	h.mux.HandleFunc("/api/v1/pending", h.listPending)
	h.mux.HandleFunc("/api/v1/pending/", h.getPending) // subtree, extracts {id}
	h.mux.HandleFunc("/api/v1/payloads", h.payloads)

	return h
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.mux.ServeHTTP(w, r)
}

// --- route handlers ---------------------------------------------------------

// health returns GET /api/v1/health.
func (h *Handler) health(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		jsonErr(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	now := time.Now()
	pending := h.store.List()
	resp := HealthResponse{
		State:         "ok",
		UptimeSeconds: now.Sub(h.started).Seconds(),
		StreamsActive: h.stats.Totals().Streams,
		PendingCount:  len(pending),
	}
	stallAfter := h.store.TTL() / 2
	for _, p := range pending {
		if now.Sub(p.UpdatedAt) > stallAfter {
			resp.StalledCount++
		}
	}
	if resp.StalledCount > 0 {
		resp.State = "degraded"
	}
	jsonResp(w, http.StatusOK, resp)
}

// summary returns GET /api/v1/summary.
func (h *Handler) summary(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		jsonErr(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	jsonResp(w, http.StatusOK, BuildSummary(h.stats))
}

// listPending returns GET /api/v1/pending.
func (h *Handler) listPending(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		jsonErr(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	entries := h.store.List()
	out := make([]PendingResponse, 0, len(entries))
	for _, p := range entries {
		out = append(out, toPendingResponse(p))
	}
	jsonResp(w, http.StatusOK, out)
}

// getPending returns GET /api/v1/pending/{id}.
func (h *Handler) getPending(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		jsonErr(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	raw := strings.TrimPrefix(r.URL.Path, "/api/v1/pending/")
	if raw == "" {
		h.listPending(w, r)
		return
	}
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		jsonErr(w, http.StatusBadRequest, "id must be an unsigned integer")
		return
	}

	for _, p := range h.store.List() {
		if p.ID == id {
			jsonResp(w, http.StatusOK, toPendingResponse(p))
			return
		}
	}
	jsonErr(w, http.StatusNotFound, "payload not pending")
}

// payloads returns GET /api/v1/payloads.
func (h *Handler) payloads(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		jsonErr(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	jsonResp(w, http.StatusOK, h.recent.List())
}

// --- helpers ----------------------------------------------------------------

// BuildSummary snapshots the counters in sc.
func BuildSummary(sc *stats.Stats) SummaryResponse {
	t := sc.Totals()
	return SummaryResponse{
		Messages:      t.Messages,
		Chunks:        t.Chunks,
		Rejected:      t.Rejected,
		Payloads:      t.Payloads,
		PayloadBytes:  t.Bytes,
		Evictions:     t.Evictions,
		StreamsActive: t.Streams,
		PendingCount:  t.Pending,
		GeneratedAt:   time.Now().UTC().Format(time.RFC3339),
	}
}

func jsonResp(w http.ResponseWriter, code int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(v) //nolint:errcheck
}

func jsonErr(w http.ResponseWriter, code int, msg string) {
	jsonResp(w, code, errorResponse{Error: msg})
}

func toPendingResponse(p store.Pending) PendingResponse {
	var progress float64
	if p.Total > 0 {
		progress = float64(p.Received) / float64(p.Total) * 100
	}
	return PendingResponse{
		ID:             p.ID,
		Priority:       p.Priority,
		ChunksReceived: p.Received,
		TotalChunks:    p.Total,
		Bytes:          p.Bytes,
		Progress:       progress,
		LastChunk:      p.UpdatedAt.UTC().Format(time.RFC3339),
	}
}
