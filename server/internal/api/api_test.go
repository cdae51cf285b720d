package api_test

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/handygrpc/handygrpc/pkg/transferpb"
	"github.com/handygrpc/handygrpc/server/internal/api"
	"github.com/handygrpc/handygrpc/server/internal/stats"
	"github.com/handygrpc/handygrpc/server/internal/store"
)

// --- test helpers -----------------------------------------------------------

type fixture struct {
	store  *store.Store
	stats  *stats.Stats
	recent *api.Recent
	h      http.Handler
}

func newFixture(t *testing.T, ttl time.Duration) *fixture {
	t.Helper()
	st, err := store.New(ttl, 16, nil)
	if err != nil {
		t.Fatalf("store.New: %v", err)
	}
	sc := stats.New(st.Count)
	recent := api.NewRecent(3)
	return &fixture{
		store:  st,
		stats:  sc,
		recent: recent,
		h:      api.New(st, sc, recent, time.Now().Add(-time.Minute)),
	}
}

func (f *fixture) addChunk(t *testing.T, id uint64, idx, total uint32, data string) {
	t.Helper()
	m := &transferpb.Message{Id: id, Priority: 5, TotalChunks: total, ChunkIndex: idx, Data: []byte(data)}
	if _, _, err := f.store.Add(m); err != nil {
		t.Fatalf("store.Add: %v", err)
	}
}

func get(t *testing.T, h http.Handler, path string) *httptest.ResponseRecorder {
	t.Helper()
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, path, nil))
	return rr
}

func decode(t *testing.T, rr *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	if err := json.NewDecoder(rr.Body).Decode(v); err != nil {
		t.Fatalf("decode JSON: %v (body: %s)", err, rr.Body.String())
	}
}

// --- /api/v1/health ---------------------------------------------------------

func TestHealth_Idle(t *testing.T) {
	f := newFixture(t, time.Minute)
	rr := get(t, f.h, "/api/v1/health")

	if rr.Code != http.StatusOK {
		t.Fatalf("status: got %d, want 200", rr.Code)
	}
	var resp api.HealthResponse
	decode(t, rr, &resp)

	if resp.State != "ok" {
		t.Errorf("state: got %q, want ok", resp.State)
	}
	if resp.UptimeSeconds < 59 {
		t.Errorf("uptime_seconds: got %v, want >= 59", resp.UptimeSeconds)
	}
	if resp.PendingCount != 0 || resp.StalledCount != 0 {
		t.Errorf("counts: got %+v", resp)
	}
}

func TestHealth_StalledPartialDegrades(t *testing.T) {
	// A zero TTL marks every pending entry as stalled.
	f := newFixture(t, 0)
	f.addChunk(t, 1, 0, 2, "ab")
	time.Sleep(time.Millisecond)

	var resp api.HealthResponse
	decode(t, get(t, f.h, "/api/v1/health"), &resp)

	if resp.State != "degraded" {
		t.Errorf("state: got %q, want degraded", resp.State)
	}
	if resp.PendingCount != 1 || resp.StalledCount != 1 {
		t.Errorf("counts: got %+v", resp)
	}
}

// --- /api/v1/summary --------------------------------------------------------

func TestSummary(t *testing.T) {
	f := newFixture(t, time.Minute)
	f.addChunk(t, 1, 0, 2, "ab")
	f.stats.Message(stats.RPCTransfer, true)
	f.stats.Payload(7)
	f.stats.StreamOpened()

	var resp api.SummaryResponse
	decode(t, get(t, f.h, "/api/v1/summary"), &resp)

	if resp.Messages != 1 || resp.Chunks != 1 || resp.Payloads != 1 || resp.PayloadBytes != 7 {
		t.Errorf("counters: got %+v", resp)
	}
	if resp.StreamsActive != 1 || resp.PendingCount != 1 {
		t.Errorf("gauges: got %+v", resp)
	}
	if _, err := time.Parse(time.RFC3339, resp.GeneratedAt); err != nil {
		t.Errorf("generated_at %q: %v", resp.GeneratedAt, err)
	}
}

// --- /api/v1/pending --------------------------------------------------------

func TestPending_ListAndGet(t *testing.T) {
	f := newFixture(t, time.Minute)
	f.addChunk(t, 8, 0, 4, "abcd")
	f.addChunk(t, 3, 1, 2, "x")

	var list []api.PendingResponse
	decode(t, get(t, f.h, "/api/v1/pending"), &list)
	if len(list) != 2 || list[0].ID != 3 || list[1].ID != 8 {
		t.Fatalf("list: got %+v", list)
	}
	if list[1].Progress != 25 || list[1].Bytes != 4 || list[1].Priority != 5 {
		t.Errorf("entry 8: got %+v", list[1])
	}

	rr := get(t, f.h, "/api/v1/pending/3")
	if rr.Code != http.StatusOK {
		t.Fatalf("status: got %d, want 200", rr.Code)
	}
	var one api.PendingResponse
	decode(t, rr, &one)
	if one.ChunksReceived != 1 || one.TotalChunks != 2 {
		t.Errorf("entry 3: got %+v", one)
	}
}

func TestPending_NotFoundAndBadID(t *testing.T) {
	f := newFixture(t, time.Minute)

	if rr := get(t, f.h, "/api/v1/pending/42"); rr.Code != http.StatusNotFound {
		t.Errorf("unknown id: got %d, want 404", rr.Code)
	}
	if rr := get(t, f.h, "/api/v1/pending/abc"); rr.Code != http.StatusBadRequest {
		t.Errorf("bad id: got %d, want 400", rr.Code)
	}
}

// --- /api/v1/payloads -------------------------------------------------------

func TestPayloads_NewestFirstAndBounded(t *testing.T) {
	f := newFixture(t, time.Minute)
	for id := uint64(1); id <= 5; id++ {
		f.recent.Record(api.PayloadEvent{ID: id, RPC: stats.RPCTransfer})
	}

	var resp []api.PayloadEvent
	decode(t, get(t, f.h, "/api/v1/payloads"), &resp)

	got := fmt.Sprint(ids(resp))
	if got != "[5 4 3]" {
		t.Errorf("ids: got %s, want [5 4 3]", got)
	}
}

func TestPayloads_EmptyIsArray(t *testing.T) {
	f := newFixture(t, time.Minute)
	rr := get(t, f.h, "/api/v1/payloads")
	if body := rr.Body.String(); body != "[]\n" {
		t.Errorf("body: got %q, want []", body)
	}
}

func TestMethodNotAllowed(t *testing.T) {
	f := newFixture(t, time.Minute)
	for _, path := range []string{"/api/v1/health", "/api/v1/summary", "/api/v1/pending", "/api/v1/pending/1", "/api/v1/payloads"} {
		rr := httptest.NewRecorder()
		f.h.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, path, nil))
		if rr.Code != http.StatusMethodNotAllowed {
			t.Errorf("POST %s: got %d, want 405", path, rr.Code)
		}
	}
}

func TestRecent_PartialFill(t *testing.T) {
	r := api.NewRecent(4)
	r.Record(api.PayloadEvent{ID: 1})
	r.Record(api.PayloadEvent{ID: 2})
	if got := fmt.Sprint(ids(r.List())); got != "[2 1]" {
		t.Errorf("ids: got %s, want [2 1]", got)
	}
}

func ids(evs []api.PayloadEvent) []uint64 {
	out := make([]uint64, len(evs))
	for i, e := range evs {
		out[i] = e.ID
	}
	return out
}
