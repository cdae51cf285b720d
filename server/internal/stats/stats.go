package stats

import (
	"log/slog"
	"net/http"
	"sync/atomic"

	dto "github.com/prometheus/client_model/go"
	"github.com/prometheus/common/expfmt"
	"google.golang.org/protobuf/proto"
)

// Metric names exposed at /metrics.
const (
	MetricMessages  = "handygrpc_messages_received_total"
	MetricChunks    = "handygrpc_chunks_received_total"
	MetricPayloads  = "handygrpc_payloads_completed_total"
	MetricBytes     = "handygrpc_payload_bytes_total"
	MetricRejected  = "handygrpc_messages_rejected_total"
	MetricEvictions = "handygrpc_partial_evictions_total"
	MetricStreams   = "handygrpc_streams_active"
	MetricPending   = "handygrpc_partials_pending"
)

// RPC label values.
const (
	RPCSend     = "send"
	RPCTransfer = "transfer"
)

type rpcCounters struct {
	messages atomic.Uint64
	chunks   atomic.Uint64
	rejected atomic.Uint64
}

// Stats holds receiver counters. The zero value is not usable; call New.
type Stats struct {
	send     rpcCounters
	transfer rpcCounters

	payloads  atomic.Uint64
	bytes     atomic.Uint64
	evictions atomic.Uint64
	streams   atomic.Int64

	pending func() int
}

// New returns a Stats whose pending gauge is read from pending at scrape
// time. pending may be nil.
func New(pending func() int) *Stats {
	return &Stats{pending: pending}
}

func (s *Stats) rpc(name string) *rpcCounters {
	if name == RPCTransfer {
		return &s.transfer
	}
	return &s.send
}

// Message records one received message on rpc.
func (s *Stats) Message(rpc string, chunked bool) {
	c := s.rpc(rpc)
	c.messages.Add(1)
	if chunked {
		c.chunks.Add(1)
	}
}

// Rejected records a malformed message on rpc.
func (s *Stats) Rejected(rpc string) {
	s.rpc(rpc).rejected.Add(1)
}

// Payload records one complete payload of n bytes.
func (s *Stats) Payload(n int) {
	s.payloads.Add(1)
	s.bytes.Add(uint64(n))
}

// Evicted records an incomplete payload dropped by the reassembly store.
func (s *Stats) Evicted() {
	s.evictions.Add(1)
}

// StreamOpened and StreamClosed track active Transfer streams.
func (s *Stats) StreamOpened() { s.streams.Add(1) }

func (s *Stats) StreamClosed() { s.streams.Add(-1) }

// Totals is a point-in-time copy of the counters, summed over both rpcs.
type Totals struct {
	Messages  uint64
	Chunks    uint64
	Rejected  uint64
	Payloads  uint64
	Bytes     uint64
	Evictions uint64
	Streams   int64
	Pending   int
}

// Totals returns the current counter values.
func (s *Stats) Totals() Totals {
	t := Totals{
		Messages:  s.send.messages.Load() + s.transfer.messages.Load(),
		Chunks:    s.send.chunks.Load() + s.transfer.chunks.Load(),
		Rejected:  s.send.rejected.Load() + s.transfer.rejected.Load(),
		Payloads:  s.payloads.Load(),
		Bytes:     s.bytes.Load(),
		Evictions: s.evictions.Load(),
		Streams:   s.streams.Load(),
	}
	if s.pending != nil {
		t.Pending = s.pending()
	}
	return t
}

// Families returns the current values as metric families.
func (s *Stats) Families() []*dto.MetricFamily {
	perRPC := func(name, help string, get func(*rpcCounters) uint64) *dto.MetricFamily {
		return &dto.MetricFamily{
			Name: proto.String(name),
			Help: proto.String(help),
			Type: dto.MetricType_COUNTER.Enum(),
			Metric: []*dto.Metric{
				counter(float64(get(&s.send)), RPCSend),
				counter(float64(get(&s.transfer)), RPCTransfer),
			},
		}
	}
	single := func(name, help string, typ dto.MetricType, v float64) *dto.MetricFamily {
		m := &dto.Metric{}
		if typ == dto.MetricType_GAUGE {
			m.Gauge = &dto.Gauge{Value: proto.Float64(v)}
		} else {
			m.Counter = &dto.Counter{Value: proto.Float64(v)}
		}
		return &dto.MetricFamily{
			Name:   proto.String(name),
			Help:   proto.String(help),
			Type:   typ.Enum(),
			Metric: []*dto.Metric{m},
		}
	}

	pending := 0
	if s.pending != nil {
		pending = s.pending()
	}

	return []*dto.MetricFamily{
		perRPC(MetricMessages, "Messages received.", func(c *rpcCounters) uint64 { return c.messages.Load() }),
		perRPC(MetricChunks, "Chunk messages received.", func(c *rpcCounters) uint64 { return c.chunks.Load() }),
		perRPC(MetricRejected, "Malformed messages rejected.", func(c *rpcCounters) uint64 { return c.rejected.Load() }),
		single(MetricPayloads, "Payloads delivered after reassembly.", dto.MetricType_COUNTER, float64(s.payloads.Load())),
		single(MetricBytes, "Bytes in delivered payloads.", dto.MetricType_COUNTER, float64(s.bytes.Load())),
		single(MetricEvictions, "Incomplete payloads dropped by TTL or capacity.", dto.MetricType_COUNTER, float64(s.evictions.Load())),
		single(MetricStreams, "Transfer streams currently open.", dto.MetricType_GAUGE, float64(s.streams.Load())),
		single(MetricPending, "Incomplete payloads awaiting chunks.", dto.MetricType_GAUGE, float64(pending)),
	}
}

func counter(v float64, rpc string) *dto.Metric {
	return &dto.Metric{
		Label:   []*dto.LabelPair{{Name: proto.String("rpc"), Value: proto.String(rpc)}},
		Counter: &dto.Counter{Value: proto.Float64(v)},
	}
}

// ServeHTTP writes the metric families in the negotiated exposition format.
func (s *Stats) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	format := expfmt.Negotiate(r.Header)
	w.Header().Set("Content-Type", string(format))

	enc := expfmt.NewEncoder(w, format)
	for _, mf := range s.Families() {
		if err := enc.Encode(mf); err != nil {
			slog.Warn("stats: encode metric family", "name", mf.GetName(), "err", err)
			return
		}
	}
}
