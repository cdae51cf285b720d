package scraper

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"sort"
	"time"

	dto "github.com/prometheus/client_model/go"
)

// Receiver metric names. They mirror what handygrpc-server exposes.
const (
	metricMessages  = "handygrpc_messages_received_total"
	metricChunks    = "handygrpc_chunks_received_total"
	metricPayloads  = "handygrpc_payloads_completed_total"
	metricBytes     = "handygrpc_payload_bytes_total"
	metricRejected  = "handygrpc_messages_rejected_total"
	metricEvictions = "handygrpc_partial_evictions_total"
	metricStreams   = "handygrpc_streams_active"
	metricPending   = "handygrpc_partials_pending"

	rpcLabel = "rpc"
)

// RPCCounts are the per-rpc message counters.
type RPCCounts struct {
	Messages float64
	Chunks   float64
	Rejected float64
}

// Status is one snapshot of the receiver's counters.
type Status struct {
	ScrapedAt time.Time

	// RPC is keyed by the rpc label value ("send", "transfer").
	RPC map[string]RPCCounts

	Payloads  float64
	Bytes     float64
	Evictions float64
	Streams   float64
	Pending   float64
}

// Scrape fetches url and folds the receiver families into a Status.
func Scrape(ctx context.Context, client *http.Client, url string) (*Status, error) {
	mfs, err := fetchMetrics(ctx, client, url)
	if err != nil {
		return nil, fmt.Errorf("scraper: %s: %w", url, err)
	}

	st := &Status{
		ScrapedAt: time.Now().UTC(),
		RPC:       make(map[string]RPCCounts),
		Payloads:  sumFamily(mfs[metricPayloads]),
		Bytes:     sumFamily(mfs[metricBytes]),
		Evictions: sumFamily(mfs[metricEvictions]),
		Streams:   sumFamily(mfs[metricStreams]),
		Pending:   sumFamily(mfs[metricPending]),
	}
	for _, rpc := range rpcNames(mfs[metricMessages].GetMetric()) {
		st.RPC[rpc] = RPCCounts{
			Messages: sumWhere(mfs[metricMessages], rpcLabel, rpc),
			Chunks:   sumWhere(mfs[metricChunks], rpcLabel, rpc),
			Rejected: sumWhere(mfs[metricRejected], rpcLabel, rpc),
		}
	}
	return st, nil
}

// WriteTo prints the status as aligned key/value lines.
func (s *Status) WriteTo(w io.Writer) (int64, error) {
	var n int64
	line := func(format string, args ...any) error {
		k, err := fmt.Fprintf(w, format, args...)
		n += int64(k)
		return err
	}

	rpcs := make([]string, 0, len(s.RPC))
	for name := range s.RPC {
		rpcs = append(rpcs, name)
	}
	sort.Strings(rpcs)

	for _, name := range rpcs {
		c := s.RPC[name]
		if err := line("%-10s messages=%.0f chunks=%.0f rejected=%.0f\n", name, c.Messages, c.Chunks, c.Rejected); err != nil {
			return n, err
		}
	}
	err := line("payloads   %.0f (%.0f bytes)\nstreams    %.0f active\npartials   %.0f pending, %.0f evicted\n",
		s.Payloads, s.Bytes, s.Streams, s.Pending, s.Evictions)
	return n, err
}

func rpcNames(ms []*dto.Metric) []string {
	seen := make(map[string]struct{})
	var names []string
	for _, m := range ms {
		for _, lp := range m.GetLabel() {
			if lp.GetName() != rpcLabel {
				continue
			}
			if _, ok := seen[lp.GetValue()]; !ok {
				seen[lp.GetValue()] = struct{}{}
				names = append(names, lp.GetValue())
			}
		}
	}
	sort.Strings(names)
	return names
}
