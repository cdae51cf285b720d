package receiver

import (
	"context"
	"errors"
	"io"
	"log/slog"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/handygrpc/handygrpc/pkg/chunk"
	"github.com/handygrpc/handygrpc/pkg/transferpb"
	"github.com/handygrpc/handygrpc/server/internal/stats"
	"github.com/handygrpc/handygrpc/server/internal/store"
)

// Payload is one complete logical message.
type Payload struct {
	ID       uint64
	Priority uint32
	Data     []byte
	// RPC is stats.RPCSend or stats.RPCTransfer.
	RPC string
}

// Handler consumes a complete payload. The returned bytes become the data
// of the Send response; a nil result leaves the response data absent.
// Results are discarded for Transfer.
type Handler func(ctx context.Context, p Payload) ([]byte, error)

// Receiver implements transferpb.DataTransferServer.
// It reassembles chunked payloads and hands complete ones to a Handler.
type Receiver struct {
	transferpb.UnimplementedDataTransferServer
	store  *store.Store
	stats  *stats.Stats
	handle Handler
}

// New creates a Receiver that buffers partial payloads in st, counts traffic
// in sc and delivers complete payloads to handle.
func New(st *store.Store, sc *stats.Stats, handle Handler) *Receiver {
	return &Receiver{store: st, stats: sc, handle: handle}
}

// Send is the unary RPC handler. Unchunked messages are delivered at once;
// a chunk is buffered and answered without data until its payload
// completes, at which point the handler result is returned.
// Authentication is enforced by the gRPC server interceptor before this is called.
func (r *Receiver) Send(ctx context.Context, m *transferpb.Message) (*transferpb.Message, error) {
	out, err := r.accept(ctx, m, stats.RPCSend)
	if err != nil {
		return nil, err
	}
	return &transferpb.Message{Id: m.Id, Priority: m.Priority, Data: out}, nil
}

// Transfer is the client-streaming RPC handler. It feeds every message
// through the same path as Send and acknowledges with Empty once the client
// closes its side.
func (r *Receiver) Transfer(stream transferpb.DataTransfer_TransferServer) error {
	r.stats.StreamOpened()
	defer r.stats.StreamClosed()

	ctx := stream.Context()
	n := 0
	for {
		m, err := stream.Recv()
		if errors.Is(err, io.EOF) {
			slog.Debug("receiver: transfer closed by client", "messages", n)
			return stream.SendAndClose(&transferpb.Empty{})
		}
		if err != nil {
			slog.Debug("receiver: transfer aborted", "messages", n, "err", err)
			return err
		}
		n++
		if _, err := r.accept(ctx, m, stats.RPCTransfer); err != nil {
			return err
		}
	}
}

// accept records m and, when it completes a payload, runs the handler.
func (r *Receiver) accept(ctx context.Context, m *transferpb.Message, rpc string) ([]byte, error) {
	if err := chunk.Validate(m); err != nil {
		r.stats.Rejected(rpc)
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}
	r.stats.Message(rpc, m.Chunked())

	data := m.GetData()
	if m.Chunked() {
		payload, done, err := r.store.Add(m)
		if err != nil {
			r.stats.Rejected(rpc)
			slog.Warn("receiver: chunk rejected", "id", m.Id, "rpc", rpc, "err", err)
			return nil, status.Error(codes.InvalidArgument, err.Error())
		}
		if !done {
			return nil, nil
		}
		data = payload
	}
	if data == nil {
		data = []byte{}
	}
	r.stats.Payload(len(data))

	slog.Debug("receiver: payload complete",
		"id", m.Id,
		"priority", m.Priority,
		"bytes", len(data),
		"rpc", rpc,
	)

	out, err := r.handle(ctx, Payload{ID: m.Id, Priority: m.Priority, Data: data, RPC: rpc})
	if err != nil {
		slog.Error("receiver: handler failed", "id", m.Id, "err", err)
		return nil, status.Error(codes.Internal, "payload handler failed")
	}
	return out, nil
}
