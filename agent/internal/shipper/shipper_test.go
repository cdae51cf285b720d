package shipper

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net"
	"sync"
	"testing"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/handygrpc/handygrpc/agent/internal/config"
	"github.com/handygrpc/handygrpc/pkg/client"
	"github.com/handygrpc/handygrpc/pkg/mailbox"
	"github.com/handygrpc/handygrpc/pkg/transferpb"
	"github.com/handygrpc/handygrpc/pkg/types"
)

// mockServer implements DataTransferServer for testing.
type mockServer struct {
	transferpb.UnimplementedDataTransferServer
	mu       sync.Mutex
	received []*transferpb.Message
	failN    int        // fail the first N unary calls
	failCode codes.Code // code used for those failures
	calls    int
}

func (m *mockServer) Send(_ context.Context, msg *transferpb.Message) (*transferpb.Message, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++

	if m.failN > 0 {
		m.failN--
		return nil, status.Error(m.failCode, "mock failure")
	}

	m.received = append(m.received, msg)
	return &transferpb.Message{Id: msg.Id, Data: []byte("ack")}, nil
}

func (m *mockServer) Transfer(stream transferpb.DataTransfer_TransferServer) error {
	for {
		msg, err := stream.Recv()
		if errors.Is(err, io.EOF) {
			return stream.SendAndClose(&transferpb.Empty{})
		}
		if err != nil {
			return err
		}
		m.mu.Lock()
		m.received = append(m.received, msg)
		m.mu.Unlock()
	}
}

func (m *mockServer) messages() []*transferpb.Message {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*transferpb.Message, len(m.received))
	copy(out, m.received)
	return out
}

// startTestServer starts an in-process gRPC server and returns its address.
func startTestServer(t *testing.T, srv *mockServer) string {
	t.Helper()

	lis, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}

	gs := grpc.NewServer()
	transferpb.RegisterDataTransferServer(gs, srv)

	go func() {
		// Serve returns an error on teardown; nothing to report.
		_ = gs.Serve(lis)
	}()
	t.Cleanup(gs.Stop)

	return lis.Addr().String()
}

func agentCfg(endpoint string) config.AgentConfig {
	return config.AgentConfig{
		ServerEndpoint:   endpoint,
		ConcurrencyLimit: 4,
		ConnectTimeout:   time.Second,
		Timeout:          2 * time.Second,
		ChunkSize:        8,
		QueueCapacity:    16,
		PumpBackoff:      20 * time.Millisecond,
	}
}

func newShipper(t *testing.T, cfg config.AgentConfig) *Shipper {
	t.Helper()
	s, err := New(cfg, client.WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	s.retryInitial = 5 * time.Millisecond
	return s
}

// --- Tests ---

func TestShipper_SendUnaryChunked(t *testing.T) {
	srv := &mockServer{}
	s := newShipper(t, agentCfg(startTestServer(t, srv)))
	defer s.Close(context.Background())

	resp, err := s.SendUnary(context.Background(), []byte("0123456789abcdefXYZ"), 2)
	if err != nil {
		t.Fatalf("SendUnary: %v", err)
	}
	if string(resp) != "ack" {
		t.Errorf("resp = %q, want ack", resp)
	}
	msgs := srv.messages()
	if len(msgs) != 3 {
		t.Fatalf("server received %d chunks, want 3", len(msgs))
	}
	for i, m := range msgs {
		if m.ChunkIndex != uint32(i) || m.TotalChunks != 3 || m.Priority != 2 {
			t.Errorf("chunk %d = %v", i, m)
		}
	}
}

func TestShipper_SendUnaryRetriesTransient(t *testing.T) {
	srv := &mockServer{failN: 2, failCode: codes.Unavailable}
	s := newShipper(t, agentCfg(startTestServer(t, srv)))
	defer s.Close(context.Background())

	if _, err := s.SendUnary(context.Background(), []byte("hi"), types.MinPriority); err != nil {
		t.Fatalf("SendUnary: %v", err)
	}
	if srv.calls != 3 {
		t.Errorf("calls = %d, want 3", srv.calls)
	}
}

func TestShipper_SendUnaryPermanentNotRetried(t *testing.T) {
	srv := &mockServer{failN: 10, failCode: codes.Unauthenticated}
	s := newShipper(t, agentCfg(startTestServer(t, srv)))
	defer s.Close(context.Background())

	_, err := s.SendUnary(context.Background(), []byte("hi"), types.MinPriority)
	if code := status.Code(err); code != codes.Unauthenticated {
		t.Fatalf("code = %v, want Unauthenticated", code)
	}
	if srv.calls != 1 {
		t.Errorf("calls = %d, want 1", srv.calls)
	}
}

func TestShipper_SendUnaryGivesUp(t *testing.T) {
	srv := &mockServer{failN: 100, failCode: codes.Unavailable}
	s := newShipper(t, agentCfg(startTestServer(t, srv)))
	defer s.Close(context.Background())

	if _, err := s.SendUnary(context.Background(), []byte("hi"), types.MinPriority); err == nil {
		t.Fatal("expected error, got nil")
	}
	if srv.calls != maxUnaryAttempts {
		t.Errorf("calls = %d, want %d", srv.calls, maxUnaryAttempts)
	}
}

func TestShipper_StreamDeliversAndDrainsOnClose(t *testing.T) {
	srv := &mockServer{}
	s := newShipper(t, agentCfg(startTestServer(t, srv)))

	if err := s.Ship(context.Background(), []byte("x"), 0); !errors.Is(err, ErrNotStarted) {
		t.Fatalf("Ship before Start: err = %v, want ErrNotStarted", err)
	}

	ctx := context.Background()
	if err := s.Start(ctx); err != nil {
		t.Fatalf("Start: %v", err)
	}
	if err := s.Start(ctx); err != nil {
		t.Fatalf("second Start: %v", err)
	}
	for i := 0; i < 5; i++ {
		if err := s.Ship(ctx, []byte("payload"), types.MinPriority); err != nil {
			t.Fatalf("Ship: %v", err)
		}
	}
	if err := s.TryShip([]byte("quick"), types.MaxPriority); err != nil {
		t.Fatalf("TryShip: %v", err)
	}

	closeCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := s.Close(closeCtx); err != nil {
		t.Fatalf("Close: %v", err)
	}

	if got := len(srv.messages()); got != 6 {
		t.Errorf("server received %d messages, want 6", got)
	}
	if err := s.TryShip([]byte("late"), 0); !errors.Is(err, mailbox.ErrDisconnected) {
		t.Errorf("TryShip after Close: err = %v, want ErrDisconnected", err)
	}
}

func TestShipper_TryShipFull(t *testing.T) {
	// Nothing listens here, so the pump never drains the queue.
	lis, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	addr := lis.Addr().String()
	lis.Close()

	cfg := agentCfg(addr)
	cfg.QueueCapacity = 2
	cfg.PumpBackoff = time.Hour
	s := newShipper(t, cfg)

	if err := s.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}
	// The pump may hold one message in a failed stream; fill until full.
	var full error
	for i := 0; i < 5 && full == nil; i++ {
		full = s.TryShip([]byte("x"), 0)
	}
	if !errors.Is(full, mailbox.ErrFull) {
		t.Fatalf("err = %v, want ErrFull", full)
	}
	if unsent, ok := mailbox.Unsent(full); !ok || string(unsent) != "x" {
		t.Errorf("unsent = %q, %v", unsent, ok)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	if err := s.Close(ctx); !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("Close: err = %v, want DeadlineExceeded", err)
	}
}

func TestNew_EmptyTokenEnv(t *testing.T) {
	cfg := agentCfg("127.0.0.1:1")
	cfg.Auth.TokenEnv = "SHIPPER_TEST_TOKEN_UNSET"
	if _, err := New(cfg); err == nil {
		t.Fatal("expected error for unset token variable, got nil")
	}
}

func TestIsPermanentError(t *testing.T) {
	cases := map[error]bool{
		status.Error(codes.Unavailable, "x"):      false,
		status.Error(codes.DeadlineExceeded, "x"): false,
		status.Error(codes.InvalidArgument, "x"):  true,
		client.ErrTimeout:                         true,
	}
	for err, want := range cases {
		if got := isPermanentError(err); got != want {
			t.Errorf("isPermanentError(%v) = %v, want %v", err, got, want)
		}
	}
}

func TestBackoff_Grows(t *testing.T) {
	b := newBackoff(backoffInitial)
	first := b.next()
	if first > 2*time.Second {
		t.Errorf("first backoff too large: %v", first)
	}
	b.next()
	third := b.next()
	if third < 3*time.Second {
		t.Errorf("third backoff too small: %v", third)
	}
}

func TestBackoff_NeverExceedsMax(t *testing.T) {
	b := newBackoff(backoffInitial)
	for i := 0; i < 50; i++ {
		d := b.next()
		// With jitter, max is backoffMax * 1.25
		if d > backoffMax*2 {
			t.Errorf("backoff[%d] = %v, exceeds 2×max", i, d)
		}
	}
}
