package shipper

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand"
	"sync"
	"time"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/handygrpc/handygrpc/agent/internal/config"
	"github.com/handygrpc/handygrpc/pkg/client"
	"github.com/handygrpc/handygrpc/pkg/mailbox"
	"github.com/handygrpc/handygrpc/pkg/pump"
	"github.com/handygrpc/handygrpc/pkg/types"
)

const (
	backoffInitial    = 1 * time.Second
	backoffMax        = 60 * time.Second
	backoffMultiplier = 2.0
	maxUnaryAttempts  = 5
)

// ErrNotStarted is returned by Ship before Start has been called.
var ErrNotStarted = errors.New("shipper: stream not started")

// Shipper delivers payloads to handygrpc-server. Unary sends go straight
// out through the chunked unary path; Ship queues payloads in a mailbox
// drained by the Transfer stream once Start has been called.
type Shipper struct {
	cfg    config.AgentConfig
	client *client.Client
	log    *slog.Logger

	retryInitial time.Duration // injectable for tests

	mu   sync.Mutex
	mb   *mailbox.Mailbox
	pump *pump.Pump
}

// New validates cfg and creates a Shipper whose connection is opened on
// first use. extra options are applied after the ones derived from cfg.
func New(cfg config.AgentConfig, extra ...client.Option) (*Shipper, error) {
	log := slog.Default()
	opts, err := clientOptions(cfg, log)
	if err != nil {
		return nil, err
	}
	c, err := client.ConnectLazy(cfg.ServerEndpoint, append(opts, extra...)...)
	if err != nil {
		return nil, fmt.Errorf("shipper: %w", err)
	}
	return &Shipper{
		cfg:          cfg,
		client:       c,
		log:          log,
		retryInitial: backoffInitial,
	}, nil
}

// SendUnary delivers data over the unary path and returns the server's
// response payload. Transient failures are retried with truncated
// exponential backoff up to maxUnaryAttempts; permanent ones return at once.
func (s *Shipper) SendUnary(ctx context.Context, data []byte, p types.Priority) ([]byte, error) {
	bo := newBackoff(s.retryInitial)
	for attempt := 1; ; attempt++ {
		resp, err := s.client.SendPriority(ctx, data, p)
		if err == nil {
			return resp, nil
		}
		if isPermanentError(err) || attempt == maxUnaryAttempts || ctx.Err() != nil {
			return nil, err
		}

		wait := bo.next()
		s.log.Warn("shipper: send failed, will retry",
			"endpoint", s.cfg.ServerEndpoint,
			"attempt", attempt,
			"err", err,
			"retry_in", wait)
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(wait):
		}
	}
}

// Start opens the mailbox and its Transfer pump. It is a no-op when already
// started.
func (s *Shipper) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.mb != nil {
		return nil
	}
	mb, p, err := s.client.TransferStart(ctx, s.cfg.QueueCapacity)
	if err != nil {
		return fmt.Errorf("shipper: start transfer: %w", err)
	}
	s.mb, s.pump = mb, p
	s.log.Info("shipper: transfer started",
		"endpoint", s.cfg.ServerEndpoint,
		"queue_capacity", s.cfg.QueueCapacity)
	return nil
}

func (s *Shipper) active() (*mailbox.Mailbox, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.mb == nil {
		return nil, ErrNotStarted
	}
	return s.mb, nil
}

// Ship queues data at priority p, waiting while the queue is full.
func (s *Shipper) Ship(ctx context.Context, data []byte, p types.Priority) error {
	mb, err := s.active()
	if err != nil {
		return err
	}
	return mb.SendPriority(ctx, data, p)
}

// TryShip queues data without waiting. A full queue returns a mailbox
// SendError carrying the bytes that were not queued.
func (s *Shipper) TryShip(data []byte, p types.Priority) error {
	mb, err := s.active()
	if err != nil {
		return err
	}
	err = mb.TrySendPriority(data, p)
	if errors.Is(err, mailbox.ErrFull) {
		s.log.Warn("shipper: queue full", "queue_len", mb.QueueLen(), "capacity", mb.Capacity())
	}
	return err
}

// QueueLen returns the current mailbox depth, or 0 before Start.
func (s *Shipper) QueueLen() int {
	mb, err := s.active()
	if err != nil {
		return 0
	}
	return mb.QueueLen()
}

// Close stops accepting payloads, waits until the pump has drained what is
// queued or ctx ends, then closes the connection. When ctx ends first the
// pump is stopped and the remaining queue is dropped.
func (s *Shipper) Close(ctx context.Context) error {
	s.mu.Lock()
	mb, p := s.mb, s.pump
	s.mu.Unlock()

	var err error
	if mb != nil {
		mb.Close()
		if err = p.Wait(ctx); err != nil {
			s.log.Warn("shipper: drain interrupted, dropping queue",
				"queue_len", mb.QueueLen(), "err", err)
			p.Stop()
		}
	}
	if cerr := s.client.Close(); cerr != nil && err == nil {
		err = cerr
	}
	return err
}

// isPermanentError returns true for gRPC errors that indicate the payload
// itself or the credentials are invalid and should not be retried.
func isPermanentError(err error) bool {
	if errors.Is(err, client.ErrTimeout) {
		return true
	}
	switch status.Code(err) {
	case codes.InvalidArgument, codes.Unauthenticated, codes.PermissionDenied, codes.ResourceExhausted:
		return true
	}
	return false
}

// backoff implements truncated exponential backoff with jitter.
type backoff struct {
	current time.Duration
}

func newBackoff(initial time.Duration) *backoff {
	return &backoff{current: initial}
}

// next returns the current backoff duration and advances the internal state.
func (b *backoff) next() time.Duration {
	d := b.current
	// Apply ±25 % jitter.
	jitter := time.Duration(float64(b.current) * 0.25 * (rand.Float64()*2 - 1)) //nolint:gosec // not crypto
	d += jitter
	if d < 0 {
		d = 0
	}

	// Advance for next call.
	b.current = time.Duration(float64(b.current) * backoffMultiplier)
	if b.current > backoffMax {
		b.current = backoffMax
	}
	return d
}
