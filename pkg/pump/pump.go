package pump

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"
)

// DefaultBackoff is the fixed wait between failed stream attempts.
const DefaultBackoff = 3 * time.Second

// ErrStarted is returned by Start on a pump that was already started.
var ErrStarted = errors.New("pump: already started")

// State is the pump's position in its reconnect cycle.
type State int32

const (
	StateIdle State = iota
	StateConnecting
	StateStreaming
	StateBackoff
	StateExited
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateConnecting:
		return "connecting"
	case StateStreaming:
		return "streaming"
	case StateBackoff:
		return "backoff"
	case StateExited:
		return "exited"
	default:
		return fmt.Sprintf("State(%d)", int32(s))
	}
}

// StreamFunc performs one streaming call fed from rx. It returns nil when
// the stream completes cleanly and an error when it fails.
type StreamFunc func(ctx context.Context, rx *Receiver) error

// Option configures a Pump.
type Option func(*Pump)

// WithBackoff overrides DefaultBackoff.
func WithBackoff(d time.Duration) Option {
	return func(p *Pump) { p.backoff = d }
}

// WithLogger sets the logger. The default is slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(p *Pump) { p.log = l }
}

// Pump is a supervised goroutine that keeps a stream fed from a Receiver.
type Pump struct {
	addr    string
	rx      *Receiver
	stream  StreamFunc
	backoff time.Duration
	log     *slog.Logger

	state    atomic.Int32
	attempts atomic.Uint64
	failures atomic.Uint64

	mu      sync.Mutex
	started bool
	cancel  context.CancelFunc
	done    chan struct{}
}

// New returns a pump that is not yet running. addr is only used in logs.
func New(addr string, rx *Receiver, stream StreamFunc, opts ...Option) *Pump {
	p := &Pump{
		addr:    addr,
		rx:      rx,
		stream:  stream,
		backoff: DefaultBackoff,
		log:     slog.Default(),
		done:    make(chan struct{}),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Start launches the pump goroutine. Cancelling ctx is equivalent to Stop.
func (p *Pump) Start(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.started {
		return ErrStarted
	}
	p.started = true

	ctx, p.cancel = context.WithCancel(ctx)
	go p.run(ctx)
	return nil
}

// Stop signals the pump to exit and waits until it has. Messages still
// queued are left in place. Stop on a pump that was never started is a no-op.
func (p *Pump) Stop() {
	p.mu.Lock()
	cancel := p.cancel
	p.mu.Unlock()
	if cancel == nil {
		return
	}
	cancel()
	<-p.done
}

// Done is closed when the pump goroutine has exited.
func (p *Pump) Done() <-chan struct{} {
	return p.done
}

// Wait blocks until the pump exits or ctx ends.
func (p *Pump) Wait(ctx context.Context) error {
	select {
	case <-p.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// State returns the current state.
func (p *Pump) State() State {
	return State(p.state.Load())
}

// Attempts returns how many stream calls have been made.
func (p *Pump) Attempts() uint64 {
	return p.attempts.Load()
}

// Failures returns how many stream calls ended in error.
func (p *Pump) Failures() uint64 {
	return p.failures.Load()
}

func (p *Pump) setState(s State) {
	p.state.Store(int32(s))
}

func (p *Pump) run(ctx context.Context) {
	defer close(p.done)
	defer p.setState(StateExited)

	for {
		p.setState(StateConnecting)
		if p.rx.Closed() {
			p.log.Info("pump: queue closed and drained, exiting", "addr", p.addr)
			return
		}
		if ctx.Err() != nil {
			return
		}

		p.attempts.Add(1)
		p.setState(StateStreaming)
		p.log.Debug("pump: calling transfer", "addr", p.addr, "attempt", p.attempts.Load())

		err := p.stream(ctx, p.rx)
		if ctx.Err() != nil {
			p.log.Info("pump: stopped", "addr", p.addr, "queue_len", p.rx.Len())
			return
		}

		if err != nil {
			p.failures.Add(1)
			p.setState(StateBackoff)
			p.log.Warn("pump: transfer failed, will retry",
				"addr", p.addr,
				"err", err,
				"retry_in", p.backoff)

			select {
			case <-ctx.Done():
				return
			case <-time.After(p.backoff):
			}
			continue
		}

		closed := p.rx.Closed()
		p.log.Info("pump: transfer finished", "addr", p.addr, "is_closed", closed)
		if !closed {
			p.log.Warn("pump: stream completed before queue was closed, exiting anyway",
				"addr", p.addr, "queue_len", p.rx.Len())
		}
		return
	}
}
