package pump

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/handygrpc/handygrpc/pkg/pqueue"
	"github.com/handygrpc/handygrpc/pkg/transferpb"
)

var quiet = slog.New(slog.NewTextHandler(io.Discard, nil))

func newQueue(t *testing.T, capacity int, payloads ...string) *pqueue.Queue[*transferpb.Message] {
	t.Helper()
	q := pqueue.New[*transferpb.Message](capacity)
	for i, s := range payloads {
		require.NoError(t, q.TryEnqueue(0, &transferpb.Message{Id: uint64(i + 1), Data: []byte(s)}))
	}
	return q
}

// recorder is a StreamFunc whose behaviour is scripted per attempt.
type recorder struct {
	mu       sync.Mutex
	attempts [][]string
	script   []func(ctx context.Context, rx *Receiver, got *[]string) error
}

func (r *recorder) stream(ctx context.Context, rx *Receiver) error {
	r.mu.Lock()
	n := len(r.attempts)
	r.attempts = append(r.attempts, nil)
	fn := r.script[len(r.script)-1]
	if n < len(r.script) {
		fn = r.script[n]
	}
	r.mu.Unlock()

	var got []string
	err := fn(ctx, rx, &got)

	r.mu.Lock()
	r.attempts[n] = got
	r.mu.Unlock()
	return err
}

func (r *recorder) calls() [][]string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([][]string(nil), r.attempts...)
}

func receiveN(n int, then error) func(context.Context, *Receiver, *[]string) error {
	return func(ctx context.Context, rx *Receiver, got *[]string) error {
		for i := 0; i < n; i++ {
			m, err := rx.Recv(ctx)
			if err != nil {
				return err
			}
			*got = append(*got, string(m.Data))
		}
		return then
	}
}

func receiveAll(ctx context.Context, rx *Receiver, got *[]string) error {
	for {
		m, err := rx.Recv(ctx)
		if errors.Is(err, ErrClosed) {
			return nil
		}
		if err != nil {
			return err
		}
		*got = append(*got, string(m.Data))
	}
}

func waitDone(t *testing.T, p *Pump) {
	t.Helper()
	select {
	case <-p.Done():
	case <-time.After(3 * time.Second):
		t.Fatalf("pump did not exit, state %v", p.State())
	}
}

func TestPump_RetriesAfterFailureWithoutLosingQueuedMessages(t *testing.T) {
	q := newQueue(t, 10, "m1", "m2", "m3", "m4", "m5")
	q.Close()

	rec := &recorder{script: []func(context.Context, *Receiver, *[]string) error{
		receiveN(1, errors.New("connection reset")),
		receiveAll,
	}}
	p := New("test", NewReceiver(q), rec.stream, WithBackoff(10*time.Millisecond), WithLogger(quiet))
	require.NoError(t, p.Start(context.Background()))
	waitDone(t, p)

	calls := rec.calls()
	require.Len(t, calls, 2)
	// m1 was in flight when the first stream failed and is gone.
	require.Equal(t, []string{"m1"}, calls[0])
	require.Equal(t, []string{"m2", "m3", "m4", "m5"}, calls[1])
	require.Equal(t, uint64(2), p.Attempts())
	require.Equal(t, uint64(1), p.Failures())
	require.Equal(t, StateExited, p.State())
}

func TestPump_FixedBackoffBetweenFailures(t *testing.T) {
	q := newQueue(t, 1)
	const backoff = 40 * time.Millisecond

	var mu sync.Mutex
	var at []time.Time
	failing := func(ctx context.Context, rx *Receiver) error {
		mu.Lock()
		at = append(at, time.Now())
		mu.Unlock()
		return errors.New("unavailable")
	}

	p := New("test", NewReceiver(q), failing, WithBackoff(backoff), WithLogger(quiet))
	require.NoError(t, p.Start(context.Background()))

	require.Eventually(t, func() bool { return p.Failures() >= 4 }, 3*time.Second, 5*time.Millisecond)
	p.Stop()
	require.Equal(t, StateExited, p.State())

	mu.Lock()
	defer mu.Unlock()
	for i := 1; i < len(at); i++ {
		gap := at[i].Sub(at[i-1])
		require.GreaterOrEqual(t, gap, backoff, "gap %d", i)
		require.Less(t, gap, 10*backoff, "gap %d grew", i)
	}
}

func TestPump_CleanCompletionExitsEvenWithQueuedWork(t *testing.T) {
	q := newQueue(t, 10, "a", "b", "c")

	rec := &recorder{script: []func(context.Context, *Receiver, *[]string) error{
		receiveN(1, nil),
	}}
	p := New("test", NewReceiver(q), rec.stream, WithBackoff(time.Millisecond), WithLogger(quiet))
	require.NoError(t, p.Start(context.Background()))
	waitDone(t, p)

	require.Len(t, rec.calls(), 1)
	require.Equal(t, 2, q.Len())
	require.False(t, q.IsClosed())
}

func TestPump_ExitsWhenQueueClosedAndDrained(t *testing.T) {
	q := newQueue(t, 10, "x", "y")

	rec := &recorder{script: []func(context.Context, *Receiver, *[]string) error{receiveAll}}
	p := New("test", NewReceiver(q), rec.stream, WithLogger(quiet))
	require.NoError(t, p.Start(context.Background()))

	require.Eventually(t, func() bool { return q.Len() == 0 }, 2*time.Second, 5*time.Millisecond)
	require.Equal(t, StateStreaming, p.State())

	q.Close()
	waitDone(t, p)
	require.Equal(t, [][]string{{"x", "y"}}, rec.calls())
}

func TestPump_StopInterruptsIdleStream(t *testing.T) {
	q := newQueue(t, 4)
	rec := &recorder{script: []func(context.Context, *Receiver, *[]string) error{receiveAll}}
	p := New("test", NewReceiver(q), rec.stream, WithLogger(quiet))

	p.Stop() // not started: no-op
	require.NoError(t, p.Start(context.Background()))
	require.ErrorIs(t, p.Start(context.Background()), ErrStarted)

	require.Eventually(t, func() bool { return p.State() == StateStreaming }, time.Second, time.Millisecond)
	p.Stop()
	require.Equal(t, StateExited, p.State())

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, p.Wait(ctx))
}

func TestPump_ExitsImmediatelyOnDrainedQueue(t *testing.T) {
	q := newQueue(t, 1)
	q.Close()

	called := false
	p := New("test", NewReceiver(q), func(context.Context, *Receiver) error {
		called = true
		return nil
	}, WithLogger(quiet))
	require.NoError(t, p.Start(context.Background()))
	waitDone(t, p)
	require.False(t, called)
	require.Zero(t, p.Attempts())
}

func TestReceiver_SinglePollerAndClosed(t *testing.T) {
	q := newQueue(t, 4, "only")
	rx := NewReceiver(q)
	require.False(t, rx.Closed())
	require.Equal(t, 1, rx.Len())

	m, err := rx.Recv(context.Background())
	require.NoError(t, err)
	require.Equal(t, "only", string(m.Data))

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err = rx.Recv(ctx)
	require.ErrorIs(t, err, context.DeadlineExceeded)

	q.Close()
	require.True(t, rx.Closed())
	_, err = rx.Recv(context.Background())
	require.ErrorIs(t, err, ErrClosed)
}

func TestState_String(t *testing.T) {
	require.Equal(t, "backoff", StateBackoff.String())
	require.Equal(t, "State(42)", State(42).String())
}
