package client

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/handygrpc/handygrpc/pkg/mailbox"
	"github.com/handygrpc/handygrpc/pkg/pump"
	"github.com/handygrpc/handygrpc/pkg/transferpb"
)

// TransferStart creates a bounded priority queue of queueCap entries, starts
// a pump feeding it into the Transfer stream and returns the Mailbox that
// writes into it. Closing every Mailbox handle lets the pump drain the queue
// and exit; Stop on the returned pump ends it early. Cancelling ctx stops the
// pump as well.
func (c *Client) TransferStart(ctx context.Context, queueCap int) (*mailbox.Mailbox, *pump.Pump, error) {
	q := mailbox.NewQueue(queueCap)
	mb := mailbox.New(q, q.Cap(), c.opts.ChunkSize, c.opts.IDs)

	p := pump.New(c.addr, pump.NewReceiver(q), c.transfer,
		pump.WithBackoff(c.opts.PumpBackoff),
		pump.WithLogger(c.log))
	if err := p.Start(ctx); err != nil {
		return nil, nil, err
	}
	c.log.Debug("client: transfer started", "addr", c.addr, "queue_cap", q.Cap())
	return mb, p, nil
}

// transfer runs one Transfer stream fed from rx. It returns nil when the
// queue is closed and drained and the server accepted the stream, or when
// the server ended the stream cleanly on its own.
func (c *Client) transfer(ctx context.Context, rx *pump.Receiver) error {
	ctx, cancel := context.WithCancel(c.decorate(ctx))
	defer cancel()

	stream, err := c.api.Transfer(ctx)
	if err != nil {
		return fmt.Errorf("client: open transfer: %w", err)
	}

	// The server only answers a client stream when it ends the call, so a
	// pending RecvMsg notices a dead stream while the queue is idle. live is
	// cancelled as soon as that happens and nothing more is dequeued.
	live, stopLive := context.WithCancel(ctx)
	defer stopLive()
	ended := make(chan error, 1)
	go func() {
		ended <- stream.RecvMsg(new(transferpb.Empty))
		stopLive()
	}()

	for {
		if live.Err() != nil {
			return streamEnded(ctx, ended)
		}
		msg, err := rx.Recv(live)
		if errors.Is(err, pump.ErrClosed) {
			if err := stream.CloseSend(); err != nil {
				return fmt.Errorf("client: close transfer: %w", err)
			}
			if err := <-ended; err != nil && !errors.Is(err, io.EOF) {
				return fmt.Errorf("client: close transfer: %w", err)
			}
			return nil
		}
		if err != nil {
			return streamEnded(ctx, ended)
		}

		if err := stream.Send(msg); err != nil {
			if !errors.Is(err, io.EOF) {
				return fmt.Errorf("client: transfer send: %w", err)
			}
			// The server has finished the call; its status says how.
			return streamEnded(ctx, ended)
		}
	}
}

// streamEnded reports why the stream stopped: ctx's error when the caller
// cancelled, otherwise the status the server closed the call with.
func streamEnded(ctx context.Context, ended <-chan error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := <-ended; err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("client: transfer ended: %w", err)
	}
	return nil
}
