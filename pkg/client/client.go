package client

import (
	"context"
	"fmt"
	"log/slog"

	"golang.org/x/sync/semaphore"
	"google.golang.org/grpc"
	"google.golang.org/grpc/metadata"

	"github.com/handygrpc/handygrpc/pkg/chunk"
	"github.com/handygrpc/handygrpc/pkg/transferpb"
)

// Client is a connection to a DataTransfer service. It is safe for
// concurrent use.
type Client struct {
	addr string
	opts Options
	conn *grpc.ClientConn
	api  transferpb.DataTransferClient

	// headers are the metadata pairs attached to every outgoing call.
	headers []string
	// sem holds one slot per unary call allowed in flight.
	sem *semaphore.Weighted
	log *slog.Logger
}

// Connect dials addr and waits until the connection is ready or
// ConnectTimeout elapses. Configuration errors are returned before any
// network activity.
func Connect(ctx context.Context, addr string, opts ...Option) (*Client, error) {
	c, dopts, err := prepare(addr, opts)
	if err != nil {
		return nil, err
	}
	if c.opts.ConnectTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.opts.ConnectTimeout)
		defer cancel()
	}
	dopts = append(dopts, grpc.WithBlock()) //nolint:staticcheck // DialContext semantics are needed for an eager connect

	conn, err := grpc.DialContext(ctx, c.addr, dopts...) //nolint:staticcheck // deprecated in 1.63 but DialContext is used for compat
	if err != nil {
		return nil, fmt.Errorf("client: connect %s: %w", c.addr, err)
	}
	c.bind(conn)
	c.log.Info("client: connected", "addr", c.addr, "tls", c.opts.TLS)
	return c, nil
}

// ConnectLazy validates the configuration and returns a client whose
// connection is established on first use.
func ConnectLazy(addr string, opts ...Option) (*Client, error) {
	c, dopts, err := prepare(addr, opts)
	if err != nil {
		return nil, err
	}
	conn, err := grpc.DialContext(context.Background(), c.addr, dopts...) //nolint:staticcheck // deprecated in 1.63 but DialContext is used for compat
	if err != nil {
		return nil, fmt.Errorf("client: dial %s: %w", c.addr, err)
	}
	c.bind(conn)
	return c, nil
}

func prepare(addr string, opts []Option) (*Client, []grpc.DialOption, error) {
	o := defaults()
	for _, opt := range opts {
		opt(&o)
	}
	if o.ConcurrencyLimit < 1 {
		o.ConcurrencyLimit = 1
	}
	if o.ChunkSize < 1 {
		o.ChunkSize = 1
	}
	if o.IDs == nil {
		o.IDs = chunk.Default
	}
	if o.Logger == nil {
		o.Logger = slog.Default()
	}

	target, tlsImplied, err := normalizeAddr(addr)
	if err != nil {
		return nil, nil, err
	}
	if tlsImplied {
		o.TLS = true
	}

	headers, err := authHeaders(o)
	if err != nil {
		return nil, nil, err
	}
	dopts, err := dialOptions(o)
	if err != nil {
		return nil, nil, err
	}

	return &Client{
		addr:    target,
		opts:    o,
		headers: headers,
		sem:     semaphore.NewWeighted(int64(o.ConcurrencyLimit)),
		log:     o.Logger,
	}, dopts, nil
}

func (c *Client) bind(conn *grpc.ClientConn) {
	c.conn = conn
	c.api = transferpb.NewDataTransferClient(conn)
}

// Addr returns the dial target.
func (c *Client) Addr() string {
	return c.addr
}

// Close tears down the connection. Pumps started by TransferStart fail their
// current stream and keep retrying until stopped.
func (c *Client) Close() error {
	return c.conn.Close()
}

// decorate attaches the configured headers to an outgoing call.
func (c *Client) decorate(ctx context.Context) context.Context {
	if len(c.headers) == 0 {
		return ctx
	}
	return metadata.AppendToOutgoingContext(ctx, c.headers...)
}

// acquire takes a unary call slot, waiting while all are in use.
func (c *Client) acquire(ctx context.Context) error {
	return c.sem.Acquire(ctx, 1)
}

func (c *Client) release() {
	c.sem.Release(1)
}
