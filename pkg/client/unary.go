package client

import (
	"context"
	"errors"
	"fmt"

	"github.com/handygrpc/handygrpc/pkg/chunk"
	"github.com/handygrpc/handygrpc/pkg/transferpb"
	"github.com/handygrpc/handygrpc/pkg/types"
)

// ErrTimeout is returned by the chunked unary path when no chunk response
// carried data.
var ErrTimeout = errors.New("client: no chunk response carried data")

// Send delivers data at types.MinPriority over the unary Send RPC and
// returns the response payload.
func (c *Client) Send(ctx context.Context, data []byte) ([]byte, error) {
	return c.SendPriority(ctx, data, types.MinPriority)
}

// SendPriority delivers data over the unary Send RPC. A payload larger than
// the chunk size is fragmented and each chunk is sent only after the previous
// round trip has completed. The first response with data present is the
// result; later responses are discarded.
func (c *Client) SendPriority(ctx context.Context, data []byte, p types.Priority) ([]byte, error) {
	msgs := chunk.Fragment(c.opts.IDs, data, p, c.opts.ChunkSize)
	if len(msgs) == 1 && !msgs[0].Chunked() {
		resp, err := c.call(ctx, msgs[0])
		if err != nil {
			return nil, err
		}
		if resp.GetData() == nil {
			return []byte{}, nil
		}
		return resp.GetData(), nil
	}

	var result []byte
	for _, m := range msgs {
		resp, err := c.call(ctx, m)
		if err != nil {
			return nil, fmt.Errorf("client: chunk %d/%d of id %d: %w", m.ChunkIndex+1, m.TotalChunks, m.Id, err)
		}
		if result == nil && resp.GetData() != nil {
			result = resp.GetData()
		}
	}
	if result == nil {
		c.log.Warn("client: chunked send got no payload", "addr", c.addr, "chunks", len(msgs))
		return nil, ErrTimeout
	}
	return result, nil
}

// call performs one Send round trip under the concurrency limit and the
// per-call timeout.
func (c *Client) call(ctx context.Context, m *transferpb.Message) (*transferpb.Message, error) {
	if err := c.acquire(ctx); err != nil {
		return nil, fmt.Errorf("client: wait for call slot: %w", err)
	}
	defer c.release()

	if c.opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.opts.Timeout)
		defer cancel()
	}

	resp, err := c.api.Send(c.decorate(ctx), m)
	if err != nil {
		return nil, fmt.Errorf("client: send: %w", err)
	}
	return resp, nil
}
