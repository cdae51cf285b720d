package receiver

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
)

// Receipt is the default handler: it acknowledges every payload with a short
// text describing what arrived.
func Receipt(_ context.Context, p Payload) ([]byte, error) {
	return []byte(fmt.Sprintf("id=%d priority=%d bytes=%d", p.ID, p.Priority, len(p.Data))), nil
}

// FileSink writes each payload to dir as <id>-<priority>.bin and then
// returns the Receipt. Ids are only unique per client process, so a later
// payload with the same id and priority replaces the earlier file.
func FileSink(dir string) (Handler, error) {
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, fmt.Errorf("receiver: create output dir: %w", err)
	}
	return func(ctx context.Context, p Payload) ([]byte, error) {
		name := filepath.Join(dir, fmt.Sprintf("%d-%d.bin", p.ID, p.Priority))
		if err := os.WriteFile(name, p.Data, 0o640); err != nil {
			return nil, fmt.Errorf("receiver: write %s: %w", name, err)
		}
		return Receipt(ctx, p)
	}, nil
}

// Observe wraps h so that observe is called with every payload h accepted.
func Observe(h Handler, observe func(Payload)) Handler {
	return func(ctx context.Context, p Payload) ([]byte, error) {
		out, err := h(ctx, p)
		if err == nil {
			observe(p)
		}
		return out, err
	}
}
