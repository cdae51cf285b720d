package types

import "math"

// Priority orders queued messages. Larger values are dequeued first.
type Priority = uint32

const (
	// MinPriority is used by the default send operations.
	MinPriority Priority = 0

	// MaxPriority is used by the quick send operations. A message sent with
	// MaxPriority is dequeued ahead of any default-priority backlog.
	MaxPriority Priority = math.MaxUint32
)

// DefaultChunkSize is the largest payload sent as a single message (1 MiB).
// Larger payloads are fragmented into chunks of at most this size.
const DefaultChunkSize = 1024 * 1024
