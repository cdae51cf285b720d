package chunk

import (
	"github.com/handygrpc/handygrpc/pkg/transferpb"
	"github.com/handygrpc/handygrpc/pkg/types"
)

// Fragment turns data into the Messages that carry it. A payload of at most
// chunkSize bytes yields one unchunked Message. A larger payload yields
// ceil(len/chunkSize) chunks with one shared id, in chunk_index order; only
// the last may be shorter than chunkSize.
//
// Chunks alias data. Callers must not modify data until the chunks are sent.
func Fragment(ids *IDGenerator, data []byte, p types.Priority, chunkSize int) []*transferpb.Message {
	if ids == nil {
		ids = Default
	}
	if chunkSize < 1 {
		chunkSize = 1
	}

	if len(data) <= chunkSize {
		return []*transferpb.Message{{
			Id:       ids.Next(),
			Priority: p,
			Data:     payload(data),
		}}
	}

	id := ids.Next()
	total := (len(data) + chunkSize - 1) / chunkSize
	out := make([]*transferpb.Message, 0, total)
	for i := 0; i < total; i++ {
		start := i * chunkSize
		end := start + chunkSize
		if end > len(data) {
			end = len(data)
		}
		out = append(out, &transferpb.Message{
			Id:          id,
			Priority:    p,
			TotalChunks: uint32(total),
			ChunkIndex:  uint32(i),
			Data:        data[start:end:end],
		})
	}
	return out
}

// Count returns how many Messages Fragment produces for a payload of n bytes.
func Count(n, chunkSize int) int {
	if chunkSize < 1 {
		chunkSize = 1
	}
	if n <= chunkSize {
		return 1
	}
	return (n + chunkSize - 1) / chunkSize
}

// payload keeps the data field present even for an empty payload.
func payload(data []byte) []byte {
	if data == nil {
		return []byte{}
	}
	return data
}
