package chunk

import (
	"errors"
	"fmt"
	"sync"

	"github.com/handygrpc/handygrpc/pkg/transferpb"
)

var (
	// ErrIndexOutOfRange is returned for a chunk whose index is not below its total.
	ErrIndexOutOfRange = errors.New("chunk index out of range")

	// ErrTotalMismatch is returned when siblings disagree on total_chunks.
	ErrTotalMismatch = errors.New("chunk total mismatch")

	// ErrNotChunked is returned when an unchunked message is added to an Assembly.
	ErrNotChunked = errors.New("message is not chunked")
)

// Validate checks the chunk fields of a single message.
func Validate(m *transferpb.Message) error {
	if m.TotalChunks == 0 {
		if m.ChunkIndex != 0 {
			return fmt.Errorf("id %d: unchunked message with index %d: %w", m.Id, m.ChunkIndex, ErrIndexOutOfRange)
		}
		return nil
	}
	if m.ChunkIndex >= m.TotalChunks {
		return fmt.Errorf("id %d: index %d of %d: %w", m.Id, m.ChunkIndex, m.TotalChunks, ErrIndexOutOfRange)
	}
	return nil
}

// Assembly collects the chunks of one fragmented payload.
type Assembly struct {
	ID       uint64
	Priority uint32
	Total    uint32

	parts [][]byte
	have  uint32
	size  int
}

// NewAssembly starts an assembly from its first observed chunk. The chunk
// itself is not added.
func NewAssembly(m *transferpb.Message) (*Assembly, error) {
	if !m.Chunked() {
		return nil, ErrNotChunked
	}
	if err := Validate(m); err != nil {
		return nil, err
	}
	return &Assembly{
		ID:       m.Id,
		Priority: m.Priority,
		Total:    m.TotalChunks,
		parts:    make([][]byte, m.TotalChunks),
	}, nil
}

// Add records m. It reports whether the assembly is complete afterwards.
// A repeated index is ignored.
func (a *Assembly) Add(m *transferpb.Message) (bool, error) {
	if !m.Chunked() {
		return false, ErrNotChunked
	}
	if m.TotalChunks != a.Total {
		return false, fmt.Errorf("id %d: total %d, expected %d: %w", m.Id, m.TotalChunks, a.Total, ErrTotalMismatch)
	}
	if err := Validate(m); err != nil {
		return false, err
	}
	if a.parts[m.ChunkIndex] == nil {
		data := m.Data
		if data == nil {
			data = []byte{}
		}
		a.parts[m.ChunkIndex] = data
		a.have++
		a.size += len(data)
	}
	return a.Complete(), nil
}

// Complete reports whether every index has been seen.
func (a *Assembly) Complete() bool {
	return a.have == a.Total
}

// Received returns how many distinct chunks have been added.
func (a *Assembly) Received() uint32 {
	return a.have
}

// Size returns the number of payload bytes buffered so far.
func (a *Assembly) Size() int {
	return a.size
}

// Bytes concatenates the chunks in index order. It must only be called on a
// complete assembly.
func (a *Assembly) Bytes() []byte {
	out := make([]byte, 0, a.size)
	for _, p := range a.parts {
		out = append(out, p...)
	}
	return out
}

// Reassembler groups chunks by id and yields whole payloads. It is safe for
// concurrent use. Incomplete assemblies are held until completed or Dropped;
// callers that need bounds or expiry use a store on top of Assembly instead.
type Reassembler struct {
	mu      sync.Mutex
	pending map[uint64]*Assembly
}

// NewReassembler returns an empty Reassembler.
func NewReassembler() *Reassembler {
	return &Reassembler{pending: make(map[uint64]*Assembly)}
}

// Add feeds one message. When it completes a payload, Add returns the
// payload and true. Unchunked messages complete immediately.
func (r *Reassembler) Add(m *transferpb.Message) ([]byte, bool, error) {
	if err := Validate(m); err != nil {
		return nil, false, err
	}
	if !m.Chunked() {
		return m.Data, true, nil
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	a, ok := r.pending[m.Id]
	if !ok {
		var err error
		if a, err = NewAssembly(m); err != nil {
			return nil, false, err
		}
		r.pending[m.Id] = a
	}
	done, err := a.Add(m)
	if err != nil {
		return nil, false, err
	}
	if !done {
		return nil, false, nil
	}
	delete(r.pending, m.Id)
	return a.Bytes(), true, nil
}

// Pending returns the number of incomplete assemblies.
func (r *Reassembler) Pending() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.pending)
}

// Drop discards the incomplete assembly for id, if any.
func (r *Reassembler) Drop(id uint64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.pending, id)
}
