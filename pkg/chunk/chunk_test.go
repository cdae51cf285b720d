package chunk

import (
	"bytes"
	"math/rand"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/handygrpc/handygrpc/pkg/transferpb"
	"github.com/handygrpc/handygrpc/pkg/types"
)

func TestFragment_Example(t *testing.T) {
	ids := &IDGenerator{}
	msgs := Fragment(ids, []byte("ABCDEFGHI"), 5, 4)

	require.Len(t, msgs, 3)
	want := []string{"ABCD", "EFGH", "I"}
	for i, m := range msgs {
		require.Equal(t, want[i], string(m.Data))
		require.Equal(t, uint32(i), m.ChunkIndex)
		require.Equal(t, uint32(3), m.TotalChunks)
		require.Equal(t, msgs[0].Id, m.Id)
		require.Equal(t, uint32(5), m.Priority)
	}
}

func TestFragment_Unchunked(t *testing.T) {
	ids := &IDGenerator{}
	for _, data := range [][]byte{nil, {}, []byte("abcd")} {
		msgs := Fragment(ids, data, types.MinPriority, 4)
		require.Len(t, msgs, 1)
		m := msgs[0]
		require.Zero(t, m.TotalChunks)
		require.Zero(t, m.ChunkIndex)
		require.NotNil(t, m.Data)
		require.Equal(t, len(data), len(m.Data))
	}
}

func TestFragment_RoundTrip(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	ids := &IDGenerator{}

	for i := 0; i < 200; i++ {
		size := rng.Intn(64) + 1
		data := make([]byte, rng.Intn(300))
		rng.Read(data)

		msgs := Fragment(ids, data, 1, size)
		require.Len(t, msgs, Count(len(data), size))

		if len(data) <= size {
			require.Zero(t, msgs[0].TotalChunks)
			require.Equal(t, data, []byte(msgs[0].Data))
			continue
		}

		var joined []byte
		for idx, m := range msgs {
			require.Equal(t, uint32(idx), m.ChunkIndex)
			require.Equal(t, uint32(len(msgs)), m.TotalChunks)
			require.LessOrEqual(t, len(m.Data), size)
			if idx < len(msgs)-1 {
				require.Len(t, m.Data, size)
			}
			joined = append(joined, m.Data...)
		}
		require.True(t, bytes.Equal(data, joined), "payload %d not reproduced", i)
	}
}

func TestFragment_ZeroChunkSize(t *testing.T) {
	msgs := Fragment(&IDGenerator{}, []byte("abc"), 0, 0)
	require.Len(t, msgs, 3)
}

func TestIDGenerator_Monotonic(t *testing.T) {
	g := &IDGenerator{}
	require.Equal(t, uint64(1), g.Next())

	prev := g.Next()
	for i := 0; i < 1000; i++ {
		next := g.Next()
		require.Greater(t, next, prev)
		prev = next
	}
}

func TestIDGenerator_Independent(t *testing.T) {
	a, b := &IDGenerator{}, &IDGenerator{}
	a.Next()
	a.Next()
	require.Equal(t, uint64(1), b.Next())
	require.Equal(t, uint64(3), a.Next())
}

func TestIDGenerator_ConcurrentUnique(t *testing.T) {
	g := &IDGenerator{}
	const workers, per = 8, 500

	results := make([][]uint64, workers)
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			for i := 0; i < per; i++ {
				results[w] = append(results[w], g.Next())
			}
		}(w)
	}
	wg.Wait()

	seen := make(map[uint64]bool, workers*per)
	for _, ids := range results {
		for _, id := range ids {
			require.False(t, seen[id], "duplicate id %d", id)
			seen[id] = true
		}
	}
	require.Len(t, seen, workers*per)
}

func TestReassembler_Interleaved(t *testing.T) {
	ids := &IDGenerator{}
	first := []byte("the quick brown fox")
	second := []byte("jumps over the lazy dog")

	a := Fragment(ids, first, 0, 5)
	b := Fragment(ids, second, 0, 3)
	unrelated := Fragment(ids, []byte("hi"), types.MaxPriority, 5)

	// Interleave the two sets, deliver b in reverse, and mix in unrelated traffic.
	var wire []*transferpb.Message
	for i := 0; i < len(a) || i < len(b); i++ {
		if i < len(a) {
			wire = append(wire, a[i])
		}
		if j := len(b) - 1 - i; j >= 0 {
			wire = append(wire, b[j])
		}
		if i == 1 {
			wire = append(wire, unrelated...)
		}
	}

	r := NewReassembler()
	got := map[uint64][]byte{}
	for _, m := range wire {
		data, done, err := r.Add(m)
		require.NoError(t, err)
		if done {
			got[m.Id] = data
		}
	}

	require.Equal(t, first, got[a[0].Id])
	require.Equal(t, second, got[b[0].Id])
	require.Equal(t, []byte("hi"), got[unrelated[0].Id])
	require.Zero(t, r.Pending())
}

func TestReassembler_DuplicateIgnored(t *testing.T) {
	msgs := Fragment(&IDGenerator{}, []byte("abcdef"), 0, 2)
	r := NewReassembler()

	_, done, err := r.Add(msgs[0])
	require.NoError(t, err)
	require.False(t, done)
	_, done, err = r.Add(msgs[0])
	require.NoError(t, err)
	require.False(t, done)

	_, _, err = r.Add(msgs[1])
	require.NoError(t, err)
	data, done, err := r.Add(msgs[2])
	require.NoError(t, err)
	require.True(t, done)
	require.Equal(t, []byte("abcdef"), data)
}

func TestReassembler_RejectsInconsistentChunks(t *testing.T) {
	r := NewReassembler()

	_, _, err := r.Add(&transferpb.Message{Id: 1, TotalChunks: 2, ChunkIndex: 2})
	require.ErrorIs(t, err, ErrIndexOutOfRange)

	_, _, err = r.Add(&transferpb.Message{Id: 2, TotalChunks: 3, ChunkIndex: 0, Data: []byte("a")})
	require.NoError(t, err)
	_, _, err = r.Add(&transferpb.Message{Id: 2, TotalChunks: 4, ChunkIndex: 1, Data: []byte("b")})
	require.ErrorIs(t, err, ErrTotalMismatch)

	r.Drop(2)
	require.Zero(t, r.Pending())
}
