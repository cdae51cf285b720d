package store

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/hashicorp/golang-lru/simplelru"

	"github.com/handygrpc/handygrpc/pkg/chunk"
	"github.com/handygrpc/handygrpc/pkg/transferpb"
)

// Entry is a partial payload together with the time its last chunk arrived.
type Entry struct {
	Assembly  *chunk.Assembly
	UpdatedAt time.Time

	complete bool
}

// EvictFunc is called for every incomplete payload dropped by the store,
// either because it went stale or because MaxPending was reached.
type EvictFunc func(e *Entry)

// Store is a thread-safe buffer of partially received payloads, keyed by
// message id. It holds at most maxPending entries, dropping the least
// recently touched one first, and a background goroutine (Run) drops entries
// that have not received a chunk within the configured TTL.
type Store struct {
	mu      sync.Mutex
	pending *simplelru.LRU // id -> *Entry
	ttl     time.Duration
	onEvict EvictFunc
	now     func() time.Time // injectable for deterministic tests
}

// New creates a Store with the given TTL and entry limit. onEvict may be nil.
func New(ttl time.Duration, maxPending int, onEvict EvictFunc) (*Store, error) {
	s := &Store{
		ttl:     ttl,
		onEvict: onEvict,
		now:     time.Now,
	}
	pending, err := simplelru.NewLRU(maxPending, s.evicted)
	if err != nil {
		return nil, fmt.Errorf("store: %w", err)
	}
	s.pending = pending
	return s, nil
}

func (s *Store) evicted(key, value interface{}) {
	e := value.(*Entry)
	if e.complete {
		return
	}
	slog.Debug("store: dropped incomplete payload",
		"id", key,
		"received", e.Assembly.Received(),
		"total", e.Assembly.Total)
	if s.onEvict != nil {
		s.onEvict(e)
	}
}

// Add records one chunk. When it completes its payload the entry is removed
// and the reassembled bytes are returned with done set. Chunks that disagree
// with earlier siblings are rejected with an error from package chunk.
func (s *Store) Add(m *transferpb.Message) (payload []byte, done bool, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var e *Entry
	if v, ok := s.pending.Get(m.Id); ok {
		e = v.(*Entry)
	} else {
		a, err := chunk.NewAssembly(m)
		if err != nil {
			return nil, false, err
		}
		e = &Entry{Assembly: a}
		s.pending.Add(m.Id, e)
	}
	e.UpdatedAt = s.now()

	complete, err := e.Assembly.Add(m)
	if err != nil {
		return nil, false, err
	}
	if !complete {
		return nil, false, nil
	}
	e.complete = true
	s.pending.Remove(m.Id)
	return e.Assembly.Bytes(), true, nil
}

// Get returns the pending Entry for id, without touching its recency.
func (s *Store) Get(id uint64) (*Entry, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.pending.Peek(id)
	if !ok {
		return nil, false
	}
	return v.(*Entry), true
}

// Pending describes one incomplete payload.
type Pending struct {
	ID        uint64
	Priority  uint32
	Received  uint32
	Total     uint32
	Bytes     int
	UpdatedAt time.Time
}

// List returns the incomplete payloads ordered by id.
func (s *Store) List() []Pending {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Pending, 0, s.pending.Len())
	for _, k := range s.pending.Keys() {
		v, ok := s.pending.Peek(k)
		if !ok {
			continue
		}
		e := v.(*Entry)
		out = append(out, Pending{
			ID:        e.Assembly.ID,
			Priority:  e.Assembly.Priority,
			Received:  e.Assembly.Received(),
			Total:     e.Assembly.Total,
			Bytes:     e.Assembly.Size(),
			UpdatedAt: e.UpdatedAt,
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// TTL returns the configured staleness limit.
func (s *Store) TTL() time.Duration {
	return s.ttl
}

// Count returns the number of incomplete payloads currently held, including
// stale ones not yet evicted.
func (s *Store) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pending.Len()
}

// Evict removes entries whose UpdatedAt is older than now minus TTL.
// It returns the number of entries removed.
func (s *Store) Evict(now time.Time) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	cutoff := now.Add(-s.ttl)
	removed := 0
	for {
		_, v, ok := s.pending.GetOldest()
		if !ok || v.(*Entry).UpdatedAt.After(cutoff) {
			return removed
		}
		s.pending.RemoveOldest()
		removed++
	}
}

// Run starts the background TTL eviction loop. It ticks at half the TTL interval
// (minimum 1 second) so entries are evicted promptly. Run blocks until ctx is
// cancelled.
func (s *Store) Run(ctx context.Context) {
	interval := s.ttl / 2
	if interval < time.Second {
		interval = time.Second
	}
	t := time.NewTicker(interval)
	defer t.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case now := <-t.C:
			if n := s.Evict(now); n > 0 {
				slog.Info("store: evicted stale partial payloads", "count", n)
			}
		}
	}
}
