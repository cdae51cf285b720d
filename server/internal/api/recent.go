package api

import "sync"

// Recent keeps the last n payload events in a ring. It is safe for
// concurrent use.
type Recent struct {
	mu   sync.Mutex
	buf  []PayloadEvent
	next int
	full bool
}

// NewRecent returns a Recent holding up to n events. n < 1 is treated as 1.
func NewRecent(n int) *Recent {
	if n < 1 {
		n = 1
	}
	return &Recent{buf: make([]PayloadEvent, n)}
}

// Record adds ev, overwriting the oldest event when full.
func (r *Recent) Record(ev PayloadEvent) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.buf[r.next] = ev
	r.next = (r.next + 1) % len(r.buf)
	if r.next == 0 {
		r.full = true
	}
}

// List returns the held events, newest first.
func (r *Recent) List() []PayloadEvent {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := r.next
	if r.full {
		n = len(r.buf)
	}
	out := make([]PayloadEvent, 0, n)
	for i := 1; i <= n; i++ {
		out = append(out, r.buf[(r.next-i+len(r.buf))%len(r.buf)])
	}
	return out
}
