package chunk

import "sync/atomic"

// IDGenerator hands out message ids. The zero value is ready to use and its
// first id is 1. Ids are unique per generator for the life of the process.
type IDGenerator struct {
	last atomic.Uint64
}

// Next returns a new id, strictly greater than every id returned before.
func (g *IDGenerator) Next() uint64 {
	return g.last.Add(1)
}

// Default is shared by every call site that does not inject its own generator.
var Default = &IDGenerator{}

// NextID draws from Default.
func NextID() uint64 {
	return Default.Next()
}
