// Package chunk implements the fragmentation protocol shared by the transfer
// client and its peers.
//
// Fragment splits a payload larger than the chunk size into an ordered set of
// Messages that share one id; each carries total_chunks and its chunk_index.
// Payloads that fit are sent whole with total_chunks = 0.
//
// Ids come from an IDGenerator, a monotonically increasing counter starting
// at 1. Default is the process-wide generator; tests create their own.
//
// Reassembler is the receiving half of the contract: it groups chunks by id
// and concatenates them in index order once every index has been seen, no
// matter how siblings were interleaved with unrelated traffic.
package chunk
