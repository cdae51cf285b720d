// Package store buffers partially received chunked payloads for the receiver
// server. Entries are bounded by count (least recently touched first) and by
// age (Run evicts entries idle for longer than the TTL). List exposes
// per-payload progress for the JSON API.
package store
