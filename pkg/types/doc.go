// Package types defines shared Go types used by the transfer client, the
// agent, and the receiver server. These are plain in-memory definitions,
// separate from the transferpb wire format.
package types
