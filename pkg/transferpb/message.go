package transferpb

//go:generate protoc --go_out=. --go_opt=paths=source_relative --go-grpc_out=. --go-grpc_opt=paths=source_relative transfer.proto

// Chunked reports whether m is one fragment of a larger payload.
func (m *Message) Chunked() bool {
	return m.GetTotalChunks() > 0
}
