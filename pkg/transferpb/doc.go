// Package transferpb holds the DataTransfer wire contract: the Message
// envelope and the gRPC client/server bindings for the
// transferpb.DataTransfer service described in transfer.proto.
//
// transfer.pb.go and transfer_grpc.pb.go are generated; run go generate
// after editing transfer.proto. Calls use gRPC's default proto codec, so the
// content type on the wire is plain application/grpc.
//
// Presence of Message.Data is significant: data is a proto3 optional field,
// so nil means absent and a non-nil empty slice means present but empty.
package transferpb
