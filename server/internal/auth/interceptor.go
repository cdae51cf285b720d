package auth

import (
	"context"
	"crypto/subtle"
	"strings"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
)

const (
	// ModeBearer enables token checking.
	ModeBearer = "bearer"

	header = "authorization"
	scheme = "bearer "
)

// BearerUnaryInterceptor returns a gRPC UnaryServerInterceptor that enforces
// bearer token authentication on every incoming call.
//
// Behaviour:
//   - If mode != "bearer" or token == "", all calls are allowed (pass-through).
//   - Otherwise the "authorization" metadata value must be "Bearer <token>";
//     the scheme is matched case-insensitively.
//   - A missing, malformed, or incorrect token returns codes.Unauthenticated.
func BearerUnaryInterceptor(mode, token string) grpc.UnaryServerInterceptor {
	return func(
		ctx context.Context,
		req interface{},
		info *grpc.UnaryServerInfo,
		handler grpc.UnaryHandler,
	) (interface{}, error) {
		if err := check(ctx, mode, token); err != nil {
			return nil, err
		}
		return handler(ctx, req)
	}
}

// BearerStreamInterceptor is the streaming counterpart of
// BearerUnaryInterceptor. The check runs once, before the handler sees the
// first message.
func BearerStreamInterceptor(mode, token string) grpc.StreamServerInterceptor {
	return func(
		srv interface{},
		ss grpc.ServerStream,
		info *grpc.StreamServerInfo,
		handler grpc.StreamHandler,
	) error {
		if err := check(ss.Context(), mode, token); err != nil {
			return err
		}
		return handler(srv, ss)
	}
}

func check(ctx context.Context, mode, token string) error {
	// Non-bearer modes or unconfigured token → allow everything.
	if mode != ModeBearer || token == "" {
		return nil
	}

	md, ok := metadata.FromIncomingContext(ctx)
	if !ok {
		return status.Error(codes.Unauthenticated, "missing metadata")
	}

	vals := md.Get(header)
	if len(vals) == 0 {
		return status.Error(codes.Unauthenticated, "missing bearer token")
	}
	v := vals[0]
	if len(v) < len(scheme) || !strings.EqualFold(v[:len(scheme)], scheme) {
		return status.Error(codes.Unauthenticated, "authorization is not a bearer token")
	}
	if subtle.ConstantTimeCompare([]byte(v[len(scheme):]), []byte(token)) != 1 {
		return status.Error(codes.Unauthenticated, "invalid bearer token")
	}
	return nil
}
