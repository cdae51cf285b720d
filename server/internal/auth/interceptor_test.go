package auth

import (
	"context"
	"testing"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
)

// passHandler is a grpc.UnaryHandler that returns ("ok", nil).
func passHandler(ctx context.Context, req interface{}) (interface{}, error) {
	return "ok", nil
}

func callWithAuth(t *testing.T, interceptor grpc.UnaryServerInterceptor, value string) (interface{}, error) {
	t.Helper()
	ctx := context.Background()
	if value != "" {
		ctx = metadata.NewIncomingContext(ctx, metadata.Pairs("authorization", value))
	}
	return interceptor(ctx, nil, &grpc.UnaryServerInfo{}, passHandler)
}

// fakeStream carries only a context.
type fakeStream struct {
	grpc.ServerStream
	ctx context.Context
}

func (s *fakeStream) Context() context.Context { return s.ctx }

func TestBearerUnary_ModeNone_PassesThrough(t *testing.T) {
	i := BearerUnaryInterceptor("none", "secret")
	// No token in context; passes because mode != "bearer".
	res, err := i(context.Background(), nil, &grpc.UnaryServerInfo{}, passHandler)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res != "ok" {
		t.Errorf("result: got %v, want ok", res)
	}
}

func TestBearerUnary_EmptyToken_PassesThrough(t *testing.T) {
	i := BearerUnaryInterceptor(ModeBearer, "")
	res, err := i(context.Background(), nil, &grpc.UnaryServerInfo{}, passHandler)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res != "ok" {
		t.Errorf("result: got %v, want ok", res)
	}
}

func TestBearerUnary_CorrectToken_Passes(t *testing.T) {
	i := BearerUnaryInterceptor(ModeBearer, "supersecret")
	for _, v := range []string{"Bearer supersecret", "bearer supersecret"} {
		res, err := callWithAuth(t, i, v)
		if err != nil {
			t.Fatalf("%q: unexpected error: %v", v, err)
		}
		if res != "ok" {
			t.Errorf("%q: result: got %v, want ok", v, res)
		}
	}
}

func TestBearerUnary_Rejected(t *testing.T) {
	i := BearerUnaryInterceptor(ModeBearer, "supersecret")
	for _, v := range []string{"Bearer wrong", "supersecret", "Basic supersecret", "Bearer", ""} {
		_, err := callWithAuth(t, i, v)
		if err == nil {
			t.Fatalf("%q: expected error, got nil", v)
		}
		if code := status.Code(err); code != codes.Unauthenticated {
			t.Errorf("%q: code: got %v, want Unauthenticated", v, code)
		}
	}
}

func TestBearerUnary_EmptyMetadata_Unauthenticated(t *testing.T) {
	i := BearerUnaryInterceptor(ModeBearer, "supersecret")
	ctx := metadata.NewIncomingContext(context.Background(), metadata.MD{})
	_, err := i(ctx, nil, &grpc.UnaryServerInfo{}, passHandler)
	if code := status.Code(err); code != codes.Unauthenticated {
		t.Errorf("code: got %v, want Unauthenticated", code)
	}
}

func TestBearerStream(t *testing.T) {
	i := BearerStreamInterceptor(ModeBearer, "tok")
	called := false
	handler := func(srv interface{}, ss grpc.ServerStream) error {
		called = true
		return nil
	}

	bad := &fakeStream{ctx: metadata.NewIncomingContext(context.Background(), metadata.Pairs("authorization", "Bearer nope"))}
	if code := status.Code(i(nil, bad, &grpc.StreamServerInfo{}, handler)); code != codes.Unauthenticated {
		t.Errorf("code: got %v, want Unauthenticated", code)
	}
	if called {
		t.Fatal("handler ran for a rejected stream")
	}

	good := &fakeStream{ctx: metadata.NewIncomingContext(context.Background(), metadata.Pairs("authorization", "Bearer tok"))}
	if err := i(nil, good, &grpc.StreamServerInfo{}, handler); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !called {
		t.Fatal("handler did not run")
	}
}
