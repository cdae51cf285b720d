// Package auth provides bearer token middleware for the receiver server.
//
// BearerUnaryInterceptor and BearerStreamInterceptor check the
// "authorization: Bearer <token>" metadata that pkg/client attaches to every
// call. Send is guarded by the unary form and Transfer by the stream form.
//
// When mode != "bearer" or the token is empty, all calls pass through (useful
// for local development with auth disabled). When the token is incorrect or
// absent, the interceptors return codes.Unauthenticated immediately.
package auth
