package client

import (
	"crypto/tls"
	"crypto/x509"
	"errors"
	"fmt"
	"net"
	"os"
	"strings"

	"google.golang.org/grpc"
	"google.golang.org/grpc/backoff"
	"google.golang.org/grpc/credentials"
	"google.golang.org/grpc/credentials/insecure"
)

// envelopeOverhead covers the Message fields around the payload bytes.
const envelopeOverhead = 64

const defaultMaxMsgSize = 4 * 1024 * 1024

var (
	// ErrEmptyToken is returned when an auth token is configured but empty.
	ErrEmptyToken = errors.New("client: auth token is empty")

	// ErrInvalidToken is returned when the token cannot be sent as a header value.
	ErrInvalidToken = errors.New("client: auth token is not a valid header value")

	// ErrInvalidAddr is returned for an address that is not host:port.
	ErrInvalidAddr = errors.New("client: invalid address")
)

// normalizeAddr strips an http:// or https:// scheme; https implies TLS.
func normalizeAddr(addr string) (target string, tlsImplied bool, err error) {
	switch {
	case strings.HasPrefix(addr, "https://"):
		addr, tlsImplied = strings.TrimPrefix(addr, "https://"), true
	case strings.HasPrefix(addr, "http://"):
		addr = strings.TrimPrefix(addr, "http://")
	}
	addr = strings.TrimSuffix(addr, "/")
	if addr == "" {
		return "", false, fmt.Errorf("%w: empty", ErrInvalidAddr)
	}
	// Resolver targets such as dns:///host:port are passed through.
	if strings.Contains(addr, ":///") {
		return addr, tlsImplied, nil
	}
	if _, _, err := net.SplitHostPort(addr); err != nil {
		return "", false, fmt.Errorf("%w %q: %v", ErrInvalidAddr, addr, err)
	}
	return addr, tlsImplied, nil
}

// authHeaders turns the configured token into the metadata added to every
// call. No token means no headers.
func authHeaders(o Options) ([]string, error) {
	if !o.HasAuthToken {
		return nil, nil
	}
	if o.AuthToken == "" {
		return nil, ErrEmptyToken
	}
	value := "Bearer " + o.AuthToken
	for i := 0; i < len(value); i++ {
		if c := value[i]; c < 0x20 || c > 0x7e {
			return nil, ErrInvalidToken
		}
	}
	return []string{"authorization", value}, nil
}

// dialOptions builds the grpc.DialOption slice from the connection options.
func dialOptions(o Options) ([]grpc.DialOption, error) {
	var creds credentials.TransportCredentials
	if o.TLS {
		c, err := buildTLSCreds(o.TLSCAFile, o.TLSDomain)
		if err != nil {
			return nil, fmt.Errorf("client: build tls creds: %w", err)
		}
		creds = c
	} else {
		creds = insecure.NewCredentials()
	}

	maxMsg := o.ChunkSize + envelopeOverhead
	if maxMsg < defaultMaxMsgSize {
		maxMsg = defaultMaxMsgSize
	}

	opts := []grpc.DialOption{
		grpc.WithTransportCredentials(creds),
		grpc.WithDefaultCallOptions(
			grpc.MaxCallSendMsgSize(maxMsg),
			grpc.MaxCallRecvMsgSize(maxMsg),
		),
	}
	if o.ConnectTimeout > 0 {
		opts = append(opts, grpc.WithConnectParams(grpc.ConnectParams{
			Backoff:           backoff.DefaultConfig,
			MinConnectTimeout: o.ConnectTimeout,
		}))
	}
	return append(opts, o.DialOptions...), nil
}

// buildTLSCreds loads the optional CA file and applies the server name
// override.
func buildTLSCreds(caFile, domain string) (credentials.TransportCredentials, error) {
	tlsCfg := &tls.Config{
		MinVersion: tls.VersionTLS12,
		ServerName: domain,
	}

	if caFile != "" {
		caPEM, err := os.ReadFile(caFile)
		if err != nil {
			return nil, fmt.Errorf("read ca file: %w", err)
		}
		pool := x509.NewCertPool()
		if !pool.AppendCertsFromPEM(caPEM) {
			return nil, fmt.Errorf("no valid certs in ca file %q", caFile)
		}
		tlsCfg.RootCAs = pool
	}

	return credentials.NewTLS(tlsCfg), nil
}
