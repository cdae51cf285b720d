package client

import (
	"log/slog"
	"time"

	"google.golang.org/grpc"

	"github.com/handygrpc/handygrpc/pkg/chunk"
	"github.com/handygrpc/handygrpc/pkg/pump"
	"github.com/handygrpc/handygrpc/pkg/types"
)

// DefaultConcurrencyLimit bounds in-flight unary calls when no limit is set.
const DefaultConcurrencyLimit = 10

// Options is the static connection configuration. Build it with Option
// functions; the zero value is completed by defaults().
type Options struct {
	ConcurrencyLimit int
	ConnectTimeout   time.Duration
	Timeout          time.Duration

	TLS       bool
	TLSCAFile string
	TLSDomain string

	// AuthToken is only used when HasAuthToken is set. A set but empty
	// token is a configuration error.
	AuthToken    string
	HasAuthToken bool

	ChunkSize   int
	PumpBackoff time.Duration
	IDs         *chunk.IDGenerator
	Logger      *slog.Logger

	// DialOptions are appended after the options derived from the fields
	// above. Tests use it to install custom dialers.
	DialOptions []grpc.DialOption
}

// Option configures Options.
type Option func(*Options)

func defaults() Options {
	return Options{
		ConcurrencyLimit: DefaultConcurrencyLimit,
		ChunkSize:        types.DefaultChunkSize,
		PumpBackoff:      pump.DefaultBackoff,
	}
}

// WithConcurrencyLimit bounds concurrent unary calls. Values below 1 are
// raised to 1.
func WithConcurrencyLimit(n int) Option {
	return func(o *Options) { o.ConcurrencyLimit = n }
}

// WithConnectTimeout bounds connection establishment.
func WithConnectTimeout(d time.Duration) Option {
	return func(o *Options) { o.ConnectTimeout = d }
}

// WithTimeout bounds each unary round trip.
func WithTimeout(d time.Duration) Option {
	return func(o *Options) { o.Timeout = d }
}

// WithTLS enables TLS. caFile, when non-empty, replaces the system roots;
// domain, when non-empty, overrides the server name checked in the
// certificate.
func WithTLS(caFile, domain string) Option {
	return func(o *Options) {
		o.TLS = true
		o.TLSCAFile = caFile
		o.TLSDomain = domain
	}
}

// WithAuthToken adds "authorization: Bearer <token>" to every call.
func WithAuthToken(token string) Option {
	return func(o *Options) {
		o.AuthToken = token
		o.HasAuthToken = true
	}
}

// WithChunkSize sets the largest payload sent as one message.
func WithChunkSize(n int) Option {
	return func(o *Options) { o.ChunkSize = n }
}

// WithPumpBackoff sets the wait between failed Transfer attempts.
func WithPumpBackoff(d time.Duration) Option {
	return func(o *Options) { o.PumpBackoff = d }
}

// WithIDGenerator replaces chunk.Default as the source of message ids.
func WithIDGenerator(g *chunk.IDGenerator) Option {
	return func(o *Options) { o.IDs = g }
}

// WithLogger sets the logger used by the client and its pumps.
func WithLogger(l *slog.Logger) Option {
	return func(o *Options) { o.Logger = l }
}

// WithDialOptions appends raw gRPC dial options.
func WithDialOptions(opts ...grpc.DialOption) Option {
	return func(o *Options) { o.DialOptions = append(o.DialOptions, opts...) }
}
