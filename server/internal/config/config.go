package config

import (
	"fmt"
	"log/slog"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Default values for the server configuration.
const (
	DefaultGRPCPort        = 50051
	DefaultHTTPPort        = 8080
	DefaultReassemblyTTL   = 2 * time.Minute
	DefaultMaxPending      = 1024
	DefaultLogLevel        = "info"
	DefaultMaxMessageBytes = 8 * 1024 * 1024
	DefaultRecentPayloads  = 100
	DefaultFeedInterval    = 5 * time.Second
)

// Config holds the receiver configuration parsed from the `server:` section
// of config.yaml. The `agent:` key in the same file is ignored.
type Config struct {
	Server ServerConfig `yaml:"server"`
}

// ServerConfig holds all server-side settings.
type ServerConfig struct {
	// GRPCPort is the port the DataTransfer service listens on (default 50051).
	GRPCPort int `yaml:"grpc_port"`

	// HTTPPort serves /metrics and /healthz (default 8080).
	HTTPPort int `yaml:"http_port"`

	// LogLevel is one of debug | info | warn | error.
	LogLevel string `yaml:"log_level"`

	// MaxMessageBytes bounds a single received message. It must exceed the
	// chunk size used by clients.
	MaxMessageBytes int `yaml:"max_message_bytes"`

	// Auth configures bearer token checking on incoming calls.
	Auth AuthConfig `yaml:"auth"`

	// Reassembly bounds the buffer of partially received payloads.
	Reassembly ReassemblyConfig `yaml:"reassembly"`

	// OutputDir, when set, receives one file per completed payload.
	OutputDir string `yaml:"output_dir"`

	// Feed configures the JSON API and the WebSocket payload feed.
	Feed FeedConfig `yaml:"feed"`
}

// FeedConfig controls /api/v1/* and /ws/payloads.
type FeedConfig struct {
	// RecentPayloads is how many completed payloads /api/v1/payloads keeps.
	// Default: 100.
	RecentPayloads int `yaml:"recent_payloads"`

	// Interval is how often WebSocket clients receive a summary.
	// Default: 5s.
	Interval time.Duration `yaml:"interval"`
}

// AuthConfig controls client authentication on the server side.
type AuthConfig struct {
	// Mode is one of: bearer | none.
	Mode string `yaml:"mode"`

	// TokenEnv is the name of the environment variable that holds the
	// expected bearer token. Used when Mode == "bearer".
	TokenEnv string `yaml:"token_env"`
}

// Token returns the expected bearer token resolved from the environment.
func (a AuthConfig) Token() string {
	if a.TokenEnv == "" {
		return ""
	}
	return os.Getenv(a.TokenEnv)
}

// Level maps LogLevel to a slog level.
func (s ServerConfig) Level() slog.Level {
	var l slog.Level
	if err := l.UnmarshalText([]byte(s.LogLevel)); err != nil {
		return slog.LevelInfo
	}
	return l
}

// ReassemblyConfig bounds pending chunked payloads.
type ReassemblyConfig struct {
	// TTL is how long an incomplete payload waits for its next chunk before
	// it is discarded. Default: 2m.
	TTL time.Duration `yaml:"ttl"`

	// MaxPending caps the number of incomplete payloads; the least recently
	// touched one is discarded first. Default: 1024.
	MaxPending int `yaml:"max_pending"`
}

// Load reads and parses the config file at path, returning the server configuration.
// Missing fields are filled with defaults before validation.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("server config: read %q: %w", path, err)
	}

	cfg := defaults()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("server config: parse yaml: %w", err)
	}

	if err := validate(cfg); err != nil {
		return nil, fmt.Errorf("server config: %w", err)
	}

	return cfg, nil
}

// defaults returns a Config pre-populated with default values.
func defaults() *Config {
	return &Config{
		Server: ServerConfig{
			GRPCPort:        DefaultGRPCPort,
			HTTPPort:        DefaultHTTPPort,
			LogLevel:        DefaultLogLevel,
			MaxMessageBytes: DefaultMaxMessageBytes,
			Reassembly: ReassemblyConfig{
				TTL:        DefaultReassemblyTTL,
				MaxPending: DefaultMaxPending,
			},
			Feed: FeedConfig{
				RecentPayloads: DefaultRecentPayloads,
				Interval:       DefaultFeedInterval,
			},
		},
	}
}

// validate checks structural constraints on the parsed configuration.
func validate(cfg *Config) error {
	if cfg.Server.GRPCPort <= 0 || cfg.Server.GRPCPort > 65535 {
		return fmt.Errorf("server.grpc_port %d is out of range [1, 65535]", cfg.Server.GRPCPort)
	}
	if cfg.Server.HTTPPort <= 0 || cfg.Server.HTTPPort > 65535 {
		return fmt.Errorf("server.http_port %d is out of range [1, 65535]", cfg.Server.HTTPPort)
	}
	switch cfg.Server.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("server.log_level %q unknown: want debug|info|warn|error", cfg.Server.LogLevel)
	}
	switch cfg.Server.Auth.Mode {
	case "bearer":
		if cfg.Server.Auth.TokenEnv == "" {
			return fmt.Errorf("server.auth.token_env is required when mode is bearer")
		}
	case "none", "":
	default:
		return fmt.Errorf("server.auth.mode %q unknown: want bearer|none", cfg.Server.Auth.Mode)
	}
	if cfg.Server.MaxMessageBytes <= 0 {
		return fmt.Errorf("server.max_message_bytes must be positive")
	}
	if cfg.Server.Reassembly.TTL < 0 {
		return fmt.Errorf("server.reassembly.ttl must not be negative")
	}
	if cfg.Server.Reassembly.MaxPending <= 0 {
		return fmt.Errorf("server.reassembly.max_pending must be positive")
	}
	if cfg.Server.Feed.RecentPayloads <= 0 {
		return fmt.Errorf("server.feed.recent_payloads must be positive")
	}
	if cfg.Server.Feed.Interval <= 0 {
		return fmt.Errorf("server.feed.interval must be positive")
	}
	return nil
}
