package config

import (
	"fmt"
	"log/slog"
	"math"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Default values applied when fields are absent from the config file.
const (
	DefaultConcurrencyLimit = 10
	DefaultConnectTimeout   = 10 * time.Second
	DefaultTimeout          = 30 * time.Second
	DefaultChunkSize        = 1024 * 1024
	DefaultQueueCapacity    = 1000
	DefaultPumpBackoff      = 3 * time.Second
	DefaultLogLevel         = "info"
	DefaultQuickSuffix      = ".quick"
)

// Config is the top-level configuration. The `server:` key in the same file
// is read by the server binary and ignored here.
type Config struct {
	Agent AgentConfig `yaml:"agent"`
}

// AgentConfig holds all agent-side settings.
type AgentConfig struct {
	// ServerEndpoint is the gRPC address of handygrpc-server. host:port,
	// optionally prefixed with http:// or https:// (https enables TLS).
	ServerEndpoint string `yaml:"server_endpoint"`

	// ConcurrencyLimit bounds in-flight unary calls (default 10).
	ConcurrencyLimit int `yaml:"concurrency_limit"`

	// ConnectTimeout bounds connection establishment.
	ConnectTimeout time.Duration `yaml:"connect_timeout"`

	// Timeout bounds each unary round trip. Zero disables it.
	Timeout time.Duration `yaml:"timeout"`

	// ChunkSize is the largest payload sent as one message (default 1 MiB).
	ChunkSize int `yaml:"chunk_size"`

	// QueueCapacity bounds the mailbox queue used by stream and spool.
	QueueCapacity int `yaml:"queue_capacity"`

	// PumpBackoff is the fixed wait between failed Transfer attempts.
	PumpBackoff time.Duration `yaml:"pump_backoff"`

	// LogLevel is one of debug | info | warn | error. It is applied again on
	// every hot reload.
	LogLevel string `yaml:"log_level"`

	// MetricsURL is the receiver's /metrics endpoint, read by `agent status`.
	MetricsURL string `yaml:"metrics_url"`

	TLS   TLSConfig   `yaml:"tls"`
	Auth  AuthConfig  `yaml:"auth"`
	Spool SpoolConfig `yaml:"spool"`
}

// TLSConfig configures transport security towards the server.
type TLSConfig struct {
	Enabled bool `yaml:"enabled"`

	// CAFile replaces the system roots when set.
	CAFile string `yaml:"ca_file"`

	// Domain overrides the server name checked in the certificate.
	Domain string `yaml:"domain"`
}

// AuthConfig specifies the bearer token sent on every call.
type AuthConfig struct {
	// TokenEnv is the name of the environment variable that holds the token.
	// Leave empty to send no authorization header.
	TokenEnv string `yaml:"token_env"`
}

// Token returns the bearer token value resolved from the environment and
// whether a token is configured at all.
func (a AuthConfig) Token() (string, bool) {
	if a.TokenEnv == "" {
		return "", false
	}
	return os.Getenv(a.TokenEnv), true
}

// SpoolConfig configures the directory watched by `agent spool`.
type SpoolConfig struct {
	// Dir is the directory to watch. Files must be moved in atomically;
	// names starting with "." or ending in ".tmp" are ignored.
	Dir string `yaml:"dir"`

	// Priority is used for ordinary spool files (default 0).
	Priority uint32 `yaml:"priority"`

	// QuickSuffix marks files sent at the highest priority (default ".quick").
	QuickSuffix string `yaml:"quick_suffix"`

	// RemoveAfterSend deletes a file once it is queued.
	RemoveAfterSend bool `yaml:"remove_after_send"`
}

// IsQuick reports whether name carries the quick suffix.
func (s SpoolConfig) IsQuick(name string) bool {
	return s.QuickSuffix != "" && strings.HasSuffix(name, s.QuickSuffix)
}

// Level maps LogLevel to a slog level.
func (a AgentConfig) Level() slog.Level {
	var l slog.Level
	if err := l.UnmarshalText([]byte(a.LogLevel)); err != nil {
		return slog.LevelInfo
	}
	return l
}

// Load reads and parses the YAML config file at path.
// Missing optional fields are filled with defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read file: %w", err)
	}

	cfg := defaults()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("config: parse yaml: %w", err)
	}

	if err := validate(cfg); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}

	return cfg, nil
}

// defaults returns a Config pre-populated with default values.
func defaults() *Config {
	return &Config{
		Agent: AgentConfig{
			ConcurrencyLimit: DefaultConcurrencyLimit,
			ConnectTimeout:   DefaultConnectTimeout,
			Timeout:          DefaultTimeout,
			ChunkSize:        DefaultChunkSize,
			QueueCapacity:    DefaultQueueCapacity,
			PumpBackoff:      DefaultPumpBackoff,
			LogLevel:         DefaultLogLevel,
			Spool: SpoolConfig{
				QuickSuffix: DefaultQuickSuffix,
			},
		},
	}
}

// validate checks required fields and structural constraints.
func validate(cfg *Config) error {
	a := cfg.Agent
	if a.ServerEndpoint == "" {
		return fmt.Errorf("agent.server_endpoint is required")
	}
	if a.ConcurrencyLimit <= 0 {
		return fmt.Errorf("agent.concurrency_limit must be positive")
	}
	if a.ConnectTimeout < 0 || a.Timeout < 0 {
		return fmt.Errorf("agent.connect_timeout and agent.timeout must not be negative")
	}
	if a.ChunkSize <= 0 || a.ChunkSize > math.MaxInt32 {
		return fmt.Errorf("agent.chunk_size %d is out of range", a.ChunkSize)
	}
	if a.QueueCapacity <= 0 {
		return fmt.Errorf("agent.queue_capacity must be positive")
	}
	if a.PumpBackoff <= 0 {
		return fmt.Errorf("agent.pump_backoff must be positive")
	}
	switch a.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("agent.log_level %q unknown: want debug|info|warn|error", a.LogLevel)
	}
	if a.TLS.CAFile != "" && !a.TLS.Enabled {
		return fmt.Errorf("agent.tls.ca_file is set but agent.tls.enabled is false")
	}
	return nil
}
