package shipper

import (
	"fmt"
	"log/slog"

	"github.com/handygrpc/handygrpc/agent/internal/config"
	"github.com/handygrpc/handygrpc/pkg/client"
)

// clientOptions translates the agent config into client options.
func clientOptions(cfg config.AgentConfig, log *slog.Logger) ([]client.Option, error) {
	opts := []client.Option{
		client.WithConcurrencyLimit(cfg.ConcurrencyLimit),
		client.WithConnectTimeout(cfg.ConnectTimeout),
		client.WithTimeout(cfg.Timeout),
		client.WithChunkSize(cfg.ChunkSize),
		client.WithPumpBackoff(cfg.PumpBackoff),
		client.WithLogger(log),
	}
	if cfg.TLS.Enabled {
		opts = append(opts, client.WithTLS(cfg.TLS.CAFile, cfg.TLS.Domain))
	}
	if token, ok := cfg.Auth.Token(); ok {
		if token == "" {
			return nil, fmt.Errorf("shipper: auth.token_env %q is empty or unset", cfg.Auth.TokenEnv)
		}
		opts = append(opts, client.WithAuthToken(token))
	}
	return opts, nil
}
