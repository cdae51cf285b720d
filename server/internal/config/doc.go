// Package config loads the receiver configuration from the `server:` section
// of config.yaml (the `agent:` key is ignored by the server binary).
//
// Config fields:
//   - GRPCPort              port for the DataTransfer service (default 50051)
//   - HTTPPort              port for /metrics and /healthz (default 8080)
//   - LogLevel              debug | info | warn | error (default info)
//   - MaxMessageBytes       largest accepted message (default 8 MiB)
//   - Auth.Mode             "bearer" or "none"
//   - Auth.TokenEnv         environment variable holding the expected token
//   - Reassembly.TTL        how long a partial payload waits (default 2m)
//   - Reassembly.MaxPending partial payloads kept at once (default 1024)
//   - OutputDir             directory for completed payloads (optional)
//
// Load(path) applies defaults before unmarshalling, then validates.
package config
