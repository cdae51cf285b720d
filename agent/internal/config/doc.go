// Package config loads and watches the agent configuration file (config.yaml).
//
// Top-level types:
//   - Config{Agent} parsed from the `agent:` key; `server:` is ignored
//   - AgentConfig holds server_endpoint, concurrency_limit, connect_timeout,
//     timeout, chunk_size, queue_capacity, pump_backoff, log_level,
//     metrics_url, tls, auth, spool
//   - TLSConfig holds enabled, ca_file, domain
//   - AuthConfig holds token_env; Token() resolves it from the environment
//   - SpoolConfig holds dir, priority, quick_suffix, remove_after_send
//
// Load(path) reads the YAML file, applies defaults (10 concurrent calls,
// 10s connect, 30s call timeout, 1 MiB chunks, 1000 queued messages, 3s pump
// backoff), then validates required fields and enums.
//
// Watch(ctx, path, onChange) uses fsnotify on the file's directory to detect
// writes and atomic-save renames, and calls onChange with the newly parsed
// Config. A file that fails to load is logged and skipped.
package config
