// Package config loads runtime configuration for the LogMiner client.
//
// Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Optional config file selected with -c/--config. Files ending in .yaml
//     or .yml are read as YAML, anything else as JSON.
//  3. Environment variables prefixed LOGMINER_, after loading a .env file
//     (--env-file, default ".env") when one exists.
//  4. Command-line flags, which override everything else.
//
// # File schema
//
// Durations accept strings like "90s" or integer nanoseconds:
//
//	{
//	  "api_url": "http://localhost:8080",
//	  "stream_url": "ws://localhost:8080/ws-logs/websocket",
//	  "client_id": "00000000-0000-0000-0000-000000000000",
//	  "refresh_margin": "1m",
//	  "max_records": 1000
//	}
//
// Primary API
//
//   - type Config                          — every tunable of the client
//   - func LoadConfig(args) (*Config, error) — applies the layers above and validates
//   - func (*Config) LoadDefaults()        — sets defaults
package config
