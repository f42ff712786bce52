// Package config handles configuration loading for warden.
//
// # Overview
//
// Configuration is loaded from YAML or TOML files with environment variable
// expansion. The format is chosen by extension: ".toml" is TOML, anything
// else is YAML. Empty fields receive defaults before validation.
//
// # Configuration File
//
// Default location:
//
//  1. Path from WARDEN_CONFIG environment variable
//  2. $XDG_CONFIG_HOME/warden/warden.yaml (~/.config/warden/warden.yaml)
//
// "warden init" writes Default() to that location with a random session secret.
//
// # Environment Variable Expansion
//
// Configuration values can reference environment variables:
//
//	auth:
//	  session_secret: "${WARDEN_SESSION_SECRET}"
//
// Unset variables expand to the empty string.
//
// # Configuration Sections
//
//	server:
//	  bootstrap_addr: "127.0.0.1:50050"  # login only, no auth
//	  grpc_addr: "127.0.0.1:50051"       # authenticated and jailed
//	  http_addr: "127.0.0.1:8080"        # /health, /metrics
//	  max_concurrent_calls: 10
//
//	database:
//	  driver: "sqlite"       # or "sqlite3" for the cgo driver
//	  path: "./warden.db"
//
//	auth:
//	  session_secret: "..."  # at least 32 bytes
//	  session_ttl: "24h"
//	  sweep_interval: "10m"
//	  password_hasher: "argon2id"  # or "bcrypt"
//
//	jail:
//	  tos_version: 1
//	  tos_path: "./terms.md"
//	  allow:
//	    - "/warden.API/Ping"
//
// # Validation
//
// Validate returns the first failure encountered. Listener addresses may be
// omitted when tailscale.enabled is true.
package config
