// ABOUTME: Configuration loading and parsing for warden
// ABOUTME: Supports YAML or TOML files with environment variable expansion and duration parsing

package config

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"
)

// EnvConfigPath names the environment variable that overrides the config location.
const EnvConfigPath = "WARDEN_CONFIG"

// MinSecretLength is the shortest accepted session signing secret, in bytes.
const MinSecretLength = 32

// Defaults applied when a field is left empty.
const (
	DefaultSessionTTL         = 24 * time.Hour
	DefaultSweepInterval      = 10 * time.Minute
	DefaultTOSVersion         = 1
	DefaultMaxConcurrentCalls = 10
	DefaultMetricsPath        = "/metrics"
)

// Config represents the complete warden configuration
type Config struct {
	Server    ServerConfig    `yaml:"server" toml:"server"`
	Tailscale TailscaleConfig `yaml:"tailscale" toml:"tailscale"`
	Database  DatabaseConfig  `yaml:"database" toml:"database"`
	Auth      AuthConfig      `yaml:"auth" toml:"auth"`
	Jail      JailConfig      `yaml:"jail" toml:"jail"`
	Logging   LoggingConfig   `yaml:"logging" toml:"logging"`
	Metrics   MetricsConfig   `yaml:"metrics" toml:"metrics"`
}

// ServerConfig holds listener configuration. The bootstrap endpoint serves
// login only; the main endpoint serves everything behind authentication.
type ServerConfig struct {
	BootstrapAddr string `yaml:"bootstrap_addr" toml:"bootstrap_addr"`
	GRPCAddr      string `yaml:"grpc_addr" toml:"grpc_addr"`
	HTTPAddr      string `yaml:"http_addr" toml:"http_addr"`

	// MaxConcurrentCalls bounds the worker pool and concurrent streams per endpoint
	MaxConcurrentCalls int `yaml:"max_concurrent_calls" toml:"max_concurrent_calls"`
}

// TailscaleConfig holds Tailscale tsnet configuration
type TailscaleConfig struct {
	Enabled   bool   `yaml:"enabled" toml:"enabled"`
	Hostname  string `yaml:"hostname" toml:"hostname"`
	AuthKey   string `yaml:"auth_key" toml:"auth_key"`
	StateDir  string `yaml:"state_dir" toml:"state_dir"`
	Ephemeral bool   `yaml:"ephemeral" toml:"ephemeral"`
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	Driver string `yaml:"driver" toml:"driver"` // "sqlite" (pure Go) or "sqlite3" (cgo)
	Path   string `yaml:"path" toml:"path"`
}

// AuthConfig holds session and credential configuration
type AuthConfig struct {
	SessionSecret  string `yaml:"session_secret" toml:"session_secret"`
	PasswordHasher string `yaml:"password_hasher" toml:"password_hasher"`

	SessionTTL    time.Duration `yaml:"-" toml:"-"`
	SweepInterval time.Duration `yaml:"-" toml:"-"`

	// Raw string values for unmarshaling
	SessionTTLRaw    string `yaml:"session_ttl" toml:"session_ttl"`
	SweepIntervalRaw string `yaml:"sweep_interval" toml:"sweep_interval"`
}

// JailConfig holds terms-of-service and allow-list configuration
type JailConfig struct {
	TOSVersion int      `yaml:"tos_version" toml:"tos_version"`
	TOSPath    string   `yaml:"tos_path" toml:"tos_path"`
	Allow      []string `yaml:"allow" toml:"allow"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level  string `yaml:"level" toml:"level"`
	Format string `yaml:"format" toml:"format"`
}

// MetricsConfig holds metrics endpoint configuration
type MetricsConfig struct {
	Enabled bool   `yaml:"enabled" toml:"enabled"`
	Path    string `yaml:"path" toml:"path"`
}

// DefaultPath returns the config file location: $WARDEN_CONFIG if set,
// otherwise $XDG_CONFIG_HOME/warden/warden.yaml.
func DefaultPath() string {
	if p := os.Getenv(EnvConfigPath); p != "" {
		return p
	}
	dir := os.Getenv("XDG_CONFIG_HOME")
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "warden.yaml"
		}
		dir = filepath.Join(home, ".config")
	}
	return filepath.Join(dir, "warden", "warden.yaml")
}

// Default returns a configuration suitable for local development, with a
// freshly generated session secret.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			BootstrapAddr:      "127.0.0.1:50050",
			GRPCAddr:           "127.0.0.1:50051",
			HTTPAddr:           "127.0.0.1:8080",
			MaxConcurrentCalls: DefaultMaxConcurrentCalls,
		},
		Database: DatabaseConfig{
			Driver: "sqlite",
			Path:   "./warden.db",
		},
		Auth: AuthConfig{
			SessionSecret:    generateSecret(),
			PasswordHasher:   "argon2id",
			SessionTTL:       DefaultSessionTTL,
			SweepInterval:    DefaultSweepInterval,
			SessionTTLRaw:    DefaultSessionTTL.String(),
			SweepIntervalRaw: DefaultSweepInterval.String(),
		},
		Jail: JailConfig{
			TOSVersion: DefaultTOSVersion,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
		Metrics: MetricsConfig{
			Enabled: true,
			Path:    DefaultMetricsPath,
		},
	}
}

// Load reads a configuration file from the given path and returns a parsed Config.
// Files ending in .toml are parsed as TOML, everything else as YAML.
// Environment variables in the format ${VAR_NAME} are expanded.
// Duration strings are parsed into time.Duration values.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	// Expand environment variables in the raw content
	expandedData := []byte(expandEnvVars(string(data)))

	var cfg Config
	if strings.EqualFold(filepath.Ext(path), ".toml") {
		err = toml.Unmarshal(expandedData, &cfg)
	} else {
		err = yaml.Unmarshal(expandedData, &cfg)
	}
	if err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	// Parse duration fields
	if err := parseDurations(&cfg); err != nil {
		return nil, fmt.Errorf("parsing durations: %w", err)
	}

	applyDefaults(&cfg)

	// Validate required fields
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return &cfg, nil
}

// Write serializes the config as YAML to path, creating parent directories.
// The file is written 0600 because it carries the session secret.
func Write(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("encoding config: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}
	return nil
}

// expandEnvVars replaces ${VAR_NAME} patterns with the corresponding environment variable values.
// If the environment variable is not set, it is replaced with an empty string.
func expandEnvVars(s string) string {
	// Match ${VAR_NAME} pattern
	re := regexp.MustCompile(`\$\{([^}]+)\}`)

	return re.ReplaceAllStringFunc(s, func(match string) string {
		// Extract variable name from ${VAR_NAME}
		varName := re.FindStringSubmatch(match)[1]
		return os.Getenv(varName)
	})
}

func applyDefaults(cfg *Config) {
	if cfg.Server.MaxConcurrentCalls == 0 {
		cfg.Server.MaxConcurrentCalls = DefaultMaxConcurrentCalls
	}
	if cfg.Database.Driver == "" {
		cfg.Database.Driver = "sqlite"
	}
	if cfg.Auth.PasswordHasher == "" {
		cfg.Auth.PasswordHasher = "argon2id"
	}
	if cfg.Auth.SessionTTL == 0 {
		cfg.Auth.SessionTTL = DefaultSessionTTL
	}
	if cfg.Auth.SweepInterval == 0 {
		cfg.Auth.SweepInterval = DefaultSweepInterval
	}
	if cfg.Jail.TOSVersion == 0 {
		cfg.Jail.TOSVersion = DefaultTOSVersion
	}
	if cfg.Metrics.Path == "" {
		cfg.Metrics.Path = DefaultMetricsPath
	}
}

// Validate checks that all required configuration fields are present and valid.
// Returns an error describing the first validation failure encountered.
func (c *Config) Validate() error {
	// Server addresses are required unless Tailscale is enabled
	if !c.Tailscale.Enabled {
		if c.Server.BootstrapAddr == "" {
			return fmt.Errorf("server.bootstrap_addr is required (or enable tailscale)")
		}
		if c.Server.GRPCAddr == "" {
			return fmt.Errorf("server.grpc_addr is required (or enable tailscale)")
		}
	}

	// Tailscale requires a hostname
	if c.Tailscale.Enabled && c.Tailscale.Hostname == "" {
		return fmt.Errorf("tailscale.hostname is required when tailscale is enabled")
	}

	if c.Server.MaxConcurrentCalls < 0 {
		return fmt.Errorf("server.max_concurrent_calls must not be negative")
	}

	switch c.Database.Driver {
	case "", "sqlite", "sqlite3":
	default:
		return fmt.Errorf("database.driver %q is not supported (sqlite or sqlite3)", c.Database.Driver)
	}

	if c.Database.Path == "" {
		return fmt.Errorf("database.path is required")
	}

	if len(c.Auth.SessionSecret) < MinSecretLength {
		return fmt.Errorf("auth.session_secret must be at least %d bytes", MinSecretLength)
	}

	switch c.Auth.PasswordHasher {
	case "", "argon2id", "bcrypt":
	default:
		return fmt.Errorf("auth.password_hasher %q is not supported (argon2id or bcrypt)", c.Auth.PasswordHasher)
	}

	if c.Auth.SessionTTL < 0 {
		return fmt.Errorf("auth.session_ttl must be positive")
	}

	if c.Jail.TOSVersion < 0 {
		return fmt.Errorf("jail.tos_version must not be negative")
	}

	switch c.Logging.Format {
	case "", "text", "json":
	default:
		return fmt.Errorf("logging.format %q is not supported (text or json)", c.Logging.Format)
	}

	return nil
}

// parseDurations converts the raw duration strings into time.Duration values
func parseDurations(cfg *Config) error {
	var err error

	if cfg.Auth.SessionTTLRaw != "" {
		cfg.Auth.SessionTTL, err = time.ParseDuration(cfg.Auth.SessionTTLRaw)
		if err != nil {
			return fmt.Errorf("parsing session_ttl %q: %w", cfg.Auth.SessionTTLRaw, err)
		}
	}

	if cfg.Auth.SweepIntervalRaw != "" {
		cfg.Auth.SweepInterval, err = time.ParseDuration(cfg.Auth.SweepIntervalRaw)
		if err != nil {
			return fmt.Errorf("parsing sweep_interval %q: %w", cfg.Auth.SweepIntervalRaw, err)
		}
	}

	return nil
}

func generateSecret() string {
	b := make([]byte, MinSecretLength)
	if _, err := rand.Read(b); err != nil {
		panic(fmt.Sprintf("generating session secret: %v", err))
	}
	return hex.EncodeToString(b)
}
