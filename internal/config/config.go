// Package config loads and validates process configuration for the
// Currents MCP server. It is the single place the environment is read.
package config

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/spf13/viper"

	apierrors "github.com/olgasafonova/currents-mcp-server/internal/errors"
)

// Transport modes
const (
	TransportSSE   = "sse"
	TransportHTTP  = "http"
	TransportStdio = "stdio"
)

const (
	// DefaultBaseURL is the Currents API v1 endpoint
	DefaultBaseURL = "https://api.currentsapi.services/v1"

	// DefaultTimeout for provider requests
	DefaultTimeout = 30 * time.Second
)

// Config holds everything the server needs to start.
type Config struct {
	// APIKey is sent raw in the Authorization header
	APIKey string `mapstructure:"api_key"`

	// BaseURL of the Currents API
	BaseURL string `mapstructure:"base_url"`

	// Timeout for a single provider request
	Timeout time.Duration `mapstructure:"timeout"`

	// StrictSchema turns response schema violations into tool failures
	StrictSchema bool `mapstructure:"strict_schema"`

	// Transport is one of sse, http, stdio
	Transport string `mapstructure:"transport"`

	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	LogLevel string `mapstructure:"log_level"`
}

// envBindings maps config keys to the environment variables that feed them.
var envBindings = map[string][]string{
	"api_key":       {"CURRENTS_API_KEY"},
	"base_url":      {"CURRENTS_BASE_URL"},
	"timeout":       {"CURRENTS_TIMEOUT"},
	"strict_schema": {"CURRENTS_STRICT_SCHEMA"},
	"transport":     {"MCP_TRANSPORT"},
	"host":          {"HOST"},
	"port":          {"PORT"},
	"log_level":     {"LOG_LEVEL"},
}

// New returns a viper instance with defaults and environment bindings set.
// Callers may bind command-line flags onto it before calling Load.
func New() *viper.Viper {
	v := viper.New()

	v.SetDefault("base_url", DefaultBaseURL)
	v.SetDefault("timeout", DefaultTimeout)
	v.SetDefault("strict_schema", false)
	v.SetDefault("host", "0.0.0.0")
	v.SetDefault("port", 8000)
	v.SetDefault("log_level", "info")

	for key, envs := range envBindings {
		args := append([]string{key}, envs...)
		_ = v.BindEnv(args...)
	}
	_ = v.BindEnv("use_sse", "USE_SSE")

	return v
}

// Load reads an optional config file into v and returns the validated Config.
func Load(v *viper.Viper, path string) (*Config, error) {
	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, apierrors.NewConfigurationError("config", fmt.Sprintf("failed to read %s: %v", path, err))
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, apierrors.NewConfigurationError("config", err.Error())
	}

	cfg.APIKey = strings.TrimSpace(cfg.APIKey)
	cfg.Transport = strings.ToLower(strings.TrimSpace(cfg.Transport))
	if cfg.Transport == "" {
		// USE_SSE=false selects stdio when no transport was given
		cfg.Transport = TransportSSE
		if v.GetString("use_sse") != "" && !v.GetBool("use_sse") {
			cfg.Transport = TransportStdio
		}
	}
	cfg.LogLevel = strings.ToLower(strings.TrimSpace(cfg.LogLevel))

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks that the configuration can serve tools.
func (c *Config) Validate() error {
	if c.APIKey == "" {
		return apierrors.NewConfigurationError("CURRENTS_API_KEY", "is not set")
	}
	if c.BaseURL == "" {
		return apierrors.NewConfigurationError("CURRENTS_BASE_URL", "must not be empty")
	}
	if c.Timeout <= 0 {
		return apierrors.NewConfigurationError("CURRENTS_TIMEOUT", "must be positive")
	}
	switch c.Transport {
	case TransportSSE, TransportHTTP, TransportStdio:
	default:
		return apierrors.NewConfigurationError("MCP_TRANSPORT", fmt.Sprintf("unknown transport %q (want sse, http or stdio)", c.Transport))
	}
	if c.Transport != TransportStdio && (c.Port <= 0 || c.Port > 65535) {
		return apierrors.NewConfigurationError("PORT", fmt.Sprintf("invalid port %d", c.Port))
	}
	if _, err := ParseLogLevel(c.LogLevel); err != nil {
		return apierrors.NewConfigurationError("LOG_LEVEL", err.Error())
	}
	return nil
}

// Addr returns the listen address for HTTP transports.
func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// SlogLevel returns the configured log level, defaulting to info.
func (c *Config) SlogLevel() slog.Level {
	level, err := ParseLogLevel(c.LogLevel)
	if err != nil {
		return slog.LevelInfo
	}
	return level
}

// ParseLogLevel maps debug|info|warn|warning|error to a slog level.
func ParseLogLevel(s string) (slog.Level, error) {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug, nil
	case "", "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error", "critical":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("unknown log level %q", s)
	}
}
