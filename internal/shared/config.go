package shared

import (
	_ "embed"
	"fmt"
	"net"
	"os"
	"strconv"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/caarlos0/env/v11"
)

//go:embed config.example.toml
var exampleConf []byte

// Duration probe modes for [CatalogConfig.DurationProbe]
const (
	ProbeNone   = "none"
	ProbeRange  = "range"
	ProbeDecode = "decode"
)

// Config represents the application configuration loaded from a TOML file.
type Config struct {
	Catalog  CatalogConfig  `toml:"catalog"`
	Server   ServerConfig   `toml:"server"`
	Database DatabaseConfig `toml:"database"`
	Player   PlayerConfig   `toml:"player"`
}

// CatalogConfig controls where and how the catalog is fetched.
type CatalogConfig struct {
	BaseURL        string  `toml:"base_url"`
	Provider       string  `toml:"provider"`
	DurationProbe  string  `toml:"duration_probe"`
	ProbeRate      float64 `toml:"probe_rate"`
	TimeoutSeconds int     `toml:"timeout_seconds"`
}

// DatabaseConfig contains database connection settings.
type DatabaseConfig struct {
	Path         string `toml:"path"`
	MaxOpenConns int    `toml:"max_open_conns"`
	MaxIdleConns int    `toml:"max_idle_conns"`
}

// ServerConfig contains HTTP server settings.
type ServerConfig struct {
	Host string `toml:"host"`
	Port int    `toml:"port"`
}

// PlayerConfig contains audio playback settings.
type PlayerConfig struct {
	BufferKB int     `toml:"buffer_kb"`
	Volume   float64 `toml:"volume"`
}

// envOverrides lists the environment variables that take precedence over the file.
type envOverrides struct {
	URL      string `env:"WEREB_URL"`
	Provider string `env:"WEREB_PROVIDER"`
	Listen   string `env:"WEREB_LISTEN"`
	Database string `env:"WEREB_DATABASE"`
}

// Addr returns the listen address in host:port form.
func (s ServerConfig) Addr() string {
	return net.JoinHostPort(s.Host, strconv.Itoa(s.Port))
}

// Timeout returns the catalog request timeout, defaulting to 30 seconds.
func (c CatalogConfig) Timeout() time.Duration {
	if c.TimeoutSeconds <= 0 {
		return 30 * time.Second
	}
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// Validate reports configuration values that can't be used.
func (c *Config) Validate() error {
	switch c.Catalog.DurationProbe {
	case "", ProbeNone, ProbeRange, ProbeDecode:
	default:
		return fmt.Errorf("%w: duration_probe %q", ErrInvalidConfig, c.Catalog.DurationProbe)
	}

	if c.Player.Volume < 0 || c.Player.Volume > 1 {
		return fmt.Errorf("%w: player volume %v outside [0,1]", ErrInvalidConfig, c.Player.Volume)
	}

	if c.Server.Port < 0 || c.Server.Port > 65535 {
		return fmt.Errorf("%w: server port %d", ErrInvalidConfig, c.Server.Port)
	}
	return nil
}

// ApplyEnv overlays WEREB_* environment variables onto the configuration.
func (c *Config) ApplyEnv() error {
	var o envOverrides
	if err := env.Parse(&o); err != nil {
		return fmt.Errorf("failed to parse environment: %w", err)
	}

	if o.URL != "" {
		c.Catalog.BaseURL = o.URL
	}
	if o.Provider != "" {
		c.Catalog.Provider = o.Provider
	}
	if o.Database != "" {
		c.Database.Path = o.Database
	}
	if o.Listen != "" {
		host, port, err := net.SplitHostPort(o.Listen)
		if err != nil {
			return fmt.Errorf("%w: WEREB_LISTEN %q: %v", ErrInvalidConfig, o.Listen, err)
		}
		p, err := strconv.Atoi(port)
		if err != nil {
			return fmt.Errorf("%w: WEREB_LISTEN port %q", ErrInvalidConfig, port)
		}
		c.Server.Host, c.Server.Port = host, p
	}
	return nil
}

// LoadConfig reads and parses a TOML configuration file from the specified path.
//
// Keys missing from the file keep the embedded defaults.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := DefaultConfig()
	if err := toml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	return config, nil
}

// ResolveConfig loads path when it exists, falls back to [DefaultConfig] otherwise, then applies
// environment overrides and validates the result.
func ResolveConfig(path string) (*Config, error) {
	config := DefaultConfig()
	if path != "" {
		if _, err := os.Stat(path); err == nil {
			loaded, err := LoadConfig(path)
			if err != nil {
				return nil, err
			}
			config = loaded
		}
	}

	if err := config.ApplyEnv(); err != nil {
		return nil, err
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}

// DefaultConfig returns a Config with sensible defaults loaded from the embedded example config.
func DefaultConfig() *Config {
	var config Config
	if err := toml.Unmarshal(exampleConf, &config); err != nil {
		panic(fmt.Sprintf("failed to parse embedded default config: %v", err))
	}
	return &config
}

// CreateConfigFile creates a config.toml file at the specified path using the embedded example config.
func CreateConfigFile(path string) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file already exists at %s", path)
	}

	if err := os.WriteFile(path, exampleConf, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}
