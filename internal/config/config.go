package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"rudp/network"

	"gopkg.in/yaml.v3"
)

const (
	DefaultTimeoutMs  = 500
	DefaultBufferSize = 1024
)

// Config holds the rudp CLI settings. Flags override file values.
type Config struct {
	Name             string `yaml:"name"`
	TimeoutMs        int    `yaml:"timeout_ms"`
	RetryLimit       int    `yaml:"retry_limit"`
	ReceiveTimeoutMs int    `yaml:"receive_timeout_ms"`
	BufferSize       int    `yaml:"buffer_size"`
	Compression      string `yaml:"compression"`
	LogLevel         string `yaml:"log_level"`
	STUNServer       string `yaml:"stun_server"`
}

func Default() *Config {
	name, err := os.Hostname()
	if err != nil {
		name = "rudp"
	}
	return &Config{
		Name:        name,
		TimeoutMs:   DefaultTimeoutMs,
		BufferSize:  DefaultBufferSize,
		Compression: string(network.CompressionNone),
		LogLevel:    "info",
	}
}

// DefaultPath returns ~/.rudp/config.yaml.
func DefaultPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", ".rudp", "config.yaml")
	}
	return filepath.Join(home, ".rudp", "config.yaml")
}

// Load reads path over the defaults. A missing file yields the defaults.
func Load(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, err
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	if c.TimeoutMs <= 0 {
		return fmt.Errorf("timeout_ms must be positive, got %d", c.TimeoutMs)
	}
	if c.RetryLimit < 0 {
		return fmt.Errorf("retry_limit must not be negative, got %d", c.RetryLimit)
	}
	if c.ReceiveTimeoutMs < 0 {
		return fmt.Errorf("receive_timeout_ms must not be negative, got %d", c.ReceiveTimeoutMs)
	}
	if c.BufferSize <= 0 || c.BufferSize > network.MaxPayloadSize {
		return fmt.Errorf("buffer_size must be between 1 and %d, got %d", network.MaxPayloadSize, c.BufferSize)
	}
	if _, err := network.ParseCompression(c.Compression); err != nil {
		return err
	}
	return nil
}

// ConnectionConfig converts the settings into an engine configuration.
func (c *Config) ConnectionConfig() network.ConnectionConfig {
	return network.ConnectionConfig{
		Timeout:        time.Duration(c.TimeoutMs) * time.Millisecond,
		RetryLimit:     c.RetryLimit,
		ReceiveTimeout: time.Duration(c.ReceiveTimeoutMs) * time.Millisecond,
	}
}
